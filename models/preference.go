package models

// PreferencesSchemaVersion is stored next to every saved preference set.
const PreferencesSchemaVersion = "1"

const (
	PrefAutoplayEnabled          = "autoplay_enabled"
	PrefAutoplayInterval         = "autoplay_interval"
	PrefDualLiveView             = "dual_live_view"
	PrefInstallPromptDismissedAt = "install_prompt_dismissed_at"
	PrefTheme                    = "theme"
	PrefSchemaVersion            = "schema_version"
)

type Preferences map[string]string

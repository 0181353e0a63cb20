package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/scoreboard/cache"
	"github.com/Dosada05/scoreboard/models"
)

func newRedisPreferences(t *testing.T) (PreferenceService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := cache.NewRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewPreferenceService(store), mr
}

func TestPreferencesSaveAndLoad(t *testing.T) {
	svc, mr := newRedisPreferences(t)
	ctx := context.Background()

	empty, err := svc.Get(ctx, "kiosk-1")
	require.NoError(t, err)
	assert.Equal(t, models.Preferences{models.PrefSchemaVersion: models.PreferencesSchemaVersion}, empty)

	saved, err := svc.Save(ctx, "kiosk-1", models.Preferences{
		models.PrefAutoplayEnabled:  "true",
		models.PrefAutoplayInterval: "8",
		models.PrefTheme:            "dark",
	})
	require.NoError(t, err)
	assert.Equal(t, "8", saved[models.PrefAutoplayInterval])
	assert.Equal(t, "1", saved[models.PrefSchemaVersion])
	assert.Equal(t, "dark", mr.HGet("prefs:kiosk-1", models.PrefTheme))

	saved, err = svc.Save(ctx, "kiosk-1", models.Preferences{models.PrefTheme: ""})
	require.NoError(t, err)
	assert.NotContains(t, saved, models.PrefTheme)
	assert.Equal(t, "true", saved[models.PrefAutoplayEnabled])

	require.NoError(t, svc.Reset(ctx, "kiosk-1"))
	assert.False(t, mr.Exists("prefs:kiosk-1"))
}

func TestPreferencesValidation(t *testing.T) {
	svc, _ := newRedisPreferences(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "kiosk-1", models.Preferences{
		models.PrefAutoplayInterval:         "1",
		models.PrefDualLiveView:             "yes",
		models.PrefInstallPromptDismissedAt: "yesterday",
		"font_size":                         "12",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)

	_, err = svc.Get(ctx, "bad id!")
	assert.ErrorIs(t, err, ErrValidationFailed)

	ok, err := svc.Save(ctx, "kiosk-2", models.Preferences{models.PrefInstallPromptDismissedAt: "2026-03-10T08:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10T08:00:00Z", ok[models.PrefInstallPromptDismissedAt])
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tournament holds the settings that vary between events.
type Tournament struct {
	Name            string   `yaml:"name"`
	WinThreshold    int      `yaml:"win_threshold"`
	Groups          []string `yaml:"groups"`
	DefaultVenue    string   `yaml:"default_venue"`
	MatchesPerDay   int      `yaml:"matches_per_day"`
	AutoSlides      bool     `yaml:"auto_slides"`
	StandingsTTLSec int      `yaml:"standings_cache_ttl_seconds"`
}

func DefaultTournament() Tournament {
	return Tournament{
		Name:            "Badminton Tournament",
		WinThreshold:    15,
		MatchesPerDay:   4,
		AutoSlides:      true,
		StandingsTTLSec: 30,
	}
}

// maxThreshold is the most points one team can record: two players times 16 rally slots.
const maxThreshold = 32

// LoadTournament reads a YAML file; missing keys keep their defaults.
func LoadTournament(path string) (*Tournament, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tournament config: %w", err)
	}

	t := DefaultTournament()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse tournament config: %w", err)
	}
	if t.WinThreshold <= 0 || t.WinThreshold > maxThreshold {
		return nil, fmt.Errorf("win_threshold must be between 1 and %d, got %d", maxThreshold, t.WinThreshold)
	}
	if t.MatchesPerDay <= 0 {
		return nil, fmt.Errorf("matches_per_day must be positive, got %d", t.MatchesPerDay)
	}
	if t.StandingsTTLSec < 0 {
		return nil, fmt.Errorf("standings_cache_ttl_seconds must not be negative")
	}
	return &t, nil
}

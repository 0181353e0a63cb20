package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/scoreboard/cache"
	"github.com/Dosada05/scoreboard/models"
)

var clientIDRX = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

var themes = map[string]bool{"light": true, "dark": true, "system": true}

// preferenceValidators lists every key a client may store.
var preferenceValidators = map[string]func(string) bool{
	models.PrefAutoplayEnabled:          isBool,
	models.PrefAutoplayInterval:         isAutoplayInterval,
	models.PrefDualLiveView:             isBool,
	models.PrefInstallPromptDismissedAt: isTimestamp,
	models.PrefTheme:                    isTheme,
}

func isBool(v string) bool {
	return v == "true" || v == "false"
}

// isAutoplayInterval accepts whole seconds between slides.
func isAutoplayInterval(v string) bool {
	n, err := strconv.Atoi(v)
	return err == nil && n >= 3 && n <= 300
}

func isTimestamp(v string) bool {
	_, err := time.Parse(time.RFC3339, v)
	return err == nil
}

func isTheme(v string) bool {
	return themes[v]
}

type PreferenceService interface {
	Get(ctx context.Context, clientID string) (models.Preferences, error)
	// Save merges prefs into the stored set. An empty value removes the key.
	Save(ctx context.Context, clientID string, prefs models.Preferences) (models.Preferences, error)
	Reset(ctx context.Context, clientID string) error
}

type preferenceService struct {
	store cache.KVStore
}

func NewPreferenceService(store cache.KVStore) PreferenceService {
	return &preferenceService{store: store}
}

func preferenceKey(clientID string) string {
	return "prefs:" + clientID
}

func validateClientID(clientID string) error {
	if !clientIDRX.MatchString(clientID) {
		return &ValidationError{Fields: map[string]string{"client_id": "must be 1-64 letters, digits, '-' or '_'"}}
	}
	return nil
}

func (s *preferenceService) Get(ctx context.Context, clientID string) (models.Preferences, error) {
	if err := validateClientID(clientID); err != nil {
		return nil, err
	}
	values, err := s.store.HGetAll(ctx, preferenceKey(clientID))
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	prefs := models.Preferences{}
	for k, v := range values {
		if _, known := preferenceValidators[k]; known || k == models.PrefSchemaVersion {
			prefs[k] = v
		}
	}
	if _, ok := prefs[models.PrefSchemaVersion]; !ok {
		prefs[models.PrefSchemaVersion] = models.PreferencesSchemaVersion
	}
	return prefs, nil
}

func (s *preferenceService) Save(ctx context.Context, clientID string, prefs models.Preferences) (models.Preferences, error) {
	if err := validateClientID(clientID); err != nil {
		return nil, err
	}
	v := newValidationError()
	set := map[string]string{models.PrefSchemaVersion: models.PreferencesSchemaVersion}
	var remove []string
	for k, raw := range prefs {
		if k == models.PrefSchemaVersion {
			continue
		}
		valid, known := preferenceValidators[k]
		if !known {
			v.Add(k, "unknown preference")
			continue
		}
		value := strings.TrimSpace(raw)
		if value == "" {
			remove = append(remove, k)
			continue
		}
		if !valid(value) {
			v.Add(k, "invalid value")
			continue
		}
		set[k] = value
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	key := preferenceKey(clientID)
	if len(remove) > 0 {
		if err := s.store.HDel(ctx, key, remove...); err != nil {
			return nil, fmt.Errorf("failed to remove preferences: %w", err)
		}
	}
	if err := s.store.HSet(ctx, key, set); err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return s.Get(ctx, clientID)
}

func (s *preferenceService) Reset(ctx context.Context, clientID string) error {
	if err := validateClientID(clientID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, preferenceKey(clientID)); err != nil {
		return fmt.Errorf("failed to reset preferences: %w", err)
	}
	return nil
}

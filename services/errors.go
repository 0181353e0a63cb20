package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/Dosada05/scoreboard/scoring"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed = errors.New("validation failed")

	// Ошибки, специфичные для сущностей
	ErrMatchNotFound  = errors.New("match not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrSlideNotFound  = errors.New("slide not found")

	// Жизненный цикл матча
	ErrMatchCompleted          = errors.New("match is already completed")
	ErrInvalidStatusTransition = errors.New("invalid match status transition")
	ErrWinnerUndetermined      = errors.New("winner cannot be determined from a tied score")
	ErrAmbiguousWinner         = scoring.ErrAmbiguousWinner
	ErrVersionConflict         = errors.New("match was changed by someone else, reload and retry")

	// Аутентификация и авторизация
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrUserEmailConflict      = errors.New("email address is already in use")

	// Файлы
	ErrStorageUnavailable     = errors.New("file storage is not configured")
	ErrUnsupportedContentType = errors.New("unsupported image content type")
)

// ValidationError collects per-field messages. errors.Is(err, ErrValidationFailed) holds.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Check(ok bool, field, message string) {
	if !ok {
		e.Add(field, message)
	}
}

func (e *ValidationError) Valid() bool {
	return len(e.Fields) == 0
}

// Err returns nil when no field failed, so callers can `return v.Err()`.
func (e *ValidationError) Err() error {
	if e.Valid() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

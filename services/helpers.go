package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/storage"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// trimmedOrNil drops empty optional strings so they are stored as NULL.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// mapRepositoryError переводит ошибки репозиториев в ошибки сервисов.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchVersionConflict):
		return ErrVersionConflict
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrSlideNotFound):
		return ErrSlideNotFound
	case errors.Is(err, repositories.ErrUserEmailConflict):
		return ErrUserEmailConflict
	}
	return err
}

func populateMatchURLs(m *models.Match, uploader storage.FileUploader) {
	if m == nil || uploader == nil {
		return
	}
	for side := 1; side <= 2; side++ {
		team := m.Team(side)
		team.PhotoURL = publicURL(team.PhotoKey, uploader)
	}
}

func populateMatchListURLs(matches []models.Match, uploader storage.FileUploader) {
	for i := range matches {
		populateMatchURLs(&matches[i], uploader)
	}
}

func populateSlideURL(s *models.Slide, uploader storage.FileUploader) {
	if s != nil && uploader != nil {
		s.ImageURL = publicURL(s.ImageKey, uploader)
	}
}

func populatePlayerURL(p *models.Player, uploader storage.FileUploader) {
	if p != nil && uploader != nil {
		p.PhotoURL = publicURL(p.PhotoKey, uploader)
	}
}

func publicURL(key *string, uploader storage.FileUploader) *string {
	if key == nil || *key == "" {
		return nil
	}
	url := uploader.GetPublicURL(*key)
	if url == "" {
		return nil
	}
	return &url
}

// uploadImage stores reader under prefix/<name>-<uuid><ext> and returns the key.
func uploadImage(ctx context.Context, uploader storage.FileUploader, prefix, name, contentType string, reader io.Reader) (string, error) {
	if uploader == nil {
		return "", ErrStorageUnavailable
	}
	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedContentType, err)
	}
	key := prefix + "/" + name + "-" + uuid.NewString() + ext
	if name == "" {
		key = prefix + "/" + uuid.NewString() + ext
	}
	if _, err := uploader.Upload(ctx, key, contentType, reader); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

// discardObject deletes an object whose owning row was not written, or that
// a newer upload replaced. Failures are only logged.
func discardObject(ctx context.Context, uploader storage.FileUploader, logger *slog.Logger, key *string) {
	if uploader == nil || key == nil || *key == "" {
		return
	}
	if err := uploader.Delete(ctx, *key); err != nil {
		logger.WarnContext(ctx, "Failed to delete stored object", slog.String("key", *key), slog.Any("error", err))
	}
}

func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	}
	return "", fmt.Errorf("could not determine file extension from content type: '%s'", contentType)
}

package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/Dosada05/scoreboard/events"
	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/storage"
)

type SlideService interface {
	ListSlides(ctx context.Context) ([]models.Slide, error)
	CreateSlide(ctx context.Context, input SlideInput) (*models.Slide, error)
	UpdateSlide(ctx context.Context, id int, input SlideInput) (*models.Slide, error)
	DeleteSlide(ctx context.Context, id int) error
	// ReorderSlides assigns order indexes 0..n-1 following ids.
	ReorderSlides(ctx context.Context, ids []int) ([]models.Slide, error)
	UploadSlideImage(ctx context.Context, id int, file io.Reader, contentType string) (*models.Slide, error)
}

type SlideInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	OrderIndex  *int    `json:"order_index,omitempty"`
	MatchID     *int    `json:"match_id,omitempty"`
}

type slideService struct {
	slideRepo repositories.SlideRepository
	tx        repositories.Transactor
	publisher events.Publisher
	uploader  storage.FileUploader
	clock     clockwork.Clock
	logger    *slog.Logger
}

func NewSlideService(
	slideRepo repositories.SlideRepository,
	tx repositories.Transactor,
	publisher events.Publisher,
	uploader storage.FileUploader,
	clock clockwork.Clock,
	logger *slog.Logger,
) SlideService {
	return &slideService{
		slideRepo: slideRepo,
		tx:        tx,
		publisher: publisher,
		uploader:  uploader,
		clock:     clock,
		logger:    logger,
	}
}

func validateSlideInput(input SlideInput) error {
	v := newValidationError()
	v.Check(strings.TrimSpace(input.Title) != "", "title", "must be provided")
	v.Check(len(input.Title) <= 200, "title", "must not be more than 200 bytes long")
	v.Check(input.OrderIndex == nil || *input.OrderIndex >= 0, "order_index", "must not be negative")
	v.Check(input.MatchID == nil || *input.MatchID > 0, "match_id", "must be a positive id")
	return v.Err()
}

func (s *slideService) ListSlides(ctx context.Context) ([]models.Slide, error) {
	slides, err := s.slideRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list slides: %w", err)
	}
	for i := range slides {
		populateSlideURL(&slides[i], s.uploader)
	}
	return slides, nil
}

func (s *slideService) CreateSlide(ctx context.Context, input SlideInput) (*models.Slide, error) {
	if err := validateSlideInput(input); err != nil {
		return nil, err
	}
	slide := &models.Slide{
		Title:       strings.TrimSpace(input.Title),
		Description: trimmedOrNil(input.Description),
		MatchID:     input.MatchID,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if input.OrderIndex != nil {
		slide.OrderIndex = *input.OrderIndex
	} else {
		next, err := s.slideRepo.NextOrderIndex(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get next slide position: %w", err)
		}
		slide.OrderIndex = next
	}
	if err := s.slideRepo.Create(ctx, nil, slide); err != nil {
		return nil, fmt.Errorf("failed to create slide: %w", err)
	}
	s.changed(ctx)
	return slide, nil
}

func (s *slideService) UpdateSlide(ctx context.Context, id int, input SlideInput) (*models.Slide, error) {
	if err := validateSlideInput(input); err != nil {
		return nil, err
	}
	slide, err := s.slideRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	slide.Title = strings.TrimSpace(input.Title)
	slide.Description = trimmedOrNil(input.Description)
	if input.OrderIndex != nil {
		slide.OrderIndex = *input.OrderIndex
	}
	if input.MatchID != nil {
		slide.MatchID = input.MatchID
	}
	if err := s.slideRepo.Update(ctx, nil, slide); err != nil {
		return nil, mapRepositoryError(err)
	}
	populateSlideURL(slide, s.uploader)
	s.changed(ctx)
	return slide, nil
}

func (s *slideService) DeleteSlide(ctx context.Context, id int) error {
	slide, err := s.slideRepo.GetByID(ctx, nil, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := s.slideRepo.Delete(ctx, nil, id); err != nil {
		return mapRepositoryError(err)
	}
	discardObject(ctx, s.uploader, s.logger, slide.ImageKey)
	s.changed(ctx)
	return nil
}

func (s *slideService) ReorderSlides(ctx context.Context, ids []int) ([]models.Slide, error) {
	seen := make(map[int]bool, len(ids))
	for i, id := range ids {
		if id <= 0 || seen[id] {
			return nil, &ValidationError{Fields: map[string]string{"ids[" + strconv.Itoa(i) + "]": "must be a distinct slide id"}}
		}
		seen[id] = true
	}

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for i, id := range ids {
			if err := s.slideRepo.UpdateOrder(ctx, exec, id, i); err != nil {
				return fmt.Errorf("slide %d: %w", id, mapRepositoryError(err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx)
	return s.ListSlides(ctx)
}

func (s *slideService) UploadSlideImage(ctx context.Context, id int, file io.Reader, contentType string) (*models.Slide, error) {
	slide, err := s.slideRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	key, err := uploadImage(ctx, s.uploader, "slides/"+strconv.Itoa(id), "", contentType, file)
	if err != nil {
		return nil, err
	}
	if err := s.slideRepo.UpdateImage(ctx, nil, id, &key); err != nil {
		discardObject(ctx, s.uploader, s.logger, &key)
		return nil, mapRepositoryError(err)
	}
	discardObject(ctx, s.uploader, s.logger, slide.ImageKey)

	slide.ImageKey = &key
	populateSlideURL(slide, s.uploader)
	s.changed(ctx)
	return slide, nil
}

func (s *slideService) changed(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, models.Event{Type: models.EventSlidesUpdated}); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish slides update", slog.Any("error", err))
	}
}

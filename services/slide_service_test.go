package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/scoreboard/models"
)

func newSlideFixture() (SlideService, *fakeSlideRepo, *fakeUploader, *recordingPublisher, *clockwork.FakeClock) {
	repo := newFakeSlideRepo()
	uploader := newFakeUploader()
	events := &recordingPublisher{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	return NewSlideService(repo, &fakeTx{}, events, uploader, clock, discardLogger), repo, uploader, events, clock
}

func TestSlideLifecycle(t *testing.T) {
	svc, repo, uploader, events, clock := newSlideFixture()
	ctx := context.Background()

	first, err := svc.CreateSlide(ctx, SlideInput{Title: " Welcome "})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", first.Title)
	assert.Equal(t, 0, first.OrderIndex)
	assert.Equal(t, clock.Now(), first.CreatedAt)

	clock.Advance(time.Minute)
	second, err := svc.CreateSlide(ctx, SlideInput{Title: "Finals", Description: strPtr("Court 1 at 18:00")})
	require.NoError(t, err)
	assert.Equal(t, 1, second.OrderIndex)

	reordered, err := svc.ReorderSlides(ctx, []int{second.ID, first.ID})
	require.NoError(t, err)
	require.Len(t, reordered, 2)
	assert.Equal(t, "Finals", reordered[0].Title)
	assert.Equal(t, "Welcome", reordered[1].Title)

	withImage, err := svc.UploadSlideImage(ctx, first.ID, strings.NewReader("gif"), "image/gif")
	require.NoError(t, err)
	require.NotNil(t, withImage.ImageURL)
	assert.True(t, strings.HasPrefix(*withImage.ImageKey, "slides/1/"))

	require.NoError(t, svc.DeleteSlide(ctx, first.ID))
	assert.Equal(t, []string{*withImage.ImageKey}, uploader.deleted)
	_, err = repo.GetByID(ctx, nil, first.ID)
	assert.Error(t, err)

	assert.Len(t, events.types(), 5)
	for _, typ := range events.types() {
		assert.Equal(t, models.EventSlidesUpdated, typ)
	}
}

func TestSlideValidation(t *testing.T) {
	svc, _, _, _, _ := newSlideFixture()
	ctx := context.Background()

	_, err := svc.CreateSlide(ctx, SlideInput{Title: "  "})
	assert.ErrorIs(t, err, ErrValidationFailed)

	neg := -1
	_, err = svc.CreateSlide(ctx, SlideInput{Title: "ok", OrderIndex: &neg})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.ReorderSlides(ctx, []int{1, 1})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.ReorderSlides(ctx, []int{42})
	assert.ErrorIs(t, err, ErrSlideNotFound)

	_, err = svc.UpdateSlide(ctx, 42, SlideInput{Title: "missing"})
	assert.ErrorIs(t, err, ErrSlideNotFound)
}

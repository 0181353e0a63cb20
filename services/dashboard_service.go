package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/scoreboard/models"
)

type DashboardService interface {
	GetHomeOverview(ctx context.Context) (models.HomeOverview, error)
}

type dashboardService struct {
	matches   MatchService
	slides    SlideService
	standings StandingsService
}

func NewDashboardService(matches MatchService, slides SlideService, standings StandingsService) DashboardService {
	return &dashboardService{
		matches:   matches,
		slides:    slides,
		standings: standings,
	}
}

func (s *dashboardService) GetHomeOverview(ctx context.Context) (models.HomeOverview, error) {
	var overview models.HomeOverview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		live, err := s.matches.ListMatches(ctx, ListMatchesParams{Status: string(models.MatchStatusLive)})
		overview.Live = live
		return err
	})
	g.Go(func() error {
		today, err := s.matches.ListMatches(ctx, ListMatchesParams{Status: string(models.MatchStatusToday)})
		overview.Today = today
		return err
	})
	g.Go(func() error {
		slides, err := s.slides.ListSlides(ctx)
		overview.Slides = slides
		return err
	})
	g.Go(func() error {
		groups, err := s.standings.ByGroup(ctx)
		overview.Standings = groups
		return err
	})

	if err := g.Wait(); err != nil {
		return models.HomeOverview{}, err
	}
	return overview, nil
}

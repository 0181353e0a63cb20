package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/scoreboard/cache"
	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/scoring"
)

const (
	standingsCacheKey      = "standings:v1:overall"
	groupStandingsCacheKey = "standings:v1:groups"
	// Cached tables are stored under the generation current when their read
	// began. Invalidate bumps it, so older tables are never read again.
	standingsGenerationKey = "standings:v1:generation"
)

type StandingsService interface {
	Overall(ctx context.Context) ([]models.Standing, error)
	ByGroup(ctx context.Context) ([]models.GroupStandings, error)
	// Invalidate retires cached standings after any match write.
	Invalidate(ctx context.Context)
}

type standingsService struct {
	matchRepo repositories.MatchRepository
	store     cache.KVStore
	ttl       time.Duration
	logger    *slog.Logger
}

// NewStandingsService computes standings from all matches. A nil store or a
// zero ttl disables caching.
func NewStandingsService(matchRepo repositories.MatchRepository, store cache.KVStore, ttl time.Duration, logger *slog.Logger) StandingsService {
	return &standingsService{matchRepo: matchRepo, store: store, ttl: ttl, logger: logger}
}

func (s *standingsService) Overall(ctx context.Context) ([]models.Standing, error) {
	var standings []models.Standing
	key := s.cacheKey(ctx, standingsCacheKey)
	if s.cached(ctx, key, &standings) {
		return standings, nil
	}
	matches, err := s.matchRepo.List(ctx, nil, models.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for standings: %w", err)
	}
	standings = scoring.Standings(matches)
	s.remember(ctx, key, standings)
	return standings, nil
}

func (s *standingsService) ByGroup(ctx context.Context) ([]models.GroupStandings, error) {
	var groups []models.GroupStandings
	key := s.cacheKey(ctx, groupStandingsCacheKey)
	if s.cached(ctx, key, &groups) {
		return groups, nil
	}
	matches, err := s.matchRepo.List(ctx, nil, models.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for group standings: %w", err)
	}
	groups = scoring.GroupStandings(matches)
	s.remember(ctx, key, groups)
	return groups, nil
}

func (s *standingsService) Invalidate(ctx context.Context) {
	if s.store == nil {
		return
	}
	if _, err := s.store.Incr(ctx, standingsGenerationKey); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate standings cache", slog.Any("error", err))
	}
}

// cacheKey returns base qualified by the current generation, or "" when the
// generation cannot be read and the cache must be bypassed.
func (s *standingsService) cacheKey(ctx context.Context, base string) string {
	if s.store == nil || s.ttl <= 0 {
		return ""
	}
	gen, err := s.store.Get(ctx, standingsGenerationKey)
	if errors.Is(err, cache.ErrCacheMiss) {
		gen = "0"
	} else if err != nil {
		s.logger.WarnContext(ctx, "Standings generation read failed", slog.Any("error", err))
		return ""
	}
	return base + ":" + gen
}

func (s *standingsService) cached(ctx context.Context, key string, dst interface{}) bool {
	if key == "" {
		return false
	}
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "Standings cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.WarnContext(ctx, "Standings cache entry is corrupt", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (s *standingsService) remember(ctx context.Context, key string, value interface{}) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.logger.WarnContext(ctx, "Standings cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

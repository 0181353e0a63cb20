package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/scoring"
	"github.com/Dosada05/scoreboard/storage"
)

type PlayerService interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
	// GetProfile returns the stored player row with a history recomputed from matches.
	GetProfile(ctx context.Context, name string) (*models.PlayerProfile, error)
	UploadPhoto(ctx context.Context, name string, file io.Reader, contentType string) (*models.Player, error)
	GetTeam(ctx context.Context, name string) (*models.TeamDetail, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	matchRepo  repositories.MatchRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, matchRepo repositories.MatchRepository, uploader storage.FileUploader, logger *slog.Logger) PlayerService {
	return &playerService{playerRepo: playerRepo, matchRepo: matchRepo, uploader: uploader, logger: logger}
}

func (s *playerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	for i := range players {
		populatePlayerURL(&players[i], s.uploader)
	}
	return players, nil
}

func (s *playerService) GetProfile(ctx context.Context, name string) (*models.PlayerProfile, error) {
	key := scoring.NameKey(name)
	if key == "" {
		return nil, ErrPlayerNotFound
	}
	player, err := s.playerRepo.GetByNameKey(ctx, nil, key)
	if err != nil && !errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to load player %q: %w", name, err)
	}

	matches, err := s.matchRepo.List(ctx, nil, models.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for player %q: %w", name, err)
	}
	profile := scoring.PlayerHistory(matches, name)
	if player == nil && profile.Played == 0 {
		return nil, ErrPlayerNotFound
	}
	if player == nil {
		player = &models.Player{Name: scoring.DisplayName(name), NameKey: key}
	}
	populatePlayerURL(player, s.uploader)
	profile.Player = player
	return &profile, nil
}

func (s *playerService) UploadPhoto(ctx context.Context, name string, file io.Reader, contentType string) (*models.Player, error) {
	key := scoring.NameKey(name)
	player, err := s.playerRepo.GetByNameKey(ctx, nil, key)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	objectKey, err := uploadImage(ctx, s.uploader, "players/"+strconv.Itoa(player.ID), "", contentType, file)
	if err != nil {
		return nil, err
	}
	if err := s.playerRepo.UpdatePhoto(ctx, nil, key, &objectKey); err != nil {
		discardObject(ctx, s.uploader, s.logger, &objectKey)
		return nil, mapRepositoryError(err)
	}
	discardObject(ctx, s.uploader, s.logger, player.PhotoKey)

	player.PhotoKey = &objectKey
	populatePlayerURL(player, s.uploader)
	return player, nil
}

func (s *playerService) GetTeam(ctx context.Context, name string) (*models.TeamDetail, error) {
	matches, err := s.matchRepo.List(ctx, nil, models.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for team %q: %w", name, err)
	}
	populateMatchListURLs(matches, s.uploader)
	detail, ok := scoring.TeamDetail(matches, name)
	if !ok {
		return nil, ErrTeamNotFound
	}
	return &detail, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Dosada05/scoreboard/events"
	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/scoring"
)

// ExportSchemaVersion is bumped whenever the exported match shape changes.
const ExportSchemaVersion = 1

type ExportDocument struct {
	SchemaVersion int            `json:"schema_version"`
	ExportedAt    time.Time      `json:"exported_at"`
	Matches       []models.Match `json:"matches"`
}

type ImportResult struct {
	Imported int `json:"imported"`
}

type TransferService interface {
	Export(ctx context.Context) (*ExportDocument, error)
	// Import inserts every match of the document or none of them.
	Import(ctx context.Context, r io.Reader) (*ImportResult, error)
}

type transferService struct {
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	tx         repositories.Transactor
	standings  StandingsService
	publisher  events.Publisher
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewTransferService(
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	tx repositories.Transactor,
	standings StandingsService,
	publisher events.Publisher,
	clock clockwork.Clock,
	logger *slog.Logger,
) TransferService {
	return &transferService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		tx:         tx,
		standings:  standings,
		publisher:  publisher,
		clock:      clock,
		logger:     logger,
	}
}

func (s *transferService) Export(ctx context.Context) (*ExportDocument, error) {
	matches, err := s.matchRepo.List(ctx, nil, models.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for export: %w", err)
	}
	return &ExportDocument{
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    s.clock.Now().UTC(),
		Matches:       matches,
	}, nil
}

func (s *transferService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var doc ExportDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, &ValidationError{Fields: map[string]string{"document": "not a valid export: " + err.Error()}}
	}
	if doc.SchemaVersion != ExportSchemaVersion {
		return nil, &ValidationError{Fields: map[string]string{
			"schema_version": fmt.Sprintf("unsupported version %d, expected %d", doc.SchemaVersion, ExportSchemaVersion),
		}}
	}

	for i := range doc.Matches {
		if err := normalizeImported(&doc.Matches[i], "matches["+strconv.Itoa(i)+"]"); err != nil {
			return nil, err
		}
	}

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for i := range doc.Matches {
			m := &doc.Matches[i]
			if err := s.matchRepo.Create(ctx, exec, m); err != nil {
				return fmt.Errorf("failed to import match at index %d: %w", i, err)
			}
			if err := registerPlayers(ctx, s.playerRepo, exec, m); err != nil {
				return fmt.Errorf("match at index %d: %w", i, err)
			}
			if side := scoring.WinnerSide(m); side != 0 {
				if err := creditPlayers(ctx, s.playerRepo, exec, m, side, s.logger); err != nil {
					return fmt.Errorf("match at index %d: %w", i, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.standings.Invalidate(ctx)
	if s.publisher != nil {
		for i := range doc.Matches {
			if err := s.publisher.Publish(ctx, models.Event{Type: models.EventMatchCreated, MatchID: doc.Matches[i].ID, Payload: &doc.Matches[i]}); err != nil {
				s.logger.WarnContext(ctx, "Failed to publish imported match", slog.Int("match_id", doc.Matches[i].ID), slog.Any("error", err))
			}
		}
	}
	s.logger.InfoContext(ctx, "Matches imported", slog.Int("count", len(doc.Matches)))
	return &ImportResult{Imported: len(doc.Matches)}, nil
}

// normalizeImported checks one exported row and rewrites it into the shape
// the store accepts. Field names in errors are prefixed with prefix.
func normalizeImported(m *models.Match, prefix string) error {
	v := newValidationError()

	v.Check(!m.Date.IsZero(), prefix+".date", "must be provided")
	m.Group = scoring.GroupKey(m.Group)
	v.Check(m.Group != "", prefix+".group", "must be provided")
	m.DayLabel = strings.TrimSpace(m.DayLabel)
	m.Venue = strings.TrimSpace(m.Venue)
	m.Time = trimmedOrNil(m.Time)

	m.Status = m.Status.ForStorage()
	if m.Status == "" {
		m.Status = models.MatchStatusUpcoming
	}
	v.Check(m.Status.Stored(), prefix+".status", "must be one of upcoming, live, completed")

	for side := 1; side <= 2; side++ {
		team := m.Team(side)
		field := prefix + ".team" + strconv.Itoa(side)
		team.Name = scoring.DisplayName(team.Name)
		team.Leader = scoring.DisplayName(team.Leader)
		team.PhotoKey = nil
		team.PhotoURL = nil
		v.Check(team.Name != "", field+".name", "must be provided")
		for p := range team.Players {
			team.Players[p].Name = scoring.DisplayName(team.Players[p].Name)
			team.Players[p].Department = trimmedOrNil(team.Players[p].Department)
			team.Players[p].Unit = trimmedOrNil(team.Players[p].Unit)
			v.Check(team.Players[p].Name != "", field+".players["+strconv.Itoa(p)+"].name", "must be provided")
		}
	}
	if m.Team1.Name != "" && scoring.SameName(m.Team1.Name, m.Team2.Name) {
		v.Add(prefix+".team2.name", "must differ from team1")
	}

	if _, err := scoring.Recompute(m); err != nil {
		v.Add(prefix+".scores", err.Error())
	}

	m.Winner = trimmedOrNil(m.Winner)
	if m.Winner != nil {
		switch {
		case m.Status != models.MatchStatusCompleted:
			v.Add(prefix+".winner", "only a completed match can have a winner")
		case scoring.SameName(*m.Winner, m.Team1.Name):
			name := m.Team1.Name
			m.Winner = &name
		case scoring.SameName(*m.Winner, m.Team2.Name):
			name := m.Team2.Name
			m.Winner = &name
		default:
			v.Add(prefix+".winner", "must be one of the two teams")
		}
	}
	return v.Err()
}

package services

import (
	"context"
	"errors"
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
	"github.com/Dosada05/scoreboard/storage"
)

const dateLayout = "2006-01-02"

type MatchService interface {
	CreateMatch(ctx context.Context, input MatchInput) (*models.Match, error)
	// CreateMatches inserts a batch in one transaction, used for generated fixtures.
	CreateMatches(ctx context.Context, matches []models.Match) ([]models.Match, error)
	UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, id int) error
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListMatches(ctx context.Context, params ListMatchesParams) ([]models.Match, error)

	GoLive(ctx context.Context, id int) (*models.Match, error)
	Stop(ctx context.Context, id int) (*models.Match, error)
	Complete(ctx context.Context, id int, input CompleteInput) (*models.Match, error)
	ToggleScore(ctx context.Context, id int, input ToggleInput) (*ScoreUpdate, error)

	UploadTeamPhoto(ctx context.Context, id, side int, file io.Reader, contentType string) (*models.Match, error)
}

type PlayerInput struct {
	Name       string  `json:"name"`
	Department *string `json:"department,omitempty"`
	Unit       *string `json:"unit,omitempty"`
}

type TeamInput struct {
	Name    string         `json:"name"`
	Leader  string         `json:"leader"`
	Players [2]PlayerInput `json:"players"`
}

type MatchInput struct {
	Date     string             `json:"date"`
	DayLabel string             `json:"day_label"`
	Venue    string             `json:"venue"`
	Time     *string            `json:"time,omitempty"`
	Group    string             `json:"group"`
	Status   models.MatchStatus `json:"status,omitempty"`
	Team1    TeamInput          `json:"team1"`
	Team2    TeamInput          `json:"team2"`
}

// UpdateMatchInput replaces the descriptive fields of a match. Scores and
// status have their own operations.
type UpdateMatchInput struct {
	MatchInput
	Version int `json:"version"`
}

type ListMatchesParams struct {
	Status string
	Group  string
	Date   string
}

type CompleteInput struct {
	Winner  *string `json:"winner,omitempty"`
	Version *int    `json:"version,omitempty"`
}

type ToggleInput struct {
	Team    int  `json:"team"`
	Player  int  `json:"player"`
	Rally   int  `json:"rally"`
	Version *int `json:"version,omitempty"`
}

// ScoreUpdate is the result of one toggle.
type ScoreUpdate struct {
	Match  *models.Match  `json:"match"`
	Totals scoring.Totals `json:"totals"`
	// WinnerDeclared is set when this toggle completed the match.
	WinnerDeclared bool `json:"winner_declared"`
}

type MatchServiceOptions struct {
	WinThreshold int
	AutoSlides   bool
	Location     *time.Location
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	slideRepo  repositories.SlideRepository
	tx         repositories.Transactor
	standings  StandingsService
	publisher  events.Publisher
	uploader   storage.FileUploader
	clock      clockwork.Clock
	opts       MatchServiceOptions
	logger     *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	slideRepo repositories.SlideRepository,
	tx repositories.Transactor,
	standings StandingsService,
	publisher events.Publisher,
	uploader storage.FileUploader,
	clock clockwork.Clock,
	opts MatchServiceOptions,
	logger *slog.Logger,
) MatchService {
	if opts.WinThreshold <= 0 {
		opts.WinThreshold = scoring.DefaultWinThreshold
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &matchService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		slideRepo:  slideRepo,
		tx:         tx,
		standings:  standings,
		publisher:  publisher,
		uploader:   uploader,
		clock:      clock,
		opts:       opts,
		logger:     logger,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, input MatchInput) (*models.Match, error) {
	match, err := buildMatch(input)
	if err != nil {
		return nil, err
	}
	switch match.Status {
	case "":
		match.Status = models.MatchStatusUpcoming
	case models.MatchStatusUpcoming, models.MatchStatusLive:
	default:
		return nil, &ValidationError{Fields: map[string]string{"status": "a new match must be upcoming or live"}}
	}
	match.Team1.Players[0].Scores = models.EmptyScores()
	match.Team1.Players[1].Scores = models.EmptyScores()
	match.Team2.Players[0].Scores = models.EmptyScores()
	match.Team2.Players[1].Scores = models.EmptyScores()

	created, err := s.CreateMatches(ctx, []models.Match{*match})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

func (s *matchService) CreateMatches(ctx context.Context, matches []models.Match) ([]models.Match, error) {
	if len(matches) == 0 {
		return []models.Match{}, nil
	}
	var slides int
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for i := range matches {
			m := &matches[i]
			if m.Status == "" {
				m.Status = models.MatchStatusUpcoming
			}
			if err := s.matchRepo.Create(ctx, exec, m); err != nil {
				return fmt.Errorf("failed to create match %s: %w", scoring.MatchTitle(m), err)
			}
			if err := registerPlayers(ctx, s.playerRepo, exec, m); err != nil {
				return err
			}
			if s.opts.AutoSlides {
				if err := s.createCompanionSlide(ctx, exec, m); err != nil {
					return err
				}
				slides++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range matches {
		populateMatchURLs(&matches[i], s.uploader)
		s.publish(ctx, models.EventMatchCreated, &matches[i])
		s.logger.InfoContext(ctx, "Match created", slog.Int("match_id", matches[i].ID), slog.String("title", scoring.MatchTitle(&matches[i])))
	}
	if slides > 0 {
		s.publishEvent(ctx, models.Event{Type: models.EventSlidesUpdated})
	}
	s.standings.Invalidate(ctx)
	return matches, nil
}

// registerPlayers upserts the four players of m, counting one more match for each.
func registerPlayers(ctx context.Context, repo repositories.PlayerRepository, exec repositories.SQLExecutor, m *models.Match) error {
	for side := 1; side <= 2; side++ {
		for _, entry := range m.Team(side).Players {
			player := &models.Player{
				Name:       scoring.DisplayName(entry.Name),
				NameKey:    scoring.NameKey(entry.Name),
				Department: entry.Department,
				Unit:       entry.Unit,
			}
			if err := repo.UpsertPlayed(ctx, exec, player); err != nil {
				return fmt.Errorf("failed to register player %q: %w", entry.Name, err)
			}
		}
	}
	return nil
}

func (s *matchService) createCompanionSlide(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	order, err := s.slideRepo.NextOrderIndex(ctx, exec)
	if err != nil {
		return fmt.Errorf("failed to get next slide position: %w", err)
	}
	description := m.Venue
	if m.Time != nil {
		description = strings.TrimSpace(m.Date.Format(dateLayout) + " " + *m.Time + " " + m.Venue)
	}
	matchID := m.ID
	slide := &models.Slide{
		Title:       scoring.MatchTitle(m),
		Description: trimmedOrNil(&description),
		OrderIndex:  order,
		MatchID:     &matchID,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.slideRepo.Create(ctx, exec, slide); err != nil {
		return fmt.Errorf("failed to create slide for match %d: %w", m.ID, err)
	}
	return nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error) {
	details, err := buildMatch(input.MatchInput)
	if err != nil {
		return nil, err
	}

	var updated *models.Match
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		current, err := s.matchRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return mapRepositoryError(err)
		}
		if input.Version != 0 && input.Version != current.Version {
			return ErrVersionConflict
		}

		// player rows are re-credited from scratch so renames move the counts
		winnerSide := scoring.WinnerSide(current)
		if err := releasePlayers(ctx, s.playerRepo, exec, current, s.logger); err != nil {
			return err
		}
		current.Date = details.Date
		current.DayLabel = details.DayLabel
		current.Venue = details.Venue
		current.Time = details.Time
		current.Group = details.Group
		for side := 1; side <= 2; side++ {
			dst, src := current.Team(side), details.Team(side)
			dst.Name = src.Name
			dst.Leader = src.Leader
			for p := range dst.Players {
				dst.Players[p].Name = src.Players[p].Name
				dst.Players[p].Department = src.Players[p].Department
				dst.Players[p].Unit = src.Players[p].Unit
			}
		}
		if winnerSide != 0 {
			// keep the winner pointing at the renamed team
			name := current.Team(winnerSide).Name
			current.Winner = &name
		}

		if err := s.matchRepo.Update(ctx, exec, current); err != nil {
			return mapRepositoryError(err)
		}
		if err := registerPlayers(ctx, s.playerRepo, exec, current); err != nil {
			return err
		}
		if winnerSide != 0 {
			if err := creditPlayers(ctx, s.playerRepo, exec, current, winnerSide, s.logger); err != nil {
				return err
			}
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	populateMatchURLs(updated, s.uploader)
	s.publish(ctx, models.EventMatchUpdated, updated)
	s.standings.Invalidate(ctx)
	return updated, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id int) error {
	var deleted *models.Match
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.matchRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return mapRepositoryError(err)
		}
		if err := s.matchRepo.Delete(ctx, exec, id); err != nil {
			return mapRepositoryError(err)
		}
		if err := releasePlayers(ctx, s.playerRepo, exec, m, s.logger); err != nil {
			return err
		}
		deleted = m
		return nil
	})
	if err != nil {
		return err
	}

	discardObject(ctx, s.uploader, s.logger, deleted.Team1.PhotoKey)
	discardObject(ctx, s.uploader, s.logger, deleted.Team2.PhotoKey)
	s.publishEvent(ctx, models.Event{Type: models.EventMatchDeleted, MatchID: id, Payload: map[string]int{"id": id}})
	s.standings.Invalidate(ctx)
	s.logger.InfoContext(ctx, "Match deleted", slog.Int("match_id", id))
	return nil
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	populateMatchURLs(m, s.uploader)
	return m, nil
}

func (s *matchService) ListMatches(ctx context.Context, params ListMatchesParams) ([]models.Match, error) {
	filter, err := s.buildFilter(params)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	populateMatchListURLs(matches, s.uploader)
	return matches, nil
}

func (s *matchService) buildFilter(params ListMatchesParams) (models.MatchFilter, error) {
	var filter models.MatchFilter
	v := newValidationError()

	if params.Status != "" {
		status := models.MatchStatus(strings.ToLower(strings.TrimSpace(params.Status)))
		switch {
		case !status.Valid():
			v.Add("status", "must be one of upcoming, live, completed, today, tomorrow")
		case status == models.MatchStatusToday || status == models.MatchStatusTomorrow:
			day := s.today()
			if status == models.MatchStatusTomorrow {
				day = day.AddDate(0, 0, 1)
			}
			stored := status.ForStorage()
			filter.Status = &stored
			filter.Date = &day
		default:
			filter.Status = &status
		}
	}
	if g := strings.TrimSpace(params.Group); g != "" {
		filter.Group = &g
	}
	if params.Date != "" {
		if filter.Date != nil {
			v.Add("date", "cannot be combined with today or tomorrow")
		} else if d, err := time.Parse(dateLayout, params.Date); err != nil {
			v.Add("date", "must be YYYY-MM-DD")
		} else {
			filter.Date = &d
		}
	}
	return filter, v.Err()
}

// today is the current calendar date in the tournament's location, at UTC midnight.
func (s *matchService) today() time.Time {
	now := s.clock.Now().In(s.opts.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *matchService) GoLive(ctx context.Context, id int) (*models.Match, error) {
	m, err := s.transition(ctx, id, nil, func(exec repositories.SQLExecutor, m *models.Match) error {
		if m.Status != models.MatchStatusUpcoming {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, m.Status, models.MatchStatusLive)
		}
		m.Status = models.MatchStatusLive
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, models.EventMatchUpdated, m)
	return m, nil
}

func (s *matchService) Stop(ctx context.Context, id int) (*models.Match, error) {
	m, err := s.transition(ctx, id, nil, func(exec repositories.SQLExecutor, m *models.Match) error {
		if m.Status != models.MatchStatusLive {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, m.Status, models.MatchStatusUpcoming)
		}
		m.Status = models.MatchStatusUpcoming
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, models.EventMatchUpdated, m)
	return m, nil
}

func (s *matchService) Complete(ctx context.Context, id int, input CompleteInput) (*models.Match, error) {
	m, err := s.transition(ctx, id, input.Version, func(exec repositories.SQLExecutor, m *models.Match) error {
		switch m.Status {
		case models.MatchStatusCompleted:
			return ErrMatchCompleted
		case models.MatchStatusLive:
		default:
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, m.Status, models.MatchStatusCompleted)
		}

		side := 0
		if input.Winner != nil && strings.TrimSpace(*input.Winner) != "" {
			switch {
			case scoring.SameName(*input.Winner, m.Team1.Name):
				side = 1
			case scoring.SameName(*input.Winner, m.Team2.Name):
				side = 2
			default:
				return &ValidationError{Fields: map[string]string{"winner": "must be one of the two teams"}}
			}
		} else {
			side = scoring.Leader(m.Team1.Score, m.Team2.Score)
			if side == 0 {
				return ErrWinnerUndetermined
			}
		}
		return s.declareWinner(ctx, exec, m, side)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, models.EventMatchCompleted, m)
	return m, nil
}

// declareWinner completes m for side and credits the four players.
func (s *matchService) declareWinner(ctx context.Context, exec repositories.SQLExecutor, m *models.Match, side int) error {
	name := m.Team(side).Name
	m.Status = models.MatchStatusCompleted
	m.Winner = &name
	return creditPlayers(ctx, s.playerRepo, exec, m, side, s.logger)
}

// creditPlayers records a win or loss and the scored points for every player of m.
func creditPlayers(ctx context.Context, repo repositories.PlayerRepository, exec repositories.SQLExecutor, m *models.Match, winnerSide int, logger *slog.Logger) error {
	for t := 1; t <= 2; t++ {
		for _, p := range m.Team(t).Players {
			if err := repo.RecordResult(ctx, exec, scoring.NameKey(p.Name), t == winnerSide, p.Total); err != nil {
				if errors.Is(err, repositories.ErrPlayerNotFound) {
					logger.WarnContext(ctx, "Player row missing when recording result", slog.String("player", p.Name), slog.Int("match_id", m.ID))
					continue
				}
				return fmt.Errorf("failed to record result for %q: %w", p.Name, err)
			}
		}
	}
	return nil
}

// releasePlayers reverses registerPlayers and, for a decided match, creditPlayers.
func releasePlayers(ctx context.Context, repo repositories.PlayerRepository, exec repositories.SQLExecutor, m *models.Match, logger *slog.Logger) error {
	winnerSide := scoring.WinnerSide(m)
	for t := 1; t <= 2; t++ {
		for _, p := range m.Team(t).Players {
			var result *repositories.PlayerResult
			if winnerSide != 0 {
				result = &repositories.PlayerResult{Won: t == winnerSide, Score: p.Total}
			}
			if err := repo.Retract(ctx, exec, scoring.NameKey(p.Name), result); err != nil {
				if errors.Is(err, repositories.ErrPlayerNotFound) {
					logger.WarnContext(ctx, "Player row missing when releasing match", slog.String("player", p.Name), slog.Int("match_id", m.ID))
					continue
				}
				return fmt.Errorf("failed to release player %q: %w", p.Name, err)
			}
		}
	}
	return nil
}

// transition locks the match row, applies fn and writes the result with a
// version check, all in one transaction.
func (s *matchService) transition(ctx context.Context, id int, expectedVersion *int, fn func(exec repositories.SQLExecutor, m *models.Match) error) (*models.Match, error) {
	var result *models.Match
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.matchRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return mapRepositoryError(err)
		}
		if expectedVersion != nil && *expectedVersion != m.Version {
			return ErrVersionConflict
		}
		if err := fn(exec, m); err != nil {
			return err
		}
		if err := s.matchRepo.Update(ctx, exec, m); err != nil {
			return mapRepositoryError(err)
		}
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	populateMatchURLs(result, s.uploader)
	s.standings.Invalidate(ctx)
	return result, nil
}

func (s *matchService) ToggleScore(ctx context.Context, id int, input ToggleInput) (*ScoreUpdate, error) {
	update := &ScoreUpdate{}
	m, err := s.transition(ctx, id, input.Version, func(exec repositories.SQLExecutor, m *models.Match) error {
		if m.Status == models.MatchStatusCompleted {
			return ErrMatchCompleted
		}
		ledger, err := scoring.NewLedger(m)
		if err != nil {
			return fmt.Errorf("match %d has corrupt scores: %w", m.ID, err)
		}
		if _, err := ledger.Toggle(input.Team, input.Player, input.Rally); err != nil {
			return fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		totals := ledger.Apply(m)
		update.Totals = totals

		side, err := scoring.DetectWinner(totals.Teams[0], totals.Teams[1], s.opts.WinThreshold)
		if err != nil {
			return err
		}
		if m.Status == models.MatchStatusUpcoming {
			m.Status = models.MatchStatusLive
		}
		if side != 0 {
			update.WinnerDeclared = true
			return s.declareWinner(ctx, exec, m, side)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	update.Match = m

	s.publish(ctx, models.EventScoreUpdated, m)
	if update.WinnerDeclared {
		s.publish(ctx, models.EventMatchCompleted, m)
		s.logger.InfoContext(ctx, "Match won", slog.Int("match_id", m.ID), slog.String("winner", derefString(m.Winner)),
			slog.Int("team1_score", m.Team1.Score), slog.Int("team2_score", m.Team2.Score))
	}
	return update, nil
}

func (s *matchService) UploadTeamPhoto(ctx context.Context, id, side int, file io.Reader, contentType string) (*models.Match, error) {
	if side != 1 && side != 2 {
		return nil, &ValidationError{Fields: map[string]string{"team": "must be 1 or 2"}}
	}
	current, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	key, err := uploadImage(ctx, s.uploader, "matches/"+strconv.Itoa(id), "team"+strconv.Itoa(side), contentType, file)
	if err != nil {
		return nil, err
	}
	if err := s.matchRepo.UpdateTeamPhoto(ctx, nil, id, side, &key); err != nil {
		discardObject(ctx, s.uploader, s.logger, &key)
		return nil, mapRepositoryError(err)
	}
	discardObject(ctx, s.uploader, s.logger, current.Team(side).PhotoKey)

	m, err := s.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, models.EventMatchUpdated, m)
	return m, nil
}

func (s *matchService) publish(ctx context.Context, eventType models.EventType, m *models.Match) {
	s.publishEvent(ctx, models.Event{Type: eventType, MatchID: m.ID, Payload: m})
}

func (s *matchService) publishEvent(ctx context.Context, event models.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event", slog.String("type", string(event.Type)),
			slog.Int("match_id", event.MatchID), slog.Any("error", err))
	}
}

// buildMatch validates input and returns a match with normalized names.
func buildMatch(input MatchInput) (*models.Match, error) {
	v := newValidationError()

	date, err := time.Parse(dateLayout, strings.TrimSpace(input.Date))
	v.Check(err == nil, "date", "must be YYYY-MM-DD")
	group := scoring.GroupKey(input.Group)
	v.Check(group != "", "group", "must be provided")

	status := input.Status.ForStorage()
	v.Check(status == "" || status.Stored(), "status", "must be one of upcoming, live, completed, today, tomorrow")

	m := &models.Match{
		Date:     date,
		DayLabel: strings.TrimSpace(input.DayLabel),
		Venue:    strings.TrimSpace(input.Venue),
		Time:     trimmedOrNil(input.Time),
		Group:    group,
		Status:   status,
	}
	for side, team := range []TeamInput{input.Team1, input.Team2} {
		prefix := "team" + strconv.Itoa(side+1)
		entry := m.Team(side + 1)
		entry.Name = scoring.DisplayName(team.Name)
		entry.Leader = scoring.DisplayName(team.Leader)
		v.Check(entry.Name != "", prefix+".name", "must be provided")
		for p, player := range team.Players {
			entry.Players[p] = models.PlayerEntry{
				Name:       scoring.DisplayName(player.Name),
				Department: trimmedOrNil(player.Department),
				Unit:       trimmedOrNil(player.Unit),
			}
			v.Check(entry.Players[p].Name != "", prefix+".players["+strconv.Itoa(p)+"].name", "must be provided")
		}
		if entry.Leader == "" {
			entry.Leader = entry.Players[0].Name
		}
	}
	if m.Team1.Name != "" && scoring.SameName(m.Team1.Name, m.Team2.Name) {
		v.Add("team2.name", "must differ from team1")
	}
	seen := map[string]bool{}
	for side := 1; side <= 2; side++ {
		for p, player := range m.Team(side).Players {
			key := scoring.NameKey(player.Name)
			if key == "" {
				continue
			}
			if seen[key] {
				v.Add("team"+strconv.Itoa(side)+".players["+strconv.Itoa(p)+"].name", "player already appears in this match")
			}
			seen[key] = true
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/scoreboard/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	// UpsertPlayed creates the player on first sight and counts one more match otherwise.
	UpsertPlayed(ctx context.Context, exec SQLExecutor, player *models.Player) error
	RecordResult(ctx context.Context, exec SQLExecutor, nameKey string, won bool, score int) error
	// Retract undoes one UpsertPlayed and, when result is set, the RecordResult that followed it.
	Retract(ctx context.Context, exec SQLExecutor, nameKey string, result *PlayerResult) error
	GetByNameKey(ctx context.Context, exec SQLExecutor, nameKey string) (*models.Player, error)
	List(ctx context.Context, exec SQLExecutor) ([]models.Player, error)
	UpdatePhoto(ctx context.Context, exec SQLExecutor, nameKey string, photoKey *string) error
}

// PlayerResult is what RecordResult credited for one decided match.
type PlayerResult struct {
	Won   bool
	Score int
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, name, name_key, photo_key, department, unit, matches_played, matches_won, matches_lost, total_score, created_at, updated_at`

func scanPlayer(row interface{ Scan(...interface{}) error }) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID, &p.Name, &p.NameKey, &p.PhotoKey, &p.Department, &p.Unit,
		&p.MatchesPlayed, &p.MatchesWon, &p.MatchesLost, &p.TotalScore, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) UpsertPlayed(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := getExecutor(exec, r.db)
	query := `
		INSERT INTO players (name, name_key, department, unit, matches_played)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (name_key) DO UPDATE SET
			matches_played = players.matches_played + 1,
			department = COALESCE(EXCLUDED.department, players.department),
			unit = COALESCE(EXCLUDED.unit, players.unit),
			updated_at = NOW()
		RETURNING ` + playerColumns
	p, err := scanPlayer(executor.QueryRowContext(ctx, query, player.Name, player.NameKey, player.Department, player.Unit))
	if err != nil {
		return err
	}
	*player = *p
	return nil
}

func (r *postgresPlayerRepository) RecordResult(ctx context.Context, exec SQLExecutor, nameKey string, won bool, score int) error {
	executor := getExecutor(exec, r.db)
	wonDelta, lostDelta := 0, 1
	if won {
		wonDelta, lostDelta = 1, 0
	}
	query := `
		UPDATE players SET
			matches_won = matches_won + $1,
			matches_lost = matches_lost + $2,
			total_score = total_score + $3,
			updated_at = NOW()
		WHERE name_key = $4`
	result, err := executor.ExecContext(ctx, query, wonDelta, lostDelta, score, nameKey)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Retract(ctx context.Context, exec SQLExecutor, nameKey string, result *PlayerResult) error {
	executor := getExecutor(exec, r.db)
	wonDelta, lostDelta, score := 0, 0, 0
	if result != nil {
		score = result.Score
		if result.Won {
			wonDelta = 1
		} else {
			lostDelta = 1
		}
	}
	query := `
		UPDATE players SET
			matches_played = GREATEST(matches_played - 1, 0),
			matches_won = GREATEST(matches_won - $1, 0),
			matches_lost = GREATEST(matches_lost - $2, 0),
			total_score = GREATEST(total_score - $3, 0),
			updated_at = NOW()
		WHERE name_key = $4`
	res, err := executor.ExecContext(ctx, query, wonDelta, lostDelta, score, nameKey)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) GetByNameKey(ctx context.Context, exec SQLExecutor, nameKey string) (*models.Player, error) {
	executor := getExecutor(exec, r.db)
	query := `SELECT ` + playerColumns + ` FROM players WHERE name_key = $1`
	return scanPlayer(executor.QueryRowContext(ctx, query, nameKey))
}

func (r *postgresPlayerRepository) List(ctx context.Context, exec SQLExecutor) ([]models.Player, error) {
	executor := getExecutor(exec, r.db)
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY total_score DESC, name ASC`
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		p, scanErr := scanPlayer(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		players = append(players, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) UpdatePhoto(ctx context.Context, exec SQLExecutor, nameKey string, photoKey *string) error {
	executor := getExecutor(exec, r.db)
	result, err := executor.ExecContext(ctx,
		`UPDATE players SET photo_key = $1, updated_at = NOW() WHERE name_key = $2`, photoKey, nameKey)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

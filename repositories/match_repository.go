package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/scoreboard/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchVersionConflict = errors.New("match was modified concurrently")
	ErrMatchInvalidSide     = errors.New("match side must be 1 or 2")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	List(ctx context.Context, exec SQLExecutor, filter models.MatchFilter) ([]models.Match, error)
	// Update writes every mutable column if match.Version is still current and
	// bumps the version on success.
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateTeamPhoto(ctx context.Context, exec SQLExecutor, id, side int, photoKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

var (
	matchWriteColumns = append([]string{
		"match_date", "day_label", "venue", "match_time", "group_name", "status", "winner",
	}, append(teamColumns(1), teamColumns(2)...)...)

	matchSelectColumns = strings.Join(append([]string{
		"id", "match_number", "match_date", "day_label", "venue", "match_time", "group_name",
		"status", "winner", "version", "created_at", "updated_at",
	}, append(teamColumns(1), teamColumns(2)...)...), ", ")
)

func teamColumns(side int) []string {
	t := "team" + strconv.Itoa(side)
	cols := []string{t + "_name", t + "_leader", t + "_photo_key", t + "_score"}
	for p := 1; p <= 2; p++ {
		pl := t + "_player" + strconv.Itoa(p)
		cols = append(cols, pl+"_name", pl+"_department", pl+"_unit", pl+"_scores", pl+"_total")
	}
	return cols
}

type playerRow struct {
	name       string
	department *string
	unit       *string
	scores     pq.Int64Array
	total      int
}

type teamRow struct {
	name     string
	leader   string
	photoKey *string
	score    int
	players  [2]playerRow
}

func (t *teamRow) dest() []interface{} {
	dest := []interface{}{&t.name, &t.leader, &t.photoKey, &t.score}
	for i := range t.players {
		p := &t.players[i]
		dest = append(dest, &p.name, &p.department, &p.unit, &p.scores, &p.total)
	}
	return dest
}

func (t *teamRow) into(team *models.TeamEntry) {
	team.Name = t.name
	team.Leader = t.leader
	team.PhotoKey = t.photoKey
	team.Score = t.score
	for i, p := range t.players {
		team.Players[i] = models.PlayerEntry{
			Name:       p.name,
			Department: p.department,
			Unit:       p.unit,
			Scores:     fromInt64Array(p.scores),
			Total:      p.total,
		}
	}
}

func teamArgs(team *models.TeamEntry) []interface{} {
	args := []interface{}{team.Name, team.Leader, team.PhotoKey, team.Score}
	for _, p := range team.Players {
		args = append(args, p.Name, p.Department, p.Unit, toInt64Array(p.Scores), p.Total)
	}
	return args
}

func matchWriteArgs(m *models.Match) []interface{} {
	args := []interface{}{m.Date, m.DayLabel, m.Venue, m.Time, m.Group, m.Status, m.Winner}
	args = append(args, teamArgs(&m.Team1)...)
	return append(args, teamArgs(&m.Team2)...)
}

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	var t1, t2 teamRow
	dest := []interface{}{
		&m.ID, &m.MatchNumber, &m.Date, &m.DayLabel, &m.Venue, &m.Time, &m.Group,
		&m.Status, &m.Winner, &m.Version, &m.CreatedAt, &m.UpdatedAt,
	}
	dest = append(dest, t1.dest()...)
	dest = append(dest, t2.dest()...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	t1.into(&m.Team1)
	t2.into(&m.Team2)
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := getExecutor(exec, r.db)

	placeholders := make([]string, len(matchWriteColumns))
	for i := range placeholders {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	query := `INSERT INTO matches (` + strings.Join(matchWriteColumns, ", ") + `)
		VALUES (` + strings.Join(placeholders, ", ") + `)
		RETURNING id, match_number, version, created_at, updated_at`

	return executor.QueryRowContext(ctx, query, matchWriteArgs(match)...).Scan(
		&match.ID, &match.MatchNumber, &match.Version, &match.CreatedAt, &match.UpdatedAt,
	)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := getExecutor(exec, r.db)
	query := `SELECT ` + matchSelectColumns + ` FROM matches WHERE id = $1`
	return scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := getExecutor(exec, r.db)
	query := `SELECT ` + matchSelectColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) List(ctx context.Context, exec SQLExecutor, filter models.MatchFilter) ([]models.Match, error) {
	executor := getExecutor(exec, r.db)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchSelectColumns + ` FROM matches WHERE 1=1`)

	args := []interface{}{}
	placeholderIndex := 1

	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
		placeholderIndex++
	}
	if filter.Group != nil {
		queryBuilder.WriteString(" AND UPPER(TRIM(group_name)) = $" + strconv.Itoa(placeholderIndex))
		args = append(args, strings.ToUpper(strings.TrimSpace(*filter.Group)))
		placeholderIndex++
	}
	if filter.Date != nil {
		queryBuilder.WriteString(" AND match_date = $" + strconv.Itoa(placeholderIndex))
		args = append(args, filter.Date.Format("2006-01-02"))
		placeholderIndex++
	}
	queryBuilder.WriteString(" ORDER BY match_date ASC, match_time ASC NULLS LAST, match_number ASC")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := getExecutor(exec, r.db)

	sets := make([]string, len(matchWriteColumns))
	for i, col := range matchWriteColumns {
		sets[i] = col + " = $" + strconv.Itoa(i+1)
	}
	idIndex := len(matchWriteColumns) + 1
	query := `UPDATE matches SET ` + strings.Join(sets, ", ") + `, version = version + 1, updated_at = NOW()
		WHERE id = $` + strconv.Itoa(idIndex) + ` AND version = $` + strconv.Itoa(idIndex+1) + `
		RETURNING version, updated_at`

	args := append(matchWriteArgs(match), match.ID, match.Version)
	err := executor.QueryRowContext(ctx, query, args...).Scan(&match.Version, &match.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var exists bool
	if existsErr := executor.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM matches WHERE id = $1)`, match.ID).Scan(&exists); existsErr != nil {
		return fmt.Errorf("failed to check match %d existence: %w", match.ID, existsErr)
	}
	if !exists {
		return ErrMatchNotFound
	}
	return ErrMatchVersionConflict
}

func (r *postgresMatchRepository) UpdateTeamPhoto(ctx context.Context, exec SQLExecutor, id, side int, photoKey *string) error {
	if side != 1 && side != 2 {
		return ErrMatchInvalidSide
	}
	executor := getExecutor(exec, r.db)
	query := `UPDATE matches SET team` + strconv.Itoa(side) + `_photo_key = $1, version = version + 1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, photoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := getExecutor(exec, r.db)
	result, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

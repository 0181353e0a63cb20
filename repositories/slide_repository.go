package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/scoreboard/models"
)

var ErrSlideNotFound = errors.New("slide not found")

type SlideRepository interface {
	Create(ctx context.Context, exec SQLExecutor, slide *models.Slide) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Slide, error)
	List(ctx context.Context, exec SQLExecutor) ([]models.Slide, error)
	Update(ctx context.Context, exec SQLExecutor, slide *models.Slide) error
	UpdateOrder(ctx context.Context, exec SQLExecutor, id, orderIndex int) error
	UpdateImage(ctx context.Context, exec SQLExecutor, id int, imageKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	NextOrderIndex(ctx context.Context, exec SQLExecutor) (int, error)
}

type postgresSlideRepository struct {
	db *sql.DB
}

func NewPostgresSlideRepository(db *sql.DB) SlideRepository {
	return &postgresSlideRepository{db: db}
}

const slideColumns = `id, title, description, image_key, order_index, match_id, created_at`

func scanSlide(row interface{ Scan(...interface{}) error }) (*models.Slide, error) {
	var s models.Slide
	if err := row.Scan(&s.ID, &s.Title, &s.Description, &s.ImageKey, &s.OrderIndex, &s.MatchID, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlideNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresSlideRepository) Create(ctx context.Context, exec SQLExecutor, slide *models.Slide) error {
	executor := getExecutor(exec, r.db)
	query := `
		INSERT INTO slides (title, description, image_key, order_index, match_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	return executor.QueryRowContext(ctx, query,
		slide.Title, slide.Description, slide.ImageKey, slide.OrderIndex, slide.MatchID, slide.CreatedAt,
	).Scan(&slide.ID)
}

func (r *postgresSlideRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Slide, error) {
	executor := getExecutor(exec, r.db)
	return scanSlide(executor.QueryRowContext(ctx, `SELECT `+slideColumns+` FROM slides WHERE id = $1`, id))
}

func (r *postgresSlideRepository) List(ctx context.Context, exec SQLExecutor) ([]models.Slide, error) {
	executor := getExecutor(exec, r.db)
	rows, err := executor.QueryContext(ctx, `SELECT `+slideColumns+` FROM slides ORDER BY order_index ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slides := make([]models.Slide, 0)
	for rows.Next() {
		s, scanErr := scanSlide(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		slides = append(slides, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return slides, nil
}

func (r *postgresSlideRepository) Update(ctx context.Context, exec SQLExecutor, slide *models.Slide) error {
	executor := getExecutor(exec, r.db)
	result, err := executor.ExecContext(ctx,
		`UPDATE slides SET title = $1, description = $2, order_index = $3, match_id = $4 WHERE id = $5`,
		slide.Title, slide.Description, slide.OrderIndex, slide.MatchID, slide.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSlideNotFound)
}

func (r *postgresSlideRepository) UpdateOrder(ctx context.Context, exec SQLExecutor, id, orderIndex int) error {
	executor := getExecutor(exec, r.db)
	result, err := executor.ExecContext(ctx, `UPDATE slides SET order_index = $1 WHERE id = $2`, orderIndex, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSlideNotFound)
}

func (r *postgresSlideRepository) UpdateImage(ctx context.Context, exec SQLExecutor, id int, imageKey *string) error {
	executor := getExecutor(exec, r.db)
	result, err := executor.ExecContext(ctx, `UPDATE slides SET image_key = $1 WHERE id = $2`, imageKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSlideNotFound)
}

func (r *postgresSlideRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := getExecutor(exec, r.db)
	result, err := executor.ExecContext(ctx, `DELETE FROM slides WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSlideNotFound)
}

func (r *postgresSlideRepository) NextOrderIndex(ctx context.Context, exec SQLExecutor) (int, error) {
	executor := getExecutor(exec, r.db)
	var next int
	err := executor.QueryRowContext(ctx, `SELECT COALESCE(MAX(order_index) + 1, 0) FROM slides`).Scan(&next)
	return next, err
}

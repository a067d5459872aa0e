package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gisvideo/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VideoRepository handles database operations for the catalog.
type VideoRepository struct {
	db *pgxpool.Pool
}

func NewVideoRepository(db *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoColumns = `id, title, description, duration, price, currency, thumbnail_url, video_url, level, subject, created_at`

func scanVideo(row pgx.Row) (*domain.Video, error) {
	var v domain.Video
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.Duration, &v.Price, &v.Currency,
		&v.ThumbnailURL, &v.VideoURL, &v.Level, &v.Subject, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Upsert inserts or replaces catalog metadata. created_at is kept on update.
func (r *VideoRepository) Upsert(ctx context.Context, v *domain.Video) error {
	query := `
		INSERT INTO videos (` + videoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			duration = EXCLUDED.duration,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			thumbnail_url = EXCLUDED.thumbnail_url,
			video_url = EXCLUDED.video_url,
			level = EXCLUDED.level,
			subject = EXCLUDED.subject
	`
	_, err := r.db.Exec(ctx, query,
		v.ID, v.Title, v.Description, v.Duration, v.Price, v.Currency,
		v.ThumbnailURL, v.VideoURL, v.Level, v.Subject, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert video: %w", err)
	}
	return nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (*domain.Video, error) {
	v, err := scanVideo(r.db.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find video: %w", err)
	}
	return v, nil
}

func (r *VideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	rows, err := r.db.Query(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	videos := []*domain.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

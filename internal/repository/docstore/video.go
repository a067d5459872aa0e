package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/gisvideo/backend/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// videoDoc is the stored form of a video. domain.Video hides the media URL
// from JSON, so it is persisted through this struct instead.
type videoDoc struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Duration     int       `json:"duration"`
	Price        int64     `json:"price"`
	Currency     string    `json:"currency"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	VideoURL     string    `json:"videoUrl"`
	Level        string    `json:"level"`
	Subject      string    `json:"subject"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toVideoDoc(v *domain.Video) videoDoc {
	return videoDoc{
		ID: v.ID, Title: v.Title, Description: v.Description, Duration: v.Duration,
		Price: v.Price, Currency: v.Currency, ThumbnailURL: v.ThumbnailURL, VideoURL: v.VideoURL,
		Level: v.Level, Subject: v.Subject, CreatedAt: v.CreatedAt,
	}
}

func (d videoDoc) video() *domain.Video {
	return &domain.Video{
		ID: d.ID, Title: d.Title, Description: d.Description, Duration: d.Duration,
		Price: d.Price, Currency: d.Currency, ThumbnailURL: d.ThumbnailURL, VideoURL: d.VideoURL,
		Level: d.Level, Subject: d.Subject, CreatedAt: d.CreatedAt,
	}
}

type VideoRepository struct {
	db *DB
}

func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Upsert inserts or replaces catalog metadata, keeping the original createdAt.
func (r *VideoRepository) Upsert(_ context.Context, v *domain.Video) error {
	return r.db.bolt.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVideos)
		doc := toVideoDoc(v)
		var existing videoDoc
		found, err := get(b, v.ID, &existing)
		if err != nil {
			return err
		}
		if found {
			doc.CreatedAt = existing.CreatedAt
		}
		return put(b, v.ID, doc)
	})
}

func (r *VideoRepository) FindByID(_ context.Context, id string) (*domain.Video, error) {
	var doc videoDoc
	var found bool
	err := r.db.bolt.View(func(tx *bolt.Tx) error {
		var err error
		found, err = get(tx.Bucket(bucketVideos), id, &doc)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find video: %w", err)
	}
	if !found {
		return nil, nil
	}
	return doc.video(), nil
}

func (r *VideoRepository) List(_ context.Context) ([]*domain.Video, error) {
	videos := []*domain.Video{}
	err := r.db.bolt.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketVideos).ForEach(func(_, v []byte) error {
			var doc videoDoc
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			videos = append(videos, doc.video())
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	// Newest first; ties keep id order.
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})
	return videos, nil
}

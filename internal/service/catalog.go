package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gisvideo/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// CatalogService serves the read-only video catalog.
type CatalogService struct {
	videos VideoStore
}

func NewCatalogService(videos VideoStore) *CatalogService {
	return &CatalogService{videos: videos}
}

type catalogFile struct {
	Videos []domain.Video `yaml:"videos"`
}

// LoadCatalogFile reads a YAML catalog of the form `videos: [...]`.
func LoadCatalogFile(path string) ([]domain.Video, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Videos) == 0 {
		return nil, fmt.Errorf("catalog %s has no videos", path)
	}
	for i, v := range f.Videos {
		if v.ID == "" || v.Price <= 0 {
			return nil, fmt.Errorf("catalog entry %d: id and a positive price are required", i)
		}
	}
	return f.Videos, nil
}

// Seed upserts the given videos into the store.
func (s *CatalogService) Seed(ctx context.Context, videos []domain.Video) error {
	now := time.Now().UTC()
	for i := range videos {
		v := videos[i]
		if v.Currency == "" {
			v.Currency = domain.DefaultCurrency
		}
		v.Currency = strings.ToUpper(v.Currency)
		if v.CreatedAt.IsZero() {
			v.CreatedAt = now
		}
		if err := s.videos.Upsert(ctx, &v); err != nil {
			return fmt.Errorf("seed video %s: %w", v.ID, err)
		}
	}
	return nil
}

func (s *CatalogService) List(ctx context.Context) ([]*domain.Video, error) {
	videos, err := s.videos.List(ctx)
	if err != nil {
		return nil, domain.ErrInternal("failed to list videos", err)
	}
	return videos, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Video, error) {
	v, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return nil, domain.ErrInternal("failed to find video", err)
	}
	if v == nil {
		return nil, domain.ErrNotFound("video not found")
	}
	return v, nil
}

package docstore

import (
	"context"
	"fmt"

	"github.com/gisvideo/backend/internal/domain"
	bolt "go.etcd.io/bbolt"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new profile. Returns domain.ErrUserExists if the id is taken.
func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	return r.db.bolt.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		if b.Get([]byte(u.ID)) != nil {
			return domain.ErrUserExists
		}
		return put(b, u.ID, u)
	})
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	var u domain.User
	var found bool
	err := r.db.bolt.View(func(tx *bolt.Tx) error {
		var err error
		found, err = get(tx.Bucket(bucketUsers), id, &u)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &u, nil
}

// IncrementStats adds to the purchase counters inside one write transaction.
// Bolt serializes writers, so concurrent increments never lose updates.
func (r *UserRepository) IncrementStats(_ context.Context, id string, spent, watched int64) error {
	return r.db.bolt.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		var u domain.User
		found, err := get(b, id, &u)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("failed to update user stats: user %s not found", id)
		}
		u.TotalSpent += spent
		u.VideosWatched += watched
		return put(b, id, &u)
	})
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	var n int64
	err := r.db.bolt.View(func(tx *bolt.Tx) error {
		n = int64(tx.Bucket(bucketUsers).Stats().KeyN)
		return nil
	})
	return n, err
}

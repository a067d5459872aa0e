package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gisvideo/backend/internal/domain"
	bolt "go.etcd.io/bbolt"
)

type PaymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create records a payment. The reference index is checked and written in
// the same transaction, so a reused reference fails with domain.ErrDuplicateReference.
func (r *PaymentRepository) Create(_ context.Context, p *domain.Payment) error {
	return r.db.bolt.Update(func(tx *bolt.Tx) error {
		refs := tx.Bucket(bucketPaymentRefs)
		if refs.Get([]byte(p.Reference)) != nil {
			return domain.ErrDuplicateReference
		}
		if err := refs.Put([]byte(p.Reference), []byte(p.ID)); err != nil {
			return err
		}
		return put(tx.Bucket(bucketPayments), p.ID, p)
	})
}

func (r *PaymentRepository) FindByReference(_ context.Context, reference string) (*domain.Payment, error) {
	var p domain.Payment
	var found bool
	err := r.db.bolt.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketPaymentRefs).Get([]byte(reference))
		if id == nil {
			return nil
		}
		var err error
		found, err = get(tx.Bucket(bucketPayments), string(id), &p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &p, nil
}

func (r *PaymentRepository) each(fn func(*domain.Payment)) error {
	return r.db.bolt.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPayments).ForEach(func(_, v []byte) error {
			var p domain.Payment
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			fn(&p)
			return nil
		})
	})
}

// ListByUser returns a user's payments, newest first.
func (r *PaymentRepository) ListByUser(_ context.Context, userID string) ([]*domain.Payment, error) {
	payments := []*domain.Payment{}
	err := r.each(func(p *domain.Payment) {
		if p.UserID == userID {
			payments = append(payments, p)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments, nil
}

func (r *PaymentRepository) Stats(_ context.Context) (*domain.PaymentStats, error) {
	var s domain.PaymentStats
	err := r.each(func(p *domain.Payment) {
		if p.Status == domain.PaymentStatusSuccessful {
			s.Successful++
			s.Revenue += p.Amount
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute payment stats: %w", err)
	}
	return &s, nil
}

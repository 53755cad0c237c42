package middlewares

import (
	"context"
	"errors"
	"time"

	"realestate-crm/models"

	"gorm.io/gorm"
)

// KeyStore persists idempotency records. Atomic runs fn against a store
// bound to one transaction.
type KeyStore interface {
	Atomic(ctx context.Context, fn func(KeyStore) error) error
	// Find returns nil when no record exists for key.
	Find(ctx context.Context, key string) (*models.IdempotencyKey, error)
	Create(ctx context.Context, rec *models.IdempotencyKey) error
	Delete(ctx context.Context, key string) error
	// Release drops the record only while it has no stored response.
	Release(ctx context.Context, key string) error
	Complete(ctx context.Context, key string, status int, contentType string, body []byte, at time.Time) error
}

// NewGormKeyStore stores idempotency records in the idempotency_keys table.
func NewGormKeyStore(db *gorm.DB) KeyStore { return gormKeys{db: db} }

type gormKeys struct{ db *gorm.DB }

func (g gormKeys) Atomic(ctx context.Context, fn func(KeyStore) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormKeys{db: tx})
	})
}

func (g gormKeys) Find(ctx context.Context, key string) (*models.IdempotencyKey, error) {
	var rec models.IdempotencyKey
	err := g.db.WithContext(ctx).Where("key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (g gormKeys) Create(ctx context.Context, rec *models.IdempotencyKey) error {
	return g.db.WithContext(ctx).Create(rec).Error
}

func (g gormKeys) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Where("key = ?", key).Delete(&models.IdempotencyKey{}).Error
}

func (g gormKeys) Release(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).
		Where("key = ? AND response_status = 0", key).
		Delete(&models.IdempotencyKey{}).Error
}

func (g gormKeys) Complete(ctx context.Context, key string, status int, contentType string, body []byte, at time.Time) error {
	return g.db.WithContext(ctx).Model(&models.IdempotencyKey{}).
		Where("key = ?", key).
		Updates(map[string]any{
			"response_status": status,
			"content_type":    contentType,
			"response_body":   body,
			"completed_at":    &at,
		}).Error
}

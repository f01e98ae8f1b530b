package repository

import (
	"context"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
)

// IdempotencyRepository stores responses to create requests so a retried
// request with the same Idempotency-Key replays instead of creating twice
type IdempotencyRepository interface {
	// GetByKey returns the unexpired key for this user, or nil
	GetByKey(ctx context.Context, key string, userID string) (*entity.IdempotencyKey, error)
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	DeleteExpired(ctx context.Context) (int64, error)
}

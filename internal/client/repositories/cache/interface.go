package cache

import (
	"context"

	"github.com/dmitrijs2005/lingua/internal/client/models"
)

// Repository stores cache entries keyed by string.
type Repository interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, error)
	Upsert(ctx context.Context, entry *models.CacheEntry) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) (int64, error)
	Keys(ctx context.Context) ([]string, error)
}

package ports

import (
	"context"

	"github.com/bnema/major-rewards-cli/internal/domain"
)

// TokenStore persists one bearer token per account key. Get reports false
// instead of failing when nothing usable is stored.
type TokenStore interface {
	Get(ctx context.Context, key domain.AccountKey) (string, bool)
	Put(ctx context.Context, key domain.AccountKey, token string) error
}

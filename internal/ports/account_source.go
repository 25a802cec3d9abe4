package ports

import (
	"context"

	"github.com/bnema/major-rewards-cli/internal/domain"
)

type AccountSource interface {
	Load(ctx context.Context) ([]domain.AccountEntry, error)
}

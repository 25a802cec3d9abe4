package application

import (
	"context"

	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/bnema/major-rewards-cli/internal/ports"
)

// AccountSummary describes one accounts file line without touching the
// network.
type AccountSummary struct {
	Line     int               `json:"line"`
	Label    string            `json:"label"`
	Key      domain.AccountKey `json:"key,omitempty"`
	Error    string            `json:"error,omitempty"`
	HasToken bool              `json:"has_token"`
}

type AccountQueries struct {
	source ports.AccountSource
	store  ports.TokenStore
}

func NewAccountQueries(source ports.AccountSource, store ports.TokenStore) *AccountQueries {
	return &AccountQueries{source: source, store: store}
}

// ListAccounts reports every account line with its label and whether a
// token is cached for it.
func (q *AccountQueries) ListAccounts(ctx context.Context) ([]AccountSummary, error) {
	entries, err := q.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]AccountSummary, 0, len(entries))
	for i, entry := range entries {
		summary := AccountSummary{Line: i + 1, Label: domain.LabelFor(entry.Raw)}

		identity, err := domain.ExtractIdentity(entry.Raw)
		if err != nil {
			summary.Error = err.Error()
			summaries = append(summaries, summary)
			continue
		}

		summary.Key = identity.Key
		if q.store != nil {
			_, summary.HasToken = q.store.Get(ctx, identity.Key)
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

package ports

import (
	"context"
	"encoding/json"
)

// Response is the raw upstream answer; classification happens in the
// application layer.
type Response struct {
	StatusCode int
	Body       []byte
}

type AuthExchanger interface {
	Exchange(ctx context.Context, payload string) (Response, error)
}

// RewardAPI is the set of request templates for the authenticated reward
// endpoints.
type RewardAPI interface {
	ListDailyTasks(ctx context.Context, token string) (Response, error)
	CompleteTask(ctx context.Context, token string, taskID int64) (Response, error)
	JoinSquad(ctx context.Context, token string) (Response, error)
	Visit(ctx context.Context, token string) (Response, error)
	SpinRoulette(ctx context.Context, token string) (Response, error)
	ClaimCoins(ctx context.Context, token string, coins int) (Response, error)
	ClaimSwipeCoins(ctx context.Context, token string, coins int) (Response, error)
	ClaimDurov(ctx context.Context, token string, payload json.RawMessage) (Response, error)
}

// ReferenceSource fetches the static lists that steer which rewards get
// claimed.
type ReferenceSource interface {
	TaskTitles(ctx context.Context) ([]string, error)
	DurovPayload(ctx context.Context) (json.RawMessage, error)
}

package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/bnema/major-rewards-cli/internal/ports"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2024, 8, 22, 12, 0, 0, 0, time.UTC)

func mockAnyContext() interface{} {
	return mock.Anything
}

func accountLine(id int, name string) string {
	user := fmt.Sprintf(`{"id":%d,"first_name":%q}`, id, name)
	return "query_id=AAH&user=" + url.QueryEscape(user) + "&auth_date=1724340000&hash=abc"
}

func accountState(id int, name string, token string) *domain.AccountState {
	state := domain.NewAccountState(domain.AccountEntry{Raw: accountLine(id, name)})
	state.SetToken(token)
	return state
}

func jsonResponse(status int, body string) ports.Response {
	return ports.Response{StatusCode: status, Body: []byte(body)}
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testNow}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d > 0 {
		c.sleeps = append(c.sleeps, d)
		c.now = c.now.Add(d)
	}
	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]time.Duration(nil), c.sleeps...)
}

type apiCall struct {
	Method  string
	Token   string
	TaskID  int64
	Coins   int
	Payload string
}

// fakeAPI answers each method from a queue; the last queued answer repeats
// and an empty queue answers 200 with an empty object.
type fakeAPI struct {
	mu        sync.Mutex
	calls     []apiCall
	responses map[string][]ports.Response
	errs      map[string]error
}

var _ ports.RewardAPI = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{responses: map[string][]ports.Response{}, errs: map[string]error{}}
}

func (f *fakeAPI) queue(method string, responses ...ports.Response) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses[method] = append(f.responses[method], responses...)
}

func (f *fakeAPI) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]apiCall(nil), f.calls...)
}

func (f *fakeAPI) Methods() []string {
	calls := f.Calls()
	methods := make([]string, 0, len(calls))
	for _, call := range calls {
		methods = append(methods, call.Method)
	}
	return methods
}

func (f *fakeAPI) answer(call apiCall) (ports.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call)
	if err := f.errs[call.Method]; err != nil {
		return ports.Response{}, err
	}

	queued := f.responses[call.Method]
	switch len(queued) {
	case 0:
		return jsonResponse(200, `{}`), nil
	case 1:
		return queued[0], nil
	default:
		f.responses[call.Method] = queued[1:]
		return queued[0], nil
	}
}

func (f *fakeAPI) ListDailyTasks(_ context.Context, token string) (ports.Response, error) {
	return f.answer(apiCall{Method: "ListDailyTasks", Token: token})
}

func (f *fakeAPI) CompleteTask(_ context.Context, token string, taskID int64) (ports.Response, error) {
	return f.answer(apiCall{Method: "CompleteTask", Token: token, TaskID: taskID})
}

func (f *fakeAPI) JoinSquad(_ context.Context, token string) (ports.Response, error) {
	return f.answer(apiCall{Method: "JoinSquad", Token: token})
}

func (f *fakeAPI) Visit(_ context.Context, token string) (ports.Response, error) {
	return f.answer(apiCall{Method: "Visit", Token: token})
}

func (f *fakeAPI) SpinRoulette(_ context.Context, token string) (ports.Response, error) {
	return f.answer(apiCall{Method: "SpinRoulette", Token: token})
}

func (f *fakeAPI) ClaimCoins(_ context.Context, token string, coins int) (ports.Response, error) {
	return f.answer(apiCall{Method: "ClaimCoins", Token: token, Coins: coins})
}

func (f *fakeAPI) ClaimSwipeCoins(_ context.Context, token string, coins int) (ports.Response, error) {
	return f.answer(apiCall{Method: "ClaimSwipeCoins", Token: token, Coins: coins})
}

func (f *fakeAPI) ClaimDurov(_ context.Context, token string, payload json.RawMessage) (ports.Response, error) {
	return f.answer(apiCall{Method: "ClaimDurov", Token: token, Payload: string(payload)})
}

type fakeRefs struct {
	titles    []string
	titlesErr error
	durov     json.RawMessage
	durovErr  error
}

func (f fakeRefs) TaskTitles(context.Context) ([]string, error) {
	return f.titles, f.titlesErr
}

func (f fakeRefs) DurovPayload(context.Context) (json.RawMessage, error) {
	return f.durov, f.durovErr
}

type fakeRefresher struct {
	calls int
	token string
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context, state *domain.AccountState) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	state.SetToken(f.token)
	return f.token, nil
}

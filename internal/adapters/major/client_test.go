package major

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) last(t *testing.T) recordedRequest {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.requests)
	return r.requests[len(r.requests)-1]
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *recorder) {
	t.Helper()

	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		rec.mu.Unlock()

		if handler != nil {
			handler(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	return server, rec
}

func newTestClient(t *testing.T, server *httptest.Server, cfg Config) *Client {
	t.Helper()

	cfg.BaseURL = server.URL
	client, err := NewClient(cfg, server.Client())
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsInvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, base := range []string{"ftp://major.bot", "https://", "://bad"} {
		_, err := NewClient(Config{BaseURL: base}, nil)
		assert.Error(t, err, base)
	}
}

func TestExchangePostsInitData(t *testing.T) {
	t.Parallel()

	server, rec := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	})
	client := newTestClient(t, server, Config{})

	resp, err := client.Exchange(context.Background(), "user=%7B%22id%22%3A1%7D&hash=abc")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"access_token":"tok"}`, string(resp.Body))

	req := rec.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/auth/tg/", req.Path)
	assert.Empty(t, req.Auth)
	assert.JSONEq(t, `{"init_data":"user=%7B%22id%22%3A1%7D&hash=abc"}`, req.Body)
}

func TestListDailyTasksSendsBearerAndQuery(t *testing.T) {
	t.Parallel()

	server, rec := newTestServer(t, nil)
	client := newTestClient(t, server, Config{})

	_, err := client.ListDailyTasks(context.Background(), "tok")
	require.NoError(t, err)

	req := rec.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/tasks/", req.Path)
	assert.Equal(t, "is_daily=true", req.Query)
	assert.Equal(t, "Bearer tok", req.Auth)
}

func TestRewardEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		call func(*Client) error
		path string
		body string
	}{
		{name: "complete task", call: func(c *Client) error {
			_, err := c.CompleteTask(context.Background(), "tok", 42)
			return err
		}, path: "/api/tasks/", body: `{"task_id":42}`},
		{name: "join squad", call: func(c *Client) error {
			_, err := c.JoinSquad(context.Background(), "tok")
			return err
		}, path: "/api/squads/777/join/", body: `{}`},
		{name: "visit", call: func(c *Client) error {
			_, err := c.Visit(context.Background(), "tok")
			return err
		}, path: "/api/user-visits/visit/", body: `{}`},
		{name: "roulette", call: func(c *Client) error {
			_, err := c.SpinRoulette(context.Background(), "tok")
			return err
		}, path: "/api/roulette/", body: `{}`},
		{name: "coins", call: func(c *Client) error {
			_, err := c.ClaimCoins(context.Background(), "tok", 900)
			return err
		}, path: "/api/bonuses/coins/", body: `{"coins":900}`},
		{name: "swipe coins", call: func(c *Client) error {
			_, err := c.ClaimSwipeCoins(context.Background(), "tok", 2900)
			return err
		}, path: "/api/swipe_coin/", body: `{"coins":2900}`},
		{name: "durov", call: func(c *Client) error {
			_, err := c.ClaimDurov(context.Background(), "tok", json.RawMessage(`{"choice_1":2}`))
			return err
		}, path: "/api/durov/", body: `{"choice_1":2}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, rec := newTestServer(t, nil)
			client := newTestClient(t, server, Config{SquadID: "777"})

			require.NoError(t, tt.call(client))

			req := rec.last(t)
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, tt.path, req.Path)
			assert.Equal(t, "Bearer tok", req.Auth)
			assert.JSONEq(t, tt.body, req.Body)
		})
	}
}

func TestClientReturnsErrorStatusesAsResponses(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":{"blocked_until":1724342400}}`))
	})
	client := newTestClient(t, server, Config{})

	resp, err := client.Visit(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "blocked_until")
}

func TestClientWrapsTransportErrors(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, nil)
	client := newTestClient(t, server, Config{})
	server.Close()

	_, err := client.SpinRoulette(context.Background(), "tok")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "post /api/roulette/")
}

func TestTaskTitlesFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "newline text", body: "Boost Major\r\n\nInvite a friend\n", want: []string{"Boost Major", "Invite a friend"}},
		{name: "json array", body: ` ["Boost Major","Invite a friend"] `, want: []string{"Boost Major", "Invite a friend"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			client := newTestClient(t, server, Config{})
			client.cfg.TaskTitlesURL = server.URL + "/Major.txt"

			titles, err := client.TaskTitles(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestReferenceFetchFailures(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`not json`))
	})
	client := newTestClient(t, server, Config{})

	client.cfg.TaskTitlesURL = server.URL + "/missing"
	_, err := client.TaskTitles(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")

	client.cfg.DurovPayloadURL = server.URL + "/durov.json"
	_, err = client.DurovPayload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid json")
}

func TestDurovPayloadReturnsJSON(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{\"choice_1\":1,\"choice_2\":2}\n"))
	})
	client := newTestClient(t, server, Config{})
	client.cfg.DurovPayloadURL = server.URL + "/durov.json"

	payload, err := client.DurovPayload(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, `{"choice_1":1,"choice_2":2}`, string(payload))
}

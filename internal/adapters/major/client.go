package major

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/bnema/major-rewards-cli/internal/ports"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL         = "https://major.bot"
	DefaultSquadID         = "2416499148"
	DefaultTaskTitlesURL   = "https://raw.githubusercontent.com/chitoz1300/REXBOT/main/Major.txt"
	DefaultDurovPayloadURL = "https://raw.githubusercontent.com/chitoz1300/REXBOT/main/Pavelmajor.json"
	DefaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	defaultRequestTimeout = 30 * time.Second
)

type Config struct {
	BaseURL         string
	SquadID         string
	TaskTitlesURL   string
	DurovPayloadURL string
	UserAgent       string
	RequestTimeout  time.Duration
}

// Client holds the request templates for every upstream endpoint. It never
// classifies status codes; callers get the raw status and body back.
type Client struct {
	rest *resty.Client
	cfg  Config
}

var (
	_ ports.AuthExchanger   = (*Client)(nil)
	_ ports.RewardAPI       = (*Client)(nil)
	_ ports.ReferenceSource = (*Client)(nil)
)

func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	cfg = cfg.withDefaults()

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("api base url host is required")
	}

	rest := resty.New()
	if httpClient != nil {
		rest = resty.NewWithClient(httpClient)
	}

	origin := strings.TrimRight(cfg.BaseURL, "/")
	rest.
		SetBaseURL(origin).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("accept", "application/json, text/plain, */*").
		SetHeader("accept-language", "en-US,en;q=0.9").
		SetHeader("content-type", "application/json").
		SetHeader("origin", origin).
		SetHeader("referer", origin+"/").
		SetHeader("sec-fetch-dest", "empty").
		SetHeader("sec-fetch-mode", "cors").
		SetHeader("sec-fetch-site", "same-origin").
		SetHeader("user-agent", cfg.UserAgent)

	return &Client{rest: rest, cfg: cfg}, nil
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.SquadID == "" {
		c.SquadID = DefaultSquadID
	}
	if c.TaskTitlesURL == "" {
		c.TaskTitlesURL = DefaultTaskTitlesURL
	}
	if c.DurovPayloadURL == "" {
		c.DurovPayloadURL = DefaultDurovPayloadURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	return c
}

type authRequest struct {
	InitData string `json:"init_data"`
}

type taskRequest struct {
	TaskID int64 `json:"task_id"`
}

type coinsRequest struct {
	Coins int `json:"coins"`
}

func (c *Client) Exchange(ctx context.Context, payload string) (ports.Response, error) {
	return c.post(ctx, "", "/api/auth/tg/", authRequest{InitData: payload})
}

func (c *Client) ListDailyTasks(ctx context.Context, token string) (ports.Response, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("is_daily", "true").
		SetHeader("referer", c.referer("/earn")).
		Get("/api/tasks/")
	return toResponse(resp, err, "list daily tasks")
}

func (c *Client) CompleteTask(ctx context.Context, token string, taskID int64) (ports.Response, error) {
	return c.post(ctx, token, "/api/tasks/", taskRequest{TaskID: taskID})
}

func (c *Client) JoinSquad(ctx context.Context, token string) (ports.Response, error) {
	return c.post(ctx, token, "/api/squads/"+url.PathEscape(c.cfg.SquadID)+"/join/", struct{}{})
}

func (c *Client) Visit(ctx context.Context, token string) (ports.Response, error) {
	return c.post(ctx, token, "/api/user-visits/visit/", struct{}{})
}

func (c *Client) SpinRoulette(ctx context.Context, token string) (ports.Response, error) {
	return c.post(ctx, token, "/api/roulette/", struct{}{})
}

func (c *Client) ClaimCoins(ctx context.Context, token string, coins int) (ports.Response, error) {
	return c.post(ctx, token, "/api/bonuses/coins/", coinsRequest{Coins: coins})
}

func (c *Client) ClaimSwipeCoins(ctx context.Context, token string, coins int) (ports.Response, error) {
	return c.post(ctx, token, "/api/swipe_coin/", coinsRequest{Coins: coins})
}

func (c *Client) ClaimDurov(ctx context.Context, token string, payload json.RawMessage) (ports.Response, error) {
	return c.post(ctx, token, "/api/durov/", payload)
}

// TaskTitles accepts either newline-delimited text or a JSON array of
// strings.
func (c *Client) TaskTitles(ctx context.Context) ([]string, error) {
	body, err := c.fetchReference(ctx, c.cfg.TaskTitlesURL, "task titles")
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var titles []string
		if err := json.Unmarshal(trimmed, &titles); err != nil {
			return nil, fmt.Errorf("decode task titles: %w", err)
		}
		return titles, nil
	}

	return domain.ParseTitleList(string(body)), nil
}

func (c *Client) DurovPayload(ctx context.Context) (json.RawMessage, error) {
	body, err := c.fetchReference(ctx, c.cfg.DurovPayloadURL, "durov payload")
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, errors.New("decode durov payload: invalid json")
	}

	return json.RawMessage(trimmed), nil
}

func (c *Client) post(ctx context.Context, token string, path string, body any) (ports.Response, error) {
	req := c.rest.R().
		SetContext(ctx).
		SetBody(body).
		SetHeader("referer", c.referer("/reward"))
	if token != "" {
		req.SetAuthToken(token)
	}

	resp, err := req.Post(path)
	return toResponse(resp, err, "post "+path)
}

func (c *Client) fetchReference(ctx context.Context, location string, what string) ([]byte, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("accept", "*/*").
		Get(location)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", what, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", what, resp.StatusCode())
	}

	return resp.Body(), nil
}

func (c *Client) referer(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func toResponse(resp *resty.Response, err error, op string) (ports.Response, error) {
	if err != nil {
		return ports.Response{}, fmt.Errorf("%s: %w", op, err)
	}

	return ports.Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

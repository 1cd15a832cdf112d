// Package remote implements the HTTP client for the LexiQuest progress
// service. Every failure leaving this package is classified so callers can
// tell indefinite failures (worth retrying or requeueing) from definite
// ones (safe to discard).
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/lexiquest/progress-engine/internal/domain/mutation"
	"github.com/lexiquest/progress-engine/internal/domain/progress"
	"github.com/lexiquest/progress-engine/pkg/errclass"
)

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Config holds client settings.
type Config struct {
	// BaseURL is the service root, e.g. https://api.lexiquest.app.
	BaseURL string

	// Timeout bounds each request end to end.
	Timeout time.Duration

	// RequestsPerSecond and Burst configure the outbound rate limit.
	RequestsPerSecond float64
	Burst             int

	// UserAgent is sent with every request.
	UserAgent string

	Logger *slog.Logger
}

// DefaultConfig returns production settings.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		Timeout:           15 * time.Second,
		RequestsPerSecond: 5,
		Burst:             10,
		UserAgent:         "lexisync/1.0",
	}
}

// Client talks to the progress service.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	limiter   *RateLimiter
	userAgent string
	logger    *slog.Logger
}

// NewClient creates a client. tokens may be nil for unauthenticated
// endpoints only.
func NewClient(cfg Config, tokens TokenSource) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		http:      &http.Client{Timeout: cfg.Timeout},
		tokens:    tokens,
		limiter:   NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		userAgent: cfg.UserAgent,
		logger:    cfg.Logger,
	}
}

// do executes one request and decodes a JSON response into out (out may be
// nil for endpoints with no useful body). Non-2xx responses come back as
// *errclass.StatusError; undecodable bodies as *errclass.ParseError.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			// A missing or locally expired token is an auth failure, same
			// as a 401: queued work waits for re-authentication.
			return &errclass.Classified{
				Kind: errclass.KindAuth,
				Err:  fmt.Errorf("bearer token: %w", err),
			}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error wraps timeouts and connection failures; Classify
		// sorts them into timeout vs network downstream.
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("remote call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &errclass.StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &errclass.ParseError{Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}
	return nil
}

// GetProgress fetches the authoritative progress snapshot. The bearer token
// identifies the user; userID only backfills a snapshot the service returned
// without one.
func (c *Client) GetProgress(ctx context.Context, userID string) (*progress.UserProgress, error) {
	var dto progressDTO
	if err := c.do(ctx, http.MethodGet, "/v1/progress", nil, nil, &dto); err != nil {
		return nil, err
	}
	if dto.UserID == "" {
		dto.UserID = userID
	}
	return toDomainProgress(dto), nil
}

// PushMutation delivers one queued mutation. The idempotency key travels in
// a header as well as the body so redelivery after an ambiguous failure is
// deduplicated server-side.
func (c *Client) PushMutation(ctx context.Context, m mutation.Mutation) error {
	headers := map[string]string{"Idempotency-Key": m.IdempotencyKey}
	return c.do(ctx, http.MethodPost, "/v1/progress/mutations", headers, toWireMutation(m), nil)
}

// ListChallenges fetches the user's current daily challenges.
func (c *Client) ListChallenges(ctx context.Context, userID string) ([]progress.DailyChallenge, error) {
	var dtos []challengeDTO
	if err := c.do(ctx, http.MethodGet, "/v1/challenges", nil, nil, &dtos); err != nil {
		return nil, err
	}
	challenges := make([]progress.DailyChallenge, 0, len(dtos))
	for _, dto := range dtos {
		challenges = append(challenges, toDomainChallenge(dto))
	}
	return challenges, nil
}

// AdvanceChallenge reports challenge progress to the service, deduplicated
// by the mutation's idempotency key.
func (c *Client) AdvanceChallenge(ctx context.Context, challengeID string, steps int, idempotencyKey string) error {
	path := fmt.Sprintf("/v1/challenges/%s/advance", url.PathEscape(challengeID))
	headers := map[string]string{"Idempotency-Key": idempotencyKey}
	return c.do(ctx, http.MethodPost, path, headers, advanceChallengeDTO{Steps: steps}, nil)
}

// GetLeaderboard fetches the standings for a period.
func (c *Client) GetLeaderboard(ctx context.Context, period progress.Period) (progress.Leaderboard, error) {
	var dto leaderboardDTO
	path := "/v1/leaderboard/" + url.PathEscape(string(period))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &dto); err != nil {
		return progress.Leaderboard{}, err
	}
	return toDomainLeaderboard(dto, time.Now()), nil
}

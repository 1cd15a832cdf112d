package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiquest/progress-engine/internal/domain/mutation"
	"github.com/lexiquest/progress-engine/internal/domain/progress"
	"github.com/lexiquest/progress-engine/pkg/errclass"
)

type staticTokens string

func (s staticTokens) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

type failingTokens struct{ err error }

func (f failingTokens) Token(ctx context.Context) (string, error) {
	return "", f.err
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(srv.URL)
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	return NewClient(cfg, staticTokens("test-token"))
}

func TestGetProgress_MapsWireFormat(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/progress", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"userId": "u1",
			"totalXp": 3162,
			"level": 1,
			"currentStreak": 4,
			"longestStreak": 9,
			"lessonsCompleted": 12,
			"languageXp": {"es": 3000, "fr": 162}
		}`))
	}))

	p, err := client.GetProgress(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, 3162, p.TotalXP)
	assert.Equal(t, 10, p.Level, "level is recomputed from XP, not trusted from the wire")
	assert.Equal(t, 4, p.CurrentStreak)
	assert.Equal(t, 3000, p.LanguageXP["es"])
	assert.NotNil(t, p.UnlockedAchievements)
}

func TestGetProgress_Unauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))

	_, err := client.GetProgress(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, errclass.KindAuth, errclass.KindOf(err))
	assert.False(t, errclass.IsRetryable(err))
}

func TestDo_TokenSourceFailureIsAuth(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(srv.URL)
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	client := NewClient(cfg, failingTokens{err: errors.New("token expired")})

	_, err := client.GetProgress(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, errclass.KindAuth, errclass.KindOf(err),
		"a locally expired token is an auth failure, same as a 401")
	assert.False(t, errclass.IsRetryable(err))
	assert.Zero(t, requests, "the request never leaves the device")
}

func TestGetProgress_ServerErrorIsRetryable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.GetProgress(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, errclass.KindServer, errclass.KindOf(err))
	assert.True(t, errclass.IsRetryable(err))
}

func TestGetProgress_MalformedBodyIsParsing(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalXp": `))
	}))

	_, err := client.GetProgress(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, errclass.KindParsing, errclass.KindOf(err))
	assert.False(t, errclass.IsRetryable(err))
}

func TestGetProgress_TimeoutIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(srv.URL)
	cfg.Timeout = 20 * time.Millisecond
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	client := NewClient(cfg, nil)

	_, err := client.GetProgress(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, errclass.KindTimeout, errclass.KindOf(err))
	assert.True(t, errclass.IsRetryable(err))
}

func TestPushMutation_SendsIdempotencyKey(t *testing.T) {
	var gotKey, gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	}))

	m, err := mutation.New("u1", mutation.KindAddXP, mutation.AddXPPayload{Amount: 150}, time.Now())
	require.NoError(t, err)

	require.NoError(t, client.PushMutation(context.Background(), m))
	assert.Equal(t, m.IdempotencyKey, gotKey)
	assert.Equal(t, "/v1/progress/mutations", gotPath)
}

func TestAdvanceChallenge_PostsSteps(t *testing.T) {
	var gotPath, gotKey, gotBody string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Idempotency-Key")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusAccepted)
	}))

	require.NoError(t, client.AdvanceChallenge(context.Background(), "c1", 2, "key-1"))
	assert.Equal(t, "/v1/challenges/c1/advance", gotPath)
	assert.Equal(t, "key-1", gotKey)
	assert.JSONEq(t, `{"steps": 2}`, gotBody)
}

func TestListChallenges_MapsProgress(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": "c1", "difficulty": "easy", "type": "complete_lessons",
			 "xpReward": 50, "expiresAt": "2026-03-02T00:00:00Z",
			 "current": 1, "target": 3}
		]`))
	}))

	challenges, err := client.ListChallenges(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, challenges, 1)
	assert.Equal(t, progress.ChallengeCompleteLessons, challenges[0].Type)
	assert.Equal(t, 1, challenges[0].Progress.Current)
	assert.Equal(t, 3, challenges[0].Progress.Target)
}

func TestGetLeaderboard_SetsPeriodAndFetchedAt(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/leaderboard/weekly", r.URL.Path)
		w.Write([]byte(`{"period": "weekly", "entries": [
			{"userId": "u2", "rank": 1, "xp": 900}
		]}`))
	}))

	lb, err := client.GetLeaderboard(context.Background(), progress.PeriodWeekly)
	require.NoError(t, err)
	assert.Equal(t, progress.PeriodWeekly, lb.Period)
	require.Len(t, lb.Entries, 1)
	assert.Equal(t, progress.PeriodWeekly, lb.Entries[0].Period)
	assert.WithinDuration(t, time.Now(), lb.FetchedAt, 5*time.Second)
}

func TestRateLimiter_AllowExhaustsBurst(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)

	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow(), "burst spent, refill is effectively zero")
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, limiter.Wait(ctx), context.DeadlineExceeded)
}

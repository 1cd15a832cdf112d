package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lexiquest/progress-engine/internal/domain/progress"
	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

// ProgressRepository implements progress.Store over the documents table.
// Snapshots are opaque versioned-JSON blobs keyed by entity.
type ProgressRepository struct {
	db *DB
}

// NewProgressRepository creates the repository.
func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func progressKey(userID string) string {
	return "progress:" + userID
}

func challengesKey(userID string) string {
	return "challenges:" + userID
}

func leaderboardKey(period progress.Period) string {
	return "leaderboard:" + string(period)
}

// saveDocument upserts a versioned JSON document.
func (r *ProgressRepository) saveDocument(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", key, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO documents (key, version, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		key, documentVersion, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save document %s: %w", key, err)
	}
	return nil
}

// loadDocument reads a document into target, returning shared.ErrNotFound
// when the key is absent.
func (r *ProgressRepository) loadDocument(ctx context.Context, key string, target any) error {
	var data []byte
	err := r.db.GetContext(ctx, &data, `SELECT data FROM documents WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("document %s: %w", key, shared.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load document %s: %w", key, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode document %s: %w", key, err)
	}
	return nil
}

// SaveProgress durably persists the snapshot.
func (r *ProgressRepository) SaveProgress(ctx context.Context, p *progress.UserProgress) error {
	return r.saveDocument(ctx, progressKey(p.UserID), p)
}

// LoadProgress returns the stored snapshot for a user.
func (r *ProgressRepository) LoadProgress(ctx context.Context, userID string) (*progress.UserProgress, error) {
	var p progress.UserProgress
	if err := r.loadDocument(ctx, progressKey(userID), &p); err != nil {
		return nil, err
	}
	if p.LanguageXP == nil {
		p.LanguageXP = make(map[string]int)
	}
	if p.UnlockedAchievements == nil {
		p.UnlockedAchievements = make(map[string]time.Time)
	}
	return &p, nil
}

// SaveChallenges replaces the stored daily challenge snapshot.
func (r *ProgressRepository) SaveChallenges(ctx context.Context, userID string, challenges []progress.DailyChallenge) error {
	return r.saveDocument(ctx, challengesKey(userID), challenges)
}

// LoadChallenges returns the stored daily challenges.
func (r *ProgressRepository) LoadChallenges(ctx context.Context, userID string) ([]progress.DailyChallenge, error) {
	var challenges []progress.DailyChallenge
	err := r.loadDocument(ctx, challengesKey(userID), &challenges)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// SaveLeaderboard caches a fetched leaderboard for offline reads.
func (r *ProgressRepository) SaveLeaderboard(ctx context.Context, lb progress.Leaderboard) error {
	return r.saveDocument(ctx, leaderboardKey(lb.Period), lb)
}

// LoadLeaderboard returns the cached leaderboard for a period.
func (r *ProgressRepository) LoadLeaderboard(ctx context.Context, period progress.Period) (progress.Leaderboard, error) {
	var lb progress.Leaderboard
	if err := r.loadDocument(ctx, leaderboardKey(period), &lb); err != nil {
		return progress.Leaderboard{}, err
	}
	return lb, nil
}

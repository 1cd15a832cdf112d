package progress

import "context"

// Store is the local persistence boundary for gamification state. The
// engine treats it as an opaque durable blob store of versioned JSON
// documents; SQLite implements it in this repo.
type Store interface {
	// SaveProgress durably persists the snapshot.
	SaveProgress(ctx context.Context, p *UserProgress) error

	// LoadProgress returns the stored snapshot for a user, or
	// shared.ErrNotFound when the user has no local state yet.
	LoadProgress(ctx context.Context, userID string) (*UserProgress, error)

	// SaveChallenges replaces the stored daily challenge snapshot.
	SaveChallenges(ctx context.Context, userID string, challenges []DailyChallenge) error

	// LoadChallenges returns the stored daily challenges; an empty slice
	// when none are stored.
	LoadChallenges(ctx context.Context, userID string) ([]DailyChallenge, error)

	// SaveLeaderboard caches a fetched leaderboard for offline reads.
	SaveLeaderboard(ctx context.Context, lb Leaderboard) error

	// LoadLeaderboard returns the cached leaderboard for a period, or
	// shared.ErrNotFound when nothing has been cached.
	LoadLeaderboard(ctx context.Context, period Period) (Leaderboard, error)
}

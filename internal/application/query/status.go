// Package query holds the read side: snapshot projections assembled for
// the CLI and any embedding UI. Queries never mutate state.
package query

import (
	"context"
	"time"

	"github.com/lexiquest/progress-engine/internal/application/syncer"
	"github.com/lexiquest/progress-engine/internal/domain/progress"
)

// StatusReport is the one-call summary of a user's gamification state and
// the engine's sync position.
type StatusReport struct {
	UserID         string  `json:"user_id"`
	SyncState      string  `json:"sync_state"`
	QueueDepth     int     `json:"queue_depth"`
	TotalXP        int     `json:"total_xp"`
	Level          int     `json:"level"`
	ProgressToNext float64 `json:"progress_to_next"`
	Rank           string  `json:"rank"`
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	StreakActive   bool    `json:"streak_active"`

	LessonsCompleted int `json:"lessons_completed"`
	WordsLearned     int `json:"words_learned"`
	MinutesStudied   int `json:"minutes_studied"`
	PerfectQuizzes   int `json:"perfect_quizzes"`

	UnlockedAchievements int `json:"unlocked_achievements"`
	TotalAchievements    int `json:"total_achievements"`

	WeeklyActivity []progress.DailyActivity `json:"weekly_activity"`
}

// StalenessThreshold is how old a cached leaderboard may be before it is
// labelled stale.
const StalenessThreshold = time.Hour

// LeaderboardView is a leaderboard plus a staleness verdict for display.
type LeaderboardView struct {
	progress.Leaderboard
	Stale bool `json:"stale"`
}

// Service answers read queries from the coordinator's owned state.
type Service struct {
	coord   *syncer.Coordinator
	catalog []progress.Achievement
	now     func() time.Time
}

// NewService creates the query service.
func NewService(coord *syncer.Coordinator) *Service {
	return &Service{
		coord:   coord,
		catalog: progress.Catalog(),
		now:     time.Now,
	}
}

// Status assembles the status report.
func (s *Service) Status(ctx context.Context) (StatusReport, error) {
	snap := s.coord.Snapshot()
	depth, err := s.coord.QueueDepth(ctx)
	if err != nil {
		return StatusReport{}, err
	}

	return StatusReport{
		UserID:               snap.UserID,
		SyncState:            s.coord.State().String(),
		QueueDepth:           depth,
		TotalXP:              snap.TotalXP,
		Level:                snap.Level,
		ProgressToNext:       snap.ProgressToNext(),
		Rank:                 string(snap.Rank()),
		CurrentStreak:        snap.CurrentStreak,
		LongestStreak:        snap.LongestStreak,
		StreakActive:         snap.IsStreakActive(s.now()),
		LessonsCompleted:     snap.LessonsCompleted,
		WordsLearned:         snap.WordsLearned,
		MinutesStudied:       snap.MinutesStudied,
		PerfectQuizzes:       snap.PerfectQuizzes,
		UnlockedAchievements: len(snap.UnlockedAchievements),
		TotalAchievements:    len(s.catalog),
		WeeklyActivity:       snap.WeeklyActivity,
	}, nil
}

// AchievementView pairs a catalog achievement with its unlock state for the
// given snapshot.
type AchievementView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Rarity      string     `json:"rarity"`
	XPReward    int        `json:"xp_reward"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// Achievements lists the full catalog with unlock state.
func (s *Service) Achievements(ctx context.Context) []AchievementView {
	snap := s.coord.Snapshot()

	views := make([]AchievementView, 0, len(s.catalog))
	for _, a := range s.catalog {
		view := AchievementView{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Rarity:      a.Rarity.String(),
			XPReward:    a.XPReward,
		}
		if at, ok := snap.UnlockedAchievements[a.ID]; ok {
			view.Unlocked = true
			unlockedAt := at
			view.UnlockedAt = &unlockedAt
		}
		views = append(views, view)
	}
	return views
}

// Challenges returns today's challenges with their live progress.
func (s *Service) Challenges(ctx context.Context) []progress.DailyChallenge {
	return s.coord.Challenges()
}

// Leaderboard returns standings for a period, labelled stale when the copy
// is older than the staleness threshold.
func (s *Service) Leaderboard(ctx context.Context, period progress.Period) (LeaderboardView, error) {
	lb, err := s.coord.Leaderboard(ctx, period)
	if err != nil {
		return LeaderboardView{}, err
	}
	return LeaderboardView{
		Leaderboard: lb,
		Stale:       s.now().Sub(lb.FetchedAt) > StalenessThreshold,
	}, nil
}

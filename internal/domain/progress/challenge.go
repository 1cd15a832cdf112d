package progress

import (
	"fmt"
	"time"

	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

// ChallengeDifficulty grades a daily challenge.
type ChallengeDifficulty string

const (
	ChallengeEasy   ChallengeDifficulty = "easy"
	ChallengeMedium ChallengeDifficulty = "medium"
	ChallengeHard   ChallengeDifficulty = "hard"
)

// ChallengeType names what the challenge counts.
type ChallengeType string

const (
	ChallengeEarnXP          ChallengeType = "earn_xp"
	ChallengeCompleteLessons ChallengeType = "complete_lessons"
	ChallengeLearnWords      ChallengeType = "learn_words"
	ChallengePerfectQuiz     ChallengeType = "perfect_quiz"
	ChallengeStudyMinutes    ChallengeType = "study_minutes"
)

// ChallengeProgress tracks how far a challenge has advanced.
type ChallengeProgress struct {
	Current int `json:"current"`
	Target  int `json:"target"`
}

// DailyChallenge is a time-boxed goal with XP and coin rewards.
type DailyChallenge struct {
	ID          string              `json:"id"`
	Difficulty  ChallengeDifficulty `json:"difficulty"`
	Type        ChallengeType       `json:"type"`
	XPReward    int                 `json:"xp_reward"`
	CoinsReward int                 `json:"coins_reward"`
	ExpiresAt   time.Time           `json:"expires_at"`
	Progress    ChallengeProgress   `json:"progress"`
}

// IsCompleted reports whether the challenge target has been reached.
func (c DailyChallenge) IsCompleted() bool {
	return c.Progress.Current >= c.Progress.Target
}

// IsExpired reports whether the challenge deadline has passed.
func (c DailyChallenge) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// IsFailed reports whether the challenge is terminally failed: expired
// while incomplete. A failed challenge must never become completable
// retroactively.
func (c DailyChallenge) IsFailed(now time.Time) bool {
	return c.IsExpired(now) && !c.IsCompleted()
}

// Advance moves the challenge forward by steps. It returns true when this
// call is the one that completed the challenge, so the caller awards the
// reward exactly once. Advancing an expired incomplete challenge fails.
func (c *DailyChallenge) Advance(steps int, now time.Time) (completed bool, err error) {
	if steps <= 0 {
		return false, fmt.Errorf("advance by %d: %w", steps, shared.ErrInvalidArgument)
	}
	if c.IsFailed(now) {
		return false, fmt.Errorf("challenge %s: %w", c.ID, shared.ErrChallengeExpired)
	}

	wasCompleted := c.IsCompleted()
	c.Progress.Current += steps
	if c.Progress.Current > c.Progress.Target {
		c.Progress.Current = c.Progress.Target
	}
	return !wasCompleted && c.IsCompleted(), nil
}

package progress

import (
	"time"

	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

// Domain events published by the sync coordinator as it applies mutations.
// Presentation layers subscribe to these to drive celebration UI; this repo
// only logs them.

// XPGainedEvent fires for every XP credit.
type XPGainedEvent struct {
	shared.BaseEvent
	Amount       int    `json:"amount"`
	TotalXP      int    `json:"total_xp"`
	LanguageCode string `json:"language_code,omitempty"`
}

// NewXPGainedEvent creates an XPGainedEvent.
func NewXPGainedEvent(userID string, amount, totalXP int, languageCode string, at time.Time) XPGainedEvent {
	return XPGainedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventXPGained, userID, at),
		Amount:       amount,
		TotalXP:      totalXP,
		LanguageCode: languageCode,
	}
}

// LevelUpEvent fires when derived level increases.
type LevelUpEvent struct {
	shared.BaseEvent
	OldLevel int `json:"old_level"`
	NewLevel int `json:"new_level"`
}

// NewLevelUpEvent creates a LevelUpEvent.
func NewLevelUpEvent(userID string, oldLevel, newLevel int, at time.Time) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventLevelUp, userID, at),
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
	}
}

// StreakExtendedEvent fires when the streak grows.
type StreakExtendedEvent struct {
	shared.BaseEvent
	StreakDays int `json:"streak_days"`
}

// NewStreakExtendedEvent creates a StreakExtendedEvent.
func NewStreakExtendedEvent(userID string, streakDays int, at time.Time) StreakExtendedEvent {
	return StreakExtendedEvent{
		BaseEvent:  shared.NewBaseEvent(shared.EventStreakExtended, userID, at),
		StreakDays: streakDays,
	}
}

// StreakResetEvent fires when a broken streak is zeroed.
type StreakResetEvent struct {
	shared.BaseEvent
	LostStreakDays int `json:"lost_streak_days"`
}

// NewStreakResetEvent creates a StreakResetEvent.
func NewStreakResetEvent(userID string, lostDays int, at time.Time) StreakResetEvent {
	return StreakResetEvent{
		BaseEvent:      shared.NewBaseEvent(shared.EventStreakReset, userID, at),
		LostStreakDays: lostDays,
	}
}

// AchievementUnlockedEvent fires exactly once per achievement.
type AchievementUnlockedEvent struct {
	shared.BaseEvent
	AchievementID string `json:"achievement_id"`
	Title         string `json:"title"`
	Rarity        string `json:"rarity"`
	XPReward      int    `json:"xp_reward"`
}

// NewAchievementUnlockedEvent creates an AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(userID string, a Achievement, at time.Time) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     shared.NewBaseEvent(shared.EventAchievementUnlocked, userID, at),
		AchievementID: a.ID,
		Title:         a.Title,
		Rarity:        a.Rarity.String(),
		XPReward:      a.XPReward,
	}
}

// ChallengeCompletedEvent fires when a daily challenge reaches its target.
type ChallengeCompletedEvent struct {
	shared.BaseEvent
	ChallengeID string `json:"challenge_id"`
	XPReward    int    `json:"xp_reward"`
	CoinsReward int    `json:"coins_reward"`
}

// NewChallengeCompletedEvent creates a ChallengeCompletedEvent.
func NewChallengeCompletedEvent(userID string, c DailyChallenge, at time.Time) ChallengeCompletedEvent {
	return ChallengeCompletedEvent{
		BaseEvent:   shared.NewBaseEvent(shared.EventChallengeCompleted, userID, at),
		ChallengeID: c.ID,
		XPReward:    c.XPReward,
		CoinsReward: c.CoinsReward,
	}
}

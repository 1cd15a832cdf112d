package remote

import (
	"encoding/json"
	"time"
)

// Wire DTOs for the progress service. The service speaks camelCase JSON;
// mapping to domain types happens in mapper.go so the domain never sees
// wire shapes.

type progressDTO struct {
	UserID               string               `json:"userId"`
	TotalXP              int                  `json:"totalXp"`
	Level                int                  `json:"level"`
	CurrentStreak        int                  `json:"currentStreak"`
	LongestStreak        int                  `json:"longestStreak"`
	LastActivityDate     time.Time            `json:"lastActivityDate"`
	LessonsCompleted     int                  `json:"lessonsCompleted"`
	WordsLearned         int                  `json:"wordsLearned"`
	MinutesStudied       int                  `json:"minutesStudied"`
	PerfectQuizzes       int                  `json:"perfectQuizzes"`
	LanguageXP           map[string]int       `json:"languageXp"`
	UnlockedAchievements map[string]time.Time `json:"unlockedAchievements"`
	WeeklyActivity       []dailyActivityDTO   `json:"weeklyActivity"`
}

type dailyActivityDTO struct {
	Date             time.Time `json:"date"`
	XPEarned         int       `json:"xpEarned"`
	LessonsCompleted int       `json:"lessonsCompleted"`
	MinutesStudied   int       `json:"minutesStudied"`
}

type mutationDTO struct {
	ID             string          `json:"id"`
	IdempotencyKey string          `json:"idempotencyKey"`
	UserID         string          `json:"userId"`
	Kind           string          `json:"kind"`
	Payload        json.RawMessage `json:"payload"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type advanceChallengeDTO struct {
	Steps int `json:"steps"`
}

type challengeDTO struct {
	ID          string    `json:"id"`
	Difficulty  string    `json:"difficulty"`
	Type        string    `json:"type"`
	XPReward    int       `json:"xpReward"`
	CoinsReward int       `json:"coinsReward"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Current     int       `json:"current"`
	Target      int       `json:"target"`
}

type leaderboardDTO struct {
	Period  string                `json:"period"`
	Entries []leaderboardEntryDTO `json:"entries"`
}

type leaderboardEntryDTO struct {
	UserID       string `json:"userId"`
	Rank         int    `json:"rank"`
	XP           int    `json:"xp"`
	LanguageCode string `json:"languageCode"`
}

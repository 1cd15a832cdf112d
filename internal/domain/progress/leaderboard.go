package progress

import (
	"fmt"
	"time"

	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

// Period is the time window a leaderboard covers.
type Period string

const (
	PeriodAllTime Period = "all_time"
	PeriodMonthly Period = "monthly"
	PeriodWeekly  Period = "weekly"
	PeriodDaily   Period = "daily"
)

// Periods lists the valid leaderboard periods.
var Periods = []Period{PeriodAllTime, PeriodMonthly, PeriodWeekly, PeriodDaily}

// ParsePeriod validates a period string.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("period %q: %w", s, shared.ErrInvalidArgument)
}

// LeaderboardEntry is one ranked row. It is a read-mostly projection
// computed by the remote service; the client never locally fabricates
// another user's rank.
type LeaderboardEntry struct {
	UserID       string `json:"user_id"`
	Rank         int    `json:"rank"`
	XP           int    `json:"xp"`
	LanguageCode string `json:"language_code"`
	Period       Period `json:"period"`
}

// Leaderboard is a fetched standing plus the time it was fetched, so stale
// offline copies can be labelled as such.
type Leaderboard struct {
	Period    Period             `json:"period"`
	Entries   []LeaderboardEntry `json:"entries"`
	FetchedAt time.Time          `json:"fetched_at"`
}

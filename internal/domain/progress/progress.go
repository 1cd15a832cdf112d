// Package progress contains the pure data model and arithmetic for XP,
// levels, streaks, achievements, daily challenges and leaderboard standing.
// Nothing in this package performs I/O; every function is deterministic,
// which is what makes the model safely callable both while applying a local
// mutation and while reconciling against a remote snapshot.
package progress

import (
	"fmt"
	"time"

	"github.com/lexiquest/progress-engine/internal/domain/shared"
	"github.com/lexiquest/progress-engine/pkg/timeutil"
)

// weeklyActivityDays is how many daily ledger entries UserProgress retains.
const weeklyActivityDays = 7

// UserProgress is the aggregate of a user's gamification state. One exists
// per user, and during a live session it is owned exclusively by the sync
// coordinator; the local store and remote API are persistence backends,
// never independent sources of truth.
type UserProgress struct {
	UserID string `json:"user_id"`

	// TotalXP never decreases.
	TotalXP int `json:"total_xp"`

	// Level is always derived: the largest L with XPForLevel(L) <= TotalXP.
	Level int `json:"level"`

	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	LastActivityDate time.Time `json:"last_activity_date"`

	LessonsCompleted int `json:"lessons_completed"`
	WordsLearned     int `json:"words_learned"`
	MinutesStudied   int `json:"minutes_studied"`
	PerfectQuizzes   int `json:"perfect_quizzes"`

	// LanguageXP maps language code to the XP earned in that language.
	LanguageXP map[string]int `json:"language_xp"`

	// UnlockedAchievements maps achievement id to the unlock time. An entry
	// is written at most once and never cleared.
	UnlockedAchievements map[string]time.Time `json:"unlocked_achievements"`

	// WeeklyActivity holds one ledger entry per calendar day, oldest first,
	// trimmed to the most recent week.
	WeeklyActivity []DailyActivity `json:"weekly_activity"`
}

// DailyActivity is an immutable daily ledger entry: created once per day,
// amended only by same-day mutations.
type DailyActivity struct {
	Date             time.Time `json:"date"`
	LessonsCompleted int       `json:"lessons_completed"`
	XPEarned         int       `json:"xp_earned"`
	MinutesStudied   int       `json:"minutes_studied"`
}

// NewUserProgress creates an empty progress aggregate for a user.
func NewUserProgress(userID string) *UserProgress {
	return &UserProgress{
		UserID:               userID,
		LanguageXP:           make(map[string]int),
		UnlockedAchievements: make(map[string]time.Time),
	}
}

// Clone returns a deep copy. The coordinator hands copies to read-side
// callers so the owned aggregate is never aliased.
func (p *UserProgress) Clone() *UserProgress {
	if p == nil {
		return nil
	}
	cp := *p
	cp.LanguageXP = make(map[string]int, len(p.LanguageXP))
	for k, v := range p.LanguageXP {
		cp.LanguageXP[k] = v
	}
	cp.UnlockedAchievements = make(map[string]time.Time, len(p.UnlockedAchievements))
	for k, v := range p.UnlockedAchievements {
		cp.UnlockedAchievements[k] = v
	}
	cp.WeeklyActivity = append([]DailyActivity(nil), p.WeeklyActivity...)
	return &cp
}

// AddXP credits XP, optionally attributed to a language, and refreshes the
// derived level and activity state. Negative amounts are rejected: TotalXP
// is monotonic.
func (p *UserProgress) AddXP(amount int, languageCode string, now time.Time) error {
	if amount < 0 {
		return fmt.Errorf("add xp %d: %w", amount, shared.ErrXPDecrease)
	}
	p.TotalXP += amount
	p.Level = LevelForXP(p.TotalXP)
	if languageCode != "" {
		p.LanguageXP[languageCode] += amount
	}
	p.touchActivity(now)
	p.amendToday(now, func(d *DailyActivity) {
		d.XPEarned += amount
	})
	return nil
}

// CompleteLesson records a finished lesson along with the XP it earned.
func (p *UserProgress) CompleteLesson(xp int, languageCode string, minutes, wordsLearned int, perfect bool, now time.Time) error {
	if err := p.AddXP(xp, languageCode, now); err != nil {
		return err
	}
	p.LessonsCompleted++
	p.WordsLearned += wordsLearned
	p.MinutesStudied += minutes
	if perfect {
		p.PerfectQuizzes++
	}
	p.amendToday(now, func(d *DailyActivity) {
		d.LessonsCompleted++
		d.MinutesStudied += minutes
	})
	return nil
}

// LearnWords records vocabulary learned outside a full lesson.
func (p *UserProgress) LearnWords(count int, now time.Time) error {
	if count < 0 {
		return fmt.Errorf("learn words %d: %w", count, shared.ErrInvalidArgument)
	}
	p.WordsLearned += count
	p.touchActivity(now)
	return nil
}

// RecordStudyTime adds study minutes to the running totals.
func (p *UserProgress) RecordStudyTime(minutes int, now time.Time) error {
	if minutes < 0 {
		return fmt.Errorf("study minutes %d: %w", minutes, shared.ErrInvalidArgument)
	}
	p.MinutesStudied += minutes
	p.touchActivity(now)
	p.amendToday(now, func(d *DailyActivity) {
		d.MinutesStudied += minutes
	})
	return nil
}

// IsStreakActive reports whether the streak is still alive at the given
// time. The comparison is calendar-date, not wall-clock-elapsed: activity
// today or yesterday keeps the streak, so it survives exactly one missed
// calendar day before ResetStreakIfBroken zeroes it.
func (p *UserProgress) IsStreakActive(now time.Time) bool {
	if p.LastActivityDate.IsZero() {
		return false
	}
	return timeutil.SameDay(now, p.LastActivityDate) ||
		timeutil.IsYesterdayOf(p.LastActivityDate, now)
}

// ResetStreakIfBroken zeroes the current streak when it is no longer
// active. Returns true if a reset happened.
func (p *UserProgress) ResetStreakIfBroken(now time.Time) bool {
	if p.CurrentStreak == 0 || p.IsStreakActive(now) {
		return false
	}
	p.CurrentStreak = 0
	return true
}

// ProgressToNext returns how far into the current level the user is.
func (p *UserProgress) ProgressToNext() float64 {
	return ProgressToNextLevel(p.TotalXP)
}

// Rank returns the prestige label for the user's total XP.
func (p *UserProgress) Rank() Rank {
	return RankForXP(p.TotalXP)
}

// LanguagesMastered counts languages whose XP reached the mastery bar.
func (p *UserProgress) LanguagesMastered() int {
	mastered := 0
	for _, xp := range p.LanguageXP {
		if xp >= LanguageMasteryXP {
			mastered++
		}
	}
	return mastered
}

// touchActivity updates streak state and the last-activity stamp for a
// qualifying action at the given time.
func (p *UserProgress) touchActivity(now time.Time) {
	switch {
	case p.LastActivityDate.IsZero():
		p.CurrentStreak = 1
	case timeutil.SameDay(now, p.LastActivityDate):
		// Same calendar day: streak unchanged.
	case timeutil.IsYesterdayOf(p.LastActivityDate, now):
		p.CurrentStreak++
	default:
		// Missed more than the allowed gap: today starts a new streak.
		p.CurrentStreak = 1
	}
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastActivityDate = now
}

// amendToday applies fn to today's ledger entry, creating it if this is the
// first qualifying action of the calendar day, and trims the window.
func (p *UserProgress) amendToday(now time.Time, fn func(*DailyActivity)) {
	day := timeutil.StartOfDay(now)

	if n := len(p.WeeklyActivity); n > 0 && timeutil.SameDay(p.WeeklyActivity[n-1].Date, day) {
		fn(&p.WeeklyActivity[n-1])
		return
	}

	entry := DailyActivity{Date: day}
	fn(&entry)
	p.WeeklyActivity = append(p.WeeklyActivity, entry)
	if len(p.WeeklyActivity) > weeklyActivityDays {
		p.WeeklyActivity = p.WeeklyActivity[len(p.WeeklyActivity)-weeklyActivityDays:]
	}
}

// MergeAuthoritative adopts a remote snapshot as the new local baseline.
// Additive fields pushed during reconciliation are trusted to be reflected
// server-side already, so no merge arithmetic is repeated; the only
// exceptions are compound fields a second device may have raced on:
// LongestStreak is max-merged and unlocked achievements are unioned,
// because neither is ever allowed to regress.
func (p *UserProgress) MergeAuthoritative(remote *UserProgress) {
	longest := p.LongestStreak
	unlocked := p.UnlockedAchievements

	*p = *remote.Clone()

	if longest > p.LongestStreak {
		p.LongestStreak = longest
	}
	for id, at := range unlocked {
		if _, ok := p.UnlockedAchievements[id]; !ok {
			p.UnlockedAchievements[id] = at
		}
	}
	p.Level = LevelForXP(p.TotalXP)
}

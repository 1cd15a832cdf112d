package progress

import "time"

// LanguageMasteryXP is the per-language XP at which a language counts as
// mastered for the LanguagesMastered requirement.
const LanguageMasteryXP = 5_000

// Rarity orders achievements from common to mythic.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityMythic
)

// String returns the string representation of the rarity.
func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "common"
	case RarityUncommon:
		return "uncommon"
	case RarityRare:
		return "rare"
	case RarityEpic:
		return "epic"
	case RarityLegendary:
		return "legendary"
	case RarityMythic:
		return "mythic"
	default:
		return "unknown"
	}
}

// Requirement is the closed sum type over the ways an achievement can be
// earned. Each variant carries one integer threshold and compares it to the
// matching UserProgress field. Evaluation is pure: no variant mutates the
// snapshot, and the caller is responsible for setting UnlockedAt exactly
// once when a requirement is first satisfied.
type Requirement interface {
	// Satisfied reports whether the snapshot meets the requirement.
	Satisfied(p *UserProgress) bool

	// Threshold returns the variant's integer payload.
	Threshold() int

	// Describe names the requirement for diagnostics and CLI output.
	Describe() string

	// sealed keeps the set of variants closed to this package.
	sealed()
}

// LessonsCount requires lessonsCompleted >= N.
type LessonsCount struct{ N int }

func (r LessonsCount) Satisfied(p *UserProgress) bool { return p.LessonsCompleted >= r.N }
func (r LessonsCount) Threshold() int                 { return r.N }
func (r LessonsCount) Describe() string               { return "lessons completed" }
func (LessonsCount) sealed()                          {}

// StreakDays requires currentStreak >= N.
type StreakDays struct{ N int }

func (r StreakDays) Satisfied(p *UserProgress) bool { return p.CurrentStreak >= r.N }
func (r StreakDays) Threshold() int                 { return r.N }
func (r StreakDays) Describe() string               { return "streak days" }
func (StreakDays) sealed()                          {}

// XPTotal requires totalXp >= N.
type XPTotal struct{ N int }

func (r XPTotal) Satisfied(p *UserProgress) bool { return p.TotalXP >= r.N }
func (r XPTotal) Threshold() int                 { return r.N }
func (r XPTotal) Describe() string               { return "total xp" }
func (XPTotal) sealed()                          {}

// WordsLearned requires wordsLearned >= N.
type WordsLearned struct{ N int }

func (r WordsLearned) Satisfied(p *UserProgress) bool { return p.WordsLearned >= r.N }
func (r WordsLearned) Threshold() int                 { return r.N }
func (r WordsLearned) Describe() string               { return "words learned" }
func (WordsLearned) sealed()                          {}

// PerfectQuizzes requires perfectQuizzes >= N.
type PerfectQuizzes struct{ N int }

func (r PerfectQuizzes) Satisfied(p *UserProgress) bool { return p.PerfectQuizzes >= r.N }
func (r PerfectQuizzes) Threshold() int                 { return r.N }
func (r PerfectQuizzes) Describe() string               { return "perfect quizzes" }
func (PerfectQuizzes) sealed()                          {}

// LanguagesMastered requires N languages at or past the mastery bar.
type LanguagesMastered struct{ N int }

func (r LanguagesMastered) Satisfied(p *UserProgress) bool { return p.LanguagesMastered() >= r.N }
func (r LanguagesMastered) Threshold() int                 { return r.N }
func (r LanguagesMastered) Describe() string               { return "languages mastered" }
func (LanguagesMastered) sealed()                          {}

// Achievement is a badge with a single requirement and an XP reward.
type Achievement struct {
	ID          string
	Title       string
	Description string
	Rarity      Rarity
	XPReward    int
	Requirement Requirement

	// UnlockedAt is nil until the requirement is first satisfied. It is set
	// at most once and never cleared.
	UnlockedAt *time.Time
}

// Satisfied reports whether the snapshot meets this achievement's
// requirement. Pure: no side effects, safe during reconciliation.
func (a Achievement) Satisfied(p *UserProgress) bool {
	return a.Requirement.Satisfied(p)
}

// NewlySatisfied returns the catalog achievements whose requirements the
// snapshot now meets but which the snapshot has not yet unlocked. The caller
// stamps UnlockedAt and records the unlock on the aggregate.
func NewlySatisfied(p *UserProgress, catalog []Achievement) []Achievement {
	var newly []Achievement
	for _, a := range catalog {
		if _, unlocked := p.UnlockedAchievements[a.ID]; unlocked {
			continue
		}
		if a.Satisfied(p) {
			newly = append(newly, a)
		}
	}
	return newly
}

package remote

import (
	"time"

	"github.com/lexiquest/progress-engine/internal/domain/mutation"
	"github.com/lexiquest/progress-engine/internal/domain/progress"
)

func toDomainProgress(dto progressDTO) *progress.UserProgress {
	p := &progress.UserProgress{
		UserID:               dto.UserID,
		TotalXP:              dto.TotalXP,
		Level:                dto.Level,
		CurrentStreak:        dto.CurrentStreak,
		LongestStreak:        dto.LongestStreak,
		LastActivityDate:     dto.LastActivityDate,
		LessonsCompleted:     dto.LessonsCompleted,
		WordsLearned:         dto.WordsLearned,
		MinutesStudied:       dto.MinutesStudied,
		PerfectQuizzes:       dto.PerfectQuizzes,
		LanguageXP:           dto.LanguageXP,
		UnlockedAchievements: dto.UnlockedAchievements,
	}
	if p.LanguageXP == nil {
		p.LanguageXP = make(map[string]int)
	}
	if p.UnlockedAchievements == nil {
		p.UnlockedAchievements = make(map[string]time.Time)
	}
	for _, a := range dto.WeeklyActivity {
		p.WeeklyActivity = append(p.WeeklyActivity, progress.DailyActivity{
			Date:             a.Date,
			XPEarned:         a.XPEarned,
			LessonsCompleted: a.LessonsCompleted,
			MinutesStudied:   a.MinutesStudied,
		})
	}
	// The server may hand back a level inconsistent with its own XP total
	// during migrations. The XP curve is the source of truth.
	p.Level = progress.LevelForXP(p.TotalXP)
	return p
}

func toWireMutation(m mutation.Mutation) mutationDTO {
	return mutationDTO{
		ID:             m.ID,
		IdempotencyKey: m.IdempotencyKey,
		UserID:         m.UserID,
		Kind:           string(m.Kind),
		Payload:        m.Payload,
		CreatedAt:      m.CreatedAt,
	}
}

func toDomainChallenge(dto challengeDTO) progress.DailyChallenge {
	return progress.DailyChallenge{
		ID:          dto.ID,
		Difficulty:  progress.ChallengeDifficulty(dto.Difficulty),
		Type:        progress.ChallengeType(dto.Type),
		XPReward:    dto.XPReward,
		CoinsReward: dto.CoinsReward,
		ExpiresAt:   dto.ExpiresAt,
		Progress: progress.ChallengeProgress{
			Current: dto.Current,
			Target:  dto.Target,
		},
	}
}

func toDomainLeaderboard(dto leaderboardDTO, fetchedAt time.Time) progress.Leaderboard {
	lb := progress.Leaderboard{
		Period:    progress.Period(dto.Period),
		FetchedAt: fetchedAt,
	}
	for _, e := range dto.Entries {
		lb.Entries = append(lb.Entries, progress.LeaderboardEntry{
			UserID:       e.UserID,
			Rank:         e.Rank,
			XP:           e.XP,
			LanguageCode: e.LanguageCode,
			Period:       lb.Period,
		})
	}
	return lb
}

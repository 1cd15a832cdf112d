package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiquest/progress-engine/internal/domain/mutation"
	"github.com/lexiquest/progress-engine/internal/domain/progress"
	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "progress.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestProgressRepository_SaveAndLoad(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	p := progress.NewUserProgress("u1")
	require.NoError(t, p.AddXP(250, "es", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, repo.SaveProgress(ctx, p))

	loaded, err := repo.LoadProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 250, loaded.TotalXP)
	assert.Equal(t, 250, loaded.LanguageXP["es"])
	assert.Equal(t, 1, loaded.CurrentStreak)
	assert.NotNil(t, loaded.UnlockedAchievements)
}

func TestProgressRepository_LoadMissingUser(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewProgressRepository(db)

	_, err := repo.LoadProgress(context.Background(), "nobody")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProgressRepository_SaveOverwrites(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	p := progress.NewUserProgress("u1")
	require.NoError(t, repo.SaveProgress(ctx, p))

	require.NoError(t, p.AddXP(40, "", time.Now()))
	require.NoError(t, repo.SaveProgress(ctx, p))

	loaded, err := repo.LoadProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 40, loaded.TotalXP)
}

func TestProgressRepository_Challenges(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	none, err := repo.LoadChallenges(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, none, "no stored snapshot means no challenges, not an error")

	expires := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	challenges := []progress.DailyChallenge{
		{
			ID:        "c1",
			Type:      progress.ChallengeCompleteLessons,
			Progress:  progress.ChallengeProgress{Current: 1, Target: 3},
			ExpiresAt: expires,
		},
	}
	require.NoError(t, repo.SaveChallenges(ctx, "u1", challenges))

	loaded, err := repo.LoadChallenges(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "c1", loaded[0].ID)
	assert.Equal(t, 1, loaded[0].Progress.Current)
	assert.True(t, expires.Equal(loaded[0].ExpiresAt))
}

func TestProgressRepository_LeaderboardCache(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	_, err := repo.LoadLeaderboard(ctx, progress.PeriodWeekly)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	lb := progress.Leaderboard{
		Period:    progress.PeriodWeekly,
		FetchedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Entries: []progress.LeaderboardEntry{
			{Rank: 1, UserID: "u2", XP: 900, Period: progress.PeriodWeekly},
			{Rank: 2, UserID: "u1", XP: 750, Period: progress.PeriodWeekly},
		},
	}
	require.NoError(t, repo.SaveLeaderboard(ctx, lb))

	loaded, err := repo.LoadLeaderboard(ctx, progress.PeriodWeekly)
	require.NoError(t, err)
	assert.Equal(t, progress.PeriodWeekly, loaded.Period)
	require.Len(t, loaded.Entries, 2)
	assert.Equal(t, "u2", loaded.Entries[0].UserID)
}

func TestQueueRepository_AppendAssignsIncreasingSeq(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		m, err := mutation.New("u1", mutation.KindAddXP, mutation.AddXPPayload{Amount: 10 * (i + 1)}, time.Now())
		require.NoError(t, err)
		stored, err := repo.Append(ctx, m)
		require.NoError(t, err)
		assert.Greater(t, stored.Seq, last)
		last = stored.Seq
	}
}

func TestQueueRepository_ListPreservesOrder(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	amounts := []int{5, 15, 25}
	for _, amount := range amounts {
		m, err := mutation.New("u1", mutation.KindAddXP, mutation.AddXPPayload{Amount: amount}, time.Now())
		require.NoError(t, err)
		_, err = repo.Append(ctx, m)
		require.NoError(t, err)
	}

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		payload, err := mutation.DecodePayload[mutation.AddXPPayload](item)
		require.NoError(t, err)
		assert.Equal(t, amounts[i], payload.Amount)
	}
}

func TestQueueRepository_HeadAndRemove(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	_, err := repo.Head(ctx)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	first, err := mutation.New("u1", mutation.KindLearnWords, mutation.LearnWordsPayload{Count: 4}, time.Now())
	require.NoError(t, err)
	_, err = repo.Append(ctx, first)
	require.NoError(t, err)

	second, err := mutation.New("u1", mutation.KindLearnWords, mutation.LearnWordsPayload{Count: 8}, time.Now())
	require.NoError(t, err)
	_, err = repo.Append(ctx, second)
	require.NoError(t, err)

	head, err := repo.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, head.ID)

	require.NoError(t, repo.Remove(ctx, first.ID))

	head, err = repo.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, head.ID)

	assert.ErrorIs(t, repo.Remove(ctx, first.ID), shared.ErrNotFound)
}

func TestQueue_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")
	ctx := context.Background()

	db, err := Open(path)
	require.NoError(t, err)

	m, err := mutation.New("u1", mutation.KindAddXP, mutation.AddXPPayload{Amount: 150}, time.Now())
	require.NoError(t, err)
	stored, err := NewQueueRepository(db).Append(ctx, m)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	items, err := NewQueueRepository(reopened).List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, stored.ID, items[0].ID)
	assert.Equal(t, stored.Seq, items[0].Seq)

	payload, err := mutation.DecodePayload[mutation.AddXPPayload](items[0])
	require.NoError(t, err)
	assert.Equal(t, 150, payload.Amount)
}

func TestQueueRepository_SeqNotReusedAfterRemove(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	first, err := mutation.New("u1", mutation.KindAddXP, mutation.AddXPPayload{Amount: 1}, time.Now())
	require.NoError(t, err)
	storedFirst, err := repo.Append(ctx, first)
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, first.ID))

	second, err := mutation.New("u1", mutation.KindAddXP, mutation.AddXPPayload{Amount: 2}, time.Now())
	require.NoError(t, err)
	storedSecond, err := repo.Append(ctx, second)
	require.NoError(t, err)

	assert.Greater(t, storedSecond.Seq, storedFirst.Seq)
}

package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXPForLevel_KnownValues(t *testing.T) {
	assert.Equal(t, 0, XPForLevel(0))
	assert.Equal(t, 100, XPForLevel(1))
	assert.Equal(t, 283, XPForLevel(2)) // round(100 * 2^1.5)
	assert.Equal(t, 520, XPForLevel(3))
	assert.Equal(t, 800, XPForLevel(4))
	assert.Equal(t, 3162, XPForLevel(10))
}

func TestXPForLevel_Monotonic(t *testing.T) {
	for level := 0; level <= 200; level++ {
		assert.LessOrEqual(t, XPForLevel(level), XPForLevel(level+1),
			"curve must be monotonic at level %d", level)
	}
}

func TestLevelForXP_InverseFloor(t *testing.T) {
	// The level for any XP amount is the largest L with XPForLevel(L) <= xp.
	for level := 0; level <= 60; level++ {
		floor := XPForLevel(level)
		assert.Equal(t, level, LevelForXP(floor), "exact boundary at level %d", level)
		if level > 0 {
			assert.Equal(t, level-1, LevelForXP(floor-1), "one below boundary at level %d", level)
		}
	}
}

func TestLevelForXP_Examples(t *testing.T) {
	assert.Equal(t, 0, LevelForXP(0))
	assert.Equal(t, 0, LevelForXP(99))
	assert.Equal(t, 1, LevelForXP(100))
	assert.Equal(t, 1, LevelForXP(150))
	assert.Equal(t, 1, LevelForXP(282))
	assert.Equal(t, 2, LevelForXP(283))
}

func TestProgressToNextLevel_Bounds(t *testing.T) {
	for xp := 0; xp <= 20_000; xp += 7 {
		got := ProgressToNextLevel(xp)
		assert.GreaterOrEqual(t, got, 0.0, "xp=%d", xp)
		assert.LessOrEqual(t, got, 1.0, "xp=%d", xp)
	}

	assert.Equal(t, 0.0, ProgressToNextLevel(100)) // exactly at level 1
	assert.InDelta(t, 0.5, ProgressToNextLevel(100+(283-100)/2), 0.01)
}

func TestRankForXP_Thresholds(t *testing.T) {
	tests := []struct {
		xp   int
		want Rank
	}{
		{0, RankNovice},
		{999, RankNovice},
		{1_000, RankApprentice}, // ties resolve to the higher rank
		{4_999, RankApprentice},
		{5_000, RankScholar},
		{10_000, RankExpert},
		{25_000, RankMaster},
		{50_000, RankGrandmaster},
		{99_999, RankGrandmaster},
		{100_000, RankLegend},
		{2_000_000, RankLegend},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RankForXP(tt.xp), "xp=%d", tt.xp)
	}
}

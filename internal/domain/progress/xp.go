package progress

import "math"

// XP level curve: the XP required to reach a level grows as level^1.5, so
// early levels come quickly and later ones take real work.

// XPForLevel returns the total XP required to reach the given level.
// It is monotonically increasing; level 0 costs nothing.
func XPForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	return int(math.Round(100 * math.Pow(float64(level), 1.5)))
}

// LevelForXP returns the level for a total XP amount: the largest level L
// such that XPForLevel(L) <= totalXP.
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 0
	}

	// Closed-form estimate, then correct for rounding at the boundary.
	level := int(math.Floor(math.Pow(float64(totalXP)/100, 2.0/3.0)))
	for XPForLevel(level+1) <= totalXP {
		level++
	}
	for level > 0 && XPForLevel(level) > totalXP {
		level--
	}
	return level
}

// ProgressToNextLevel returns how far into the current level the total XP
// sits, clamped to [0, 1].
func ProgressToNextLevel(totalXP int) float64 {
	level := LevelForXP(totalXP)
	floor := XPForLevel(level)
	ceil := XPForLevel(level + 1)
	if ceil <= floor {
		return 0
	}

	ratio := float64(totalXP-floor) / float64(ceil-floor)
	return math.Min(1.0, math.Max(0.0, ratio))
}

// Rank is a coarse prestige label derived from total XP.
type Rank string

// Ranks in ascending order.
const (
	RankNovice      Rank = "novice"
	RankApprentice  Rank = "apprentice"
	RankScholar     Rank = "scholar"
	RankExpert      Rank = "expert"
	RankMaster      Rank = "master"
	RankGrandmaster Rank = "grandmaster"
	RankLegend      Rank = "legend"
)

// rankThresholds pairs each rank above novice with its inclusive lower
// bound: landing exactly on a threshold resolves to the higher rank.
var rankThresholds = []struct {
	minXP int
	rank  Rank
}{
	{100_000, RankLegend},
	{50_000, RankGrandmaster},
	{25_000, RankMaster},
	{10_000, RankExpert},
	{5_000, RankScholar},
	{1_000, RankApprentice},
}

// RankForXP returns the rank label for a total XP amount.
func RankForXP(totalXP int) Rank {
	for _, t := range rankThresholds {
		if totalXP >= t.minXP {
			return t.rank
		}
	}
	return RankNovice
}

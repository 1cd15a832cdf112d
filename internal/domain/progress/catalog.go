package progress

// Catalog returns the built-in achievement definitions. The remote service
// owns the canonical catalog; this copy lets the engine unlock achievements
// offline with the same ids the backend deduplicates on.
func Catalog() []Achievement {
	return []Achievement{
		// Lessons
		{ID: "first_lesson", Title: "First Steps", Description: "Complete your first lesson", Rarity: RarityCommon, XPReward: 10, Requirement: LessonsCount{N: 1}},
		{ID: "lessons_25", Title: "Warming Up", Description: "Complete 25 lessons", Rarity: RarityUncommon, XPReward: 25, Requirement: LessonsCount{N: 25}},
		{ID: "lessons_100", Title: "Century", Description: "Complete 100 lessons", Rarity: RarityRare, XPReward: 100, Requirement: LessonsCount{N: 100}},
		{ID: "lessons_500", Title: "Scholar's Path", Description: "Complete 500 lessons", Rarity: RarityEpic, XPReward: 250, Requirement: LessonsCount{N: 500}},

		// Streaks
		{ID: "streak_3", Title: "Getting Started", Description: "3-day streak", Rarity: RarityCommon, XPReward: 10, Requirement: StreakDays{N: 3}},
		{ID: "streak_7", Title: "Week Warrior", Description: "7-day streak", Rarity: RarityUncommon, XPReward: 25, Requirement: StreakDays{N: 7}},
		{ID: "streak_30", Title: "Monthly Master", Description: "30-day streak", Rarity: RarityRare, XPReward: 100, Requirement: StreakDays{N: 30}},
		{ID: "streak_100", Title: "Centurion", Description: "100-day streak", Rarity: RarityLegendary, XPReward: 500, Requirement: StreakDays{N: 100}},
		{ID: "streak_365", Title: "Year of Fire", Description: "365-day streak", Rarity: RarityMythic, XPReward: 2000, Requirement: StreakDays{N: 365}},

		// Total XP
		{ID: "xp_1000", Title: "Rising Star", Description: "Earn 1,000 total XP", Rarity: RarityCommon, XPReward: 10, Requirement: XPTotal{N: 1_000}},
		{ID: "xp_10000", Title: "Powerhouse", Description: "Earn 10,000 total XP", Rarity: RarityRare, XPReward: 100, Requirement: XPTotal{N: 10_000}},
		{ID: "xp_100000", Title: "Legend", Description: "Earn 100,000 total XP", Rarity: RarityLegendary, XPReward: 1000, Requirement: XPTotal{N: 100_000}},

		// Vocabulary
		{ID: "words_100", Title: "Word Collector", Description: "Learn 100 words", Rarity: RarityCommon, XPReward: 10, Requirement: WordsLearned{N: 100}},
		{ID: "words_1000", Title: "Lexicon", Description: "Learn 1,000 words", Rarity: RarityRare, XPReward: 100, Requirement: WordsLearned{N: 1_000}},
		{ID: "words_5000", Title: "Walking Dictionary", Description: "Learn 5,000 words", Rarity: RarityEpic, XPReward: 300, Requirement: WordsLearned{N: 5_000}},

		// Perfect quizzes
		{ID: "perfect_1", Title: "Flawless", Description: "First perfect quiz", Rarity: RarityCommon, XPReward: 10, Requirement: PerfectQuizzes{N: 1}},
		{ID: "perfect_25", Title: "Perfectionist", Description: "25 perfect quizzes", Rarity: RarityUncommon, XPReward: 50, Requirement: PerfectQuizzes{N: 25}},
		{ID: "perfect_100", Title: "Machine", Description: "100 perfect quizzes", Rarity: RarityEpic, XPReward: 250, Requirement: PerfectQuizzes{N: 100}},

		// Mastery
		{ID: "mastery_1", Title: "Polyglot in Training", Description: "Master your first language", Rarity: RarityRare, XPReward: 150, Requirement: LanguagesMastered{N: 1}},
		{ID: "mastery_3", Title: "Polyglot", Description: "Master 3 languages", Rarity: RarityLegendary, XPReward: 750, Requirement: LanguagesMastered{N: 3}},
		{ID: "mastery_5", Title: "Tongue of Babel", Description: "Master 5 languages", Rarity: RarityMythic, XPReward: 2000, Requirement: LanguagesMastered{N: 5}},
	}
}

// CatalogByID returns the built-in achievements indexed by id.
func CatalogByID() map[string]Achievement {
	catalog := Catalog()
	byID := make(map[string]Achievement, len(catalog))
	for _, a := range catalog {
		byID[a.ID] = a
	}
	return byID
}

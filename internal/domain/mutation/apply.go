package mutation

import (
	"fmt"
	"time"

	"github.com/lexiquest/progress-engine/internal/domain/progress"
)

// Apply folds a mutation into a local progress snapshot. The same function
// runs whether the mutation is being applied fresh or replayed onto an
// adopted remote baseline, so it must stay deterministic.
//
// Challenge advancement does not touch UserProgress; the coordinator applies
// it to the challenge snapshot separately.
func Apply(p *progress.UserProgress, m Mutation, now time.Time) error {
	switch m.Kind {
	case KindAddXP:
		payload, err := DecodePayload[AddXPPayload](m)
		if err != nil {
			return err
		}
		return p.AddXP(payload.Amount, payload.LanguageCode, now)

	case KindCompleteLesson:
		payload, err := DecodePayload[CompleteLessonPayload](m)
		if err != nil {
			return err
		}
		return p.CompleteLesson(payload.XP, payload.LanguageCode, payload.Minutes,
			payload.WordsLearned, payload.Perfect, now)

	case KindLearnWords:
		payload, err := DecodePayload[LearnWordsPayload](m)
		if err != nil {
			return err
		}
		return p.LearnWords(payload.Count, now)

	case KindRecordStudyTime:
		payload, err := DecodePayload[RecordStudyTimePayload](m)
		if err != nil {
			return err
		}
		return p.RecordStudyTime(payload.Minutes, now)

	case KindAdvanceChallenge:
		return nil

	default:
		return fmt.Errorf("apply: unhandled mutation kind %q", m.Kind)
	}
}

// Package mutation defines the progress-changing operations that can be
// generated while unsynced and the durable queue that delivers them to the
// remote service at least once. Each mutation carries a client-generated
// idempotency key so the backend can deduplicate redelivery.
package mutation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

// Kind names an idempotent progress-changing operation.
type Kind string

const (
	KindAddXP            Kind = "add_xp"
	KindCompleteLesson   Kind = "complete_lesson"
	KindLearnWords       Kind = "learn_words"
	KindRecordStudyTime  Kind = "record_study_time"
	KindAdvanceChallenge Kind = "advance_challenge"
)

// Mutation is one queued operation. Mutations are immutable once created:
// the queue never rewrites an entry, it only appends and removes.
type Mutation struct {
	// ID identifies the mutation locally.
	ID string `json:"id" db:"id"`

	// Seq is the strictly increasing queue sequence number, assigned on
	// append by the durable store.
	Seq int64 `json:"seq" db:"seq"`

	// IdempotencyKey lets the remote service deduplicate a mutation that
	// is delivered more than once.
	IdempotencyKey string `json:"idempotency_key" db:"idempotency_key"`

	UserID    string          `json:"user_id" db:"user_id"`
	Kind      Kind            `json:"kind" db:"kind"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Payloads, one per kind.

// AddXPPayload credits XP, optionally attributed to a language.
type AddXPPayload struct {
	Amount       int    `json:"amount"`
	LanguageCode string `json:"language_code,omitempty"`
}

// CompleteLessonPayload records a finished lesson.
type CompleteLessonPayload struct {
	LessonID     string `json:"lesson_id"`
	XP           int    `json:"xp"`
	LanguageCode string `json:"language_code"`
	Minutes      int    `json:"minutes"`
	WordsLearned int    `json:"words_learned"`
	Perfect      bool   `json:"perfect"`
}

// LearnWordsPayload records vocabulary learned outside a lesson.
type LearnWordsPayload struct {
	Count        int    `json:"count"`
	LanguageCode string `json:"language_code,omitempty"`
}

// RecordStudyTimePayload adds study minutes.
type RecordStudyTimePayload struct {
	Minutes int `json:"minutes"`
}

// AdvanceChallengePayload moves a daily challenge forward.
type AdvanceChallengePayload struct {
	ChallengeID string `json:"challenge_id"`
	Steps       int    `json:"steps"`
}

// New builds a mutation for the given user with a fresh id and idempotency
// key. Seq stays zero until the durable store assigns it on append.
func New(userID string, kind Kind, payload any, now time.Time) (Mutation, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Mutation{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return Mutation{
		ID:             uuid.NewString(),
		IdempotencyKey: uuid.NewString(),
		UserID:         userID,
		Kind:           kind,
		Payload:        data,
		CreatedAt:      now,
	}, nil
}

// DecodePayload unmarshals the payload into the kind's struct.
func DecodePayload[T any](m Mutation) (T, error) {
	var payload T
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %w", m.Kind, err)
	}
	return payload, nil
}

// Validate checks structural validity before a mutation is accepted.
func (m Mutation) Validate() error {
	if m.ID == "" || m.IdempotencyKey == "" {
		return fmt.Errorf("mutation missing identity: %w", shared.ErrInvalidArgument)
	}
	if m.UserID == "" {
		return fmt.Errorf("mutation missing user: %w", shared.ErrInvalidArgument)
	}
	switch m.Kind {
	case KindAddXP, KindCompleteLesson, KindLearnWords, KindRecordStudyTime, KindAdvanceChallenge:
		return nil
	default:
		return fmt.Errorf("mutation kind %q: %w", m.Kind, shared.ErrInvalidArgument)
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lexiquest/progress-engine/internal/domain/mutation"
	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

// QueueRepository implements mutation.Store. The AUTOINCREMENT rowid gives
// strictly increasing sequence numbers that survive restarts, and every
// append commits before returning, which is what makes the queue durable.
type QueueRepository struct {
	db *DB
}

// NewQueueRepository creates the repository.
func NewQueueRepository(db *DB) *QueueRepository {
	return &QueueRepository{db: db}
}

// Append persists the mutation and returns it with Seq assigned.
func (r *QueueRepository) Append(ctx context.Context, m mutation.Mutation) (mutation.Mutation, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO mutation_queue (id, idempotency_key, user_id, kind, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.IdempotencyKey, m.UserID, string(m.Kind), []byte(m.Payload), m.CreatedAt.UTC(),
	)
	if err != nil {
		return mutation.Mutation{}, fmt.Errorf("append mutation: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return mutation.Mutation{}, fmt.Errorf("append mutation seq: %w", err)
	}
	m.Seq = seq
	return m, nil
}

// List returns all queued mutations in Seq order.
func (r *QueueRepository) List(ctx context.Context) ([]mutation.Mutation, error) {
	var items []mutation.Mutation
	err := r.db.SelectContext(ctx, &items, `
		SELECT seq, id, idempotency_key, user_id, kind, payload, created_at
		FROM mutation_queue ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list mutations: %w", err)
	}
	return items, nil
}

// Head returns the oldest queued mutation.
func (r *QueueRepository) Head(ctx context.Context) (mutation.Mutation, error) {
	var m mutation.Mutation
	err := r.db.GetContext(ctx, &m, `
		SELECT seq, id, idempotency_key, user_id, kind, payload, created_at
		FROM mutation_queue ORDER BY seq ASC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return mutation.Mutation{}, shared.ErrNotFound
	}
	if err != nil {
		return mutation.Mutation{}, fmt.Errorf("queue head: %w", err)
	}
	return m, nil
}

// Remove deletes a mutation by id.
func (r *QueueRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mutation_queue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove mutation %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mutation %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

// Len returns the number of queued mutations.
func (r *QueueRepository) Len(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM mutation_queue`); err != nil {
		return 0, fmt.Errorf("queue len: %w", err)
	}
	return n, nil
}

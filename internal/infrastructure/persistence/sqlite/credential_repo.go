package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

// CredentialRepository stores named secrets, currently just the bearer
// token, in the credentials table.
type CredentialRepository struct {
	db *DB
}

// NewCredentialRepository creates the repository.
func NewCredentialRepository(db *DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Set upserts a credential value.
func (r *CredentialRepository) Set(ctx context.Context, name, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		name, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save credential %s: %w", name, err)
	}
	return nil
}

// Get returns a stored credential or shared.ErrNotFound.
func (r *CredentialRepository) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM credentials WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("credential %s: %w", name, shared.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("load credential %s: %w", name, err)
	}
	return value, nil
}

// Delete removes a credential. Deleting a missing credential is not an
// error.
func (r *CredentialRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete credential %s: %w", name, err)
	}
	return nil
}

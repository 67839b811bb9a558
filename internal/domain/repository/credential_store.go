package repository

import (
	"context"
	"errors"

	"github.com/formsauth/simplesecurity/internal/domain/entity"
)

// ErrNotFound is returned by FindByName when no user matches.
var ErrNotFound = errors.New("user not found")

// CredentialStore owns the persisted user table.
//
// Validation outcomes (bad credentials, duplicate name) are booleans, never
// errors; errors are reserved for store connectivity and propagate unchanged.
type CredentialStore interface {
	// EnsureSchema is idempotent: if the user table does not exist it is
	// created and a default admin user with role Administrator is seeded
	// using adminPassword. Single-writer assumption at startup.
	EnsureSchema(ctx context.Context, adminPassword string) error

	// FindByName does a case-insensitive exact match on name.
	FindByName(ctx context.Context, name string) (*entity.User, error)

	// Verify fails closed: false for empty arguments, unknown users, and
	// password mismatches.
	Verify(ctx context.Context, name, password string) (bool, error)

	// Create returns false (no error) when a user with that name already
	// exists; otherwise inserts the hashed password and roles.
	Create(ctx context.Context, name, password string, roles []string) (bool, error)

	// Delete removes the row; deleting an unknown name is a no-op.
	Delete(ctx context.Context, name string) error
}

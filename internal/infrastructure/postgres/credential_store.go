package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formsauth/simplesecurity/internal/domain/entity"
	"github.com/formsauth/simplesecurity/internal/domain/repository"
	"github.com/formsauth/simplesecurity/pkg/helpers"
)

const uniqueViolation = "23505"

// CredentialStore is the Postgres-backed user table. Connections are scoped
// per statement by the pool; no multi-statement transactions are used.
type CredentialStore struct {
	pool   *pgxpool.Pool
	hasher helpers.Hasher
}

func NewCredentialStore(pool *pgxpool.Pool, hasher helpers.Hasher) *CredentialStore {
	return &CredentialStore{pool: pool, hasher: hasher}
}

// EnsureSchema creates the user table on first run and seeds the default
// admin account. Safe to call on every startup; does nothing once the table
// exists.
func (s *CredentialStore) EnsureSchema(ctx context.Context, adminPassword string) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = 'user'
		)
	`).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS "user" (
			id       serial PRIMARY KEY,
			name     varchar(256) NOT NULL,
			password text         NOT NULL,
			role     varchar(256) NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return err
	}
	// Duplicate names are rejected by the store itself, not just by the
	// read-before-insert check in Create.
	_, err = s.pool.Exec(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS user_name_lower_idx ON "user" (lower(name))
	`)
	if err != nil {
		return err
	}

	ok, err := s.Create(ctx, "admin", adminPassword, []string{"Administrator"})
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("default admin user already registered")
	}
	return nil
}

// FindByName matches the name case-insensitively.
func (s *CredentialStore) FindByName(ctx context.Context, name string) (*entity.User, error) {
	u := &entity.User{}
	var roleCol string
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, password, role FROM "user"
		WHERE lower(name) = lower($1)
	`, name).Scan(&u.ID, &u.Name, &u.PasswordHash, &roleCol)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Roles = decodeRoles(roleCol)
	return u, nil
}

// Verify fails closed: empty arguments, unknown users and hash mismatches
// all yield false.
func (s *CredentialStore) Verify(ctx context.Context, name, password string) (bool, error) {
	if name == "" || password == "" {
		return false, nil
	}
	u, err := s.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.hasher.Compare(u.PasswordHash, password), nil
}

// Create inserts a new user; false means the name is already registered.
func (s *CredentialStore) Create(ctx context.Context, name, password string, roles []string) (bool, error) {
	if _, err := s.FindByName(ctx, name); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO "user" (name, password, role) VALUES ($1, $2, $3)
	`, name, hash, encodeRoles(roles))
	if err != nil {
		// A concurrent registration can slip past the pre-check; the unique
		// index turns that race into the duplicate outcome.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes the user row; unknown names are a no-op.
func (s *CredentialStore) Delete(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM "user" WHERE lower(name) = lower($1)
	`, name)
	return err
}

var _ repository.CredentialStore = (*CredentialStore)(nil)

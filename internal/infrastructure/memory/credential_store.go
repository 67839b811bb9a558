// Package memory provides an in-memory CredentialStore used by tests and by
// deployments that run without a database (STORE_DRIVER=memory).
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/formsauth/simplesecurity/internal/domain/entity"
	"github.com/formsauth/simplesecurity/internal/domain/repository"
	"github.com/formsauth/simplesecurity/pkg/helpers"
)

type CredentialStore struct {
	mu     sync.RWMutex
	users  map[string]*entity.User // keyed by lowercased name
	nextID int64
	seeded bool
	hasher helpers.Hasher
}

func NewCredentialStore(hasher helpers.Hasher) *CredentialStore {
	return &CredentialStore{
		users:  make(map[string]*entity.User),
		nextID: 1,
		hasher: hasher,
	}
}

// EnsureSchema seeds the default admin account once; further calls are no-ops.
func (s *CredentialStore) EnsureSchema(ctx context.Context, adminPassword string) error {
	s.mu.Lock()
	seeded := s.seeded
	s.seeded = true
	s.mu.Unlock()
	if seeded {
		return nil
	}
	_, err := s.Create(ctx, "admin", adminPassword, []string{"Administrator"})
	return err
}

func (s *CredentialStore) FindByName(_ context.Context, name string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(name)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp, nil
}

func (s *CredentialStore) Verify(ctx context.Context, name, password string) (bool, error) {
	if name == "" || password == "" {
		return false, nil
	}
	u, err := s.FindByName(ctx, name)
	if err != nil {
		if err == repository.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return s.hasher.Compare(u.PasswordHash, password), nil
}

func (s *CredentialStore) Create(_ context.Context, name, password string, roles []string) (bool, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(name)
	if _, exists := s.users[key]; exists {
		return false, nil
	}
	s.users[key] = &entity.User{
		ID:           s.nextID,
		Name:         name,
		PasswordHash: hash,
		Roles:        append([]string(nil), roles...),
	}
	s.nextID++
	return true, nil
}

func (s *CredentialStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, strings.ToLower(name))
	return nil
}

var _ repository.CredentialStore = (*CredentialStore)(nil)

package application

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/formsauth/simplesecurity/internal/domain/entity"
	"github.com/formsauth/simplesecurity/internal/domain/repository"
	"github.com/formsauth/simplesecurity/pkg/helpers"
)

// SecurityProvider orchestrates credential verification, ticket issuance and
// principal resolution. One configured instance is built at startup and
// passed explicitly to every consumer; there is no process-wide current
// provider.
type SecurityProvider struct {
	store       repository.CredentialStore
	tickets     *helpers.TicketCodec
	logger      *logrus.Logger
	defaultTTL  time.Duration
	initialized atomic.Bool
}

// Session is the outcome of a successful login (or of a logout, where the
// token is already expired and the principal anonymous). TicketToken goes
// into the HttpOnly ticket cookie, DisplayName into the client-readable
// companion cookie.
type Session struct {
	Principal   entity.Principal
	TicketToken string
	DisplayName string
	ExpiresAt   time.Time
	Persistent  bool
}

func NewSecurityProvider(store repository.CredentialStore, tickets *helpers.TicketCodec, logger *logrus.Logger, defaultTTL time.Duration) *SecurityProvider {
	return &SecurityProvider{
		store:      store,
		tickets:    tickets,
		logger:     logger,
		defaultTTL: defaultTTL,
	}
}

// Initialize ensures the user table exists and the default admin account is
// seeded. Must complete before any other operation; it is called once at
// process start.
func (p *SecurityProvider) Initialize(ctx context.Context, adminPassword string) error {
	if err := p.store.EnsureSchema(ctx, adminPassword); err != nil {
		return err
	}
	p.initialized.Store(true)
	return nil
}

// mustBeInitialized panics when an operation runs before Initialize. That is
// a programming error in the host wiring, not a recoverable condition.
func (p *SecurityProvider) mustBeInitialized() {
	if !p.initialized.Load() {
		panic("simplesecurity: provider used before Initialize")
	}
}

// Login verifies the credentials and issues a ticket. The boolean is false
// for empty or wrong credentials; an error is returned only for store
// failures. remember controls whether the ticket cookie survives the
// browsing session; timeout is the absolute ticket lifetime (the configured
// default when zero).
func (p *SecurityProvider) Login(ctx context.Context, name, password string, remember bool, timeout time.Duration) (*Session, bool, error) {
	p.mustBeInitialized()

	if name == "" || password == "" {
		return nil, false, nil
	}

	ok, err := p.store.Verify(ctx, name, password)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		p.logger.WithField("user", name).Debug("login rejected")
		return nil, false, nil
	}

	u, err := p.store.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if timeout <= 0 {
		timeout = p.defaultTTL
	}
	token, ticket, err := p.tickets.Issue(u.Name, remember, timeout)
	if err != nil {
		return nil, false, err
	}

	p.logger.WithField("user", u.Name).Info("login successful")
	return &Session{
		Principal:   entity.NewPrincipal(u.Name, u.Roles),
		TicketToken: token,
		DisplayName: u.Name,
		ExpiresAt:   ticket.ExpiresAt,
		Persistent:  remember,
	}, true, nil
}

// Logout emits a token whose ticket is already expired. Replacing the stored
// token with it invalidates the session on the next request.
func (p *SecurityProvider) Logout() (*Session, error) {
	p.mustBeInitialized()

	token, ticket, err := p.tickets.IssueExpired()
	if err != nil {
		return nil, err
	}
	return &Session{
		Principal:   entity.Anonymous(),
		TicketToken: token,
		ExpiresAt:   ticket.ExpiresAt,
	}, nil
}

// Register creates a new user; false means the name is already taken (or the
// arguments were empty). The existing row is never touched.
func (p *SecurityProvider) Register(ctx context.Context, name, password string, roles []string) (bool, error) {
	p.mustBeInitialized()

	if name == "" || password == "" {
		return false, nil
	}
	ok, err := p.store.Create(ctx, name, password, roles)
	if err != nil {
		return false, err
	}
	if ok {
		p.logger.WithField("user", name).Info("user registered")
	}
	return ok, nil
}

// Unregister removes a user. Unknown names are a no-op.
func (p *SecurityProvider) Unregister(ctx context.Context, name string) error {
	p.mustBeInitialized()

	if err := p.store.Delete(ctx, name); err != nil {
		return err
	}
	p.logger.WithField("user", name).Info("user unregistered")
	return nil
}

// ResolvePrincipal turns an incoming ticket token into the caller's
// principal. Absent, tampered and expired tokens resolve to the anonymous
// principal, as does a ticket for a user that no longer exists. Roles are
// re-read from the store on every resolution so role changes apply without
// re-login.
func (p *SecurityProvider) ResolvePrincipal(ctx context.Context, token string) (entity.Principal, error) {
	p.mustBeInitialized()

	if token == "" {
		return entity.Anonymous(), nil
	}
	ticket, err := p.tickets.Parse(token)
	if err != nil {
		return entity.Anonymous(), nil
	}
	if ticket.Username == "" || ticket.Expired(time.Now()) {
		return entity.Anonymous(), nil
	}

	u, err := p.store.FindByName(ctx, ticket.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted since the ticket was issued: fail closed.
			return entity.Anonymous(), nil
		}
		return entity.Anonymous(), err
	}
	return entity.NewPrincipal(u.Name, u.Roles), nil
}

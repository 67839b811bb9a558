package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Ticket is the time-bounded assertion of "this username authenticated",
// independent of its transport encoding.
type Ticket struct {
	Username   string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Persistent bool
}

// Expired reports whether the ticket is no longer valid at now.
func (t *Ticket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

type ticketClaims struct {
	Persistent bool `json:"persistent,omitempty"`
	jwt.RegisteredClaims
}

// TicketCodec signs and verifies ticket tokens with process-local key
// material. Tokens are HS256 JWTs carrying username, issue time, expiry and
// the persistence flag.
type TicketCodec struct {
	secret []byte
}

func NewTicketCodec(secret string) *TicketCodec {
	return &TicketCodec{secret: []byte(secret)}
}

// Issue encodes username plus the computed expiry into a signed opaque token.
func (tc *TicketCodec) Issue(username string, persistent bool, timeout time.Duration) (string, *Ticket, error) {
	now := time.Now()
	ticket := &Ticket{
		Username:   username,
		IssuedAt:   now,
		ExpiresAt:  now.Add(timeout),
		Persistent: persistent,
	}
	return tc.sign(ticket)
}

// IssueExpired produces the logout token: an empty ticket that is already
// expired, so any stored token it replaces stops resolving on the next
// request.
func (tc *TicketCodec) IssueExpired() (string, *Ticket, error) {
	now := time.Now()
	ticket := &Ticket{
		Username:  "",
		IssuedAt:  now,
		ExpiresAt: now.Add(-time.Minute),
	}
	return tc.sign(ticket)
}

func (tc *TicketCodec) sign(ticket *Ticket) (string, *Ticket, error) {
	claims := &ticketClaims{
		Persistent: ticket.Persistent,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ticket.Username,
			IssuedAt:  jwt.NewNumericDate(ticket.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(ticket.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.secret)
	if err != nil {
		return "", nil, err
	}
	return token, ticket, nil
}

// Parse verifies and decodes a token. Tampered, malformed and expired tokens
// all return an error; callers must treat that identically to "no ticket
// present".
func (tc *TicketCodec) Parse(token string) (*Ticket, error) {
	claims := &ticketClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tc.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}

	ticket := &Ticket{
		Username:   claims.Subject,
		Persistent: claims.Persistent,
	}
	if claims.IssuedAt != nil {
		ticket.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		ticket.ExpiresAt = claims.ExpiresAt.Time
	}
	return ticket, nil
}

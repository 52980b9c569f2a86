// Package session maps opaque tokens to authenticated member identity.
// The store is keyed state only; it never touches member records.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"
)

var ErrNoSession = errors.New("session not found")

// Payload is what an authenticated session carries. A session whose payload
// has an empty email is anonymous and must fail every authorization gate.
type Payload struct {
	MemberID string `json:"memberId"`
	Email    string `json:"email"`
}

// Store persists token -> payload with a lifetime. Implementations must
// return ErrNoSession for absent, expired or destroyed tokens.
type Store interface {
	Save(ctx context.Context, token string, p Payload, ttl time.Duration) error
	Get(ctx context.Context, token string) (Payload, error)
	Delete(ctx context.Context, token string) error
}

type Manager struct {
	store  Store
	ttl    time.Duration
	secret []byte
}

// NewManager wraps a store with token issuance. When secret is non-empty,
// tokens are keyed in the store by HMAC-SHA256(secret, token), so a dump of
// the store cannot be replayed as cookies.
func NewManager(store Store, ttl time.Duration, secret string) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &Manager{store: store, ttl: ttl, secret: []byte(secret)}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Authenticate binds a fresh opaque token to the member's identity and
// returns it. Tokens are 256 bits from crypto/rand, so they are not
// guessable or enumerable.
func (m *Manager) Authenticate(ctx context.Context, memberID, email string) (string, error) {
	token, err := newToken()

	if err != nil {
		return "", err
	}

	err = m.store.Save(ctx, m.storeKey(token), Payload{MemberID: memberID, Email: email}, m.ttl)

	if err != nil {
		return "", err
	}

	return token, nil
}

// Lookup resolves a token to its payload. Absent, expired and destroyed
// tokens all surface as ErrNoSession: after destruction a token behaves as
// if it never existed.
func (m *Manager) Lookup(ctx context.Context, token string) (Payload, error) {
	if token == "" {
		return Payload{}, ErrNoSession
	}

	return m.store.Get(ctx, m.storeKey(token))
}

// IsAuthenticated reports whether the token maps to a non-anonymous payload.
func (m *Manager) IsAuthenticated(ctx context.Context, token string) bool {
	p, err := m.Lookup(ctx, token)

	if err != nil {
		return false
	}

	return p.Email != ""
}

// Destroy clears the session. Destroying an unknown or already destroyed
// token is a no-op success, so logout stays idempotent.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	err := m.store.Delete(ctx, m.storeKey(token))

	if err != nil && !errors.Is(err, ErrNoSession) {
		return err
	}

	return nil
}

func (m *Manager) storeKey(token string) string {
	if len(m.secret) == 0 {
		return token
	}

	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

func newToken() (string, error) {
	buf := make([]byte, 32)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

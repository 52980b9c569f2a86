package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/muirkirkangling/memberportal/internal/session"
)

func newManager(t *testing.T, ttl time.Duration) *session.Manager {
	t.Helper()

	return session.NewManager(session.NewMemoryStore(), ttl, "test-secret")
}

func TestManager_AuthenticateAndLookup(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, time.Minute)

	token, err := m.Authenticate(ctx, "member-1", "jane@x.com")

	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	if token == "" {
		t.Fatalf("expected a token")
	}

	p, err := m.Lookup(ctx, token)

	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if p.MemberID != "member-1" || p.Email != "jane@x.com" {
		t.Fatalf("got payload %+v", p)
	}

	if !m.IsAuthenticated(ctx, token) {
		t.Fatalf("expected token to be authenticated")
	}
}

func TestManager_AnonymousToken(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, time.Minute)

	if m.IsAuthenticated(ctx, "") {
		t.Fatalf("empty token must not be authenticated")
	}

	if m.IsAuthenticated(ctx, "never-issued") {
		t.Fatalf("unknown token must not be authenticated")
	}

	if _, err := m.Lookup(ctx, "never-issued"); err != session.ErrNoSession {
		t.Fatalf("got %v, want ErrNoSession", err)
	}
}

func TestManager_TokensAreUnique(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, time.Minute)

	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token, err := m.Authenticate(ctx, "m", "m@x.com")

		if err != nil {
			t.Fatalf("authenticate failed: %v", err)
		}

		if seen[token] {
			t.Fatalf("token repeated after %d issues", i)
		}

		seen[token] = true
	}
}

func TestManager_DestroyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, time.Minute)

	token, err := m.Authenticate(ctx, "member-1", "jane@x.com")

	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	if err := m.Destroy(ctx, token); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}

	// reads after destroy behave like the session never existed
	if m.IsAuthenticated(ctx, token) {
		t.Fatalf("destroyed token still authenticated")
	}

	if _, err := m.Lookup(ctx, token); err != session.ErrNoSession {
		t.Fatalf("got %v, want ErrNoSession", err)
	}

	// destroying again (or destroying nothing) is a no-op success
	if err := m.Destroy(ctx, token); err != nil {
		t.Fatalf("second destroy failed: %v", err)
	}

	if err := m.Destroy(ctx, ""); err != nil {
		t.Fatalf("destroy of empty token failed: %v", err)
	}
}

func TestManager_Expiry(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, 10*time.Millisecond)

	token, err := m.Authenticate(ctx, "member-1", "jane@x.com")

	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if m.IsAuthenticated(ctx, token) {
		t.Fatalf("expired token still authenticated")
	}
}

func TestManager_NoSecretStillWorks(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(session.NewMemoryStore(), time.Minute, "")

	token, err := m.Authenticate(ctx, "member-1", "jane@x.com")

	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	if !m.IsAuthenticated(ctx, token) {
		t.Fatalf("expected token to be authenticated")
	}
}

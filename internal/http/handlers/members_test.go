package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/muirkirkangling/memberportal/internal/domain/member"
	"github.com/muirkirkangling/memberportal/internal/http/handlers"
	"github.com/muirkirkangling/memberportal/internal/http/middlewares"
	"github.com/muirkirkangling/memberportal/internal/repo"
	"github.com/muirkirkangling/memberportal/internal/session"
	"github.com/muirkirkangling/memberportal/web"
)

func setupGatedDashboard(store handlers.MembersStore, sessions *session.Manager) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())

	gate := middlewares.NewSessionGate(sessions, handlers.SessionCookie)
	h := handlers.NewMembersHandler(store)

	r.GET("/members", gate.RequireMember(), h.Dashboard)

	return r
}

func getWithCookie(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)

	if token != "" {
		req.AddCookie(&http.Cookie{Name: handlers.SessionCookie, Value: token})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestDashboard_RequiresSession(t *testing.T) {
	sessions := newSessions()
	r := setupGatedDashboard(&fakeMembersStore{}, sessions)

	// no cookie at all
	w := getWithCookie(r, "/members", "")

	if w.Code != http.StatusFound {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusFound)
	}

	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("got location %q, want /login", loc)
	}

	// a token that was never issued
	w = getWithCookie(r, "/members", "forged-token")

	if w.Code != http.StatusFound {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusFound)
	}
}

func TestDashboard_RendersRenewalPayload(t *testing.T) {
	sessions := newSessions()

	token, err := sessions.Authenticate(context.Background(), "m1", "jane@x.com")

	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	store := &fakeMembersStore{
		getFn: func(ctx context.Context, email string) (member.Member, error) {
			return member.Member{
				ID:         "m1",
				FirstName:  "Jane",
				LastName:   "Doe",
				Email:      email,
				PermitType: member.PermitLocalAdult,
				Renewed:    true,
			}, nil
		},
		countFn: func(ctx context.Context) (int, error) {
			return 3, nil
		},
	}

	r := setupGatedDashboard(store, sessions)

	w := getWithCookie(r, "/members", token)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	body := w.Body.String()

	for _, want := range []string{"Jane", "Doe", "Local Adult", "40.00", "3 members have renewed"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}

	if !strings.Contains(body, "Renew permit") {
		t.Fatalf("expected payment affordance for a priced permit")
	}
}

func TestDashboard_ZeroPriceHidesPayment(t *testing.T) {
	sessions := newSessions()

	token, err := sessions.Authenticate(context.Background(), "m1", "jane@x.com")

	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	store := &fakeMembersStore{
		getFn: func(ctx context.Context, email string) (member.Member, error) {
			return member.Member{ID: "m1", FirstName: "Jane", LastName: "Doe", Email: email}, nil
		},
	}

	r := setupGatedDashboard(store, sessions)

	w := getWithCookie(r, "/members", token)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	if strings.Contains(w.Body.String(), "Renew permit") {
		t.Fatalf("payment affordance shown for a zero-price category")
	}
}

func TestDashboard_VanishedMemberIsServerError(t *testing.T) {
	sessions := newSessions()

	token, err := sessions.Authenticate(context.Background(), "m1", "ghost@x.com")

	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	store := &fakeMembersStore{
		getFn: func(ctx context.Context, email string) (member.Member, error) {
			return member.Member{}, repo.ErrMemberNotFound
		},
	}

	r := setupGatedDashboard(store, sessions)

	w := getWithCookie(r, "/members", token)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

package http_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/muirkirkangling/memberportal/internal/config"
	"github.com/muirkirkangling/memberportal/internal/domain/member"
	httpx "github.com/muirkirkangling/memberportal/internal/http"
	"github.com/muirkirkangling/memberportal/internal/http/handlers"
	"github.com/muirkirkangling/memberportal/internal/observability"
	"github.com/muirkirkangling/memberportal/internal/repo/memory"
	"github.com/muirkirkangling/memberportal/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupPortal(t *testing.T) (*gin.Engine, *memory.MembersRepo) {
	t.Helper()

	members := memory.NewMembersRepo()
	sessions := session.NewManager(session.NewMemoryStore(), time.Minute, "test-secret")

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := httpx.NewRouter(httpx.Deps{
		Log:      log,
		Cfg:      config.Config{Env: "test", BcryptCost: bcrypt.MinCost},
		Members:  members,
		Sessions: sessions,
		Prom:     prom,
		Registry: registry,
	})

	return router, members
}

func doForm(router http.Handler, path string, form url.Values, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *http.Response) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w, w.Result()
}

func doGet(router http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)

	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func sessionCookie(t *testing.T, response *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range response.Cookies() {
		if c.Name == handlers.SessionCookie && c.Value != "" {
			return c
		}
	}

	t.Fatalf("session cookie not found in response")

	return nil
}

func wantRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()

	if w.Code != http.StatusFound {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusFound, w.Body.String())
	}

	if loc := w.Header().Get("Location"); loc != location {
		t.Fatalf("got location %q, want %q", loc, location)
	}
}

func TestPortalFlow_RegisterLoginDashboardLogout(t *testing.T) {
	router, members := setupPortal(t)

	// home redirects to login
	wantRedirect(t, doGet(router, "/"), "/login")

	// dashboard is unreachable before login
	wantRedirect(t, doGet(router, "/members"), "/login")

	// register Jane
	registerForm := url.Values{
		"firstName": {"Jane"},
		"lastName":  {"Doe"},
		"email":     {"jane@x.com"},
		"password":  {"pw123"},
	}

	w, _ := doForm(router, "/register", registerForm)
	wantRedirect(t, w, "/login")

	// registering the same email again fails
	w, _ = doForm(router, "/register", registerForm)
	wantRedirect(t, w, "/register?message=User+already+exists.")

	// wrong password never authenticates
	w, _ = doForm(router, "/login", url.Values{"email": {"jane@x.com"}, "password": {"wrong"}})
	wantRedirect(t, w, "/login?message=Incorrect+password.")

	// unknown email is told apart (kept from the original behavior)
	w, _ = doForm(router, "/login", url.Values{"email": {"nobody@x.com"}, "password": {"pw123"}})
	wantRedirect(t, w, "/login?message=No+user+found")

	// the committee assigns Jane a permit and marks her renewed
	if !members.SetPermit("jane@x.com", member.PermitLocalAdult, true) {
		t.Fatalf("set permit failed")
	}

	// correct credentials log in
	w, response := doForm(router, "/login", url.Values{"email": {"jane@x.com"}, "password": {"pw123"}})
	wantRedirect(t, w, "/members")

	cookie := sessionCookie(t, response)

	// dashboard renders the renewal payload
	dash := doGet(router, "/members", cookie)

	if dash.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", dash.Code, http.StatusOK, dash.Body.String())
	}

	body := dash.Body.String()

	for _, want := range []string{"Jane", "Doe", "Local Adult", "40.00", "1 members have renewed"} {
		if !strings.Contains(body, want) {
			t.Fatalf("dashboard missing %q:\n%s", want, body)
		}
	}

	// logout destroys the session
	wantRedirect(t, doGet(router, "/logout", cookie), "/login")

	// the old cookie is dead: straight back to login
	wantRedirect(t, doGet(router, "/members", cookie), "/login")
}

func TestPortalFlow_LoginPageShowsMessage(t *testing.T) {
	router, _ := setupPortal(t)

	w := doGet(router, "/login?message=No+user+found")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	if !strings.Contains(w.Body.String(), "No user found") {
		t.Fatalf("login page should echo the message")
	}
}

func TestPortalFlow_HealthAndMetrics(t *testing.T) {
	router, _ := setupPortal(t)

	if w := doGet(router, "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("healthz got %d", w.Code)
	}

	if w := doGet(router, "/readyz"); w.Code != http.StatusOK {
		t.Fatalf("readyz got %d", w.Code)
	}

	w := doGet(router, "/metrics")

	if w.Code != http.StatusOK {
		t.Fatalf("metrics got %d", w.Code)
	}

	if !strings.Contains(w.Body.String(), "memberportal_http_requests_total") {
		t.Fatalf("metrics output missing portal counters:\n%s", w.Body.String())
	}
}

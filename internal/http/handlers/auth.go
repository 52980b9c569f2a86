package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muirkirkangling/memberportal/internal/config"
	"github.com/muirkirkangling/memberportal/internal/domain/member"
	"github.com/muirkirkangling/memberportal/internal/observability"
	"github.com/muirkirkangling/memberportal/internal/repo"
	"github.com/muirkirkangling/memberportal/internal/security"
	"github.com/muirkirkangling/memberportal/internal/session"
)

// SessionCookie carries the opaque session token.
const SessionCookie = "mk_session"

type MembersStore interface {
	GetByEmail(ctx context.Context, email string) (member.Member, error)
	Create(ctx context.Context, firstName, lastName, email, passwordHash string) (member.Member, error)
	CountRenewed(ctx context.Context) (int, error)
}

type AuthHandler struct {
	members  MembersStore
	sessions *session.Manager
	prom     *observability.Prom
	cfg      config.Config
}

func NewAuthHandler(members MembersStore, sessions *session.Manager, prom *observability.Prom, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		members:  members,
		sessions: sessions,
		prom:     prom,
		cfg:      cfg,
	}
}

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type RegisterForm struct {
	FirstName string `form:"firstName" binding:"required"`
	LastName  string `form:"lastName" binding:"required"`
	Email     string `form:"email" binding:"required,email"`
	Password  string `form:"password" binding:"required"`
}

func (h *AuthHandler) ShowLogin(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.tmpl", gin.H{
		"title":   "Member Login",
		"message": ctx.Query("message"),
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var form LoginForm

	if !BindForm(ctx, &form, "/login") {
		return
	}

	// short timeout for DB lookup; bcrypt check happens after
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	found, err := h.members.GetByEmail(cctx, form.Email)

	if err != nil {
		if errors.Is(err, repo.ErrMemberNotFound) {
			h.countLogin("no_user")
			RedirectWithMessage(ctx, "/login", "No user found")
			return
		}

		h.countLogin("error")
		slog.Default().ErrorContext(ctx.Request.Context(), "login lookup failed", "err", err)
		RespondServerError(ctx, "Error during login.")
		return
	}

	err = security.CheckPassword(found.PasswordHash, form.Password)

	if err != nil {
		h.countLogin("bad_password")
		RedirectWithMessage(ctx, "/login", "Incorrect password.")
		return
	}

	token, err := h.sessions.Authenticate(ctx.Request.Context(), found.ID, found.Email)

	if err != nil {
		h.countLogin("error")
		slog.Default().ErrorContext(ctx.Request.Context(), "session create failed", "err", err)
		RespondServerError(ctx, "Error during login.")
		return
	}

	h.setSessionCookie(ctx, token)
	h.countLogin("success")

	if h.prom != nil {
		h.prom.SessionsActive.Inc()
	}

	ctx.Redirect(http.StatusFound, "/members")
}

func (h *AuthHandler) ShowRegister(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "register.tmpl", gin.H{
		"title":   "Register",
		"message": ctx.Query("message"),
	})
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var form RegisterForm

	if !BindForm(ctx, &form, "/register") {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	// advisory pre-check for a friendlier error; the unique constraint on
	// email is the real guarantee
	_, err := h.members.GetByEmail(cctx, form.Email)

	if err == nil {
		RedirectWithMessage(ctx, "/register", "User already exists.")
		return
	}

	if !errors.Is(err, repo.ErrMemberNotFound) {
		slog.Default().ErrorContext(ctx.Request.Context(), "register lookup failed", "err", err)
		RespondServerError(ctx, "Error during registration.")
		return
	}

	hash, err := security.HashPassword(form.Password, h.cfg.BcryptCost)

	if err != nil {
		RespondServerError(ctx, "Error during registration.")
		return
	}

	_, err = h.members.Create(cctx, form.FirstName, form.LastName, form.Email, hash)

	if err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			// lost the race to a concurrent registration
			RedirectWithMessage(ctx, "/register", "User already exists.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "register insert failed", "err", err)
		RespondServerError(ctx, "Error during registration.")
		return
	}

	ctx.Redirect(http.StatusFound, "/login")
}

// Logout destroys the current session no matter its state. Logging out
// twice is fine.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	token, err := ctx.Cookie(SessionCookie)

	if err == nil && token != "" {
		if derr := h.sessions.Destroy(ctx.Request.Context(), token); derr != nil {
			slog.Default().ErrorContext(ctx.Request.Context(), "session destroy failed", "err", derr)
		} else if h.prom != nil {
			h.prom.SessionsActive.Dec()
		}
	}

	h.clearSessionCookie(ctx)
	ctx.Redirect(http.StatusFound, "/login")
}

// Helper functions

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	secure := h.cfg.Env == "prod"

	maxAge := int(h.sessions.TTL().Seconds())

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		SessionCookie,
		token,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		SessionCookie,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}

func (h *AuthHandler) countLogin(result string) {
	if h.prom != nil {
		h.prom.LoginsTotal.WithLabelValues(result).Inc()
	}
}

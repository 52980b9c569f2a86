package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muirkirkangling/memberportal/internal/config"
	"github.com/muirkirkangling/memberportal/internal/http/middlewares"
	"github.com/muirkirkangling/memberportal/internal/pricing"
	"github.com/muirkirkangling/memberportal/internal/repo"
)

type MembersHandler struct {
	members MembersStore
}

func NewMembersHandler(members MembersStore) *MembersHandler {
	return &MembersHandler{members: members}
}

// Dashboard renders the renewal page for the logged-in member. Only
// reachable through the session gate.
func (h *MembersHandler) Dashboard(ctx *gin.Context) {
	email, ok := middlewares.EmailFromContext(ctx)

	if !ok || email == "" {
		// gate should have caught this; treat as anonymous anyway
		ctx.Redirect(http.StatusFound, "/login")
		ctx.Abort()
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	m, err := h.members.GetByEmail(cctx, email)

	if err != nil {
		if errors.Is(err, repo.ErrMemberNotFound) {
			// authenticated identity no longer resolves to a record:
			// integrity fault for this request only
			slog.Default().ErrorContext(ctx.Request.Context(), "member vanished after auth", "email", email)
			RespondServerError(ctx, "Error fetching user data.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "dashboard lookup failed", "err", err)
		RespondServerError(ctx, "Error fetching user data.")
		return
	}

	pence := pricing.RenewalPence(m.PermitType)

	renewedCount, err := h.members.CountRenewed(cctx)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "renewed count failed", "err", err)
		RespondServerError(ctx, "Error fetching user data.")
		return
	}

	ctx.HTML(http.StatusOK, "members.tmpl", gin.H{
		"title":                "Muirkirk Angling Association Store",
		"firstName":            m.FirstName,
		"lastName":             m.LastName,
		"permitType":           string(m.PermitType),
		"renewalPrice":         pricing.FormatPence(pence),
		"renewedCount":         renewedCount,
		"displayPaymentOption": pricing.DisplayPaymentOption(pence),
	})
}

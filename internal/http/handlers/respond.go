package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/muirkirkangling/memberportal/internal/http/middlewares"
)

// RedirectWithMessage sends the browser back to path with a human-readable
// message in the query string, the portal's only error channel for
// user-correctable failures.
func RedirectWithMessage(ctx *gin.Context, path, message string) {
	target := path

	if message != "" {
		target = path + "?message=" + url.QueryEscape(message)
	}

	ctx.Redirect(http.StatusFound, target)
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

// RespondServerError renders the generic error page. Used for transient
// storage or hashing faults and for integrity errors; the request fails,
// the process keeps serving.
func RespondServerError(ctx *gin.Context, message string) {
	ctx.HTML(http.StatusInternalServerError, "error.tmpl", gin.H{
		"title":     "Something went wrong",
		"message":   message,
		"requestId": requestIDFrom(ctx),
	})
	ctx.Abort()
}

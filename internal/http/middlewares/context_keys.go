package middlewares

const (
	CtxRequestID    = "request_id"
	CtxMemberID     = "session.memberID"
	CtxEmail        = "session.email"
	CtxSessionToken = "session.token"
)

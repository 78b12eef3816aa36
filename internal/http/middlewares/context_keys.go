package middlewares

const (
	ctxUserIDKey  = "auth.userID"
	ctxEmailKey   = "auth.email"
	ctxIsAdminKey = "auth.isAdmin"

	CtxRequestID = "request_id"
)

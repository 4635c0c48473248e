package middleware

import (
	"context"
	"net/http"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	requestDataKey
)

// requestData is attached by RequestLogger and filled in by later
// middleware, so the log line can carry the authenticated user.
type requestData struct {
	requestID string
	userID    int64
}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	if rd, ok := ctx.Value(requestDataKey).(*requestData); ok {
		rd.userID = userID
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID extracts the authenticated user ID from the request context.
func UserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value(userIDKey).(int64)
	return uid, ok
}

// RequestID returns the request ID assigned by RequestLogger, if any.
func RequestID(ctx context.Context) string {
	if rd, ok := ctx.Value(requestDataKey).(*requestData); ok {
		return rd.requestID
	}
	return ""
}

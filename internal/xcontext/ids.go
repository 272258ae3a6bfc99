// Package xcontext carries per-request identifiers and the server's shutdown
// signal through context.Context.
package xcontext

import "context"

type idKey int

const (
	requestIDKey idKey = iota
	sessionIDKey
	userIDKey
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) (string, bool) {
	return getID(ctx, requestIDKey)
}

// SetSessionID records the client session a request came from. Sessions are
// optional; older clients do not send one.
func SetSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func GetSessionID(ctx context.Context) (string, bool) {
	return getID(ctx, sessionIDKey)
}

// SetUserID records the verified token subject.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	return getID(ctx, userIDKey)
}

// getID treats an empty value the same as a missing one.
func getID(ctx context.Context, key idKey) (string, bool) {
	id, ok := ctx.Value(key).(string)
	return id, ok && id != ""
}

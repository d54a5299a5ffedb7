package session

import "context"

type sessionIDKey struct{}

// WithID tags ctx with the caller's session id so recorded events can be
// attributed. The engine itself does not track sessions.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// IDFrom returns the session id from ctx, or "" if not set.
func IDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return id
	}
	return ""
}

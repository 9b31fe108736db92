package quillpost

import "context"

type userIDContextKey struct{}

// WithUserID attaches an authenticated user id to ctx. Only the auth gate
// should call it, after the session store resolved the token.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext returns the id attached by [WithUserID].
func UserIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(userIDContextKey{}).(int64)
	return id, ok
}

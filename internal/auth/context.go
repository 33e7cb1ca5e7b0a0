package auth

import "context"

type contextKey string

const userIDContextKey contextKey = "fastwell-user-id"

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the id of the logged in user, set by the
// auth middleware. Empty string means an unauthenticated request.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey).(string)
	return userID
}

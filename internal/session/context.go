package session

import "context"

type contextKey int

const userIDKey contextKey = iota

// WithUserID returns a context that pins the current user to userID,
// bypassing the stored session. Used by trusted callers such as the
// importer and MCP clients that name a user explicitly.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user pinned by WithUserID, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// HeaderUserID is the request header that pins the current user for one
// HTTP request, the wire form of WithUserID.
const HeaderUserID = "X-User-ID"

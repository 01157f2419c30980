package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyRole   ctxKey = "role"
)

// WithIdentity records the resolved caller on ctx for rate limiting and
// logging middleware further down the chain.
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, userID)
	return context.WithValue(ctx, CtxKeyRole, role)
}

// UserIDFromContext returns the caller recorded by WithIdentity.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyUserID).(string)
	return v
}

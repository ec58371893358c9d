package session

import "context"

type ctxKey struct{}

// WithID кладёт идентификатор сессии в контекст.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IDFromContext достаёт идентификатор сессии из контекста.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

package services

import "context"

type ctxKey int

const (
	authorityKey ctxKey = iota
	searchKeyKey
	requestIDKey
)

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithAuthority records the authority being queried. Empty names are ignored.
func WithAuthority(ctx context.Context, authority string) context.Context {
	return withString(ctx, authorityKey, authority)
}

func AuthorityFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, authorityKey)
}

// WithSearchKey records the search key under resolution, in its
// "Kind:value" text form.
func WithSearchKey(ctx context.Context, key string) context.Context {
	return withString(ctx, searchKeyKey, key)
}

func SearchKeyFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, searchKeyKey)
}

// WithRequestID records the correlation ID shared by the log lines and the
// envelope of one resolution.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKey)
}

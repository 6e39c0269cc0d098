package models

import "context"

type requestMetaKey struct{}

// RequestMeta carries client details recorded on audit entries.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// WithRequestMeta stores meta on ctx.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom returns the meta stored on ctx, or the zero value.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

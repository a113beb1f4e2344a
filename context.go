package faceid

import "context"

type contextKey int

const (
	ctxKeyClientIP contextKey = iota
	ctxKeyUserAgent
)

// WithClientIP attaches the caller's IP address to the context so it is
// recorded on audit entries emitted during the call.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// WithUserAgent attaches the caller's user agent string to the context for
// audit metadata.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

func clientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ctxKeyClientIP).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	ua, _ := ctx.Value(ctxKeyUserAgent).(string)
	return ua
}

// Package requestcontext carries per-request values (request id, client
// metadata, visitor identity) through context.Context.
package requestcontext

import "context"

type (
	requestIDKey struct{}
	clientIPKey  struct{}
	userAgentKey struct{}
	botKey       struct{}
	visitorIDKey struct{}
)

// WithRequestID stores the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request id or "".
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithClientMetadata stores the client IP and User-Agent extracted by the
// metadata middleware.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}

func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(userAgentKey{}).(string)
	return v
}

// WithBot marks the request as coming from an automated client.
func WithBot(ctx context.Context, bot bool) context.Context {
	return context.WithValue(ctx, botKey{}, bot)
}

// IsBot reports whether the metadata middleware classified the client as a crawler.
func IsBot(ctx context.Context) bool {
	v, _ := ctx.Value(botKey{}).(bool)
	return v
}

// WithVisitorID stores the verified visitor id.
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, visitorIDKey{}, visitorID)
}

// VisitorID returns the verified visitor id, or "" for storage-less clients.
func VisitorID(ctx context.Context) string {
	v, _ := ctx.Value(visitorIDKey{}).(string)
	return v
}

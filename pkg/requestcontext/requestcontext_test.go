package requestcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, VisitorID(ctx))
	assert.False(t, IsBot(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithClientMetadata(ctx, "192.0.2.7", "curl/8")
	ctx = WithBot(ctx, true)
	ctx = WithVisitorID(ctx, "visitor-1")

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "192.0.2.7", ClientIP(ctx))
	assert.Equal(t, "curl/8", UserAgent(ctx))
	assert.True(t, IsBot(ctx))
	assert.Equal(t, "visitor-1", VisitorID(ctx))
}

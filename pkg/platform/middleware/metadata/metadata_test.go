package metadata

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"sitekit/pkg/requestcontext"
)

const (
	chromeUA    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	googlebotUA = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trusted    []string
		wantIP     string
		wantBot    bool
	}{
		{
			name:       "ignores XFF from untrusted peer",
			remoteAddr: "192.168.1.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1", "User-Agent": chromeUA},
			wantIP:     "192.168.1.1",
		},
		{
			name:       "uses first XFF hop from trusted proxy",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1", "User-Agent": chromeUA},
			trusted:    []string{"10.0.0.0/8"},
			wantIP:     "203.0.113.1",
		},
		{
			name:       "falls back when XFF is not an address",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "garbage"},
			trusted:    []string{"10.0.0.0/8"},
			wantIP:     "10.0.0.1",
		},
		{
			name:       "honours X-Real-IP from trusted proxy",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			trusted:    []string{"10.0.0.0/8"},
			wantIP:     "198.51.100.7",
		},
		{
			name:       "ipv6 remote address",
			remoteAddr: "[2001:db8::1]:443",
			wantIP:     "2001:db8::1",
		},
		{
			name:       "flags crawlers",
			remoteAddr: "66.249.66.1:5555",
			headers:    map[string]string{"User-Agent": googlebotUA},
			wantIP:     "66.249.66.1",
			wantBot:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var prefixes []netip.Prefix
			for _, p := range tt.trusted {
				prefixes = append(prefixes, netip.MustParsePrefix(p))
			}
			mw := NewMiddleware(&Config{TrustedProxies: prefixes})

			var gotIP string
			var gotBot bool
			h := mw.Handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				gotIP = requestcontext.ClientIP(r.Context())
				gotBot = requestcontext.IsBot(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/consent", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantIP, gotIP)
			assert.Equal(t, tt.wantBot, gotBot)
		})
	}
}

func TestIsBot(t *testing.T) {
	assert.True(t, IsBot(googlebotUA))
	assert.False(t, IsBot(chromeUA))
	assert.False(t, IsBot(""))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-pricing/internal/config"
	"github.com/iliyamo/rental-pricing/internal/utils"
)

const testSecret = "test-secret"

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func whoami(c echo.Context) error {
	return c.String(http.StatusOK, subject(c))
}

func TestJWTAuthAndRole(t *testing.T) {
	e := echo.New()
	e.GET("/owner", whoami, JWTAuth(testSecret), RequireRole(RoleOwner))

	owner, err := utils.NewAccessToken(testSecret, 42, RoleOwner, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	guest, err := utils.NewAccessToken(testSecret, 7, "GUEST", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	forged, err := utils.NewAccessToken("other-secret", 42, RoleOwner, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	expired, err := utils.NewAccessToken(testSecret, 42, RoleOwner, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"owner", "Bearer " + owner.Token, http.StatusOK, "42"},
		{"wrong role", "Bearer " + guest.Token, http.StatusForbidden, ""},
		{"wrong secret", "Bearer " + forged.Token, http.StatusUnauthorized, ""},
		{"expired", "Bearer " + expired.Token, http.StatusUnauthorized, ""},
		{"missing", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/owner", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := serve(e, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestLocalLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.GET("/q", whoami, NewRateLimiter(cfg, nil))

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/q", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := serve(e, req)
		if rec.Code != want {
			t.Fatalf("request %d status = %d, want %d", i, rec.Code, want)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "2" {
			t.Errorf("request %d missing limit header", i)
		}
		if want == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Error("blocked response has no Retry-After")
		}
	}

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/q", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	if rec := serve(e, req); rec.Code != http.StatusOK {
		t.Errorf("second client status = %d, want 200", rec.Code)
	}
}

func TestLocalLimiterDisabled(t *testing.T) {
	e := echo.New()
	e.GET("/q", whoami, NewLocalLimiter(config.RateLimitConfig{Enabled: false}))
	for i := 0; i < 5; i++ {
		if rec := serve(e, httptest.NewRequest(http.MethodGet, "/q", nil)); rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/market/seasons", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/market/seasons")
	c.Set(CtxUserID, float64(9))

	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:192.0.2.7"},
		{"user", "rl:user:9"},
		{"ip_route", "rl:ip:192.0.2.7:route:GET /v1/market/seasons"},
		{"", "rl:ip:192.0.2.7:user:9:route:GET /v1/market/seasons"},
	}
	for _, tt := range tests {
		got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: tt.strategy}, c)
		if got != tt.want {
			t.Errorf("strategy %q: key = %q, want %q", tt.strategy, got, tt.want)
		}
	}
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatal(err)
	}
	status, got, body, ok := decodePayload(payload)
	if !ok || status != http.StatusOK || got.Get("Content-Type") != "application/json" || string(body) != `{"ok":true}` {
		t.Errorf("decodePayload() = %d %v %q %v", status, got, body, ok)
	}
	if _, _, _, ok := decodePayload([]byte{0, 0, 0}); ok {
		t.Error("short payload decoded")
	}
	if _, _, _, ok := decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0}); ok {
		t.Error("payload with oversized header length decoded")
	}
}

func TestCacheKeyIncludesQuery(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "pc", KeyStrategy: "route_query"}
	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/pricing/calendar")
		return cacheKeyFrom(cfg, c)
	}
	a := key("/v1/pricing/calendar?area=marina&base_rate=100")
	b := key("/v1/pricing/calendar?base_rate=100&area=marina")
	c := key("/v1/pricing/calendar?area=jlt&base_rate=100")
	if a != b {
		t.Error("parameter order changed the cache key")
	}
	if a == c {
		t.Error("different areas share a cache key")
	}
}

func TestRedisCacheDisabledWithoutClient(t *testing.T) {
	e := echo.New()
	calls := 0
	e.GET("/x", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "fresh")
	}, NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil))
	for i := 0; i < 2; i++ {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
		if rec.Header().Get("X-Cache") != "" {
			t.Error("X-Cache set with caching disabled")
		}
	}
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(zerolog.Nop()))
	e.GET("/x", whoami)
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "anon" {
		t.Errorf("response = %d %q", rec.Code, rec.Body.String())
	}
}

package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/godview/pkg/slogx"
	"github.com/caarlos0/env/v11"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the sustained number of requests per Window.
	RequestsPerWindow int
	Window            time.Duration
	// Burst is how many requests may arrive at once.
	Burst int
}

// Rate limit profiles. Each can be overridden with
// RATELIMIT_{STRICT|MODERATE|LENIENT|PUBLIC}_{REQUESTS|WINDOW_SEC|BURST}.
var (
	// StrictLimit guards credentials and single-use tokens: sign-in,
	// bootstrap, invitation acceptance and impersonation consumption.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit covers super admin mutations.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit covers dashboards, listings and health checks.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}

	// PublicLimit covers feature flag evaluation by the main application.
	PublicLimit = RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
)

func init() {
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
	PublicLimit = ParseRateLimitFromEnv("PUBLIC", PublicLimit)
}

type rateLimitEnv struct {
	Requests  int `env:"REQUESTS"`
	WindowSec int `env:"WINDOW_SEC"`
	Burst     int `env:"BURST"`
}

// ParseRateLimitFromEnv overlays RATELIMIT_{prefix}_REQUESTS, _WINDOW_SEC and
// _BURST onto def. Values that are unset or not positive keep the default. If
// any value fails to parse the whole override is ignored.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	var raw rateLimitEnv
	if err := env.ParseWithOptions(&raw, env.Options{Prefix: "RATELIMIT_" + prefix + "_"}); err != nil {
		return def
	}

	config := def
	if raw.Requests > 0 {
		config.RequestsPerWindow = raw.Requests
	}
	if raw.WindowSec > 0 {
		config.Window = time.Duration(raw.WindowSec) * time.Second
	}
	if raw.Burst > 0 {
		config.Burst = raw.Burst
	}
	return config
}

// KeyExtractor groups requests for rate limiting. An empty key exempts the
// request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the client IP, honouring X-Forwarded-For and
// X-Real-IP from a fronting proxy.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// UserIDKeyExtractor returns the user the session guard put on the context,
// or "" for anonymous requests.
func UserIDKeyExtractor(r *http.Request) string {
	return UserIDFromRequest(r)
}

// CompositeKeyExtractor joins the non-empty keys of extractors with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// JSONFieldKeyExtractor reads a top level string field from a JSON body,
// lower-cased and trimmed. The body is restored for the handler.
func JSONFieldKeyExtractor(fieldName string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return ""
		}

		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return ""
		}
		v, _ := fields[fieldName].(string)
		return strings.ToLower(strings.TrimSpace(v))
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet hands out one token bucket per key and forgets keys that have
// been idle for longer than idle.
type limiterSet struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastPrune time.Time
}

func newLimiterSet(config RateLimitConfig) *limiterSet {
	return &limiterSet{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		burst:    config.Burst,
		idle:     max(config.Window, 5*time.Minute),
	}
}

// allow takes a token for key. When none is left it returns how long until
// the next one.
func (s *limiterSet) allow(key string, now time.Time) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastPrune) >= s.idle {
		for k, v := range s.visitors {
			if now.Sub(v.lastSeen) >= s.idle {
				delete(s.visitors, k)
			}
		}
		s.lastPrune = now
	}

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now

	if v.limiter.AllowN(now, 1) {
		return true, 0
	}
	res := v.limiter.ReserveN(now, 1)
	wait := res.DelayFrom(now)
	res.CancelAt(now)
	return false, wait
}

// RateLimitMiddleware limits requests per key. Rejected requests get a 429
// rate_limited envelope with Retry-After.
func RateLimitMiddleware(config RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	set := newLimiterSet(config)
	limit := strconv.Itoa(config.RequestsPerWindow)
	window := config.Window.String()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyExtractor(r)
			if key == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key for request, allowing")
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := set.allow(key, time.Now())
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(math.Ceil(wait.Seconds())), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Window", window)

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", key,
				"endpoint", r.URL.Path,
				"retry_after", retryAfter,
			)
			WriteError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again later.")
		})
	}
}

// RateLimitByIP limits by client IP.
func RateLimitByIP(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, IPKeyExtractor)
}

// RateLimitByUser limits by signed-in user and IP, so one account cannot
// drain another's budget from a shared address.
func RateLimitByUser(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, CompositeKeyExtractor(":",
		UserIDKeyExtractor,
		IPKeyExtractor,
	))
}

// RateLimitByIPAndJSONField limits by IP plus a JSON body field, e.g. the
// email on sign-in.
func RateLimitByIPAndJSONField(config RateLimitConfig, fieldName string) Middleware {
	return RateLimitMiddleware(config, CompositeKeyExtractor(":",
		IPKeyExtractor,
		JSONFieldKeyExtractor(fieldName),
	))
}

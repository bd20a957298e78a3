package http

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkrupp/shop/internal/infra/logging"
)

const limiterIdleTimeout = 10 * time.Minute

// RateLimitConfig holds the per-client token bucket parameters.
type RateLimitConfig struct {
	// Rate is the sustained number of requests per second per client
	Rate float64 `env:"RATE" default:"1"`
	// Burst is the number of requests a client may issue at once
	Burst int `env:"BURST" default:"5"`
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client address.
type RateLimiter struct {
	cfg       RateLimitConfig
	log       logging.Logger
	m         sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

// NewRateLimiter creates a RateLimiter with the given configuration.
func NewRateLimiter(cfg RateLimitConfig, log logging.Logger) *RateLimiter {
	return &RateLimiter{
		cfg:       cfg,
		log:       log,
		clients:   make(map[string]*clientLimiter),
		lastSweep: time.Now(),
	}
}

// Allow reports whether the client identified by key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.m.Lock()
	defer rl.m.Unlock()

	now := time.Now()

	if now.Sub(rl.lastSweep) > time.Minute {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) > limiterIdleTimeout {
				delete(rl.clients, k)
			}
		}

		rl.lastSweep = now
	}

	client, ok := rl.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rl.cfg.Rate), rl.cfg.Burst)}
		rl.clients[key] = client
	}

	client.lastSeen = now

	return client.limiter.AllowN(now, 1)
}

// Limit returns next behind the limiter. Rejected requests get 429 with a Retry-After header.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		if !rl.Allow(key) {
			rl.log.WarnContext(r.Context(), "rate limit exceeded", logging.Group("client", "key", key))

			retryAfter := 1
			if rl.cfg.Rate > 0 && rl.cfg.Rate < 1 {
				retryAfter = int(1/rl.cfg.Rate + 0.5)
			}

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			WriteMessage(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))

			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

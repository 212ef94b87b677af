package middleware

import (
	"crypto/sha1"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-seat-reservation/internal/config"
)

// NewResponseCache caches successful GET responses in Redis for the
// configured TTL. It is applied only to the anonymous event browse
// endpoints, where a short-lived stale remaining-seat count is
// acceptable; authenticated views bypass it entirely because their
// snapshots are personalized. Bodies are stored as rendered, so a hit
// is byte-identical to a miss.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg.Prefix, c)

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}

			rec := &recorder{}
			c.Response().Header().Set("X-Cache", "MISS")
			c.Response().After(func() {
				if rec.status == http.StatusOK && len(rec.body) > 0 {
					_ = rdb.SetEx(ctx, key, rec.body, ttl).Err()
				}
			})
			c.Response().Writer = rec.wrap(c.Response().Writer)
			return next(c)
		}
	}
}

func cacheKey(prefix string, c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte(strings.Join([]string{c.Path(), r.URL.RawQuery}, "?")))
	return fmt.Sprintf("%s:%x", prefix, sum)
}

// recorder tees the response body so a 200 can be stored after it has
// been sent to the client.
type recorder struct {
	inner  http.ResponseWriter
	status int
	body   []byte
}

func (r *recorder) wrap(w http.ResponseWriter) http.ResponseWriter {
	r.inner = w
	r.status = http.StatusOK
	return r
}

func (r *recorder) Header() http.Header { return r.inner.Header() }

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.inner.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == http.StatusOK {
		r.body = append(r.body, b...)
	}
	return r.inner.Write(b)
}

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mauth/internal/pkg/response"
)

const defaultRateLimitKeys = 10000

// KeyFunc names the caller a rate limit applies to.
type KeyFunc func(c *gin.Context) string

// rateLimiter allows one successful request per window for each route/caller key.
// The slot is reserved while the handler runs and released unless it answers 200,
// so a rejected request does not use up the window. Keys expire with the window,
// the LRU bounds memory.
type rateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	key    KeyFunc
	seen   *expirable.LRU[string, struct{}]
}

// RateLimit keys by client ip and, behind SessionAuth, the account id.
func RateLimit(window time.Duration, size int) gin.HandlerFunc {
	return newRateLimiter(window, size, ClientKey).handle
}

// RateLimitBy keys with the given function.
func RateLimitBy(window time.Duration, size int, key KeyFunc) gin.HandlerFunc {
	return newRateLimiter(window, size, key).handle
}

func newRateLimiter(window time.Duration, size int, key KeyFunc) *rateLimiter {
	if size <= 0 {
		size = defaultRateLimitKeys
	}
	if key == nil {
		key = ClientKey
	}
	l := &rateLimiter{window: window, key: key}
	if window > 0 {
		l.seen = expirable.NewLRU[string, struct{}](size, nil, window)
	}
	return l
}

func ClientKey(c *gin.Context) string {
	uid := "0"
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			uid = id
		}
	}
	return c.ClientIP() + "|" + uid
}

// BodyEmailKey keys by the normalised "email" field of a JSON body, leaving the
// body readable for the handler. Requests without one fall back to ClientKey.
func BodyEmailKey(c *gin.Context) string {
	if c.Request.Body == nil {
		return ClientKey(c)
	}
	raw, err := io.ReadAll(c.Request.Body)
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ClientKey(c)
	}
	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ClientKey(c)
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return ClientKey(c)
	}
	return "email:" + email
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.window <= 0 {
		c.Next()
		return
	}
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	caller := l.key(c)
	key := path + "|" + caller

	l.mu.Lock()
	if _, hit := l.seen.Get(key); hit {
		l.mu.Unlock()
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("caller", caller),
			zap.String("path", path),
		)
		response.Error(c, http.StatusTooManyRequests, "Too many requests, try again later")
		c.Abort()
		return
	}
	l.seen.Add(key, struct{}{})
	l.mu.Unlock()

	c.Next()
	if c.Writer.Status() != http.StatusOK {
		l.mu.Lock()
		l.seen.Remove(key)
		l.mu.Unlock()
	}
}

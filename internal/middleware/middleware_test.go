package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mauth/internal/pkg/jwt"
	"github.com/xxxsen/mauth/internal/session"
)

func newSessionEngine(guard *session.Guard) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID(), CORS([]string{"http://localhost:5173/"}))
	engine.POST("/guarded", SessionAuth(guard), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserIDKey)})
	})
	return engine
}

func TestSessionAuth(t *testing.T) {
	now := time.Now()
	engine := newSessionEngine(session.NewGuard([]byte("secret"), func() time.Time { return now }))

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"success":false,"message":"Not Authorized. Login Again"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "garbage"})
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"success":false,"message":"Invalid token. Login Again"}`, rec.Body.String())

	tok, err := jwt.GenerateToken("acc-1", []byte("secret"), now, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tok})
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"user_id":"acc-1"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestCORS(t *testing.T) {
	engine := newSessionEngine(session.NewGuard([]byte("secret"), nil))

	req := httptest.NewRequest(http.MethodOptions, "/guarded", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/guarded", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWithoutAllowlist(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORS(nil))
	engine.POST("/open", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, method := range []string{http.MethodOptions, http.MethodPost} {
		req := httptest.NewRequest(method, "/open", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	}
}

package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mauth/internal/handler"
	"github.com/xxxsen/mauth/internal/middleware"
	"github.com/xxxsen/mauth/internal/repo"
	"github.com/xxxsen/mauth/internal/service"
	"github.com/xxxsen/mauth/internal/session"
)

var jwtSecret = []byte("test-secret")

type memorySender struct {
	mu   sync.Mutex
	sent []string
}

func (s *memorySender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to+"|"+subject)
	return nil
}

type testServer struct {
	router   http.Handler
	accounts *repo.MemoryAccountRepo
	sender   *memorySender
}

func setupRouter(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := repo.NewMemoryAccountRepo()
	sender := &memorySender{}
	authService := service.NewAuthService(accounts, service.NewNotifier(sender, "test"), service.AuthOptions{
		JWTSecret: jwtSecret,
		TokenTTL:  time.Hour,
	})
	cookies := session.CookieOptions{MaxAge: 7 * 24 * time.Hour}
	deps := handler.RouterDeps{
		Auth:         handler.NewAuthHandler(authService, cookies),
		User:         handler.NewUserHandler(authService),
		Guard:        session.NewGuard(jwtSecret, nil),
		OTPRateLimit: time.Minute,
	}

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.CORS(nil))
	handler.RegisterRoutes(engine.Group("/api"), deps)
	return &testServer{router: engine, accounts: accounts, sender: sender}
}

type apiResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	UserData json.RawMessage `json:"userData"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	var out apiResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return resp, out
}

func sessionCookie(t *testing.T, resp *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie in response", session.CookieName)
	return nil
}

package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/mauth/internal/pkg/errors"
	"github.com/xxxsen/mauth/internal/pkg/jwt"
)

func TestGuardIdentify(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	guard := NewGuard([]byte("secret"), func() time.Time { return now })

	_, err := guard.Identify("")
	require.ErrorIs(t, err, appErr.ErrForbidden)
	require.Equal(t, MsgNotAuthorized, appErr.Message(err))

	tok, err := jwt.GenerateToken("acc-1", []byte("secret"), now, time.Hour)
	require.NoError(t, err)
	id, err := guard.Identify(tok)
	require.NoError(t, err)
	require.Equal(t, "acc-1", id)

	forged, err := jwt.GenerateToken("acc-2", []byte("secret"), now, time.Hour)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")
	forgedParts := strings.Split(forged, ".")
	_, err = guard.Identify(parts[0] + "." + forgedParts[1] + "." + parts[2])
	require.ErrorIs(t, err, appErr.ErrInvalidToken)
	require.Equal(t, MsgInvalidToken, appErr.Message(err))

	later := NewGuard([]byte("secret"), func() time.Time { return now.Add(2 * time.Hour) })
	_, err = later.Identify(tok)
	require.ErrorIs(t, err, appErr.ErrInvalidToken)

	other := NewGuard([]byte("other"), func() time.Time { return now })
	_, err = other.Identify(tok)
	require.ErrorIs(t, err, appErr.ErrInvalidToken)
}

func TestCookies(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	SetCookie(c, CookieOptions{MaxAge: 7 * 24 * time.Hour}, "abc")
	header := rec.Header().Get("Set-Cookie")
	require.True(t, strings.HasPrefix(header, "token=abc"))
	require.Contains(t, header, "Max-Age=604800")
	require.Contains(t, header, "HttpOnly")
	require.Contains(t, header, "SameSite=Strict")
	require.NotContains(t, header, "Secure")

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	ClearCookie(c, CookieOptions{Production: true})
	header = rec.Header().Get("Set-Cookie")
	require.True(t, strings.HasPrefix(header, "token=;"))
	require.Contains(t, header, "Max-Age=0")
	require.Contains(t, header, "Secure")
	require.Contains(t, header, "SameSite=None")
}

func TestCredential(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	require.Equal(t, "", Credential(c))

	c.Request.AddCookie(&http.Cookie{Name: CookieName, Value: "abc"})
	require.Equal(t, "abc", Credential(c))
}

package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const CookieName = "token"

// CookieOptions follow the deployment: production cookies are Secure and
// SameSite=None so a separately hosted client can send them.
type CookieOptions struct {
	Production bool
	MaxAge     time.Duration
}

func (o CookieOptions) sameSite() http.SameSite {
	if o.Production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteStrictMode
}

func SetCookie(c *gin.Context, opts CookieOptions, token string) {
	c.SetSameSite(opts.sameSite())
	c.SetCookie(CookieName, token, int(opts.MaxAge/time.Second), "/", "", opts.Production, true)
}

func ClearCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(opts.sameSite())
	c.SetCookie(CookieName, "", -1, "/", "", opts.Production, true)
}

// Credential reads the session cookie, "" when absent.
func Credential(c *gin.Context) string {
	value, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return value
}

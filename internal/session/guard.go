// Package session issues the session cookie and turns an inbound credential
// back into an account id.
package session

import (
	"strings"
	"time"

	appErr "github.com/xxxsen/mauth/internal/pkg/errors"
	"github.com/xxxsen/mauth/internal/pkg/jwt"
)

const (
	MsgNotAuthorized = "Not Authorized. Login Again"
	MsgInvalidToken  = "Invalid token. Login Again"
)

// Guard is stateless; Identify only depends on the credential, the secret and the clock.
type Guard struct {
	secret []byte
	now    func() time.Time
}

func NewGuard(secret []byte, now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{secret: secret, now: now}
}

// Identify returns the account id carried by credential. A missing credential
// is ErrForbidden, a bad or expired one is ErrInvalidToken.
func (g *Guard) Identify(credential string) (string, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", appErr.WithMessage(appErr.ErrForbidden, MsgNotAuthorized)
	}
	claims, err := jwt.ParseToken(credential, g.secret, g.now())
	if err != nil {
		return "", appErr.WithMessage(appErr.ErrInvalidToken, MsgInvalidToken)
	}
	return claims.ID, nil
}

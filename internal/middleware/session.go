package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/mauth/internal/pkg/errors"
	"github.com/xxxsen/mauth/internal/pkg/response"
	"github.com/xxxsen/mauth/internal/session"
)

const ContextUserIDKey = "user_id"

// SessionAuth lets the request through only with a valid session cookie and
// stores the account id under ContextUserIDKey.
func SessionAuth(guard *session.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := guard.Identify(session.Credential(c))
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, appErr.ErrForbidden) {
				status = http.StatusForbidden
			}
			logutil.GetLogger(c.Request.Context()).Debug("session rejected",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			response.Error(c, status, appErr.Message(err))
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, accountID)
		c.Next()
	}
}

package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mauth/internal/middleware"
	appErr "github.com/xxxsen/mauth/internal/pkg/errors"
	"github.com/xxxsen/mauth/internal/pkg/response"
)

const (
	msgInvalidRequest = "Invalid request body"
	msgInternal       = "Internal server error"
)

func getUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}

// bindJSON decodes the body into req. An empty body leaves req zero valued so
// the service reports the missing fields.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return false
	}
	return true
}

var statusByKind = []struct {
	kind   error
	status int
}{
	{appErr.ErrInvalid, http.StatusBadRequest},
	{appErr.ErrInvalidOTP, http.StatusBadRequest},
	{appErr.ErrExpired, http.StatusBadRequest},
	{appErr.ErrUnauthorized, http.StatusUnauthorized},
	{appErr.ErrInvalidToken, http.StatusUnauthorized},
	{appErr.ErrForbidden, http.StatusForbidden},
	{appErr.ErrNotFound, http.StatusNotFound},
	{appErr.ErrConflict, http.StatusConflict},
	{appErr.ErrTooMany, http.StatusTooManyRequests},
}

func statusOf(err error) int {
	for _, item := range statusByKind {
		if errors.Is(err, item.kind) {
			return item.status
		}
	}
	return http.StatusInternalServerError
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status := statusOf(err)
	requestID, _ := c.Get(middleware.ContextRequestIDKey)
	fields := []zap.Field{
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Int("status", status),
		zap.Error(err),
	}
	if src, ok := appErr.SourceOf(err); ok {
		fields = append(fields, zap.String("source", string(src)))
	}
	logger := logutil.GetLogger(c.Request.Context())
	if status == http.StatusInternalServerError {
		logger.Error("request failed", fields...)
		response.Error(c, status, msgInternal)
		return
	}
	logger.Info("request rejected", fields...)
	msg := appErr.Message(err)
	if msg == "" {
		msg = http.StatusText(status)
	}
	response.Error(c, status, msg)
}

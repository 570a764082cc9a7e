package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mauth/internal/middleware"
	"github.com/xxxsen/mauth/internal/pkg/response"
	"github.com/xxxsen/mauth/internal/session"
)

type RouterDeps struct {
	Auth         *AuthHandler
	User         *UserHandler
	Guard        *session.Guard
	OTPRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", func(c *gin.Context) {
		response.Success(c, "API is running!")
	})

	requireSession := middleware.SessionAuth(deps.Guard)
	verifyLimit := middleware.RateLimit(deps.OTPRateLimit, 0)
	resetLimit := middleware.RateLimitBy(deps.OTPRateLimit, 0, middleware.BodyEmailKey)

	auth := api.Group("/auth")
	auth.POST("/register", deps.Auth.Register)
	auth.POST("/login", deps.Auth.Login)
	auth.POST("/logout", deps.Auth.Logout)
	auth.POST("/send-verify-otp", requireSession, verifyLimit, deps.Auth.SendVerifyOTP)
	auth.POST("/verify-account", requireSession, deps.Auth.VerifyAccount)
	auth.POST("/is-auth", requireSession, deps.Auth.IsAuth)
	auth.POST("/send-reset-otp", resetLimit, deps.Auth.SendResetOTP)
	auth.POST("/reset", deps.Auth.ResetPassword)

	user := api.Group("/user")
	user.Use(requireSession)
	user.GET("/data", deps.User.Data)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mauth/internal/pkg/response"
	"github.com/xxxsen/mauth/internal/service"
	"github.com/xxxsen/mauth/internal/session"
)

const (
	msgRegistered      = "User registered successfully"
	msgLoggedIn        = "Login successful"
	msgLoggedOut       = "Logged out successfully"
	msgVerifyOTPSent   = "Verification OTP sent on Email"
	msgEmailVerified   = "Email verified successfully"
	msgResetOTPSent    = "OTP sent to your email"
	msgPasswordChanged = "Password has been reset successfully"
)

type AuthHandler struct {
	auth    *service.AuthService
	cookies session.CookieOptions
}

func NewAuthHandler(auth *service.AuthService, cookies session.CookieOptions) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyAccountRequest struct {
	OTP string `json:"otp"`
}

type sendResetOTPRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	_, token, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	session.SetCookie(c, h.cookies, token)
	response.Success(c, msgRegistered)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	_, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	session.SetCookie(c, h.cookies, token)
	response.Success(c, msgLoggedIn)
}

// Logout only drops the client's cookie; issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	session.ClearCookie(c, h.cookies)
	response.Success(c, msgLoggedOut)
}

func (h *AuthHandler) SendVerifyOTP(c *gin.Context) {
	if err := h.auth.SendVerifyOTP(c.Request.Context(), getUserID(c)); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, msgVerifyOTPSent)
}

func (h *AuthHandler) VerifyAccount(c *gin.Context) {
	var req verifyAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.VerifyEmail(c.Request.Context(), getUserID(c), req.OTP); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, msgEmailVerified)
}

func (h *AuthHandler) IsAuth(c *gin.Context) {
	response.Success(c, "")
}

func (h *AuthHandler) SendResetOTP(c *gin.Context) {
	var req sendResetOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.SendResetOTP(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, msgResetOTPSent)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, msgPasswordChanged)
}

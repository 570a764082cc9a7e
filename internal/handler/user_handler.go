package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mauth/internal/pkg/response"
	"github.com/xxxsen/mauth/internal/service"
)

type UserHandler struct {
	auth *service.AuthService
}

func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

type userData struct {
	Name              string `json:"name"`
	IsAccountVerified bool   `json:"isAccountVerified"`
}

func (h *UserHandler) Data(c *gin.Context) {
	account, err := h.auth.GetAccount(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWith(c, "userData", userData{Name: account.Name, IsAccountVerified: account.IsVerified})
}

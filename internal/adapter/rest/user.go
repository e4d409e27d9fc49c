package rest

import (
	"github.com/gin-gonic/gin"

	"clinic-api/internal/model"
	"clinic-api/internal/service"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Nickname string `json:"nickname" binding:"max=50"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginData struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *Handlers) register(c *gin.Context) (any, error) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Nickname: req.Nickname,
		Email:    req.Email,
	})
}

func (h *Handlers) login(c *gin.Context) (any, error) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	tok, user, err := h.users.Login(c.Request.Context(), service.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}
	return loginData{Token: tok, User: user}, nil
}

func (h *Handlers) me(c *gin.Context) (any, error) {
	return h.users.Me(c.Request.Context(), AuthUserID(c))
}

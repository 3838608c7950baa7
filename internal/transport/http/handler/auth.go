package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/app"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
	logger      *zap.Logger
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func NewAuthHandler(authService *app.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), app.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.logger, err, "signup failed")
		return
	}

	response.Created(c, authResponse{Token: result.Token, User: toUserView(result.User)})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.logger, err, "login failed")
		return
	}

	response.OK(c, authResponse{Token: result.Token, User: toUserView(result.User)})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-account-service/pkg/apperror"
	"github.com/oksasatya/go-account-service/pkg/authctx"
	"github.com/oksasatya/go-account-service/pkg/response"
	"github.com/oksasatya/go-account-service/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Verbose bool // include internal error causes in responses (development only)
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, verbose bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Verbose: verbose}
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

func tokenMeta(res *application.AuthResult) gin.H {
	return gin.H{"expires_at": res.ExpiresAt}
}

// Register POST /api/auth/register {name, email, password}
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.Validation("invalid payload", validation.ToDetails(err)), h.Verbose)
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Fail(c, err, h.Verbose)
		return
	}
	response.JSON(c, http.StatusCreated, res, "user registered", tokenMeta(res))
}

// Login POST /api/auth/login {email, password}
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.Validation("invalid payload", validation.ToDetails(err)), h.Verbose)
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), application.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        middleware.ClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		response.Fail(c, err, h.Verbose)
		return
	}
	response.JSON(c, http.StatusOK, res, "login successful", tokenMeta(res))
}

// Me GET /api/auth/me (auth required)
func (h *AuthHandler) Me(c *gin.Context) {
	uid := authctx.UserID(c.Request.Context())
	if uid == "" {
		response.Fail(c, apperror.Unauthorized("unauthorized"), h.Verbose)
		return
	}
	u, err := h.Svc.GetCurrentUser(c.Request.Context(), uid)
	if err != nil {
		response.Fail(c, err, h.Verbose)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"user": u}, "current user", nil)
}

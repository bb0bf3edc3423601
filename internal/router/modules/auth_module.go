package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-account-service/internal/interface/http"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
)

// AuthModule wires the account endpoints.
// Public: POST /api/auth/register, POST /api/auth/login
// Protected: GET /api/auth/me
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Verifier middleware.TokenVerifier
	Policy   middleware.Policy
}

func NewAuthModule(h *handlers.AuthHandler, verifier middleware.TokenVerifier, policy middleware.Policy) *AuthModule {
	return &AuthModule{Handler: h, Verifier: verifier, Policy: policy}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/register", m.Handler.Register)
	auth.POST("/login", m.Handler.Login)

	protected := auth.Group("")
	protected.Use(middleware.Auth(m.Verifier, m.Handler.Verbose), middleware.RequireRoles(m.Policy))
	{
		protected.GET("/me", m.Handler.Me)
	}
}

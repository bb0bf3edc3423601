package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/pkg/apperror"
	"github.com/oksasatya/go-account-service/pkg/authctx"
	"github.com/oksasatya/go-account-service/pkg/helpers"
	"github.com/oksasatya/go-account-service/pkg/response"
)

// Single message for every rejected token so callers cannot tell expired from forged.
const msgUnauthorized = "missing or invalid bearer token"

// TokenVerifier checks a bearer token; *helpers.JWTManager implements it.
type TokenVerifier interface {
	Verify(token string) (*helpers.Claims, error)
}

// Auth requires "Authorization: Bearer <token>" and stores the principal on the
// request context. Handlers read it back with authctx.PrincipalFrom.
func Auth(verifier TokenVerifier, verbose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Fail(c, apperror.Unauthorized(msgUnauthorized), verbose)
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			response.Fail(c, apperror.Unauthorized(msgUnauthorized), verbose)
			return
		}

		p := authctx.Principal{UserID: claims.UserID}
		c.Request = c.Request.WithContext(authctx.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

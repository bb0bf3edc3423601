package middleware

import (
	"context"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/pkg/apperror"
	"github.com/oksasatya/go-account-service/pkg/authctx"
	"github.com/oksasatya/go-account-service/pkg/response"
)

// Policy decides whether an authenticated principal may proceed.
type Policy interface {
	Allow(ctx context.Context, p authctx.Principal, required []entity.Role) bool
}

// NoEnforcement lets every authenticated principal through regardless of
// the roles a route asks for. It is the default: tokens carry no roles yet.
type NoEnforcement struct{}

func (NoEnforcement) Allow(context.Context, authctx.Principal, []entity.Role) bool { return true }

// RoleBased admits a principal holding at least one of the required roles.
// An empty requirement admits everyone.
type RoleBased struct{}

func (RoleBased) Allow(_ context.Context, p authctx.Principal, required []entity.Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// PolicyFor maps the AUTH_POLICY setting to a Policy.
func PolicyFor(name string) Policy {
	if name == "roles" {
		return RoleBased{}
	}
	return NoEnforcement{}
}

// RequireRoles must run after Auth.
func RequireRoles(policy Policy, roles ...entity.Role) gin.HandlerFunc {
	if policy == nil {
		policy = NoEnforcement{}
	}
	return func(c *gin.Context) {
		p, ok := authctx.PrincipalFrom(c.Request.Context())
		if !ok {
			response.Fail(c, apperror.Unauthorized(msgUnauthorized), false)
			return
		}
		if !policy.Allow(c.Request.Context(), p, roles) {
			response.Fail(c, apperror.Forbidden("insufficient permissions"), false)
			return
		}
		c.Next()
	}
}

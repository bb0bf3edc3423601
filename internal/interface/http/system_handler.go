package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/pkg/apperror"
	"github.com/oksasatya/go-account-service/pkg/response"
)

// Root GET / liveness probe.
func Root(appName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.JSON[any](c, http.StatusOK, nil, appName+" is running", nil)
	}
}

// NoRoute answers every unmatched path.
func NoRoute(c *gin.Context) {
	response.Fail(c, apperror.NotFound("route not found"), false)
}

package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/pkg/apperror"
	"github.com/oksasatya/go-account-service/pkg/response"
)

// Recovery turns a panic into an internal error envelope.
func Recovery(logger *logrus.Logger, verbose bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err := fmt.Errorf("panic: %v", recovered)
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"path":       c.Request.URL.Path,
				"request_id": c.GetString("request_id"),
			}).Error("recovered from panic")
		}
		response.Fail(c, apperror.Internal("internal server error", err), verbose)
	})
}

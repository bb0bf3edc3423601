package container

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/config"
	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-account-service/internal/metrics"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

// Container holds the constructed components the router wires into modules.
// It is built once in main and passed down explicitly.
type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	JWT     *helpers.JWTManager
	Auth    *application.AuthService
	Policy  middleware.Policy
	Metrics *metrics.Collector // nil when METRICS_ENABLED=false
}

// Recorder returns the metrics sink, a no-op when metrics are off.
func (c *Container) Recorder() metrics.Recorder {
	if c.Metrics == nil {
		return metrics.Nop{}
	}
	return c.Metrics
}

// Verbose reports whether internal error causes may be shown to clients.
func (c *Container) Verbose() bool {
	return c.Config != nil && c.Config.IsDevelopment()
}

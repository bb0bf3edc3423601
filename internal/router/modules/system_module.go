package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-account-service/internal/interface/http"
)

// SystemModule serves the liveness route, the optional metrics endpoint and
// the catch-all 404.
type SystemModule struct {
	AppName string
	Metrics http.Handler // nil disables /metrics
}

func NewSystemModule(appName string, metrics http.Handler) *SystemModule {
	return &SystemModule{AppName: appName, Metrics: metrics}
}

func (m *SystemModule) RegisterRoot(engine *gin.Engine) {
	engine.GET("/", handlers.Root(m.AppName))
	if m.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(m.Metrics))
	}
	engine.NoRoute(handlers.NoRoute)
}

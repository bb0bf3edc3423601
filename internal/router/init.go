package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/internal/container"
	handlers "github.com/oksasatya/go-account-service/internal/interface/http"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-account-service/internal/router/modules"
)

// InitModules builds the feature modules from the container and registers them with the registry
func InitModules(r *Registry, c *container.Container) {
	authHandler := handlers.NewAuthHandler(c.Auth, c.Logger, c.Verbose())
	r.Add(modules.NewAuthModule(authHandler, c.JWT, c.Policy))

	var metricsHandler http.Handler
	if c.Metrics != nil {
		metricsHandler = c.Metrics.Handler()
	}
	r.AddRoot(modules.NewSystemModule(c.Config.AppName, metricsHandler))
}

// NewEngine returns a gin engine with global middleware and every module registered.
func NewEngine(c *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(c.Logger, c.Verbose()))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(middleware.RequestLogger(c.Logger, c.Recorder(), c.Config.HTTPLogEnabled))
	r.Use(cors.New(corsConfig(c.Config.CORSOrigins())))

	reg := NewRegistry(r)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// Bearer tokens travel in a header, so credentials (cookies) are never allowed.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

package router

import "github.com/gin-gonic/gin"

type Registry struct {
	Engine  *gin.Engine
	API     *gin.RouterGroup
	modules []Module
	roots   []RootModule
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) AddRoot(mod RootModule) {
	r.roots = append(r.roots, mod)
}

func (r *Registry) RegisterAll() {
	for _, m := range r.modules {
		m.Register(r.API)
	}
	for _, m := range r.roots {
		m.RegisterRoot(r.Engine)
	}
}

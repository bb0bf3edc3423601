package router

import "github.com/gin-gonic/gin"

// Module describes a feature module that can register its routes on a RouterGroup
type Module interface {
	Register(rg *gin.RouterGroup)
}

// RootModule registers routes outside the /api group.
type RootModule interface {
	RegisterRoot(engine *gin.Engine)
}

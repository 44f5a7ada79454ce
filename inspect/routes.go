package inspect

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/injectkit/di"
	"github.com/kbukum/injectkit/observability"
)

// Register mounts the inspection routes on r:
//
//	GET /registries       snapshots of inj and its ancestors
//	GET /registries/:id   one registry of the chain
//	GET /levels           construction levels
//	GET /health           health of inj plus extra checkers
//	GET /info             build information
func Register(r gin.IRouter, serviceName string, inj *di.Injector, checkers ...observability.HealthChecker) {
	all := append([]observability.HealthChecker{inj}, checkers...)

	r.GET("/registries", Registries(inj))
	r.GET("/registries/:id", Registry(inj))
	r.GET("/levels", Levels(inj))
	r.GET("/health", Health(serviceName, all...))
	r.GET("/info", Info(serviceName))
}

// NewRouter returns a gin engine with recovery and the inspection routes
// mounted under /debug/di.
func NewRouter(serviceName string, inj *di.Injector, checkers ...observability.HealthChecker) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	Register(engine.Group("/debug/di"), serviceName, inj, checkers...)
	return engine
}

package inspect

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/injectkit/di"
	"github.com/kbukum/injectkit/errors"
	"github.com/kbukum/injectkit/observability"
	"github.com/kbukum/injectkit/version"
)

// startTime records when the process started for uptime calculation.
var startTime = time.Now()

// Registries returns a handler listing snapshots of inj and its ancestors,
// root first.
func Registries(inj *di.Injector) gin.HandlerFunc {
	return func(c *gin.Context) {
		RespondOK(c, inj.Tree())
	}
}

// Registry returns a handler for the snapshot of one registry in the chain
// of inj, selected by the :id path parameter.
func Registry(inj *di.Injector) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		for r := inj; r != nil; r = r.Parent() {
			if r.ID() == id {
				RespondOK(c, r.Snapshot())
				return
			}
		}
		c.JSON(http.StatusNotFound, errors.New(errors.ErrCodeMappingNotFound, "no registry with id '"+id+"'").
			WithDetail("id", id).
			ToResponse())
	}
}

// Levels returns a handler reporting the construction levels of inj.
// Missing mappings and cycles are returned as errors.
func Levels(inj *di.Injector) gin.HandlerFunc {
	return func(c *gin.Context) {
		levels, err := inj.ConstructionLevels()
		if err != nil {
			RespondWithError(c, err)
			return
		}
		RespondOK(c, gin.H{"levels": levels, "count": len(levels)})
	}
}

// Health returns a handler aggregating the given checkers. A down component
// answers 503.
func Health(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.CheckAll(c.Request.Context(), serviceName, version.Get().Short(), checkers...)

		httpStatus := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, sh)
	}
}

// Info returns a handler that reports service version and build information.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.Get()
		c.JSON(http.StatusOK, gin.H{
			"service":    serviceName,
			"version":    v.Version,
			"module":     v.Module,
			"git_commit": v.GitCommit,
			"git_branch": v.GitBranch,
			"build_time": v.BuildTime,
			"go_version": v.GoVersion,
			"is_release": v.IsRelease,
			"is_dirty":   v.IsDirty,
			"uptime":     time.Since(startTime).String(),
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}

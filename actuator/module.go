package actuator

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skekre98/bundlecfg/config"
	"github.com/skekre98/bundlecfg/core"
	"github.com/skekre98/bundlecfg/web"
)

const Name = "actuator"

// Check is a named health check. A non-nil error marks the service DOWN.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

type module struct {
	checks []Check
}

func Module(checks ...Check) core.Module { return &module{checks: checks} }

func (m *module) Name() string        { return Name }
func (m *module) DependsOn() []string { return []string{web.Name} }

func (m *module) Configure(c core.Container) error {
	engine := web.Engine(c)
	cfg := core.Get[config.Settings](c)

	group := engine.Group(cfg.Actuator.BasePath)

	group.GET("/health", m.health)

	group.GET("/info", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"app": gin.H{
				"name":    cfg.App.Name,
				"version": cfg.App.Version,
			},
			"build": gin.H{
				"profile":    cfg.Build.Profile,
				"baseConfig": cfg.Build.BaseConfig,
				"overlays":   cfg.Build.Overlays,
			},
			"runtime": gin.H{
				"go":           runtime.Version(),
				"numGoroutine": runtime.NumGoroutine(),
				"time":         time.Now().UTC().Format(time.RFC3339),
				"pid":          os.Getpid(),
			},
		})
	})

	if cfg.Observability.Metrics.Enabled {
		group.GET(cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	return nil
}

func (m *module) health(ctx *gin.Context) {
	status := "UP"
	code := http.StatusOK
	results := make([]gin.H, 0, len(m.checks))

	for _, chk := range m.checks {
		res := gin.H{"name": chk.Name, "status": "UP"}
		if err := chk.Run(ctx.Request.Context()); err != nil {
			res["status"] = "DOWN"
			res["error"] = err.Error()
			status = "DOWN"
			code = http.StatusServiceUnavailable
		}
		results = append(results, res)
	}

	ctx.JSON(code, gin.H{
		"status": status,
		"checks": results,
	})
}

func (m *module) Start(_ context.Context, _ core.Container) error { return nil }
func (m *module) Stop(_ context.Context, _ core.Container) error  { return nil }

package app

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vmkteam/appkit"
)

// registerMetrics adds HTTP metrics middleware and the /metrics endpoint.
// Bot and workflow counters are registered via promauto in the telegram and
// points packages.
func (a *App) registerMetrics() {
	a.echo.Use(appkit.HTTPMetrics(appkit.DefaultServerName))
	a.echo.Any("/metrics", echo.WrapHandler(promhttp.Handler()))
}

package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/meetingbrew/internal/middleware"
	"github.com/keyxmakerx/meetingbrew/internal/plugins/meetings"
	"github.com/keyxmakerx/meetingbrew/internal/templates/layouts"
)

// healthTimeout bounds each dependency check in /healthz.
const healthTimeout = 2 * time.Second

// healthCheck probes one dependency.
type healthCheck struct {
	name string
	ping func(ctx context.Context) error
}

// RegisterRoutes wires the meetings plugin and registers every route.
// This is the single place where routes are aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo

	middleware.LayoutInjector = func(c echo.Context, ctx context.Context) context.Context {
		ctx = layouts.SetCSRFToken(ctx, middleware.GetCSRFToken(c))
		ctx = layouts.SetActivePath(ctx, c.Request().URL.Path)
		return layouts.SetFlashError(ctx, middleware.GetFlashError(c))
	}

	// Fixed first segments go before the plugin's /:id catch-all.
	e.GET("/healthz", healthHandler([]healthCheck{
		{name: "mariadb", ping: a.DB.PingContext},
		{name: "redis", ping: func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }},
	}))

	meetingSvc := meetings.NewMeetingService(meetings.NewMeetingRepository(a.DB), a.Config.Meetings)
	draftSvc := meetings.NewDraftService(
		meetings.NewDraftStore(a.Redis, a.Config.Drafts.TTL),
		meetingSvc,
		a.Config.Meetings,
	)
	h := meetings.NewHandler(meetingSvc, draftSvc, a.Config.Meetings, a.Config.BaseURL)
	meetings.RegisterRoutes(e, h, a.createLimiter.Middleware())
}

// healthHandler reports 200 when every check passes and 503 otherwise, with
// the status of each dependency.
func healthHandler(checks []healthCheck) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := http.StatusOK
		result := make(map[string]string, len(checks)+1)
		for _, check := range checks {
			ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
			err := check.ping(ctx)
			cancel()
			if err != nil {
				slog.Warn("health check failed", slog.String("dependency", check.name), slog.Any("error", err))
				result[check.name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			result[check.name] = "ok"
		}
		result["status"] = "ok"
		if status != http.StatusOK {
			result["status"] = "degraded"
		}
		return c.JSON(status, result)
	}
}

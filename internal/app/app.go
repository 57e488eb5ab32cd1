// Package app is the application bootstrap and dependency injection root.
// It creates and holds all shared infrastructure (DB pool, Redis client,
// Echo instance) and wires the meetings plugin onto it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/meetingbrew/internal/apperror"
	"github.com/keyxmakerx/meetingbrew/internal/config"
	"github.com/keyxmakerx/meetingbrew/internal/middleware"
	"github.com/keyxmakerx/meetingbrew/internal/templates/pages"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// DB is the MariaDB connection pool holding meetings.
	DB *sql.DB

	// Redis holds creation drafts.
	Redis *redis.Client

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	// createLimiter throttles meeting creation per client IP.
	createLimiter *middleware.RateLimiter
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) *App {
	e := echo.New()

	// We log our own startup line.
	e.HideBanner = true
	e.HidePort = true

	middleware.TrustedProxies(e, cfg.HTTP.TrustedProxies)

	app := &App{
		Config:        cfg,
		DB:            db,
		Redis:         rdb,
		Echo:          e,
		createLimiter: middleware.NewRateLimiter(cfg.HTTP.CreateRateLimit, cfg.HTTP.CreateRateWindow),
	}

	app.setupMiddleware()
	e.HTTPErrorHandler = app.errorHandler
	e.Static("/static", "static")

	return app
}

// setupMiddleware registers global middleware on the Echo instance.
// The logger wraps recovery so panics are logged with their final status.
func (a *App) setupMiddleware() {
	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(middleware.Recovery())
	a.Echo.Use(middleware.SecurityHeaders(!a.Config.IsDevelopment()))
	a.Echo.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: a.Config.HTTP.CORSOrigins,
	}))
	a.Echo.Use(middleware.CSRF())
}

// errorHandler maps domain errors (AppError) and Echo errors to responses:
// JSON for the API and for clients that ask for it, an error page otherwise.
// Fragment requests get the bare message so the script can show it inline.
func (a *App) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := defaultErrorMessage(code)

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		code = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = defaultErrorMessage(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	var writeErr error
	switch {
	case middleware.WantsJSON(c):
		writeErr = c.JSON(code, map[string]string{
			"error":   http.StatusText(code),
			"message": message,
		})
	case middleware.IsFragment(c):
		writeErr = c.String(code, message)
	default:
		writeErr = middleware.Render(c, code, pages.ErrorPage(code, message))
	}
	if writeErr != nil {
		slog.Warn("writing error response failed", slog.Any("error", writeErr))
	}
}

// defaultErrorMessage returns a user-friendly message for common HTTP status
// codes when the error carried none.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusForbidden:
		return "Your form session expired. Please reload the page and try again."
	case http.StatusNotFound:
		return "The page you're looking for doesn't exist."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return "Something went wrong on our end. Please try again."
	}
}

// Start sweeps the rate limiter in the background and begins listening for
// HTTP requests on the configured port. The sweeper stops with ctx.
func (a *App) Start(ctx context.Context) error {
	go a.createLimiter.Run(ctx)

	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting MeetingBrew server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}

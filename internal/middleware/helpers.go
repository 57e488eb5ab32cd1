package middleware

import (
	"context"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// LayoutInjector copies layout data (CSRF token, flash error) from the Echo
// context into the Go context so components can read it. Registered once at
// startup in app/routes.go so this package never imports a plugin.
var LayoutInjector func(echo.Context, context.Context) context.Context

// IsFragment reports whether the browser asked for a partial update. The
// datepicker script sets X-Requested-With on its fetch calls and swaps the
// returned picker markup in place; plain form posts get full pages.
func IsFragment(c echo.Context) bool {
	return c.Request().Header.Get("X-Requested-With") == "fetch"
}

// WantsJSON reports whether the client prefers a JSON response. API routes
// always do; browser routes do when the Accept header asks for it.
func WantsJSON(c echo.Context) bool {
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// Render writes a templ component to the response with the given status code,
// running the LayoutInjector first.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	ctx := c.Request().Context()
	if LayoutInjector != nil {
		ctx = LayoutInjector(c, ctx)
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(statusCode)
	return component.Render(ctx, c.Response().Writer)
}

// flashErrorKey is the Echo context key holding an error banner.
const flashErrorKey = "flash_error"

// SetFlashError shows msg as an error banner on the page rendered for this
// request.
func SetFlashError(c echo.Context, msg string) {
	c.Set(flashErrorKey, msg)
}

// GetFlashError returns the error banner set for this request, or "".
func GetFlashError(c echo.Context) string {
	msg, _ := c.Get(flashErrorKey).(string)
	return msg
}

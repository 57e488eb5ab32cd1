// Package pages holds the standalone pages that do not belong to a plugin.
package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/meetingbrew/internal/templates/layouts"
)

// ErrorPage renders a full error page for browser requests.
func ErrorPage(code int, message string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := layouts.NewWriter(w)
		hw.Raw(`<section class="error-page"><h1>`)
		hw.Text(strconv.Itoa(code))
		hw.Raw(`</h1><p>`)
		hw.Text(message)
		hw.Raw(`</p><a class="button" href="/">Back to start</a></section>`)
		return hw.Err()
	})
	return layouts.Base("Error", body)
}

// About describes the site. It lives at /about, which is why "about" can
// never be used as a custom meeting ID.
func About() templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := layouts.NewWriter(w)
		hw.Raw(`<section class="about"><h1>About MeetingBrew</h1>`)
		hw.Raw(`<p>MeetingBrew finds a time that works for everyone. Pick the dates or weekdays `)
		hw.Raw(`you are considering and a time range, share the link, and let people mark when they are free.</p>`)
		hw.Raw(`<p>Click a day to toggle it, or click and drag across the calendar to select `)
		hw.Raw(`or clear a whole block of days at once.</p></section>`)
		return hw.Err()
	})
	return layouts.Base("About", body)
}

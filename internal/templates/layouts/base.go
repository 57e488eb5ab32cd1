package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Writer accumulates HTML output and remembers the first write error, so
// components can emit a page without checking every call.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup as-is.
func (hw *Writer) Raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// Text writes user-visible text, HTML-escaped.
func (hw *Writer) Text(s string) {
	hw.Raw(templ.EscapeString(s))
}

// Component renders a nested component into the same stream.
func (hw *Writer) Component(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// Err returns the first write error.
func (hw *Writer) Err() error {
	return hw.err
}

// Base wraps body in the site chrome: head, header with the "New Event"
// link, and the flash error banner if one is set on the context.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		hw.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.Raw(`<meta name="csrf-token" content="`)
		hw.Text(GetCSRFToken(ctx))
		hw.Raw(`"><title>`)
		if title != "" {
			hw.Text(title)
			hw.Raw(` | `)
		}
		hw.Raw(`MeetingBrew</title>`)
		hw.Raw(`<link rel="stylesheet" href="/static/css/app.css">`)
		hw.Raw(`<script src="/static/js/datepicker.js" defer></script>`)
		hw.Raw(`</head><body><header class="header"><a class="logo" href="/">MeetingBrew</a>`)
		hw.Raw(`<span class="spacer"></span><a class="nav-link`)
		if GetActivePath(ctx) == "/about" {
			hw.Raw(` active`)
		}
		hw.Raw(`" href="/about">About</a><a class="button" href="/">New Event</a></header>`)
		if msg := GetFlashError(ctx); msg != "" {
			hw.Raw(`<div class="flash flash-error" role="alert">`)
			hw.Text(msg)
			hw.Raw(`</div>`)
		}
		hw.Raw(`<main class="content">`)
		hw.Component(ctx, body)
		hw.Raw(`</main></body></html>`)
		return hw.Err()
	})
}

package meetings

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/meetingbrew/internal/datepicker"
	"github.com/keyxmakerx/meetingbrew/internal/templates/layouts"
)

// CreateView is everything the creation page needs.
type CreateView struct {
	Draft     *Draft
	Picker    *datepicker.Picker
	Timezones []string
	TitleMax  int
}

func draftPath(d *Draft, suffix string) string {
	return "/drafts/" + d.ID + suffix
}

func csrfField(ctx context.Context, hw *layouts.Writer) {
	hw.Raw(`<input type="hidden" name="csrf_token" value="`)
	hw.Text(layouts.GetCSRFToken(ctx))
	hw.Raw(`">`)
}

func hidden(show bool) string {
	if show {
		return ""
	}
	return " hidden"
}

// CreatePage renders the full meeting creation form. The form fields sit
// outside the <form> element and join it through the form attribute, so the
// picker's own forms are never nested.
func CreatePage(v CreateView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		d := v.Draft
		hw := layouts.NewWriter(w)

		hw.Raw(`<div class="create" data-draft="`)
		hw.Text(d.ID)
		hw.Raw(`">`)

		hw.Raw(`<input class="title-input" type="text" name="title" form="create-form" placeholder="Event Title" autofocus maxlength="`)
		hw.Text(strconv.Itoa(v.TitleMax))
		hw.Raw(`" value="`)
		hw.Text(d.Title)
		hw.Raw(`">`)

		hw.Raw(`<div class="dates-times"><div class="dates"><h2>Which dates?</h2>`)
		hw.Raw(`<label>Date Type <select name="type" form="create-form" data-type-select>`)
		for _, opt := range []struct{ value, label string }{
			{TypeDates, "Specific Dates"},
			{TypeDays, "Days of the Week"},
		} {
			hw.Raw(`<option value="` + opt.value + `"`)
			if d.Type == opt.value {
				hw.Raw(` selected`)
			}
			hw.Raw(`>` + opt.label + `</option>`)
		}
		hw.Raw(`</select></label>`)

		hw.Raw(`<div data-type-panel="` + TypeDates + `"` + hidden(d.Type != TypeDays) + `>`)
		hw.Component(ctx, PickerFragment(d, v.Picker))
		hw.Raw(`</div><div data-type-panel="` + TypeDays + `"` + hidden(d.Type == TypeDays) + `>`)
		hw.Component(ctx, DaysFragment(d))
		hw.Raw(`</div></div>`)

		hw.Raw(`<div class="times"><h2>What times?</h2><label>Timezone <select name="timezone" form="create-form">`)
		zones := v.Timezones
		known := false
		for _, tz := range zones {
			known = known || tz == d.Timezone
		}
		if !known && d.Timezone != "" {
			zones = append([]string{d.Timezone}, zones...)
		}
		for _, tz := range zones {
			hw.Raw(`<option value="`)
			hw.Text(tz)
			hw.Raw(`"`)
			if tz == d.Timezone {
				hw.Raw(` selected`)
			}
			hw.Raw(`>`)
			hw.Text(tz)
			hw.Raw(`</option>`)
		}
		hw.Raw(`</select></label>`)
		hourSelect(hw, "earliest", "Earliest", d.Earliest)
		hourSelect(hw, "latest", "Latest", d.Latest)
		hw.Raw(`</div></div>`)

		hw.Raw(`<label class="custom-id">Custom ID (optional) <input type="text" name="custom_id" form="create-form" maxlength="100" placeholder="my-meeting" value="`)
		hw.Text(d.CustomID)
		hw.Raw(`"></label>`)

		hw.Raw(`<form id="create-form" method="post" action="`)
		hw.Text(draftPath(d, "/meeting"))
		hw.Raw(`">`)
		csrfField(ctx, hw)
		hw.Raw(`<button class="button" type="submit">Create Event</button></form>`)

		hw.Raw(`</div>`)
		return hw.Err()
	})
	return layouts.Base("New Event", body)
}

func hourSelect(hw *layouts.Writer, name, label string, selected int) {
	hw.Raw(`<label>` + label + ` <select name="` + name + `" form="create-form">`)
	for h := 0; h <= 24; h++ {
		hw.Raw(`<option value="` + strconv.Itoa(h) + `"`)
		if h == selected {
			hw.Raw(` selected`)
		}
		hw.Raw(`>` + hourLabel(h) + `</option>`)
	}
	hw.Raw(`</select></label>`)
}

// hourLabel formats an hour of the day as "9 AM", "12 PM", "12 AM".
func hourLabel(h int) string {
	suffix := "AM"
	if h%24 >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d %s", h12, suffix)
}

// PickerFragment renders the month grid. Each cell is a submit button so the
// picker works as plain forms; static/js/datepicker.js upgrades it to drag
// selection and swaps this fragment in place.
func PickerFragment(d *Draft, p *datepicker.Picker) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := layouts.NewWriter(w)
		hw.Raw(`<section class="datepicker" id="datepicker" data-select-url="`)
		hw.Text(draftPath(d, "/picker/select"))
		shownYear, shownMonth := strconv.Itoa(p.Month().Year), strconv.Itoa(int(p.Month().Month))
		hw.Raw(`" data-year="` + shownYear + `" data-month="` + shownMonth + `">`)

		hw.Raw(`<form class="datepicker-nav" method="post" action="`)
		hw.Text(draftPath(d, "/picker/month"))
		hw.Raw(`">`)
		csrfField(ctx, hw)
		hw.Raw(`<button type="submit" name="dir" value="` + DirPrev + `" aria-label="Previous month">&lsaquo;</button><h3>`)
		hw.Text(p.Month().String())
		hw.Raw(`</h3><button type="submit" name="dir" value="` + DirNext + `" aria-label="Next month">&rsaquo;</button></form>`)

		hw.Raw(`<form class="datepicker-grid" method="post" action="`)
		hw.Text(draftPath(d, "/picker/click"))
		hw.Raw(`">`)
		csrfField(ctx, hw)
		hw.Raw(`<input type="hidden" name="year" value="` + shownYear + `">`)
		hw.Raw(`<input type="hidden" name="month" value="` + shownMonth + `">`)
		for _, label := range datepicker.WeekdayLabels {
			hw.Raw(`<span class="weekday">` + label + `</span>`)
		}
		for _, cell := range p.Cells() {
			class := "day"
			if !cell.InMonth {
				class += " outside"
			}
			if cell.Selected {
				class += " selected"
			}
			if cell.Today {
				class += " today"
			}
			hw.Raw(`<button type="submit" name="index" class="` + class + `" value="` + strconv.Itoa(cell.Index) + `" data-index="` + strconv.Itoa(cell.Index) + `" data-key="` + cell.Key + `" aria-pressed="` + strconv.FormatBool(cell.Selected) + `">`)
			hw.Raw(strconv.Itoa(cell.Day.Day))
			hw.Raw(`</button>`)
		}
		hw.Raw(`</form>`)

		hw.Raw(`<p class="datepicker-count">`)
		hw.Text(selectedCount(len(d.Dates), "date"))
		hw.Raw(`</p></section>`)
		return hw.Err()
	})
}

// DaysFragment renders the seven weekday toggles.
func DaysFragment(d *Draft) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		selected := make(map[int]bool, len(d.Days))
		for _, day := range d.Days {
			selected[day] = true
		}

		hw := layouts.NewWriter(w)
		hw.Raw(`<section class="dayspicker" id="dayspicker"><form method="post" action="`)
		hw.Text(draftPath(d, "/days/toggle"))
		hw.Raw(`">`)
		csrfField(ctx, hw)
		for i, label := range datepicker.WeekdayLabels {
			class := "day"
			if selected[i] {
				class += " selected"
			}
			hw.Raw(`<button type="submit" name="day" class="` + class + `" value="` + strconv.Itoa(i) + `" aria-pressed="` + strconv.FormatBool(selected[i]) + `">` + label + `</button>`)
		}
		hw.Raw(`</form><p class="datepicker-count">`)
		hw.Text(selectedCount(len(d.Days), "day"))
		hw.Raw(`</p></section>`)
		return hw.Err()
	})
}

func selectedCount(n int, noun string) string {
	if n == 1 {
		return "1 " + noun + " selected"
	}
	return fmt.Sprintf("%d %ss selected", n, noun)
}

// MeetingView is everything the meeting summary page needs.
type MeetingView struct {
	Meeting  *Meeting
	Upcoming []string
	ShareURL string
}

var weekdayNames = [datepicker.DaysPerWeek]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// MeetingPage renders the summary of a created meeting with its share link.
func MeetingPage(v MeetingView) templ.Component {
	m := v.Meeting
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := layouts.NewWriter(w)
		hw.Raw(`<article class="meeting"><h1>`)
		hw.Text(m.Title)
		hw.Raw(`</h1><p class="share">Share this link: <a href="`)
		hw.Text(v.ShareURL)
		hw.Raw(`">`)
		hw.Text(v.ShareURL)
		hw.Raw(`</a></p>`)

		hw.Raw(`<dl><dt>Time range</dt><dd>`)
		hw.Text(hourLabel(m.Earliest) + " to " + hourLabel(m.Latest) + " (" + m.Timezone + ")")
		hw.Raw(`</dd>`)

		switch m.Type {
		case TypeDays:
			hw.Raw(`<dt>Every week on</dt><dd><ul>`)
			for _, d := range m.Days {
				if d >= 0 && d < len(weekdayNames) {
					hw.Raw(`<li>` + weekdayNames[d] + `</li>`)
				}
			}
			hw.Raw(`</ul></dd>`)
			if len(v.Upcoming) > 0 {
				hw.Raw(`<dt>Next dates</dt><dd><ul>`)
				for _, key := range v.Upcoming {
					hw.Raw(`<li>`)
					hw.Text(key)
					hw.Raw(`</li>`)
				}
				hw.Raw(`</ul></dd>`)
			}
		default:
			hw.Raw(`<dt>Dates</dt><dd><ul>`)
			for _, key := range m.Dates {
				hw.Raw(`<li>`)
				hw.Text(key)
				hw.Raw(`</li>`)
			}
			hw.Raw(`</ul></dd>`)
		}
		hw.Raw(`</dl><a class="button" href="/`)
		hw.Text(m.ID)
		hw.Raw(`/calendar.ics">Add to calendar</a></article>`)
		return hw.Err()
	})
	return layouts.Base(m.Title, body)
}

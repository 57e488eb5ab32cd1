// Package meetings implements meeting creation: the creation form (kept as a
// Redis-backed draft while the user picks dates), validation, MariaDB
// persistence, the meeting summary page, the JSON API and ICS export.
package meetings

import (
	"time"

	"github.com/keyxmakerx/meetingbrew/internal/datepicker"
)

// Meeting types. They match the ENUM on meetings.type.
const (
	TypeDates = "dates"
	TypeDays  = "days"
)

// Meeting is a created event people can mark availability against.
type Meeting struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Timezone string `json:"timezone"`

	// Earliest and Latest bound the time-of-day range in hours (0-24).
	Earliest int `json:"earliest"`
	Latest   int `json:"latest"`

	// Type is TypeDates (specific calendar dates) or TypeDays (recurring
	// weekdays). Only the matching one of Dates/Days is populated.
	Type  string   `json:"type"`
	Dates []string `json:"dates"`
	Days  []int    `json:"days"`

	CreatedAt time.Time `json:"created_at"`
}

// Location returns the meeting's timezone, falling back to UTC for zones the
// host no longer knows.
func (m *Meeting) Location() *time.Location {
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CreateMeetingInput is the validated-on-create request shape shared by the
// HTML form and the JSON API.
type CreateMeetingInput struct {
	Title    string   `json:"title"`
	Timezone string   `json:"timezone"`
	Earliest int      `json:"earliest"`
	Latest   int      `json:"latest"`
	Type     string   `json:"type"`
	Dates    []string `json:"dates"`
	Days     []int    `json:"days"`
	CustomID string   `json:"custom_id"`
}

// Draft is an in-progress creation form. Dates is the datepicker selection,
// in the order the dates were picked; Year/Month is the month the picker is
// showing.
type Draft struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Dates    []string `json:"dates"`
	Days     []int    `json:"days"`
	Timezone string   `json:"timezone"`
	Earliest int      `json:"earliest"`
	Latest   int      `json:"latest"`
	CustomID string   `json:"custom_id"`

	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthRef is the month the draft's picker shows.
func (d *Draft) MonthRef() datepicker.MonthRef {
	return datepicker.MonthRef{Year: d.Year, Month: d.Month}
}

// SetMonthRef records the month the picker moved to.
func (d *Draft) SetMonthRef(ref datepicker.MonthRef) {
	d.Year, d.Month = ref.Year, ref.Month
}

// Input turns the draft into a creation request.
func (d *Draft) Input() CreateMeetingInput {
	return CreateMeetingInput{
		Title:    d.Title,
		Timezone: d.Timezone,
		Earliest: d.Earliest,
		Latest:   d.Latest,
		Type:     d.Type,
		Dates:    d.Dates,
		Days:     d.Days,
		CustomID: d.CustomID,
	}
}

// DraftFields are the plain form fields posted with the creation form.
// Pointers distinguish "not posted" from a zero value.
type DraftFields struct {
	Title    *string
	Type     *string
	Timezone *string
	Earliest *int
	Latest   *int
	CustomID *string
}

// Apply copies the posted fields onto d.
func (f DraftFields) Apply(d *Draft) {
	if f.Title != nil {
		d.Title = *f.Title
	}
	if f.Type != nil {
		d.Type = *f.Type
	}
	if f.Timezone != nil {
		d.Timezone = *f.Timezone
	}
	if f.Earliest != nil {
		d.Earliest = *f.Earliest
	}
	if f.Latest != nil {
		d.Latest = *f.Latest
	}
	if f.CustomID != nil {
		d.CustomID = *f.CustomID
	}
}

// Gesture is one completed pointer interaction on the picker, reported by the
// browser when the pointer is released. Start is nil when the press landed
// outside the grid; End is nil when the pointer never entered another cell.
// Month is the month the grid showed, which gives the indices their meaning.
type Gesture struct {
	Month datepicker.MonthRef
	Start *int
	End   *int
}

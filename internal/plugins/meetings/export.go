package meetings

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// icsProductID identifies MeetingBrew as the producer of exported calendars.
const icsProductID = "-//MeetingBrew//Meeting//EN"

// icsLocalFormat is a floating DATE-TIME, qualified by a TZID parameter.
const icsLocalFormat = "20060102T150405"

// ExportICS renders the meeting as an iCalendar document. A dates meeting
// becomes one event per date; a days meeting becomes a single weekly
// recurring event starting on the first matching day on or after now.
func ExportICS(m *Meeting, baseURL string, now time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetName(m.Title)

	loc := m.Location()
	link := strings.TrimRight(baseURL, "/") + "/" + m.ID
	stamp := now.UTC()

	switch m.Type {
	case TypeDates:
		for _, key := range m.Dates {
			day, err := time.ParseInLocation("2006-01-02", key, loc)
			if err != nil {
				return "", fmt.Errorf("stored date %q: %w", key, err)
			}
			event := cal.AddEvent(fmt.Sprintf("%s-%s@meetingbrew", m.ID, key))
			event.SetSummary(m.Title)
			event.SetURL(link)
			event.SetDtStampTime(stamp)
			event.SetStartAt(atHour(day, m.Earliest))
			event.SetEndAt(atHour(day, m.Latest))
		}

	case TypeDays:
		opt, err := weeklyOption(m)
		if err != nil {
			return "", err
		}
		local := now.In(loc)
		today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		rule, err := weeklyRule(m, today, 1)
		if err != nil {
			return "", err
		}
		first := rule.All()
		if len(first) == 0 {
			return "", fmt.Errorf("meeting %s has no weekdays", m.ID)
		}

		// Local times with a TZID keep the weekdays right across DST and
		// for zones far from UTC.
		tzid := &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{loc.String()}}
		event := cal.AddEvent(m.ID + "@meetingbrew")
		event.SetSummary(m.Title)
		event.SetURL(link)
		event.SetDtStampTime(stamp)
		event.SetProperty(ics.ComponentPropertyDtStart, atHour(first[0], m.Earliest).Format(icsLocalFormat), tzid)
		event.SetProperty(ics.ComponentPropertyDtEnd, atHour(first[0], m.Latest).Format(icsLocalFormat), tzid)
		event.AddRrule(opt.RRuleString())

	default:
		return "", fmt.Errorf("meeting %s has unknown type %q", m.ID, m.Type)
	}

	return cal.Serialize(), nil
}

// atHour returns day's date at hour h in day's location. h may be 24.
func atHour(day time.Time, h int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, day.Location())
}

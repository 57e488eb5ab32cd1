package meetings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/teambition/rrule-go"

	"github.com/keyxmakerx/meetingbrew/internal/apperror"
	"github.com/keyxmakerx/meetingbrew/internal/config"
	"github.com/keyxmakerx/meetingbrew/internal/datepicker"
	"github.com/keyxmakerx/meetingbrew/internal/sanitize"
)

// maxIDAttempts bounds retries when a generated ID collides.
const maxIDAttempts = 5

// routeIDs are first path segments already used by routes. They can never be
// meeting IDs, whatever the configuration says.
var routeIDs = []string{"about", "api", "drafts", "healthz", "static"}

// Client-facing validation messages.
const (
	msgTitleRequired = "Must enter a title."
	msgDatesRequired = "Must select at least one date."
	msgDaysRequired  = "Must select at least one day."
	msgIDTaken       = "Meeting ID taken. Please choose another."
)

// weekdayRules maps 0=Sunday..6=Saturday onto rrule weekdays.
var weekdayRules = [datepicker.DaysPerWeek]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// MeetingService defines business logic for meetings.
type MeetingService interface {
	Create(ctx context.Context, input CreateMeetingInput) (*Meeting, error)
	Get(ctx context.Context, id string) (*Meeting, error)
	// UpcomingDates lists up to n dates (YYYY-MM-DD) the meeting covers on or
	// after from. Weekday meetings repeat forever, so n bounds the result.
	UpcomingDates(m *Meeting, from time.Time, n int) ([]string, error)
}

// meetingService is the default MeetingService implementation.
type meetingService struct {
	repo     MeetingRepository
	cfg      config.MeetingsConfig
	reserved map[string]struct{}
	newID    func(n int) string
	now      func() time.Time
}

// NewMeetingService creates a MeetingService backed by the given repository
// and creation rules.
func NewMeetingService(repo MeetingRepository, cfg config.MeetingsConfig) MeetingService {
	reserved := make(map[string]struct{}, len(cfg.ReservedIDs)+len(routeIDs))
	for _, id := range append(slices.Clone(cfg.ReservedIDs), routeIDs...) {
		reserved[strings.ToLower(id)] = struct{}{}
	}
	return &meetingService{
		repo:     repo,
		cfg:      cfg,
		reserved: reserved,
		newID:    generateID,
		now:      time.Now,
	}
}

// Create validates input and stores the meeting under the custom ID if one
// was given, otherwise under a generated one.
func (s *meetingService) Create(ctx context.Context, input CreateMeetingInput) (*Meeting, error) {
	m, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = s.now().UTC().Truncate(time.Second)

	if custom := CleanID(input.CustomID); custom != "" {
		if s.isReserved(custom) {
			return nil, apperror.NewConflict(msgIDTaken)
		}
		taken, err := s.repo.Exists(ctx, custom)
		if err != nil {
			return nil, fmt.Errorf("checking meeting id: %w", err)
		}
		if taken {
			return nil, apperror.NewConflict(msgIDTaken)
		}

		m.ID = custom
		if err := s.repo.Create(ctx, m); err != nil {
			if errors.Is(err, ErrDuplicateID) {
				return nil, apperror.NewConflict(msgIDTaken)
			}
			return nil, fmt.Errorf("create meeting: %w", err)
		}
		slog.Info("meeting created", slog.String("id", m.ID), slog.String("type", m.Type), slog.Bool("custom_id", true))
		return m, nil
	}

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		m.ID = s.newID(s.cfg.IDLength)
		if s.isReserved(m.ID) {
			continue
		}
		err := s.repo.Create(ctx, m)
		if errors.Is(err, ErrDuplicateID) {
			slog.Debug("generated meeting id collided", slog.String("id", m.ID), slog.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create meeting: %w", err)
		}
		slog.Info("meeting created", slog.String("id", m.ID), slog.String("type", m.Type), slog.Bool("custom_id", false))
		return m, nil
	}
	return nil, apperror.NewInternal(fmt.Errorf("no free meeting id after %d attempts", maxIDAttempts))
}

// validate checks input in the order the form reports problems and returns
// the normalized meeting, without an ID.
func (s *meetingService) validate(input CreateMeetingInput) (*Meeting, error) {
	title := sanitize.Text(input.Title)
	if title == "" {
		return nil, apperror.NewValidation(msgTitleRequired)
	}
	if utf8.RuneCountInString(title) > s.cfg.TitleMaxLength {
		return nil, apperror.NewValidation(fmt.Sprintf("Title must be at most %d characters.", s.cfg.TitleMaxLength))
	}

	m := &Meeting{Title: title, Type: input.Type}
	switch input.Type {
	case TypeDates:
		if len(input.Dates) == 0 {
			return nil, apperror.NewValidation(msgDatesRequired)
		}
		keys := make([]string, 0, len(input.Dates))
		for _, raw := range input.Dates {
			day, err := datepicker.ParseKey(raw)
			if err != nil {
				return nil, apperror.NewValidation(fmt.Sprintf("Invalid date %q.", raw))
			}
			keys = append(keys, day.Key())
		}
		m.Dates = datepicker.NewSelectionSet(keys...).Keys()
	case TypeDays:
		if len(input.Days) == 0 {
			return nil, apperror.NewValidation(msgDaysRequired)
		}
		for _, d := range input.Days {
			if d < 0 || d >= datepicker.DaysPerWeek {
				return nil, apperror.NewValidation(fmt.Sprintf("Invalid day %d.", d))
			}
		}
		days := slices.Clone(input.Days)
		slices.Sort(days)
		m.Days = slices.Compact(days)
	default:
		return nil, apperror.NewValidation("Date type must be specific dates or days of the week.")
	}

	if input.Timezone == "" {
		return nil, apperror.NewValidation("Must select a timezone.")
	}
	// "Local" loads, but means whatever zone the server runs in.
	if _, err := time.LoadLocation(input.Timezone); err != nil || input.Timezone == "Local" {
		return nil, apperror.NewValidation(fmt.Sprintf("Unknown timezone %q.", input.Timezone))
	}
	m.Timezone = input.Timezone

	if input.Earliest < 0 || input.Latest > 24 || input.Earliest >= input.Latest {
		return nil, apperror.NewValidation("Earliest time must be before latest time, within 0 to 24.")
	}
	m.Earliest, m.Latest = input.Earliest, input.Latest
	return m, nil
}

func (s *meetingService) isReserved(id string) bool {
	_, ok := s.reserved[strings.ToLower(id)]
	return ok
}

// Get returns a meeting by ID.
func (s *meetingService) Get(ctx context.Context, id string) (*Meeting, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	if m == nil {
		return nil, apperror.NewNotFound("Meeting not found.")
	}
	return m, nil
}

func (s *meetingService) UpcomingDates(m *Meeting, from time.Time, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	loc := m.Location()
	from = from.In(loc)
	today := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)

	if m.Type == TypeDates {
		var out []string
		for _, key := range m.Dates {
			day, err := datepicker.ParseKey(key)
			if err != nil {
				return nil, fmt.Errorf("stored date %q: %w", key, err)
			}
			if time.Date(day.Year, day.Month, day.Day, 0, 0, 0, 0, loc).Before(today) {
				continue
			}
			out = append(out, key)
			if len(out) == n {
				break
			}
		}
		return out, nil
	}

	rule, err := weeklyRule(m, today, n)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for _, t := range rule.All() {
		out = append(out, datepicker.DayOf(t).Key())
	}
	return out, nil
}

// weeklyOption is the recurrence of a days meeting, without a start.
func weeklyOption(m *Meeting) (rrule.ROption, error) {
	byDay := make([]rrule.Weekday, 0, len(m.Days))
	for _, d := range m.Days {
		if d < 0 || d >= datepicker.DaysPerWeek {
			return rrule.ROption{}, fmt.Errorf("stored day %d out of range", d)
		}
		byDay = append(byDay, weekdayRules[d])
	}
	return rrule.ROption{Freq: rrule.WEEKLY, Byweekday: byDay}, nil
}

// weeklyRule builds the recurrence of a days meeting starting at start,
// limited to count occurrences.
func weeklyRule(m *Meeting, start time.Time, count int) (*rrule.RRule, error) {
	opt, err := weeklyOption(m)
	if err != nil {
		return nil, err
	}
	opt.Dtstart = start
	opt.Count = count
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("building weekly rule: %w", err)
	}
	return rule, nil
}

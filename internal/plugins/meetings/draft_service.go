package meetings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/keyxmakerx/meetingbrew/internal/apperror"
	"github.com/keyxmakerx/meetingbrew/internal/config"
	"github.com/keyxmakerx/meetingbrew/internal/datepicker"
)

// Messages for draft lookups and stale picker interactions.
const (
	msgStaleGrid    = "The calendar changed before your selection arrived. Please try again."
	msgDraftExpired = "This form has expired. Please start a new event."
)

// Navigation directions accepted by Navigate.
const (
	DirPrev = "prev"
	DirNext = "next"
)

// DraftService drives the creation form. Every mutation loads the draft,
// applies one interaction and saves it again, which also refreshes its TTL.
// Concurrent mutations of one draft are serialized by the store, so none is
// lost.
type DraftService interface {
	NewDraft(ctx context.Context) (*Draft, error)
	GetDraft(ctx context.Context, id string) (*Draft, error)

	// SelectRange replays one completed drag gesture on the date picker.
	// A gesture made on a month the draft no longer shows is a conflict.
	SelectRange(ctx context.Context, id string, g Gesture) (*Draft, error)
	// Click toggles a single picker cell of the shown month.
	Click(ctx context.Context, id string, shown datepicker.MonthRef, index int) (*Draft, error)
	// Navigate moves the picker one month in dir (DirPrev or DirNext).
	Navigate(ctx context.Context, id string, dir string) (*Draft, error)
	// ToggleDay flips a weekday (0=Sunday) in the days selection.
	ToggleDay(ctx context.Context, id string, day int) (*Draft, error)
	UpdateFields(ctx context.Context, id string, fields DraftFields) (*Draft, error)

	// Submit saves the posted fields and creates the meeting. The draft is
	// discarded once the meeting exists; on failure it keeps the fields.
	Submit(ctx context.Context, id string, fields DraftFields) (*Meeting, *Draft, error)

	// Picker returns the date picker for rendering the draft.
	Picker(d *Draft) *datepicker.Picker
}

// draftService is the default DraftService implementation.
type draftService struct {
	store    DraftStore
	meetings MeetingService
	cfg      config.MeetingsConfig
	now      func() time.Time
}

// NewDraftService creates a DraftService.
func NewDraftService(store DraftStore, meetings MeetingService, cfg config.MeetingsConfig) DraftService {
	return &draftService{
		store:    store,
		meetings: meetings,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *draftService) NewDraft(ctx context.Context) (*Draft, error) {
	d := &Draft{
		ID:       newDraftID(),
		Type:     TypeDates,
		Timezone: s.cfg.DefaultTimezone,
		Earliest: s.cfg.DefaultEarliest,
		Latest:   s.cfg.DefaultLatest,
	}
	d.SetMonthRef(s.today(d).MonthRef())

	if err := s.store.Save(ctx, d); err != nil {
		return nil, err
	}
	slog.Debug("draft created", slog.String("draft_id", d.ID))
	return d, nil
}

func (s *draftService) GetDraft(ctx context.Context, id string) (*Draft, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperror.NewNotFound(msgDraftExpired)
	}
	return d, nil
}

func (s *draftService) SelectRange(ctx context.Context, id string, g Gesture) (*Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		if err := checkShown(d, g.Month); err != nil {
			return err
		}
		win := datepicker.NewWindow()
		p := s.Picker(d)
		p.Mount(win)
		defer p.Unmount()

		if g.Start != nil {
			p.PointerDown(*g.Start)
			if g.End != nil {
				p.PointerEnter(*g.End)
			}
		}
		win.PointerUp()
		return nil
	})
}

func (s *draftService) Click(ctx context.Context, id string, shown datepicker.MonthRef, index int) (*Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		if err := checkShown(d, shown); err != nil {
			return err
		}
		s.Picker(d).Click(index)
		return nil
	})
}

func (s *draftService) Navigate(ctx context.Context, id string, dir string) (*Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		p := s.Picker(d)
		switch dir {
		case DirPrev:
			p.PrevMonth()
		case DirNext:
			p.NextMonth()
		default:
			return apperror.NewBadRequest(fmt.Sprintf("unknown direction %q", dir))
		}
		d.SetMonthRef(p.Month())
		return nil
	})
}

func (s *draftService) ToggleDay(ctx context.Context, id string, day int) (*Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		if day < 0 || day >= datepicker.DaysPerWeek {
			return apperror.NewBadRequest(fmt.Sprintf("day %d out of range", day))
		}
		d.Days = datepicker.ToggleWeekday(d.Days, day)
		return nil
	})
}

func (s *draftService) UpdateFields(ctx context.Context, id string, fields DraftFields) (*Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		fields.Apply(d)
		return nil
	})
}

func (s *draftService) Submit(ctx context.Context, id string, fields DraftFields) (*Meeting, *Draft, error) {
	d, err := s.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, nil, err
	}

	m, err := s.meetings.Create(ctx, d.Input())
	if err != nil {
		return nil, d, err
	}

	if err := s.store.Delete(ctx, d.ID); err != nil {
		// The draft expires on its own.
		slog.Warn("failed to delete draft",
			slog.String("draft_id", d.ID),
			slog.Any("error", err),
		)
	}
	return m, d, nil
}

// Picker builds a picker over the draft. Committed selections are written
// straight back into d.Dates.
func (s *draftService) Picker(d *Draft) *datepicker.Picker {
	p := datepicker.NewPicker(d.MonthRef(), datepicker.NewSelectionSet(d.Dates...), func(sel datepicker.SelectionSet) {
		d.Dates = sel.Keys()
	})
	p.SetToday(s.today(d))
	return p
}

// today is the current calendar day in the draft's timezone.
func (s *draftService) today(d *Draft) datepicker.CalendarDay {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return datepicker.DayOf(s.now().In(loc))
}

// checkShown rejects grid indices that were computed for another month.
func checkShown(d *Draft, shown datepicker.MonthRef) error {
	if shown != d.MonthRef() {
		return apperror.NewConflict(msgStaleGrid)
	}
	return nil
}

// update applies fn to the stored draft. Nothing is saved when fn fails.
func (s *draftService) update(ctx context.Context, id string, fn func(*Draft) error) (*Draft, error) {
	d, err := s.store.Update(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperror.NewNotFound(msgDraftExpired)
	}
	return d, nil
}

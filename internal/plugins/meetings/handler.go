package meetings

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/meetingbrew/internal/apperror"
	"github.com/keyxmakerx/meetingbrew/internal/config"
	"github.com/keyxmakerx/meetingbrew/internal/datepicker"
	"github.com/keyxmakerx/meetingbrew/internal/middleware"
	"github.com/keyxmakerx/meetingbrew/internal/templates/pages"
)

// upcomingCount is how many dates the summary page lists for a weekly meeting.
const upcomingCount = 6

// Handler processes HTTP requests for the meetings plugin.
type Handler struct {
	meetings MeetingService
	drafts   DraftService
	cfg      config.MeetingsConfig
	baseURL  string
	now      func() time.Time
}

// NewHandler creates a new meetings Handler.
func NewHandler(meetings MeetingService, drafts DraftService, cfg config.MeetingsConfig, baseURL string) *Handler {
	return &Handler{
		meetings: meetings,
		drafts:   drafts,
		cfg:      cfg,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
	}
}

// NewDraft starts a fresh creation form.
// GET /
func (h *Handler) NewDraft(c echo.Context) error {
	d, err := h.drafts.NewDraft(c.Request().Context())
	if err != nil {
		return err
	}
	return h.renderCreate(c, http.StatusOK, d)
}

// ShowDraft renders the creation form of an existing draft.
// GET /drafts/:id
func (h *Handler) ShowDraft(c echo.Context) error {
	d, err := h.drafts.GetDraft(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return h.renderCreate(c, http.StatusOK, d)
}

// SelectRange applies one finished drag on the date picker. A missing or
// malformed start means the press never landed on a cell, which leaves the
// selection as it was.
// POST /drafts/:id/picker/select
func (h *Handler) SelectRange(c echo.Context) error {
	shown, err := shownMonth(c)
	if err != nil {
		return err
	}
	g := Gesture{
		Month: shown,
		Start: optionalInt(c.FormValue("start")),
		End:   optionalInt(c.FormValue("end")),
	}
	d, err := h.drafts.SelectRange(c.Request().Context(), c.Param("id"), g)
	if err != nil {
		return h.pickerError(c, err)
	}
	return h.pickerResponse(c, d)
}

// Click toggles one date.
// POST /drafts/:id/picker/click
func (h *Handler) Click(c echo.Context) error {
	shown, err := shownMonth(c)
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(c.FormValue("index"))
	if err != nil {
		return apperror.NewBadRequest("index must be a number")
	}
	d, err := h.drafts.Click(c.Request().Context(), c.Param("id"), shown, index)
	if err != nil {
		return h.pickerError(c, err)
	}
	return h.pickerResponse(c, d)
}

// Navigate moves the picker to the previous or next month.
// POST /drafts/:id/picker/month
func (h *Handler) Navigate(c echo.Context) error {
	d, err := h.drafts.Navigate(c.Request().Context(), c.Param("id"), c.FormValue("dir"))
	if err != nil {
		return err
	}
	return h.pickerResponse(c, d)
}

// ToggleDay flips one weekday in the days selection.
// POST /drafts/:id/days/toggle
func (h *Handler) ToggleDay(c echo.Context) error {
	day, err := strconv.Atoi(c.FormValue("day"))
	if err != nil {
		return apperror.NewBadRequest("day must be a number")
	}
	d, err := h.drafts.ToggleDay(c.Request().Context(), c.Param("id"), day)
	if err != nil {
		return err
	}
	if middleware.IsFragment(c) {
		return middleware.Render(c, http.StatusOK, DaysFragment(d))
	}
	return c.Redirect(http.StatusSeeOther, draftPath(d, ""))
}

// CreateMeeting submits the creation form. Validation problems re-render the
// form with the message so nothing typed is lost.
// POST /drafts/:id/meeting
func (h *Handler) CreateMeeting(c echo.Context) error {
	fields, err := draftFieldsFromForm(c)
	if err != nil {
		return err
	}

	m, d, err := h.drafts.Submit(c.Request().Context(), c.Param("id"), fields)
	if err != nil {
		var appErr *apperror.AppError
		if d != nil && errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
			middleware.SetFlashError(c, appErr.Message)
			return h.renderCreate(c, appErr.Code, d)
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/"+m.ID)
}

// About renders the about page.
// GET /about
func (h *Handler) About(c echo.Context) error {
	return middleware.Render(c, http.StatusOK, pages.About())
}

// ShowMeeting renders a meeting's summary page.
// GET /:id
func (h *Handler) ShowMeeting(c echo.Context) error {
	m, err := h.meetings.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	upcoming, err := h.meetings.UpcomingDates(m, h.now(), upcomingCount)
	if err != nil {
		// The page is still useful without them.
		slog.Warn("listing upcoming dates failed", slog.String("meeting_id", m.ID), slog.Any("error", err))
	}

	return middleware.Render(c, http.StatusOK, MeetingPage(MeetingView{
		Meeting:  m,
		Upcoming: upcoming,
		ShareURL: h.baseURL + "/" + m.ID,
	}))
}

// ExportICS downloads the meeting as an iCalendar file.
// GET /:id/calendar.ics
func (h *Handler) ExportICS(c echo.Context) error {
	m, err := h.meetings.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	body, err := ExportICS(m, h.baseURL, h.now())
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("exporting %s: %w", m.ID, err))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.ics"`, m.ID))
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// CreateMeetingAPI creates a meeting from a JSON body.
// POST /api/v1/meetings
func (h *Handler) CreateMeetingAPI(c echo.Context) error {
	var input CreateMeetingInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	m, err := h.meetings.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/meetings/"+m.ID)
	return c.JSON(http.StatusCreated, m)
}

// GetMeetingAPI returns a meeting as JSON.
// GET /api/v1/meetings/:id
func (h *Handler) GetMeetingAPI(c echo.Context) error {
	m, err := h.meetings.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) renderCreate(c echo.Context, status int, d *Draft) error {
	return middleware.Render(c, status, CreatePage(CreateView{
		Draft:     d,
		Picker:    h.drafts.Picker(d),
		Timezones: h.cfg.Timezones,
		TitleMax:  h.cfg.TitleMaxLength,
	}))
}

// pickerResponse answers a picker interaction: the fragment for the script,
// a redirect back to the form for a plain form post.
func (h *Handler) pickerResponse(c echo.Context, d *Draft) error {
	if middleware.IsFragment(c) {
		return middleware.Render(c, http.StatusOK, PickerFragment(d, h.drafts.Picker(d)))
	}
	return c.Redirect(http.StatusSeeOther, draftPath(d, ""))
}

// pickerError answers a conflicting picker interaction with the picker as it
// is now, so the browser can replace its outdated grid. Other errors go to
// the error handler.
func (h *Handler) pickerError(c echo.Context, err error) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != http.StatusConflict {
		return err
	}
	d, getErr := h.drafts.GetDraft(c.Request().Context(), c.Param("id"))
	if getErr != nil {
		return getErr
	}
	if middleware.IsFragment(c) {
		return middleware.Render(c, http.StatusConflict, PickerFragment(d, h.drafts.Picker(d)))
	}
	middleware.SetFlashError(c, appErr.Message)
	return h.renderCreate(c, http.StatusConflict, d)
}

// shownMonth reads the month the posted grid indices belong to.
func shownMonth(c echo.Context) (datepicker.MonthRef, error) {
	year, yerr := strconv.Atoi(c.FormValue("year"))
	month, merr := strconv.Atoi(c.FormValue("month"))
	if yerr != nil || merr != nil || month < 1 || month > 12 {
		return datepicker.MonthRef{}, apperror.NewBadRequest("year and month must identify the shown month")
	}
	return datepicker.MonthRef{Year: year, Month: time.Month(month)}, nil
}

// draftFieldsFromForm reads the creation form. Fields that were not posted
// stay nil and leave the draft untouched.
func draftFieldsFromForm(c echo.Context) (DraftFields, error) {
	form, err := c.FormParams()
	if err != nil {
		return DraftFields{}, apperror.NewBadRequest("invalid form")
	}

	var f DraftFields
	str := func(key string) *string {
		if _, ok := form[key]; !ok {
			return nil
		}
		v := form.Get(key)
		return &v
	}
	f.Title = str("title")
	f.Type = str("type")
	f.Timezone = str("timezone")
	f.CustomID = str("custom_id")

	for key, dst := range map[string]**int{"earliest": &f.Earliest, "latest": &f.Latest} {
		raw := str(key)
		if raw == nil {
			continue
		}
		n, err := strconv.Atoi(*raw)
		if err != nil {
			return DraftFields{}, apperror.NewValidation("Times must be whole hours.")
		}
		*dst = &n
	}
	return f, nil
}

// optionalInt parses a form value, treating empty or malformed input as
// absent.
func optionalInt(raw string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &n
}

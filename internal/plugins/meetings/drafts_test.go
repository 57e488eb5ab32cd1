package meetings

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/meetingbrew/internal/config"
	"github.com/keyxmakerx/meetingbrew/internal/datepicker"
)

const testDraftTTL = time.Hour

func newTestDraftStore(t *testing.T) (DraftStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewDraftStore(rdb, testDraftTTL), mr
}

// newTestDraftService returns a draft service whose clock reads
// 2024-01-06 12:00 UTC, backed by miniredis and an in-memory meeting repo.
func newTestDraftService(t *testing.T) (*draftService, *miniredis.Miniredis, map[string]*Meeting) {
	t.Helper()
	store, mr := newTestDraftStore(t)
	repo, stored := memMeetingRepo()
	cfg := config.DefaultMeetingsConfig()
	svc := &draftService{
		store:    store,
		meetings: newTestMeetingService(repo),
		cfg:      cfg,
		now:      func() time.Time { return time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC) },
	}
	return svc, mr, stored
}

// january is the month saveJanuaryDraft shows.
var january = datepicker.MonthRef{Year: 2024, Month: time.January}

func intp(n int) *int { return &n }

func strp(s string) *string { return &s }

// --- DraftStore ---

func TestDraftStore_RoundTripAndTTL(t *testing.T) {
	store, mr := newTestDraftStore(t)
	ctx := context.Background()

	d := &Draft{ID: "d1", Title: "Lunch", Type: TypeDates, Dates: []string{"2024-01-08"}, Year: 2024, Month: time.January}
	if err := store.Save(ctx, d); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL(draftKeyPrefix + "d1"); ttl != testDraftTTL {
		t.Errorf("expected TTL %s, got %s", testDraftTTL, ttl)
	}

	got, err := store.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, d) {
		t.Errorf("expected %+v, got %+v", d, got)
	}

	mr.FastForward(testDraftTTL + time.Second)
	got, err = store.Get(ctx, "d1")
	if err != nil || got != nil {
		t.Errorf("expected expired draft to be gone, got %+v, %v", got, err)
	}
}

func TestDraftStore_Delete(t *testing.T) {
	store, mr := newTestDraftStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, &Draft{ID: "d1"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "d1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists(draftKeyPrefix + "d1") {
		t.Error("expected key removed")
	}
}

func TestDraftStore_UpdateMissing(t *testing.T) {
	store, _ := newTestDraftStore(t)

	called := false
	d, err := store.Update(context.Background(), "nope", func(*Draft) error {
		called = true
		return nil
	})
	if err != nil || d != nil {
		t.Fatalf("expected nil, nil, got %+v, %v", d, err)
	}
	if called {
		t.Error("expected fn not to run for a missing draft")
	}
}

func TestDraftStore_UpdateErrorWritesNothing(t *testing.T) {
	store, mr := newTestDraftStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, &Draft{ID: "d1", Title: "before"}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(time.Minute)

	boom := errors.New("boom")
	_, err := store.Update(ctx, "d1", func(d *Draft) error {
		d.Title = "after"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	got, _ := store.Get(ctx, "d1")
	if got.Title != "before" {
		t.Errorf("expected draft untouched, got title %q", got.Title)
	}
	if ttl := mr.TTL(draftKeyPrefix + "d1"); ttl != testDraftTTL-time.Minute {
		t.Errorf("expected TTL not refreshed, got %s", ttl)
	}
}

func TestDraftStore_UpdateRefreshesTTL(t *testing.T) {
	store, mr := newTestDraftStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, &Draft{ID: "d1"}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(time.Minute)

	d, err := store.Update(ctx, "d1", func(d *Draft) error {
		d.Title = "Lunch"
		return nil
	})
	if err != nil || d.Title != "Lunch" {
		t.Fatalf("unexpected result %+v, %v", d, err)
	}
	if ttl := mr.TTL(draftKeyPrefix + "d1"); ttl != testDraftTTL {
		t.Errorf("expected TTL %s, got %s", testDraftTTL, ttl)
	}
}

// --- DraftService ---

func TestNewDraft_Defaults(t *testing.T) {
	svc, mr, _ := newTestDraftService(t)

	d, err := svc.NewDraft(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID == "" || d.Type != TypeDates || d.Timezone != "UTC" || d.Earliest != 9 || d.Latest != 17 {
		t.Errorf("unexpected defaults %+v", d)
	}
	if d.MonthRef() != (datepicker.MonthRef{Year: 2024, Month: time.January}) {
		t.Errorf("expected picker on the current month, got %v", d.MonthRef())
	}
	if !mr.Exists(draftKeyPrefix + d.ID) {
		t.Error("expected draft saved")
	}
}

func TestGetDraft_Missing(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	_, err := svc.GetDraft(context.Background(), "nope")
	assertAppError(t, err, http.StatusNotFound)
}

func saveJanuaryDraft(t *testing.T, svc *draftService, dates ...string) *Draft {
	t.Helper()
	d := &Draft{ID: "d1", Type: TypeDates, Timezone: "UTC", Earliest: 9, Latest: 17, Dates: dates, Year: 2024, Month: time.January}
	if err := svc.store.Save(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSelectRange_Rectangle(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	saveJanuaryDraft(t, svc)

	// January 2024 starts on a Monday, so index i is January i.
	d, err := svc.SelectRange(context.Background(), "d1", Gesture{Month: january, Start: intp(8), End: intp(17)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2024-01-08", "2024-01-09", "2024-01-10", "2024-01-15", "2024-01-16", "2024-01-17"}
	if !datepicker.NewSelectionSet(d.Dates...).Equal(datepicker.NewSelectionSet(want...)) {
		t.Errorf("expected %v, got %v", want, d.Dates)
	}

	stored, err := svc.GetDraft(context.Background(), "d1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(stored.Dates, d.Dates) {
		t.Errorf("expected selection persisted, got %v", stored.Dates)
	}
}

func TestSelectRange_RemoveModeFromStartCell(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	saveJanuaryDraft(t, svc, "2024-01-08", "2024-01-09", "2024-01-20")

	d, err := svc.SelectRange(context.Background(), "d1", Gesture{Month: january, Start: intp(8), End: intp(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(d.Dates, []string{"2024-01-20"}) {
		t.Errorf("expected range cleared, got %v", d.Dates)
	}
}

func TestSelectRange_NoStartLeavesSelection(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	saveJanuaryDraft(t, svc, "2024-01-08")

	for _, g := range []Gesture{{Month: january}, {Month: january, End: intp(12)}, {Month: january, Start: intp(99), End: intp(3)}} {
		d, err := svc.SelectRange(context.Background(), "d1", g)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(d.Dates, []string{"2024-01-08"}) {
			t.Errorf("gesture %+v: expected no change, got %v", g, d.Dates)
		}
	}
}

func TestSelectRange_ZeroMoveTogglesLikeClick(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	saveJanuaryDraft(t, svc)

	d, err := svc.SelectRange(context.Background(), "d1", Gesture{Month: january, Start: intp(5)})
	if err != nil {
		t.Fatal(err)
	}
	dragged := d.Dates

	saveJanuaryDraft(t, svc)
	d, err = svc.Click(context.Background(), "d1", january, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(dragged, d.Dates) || !reflect.DeepEqual(d.Dates, []string{"2024-01-05"}) {
		t.Errorf("expected drag %v and click %v to agree", dragged, d.Dates)
	}
}

func TestNavigate(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	saveJanuaryDraft(t, svc, "2024-01-08")
	ctx := context.Background()

	d, err := svc.Navigate(ctx, "d1", DirPrev)
	if err != nil {
		t.Fatal(err)
	}
	if d.MonthRef() != (datepicker.MonthRef{Year: 2023, Month: time.December}) {
		t.Errorf("expected December 2023, got %v", d.MonthRef())
	}
	if !reflect.DeepEqual(d.Dates, []string{"2024-01-08"}) {
		t.Errorf("expected selection kept, got %v", d.Dates)
	}

	d, err = svc.Navigate(ctx, "d1", DirNext)
	if err != nil {
		t.Fatal(err)
	}
	if d.MonthRef() != (datepicker.MonthRef{Year: 2024, Month: time.January}) {
		t.Errorf("expected January 2024, got %v", d.MonthRef())
	}

	_, err = svc.Navigate(ctx, "d1", "sideways")
	assertAppError(t, err, http.StatusBadRequest)
}

func TestToggleDay(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	saveJanuaryDraft(t, svc)
	ctx := context.Background()

	for _, day := range []int{3, 1, 5, 3} {
		if _, err := svc.ToggleDay(ctx, "d1", day); err != nil {
			t.Fatal(err)
		}
	}
	d, err := svc.GetDraft(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(d.Days, []int{1, 5}) {
		t.Errorf("expected [1 5], got %v", d.Days)
	}

	_, err = svc.ToggleDay(ctx, "d1", 7)
	assertAppError(t, err, http.StatusBadRequest)
}

func TestPicker_TodayInDraftTimezone(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	svc.now = func() time.Time { return time.Date(2024, 1, 6, 20, 0, 0, 0, time.UTC) }
	d := &Draft{Timezone: "Asia/Tokyo", Year: 2024, Month: time.January}

	var today []string
	for _, cell := range svc.Picker(d).Cells() {
		if cell.Today {
			today = append(today, cell.Key)
		}
	}
	if !reflect.DeepEqual(today, []string{"2024-01-07"}) {
		t.Errorf("expected Tokyo's 7 January as today, got %v", today)
	}
}

func TestSubmit_CreatesMeetingAndDropsDraft(t *testing.T) {
	svc, mr, stored := newTestDraftService(t)
	saveJanuaryDraft(t, svc, "2024-01-08")
	svc.meetings.(*meetingService).newID = func(int) string { return "abc123" }

	m, _, err := svc.Submit(context.Background(), "d1", DraftFields{Title: strp("Planning"), Earliest: intp(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "abc123" || m.Title != "Planning" || m.Earliest != 10 || m.Latest != 17 {
		t.Errorf("unexpected meeting %+v", m)
	}
	if stored["abc123"] == nil {
		t.Error("expected meeting stored")
	}
	if mr.Exists(draftKeyPrefix + "d1") {
		t.Error("expected draft deleted")
	}
}

func TestSubmit_ValidationKeepsDraft(t *testing.T) {
	svc, _, stored := newTestDraftService(t)
	saveJanuaryDraft(t, svc)

	_, d, err := svc.Submit(context.Background(), "d1", DraftFields{Title: strp("Planning")})
	appErr := assertAppError(t, err, http.StatusUnprocessableEntity)
	if appErr.Message != msgDatesRequired {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	if d == nil || d.Title != "Planning" {
		t.Fatalf("expected the updated draft back, got %+v", d)
	}
	if len(stored) != 0 {
		t.Error("expected no meeting stored")
	}

	kept, err := svc.GetDraft(context.Background(), "d1")
	if err != nil || kept.Title != "Planning" {
		t.Errorf("expected typed title kept in the draft, got %+v, %v", kept, err)
	}
}

func TestClick_ConcurrentClicksAllSurvive(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	saveJanuaryDraft(t, svc)

	// January 2024 starts on a Monday, so index i is January i.
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 8; i < 16; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			if _, err := svc.Click(context.Background(), "d1", january, index); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}

	d, err := svc.GetDraft(context.Background(), "d1")
	if err != nil {
		t.Fatal(err)
	}
	want := datepicker.NewSelectionSet(
		"2024-01-08", "2024-01-09", "2024-01-10", "2024-01-11",
		"2024-01-12", "2024-01-13", "2024-01-14", "2024-01-15",
	)
	if !datepicker.NewSelectionSet(d.Dates...).Equal(want) {
		t.Errorf("expected all eight clicks, got %v", d.Dates)
	}
}

func TestSelectRange_StaleMonthIsConflict(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	saveJanuaryDraft(t, svc, "2024-01-08")
	ctx := context.Background()

	if _, err := svc.Navigate(ctx, "d1", DirNext); err != nil {
		t.Fatal(err)
	}
	// A gesture made on the January grid arrives after the move.
	_, err := svc.SelectRange(ctx, "d1", Gesture{Month: january, Start: intp(8), End: intp(9)})
	assertAppError(t, err, http.StatusConflict)

	_, err = svc.Click(ctx, "d1", january, 8)
	assertAppError(t, err, http.StatusConflict)

	d, _ := svc.GetDraft(ctx, "d1")
	if !reflect.DeepEqual(d.Dates, []string{"2024-01-08"}) {
		t.Errorf("expected selection unchanged, got %v", d.Dates)
	}
}

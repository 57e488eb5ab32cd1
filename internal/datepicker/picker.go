package datepicker

import "sync"

// PointerSource delivers pointer-up events that happen anywhere on the page,
// not only over the grid. A drag may leave the grid before the button is
// released, so the picker listens globally while it is mounted.
type PointerSource interface {
	// OnPointerUp registers fn and returns a function that removes it.
	OnPointerUp(fn func()) (unsubscribe func())
}

// Window is the in-process PointerSource. Listeners run in the order they
// subscribed.
type Window struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
	order     []int
}

// NewWindow returns a Window with no listeners.
func NewWindow() *Window {
	return &Window{listeners: make(map[int]func())}
}

// OnPointerUp implements PointerSource. Calling the returned function more
// than once is harmless.
func (w *Window) OnPointerUp(fn func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	w.order = append(w.order, id)

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if _, ok := w.listeners[id]; !ok {
			return
		}
		delete(w.listeners, id)
		for i, v := range w.order {
			if v == id {
				w.order = append(w.order[:i], w.order[i+1:]...)
				break
			}
		}
	}
}

// PointerUp dispatches a pointer-up to every listener. The listener table
// is copied first so a listener may unsubscribe itself.
func (w *Window) PointerUp() {
	w.mu.Lock()
	fns := make([]func(), 0, len(w.order))
	for _, id := range w.order {
		fns = append(fns, w.listeners[id])
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Listeners returns the number of live subscriptions.
func (w *Window) Listeners() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners)
}

// Cell is what the presentation layer needs to draw one grid position.
type Cell struct {
	Index    int
	Day      CalendarDay
	Key      string
	Selected bool
	Today    bool
	InMonth  bool
	Pending  bool
}

// Picker is one date picker instance. It owns the visible month and the
// drag gesture; the selection belongs to the caller, who passes it in and
// receives every new value through onChange.
type Picker struct {
	ref       MonthRef
	grid      []CalendarDay
	selection SelectionSet
	onChange  func(SelectionSet)
	drag      *DragController
	today     CalendarDay

	unsubscribe func()
}

// NewPicker returns a picker showing ref with the given selection. onChange
// may be nil.
func NewPicker(ref MonthRef, selection SelectionSet, onChange func(SelectionSet)) *Picker {
	ref = MonthOf(ref.first())
	return &Picker{
		ref:       ref,
		grid:      BuildGrid(ref),
		selection: selection,
		onChange:  onChange,
		drag:      NewDragController(),
	}
}

// SetToday marks which cell is highlighted as today.
func (p *Picker) SetToday(day CalendarDay) {
	p.today = day
}

// Month returns the month being shown.
func (p *Picker) Month() MonthRef {
	return p.ref
}

// Grid returns the visible days.
func (p *Picker) Grid() []CalendarDay {
	out := make([]CalendarDay, len(p.grid))
	copy(out, p.grid)
	return out
}

// Selection returns the current selection.
func (p *Picker) Selection() SelectionSet {
	return p.selection
}

// Dragging reports whether a gesture is in progress.
func (p *Picker) Dragging() bool {
	return p.drag.Dragging()
}

// Mount subscribes to pointer-up on src. Mounting an already mounted picker
// moves the subscription to src.
func (p *Picker) Mount(src PointerSource) {
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	p.unsubscribe = src.OnPointerUp(p.finishDrag)
}

// Unmount drops the pointer-up subscription and abandons any gesture in
// progress, so a later pointer-up cannot reach a torn-down picker.
func (p *Picker) Unmount() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
	p.drag.Cancel()
}

// Mounted reports whether the picker holds a pointer-up subscription.
func (p *Picker) Mounted() bool {
	return p.unsubscribe != nil
}

// PointerDown starts a drag on the cell at index. Indices outside the grid
// are ignored.
func (p *Picker) PointerDown(index int) {
	if !inGrid(p.grid, index) {
		return
	}
	p.drag.PointerDown(index, p.selection.Has(p.grid[index].Key()))
}

// PointerEnter extends the drag to the cell at index.
func (p *Picker) PointerEnter(index int) {
	if !inGrid(p.grid, index) {
		return
	}
	p.drag.PointerEnter(index)
}

// Click toggles the single cell at index without a drag.
func (p *Picker) Click(index int) {
	if !inGrid(p.grid, index) {
		return
	}
	p.setSelection(p.selection.ToggleOne(p.grid[index]))
}

// PrevMonth shows the previous month. The selection is untouched.
func (p *Picker) PrevMonth() {
	p.SetMonth(p.ref.Prev())
}

// NextMonth shows the next month. The selection is untouched.
func (p *Picker) NextMonth() {
	p.SetMonth(p.ref.Next())
}

// SetMonth shows ref. Grid indices change meaning, so any gesture in
// progress is dropped.
func (p *Picker) SetMonth(ref MonthRef) {
	p.drag.Cancel()
	p.ref = MonthOf(ref.first())
	p.grid = BuildGrid(p.ref)
}

// Cells describes every grid position for rendering.
func (p *Picker) Cells() []Cell {
	pending := make(map[int]bool)
	for _, i := range p.drag.Pending() {
		pending[i] = true
	}

	cells := make([]Cell, len(p.grid))
	for i, day := range p.grid {
		key := day.Key()
		cells[i] = Cell{
			Index:    i,
			Day:      day,
			Key:      key,
			Selected: p.selection.Has(key),
			Today:    day == p.today,
			InMonth:  day.Year == p.ref.Year && day.Month == p.ref.Month,
			Pending:  pending[i],
		}
	}
	return cells
}

// finishDrag is the pointer-up listener.
func (p *Picker) finishDrag() {
	next, ok := p.drag.Commit(p.grid, p.selection)
	if !ok {
		return
	}
	p.setSelection(next)
}

func (p *Picker) setSelection(next SelectionSet) {
	p.selection = next
	if p.onChange != nil {
		p.onChange(next)
	}
}

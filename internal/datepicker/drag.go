package datepicker

// dragState is the controller's state machine position.
type dragState int

const (
	stateIdle dragState = iota
	stateDragging
)

// noIndex marks an unset gesture endpoint.
const noIndex = -1

// DragController tracks one click-and-drag gesture over the grid. A gesture
// starts on pointer-down over a cell, follows the pointer across cells, and
// is committed on pointer-up as an axis-aligned rectangle of dates.
//
// The zero value is not ready for use; call NewDragController.
type DragController struct {
	state dragState
	start int
	end   int
	mode  Mode
}

// NewDragController returns an idle controller.
func NewDragController() *DragController {
	return &DragController{state: stateIdle, start: noIndex, end: noIndex}
}

// Dragging reports whether a gesture is in progress.
func (d *DragController) Dragging() bool {
	return d.state == stateDragging
}

// Mode returns the mode of the current gesture.
func (d *DragController) Mode() Mode {
	return d.mode
}

// PointerDown starts a gesture at index. A drag that starts on a selected
// cell removes dates; one that starts on an unselected cell adds them, the
// same direction a plain click on that cell would toggle.
func (d *DragController) PointerDown(index int, selected bool) {
	d.state = stateDragging
	d.start = index
	d.end = index
	d.mode = ModeAdd
	if selected {
		d.mode = ModeRemove
	}
}

// PointerEnter moves the far corner of the rectangle. Ignored when idle.
func (d *DragController) PointerEnter(index int) {
	if d.state != stateDragging {
		return
	}
	d.end = index
}

// Cancel drops the gesture without touching any selection.
func (d *DragController) Cancel() {
	d.state = stateIdle
	d.start = noIndex
	d.end = noIndex
}

// Pending returns the grid indices covered by the current rectangle in
// row-major order, or nil when no gesture is in progress.
func (d *DragController) Pending() []int {
	if d.state != stateDragging || d.start == noIndex || d.end == noIndex {
		return nil
	}
	return rectangle(d.start, d.end)
}

// Commit finishes the gesture: every day of grid inside the rectangle is
// added or removed according to the gesture mode and the new set is
// returned. When either endpoint is missing, or an endpoint falls outside
// grid, the gesture is dropped and ok is false. The controller is idle
// afterwards in every case.
func (d *DragController) Commit(grid []CalendarDay, set SelectionSet) (result SelectionSet, ok bool) {
	defer d.Cancel()

	if d.state != stateDragging || d.start == noIndex || d.end == noIndex {
		return set, false
	}
	if !inGrid(grid, d.start) || !inGrid(grid, d.end) {
		return set, false
	}

	indices := rectangle(d.start, d.end)
	days := make([]CalendarDay, 0, len(indices))
	for _, i := range indices {
		days = append(days, grid[i])
	}
	return set.ApplyRange(days, d.mode), true
}

// rectangle returns the indices of the inclusive rectangle spanned by two
// corners, row-major. Rows and columns are bounded independently, so a
// diagonal drag selects a block rather than a line.
func rectangle(a, b int) []int {
	aRow, aCol := RowCol(a)
	bRow, bCol := RowCol(b)
	minRow, maxRow := min(aRow, bRow), max(aRow, bRow)
	minCol, maxCol := min(aCol, bCol), max(aCol, bCol)

	out := make([]int, 0, (maxRow-minRow+1)*(maxCol-minCol+1))
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			out = append(out, row*DaysPerWeek+col)
		}
	}
	return out
}

func inGrid(grid []CalendarDay, index int) bool {
	return index >= 0 && index < len(grid)
}

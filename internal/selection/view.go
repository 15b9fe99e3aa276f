package selection

import (
	"github.com/envelope-zero/tracker/internal/types"
	"github.com/google/uuid"
)

// View is a filtered transaction list with its selection.
//
// The selection only has meaning for the filter it was made with, any
// change of the filter clears it.
type View struct {
	filter    Filter
	selection Selection
}

// NewView returns a view with nothing selected.
func NewView(f Filter) *View {
	return &View{filter: f}
}

func (v *View) Filter() Filter {
	return v.filter
}

func (v *View) Selection() Selection {
	return v.selection
}

// SetFilter changes the filter. The selection is cleared if the
// filter changes.
func (v *View) SetFilter(f Filter) {
	if f == v.filter {
		return
	}

	v.filter = f
	v.selection = v.selection.Reset()
}

// SetMonth restricts the filter to the month of the cursor.
func (v *View) SetMonth(c types.MonthCursor) {
	v.SetFilter(v.filter.InMonth(c))
}

func (v *View) Toggle(id uuid.UUID) {
	v.selection = v.selection.Toggle(id)
}

func (v *View) ToggleAll() {
	v.selection = v.selection.ToggleAll()
}

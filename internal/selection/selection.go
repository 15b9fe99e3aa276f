// Package selection implements the selection of transactions in a filtered
// list and the bulk category change applied to it.
package selection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

var ErrInvalidSelection = errors.New("the selection is invalid")

// Mode is the state of a Selection.
type Mode int

const (
	None Mode = iota // Nothing is selected
	Some             // An explicit set of transactions is selected
	All              // Everything matching the filter is selected, loaded or not
)

func (m Mode) String() string {
	switch m {
	case Some:
		return "some"
	case All:
		return "all"
	default:
		return "none"
	}
}

// Selection is a tri-state selection over the transactions matching a filter.
//
// The zero value selects nothing. Only Some carries ids.
type Selection struct {
	mode Mode
	ids  map[uuid.UUID]struct{}
}

// NoneSelected returns an empty selection.
func NoneSelected() Selection {
	return Selection{}
}

// AllSelected returns a selection of everything that matches the filter.
func AllSelected() Selection {
	return Selection{mode: All}
}

// Of returns a selection of the ids. Without ids, nothing is selected.
func Of(ids ...uuid.UUID) Selection {
	if len(ids) == 0 {
		return Selection{}
	}

	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return Selection{mode: Some, ids: set}
}

// Mode returns the state of the selection.
func (s Selection) Mode() Mode {
	return s.mode
}

// IDs returns the explicitly selected ids, sorted.
func (s Selection) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// Contains reports whether the transaction is selected.
func (s Selection) Contains(id uuid.UUID) bool {
	switch s.mode {
	case All:
		return true
	case Some:
		_, ok := s.ids[id]
		return ok
	default:
		return false
	}
}

// Count returns the number of selected transactions out of total matching ones.
func (s Selection) Count(total int64) int64 {
	switch s.mode {
	case All:
		return total
	case Some:
		return int64(len(s.ids))
	default:
		return 0
	}
}

// Toggle flips the selection of a single transaction.
//
// Deselecting one transaction from All deselects everything.
func (s Selection) Toggle(id uuid.UUID) Selection {
	switch s.mode {
	case All:
		return NoneSelected()
	case None:
		return Of(id)
	}

	ids := make([]uuid.UUID, 0, len(s.ids)+1)
	for existing := range s.ids {
		if existing != id {
			ids = append(ids, existing)
		}
	}

	if !s.Contains(id) {
		ids = append(ids, id)
	}

	return Of(ids...)
}

// ToggleAll selects everything, or nothing if everything was selected.
func (s Selection) ToggleAll() Selection {
	if s.mode == All {
		return NoneSelected()
	}
	return AllSelected()
}

// Reset deselects everything.
func (s Selection) Reset() Selection {
	return NoneSelected()
}

type selectionJSON struct {
	Mode string      `json:"mode" example:"some" enums:"none,some,all"`
	IDs  []uuid.UUID `json:"ids"`
}

// MarshalJSON implements the json.Marshaler interface.
func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(selectionJSON{
		Mode: s.mode.String(),
		IDs:  s.IDs(),
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var raw selectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Mode {
	case "", "none":
		if len(raw.IDs) > 0 {
			return fmt.Errorf("%w: ids must not be set when nothing is selected", ErrInvalidSelection)
		}
		*s = NoneSelected()
	case "all":
		if len(raw.IDs) > 0 {
			return fmt.Errorf("%w: ids must not be set when everything is selected", ErrInvalidSelection)
		}
		*s = AllSelected()
	case "some":
		if len(raw.IDs) == 0 {
			return fmt.Errorf("%w: ids must be set when some transactions are selected", ErrInvalidSelection)
		}
		*s = Of(raw.IDs...)
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSelection, raw.Mode)
	}

	return nil
}

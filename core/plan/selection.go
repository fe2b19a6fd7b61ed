package plan

import (
	"github.com/pkg/errors"

	"github.com/makemyfuture/planner/core/catalog"
)

var (
	// errors
	ErrUnknownCourse = errors.New("course not in catalog")
	ErrNotSelected   = errors.New("course not selected")
	ErrInvalidSlot   = errors.New("semester slot out of range")
	ErrInvalidCount  = errors.New("semester count must be at least 1")
)

// ToggleResult reports the membership state a toggle produced.
type ToggleResult struct {
	Code     string `json:"code"`
	Selected bool   `json:"selected"`
}

// SelectionSet is the single source of truth for which courses are selected.
// Surfaces never flip selection state themselves; they call Toggle and react
// to the broadcast.
type SelectionSet struct {
	catalog *catalog.Catalog
	bc      *Broadcaster

	codes []string // insertion order
	set   map[string]struct{}
}

func NewSelectionSet(cat *catalog.Catalog, bc *Broadcaster) *SelectionSet {
	return &SelectionSet{
		catalog: cat,
		bc:      bc,
		set:     make(map[string]struct{}),
	}
}

// Toggle flips membership of code and broadcasts the confirmed change to
// every surface except origin before returning. Unknown codes are rejected
// and leave the set untouched.
func (ss *SelectionSet) Toggle(code, origin string) (ToggleResult, error) {
	if !ss.catalog.Has(code) {
		return ToggleResult{}, errors.Wrap(ErrUnknownCourse, code)
	}

	var selected bool
	if _, ok := ss.set[code]; ok {
		delete(ss.set, code)
		for i, c := range ss.codes {
			if c == code {
				ss.codes = append(ss.codes[:i], ss.codes[i+1:]...)
				break
			}
		}
	} else {
		ss.set[code] = struct{}{}
		ss.codes = append(ss.codes, code)
		selected = true
	}

	ss.bc.publish(Event{Code: code, Selected: selected, Origin: origin})
	return ToggleResult{Code: code, Selected: selected}, nil
}

func (ss *SelectionSet) IsSelected(code string) bool {
	_, ok := ss.set[code]
	return ok
}

// All returns a snapshot of the selected courses in insertion order.
func (ss *SelectionSet) All() []catalog.Course {
	courses := make([]catalog.Course, 0, len(ss.codes))
	for _, code := range ss.codes {
		if course, err := ss.catalog.Lookup(code); err == nil {
			courses = append(courses, course)
		}
	}
	return courses
}

func (ss *SelectionSet) Len() int { return len(ss.codes) }

// Codes returns a snapshot of the selected codes in insertion order.
func (ss *SelectionSet) Codes() []string {
	codes := make([]string, len(ss.codes))
	copy(codes, ss.codes)
	return codes
}

// Reset empties the set without broadcasting; callers re-render from scratch
// after a reset.
func (ss *SelectionSet) Reset() {
	ss.codes = nil
	ss.set = make(map[string]struct{})
}

package plan

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/makemyfuture/planner/core"
	"github.com/makemyfuture/planner/core/schedule"
)

// Bank is the pseudo slot index for selected-but-unscheduled courses.
const Bank = -1

// planObserverID names the plan in broadcaster panic logs. The plan observes
// before any UI surface so that surfaces always re-render from updated
// plan state.
const planObserverID = "semester-plan"

// Slot is one semester column of the plan.
type Slot struct {
	Season string   `json:"season"`
	Year   string   `json:"year"`
	Codes  []string `json:"codes"`
}

// SemesterPlan assigns every selected course to exactly one semester slot or
// the bank. It keeps itself consistent with the selection set by observing
// the broadcaster: a newly selected course lands in the bank, an unselected
// one is removed from wherever it sits.
type SemesterPlan struct {
	selection *SelectionSet

	slots  []Slot
	bank   []string
	placed map[string]int // code -> slot index or Bank

	resizeHandlers []func(count int)
	changeHandlers []func()
}

func NewSemesterPlan(selection *SelectionSet, bc *Broadcaster, conf core.PlannerConfig) *SemesterPlan {
	count := conf.SemesterCount
	if count < 1 {
		count = 1
	}
	p := &SemesterPlan{
		selection: selection,
		placed:    make(map[string]int),
	}
	season, year := conf.StartSeason, conf.StartYear
	for i := 0; i < count; i++ {
		p.slots = append(p.slots, Slot{Season: season, Year: strconv.Itoa(year)})
		season, year = nextTerm(season, year)
	}
	bc.observe(planObserverID, p.onSelectionChanged)
	return p
}

// nextTerm advances one academic term, keeping the cadence of the starting
// season: Fall/Spring plans alternate Fall and Spring, Winter/Summer plans
// alternate Winter and Summer.
func nextTerm(season string, year int) (string, int) {
	switch season {
	case "Fall":
		return "Spring", year + 1
	case "Winter":
		return "Summer", year
	case "Summer":
		return "Winter", year + 1
	default:
		return "Fall", year
	}
}

func (p *SemesterPlan) SemesterCount() int { return len(p.slots) }

// OnResize registers a handler fired after every SetSemesterCount.
func (p *SemesterPlan) OnResize(handler func(count int)) {
	p.resizeHandlers = append(p.resizeHandlers, handler)
}

// OnChange registers a handler fired after every placement change.
func (p *SemesterPlan) OnChange(handler func()) {
	p.changeHandlers = append(p.changeHandlers, handler)
}

func (p *SemesterPlan) changed() {
	for _, handler := range p.changeHandlers {
		handler()
	}
}

// SetSemesterCount resizes the plan to n slots. Courses in removed slots
// migrate to the bank in slot order, so no selection is ever dropped. Growing
// appends empty slots continuing the term progression.
func (p *SemesterPlan) SetSemesterCount(n int) error {
	if n < 1 {
		return errors.Wrapf(ErrInvalidCount, "%d", n)
	}

	switch {
	case n < len(p.slots):
		for i := n; i < len(p.slots); i++ {
			for _, code := range p.slots[i].Codes {
				p.bank = append(p.bank, code)
				p.placed[code] = Bank
			}
		}
		p.slots = p.slots[:n]
	case n > len(p.slots):
		last := p.slots[len(p.slots)-1]
		year, _ := strconv.Atoi(last.Year)
		season := last.Season
		for len(p.slots) < n {
			season, year = nextTerm(season, year)
			p.slots = append(p.slots, Slot{Season: season, Year: strconv.Itoa(year)})
		}
	}

	for _, handler := range p.resizeHandlers {
		handler(n)
	}
	return nil
}

// Place moves code into the slot at index, or into the bank when index is
// Bank. Placing a course where it already sits succeeds as a no-op.
func (p *SemesterPlan) Place(code string, index int) error {
	if !p.selection.IsSelected(code) {
		return errors.Wrap(ErrNotSelected, code)
	}
	if index != Bank && (index < 0 || index >= len(p.slots)) {
		return errors.Wrapf(ErrInvalidSlot, "%d", index)
	}
	if current, ok := p.placed[code]; ok && current == index {
		return nil
	}

	p.remove(code)
	p.insert(code, index)
	p.changed()
	return nil
}

// SlotOf returns the slot index holding code (Bank for banked courses).
func (p *SemesterPlan) SlotOf(code string) (int, bool) {
	index, ok := p.placed[code]
	return index, ok
}

// Slots returns a snapshot of the semester columns.
func (p *SemesterPlan) Slots() []Slot {
	slots := make([]Slot, len(p.slots))
	for i, s := range p.slots {
		codes := make([]string, len(s.Codes))
		copy(codes, s.Codes)
		slots[i] = Slot{Season: s.Season, Year: s.Year, Codes: codes}
	}
	return slots
}

// Bank returns a snapshot of the unscheduled course codes.
func (p *SemesterPlan) Bank() []string {
	bank := make([]string, len(p.bank))
	copy(bank, p.bank)
	return bank
}

// Placed returns the codes placed in actual semester slots, bank excluded,
// in slot order.
func (p *SemesterPlan) Placed() []string {
	var codes []string
	for _, s := range p.slots {
		codes = append(codes, s.Codes...)
	}
	return codes
}

func (p *SemesterPlan) onSelectionChanged(evt Event) {
	if evt.Selected {
		if _, ok := p.placed[evt.Code]; !ok {
			p.insert(evt.Code, Bank)
		}
		return
	}
	p.remove(evt.Code)
	delete(p.placed, evt.Code)
}

func (p *SemesterPlan) insert(code string, index int) {
	if index == Bank {
		p.bank = append(p.bank, code)
	} else {
		p.slots[index].Codes = append(p.slots[index].Codes, code)
	}
	p.placed[code] = index
}

func (p *SemesterPlan) remove(code string) {
	index, ok := p.placed[code]
	if !ok {
		return
	}
	if index == Bank {
		p.bank = deleteCode(p.bank, code)
		return
	}
	p.slots[index].Codes = deleteCode(p.slots[index].Codes, code)
}

func deleteCode(codes []string, code string) []string {
	for i, c := range codes {
		if c == code {
			return append(codes[:i], codes[i+1:]...)
		}
	}
	return codes
}

// Serialize converts the plan's semester columns to the persisted shape.
// Banked courses are reported separately by Bank.
func (p *SemesterPlan) Serialize() []schedule.Semester {
	sems := make([]schedule.Semester, len(p.slots))
	for i, s := range p.slots {
		classes := make([]string, len(s.Codes))
		copy(classes, s.Codes)
		sems[i] = schedule.Semester{Season: s.Season, Year: s.Year, Classes: classes}
	}
	return sems
}

// Deserialize replaces the plan and selection contents with those of a
// stored schedule. Codes absent from the catalog are rejected and leave the
// plan untouched.
func (p *SemesterPlan) Deserialize(sched schedule.Schedule) error {
	seen := make(map[string]struct{})
	check := func(code string) error {
		if !p.selection.catalog.Has(code) {
			return errors.Wrap(ErrUnknownCourse, code)
		}
		if _, dup := seen[code]; dup {
			return errors.Errorf("duplicate course %s in schedule", code)
		}
		seen[code] = struct{}{}
		return nil
	}
	for _, sem := range sched.Semesters {
		for _, code := range sem.Classes {
			if err := check(code); err != nil {
				return err
			}
		}
	}
	for _, code := range sched.Bank {
		if err := check(code); err != nil {
			return err
		}
	}

	p.selection.Reset()
	p.bank = nil
	p.placed = make(map[string]int)

	count := len(sched.Semesters)
	if count < 1 {
		count = 1
	}
	slots := make([]Slot, 0, count)
	for _, sem := range sched.Semesters {
		slots = append(slots, Slot{Season: sem.Season, Year: sem.Year})
	}
	if len(slots) == 0 {
		slots = append(slots, p.slots[0])
		slots[0].Codes = nil
	}
	p.slots = slots

	for i, sem := range sched.Semesters {
		for _, code := range sem.Classes {
			p.selection.set[code] = struct{}{}
			p.selection.codes = append(p.selection.codes, code)
			p.insert(code, i)
		}
	}
	for _, code := range sched.Bank {
		p.selection.set[code] = struct{}{}
		p.selection.codes = append(p.selection.codes, code)
		p.insert(code, Bank)
	}
	return nil
}

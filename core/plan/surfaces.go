package plan

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/makemyfuture/planner/core/catalog"
)

// The UI surfaces render independent views over the selection set and the
// semester plan. None of them owns selection state: each one toggles through
// the SelectionSet, updates its own visuals optimistically, and relies on
// the broadcast (with its own echo suppressed) to stay consistent with the
// other surfaces.

// CatalogMenu is the browse-by-division checkbox list.
type CatalogMenu struct {
	id        string
	catalog   *catalog.Catalog
	selection *SelectionSet

	division string
	search   string
	checked  map[string]bool
}

func NewCatalogMenu(id string, cat *catalog.Catalog, ss *SelectionSet, bc *Broadcaster) *CatalogMenu {
	m := &CatalogMenu{
		id:        id,
		catalog:   cat,
		selection: ss,
		checked:   make(map[string]bool),
	}
	bc.Subscribe(id, func(evt Event) { m.checked[evt.Code] = evt.Selected })
	return m
}

// SetDivision narrows the menu to one division; empty shows everything.
func (m *CatalogMenu) SetDivision(code string) { m.division = code }

func (m *CatalogMenu) SetSearch(term string) { m.search = term }

// Visible returns the courses the menu currently lists.
func (m *CatalogMenu) Visible() []catalog.Course {
	var it *catalog.CourseIter
	if m.division != "" {
		it = m.catalog.CoursesIn(m.division)
	} else {
		it = m.catalog.Search(m.search)
	}
	if m.division != "" && m.search != "" {
		// narrow the division listing by the search term
		all := it.Collect()
		matched := make(map[string]struct{})
		for _, c := range m.catalog.Search(m.search).Collect() {
			matched[c.Code()] = struct{}{}
		}
		var courses []catalog.Course
		for _, c := range all {
			if _, ok := matched[c.Code()]; ok {
				courses = append(courses, c)
			}
		}
		return courses
	}
	return it.Collect()
}

func (m *CatalogMenu) Checked(code string) bool { return m.checked[code] }

// Sync rebuilds the checkbox state from the selection set, for use after a
// schedule load or reset bypasses the broadcaster.
func (m *CatalogMenu) Sync() {
	m.checked = make(map[string]bool)
	for _, code := range m.selection.Codes() {
		m.checked[code] = true
	}
}

// Toggle flips a checkbox optimistically, then asks the selection set to
// confirm. A rejected toggle reverts the checkbox.
func (m *CatalogMenu) Toggle(code string) (ToggleResult, error) {
	m.checked[code] = !m.checked[code]
	res, err := m.selection.Toggle(code, m.id)
	if err != nil {
		m.checked[code] = !m.checked[code]
		return ToggleResult{}, err
	}
	m.checked[code] = res.Selected
	return res, nil
}

// RequirementTable is the requirement-area button grid. A course that sits
// in several areas shows as selected in all of them, because selection is
// unified in the one SelectionSet regardless of which area's button was hit.
type RequirementTable struct {
	id        string
	catalog   *catalog.Catalog
	selection *SelectionSet
}

func NewRequirementTable(id string, cat *catalog.Catalog, ss *SelectionSet, bc *Broadcaster) *RequirementTable {
	t := &RequirementTable{id: id, catalog: cat, selection: ss}
	bc.Subscribe(id, func(Event) {}) // renders straight off the selection set
	return t
}

// Areas lists the requirement areas with their member courses.
func (t *RequirementTable) Areas() []catalog.RequirementArea {
	return t.catalog.Areas()
}

func (t *RequirementTable) Selected(code string) bool {
	return t.selection.IsSelected(code)
}

// SelectedIn returns the selected codes belonging to an area, sorted for
// stable rendering.
func (t *RequirementTable) SelectedIn(areaCode string) []string {
	area, err := t.catalog.Area(areaCode)
	if err != nil {
		return nil
	}
	var codes []string
	for _, code := range area.Courses {
		if t.selection.IsSelected(code) {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

func (t *RequirementTable) Toggle(code string) (ToggleResult, error) {
	return t.selection.Toggle(code, t.id)
}

// SemesterGrid is the drag-and-drop schedule builder surface.
type SemesterGrid struct {
	id        string
	plan      *SemesterPlan
	selection *SelectionSet
}

func NewSemesterGrid(id string, p *SemesterPlan, ss *SelectionSet, bc *Broadcaster) *SemesterGrid {
	g := &SemesterGrid{id: id, plan: p, selection: ss}
	bc.Subscribe(id, func(Event) {}) // renders straight off the plan
	return g
}

func (g *SemesterGrid) Columns() []Slot { return g.plan.Slots() }

func (g *SemesterGrid) Bank() []string { return g.plan.Bank() }

// Move drops a course card onto a semester column.
func (g *SemesterGrid) Move(code string, slot int) error {
	return g.plan.Place(code, slot)
}

// MoveToBank drags a course card back off the grid.
func (g *SemesterGrid) MoveToBank(code string) error {
	return g.plan.Place(code, Bank)
}

// Remove unselects a course from the grid's trash control.
func (g *SemesterGrid) Remove(code string) error {
	if !g.selection.IsSelected(code) {
		return errors.Wrap(ErrNotSelected, code)
	}
	_, err := g.selection.Toggle(code, g.id)
	return err
}

package plan

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/makemyfuture/planner/core"
	"github.com/makemyfuture/planner/core/catalog"
	"github.com/makemyfuture/planner/core/schedule"
)

// Options configures a new planning session.
type Options struct {
	Planner core.PlannerConfig
	Logger  core.Logger
}

// Session is one active schedule-editing context: a catalog view plus its
// own selection set, broadcaster, plan and analytics. Sessions share the
// catalog but nothing else, so independent sessions never need locking.
type Session struct {
	ID string

	Catalog     *catalog.Catalog
	Broadcaster *Broadcaster
	Selection   *SelectionSet
	Plan        *SemesterPlan
	Analytics   *AnalyticsView

	Menu  *CatalogMenu
	Table *RequirementTable
	Grid  *SemesterGrid
}

// NewSession wires up the full triple and its surfaces. The plan and
// analytics observe the broadcaster ahead of any surface, so surfaces see
// events only after the plan has absorbed them.
func NewSession(cat *catalog.Catalog, opts Options) *Session {
	bc := NewBroadcaster(opts.Logger)
	ss := NewSelectionSet(cat, bc)
	p := NewSemesterPlan(ss, bc, opts.Planner)
	av := NewAnalyticsView(p, cat, bc, opts.Planner.RequiredUnits)

	s := &Session{
		ID:          uuid.New().String(),
		Catalog:     cat,
		Broadcaster: bc,
		Selection:   ss,
		Plan:        p,
		Analytics:   av,
	}
	s.Menu = NewCatalogMenu("catalog-menu", cat, ss, bc)
	s.Table = NewRequirementTable("requirement-table", cat, ss, bc)
	s.Grid = NewSemesterGrid("semester-grid", p, ss, bc)
	return s
}

// ExportSchedule produces the persistable document for the current plan.
func (s *Session) ExportSchedule(name string, majors, universities []string) schedule.Schedule {
	return schedule.Schedule{
		Name:            name,
		Majors:          majors,
		Universities:    universities,
		Semesters:       s.Plan.Serialize(),
		Bank:            s.Plan.Bank(),
		CreditsRequired: s.Analytics.Stats().Required,
		CreatedAt:       time.Now().UTC(),
	}
}

// ExportJSON renders the current plan as a downloadable schedule document,
// independent of any server round-trip.
func (s *Session) ExportJSON(name string, majors, universities []string) ([]byte, error) {
	data, err := json.MarshalIndent(s.ExportSchedule(name, majors, universities), "", "  ")
	return data, errors.Wrap(err, "exporting schedule")
}

// LoadSchedule replaces the session contents with a stored schedule.
func (s *Session) LoadSchedule(sched schedule.Schedule) error {
	if err := s.Plan.Deserialize(sched); err != nil {
		return err
	}
	if sched.CreditsRequired > 0 {
		s.Analytics.SetRequiredUnits(sched.CreditsRequired)
	} else {
		s.Analytics.Refresh()
	}
	s.Menu.Sync()
	return nil
}

// Reset empties the selection and rebuilds the plan at its current size.
func (s *Session) Reset() {
	empty := schedule.Schedule{Semesters: s.Plan.Serialize()}
	for i := range empty.Semesters {
		empty.Semesters[i].Classes = nil
	}
	_ = s.Plan.Deserialize(empty)
	s.Analytics.Refresh()
	s.Menu.Sync()
}

package plan

import "github.com/makemyfuture/planner/core/catalog"

// Stats summarizes progress toward the unit requirement. Banked courses are
// not yet scheduled and do not count toward Met.
type Stats struct {
	Required float64 `json:"required"`
	Met      float64 `json:"met"`
	Missing  float64 `json:"missing"`
}

// Recompute derives Stats from the current plan. Pure function of its
// inputs; codes missing from the catalog contribute nothing.
func Recompute(p *SemesterPlan, cat *catalog.Catalog, requiredUnits float64) Stats {
	var met float64
	for _, code := range p.Placed() {
		if course, err := cat.Lookup(code); err == nil {
			met += course.Units
		}
	}
	missing := requiredUnits - met
	if missing < 0 {
		missing = 0
	}
	return Stats{Required: requiredUnits, Met: met, Missing: missing}
}

// AnalyticsView caches the latest Stats and refreshes them on every
// selection change and plan resize.
type AnalyticsView struct {
	plan     *SemesterPlan
	catalog  *catalog.Catalog
	required float64
	stats    Stats
}

func NewAnalyticsView(p *SemesterPlan, cat *catalog.Catalog, bc *Broadcaster, requiredUnits float64) *AnalyticsView {
	v := &AnalyticsView{plan: p, catalog: cat, required: requiredUnits}
	bc.observe("analytics", func(Event) { v.Refresh() })
	p.OnResize(func(int) { v.Refresh() })
	p.OnChange(v.Refresh)
	v.Refresh()
	return v
}

func (v *AnalyticsView) Refresh() {
	v.stats = Recompute(v.plan, v.catalog, v.required)
}

func (v *AnalyticsView) Stats() Stats { return v.stats }

func (v *AnalyticsView) SetRequiredUnits(units float64) {
	v.required = units
	v.Refresh()
}

package schedule

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/makemyfuture/planner/core"
)

// Edit operation types.
const (
	EditAdd    = "ADD"
	EditRemove = "REMOVE"
)

// Semester is one term of a schedule: a season/year label and the course
// codes placed in it.
type Semester struct {
	Season  string   `json:"season"`
	Year    string   `json:"year"`
	Classes []string `json:"classes"`
}

func (s Semester) Matches(season, year string) bool {
	return s.Season == season && s.Year == year
}

// Schedule is the persisted planning document owned by a user. Bank holds
// selected-but-unscheduled course codes so that an exported plan can be
// re-imported without loss.
type Schedule struct {
	ID              string     `json:"id" db:"id"`
	UserID          string     `json:"user_id" db:"user_id"`
	Name            string     `json:"name" db:"name"`
	Majors          []string   `json:"majors"`
	Universities    []string   `json:"universities"`
	Semesters       []Semester `json:"semesters"`
	Bank            []string   `json:"bank,omitempty"`
	CreditsRequired float64    `json:"credits_required" db:"credits_required"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"` // UTC
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"` // UTC
}

// Semester returns the semester matching season/year, if any.
func (s *Schedule) Semester(season, year string) (*Semester, bool) {
	for i := range s.Semesters {
		if s.Semesters[i].Matches(season, year) {
			return &s.Semesters[i], true
		}
	}
	return nil, false
}

// Contains reports whether code is placed in any semester or the bank.
func (s *Schedule) Contains(code string) bool {
	for _, sem := range s.Semesters {
		for _, c := range sem.Classes {
			if c == code {
				return true
			}
		}
	}
	for _, c := range s.Bank {
		if c == code {
			return true
		}
	}
	return false
}

// NewSchedule contains information needed to create a new, empty Schedule.
type NewSchedule struct {
	Name         string   `json:"name" validate:"required,max=255"`
	Majors       []string `json:"majors" validate:"required,min=1,dive,required"`
	Universities []string `json:"universities" validate:"required,min=1,dive,required"`
}

func (ns *NewSchedule) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

// Edit describes a single ADD/REMOVE of a course code in one semester of a
// named schedule.
type Edit struct {
	Type   string `json:"type" validate:"required,oneof=ADD REMOVE"`
	Name   string `json:"name" validate:"required"`
	Code   string `json:"code" validate:"required"`
	Season string `json:"season" validate:"required,season"`
	Year   string `json:"year" validate:"required,len=4,numeric"`
}

func (e *Edit) Validate(validate *validator.Validate) error {
	e.Name = core.CleanString(e.Name)
	e.Code = core.CleanString(e.Code)
	e.Season = core.CleanString(e.Season)
	e.Year = core.CleanString(e.Year)
	return validate.Struct(e)
}

// QueryFilter selects schedules across users for batch fetching.
// Fields combine with AND; zero values are ignored.
type QueryFilter struct {
	Search       string    `json:"search"`       // case-insensitive match on Name
	Majors       []string  `json:"majors"`       // any-of
	Universities []string  `json:"universities"` // any-of
	CreatedFrom  time.Time `json:"created_from"`
	CreatedTo    time.Time `json:"created_to"`

	Orderings []core.DBOrdering `json:"-"`
	Page      int               `json:"page"`
	PageSize  int               `json:"page_size"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if qf.Page < 1 {
		qf.Page = 1
	}
	if qf.PageSize < 1 || qf.PageSize > 100 {
		qf.PageSize = 20
	}
}

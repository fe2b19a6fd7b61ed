package schedule

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound   = errors.New("schedule not found")
	ErrNameExists = errors.New("a schedule with this name already exists")
)

type (
	Repository interface {
		CreateSchedule(sched Schedule) (Schedule, error)
		GetSchedule(userID, name string) (Schedule, error)
		QueryUserSchedules(userID string) ([]Schedule, error)
		UpdateSchedule(sched Schedule) (Schedule, error)
		DeleteSchedule(userID, name string) error
		// FilterSchedules applies AND operation on available QueryFilter fields.
		FilterSchedules(filter QueryFilter) ([]Schedule, error)
	}

	ServiceInterface interface {
		Create(userID string, ns NewSchedule) (Schedule, error)
		Get(userID, name string) (Schedule, error)
		List(userID string) ([]Schedule, error)
		Save(userID string, sched Schedule) (Schedule, error)
		Delete(userID, name string) error
		Edit(userID string, edit Edit) (Schedule, error)
		Filter(filter QueryFilter) ([]Schedule, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Create(userID string, ns NewSchedule) (Schedule, error) {
	if _, err := svc.repo.GetSchedule(userID, ns.Name); err == nil {
		return Schedule{}, ErrNameExists
	} else if errors.Cause(err) != ErrNotFound {
		return Schedule{}, errors.Wrap(err, "checking schedule name")
	}

	now := time.Now().UTC()
	sched := Schedule{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         ns.Name,
		Majors:       ns.Majors,
		Universities: ns.Universities,
		Semesters:    []Semester{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateSchedule(sched)
}

func (svc *service) Get(userID, name string) (Schedule, error) {
	return svc.repo.GetSchedule(userID, name)
}

func (svc *service) List(userID string) ([]Schedule, error) {
	return svc.repo.QueryUserSchedules(userID)
}

// Save upserts a full schedule document under its name, as posted by the
// builder's export.
func (svc *service) Save(userID string, sched Schedule) (Schedule, error) {
	now := time.Now().UTC()
	sched.UserID = userID
	sched.UpdatedAt = now

	existing, err := svc.repo.GetSchedule(userID, sched.Name)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Schedule{}, errors.Wrap(err, "checking existing schedule")
		}
		sched.ID = uuid.New().String()
		sched.CreatedAt = now
		return svc.repo.CreateSchedule(sched)
	}

	sched.ID = existing.ID
	sched.CreatedAt = existing.CreatedAt
	return svc.repo.UpdateSchedule(sched)
}

func (svc *service) Delete(userID, name string) error {
	return svc.repo.DeleteSchedule(userID, name)
}

// Edit adds or removes a single course code in one semester of a stored
// schedule. Adding to a semester the schedule does not have yet appends it;
// re-adding a present code and removing an absent one are no-ops.
func (svc *service) Edit(userID string, edit Edit) (Schedule, error) {
	sched, err := svc.repo.GetSchedule(userID, edit.Name)
	if err != nil {
		return Schedule{}, err
	}

	switch edit.Type {
	case EditAdd:
		sem, ok := sched.Semester(edit.Season, edit.Year)
		if !ok {
			sched.Semesters = append(sched.Semesters, Semester{Season: edit.Season, Year: edit.Year})
			sem = &sched.Semesters[len(sched.Semesters)-1]
		}
		if !sched.Contains(edit.Code) {
			sem.Classes = append(sem.Classes, edit.Code)
		}
	case EditRemove:
		if sem, ok := sched.Semester(edit.Season, edit.Year); ok {
			for i, code := range sem.Classes {
				if code == edit.Code {
					sem.Classes = append(sem.Classes[:i], sem.Classes[i+1:]...)
					break
				}
			}
		}
	default:
		return Schedule{}, errors.Errorf("unknown edit type %q", edit.Type)
	}

	sched.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSchedule(sched)
}

func (svc *service) Filter(filter QueryFilter) ([]Schedule, error) {
	filter.Clean()
	return svc.repo.FilterSchedules(filter)
}

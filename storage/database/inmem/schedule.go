package inmemdb

import (
	"sort"
	"strings"

	"github.com/makemyfuture/planner/core/schedule"
)

type scheduleRepository struct {
	db *scheduleTable
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db.schedule}
}

func (repo *scheduleRepository) query() []schedule.Schedule {
	scheds := make([]schedule.Schedule, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		scheds = append(scheds, *s)
	}
	sort.Slice(scheds, func(i, j int) bool { return scheds[i].CreatedAt.Before(scheds[j].CreatedAt) })
	return scheds
}

func (repo *scheduleRepository) CreateSchedule(sched schedule.Schedule) (schedule.Schedule, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[sched.ID] = &sched
	return sched, nil
}

func (repo *scheduleRepository) GetSchedule(userID, name string) (schedule.Schedule, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sched := range repo.db.table {
		if sched.UserID == userID && sched.Name == name {
			return *sched, nil
		}
	}
	return schedule.Schedule{}, schedule.ErrNotFound
}

func (repo *scheduleRepository) QueryUserSchedules(userID string) ([]schedule.Schedule, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var scheds []schedule.Schedule
	for _, sched := range repo.query() {
		if sched.UserID == userID {
			scheds = append(scheds, sched)
		}
	}
	return scheds, nil
}

func (repo *scheduleRepository) UpdateSchedule(sched schedule.Schedule) (schedule.Schedule, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[sched.ID]; !ok {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	repo.db.table[sched.ID] = &sched
	return sched, nil
}

func (repo *scheduleRepository) DeleteSchedule(userID, name string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, sched := range repo.db.table {
		if sched.UserID == userID && sched.Name == name {
			delete(repo.db.table, id)
			return nil
		}
	}
	return schedule.ErrNotFound
}

func (repo *scheduleRepository) FilterSchedules(filter schedule.QueryFilter) ([]schedule.Schedule, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	scheds := repo.query()

	if filter.Search != "" {
		var filtered []schedule.Schedule
		for _, s := range scheds {
			if strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Search)) {
				filtered = append(filtered, s)
			}
		}
		scheds = filtered
	}
	if scheds != nil && len(filter.Majors) > 0 {
		var filtered []schedule.Schedule
		for _, s := range scheds {
			if containsAny(s.Majors, filter.Majors) {
				filtered = append(filtered, s)
			}
		}
		scheds = filtered
	}
	if scheds != nil && len(filter.Universities) > 0 {
		var filtered []schedule.Schedule
		for _, s := range scheds {
			if containsAny(s.Universities, filter.Universities) {
				filtered = append(filtered, s)
			}
		}
		scheds = filtered
	}
	if scheds != nil && !filter.CreatedFrom.IsZero() {
		var filtered []schedule.Schedule
		timeUTC := filter.CreatedFrom.UTC()
		for _, s := range scheds {
			if s.CreatedAt.Equal(timeUTC) || s.CreatedAt.After(timeUTC) {
				filtered = append(filtered, s)
			}
		}
		scheds = filtered
	}
	if scheds != nil && !filter.CreatedTo.IsZero() {
		var filtered []schedule.Schedule
		timeUTC := filter.CreatedTo.UTC()
		for _, s := range scheds {
			if s.CreatedAt.Before(timeUTC) || s.CreatedAt.Equal(timeUTC) {
				filtered = append(filtered, s)
			}
		}
		scheds = filtered
	}

	// paginate
	if filter.Page < 1 || filter.PageSize < 1 {
		return scheds, nil
	}
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(scheds) {
		return nil, nil
	}
	end := start + filter.PageSize
	if end > len(scheds) {
		end = len(scheds)
	}
	return scheds[start:end], nil
}

func containsAny(haystack, needles []string) bool {
	for _, h := range haystack {
		for _, n := range needles {
			if strings.EqualFold(h, n) {
				return true
			}
		}
	}
	return false
}

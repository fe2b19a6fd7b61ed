package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/makemyfuture/planner/core/schedule"
	"github.com/makemyfuture/planner/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	uname, email, pwd string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateSchedule(
	t *testing.T,
	repo schedule.Repository,
	userID, name string,
	majors, universities []string,
	semesters []schedule.Semester,
	createdAt ...time.Time,
) schedule.Schedule {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	sched := schedule.Schedule{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         name,
		Majors:       majors,
		Universities: universities,
		Semesters:    semesters,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	}
	sched, err := repo.CreateSchedule(sched)
	if err != nil {
		t.Fatalf("createSchedule() failed: %v", err)
	}
	return sched
}

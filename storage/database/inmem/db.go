package inmemdb

import (
	"sync"

	"github.com/makemyfuture/planner/core/schedule"
	"github.com/makemyfuture/planner/core/user"
)

type (
	DB struct {
		user     *userTable
		schedule *scheduleTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	scheduleTable struct {
		sync.RWMutex
		table map[string]*schedule.Schedule
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		schedule: &scheduleTable{table: make(map[string]*schedule.Schedule)},
	}
	return db, nil
}

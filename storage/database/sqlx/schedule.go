package sqlxdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/makemyfuture/planner/core/schedule"
)

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sql.DB) schedule.Repository {
	return &scheduleRepository{db: sqlx.NewDb(db, "postgres")}
}

type dbSchedule struct {
	ID              string         `db:"id"`
	UserID          string         `db:"user_id"`
	Name            string         `db:"name"`
	Majors          types.JSONText `db:"majors"`
	Universities    types.JSONText `db:"universities"`
	Semesters       types.JSONText `db:"semesters"`
	Bank            types.JSONText `db:"bank"`
	CreditsRequired float64        `db:"credits_required"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (ds dbSchedule) toSchedule() (schedule.Schedule, error) {
	sched := schedule.Schedule{
		ID:              ds.ID,
		UserID:          ds.UserID,
		Name:            ds.Name,
		CreditsRequired: ds.CreditsRequired,
		CreatedAt:       ds.CreatedAt,
		UpdatedAt:       ds.UpdatedAt,
	}
	for _, pair := range []struct {
		src types.JSONText
		dst interface{}
	}{
		{ds.Majors, &sched.Majors},
		{ds.Universities, &sched.Universities},
		{ds.Semesters, &sched.Semesters},
		{ds.Bank, &sched.Bank},
	} {
		if len(pair.src) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.src, pair.dst); err != nil {
			return schedule.Schedule{}, errors.Wrap(err, "decoding schedule document")
		}
	}
	return sched, nil
}

func toDBSchedule(sched schedule.Schedule) (dbSchedule, error) {
	ds := dbSchedule{
		ID:              sched.ID,
		UserID:          sched.UserID,
		Name:            sched.Name,
		CreditsRequired: sched.CreditsRequired,
		CreatedAt:       sched.CreatedAt,
		UpdatedAt:       sched.UpdatedAt,
	}
	for _, pair := range []struct {
		src interface{}
		dst *types.JSONText
	}{
		{emptySlice(sched.Majors), &ds.Majors},
		{emptySlice(sched.Universities), &ds.Universities},
		{sched.Semesters, &ds.Semesters},
		{emptySlice(sched.Bank), &ds.Bank},
	} {
		data, err := json.Marshal(pair.src)
		if err != nil {
			return dbSchedule{}, errors.Wrap(err, "encoding schedule document")
		}
		*pair.dst = data
	}
	if ds.Semesters == nil || string(ds.Semesters) == "null" {
		ds.Semesters = types.JSONText("[]")
	}
	return ds, nil
}

func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (repo *scheduleRepository) CreateSchedule(sched schedule.Schedule) (schedule.Schedule, error) {
	ds, err := toDBSchedule(sched)
	if err != nil {
		return schedule.Schedule{}, err
	}
	query := `
		INSERT INTO schedule (id, user_id, name, majors, universities, semesters, bank, credits_required, created_at, updated_at)
		VALUES (:id, :user_id, :name, :majors, :universities, :semesters, :bank, :credits_required, :created_at, :updated_at)`
	if _, err = repo.db.NamedExec(query, ds); err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "creating schedule")
	}
	return sched, nil
}

func (repo *scheduleRepository) GetSchedule(userID, name string) (schedule.Schedule, error) {
	var ds dbSchedule
	err := repo.db.Get(&ds, `SELECT * FROM schedule WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return schedule.Schedule{}, schedule.ErrNotFound
		}
		return schedule.Schedule{}, errors.Wrap(err, "getting schedule")
	}
	return ds.toSchedule()
}

func (repo *scheduleRepository) QueryUserSchedules(userID string) ([]schedule.Schedule, error) {
	var rows []dbSchedule
	err := repo.db.Select(&rows, `SELECT * FROM schedule WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying schedules")
	}
	return toSchedules(rows)
}

func (repo *scheduleRepository) UpdateSchedule(sched schedule.Schedule) (schedule.Schedule, error) {
	ds, err := toDBSchedule(sched)
	if err != nil {
		return schedule.Schedule{}, err
	}
	query := `
		UPDATE schedule
		SET name             = :name,
		    majors           = :majors,
		    universities     = :universities,
		    semesters        = :semesters,
		    bank             = :bank,
		    credits_required = :credits_required,
		    updated_at       = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExec(query, ds)
	if err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "updating schedule")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	return sched, nil
}

func (repo *scheduleRepository) DeleteSchedule(userID, name string) error {
	res, err := repo.db.Exec(`DELETE FROM schedule WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		return errors.Wrap(err, "deleting schedule")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

func (repo *scheduleRepository) FilterSchedules(filter schedule.QueryFilter) ([]schedule.Schedule, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		conds = append(conds, fmt.Sprintf("name ILIKE %s", arg("%"+filter.Search+"%")))
	}
	if len(filter.Majors) > 0 {
		data, _ := json.Marshal(filter.Majors)
		conds = append(conds, fmt.Sprintf("majors ?| array(SELECT jsonb_array_elements_text(%s::jsonb))", arg(string(data))))
	}
	if len(filter.Universities) > 0 {
		data, _ := json.Marshal(filter.Universities)
		conds = append(conds, fmt.Sprintf("universities ?| array(SELECT jsonb_array_elements_text(%s::jsonb))", arg(string(data))))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, fmt.Sprintf("created_at >= %s", arg(filter.CreatedFrom.UTC())))
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, fmt.Sprintf("created_at <= %s", arg(filter.CreatedTo.UTC())))
	}

	query := `SELECT * FROM schedule`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	orderBy := "created_at"
	if len(filter.Orderings) > 0 {
		parts := make([]string, 0, len(filter.Orderings))
		for _, o := range filter.Orderings {
			parts = append(parts, o.String())
		}
		orderBy = strings.Join(parts, ", ")
	}
	query += " ORDER BY " + orderBy

	if filter.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", arg(filter.PageSize), arg((filter.Page-1)*filter.PageSize))
	}

	var rows []dbSchedule
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering schedules")
	}
	return toSchedules(rows)
}

func toSchedules(rows []dbSchedule) ([]schedule.Schedule, error) {
	scheds := make([]schedule.Schedule, 0, len(rows))
	for _, row := range rows {
		sched, err := row.toSchedule()
		if err != nil {
			return nil, err
		}
		scheds = append(scheds, sched)
	}
	return scheds, nil
}

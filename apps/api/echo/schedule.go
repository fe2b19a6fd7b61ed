package echoapi

import (
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/makemyfuture/planner/core"
	"github.com/makemyfuture/planner/core/schedule"
	"github.com/makemyfuture/planner/core/user"
)

// scheduleOrderFields are the columns the batch endpoint may sort by.
var scheduleOrderFields = []string{"name", "created_at", "credits_required"}

type scheduleApi struct {
	svc      schedule.ServiceInterface
	userSvc  user.ServiceInterface
	validate *validator.Validate
}

func registerScheduleAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc schedule.ServiceInterface,
	userSvc user.ServiceInterface,
	validate *validator.Validate,
) {
	api := scheduleApi{
		svc:      svc,
		userSvc:  userSvc,
		validate: validate,
	}

	sg := g.Group("/schedules", jwt, activeUserMiddleware(userSvc))
	sg.GET("", api.list)
	sg.POST("", api.create)
	sg.POST("/batch", api.batch)

	// detail endpoints
	dg := sg.Group("/:name")
	dg.GET("", api.retrieve)
	dg.PUT("", api.save)
	dg.DELETE("", api.destroy)
	dg.POST("/edit", api.edit)
}

// pathName extracts the schedule name from the URL, undoing the path escaping
// the client applied to names with spaces.
func pathName(ctx echo.Context) string {
	name := ctx.Param("name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return core.CleanString(name)
}

// Handlers

func (api *scheduleApi) list(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	scheds, err := api.svc.List(usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing schedules")
	}
	if scheds == nil {
		scheds = []schedule.Schedule{}
	}
	return ctx.JSON(http.StatusOK, scheds)
}

func (api *scheduleApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data schedule.NewSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchedule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sched, err := api.svc.Create(usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating schedule")
	}
	return ctx.JSON(http.StatusCreated, sched)
}

// batch fetches schedules across users for the browse page.
func (api *scheduleApi) batch(ctx echo.Context) error {
	var filter schedule.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, scheduleOrderFields...)
	filter.Orderings = ordering.Orderings

	scheds, err := api.svc.Filter(filter)
	if err != nil {
		return errors.Wrap(err, "filtering schedules")
	}
	if scheds == nil {
		scheds = []schedule.Schedule{}
	}
	return ctx.JSON(http.StatusOK, scheds)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sched, err := api.svc.Get(usr.ID, pathName(ctx))
	if err != nil {
		return errors.Wrap(err, "getting schedule")
	}
	return ctx.JSON(http.StatusOK, sched)
}

// save upserts the full schedule document exported by the builder.
func (api *scheduleApi) save(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var sched schedule.Schedule
	if err := ctx.Bind(&sched); err != nil {
		return errors.Wrap(err, "binding to Schedule")
	}
	sched.Name = pathName(ctx)
	if sched.Name == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}

	sched, err = api.svc.Save(usr.ID, sched)
	if err != nil {
		return errors.Wrap(err, "saving schedule")
	}
	return ctx.JSON(http.StatusOK, sched)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Delete(usr.ID, pathName(ctx)); err != nil {
		return errors.Wrap(err, "deleting schedule")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// edit applies a single ADD/REMOVE of a course in one semester of a stored
// schedule.
func (api *scheduleApi) edit(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data schedule.Edit
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Edit")
	}
	data.Name = pathName(ctx)
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sched, err := api.svc.Edit(usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "editing schedule")
	}
	return ctx.JSON(http.StatusOK, sched)
}

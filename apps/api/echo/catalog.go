package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/makemyfuture/planner/core"
	"github.com/makemyfuture/planner/core/catalog"
	appfs "github.com/makemyfuture/planner/fs"
)

const majorCollegesAsset = "assets/major_colleges.json"

// Query types accepted by the catalog query endpoint.
const (
	QueryAreas     = "AREAS"
	QueryDivisions = "DIVISIONS"
	QueryClasses   = "CLASSES"
	QueryClass     = "CLASS"
	QuerySearch    = "SEARCH"
)

type catalogApi struct {
	loader *catalog.Loader
}

func registerCatalogAPI(g *echo.Group, loader *catalog.Loader) {
	api := catalogApi{loader: loader}

	cg := g.Group("/catalog")
	cg.POST("/query", api.query)
	cg.GET("/major-colleges", api.majorColleges)
}

// Handlers

// query serves the catalog browse requests of the builder UI. While the
// catalog document is still being fetched it answers 503 rather than serving
// partial data.
func (api *catalogApi) query(ctx echo.Context) error {
	cat, err := api.loader.Catalog()
	if err != nil {
		return errors.Wrap(err, "getting catalog")
	}

	var data CatalogQueryRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CatalogQueryRequest")
	}
	data.Type = core.CleanString(data.Type)
	data.Data = core.CleanString(data.Data)

	switch data.Type {
	case QueryAreas:
		return ctx.JSON(http.StatusOK, cat.Areas())
	case QueryDivisions:
		return ctx.JSON(http.StatusOK, cat.Divisions())
	case QueryClasses:
		return ctx.JSON(http.StatusOK, collect(cat.CoursesIn(data.Data)))
	case QueryClass:
		course, err := cat.Lookup(data.Data)
		if err != nil {
			return errors.Wrap(err, "looking up course")
		}
		return ctx.JSON(http.StatusOK, course)
	case QuerySearch:
		return ctx.JSON(http.StatusOK, collect(cat.Search(data.Data)))
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "type", Error: "unknown query type"})
	}
}

// majorColleges serves the static majors/universities listing used by the
// schedule creation form.
func (api *catalogApi) majorColleges(ctx echo.Context) error {
	data, err := appfs.FS.ReadFile(majorCollegesAsset)
	if err != nil {
		return errors.Wrap(err, "reading major colleges asset")
	}
	return ctx.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, data)
}

func collect(it *catalog.CourseIter) []catalog.Course {
	courses := it.Collect()
	if courses == nil {
		courses = []catalog.Course{}
	}
	return courses
}

type CatalogQueryRequest struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

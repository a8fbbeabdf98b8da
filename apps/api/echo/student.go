package echoapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
	"github.com/VinayakSharmaa/ICS4U-25-26/services/spreadsheet"
)

const importFileField = "file"

type studentApi struct {
	svc *school.Service
}

func registerStudentAPI(e *echo.Echo, svc *school.Service) {
	api := studentApi{svc: svc}

	g := e.Group("/students")
	g.GET("", api.list)
	g.POST("", api.create)
	g.POST("/import", api.importSheet)
	g.GET("/:id", api.retrieve)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)
	g.GET("/:id/tests", api.tests)
	g.GET("/:id/average", api.average)
}

func (api *studentApi) list(ctx echo.Context) error {
	students, err := api.svc.Students.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data school.NewStudent
	if err := bindBody(ctx, &data, "NewStudent"); err != nil {
		return err
	}
	std, err := api.svc.Students.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	std, err := api.svc.Students.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.UpdateStudent
	if err = bindBody(ctx, &data, "UpdateStudent"); err != nil {
		return err
	}
	std, err := api.svc.Students.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	std, err := api.svc.Students.Delete(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) tests(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	rels, err := bindPopulate(ctx, school.TestRelations...)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	tests, err := api.svc.Tests.ListByStudent(c, id)
	if err != nil {
		return err
	}
	expanded, err := api.svc.Expander.Tests(c, tests, rels)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, expanded)
}

func (api *studentApi) average(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	avg, err := api.svc.Stats.StudentAverage(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, avg)
}

type importResponse struct {
	Created []school.Student    `json:"created"`
	Errors  []sheetsvc.RowError `json:"errors"`
}

// importSheet creates a student per row of an uploaded xlsx workbook.
// Rows are created independently: a rejected row does not prevent the others.
func (api *studentApi) importSheet(ctx echo.Context) error {
	fh, err := ctx.FormFile(importFileField)
	if err != nil {
		return core.NewValidationError(errors.New("cannot import students: missing file"),
			core.FieldError{Field: importFileField, Error: "this field is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = f.Close() }()

	rows, rowErrs, err := sheetsvc.ReadStudents(f)
	if err != nil {
		return core.NewValidationError(errors.Wrap(err, "cannot import students"),
			core.FieldError{Field: importFileField, Error: errors.Cause(err).Error()})
	}

	resp := importResponse{Created: make([]school.Student, 0, len(rows)), Errors: rowErrs}
	c := ctx.Request().Context()
	for _, row := range rows {
		std, err := api.svc.Students.Create(c, row.Student)
		if err != nil {
			vErr, ok := errors.Cause(err).(*core.ValidationError)
			if !ok {
				return errors.Wrapf(err, "importing row %d", row.Row)
			}
			resp.Errors = append(resp.Errors, sheetsvc.RowError{Row: row.Row, Error: describe(vErr)})
			continue
		}
		resp.Created = append(resp.Created, std)
	}
	if resp.Errors == nil {
		resp.Errors = []sheetsvc.RowError{}
	}
	sort.Slice(resp.Errors, func(i, j int) bool { return resp.Errors[i].Row < resp.Errors[j].Row })
	return ctx.JSON(http.StatusCreated, resp)
}

// describe flattens a validation error into one line, eg. "lastName: this field is required".
func describe(vErr *core.ValidationError) string {
	if len(vErr.Fields) == 0 {
		return vErr.Error()
	}
	parts := make([]string, 0, len(vErr.Fields))
	for _, fErr := range vErr.Fields {
		parts = append(parts, fErr.Field+": "+fErr.Error)
	}
	return strings.Join(parts, "; ")
}

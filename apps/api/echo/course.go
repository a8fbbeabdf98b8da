package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
	"github.com/VinayakSharmaa/ICS4U-25-26/services/spreadsheet"
)

type courseApi struct {
	svc *school.Service
}

func registerCourseAPI(e *echo.Echo, svc *school.Service) {
	api := courseApi{svc: svc}

	g := e.Group("/courses")
	g.GET("", api.list)
	g.POST("", api.create)
	g.GET("/:id", api.retrieve)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)
	g.GET("/:id/tests", api.tests)
	g.GET("/:id/tests/export", api.exportTests)
	g.GET("/:id/average", api.average)
}

func (api *courseApi) list(ctx echo.Context) error {
	rels, err := bindPopulate(ctx, school.CourseRelations...)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	courses, err := api.svc.Courses.List(c)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	expanded, err := api.svc.Expander.Courses(c, courses, rels)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, expanded)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data school.NewCourse
	if err := bindBody(ctx, &data, "NewCourse"); err != nil {
		return err
	}
	crs, err := api.svc.Courses.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	rels, err := bindPopulate(ctx, school.CourseRelations...)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	crs, err := api.svc.Courses.Get(c, id)
	if err != nil {
		return err
	}
	expanded, err := api.svc.Expander.Course(c, crs, rels)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, expanded)
}

func (api *courseApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.UpdateCourse
	if err = bindBody(ctx, &data, "UpdateCourse"); err != nil {
		return err
	}
	crs, err := api.svc.Courses.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	crs, err := api.svc.Courses.Delete(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) tests(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	rels, err := bindPopulate(ctx, school.TestRelations...)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	tests, err := api.svc.Tests.ListByCourse(c, id)
	if err != nil {
		return err
	}
	expanded, err := api.svc.Expander.Tests(c, tests, rels)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, expanded)
}

func (api *courseApi) average(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	avg, err := api.svc.Stats.CourseAverage(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, avg)
}

// exportTests sends the course's tests as an xlsx gradebook.
func (api *courseApi) exportTests(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	crs, err := api.svc.Courses.Get(c, id)
	if err != nil {
		return err
	}
	tests, err := api.svc.Tests.ListByCourse(c, id)
	if err != nil {
		return err
	}
	expanded, err := api.svc.Expander.Tests(c, tests, school.Relations{school.RelationStudent: true})
	if err != nil {
		return err
	}

	entries := make([]sheetsvc.GradebookEntry, 0, len(expanded))
	for _, et := range expanded {
		std, _ := et.StudentID.(*school.Student)
		entries = append(entries, sheetsvc.GradebookEntry{Test: et.Test, Student: std})
	}
	var buf bytes.Buffer
	if err = sheetsvc.WriteGradebook(&buf, crs, entries); err != nil {
		return errors.Wrap(err, "writing gradebook")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", crs.Code+"-gradebook.xlsx"))
	return ctx.Blob(http.StatusOK, sheetsvc.MIMEType, buf.Bytes())
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
)

type teacherApi struct {
	svc *school.Service
}

func registerTeacherAPI(e *echo.Echo, svc *school.Service) {
	api := teacherApi{svc: svc}

	g := e.Group("/teachers")
	g.GET("", api.list)
	g.POST("", api.create)
	g.GET("/:id", api.retrieve)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)
}

func (api *teacherApi) list(ctx echo.Context) error {
	teachers, err := api.svc.Teachers.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *teacherApi) create(ctx echo.Context) error {
	var data school.NewTeacher
	if err := bindBody(ctx, &data, "NewTeacher"); err != nil {
		return err
	}
	tch, err := api.svc.Teachers.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tch)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	tch, err := api.svc.Teachers.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *teacherApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.UpdateTeacher
	if err = bindBody(ctx, &data, "UpdateTeacher"); err != nil {
		return err
	}
	tch, err := api.svc.Teachers.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	tch, err := api.svc.Teachers.Delete(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tch)
}

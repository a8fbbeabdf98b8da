package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
)

type testApi struct {
	svc *school.Service
}

func registerTestAPI(e *echo.Echo, svc *school.Service) {
	api := testApi{svc: svc}

	g := e.Group("/tests")
	g.GET("", api.list)
	g.POST("", api.create)
	g.GET("/:id", api.retrieve)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)
}

func (api *testApi) list(ctx echo.Context) error {
	rels, err := bindPopulate(ctx, school.TestRelations...)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	tests, err := api.svc.Tests.List(c)
	if err != nil {
		return errors.Wrap(err, "listing tests")
	}
	expanded, err := api.svc.Expander.Tests(c, tests, rels)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, expanded)
}

func (api *testApi) create(ctx echo.Context) error {
	var data school.NewTest
	if err := bindBody(ctx, &data, "NewTest"); err != nil {
		return err
	}
	tst, err := api.svc.Tests.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tst)
}

func (api *testApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	rels, err := bindPopulate(ctx, school.TestRelations...)
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	tst, err := api.svc.Tests.Get(c, id)
	if err != nil {
		return err
	}
	expanded, err := api.svc.Expander.Test(c, tst, rels)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, expanded)
}

func (api *testApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.UpdateTest
	if err = bindBody(ctx, &data, "UpdateTest"); err != nil {
		return err
	}
	tst, err := api.svc.Tests.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tst)
}

func (api *testApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	tst, err := api.svc.Tests.Delete(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tst)
}

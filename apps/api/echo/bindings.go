package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
)

const populateParam = "populate"

var (
	errInvalidID          = core.NewValidationError(errors.New("invalid id"))
	errUnsupportedContent = core.NewValidationError(errors.New("unsupported content type: expected application/json"))
)

// pathID parses the `:id` path parameter. Ids are positive integers.
func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// bindPopulate parses the `populate` query parameter, accepting only the `allowed` relations.
func bindPopulate(ctx echo.Context, allowed ...school.Relation) (school.Relations, error) {
	return school.ParseRelations(ctx.QueryParam(populateParam), allowed...)
}

// bindBody decodes the JSON request body into dst.
func bindBody(ctx echo.Context, dst interface{}, name string) error {
	if err := (&echo.DefaultBinder{}).BindBody(ctx, dst); err != nil {
		if herr, ok := err.(*echo.HTTPError); ok && herr.Code == http.StatusUnsupportedMediaType {
			return errUnsupportedContent
		}
		return errors.Wrapf(err, "binding to %s", name)
	}
	return nil
}

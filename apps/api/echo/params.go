package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// paramID reads a numeric path parameter. Malformed IDs match no record.
func paramID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHTTPNotFound
	}
	return id, nil
}

type SuccessResponse struct {
	Success string `json:"success"`
}

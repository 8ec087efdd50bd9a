package handler

import (
	"net/http"
	"strconv"

	"tenant-service/internal/model"
	"tenant-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respond writes a service envelope with its own status code
func respond[T any](c echo.Context, resp model.Response[T]) error {
	if resp.StatusCode == http.StatusNoContent {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(resp.StatusCode, resp)
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, model.Fail[any](http.StatusBadRequest, message))
}

// bind decodes the request body; a malformed body yields a 400 envelope
func bind(c echo.Context, dest interface{}) bool {
	if err := c.Bind(dest); err != nil {
		logger.FromEcho(c).Warn("Failed to parse request body", zap.Error(err))
		return false
	}
	return true
}

// paramID parses a positive numeric path parameter
func paramID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

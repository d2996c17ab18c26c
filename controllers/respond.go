package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/lib/responses"
	"github.com/muhasebehub/muhasebe.go/lib/service"
)

// respondError maps a service error onto its envelope. Errors it does not
// know are returned to the echo error handler, which reports them.
func respondError(c echo.Context, err error, action string) error {
	c.Logger().Errorf("Failed to %s: %v", action, err)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	case errors.Is(err, service.ErrLifecycle):
		resp := responses.LifecycleConflictError
		resp.Message = err.Error()
		return c.JSON(http.StatusConflict, resp)
	case errors.Is(err, service.ErrInUse):
		return c.JSON(http.StatusConflict, responses.InUseError)
	case errors.Is(err, service.ErrRiskLimitExceeded):
		return c.JSON(http.StatusBadRequest, responses.RiskLimitExceededError)
	case errors.Is(err, service.ErrBaseCurrencyMissing):
		return c.JSON(http.StatusInternalServerError, responses.BaseCurrencyMissingError)
	case errors.Is(err, service.ErrBadAuth):
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	case service.IsValidationError(err):
		return c.JSON(http.StatusBadRequest, responses.Validation(err))
	}
	return err
}

// bind loads and validates a request body. When ok is false the bad
// request response has been written and err is the write error.
func bind(c echo.Context, body interface{}, what string) (ok bool, err error) {
	if err := c.Bind(body); err != nil {
		c.Logger().Errorf("Failed to load %s request body: %v", what, err)
		return false, c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(body); err != nil {
		c.Logger().Errorf("Invalid %s request body: %v", what, err)
		return false, c.JSON(http.StatusBadRequest, responses.Validation(err))
	}
	return true, nil
}

func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
}

func userID(c echo.Context) int64 {
	id, _ := c.Get("UserID").(int64)
	return id
}

func paramID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func queryInt64(c echo.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.QueryParam(name), 10, 64)
	return v
}

func queryInt(c echo.Context, name string) int {
	v, _ := strconv.Atoi(c.QueryParam(name))
	return v
}

// queryDate accepts 2006-01-02 or RFC3339. Invalid or missing dates are
// zero. With endOfDay a plain date covers the whole day.
func queryDate(c echo.Context, name string, endOfDay bool) time.Time {
	v := c.QueryParam(name)
	if v == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}

type DeleteResponseBody struct {
	ID      int64 `json:"id"`
	Changed bool  `json:"changed"`
}

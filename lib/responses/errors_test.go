package responses

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestBadAuthErrorsNotAllowedForSentry(t *testing.T) {
	badAuthErrResponse := echo.NewHTTPError(http.StatusBadRequest, echo.Map{
		"error":   true,
		"code":    1,
		"message": "bad auth",
	})

	isAllowed := isErrAllowedForSentry(badAuthErrResponse)
	assert.False(t, isAllowed)
}

func TestNotBadAuthErrorsAllowedForSentry(t *testing.T) {
	notBadAuthErrResponse := echo.NewHTTPError(http.StatusBadRequest, echo.Map{
		"error":   true,
		"code":    2,
		"message": "not bad auth",
	})

	isAllowed := isErrAllowedForSentry(notBadAuthErrResponse)
	assert.True(t, isAllowed)
}

func TestNonErrorResponseErrorsAllowedForSentry(t *testing.T) {
	err := errors.New("random error")

	isAllowed := isErrAllowedForSentry(err)
	assert.True(t, isAllowed)
}

func TestErrorResponseBadAuthNotAllowedForSentry(t *testing.T) {
	err := echo.NewHTTPError(http.StatusUnauthorized, BadAuthError)
	assert.False(t, isErrAllowedForSentry(err))

	err = echo.NewHTTPError(http.StatusNotFound, &NotFoundError)
	assert.True(t, isErrAllowedForSentry(err))
}

func TestValidationEnvelope(t *testing.T) {
	resp := Validation(errors.New("quantity must be greater than zero"))
	assert.True(t, resp.Error)
	assert.Equal(t, BadArgumentsError.Code, resp.Code)
	assert.Equal(t, http.StatusBadRequest, resp.HttpStatusCode)
	assert.Equal(t, "quantity must be greater than zero", resp.Message)
}

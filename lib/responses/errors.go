package responses

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var BadAuthError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "bad auth",
	HttpStatusCode: 401,
}

var ForbiddenError = ErrorResponse{
	Error:          true,
	Code:           3,
	Message:        "superuser permission required",
	HttpStatusCode: 403,
}

var NotFoundError = ErrorResponse{
	Error:          true,
	Code:           4,
	Message:        "not found",
	HttpStatusCode: 404,
}

var LifecycleConflictError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "only deleted records can be purged",
	HttpStatusCode: 409,
}

var InUseError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "record is still referenced by other records",
	HttpStatusCode: 409,
}

var RiskLimitExceededError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "customer risk limit exceeded",
	HttpStatusCode: 400,
}

var BaseCurrencyMissingError = ErrorResponse{
	Error:          true,
	Code:           7,
	Message:        "base currency is not configured",
	HttpStatusCode: 500,
}

var LoginTakenError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "login already taken",
	HttpStatusCode: 400,
}

var UserCreationDisabledError = ErrorResponse{
	Error:          true,
	Code:           3,
	Message:        "user creation is disabled",
	HttpStatusCode: 403,
}

// Validation wraps a rejected input into a 400 envelope carrying the
// reason.
func Validation(err error) ErrorResponse {
	return ErrorResponse{
		Error:          true,
		Code:           BadArgumentsError.Code,
		Message:        err.Error(),
		HttpStatusCode: http.StatusBadRequest,
	}
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil && isErrAllowedForSentry(err) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("UserID", c.Get("UserID"))
			hub.CaptureException(err)
		})
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, he.Message)
	} else {
		c.JSON(http.StatusInternalServerError, GeneralServerError)
	}
}

// isErrAllowedForSentry filters out bad auth responses, which are client
// mistakes rather than server faults.
func isErrAllowedForSentry(err error) bool {
	he, ok := err.(*echo.HTTPError)
	if !ok {
		return true
	}
	switch msg := he.Message.(type) {
	case echo.Map:
		return msg["code"] != BadAuthError.Code && msg["message"] != BadAuthError.Message
	case ErrorResponse:
		return msg.Code != BadAuthError.Code
	case *ErrorResponse:
		return msg.Code != BadAuthError.Code
	}
	return true
}

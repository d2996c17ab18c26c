package controllers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/lib/responses"
	"github.com/muhasebehub/muhasebe.go/lib/service"
)

// UserController : user administration controller struct
type UserController struct {
	svc *service.LedgerService
}

func NewUserController(svc *service.LedgerService) *UserController {
	return &UserController{svc: svc}
}

type CreateUserRequestBody struct {
	Login     string `json:"login"`
	Password  string `json:"password"`
	Superuser bool   `json:"superuser"`
}

type CreateUserResponseBody struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Password  string `json:"password"`
	Superuser bool   `json:"superuser"`
}

type UpdateUserRequestBody struct {
	ID        int64   `json:"id" validate:"required"`
	Password  *string `json:"password,omitempty"`
	Active    *bool   `json:"active,omitempty"`
	Superuser *bool   `json:"superuser,omitempty"`
}

type UpdateUserResponseBody struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Active    bool   `json:"active"`
	Superuser bool   `json:"superuser"`
}

// CreateUser godoc
// @Summary      Create a user
// @Description  Creates a user. Missing login or password are generated and returned once.
// @Accept       json
// @Produce      json
// @Tags         User
// @Param        user  body      CreateUserRequestBody  false  "Create user"
// @Success      200   {object}  CreateUserResponseBody
// @Failure      400   {object}  responses.ErrorResponse
// @Failure      403   {object}  responses.ErrorResponse
// @Failure      500   {object}  responses.ErrorResponse
// @Router       /users [post]
func (controller *UserController) CreateUser(c echo.Context) error {
	if !controller.svc.Config.AllowUserCreation {
		return c.JSON(http.StatusForbidden, responses.UserCreationDisabledError)
	}
	var body CreateUserRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create user request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	user, err := controller.svc.CreateUser(c.Request().Context(), body.Login, body.Password, body.Superuser)
	if err != nil {
		c.Logger().Errorf("Failed to create user: %v", err)
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return c.JSON(http.StatusBadRequest, responses.LoginTakenError)
		}
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	return c.JSON(http.StatusOK, &CreateUserResponseBody{
		ID:        user.ID,
		Login:     user.Login,
		Password:  user.Password,
		Superuser: user.Superuser,
	})
}

// UpdateUser godoc
// @Summary      Update a user
// @Description  Changes the password, active flag or superuser flag of a user
// @Accept       json
// @Produce      json
// @Tags         User
// @Param        user  body      UpdateUserRequestBody  true  "Update user"
// @Success      200   {object}  UpdateUserResponseBody
// @Failure      400   {object}  responses.ErrorResponse
// @Failure      404   {object}  responses.ErrorResponse
// @Router       /admin/users [put]
func (controller *UserController) UpdateUser(c echo.Context) error {
	var body UpdateUserRequestBody
	if ok, err := bind(c, &body, "update user"); !ok {
		return err
	}
	user, err := controller.svc.UpdateUser(c.Request().Context(), body.ID, body.Password, body.Active, body.Superuser)
	if err != nil {
		return respondError(c, err, "update user")
	}
	return c.JSON(http.StatusOK, &UpdateUserResponseBody{
		ID:        user.ID,
		Login:     user.Login,
		Active:    user.Active,
		Superuser: user.Superuser,
	})
}

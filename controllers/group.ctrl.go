package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/lib/service"
)

// GroupController : customer group controller struct
type GroupController struct {
	svc *service.LedgerService
}

func NewGroupController(svc *service.LedgerService) *GroupController {
	return &GroupController{svc: svc}
}

type CreateGroupRequestBody struct {
	Name        string `json:"name" validate:"required"`
	ParentID    int64  `json:"parent_id"`
	Description string `json:"description"`
}

// ListGroups godoc
// @Summary      List customer groups
// @Produce      json
// @Tags         Group
// @Success      200  {object}  []models.CustomerGroup
// @Router       /groups [get]
// @Security     OAuth2Password
func (controller *GroupController) ListGroups(c echo.Context) error {
	groups, err := controller.svc.ListGroups(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, groups)
}

// CreateGroup godoc
// @Summary      Create a customer group
// @Description  Creates a group, below parent_id when given. The code is derived from the depth.
// @Accept       json
// @Produce      json
// @Tags         Group
// @Param        group  body      CreateGroupRequestBody  true  "Group"
// @Success      200    {object}  models.CustomerGroup
// @Failure      400    {object}  responses.ErrorResponse
// @Router       /groups [post]
// @Security     OAuth2Password
func (controller *GroupController) CreateGroup(c echo.Context) error {
	var body CreateGroupRequestBody
	if ok, err := bind(c, &body, "create group"); !ok {
		return err
	}
	group, err := controller.svc.CreateGroup(c.Request().Context(), service.GroupInput{
		Name:        body.Name,
		ParentID:    body.ParentID,
		Description: body.Description,
	})
	if err != nil {
		return respondError(c, err, "create group")
	}
	return c.JSON(http.StatusOK, group)
}

// DeleteGroup godoc
// @Summary      Delete a customer group
// @Description  Soft deletes a group. It can be restored by a superuser.
// @Produce      json
// @Tags         Group
// @Param        id   path      int  true  "Group id"
// @Success      200  {object}  DeleteResponseBody
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /groups/{id} [delete]
// @Security     OAuth2Password
func (controller *GroupController) DeleteGroup(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	changed, err := controller.svc.MarkDeleted(c.Request().Context(), common.EntityCustomerGroup, id, userID(c))
	if err != nil {
		return respondError(c, err, "delete group")
	}
	return c.JSON(http.StatusOK, &DeleteResponseBody{ID: id, Changed: changed})
}

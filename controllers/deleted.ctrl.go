package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/lib/service"
)

// DeletedController : deleted records administration controller struct.
// Its routes are for superusers only.
type DeletedController struct {
	svc *service.LedgerService
}

func NewDeletedController(svc *service.LedgerService) *DeletedController {
	return &DeletedController{svc: svc}
}

type PurgeAllResponseBody struct {
	Kind    string  `json:"kind"`
	Purged  int     `json:"purged"`
	Skipped []int64 `json:"skipped"`
}

// ListDeleted godoc
// @Summary      List deleted records
// @Produce      json
// @Tags         Admin
// @Param        kind  query     string  false  "accounts, transactions, invoices, items or groups"
// @Success      200   {object}  []service.DeletedRecord
// @Failure      400   {object}  responses.ErrorResponse
// @Failure      403   {object}  responses.ErrorResponse
// @Router       /admin/deleted [get]
// @Security     OAuth2Password
func (controller *DeletedController) ListDeleted(c echo.Context) error {
	records, err := controller.svc.ListDeleted(c.Request().Context(), c.QueryParam("kind"))
	if err != nil {
		return respondError(c, err, "list deleted records")
	}
	return c.JSON(http.StatusOK, records)
}

// Restore godoc
// @Summary      Restore a deleted record
// @Produce      json
// @Tags         Admin
// @Param        kind  path      string  true  "Record kind"
// @Param        id    path      int     true  "Record id"
// @Success      200   {object}  DeleteResponseBody
// @Failure      400   {object}  responses.ErrorResponse
// @Failure      404   {object}  responses.ErrorResponse
// @Router       /admin/deleted/{kind}/{id}/restore [post]
// @Security     OAuth2Password
func (controller *DeletedController) Restore(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	changed, err := controller.svc.Restore(c.Request().Context(), c.Param("kind"), id, userID(c))
	if err != nil {
		return respondError(c, err, "restore record")
	}
	return c.JSON(http.StatusOK, &DeleteResponseBody{ID: id, Changed: changed})
}

// Purge godoc
// @Summary      Purge a deleted record
// @Description  Removes a deleted record for good. Records that are not deleted, or still referenced, are refused with 409.
// @Produce      json
// @Tags         Admin
// @Param        kind  path      string  true  "Record kind"
// @Param        id    path      int     true  "Record id"
// @Success      200   {object}  DeleteResponseBody
// @Failure      404   {object}  responses.ErrorResponse
// @Failure      409   {object}  responses.ErrorResponse
// @Router       /admin/deleted/{kind}/{id} [delete]
// @Security     OAuth2Password
func (controller *DeletedController) Purge(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	if err := controller.svc.Purge(c.Request().Context(), c.Param("kind"), id, userID(c)); err != nil {
		return respondError(c, err, "purge record")
	}
	return c.JSON(http.StatusOK, &DeleteResponseBody{ID: id, Changed: true})
}

// PurgeAll godoc
// @Summary      Purge all deleted records of a kind
// @Produce      json
// @Tags         Admin
// @Param        kind  path      string  true  "Record kind"
// @Success      200   {object}  PurgeAllResponseBody
// @Failure      400   {object}  responses.ErrorResponse
// @Router       /admin/deleted/{kind} [delete]
// @Security     OAuth2Password
func (controller *DeletedController) PurgeAll(c echo.Context) error {
	kind := c.Param("kind")
	purged, skipped, err := controller.svc.PurgeAll(c.Request().Context(), kind, userID(c))
	if err != nil {
		return respondError(c, err, "purge records")
	}
	if skipped == nil {
		skipped = []int64{}
	}
	return c.JSON(http.StatusOK, &PurgeAllResponseBody{Kind: kind, Purged: purged, Skipped: skipped})
}

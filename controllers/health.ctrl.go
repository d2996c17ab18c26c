package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/lib/service"
)

type HealthController struct {
	svc *service.LedgerService
}

func NewHealthController(svc *service.LedgerService) *HealthController {
	return &HealthController{svc: svc}
}

type HealthResponse struct {
	Result   string `json:"result"`
	Database string `json:"database"`
}

// Check godoc
// @Summary      Check system health
// @Description  Check system health
// @Produce      json
// @Tags         Health
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (controller *HealthController) Check(c echo.Context) error {
	if err := controller.svc.DB.PingContext(c.Request().Context()); err != nil {
		c.Logger().Errorf("Database ping failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, &HealthResponse{Result: "DEGRADED", Database: "unreachable"})
	}
	return c.JSON(http.StatusOK, &HealthResponse{
		Result:   "OK",
		Database: "OK",
	})
}

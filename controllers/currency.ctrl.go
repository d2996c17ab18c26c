package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/lib/service"
)

// CurrencyController : currency controller struct
type CurrencyController struct {
	svc *service.LedgerService
}

func NewCurrencyController(svc *service.LedgerService) *CurrencyController {
	return &CurrencyController{svc: svc}
}

type CreateCurrencyRequestBody struct {
	Code   string `json:"code" validate:"required,alpha,min=2,max=5"`
	Name   string `json:"name" validate:"required"`
	Symbol string `json:"symbol"`
}

// ListCurrencies godoc
// @Summary      List currencies
// @Description  Lists the known currencies, only active ones unless all=true
// @Produce      json
// @Tags         Currency
// @Param        all  query     bool  false  "Include inactive currencies"
// @Success      200  {object}  []models.Currency
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /currencies [get]
// @Security     OAuth2Password
func (controller *CurrencyController) ListCurrencies(c echo.Context) error {
	currencies, err := controller.svc.ListCurrencies(c.Request().Context(), c.QueryParam("all") != "true")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, currencies)
}

// CreateCurrency godoc
// @Summary      Add a currency
// @Accept       json
// @Produce      json
// @Tags         Currency
// @Param        currency  body      CreateCurrencyRequestBody  true  "Currency"
// @Success      200       {object}  models.Currency
// @Failure      400       {object}  responses.ErrorResponse
// @Router       /currencies [post]
// @Security     OAuth2Password
func (controller *CurrencyController) CreateCurrency(c echo.Context) error {
	var body CreateCurrencyRequestBody
	if ok, err := bind(c, &body, "create currency"); !ok {
		return err
	}
	currency, err := controller.svc.CreateCurrency(c.Request().Context(), body.Code, body.Name, body.Symbol)
	if err != nil {
		return respondError(c, err, "create currency")
	}
	return c.JSON(http.StatusOK, currency)
}

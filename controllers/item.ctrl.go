package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/muhasebehub/muhasebe.go/lib/service"
	"github.com/shopspring/decimal"
)

// ItemController : stock item controller struct
type ItemController struct {
	svc *service.LedgerService
}

func NewItemController(svc *service.LedgerService) *ItemController {
	return &ItemController{svc: svc}
}

type ItemRequestBody struct {
	Name          string          `json:"name" validate:"required"`
	Unit          string          `json:"unit" validate:"required"`
	Barcode       string          `json:"barcode"`
	Quantity      decimal.Decimal `json:"quantity"`
	CriticalLevel decimal.Decimal `json:"critical_level"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	Active        *bool           `json:"active"`
}

type GroupPrice struct {
	GroupID int64           `json:"group_id" validate:"required"`
	Price   decimal.Decimal `json:"price"`
}

type GroupPricesRequestBody struct {
	Prices []GroupPrice `json:"prices" validate:"dive"`
}

type OptionRequestBody struct {
	Name     string `json:"name" validate:"required"`
	Required bool   `json:"required"`
}

type OptionValueRequestBody struct {
	Value         string          `json:"value" validate:"required"`
	SurchargeKind string          `json:"surcharge_kind" validate:"required,oneof=fixed percent"`
	Surcharge     decimal.Decimal `json:"surcharge"`
	IsDefault     bool            `json:"is_default"`
}

func (body *ItemRequestBody) input() service.ItemInput {
	active := true
	if body.Active != nil {
		active = *body.Active
	}
	return service.ItemInput{
		Name:          body.Name,
		Unit:          body.Unit,
		Barcode:       body.Barcode,
		Quantity:      body.Quantity,
		CriticalLevel: body.CriticalLevel,
		PurchasePrice: body.PurchasePrice,
		SalePrice:     body.SalePrice,
		VATRate:       body.VATRate,
		Active:        active,
	}
}

// ListItems godoc
// @Summary      List stock items
// @Produce      json
// @Tags         Item
// @Param        q         query     string  false  "Search in name and code, or exact barcode"
// @Param        critical  query     bool    false  "Only items at or below their critical level"
// @Param        limit     query     int     false  "Page size"
// @Param        offset    query     int     false  "Page offset"
// @Success      200       {object}  []models.Item
// @Router       /items [get]
// @Security     OAuth2Password
func (controller *ItemController) ListItems(c echo.Context) error {
	items, err := controller.svc.ListItems(c.Request().Context(), service.ItemFilter{
		Search:       c.QueryParam("q"),
		CriticalOnly: c.QueryParam("critical") == "true",
		Limit:        queryInt(c, "limit"),
		Offset:       queryInt(c, "offset"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// CreateItem godoc
// @Summary      Create a stock item
// @Accept       json
// @Produce      json
// @Tags         Item
// @Param        item  body      ItemRequestBody  true  "Item"
// @Success      200   {object}  models.Item
// @Failure      400   {object}  responses.ErrorResponse
// @Router       /items [post]
// @Security     OAuth2Password
func (controller *ItemController) CreateItem(c echo.Context) error {
	var body ItemRequestBody
	if ok, err := bind(c, &body, "create item"); !ok {
		return err
	}
	item, err := controller.svc.CreateItem(c.Request().Context(), userID(c), body.input())
	if err != nil {
		return respondError(c, err, "create item")
	}
	return c.JSON(http.StatusOK, item)
}

// GetItem godoc
// @Summary      Get a stock item with its group prices and options
// @Produce      json
// @Tags         Item
// @Param        id   path      int  true  "Item id"
// @Success      200  {object}  models.Item
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /items/{id} [get]
// @Security     OAuth2Password
func (controller *ItemController) GetItem(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	item, err := controller.svc.GetItem(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "get item")
	}
	return c.JSON(http.StatusOK, item)
}

// UpdateItem godoc
// @Summary      Update a stock item
// @Description  Quantity on hand is moved by invoices only and is ignored here.
// @Accept       json
// @Produce      json
// @Tags         Item
// @Param        id    path      int              true  "Item id"
// @Param        item  body      ItemRequestBody  true  "Item"
// @Success      200   {object}  models.Item
// @Failure      400   {object}  responses.ErrorResponse
// @Failure      404   {object}  responses.ErrorResponse
// @Router       /items/{id} [put]
// @Security     OAuth2Password
func (controller *ItemController) UpdateItem(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	var body ItemRequestBody
	if ok, err := bind(c, &body, "update item"); !ok {
		return err
	}
	item, err := controller.svc.UpdateItem(c.Request().Context(), userID(c), id, body.input())
	if err != nil {
		return respondError(c, err, "update item")
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteItem godoc
// @Summary      Delete a stock item
// @Produce      json
// @Tags         Item
// @Param        id   path      int  true  "Item id"
// @Success      200  {object}  DeleteResponseBody
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /items/{id} [delete]
// @Security     OAuth2Password
func (controller *ItemController) DeleteItem(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	changed, err := controller.svc.MarkDeleted(c.Request().Context(), common.EntityItem, id, userID(c))
	if err != nil {
		return respondError(c, err, "delete item")
	}
	return c.JSON(http.StatusOK, &DeleteResponseBody{ID: id, Changed: changed})
}

// SetGroupPrices godoc
// @Summary      Replace the customer group prices of an item
// @Accept       json
// @Produce      json
// @Tags         Item
// @Param        id      path      int                     true  "Item id"
// @Param        prices  body      GroupPricesRequestBody  true  "Prices"
// @Success      200     {object}  []models.ItemGroupPrice
// @Failure      400     {object}  responses.ErrorResponse
// @Router       /items/{id}/group-prices [put]
// @Security     OAuth2Password
func (controller *ItemController) SetGroupPrices(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	var body GroupPricesRequestBody
	if ok, err := bind(c, &body, "group prices"); !ok {
		return err
	}
	prices := make(map[int64]decimal.Decimal, len(body.Prices))
	for _, p := range body.Prices {
		prices[p.GroupID] = p.Price
	}
	rows, err := controller.svc.SetGroupPrices(c.Request().Context(), userID(c), id, prices)
	if err != nil {
		return respondError(c, err, "set group prices")
	}
	return c.JSON(http.StatusOK, rows)
}

// AddOption godoc
// @Summary      Add an option to an item
// @Accept       json
// @Produce      json
// @Tags         Item
// @Param        id      path      int                true  "Item id"
// @Param        option  body      OptionRequestBody  true  "Option"
// @Success      200     {object}  models.ItemOption
// @Failure      400     {object}  responses.ErrorResponse
// @Router       /items/{id}/options [post]
// @Security     OAuth2Password
func (controller *ItemController) AddOption(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	var body OptionRequestBody
	if ok, err := bind(c, &body, "add option"); !ok {
		return err
	}
	option, err := controller.svc.AddOption(c.Request().Context(), id, body.Name, body.Required)
	if err != nil {
		return respondError(c, err, "add option")
	}
	return c.JSON(http.StatusOK, option)
}

// AddOptionValue godoc
// @Summary      Add a priced value to an option
// @Description  A fixed surcharge is added to the unit price, a percent surcharge is taken of it. A new default value replaces the previous default.
// @Accept       json
// @Produce      json
// @Tags         Item
// @Param        id     path      int                     true  "Option id"
// @Param        value  body      OptionValueRequestBody  true  "Value"
// @Success      200    {object}  models.ItemOptionValue
// @Failure      400    {object}  responses.ErrorResponse
// @Router       /items/options/{id}/values [post]
// @Security     OAuth2Password
func (controller *ItemController) AddOptionValue(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	var body OptionValueRequestBody
	if ok, err := bind(c, &body, "add option value"); !ok {
		return err
	}
	value, err := controller.svc.AddOptionValue(c.Request().Context(), id, body.Value, ledger.SurchargeKind(body.SurchargeKind), body.Surcharge, body.IsDefault)
	if err != nil {
		return respondError(c, err, "add option value")
	}
	return c.JSON(http.StatusOK, value)
}

// Quote godoc
// @Summary      Price of an item for a customer
// @Produce      json
// @Tags         Item
// @Param        id               path      int  true   "Item id"
// @Param        customer_id      query     int  false  "Customer"
// @Param        option_value_id  query     int  false  "Chosen option value"
// @Success      200              {object}  service.PriceQuote
// @Failure      404              {object}  responses.ErrorResponse
// @Router       /items/{id}/quote [get]
// @Security     OAuth2Password
func (controller *ItemController) Quote(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	quote, err := controller.svc.Quote(c.Request().Context(), id, queryInt64(c, "customer_id"), queryInt64(c, "option_value_id"))
	if err != nil {
		return respondError(c, err, "quote item")
	}
	return c.JSON(http.StatusOK, quote)
}

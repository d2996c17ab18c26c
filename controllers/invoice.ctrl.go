package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/muhasebehub/muhasebe.go/lib/service"
	"github.com/shopspring/decimal"
)

// InvoiceController : sale and purchase invoice controller struct
type InvoiceController struct {
	svc *service.LedgerService
}

func NewInvoiceController(svc *service.LedgerService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

// InvoiceLineRequestBody carries the inputs of a line. Net, tax and gross
// are always computed by the server.
type InvoiceLineRequestBody struct {
	ItemID          int64               `json:"item_id" validate:"required"`
	OptionValueID   int64               `json:"option_value_id"`
	Description     string              `json:"description"`
	Quantity        decimal.Decimal     `json:"quantity"`
	UnitPrice       decimal.NullDecimal `json:"unit_price"`
	DiscountPercent decimal.Decimal     `json:"discount_percent"`
	VATRate         decimal.NullDecimal `json:"vat_rate"`
}

type InvoiceRequestBody struct {
	Type          string                   `json:"type" validate:"omitempty,oneof=sale purchase"`
	AccountID     int64                    `json:"account_id" validate:"required"`
	IssueDate     time.Time                `json:"issue_date"`
	DueDate       time.Time                `json:"due_date"`
	Currency      string                   `json:"currency"`
	VATMode       string                   `json:"vat_mode" validate:"omitempty,oneof=inclusive exclusive"`
	DiscountKind  string                   `json:"discount_kind" validate:"omitempty,oneof=percent fixed"`
	DiscountValue decimal.Decimal          `json:"discount_value"`
	Notes         string                   `json:"notes"`
	Lines         []InvoiceLineRequestBody `json:"lines" validate:"required,min=1,dive"`
}

type PaidRequestBody struct {
	Paid bool `json:"paid"`
}

func (body *InvoiceRequestBody) input() service.InvoiceInput {
	in := service.InvoiceInput{
		Type:         body.Type,
		AccountID:    body.AccountID,
		IssueDate:    body.IssueDate,
		DueDate:      body.DueDate,
		CurrencyCode: body.Currency,
		VATMode:      ledger.VATMode(body.VATMode),
		Discount:     ledger.InvoiceDiscount{Kind: ledger.DiscountKind(body.DiscountKind), Value: body.DiscountValue},
		Notes:        body.Notes,
		Lines:        make([]service.InvoiceLineInput, 0, len(body.Lines)),
	}
	for _, l := range body.Lines {
		in.Lines = append(in.Lines, service.InvoiceLineInput{
			ItemID:          l.ItemID,
			OptionValueID:   l.OptionValueID,
			Description:     l.Description,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			VATRate:         l.VATRate,
		})
	}
	return in
}

// ListInvoices godoc
// @Summary      List invoices
// @Produce      json
// @Tags         Invoice
// @Param        type        query     string  false  "sale or purchase"
// @Param        account_id  query     int     false  "Customer"
// @Param        from        query     string  false  "First issue day"
// @Param        to          query     string  false  "Last issue day"
// @Param        paid        query     bool    false  "Paid flag"
// @Param        limit       query     int     false  "Page size, at most 1000"
// @Param        offset      query     int     false  "Page offset"
// @Success      200         {object}  []models.Invoice
// @Router       /invoices [get]
// @Security     OAuth2Password
func (controller *InvoiceController) ListInvoices(c echo.Context) error {
	filter := service.InvoiceFilter{
		Type:      c.QueryParam("type"),
		AccountID: queryInt64(c, "account_id"),
		From:      queryDate(c, "from", false),
		To:        queryDate(c, "to", true),
		Limit:     queryInt(c, "limit"),
		Offset:    queryInt(c, "offset"),
	}
	switch c.QueryParam("paid") {
	case "true":
		paid := true
		filter.Paid = &paid
	case "false":
		paid := false
		filter.Paid = &paid
	}
	invoices, err := controller.svc.ListInvoices(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoices)
}

// CreateInvoice godoc
// @Summary      Create an invoice
// @Description  Creates a sale (default) or purchase invoice, computes every line and the totals, and moves stock.
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        invoice  body      InvoiceRequestBody  true  "Invoice"
// @Success      200      {object}  models.Invoice
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /invoices [post]
// @Security     OAuth2Password
func (controller *InvoiceController) CreateInvoice(c echo.Context) error {
	var body InvoiceRequestBody
	if ok, err := bind(c, &body, "create invoice"); !ok {
		return err
	}
	if body.Type == "" {
		body.Type = common.InvoiceTypeSale
	}
	invoice, err := controller.svc.CreateInvoice(c.Request().Context(), userID(c), body.input())
	if err != nil {
		return respondError(c, err, "create invoice")
	}
	return c.JSON(http.StatusOK, invoice)
}

// PreviewInvoice godoc
// @Summary      Preview an invoice
// @Description  Computes an invoice without storing it
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        invoice  body      InvoiceRequestBody  true  "Invoice"
// @Success      200      {object}  models.Invoice
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /invoices/preview [post]
// @Security     OAuth2Password
func (controller *InvoiceController) PreviewInvoice(c echo.Context) error {
	var body InvoiceRequestBody
	if ok, err := bind(c, &body, "preview invoice"); !ok {
		return err
	}
	if body.Type == "" {
		body.Type = common.InvoiceTypeSale
	}
	invoice, err := controller.svc.PreviewInvoice(c.Request().Context(), body.input())
	if err != nil {
		return respondError(c, err, "preview invoice")
	}
	return c.JSON(http.StatusOK, invoice)
}

// GetInvoice godoc
// @Summary      Get an invoice with its lines
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  true  "Invoice id"
// @Success      200  {object}  models.Invoice
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /invoices/{id} [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoice(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	invoice, err := controller.svc.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "get invoice")
	}
	return c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice godoc
// @Summary      Edit an invoice
// @Description  Replaces the lines of an invoice and rebooks its stock movement. The type cannot change.
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id       path      int                 true  "Invoice id"
// @Param        invoice  body      InvoiceRequestBody  true  "Invoice"
// @Success      200      {object}  models.Invoice
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Router       /invoices/{id} [put]
// @Security     OAuth2Password
func (controller *InvoiceController) UpdateInvoice(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	var body InvoiceRequestBody
	if ok, err := bind(c, &body, "update invoice"); !ok {
		return err
	}
	invoice, err := controller.svc.UpdateInvoice(c.Request().Context(), userID(c), id, body.input())
	if err != nil {
		return respondError(c, err, "update invoice")
	}
	return c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice godoc
// @Summary      Delete an invoice
// @Description  Soft deletes an invoice and reverses its stock movement
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  true  "Invoice id"
// @Success      200  {object}  DeleteResponseBody
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /invoices/{id} [delete]
// @Security     OAuth2Password
func (controller *InvoiceController) DeleteInvoice(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	changed, err := controller.svc.MarkDeleted(c.Request().Context(), common.EntityInvoice, id, userID(c))
	if err != nil {
		return respondError(c, err, "delete invoice")
	}
	return c.JSON(http.StatusOK, &DeleteResponseBody{ID: id, Changed: changed})
}

// SetPaid godoc
// @Summary      Mark an invoice paid or unpaid
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id    path      int              true  "Invoice id"
// @Param        paid  body      PaidRequestBody  true  "Paid flag"
// @Success      200   {object}  models.Invoice
// @Failure      400   {object}  responses.ErrorResponse
// @Failure      404   {object}  responses.ErrorResponse
// @Router       /invoices/{id}/paid [post]
// @Security     OAuth2Password
func (controller *InvoiceController) SetPaid(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	var body PaidRequestBody
	if ok, err := bind(c, &body, "paid"); !ok {
		return err
	}
	invoice, err := controller.svc.SetPaid(c.Request().Context(), userID(c), id, body.Paid)
	if err != nil {
		return respondError(c, err, "mark invoice paid")
	}
	return c.JSON(http.StatusOK, invoice)
}

// VoidInvoice godoc
// @Summary      Void an invoice
// @Description  Cancels an invoice and reverses its stock movement. Voiding a void invoice changes nothing.
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  true  "Invoice id"
// @Success      200  {object}  models.Invoice
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /invoices/{id}/void [post]
// @Security     OAuth2Password
func (controller *InvoiceController) VoidInvoice(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	invoice, err := controller.svc.VoidInvoice(c.Request().Context(), userID(c), id)
	if err != nil {
		return respondError(c, err, "void invoice")
	}
	return c.JSON(http.StatusOK, invoice)
}

// QRCode godoc
// @Summary      Invoice QR code
// @Description  PNG QR code of the invoice number, date, customer and totals
// @Produce      png
// @Tags         Invoice
// @Param        id    path   int  true   "Invoice id"
// @Param        size  query  int  false  "Edge length in pixels"
// @Success      200
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /invoices/{id}/qr.png [get]
// @Security     OAuth2Password
func (controller *InvoiceController) QRCode(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	size := queryInt(c, "size")
	if size > 1024 {
		size = 1024
	}
	png, err := controller.svc.InvoiceQR(c.Request().Context(), id, size)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("render qr code of invoice %d", id))
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

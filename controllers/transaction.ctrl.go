package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/lib/service"
	"github.com/shopspring/decimal"
)

// TransactionController : ledger transaction controller struct
type TransactionController struct {
	svc *service.LedgerService
}

func NewTransactionController(svc *service.LedgerService) *TransactionController {
	return &TransactionController{svc: svc}
}

type TransactionRequestBody struct {
	AccountID           int64               `json:"account_id" validate:"required"`
	SettlementAccountID int64               `json:"settlement_account_id"`
	Channel             string              `json:"channel" validate:"required,oneof=cash bank pos other"`
	Direction           string              `json:"direction" validate:"required,oneof=inflow outflow"`
	Currency            string              `json:"currency"`
	Amount              decimal.Decimal     `json:"amount"`
	ExchangeRate        decimal.NullDecimal `json:"exchange_rate"`
	BaseAmount          decimal.NullDecimal `json:"base_amount"`
	Description         string              `json:"description"`
	DocumentNo          string              `json:"document_no"`
	TransactionDate     time.Time           `json:"transaction_date"`
}

func (body *TransactionRequestBody) input() service.TransactionInput {
	return service.TransactionInput{
		AccountID:           body.AccountID,
		SettlementAccountID: body.SettlementAccountID,
		Channel:             body.Channel,
		Direction:           body.Direction,
		CurrencyCode:        body.Currency,
		Amount:              body.Amount,
		ExchangeRate:        body.ExchangeRate,
		BaseAmount:          body.BaseAmount,
		Description:         body.Description,
		DocumentNo:          body.DocumentNo,
		TransactionDate:     body.TransactionDate,
	}
}

// ListTransactions godoc
// @Summary      List transactions
// @Produce      json
// @Tags         Transaction
// @Param        from                   query     string  false  "First day"
// @Param        to                     query     string  false  "Last day"
// @Param        account_id             query     int     false  "Customer"
// @Param        settlement_account_id  query     int     false  "Till, bank account or terminal"
// @Param        channel                query     string  false  "cash, bank, pos, transfer or other"
// @Param        direction              query     string  false  "inflow or outflow"
// @Param        currency               query     string  false  "Currency code"
// @Param        min_amount             query     string  false  "Smallest amount"
// @Param        max_amount             query     string  false  "Largest amount"
// @Param        created_by             query     int     false  "User id"
// @Param        limit                  query     int     false  "Page size, at most 1000"
// @Param        offset                 query     int     false  "Page offset"
// @Success      200                    {object}  []models.Transaction
// @Router       /transactions [get]
// @Security     OAuth2Password
func (controller *TransactionController) ListTransactions(c echo.Context) error {
	filter := service.TransactionFilter{
		From:                queryDate(c, "from", false),
		To:                  queryDate(c, "to", true),
		AccountID:           queryInt64(c, "account_id"),
		SettlementAccountID: queryInt64(c, "settlement_account_id"),
		Channel:             c.QueryParam("channel"),
		Direction:           c.QueryParam("direction"),
		Currency:            c.QueryParam("currency"),
		CreatedBy:           queryInt64(c, "created_by"),
		Limit:               queryInt(c, "limit"),
		Offset:              queryInt(c, "offset"),
	}
	if v, err := decimal.NewFromString(c.QueryParam("min_amount")); err == nil {
		filter.MinAmount = decimal.NewNullDecimal(v)
	}
	if v, err := decimal.NewFromString(c.QueryParam("max_amount")); err == nil {
		filter.MaxAmount = decimal.NewNullDecimal(v)
	}
	transactions, err := controller.svc.ListTransactions(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transactions)
}

// CreateTransaction godoc
// @Summary      Record a transaction
// @Description  Records a customer movement. Cash, bank and pos movements name the till, bank account or terminal they settle on. Foreign currency amounts may carry an exchange rate and base amount.
// @Accept       json
// @Produce      json
// @Tags         Transaction
// @Param        transaction  body      TransactionRequestBody  true  "Transaction"
// @Success      200          {object}  models.Transaction
// @Failure      400          {object}  responses.ErrorResponse
// @Router       /transactions [post]
// @Security     OAuth2Password
func (controller *TransactionController) CreateTransaction(c echo.Context) error {
	var body TransactionRequestBody
	if ok, err := bind(c, &body, "create transaction"); !ok {
		return err
	}
	t, err := controller.svc.CreateTransaction(c.Request().Context(), userID(c), body.input())
	if err != nil {
		return respondError(c, err, "create transaction")
	}
	return c.JSON(http.StatusOK, t)
}

// GetTransaction godoc
// @Summary      Get a transaction
// @Produce      json
// @Tags         Transaction
// @Param        id   path      int  true  "Transaction id"
// @Success      200  {object}  models.Transaction
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /transactions/{id} [get]
// @Security     OAuth2Password
func (controller *TransactionController) GetTransaction(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	t, err := controller.svc.GetTransaction(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "get transaction")
	}
	return c.JSON(http.StatusOK, t)
}

// UpdateTransaction godoc
// @Summary      Edit a transaction
// @Accept       json
// @Produce      json
// @Tags         Transaction
// @Param        id           path      int                     true  "Transaction id"
// @Param        transaction  body      TransactionRequestBody  true  "Transaction"
// @Success      200          {object}  models.Transaction
// @Failure      400          {object}  responses.ErrorResponse
// @Failure      404          {object}  responses.ErrorResponse
// @Router       /transactions/{id} [put]
// @Security     OAuth2Password
func (controller *TransactionController) UpdateTransaction(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	var body TransactionRequestBody
	if ok, err := bind(c, &body, "update transaction"); !ok {
		return err
	}
	t, err := controller.svc.UpdateTransaction(c.Request().Context(), userID(c), id, body.input())
	if err != nil {
		return respondError(c, err, "update transaction")
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteTransaction godoc
// @Summary      Delete a transaction
// @Description  Soft deletes a transaction. Both legs of a transfer are deleted together.
// @Produce      json
// @Tags         Transaction
// @Param        id   path      int  true  "Transaction id"
// @Success      200  {object}  DeleteResponseBody
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /transactions/{id} [delete]
// @Security     OAuth2Password
func (controller *TransactionController) DeleteTransaction(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	changed, err := controller.svc.MarkDeleted(c.Request().Context(), common.EntityTransaction, id, userID(c))
	if err != nil {
		return respondError(c, err, "delete transaction")
	}
	return c.JSON(http.StatusOK, &DeleteResponseBody{ID: id, Changed: changed})
}

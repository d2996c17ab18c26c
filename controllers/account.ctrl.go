package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/lib/service"
	"github.com/shopspring/decimal"
)

// AccountController : customer, cash, bank and pos account controller struct
type AccountController struct {
	svc *service.LedgerService
}

func NewAccountController(svc *service.LedgerService) *AccountController {
	return &AccountController{svc: svc}
}

type AccountRequestBody struct {
	Kind           string          `json:"kind" validate:"required,oneof=customer cash bank pos"`
	Name           string          `json:"name" validate:"required"`
	Currency       string          `json:"currency" validate:"required"`
	Active         *bool           `json:"active"`
	GroupID        int64           `json:"group_id"`
	RiskLimit      decimal.Decimal `json:"risk_limit"`
	BankAccountID  int64           `json:"bank_account_id"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	BankName       string          `json:"bank_name"`
	Branch         string          `json:"branch"`
	IBAN           string          `json:"iban"`
	TaxOffice      string          `json:"tax_office"`
	TaxNumber      string          `json:"tax_number"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email" validate:"omitempty,email"`
	Address        string          `json:"address"`
}

func (body *AccountRequestBody) input() service.AccountInput {
	active := true
	if body.Active != nil {
		active = *body.Active
	}
	return service.AccountInput{
		Kind:           body.Kind,
		Name:           body.Name,
		CurrencyCode:   body.Currency,
		Active:         active,
		GroupID:        body.GroupID,
		RiskLimit:      body.RiskLimit,
		BankAccountID:  body.BankAccountID,
		CommissionRate: body.CommissionRate,
		BankName:       body.BankName,
		Branch:         body.Branch,
		IBAN:           body.IBAN,
		TaxOffice:      body.TaxOffice,
		TaxNumber:      body.TaxNumber,
		Phone:          body.Phone,
		Email:          body.Email,
		Address:        body.Address,
	}
}

// ListAccounts godoc
// @Summary      List accounts
// @Produce      json
// @Tags         Account
// @Param        kind      query     string  false  "customer, cash, bank or pos"
// @Param        group_id  query     int     false  "Customer group"
// @Param        q         query     string  false  "Search in name and code"
// @Param        active    query     bool    false  "Only active accounts"
// @Param        limit     query     int     false  "Page size"
// @Param        offset    query     int     false  "Page offset"
// @Success      200       {object}  []models.Account
// @Router       /accounts [get]
// @Security     OAuth2Password
func (controller *AccountController) ListAccounts(c echo.Context) error {
	accounts, err := controller.svc.ListAccounts(c.Request().Context(), service.AccountFilter{
		Kind:       c.QueryParam("kind"),
		GroupID:    queryInt64(c, "group_id"),
		Search:     c.QueryParam("q"),
		ActiveOnly: c.QueryParam("active") == "true",
		Limit:      queryInt(c, "limit"),
		Offset:     queryInt(c, "offset"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accounts)
}

// CreateAccount godoc
// @Summary      Create an account
// @Description  Creates a customer, cash till, bank account or card terminal. Customers get a CK code.
// @Accept       json
// @Produce      json
// @Tags         Account
// @Param        account  body      AccountRequestBody  true  "Account"
// @Success      200      {object}  models.Account
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /accounts [post]
// @Security     OAuth2Password
func (controller *AccountController) CreateAccount(c echo.Context) error {
	var body AccountRequestBody
	if ok, err := bind(c, &body, "create account"); !ok {
		return err
	}
	account, err := controller.svc.CreateAccount(c.Request().Context(), userID(c), body.input())
	if err != nil {
		return respondError(c, err, "create account")
	}
	return c.JSON(http.StatusOK, account)
}

// GetAccount godoc
// @Summary      Get an account
// @Produce      json
// @Tags         Account
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  models.Account
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /accounts/{id} [get]
// @Security     OAuth2Password
func (controller *AccountController) GetAccount(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	account, err := controller.svc.GetAccount(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "get account")
	}
	return c.JSON(http.StatusOK, account)
}

// UpdateAccount godoc
// @Summary      Update an account
// @Description  The kind of an account never changes; the currency only while it has no transactions.
// @Accept       json
// @Produce      json
// @Tags         Account
// @Param        id       path      int                 true  "Account id"
// @Param        account  body      AccountRequestBody  true  "Account"
// @Success      200      {object}  models.Account
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Failure      409      {object}  responses.ErrorResponse
// @Router       /accounts/{id} [put]
// @Security     OAuth2Password
func (controller *AccountController) UpdateAccount(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	var body AccountRequestBody
	if ok, err := bind(c, &body, "update account"); !ok {
		return err
	}
	account, err := controller.svc.UpdateAccount(c.Request().Context(), userID(c), id, body.input())
	if err != nil {
		return respondError(c, err, "update account")
	}
	return c.JSON(http.StatusOK, account)
}

// DeleteAccount godoc
// @Summary      Delete an account
// @Description  Soft deletes an account. Deleting a deleted account changes nothing.
// @Produce      json
// @Tags         Account
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  DeleteResponseBody
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /accounts/{id} [delete]
// @Security     OAuth2Password
func (controller *AccountController) DeleteAccount(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	changed, err := controller.svc.MarkDeleted(c.Request().Context(), common.EntityAccount, id, userID(c))
	if err != nil {
		return respondError(c, err, "delete account")
	}
	return c.JSON(http.StatusOK, &DeleteResponseBody{ID: id, Changed: changed})
}

// Balance godoc
// @Summary      Account balance
// @Description  Balance of an account in one currency, the account currency by default. The base currency balance includes converted foreign entries.
// @Produce      json
// @Tags         Account
// @Param        id        path      int     true   "Account id"
// @Param        currency  query     string  false  "Currency code"
// @Success      200       {object}  service.Balance
// @Failure      404       {object}  responses.ErrorResponse
// @Router       /accounts/{id}/balance [get]
// @Security     OAuth2Password
func (controller *AccountController) Balance(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	balance, err := controller.svc.AccountBalance(c.Request().Context(), id, c.QueryParam("currency"))
	if err != nil {
		return respondError(c, err, "fetch balance")
	}
	return c.JSON(http.StatusOK, balance)
}

// Balances godoc
// @Summary      Account balance per currency
// @Description  Inflow, outflow and balance per currency with movement
// @Produce      json
// @Tags         Account
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  []ledger.CurrencyBalance
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /accounts/{id}/balances [get]
// @Security     OAuth2Password
func (controller *AccountController) Balances(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	balances, err := controller.svc.AccountBalances(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "fetch balances")
	}
	return c.JSON(http.StatusOK, balances)
}

// Statement godoc
// @Summary      Account statement
// @Description  XLSX workbook with the transactions of an account and a running balance per currency
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Tags         Account
// @Param        id    path   int     true   "Account id"
// @Param        from  query  string  false  "First day, 2006-01-02"
// @Param        to    query  string  false  "Last day, 2006-01-02"
// @Success      200
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /accounts/{id}/statement.xlsx [get]
// @Security     OAuth2Password
func (controller *AccountController) Statement(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	xlsx, err := controller.svc.StatementXLSX(c.Request().Context(), id, queryDate(c, "from", false), queryDate(c, "to", true))
	if err != nil {
		return respondError(c, err, "export statement")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=statement-%d.xlsx", id))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", xlsx)
}

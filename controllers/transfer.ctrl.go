package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/muhasebehub/muhasebe.go/lib/service"
	"github.com/shopspring/decimal"
)

// TransferController : transfer between customer accounts controller struct
type TransferController struct {
	svc *service.LedgerService
}

func NewTransferController(svc *service.LedgerService) *TransferController {
	return &TransferController{svc: svc}
}

type TransferRequestBody struct {
	FromAccountID      int64               `json:"from_account_id" validate:"required"`
	ToAccountID        int64               `json:"to_account_id" validate:"required,nefield=FromAccountID"`
	Currency           string              `json:"currency"`
	Amount             decimal.Decimal     `json:"amount"`
	SenderRate         decimal.NullDecimal `json:"sender_rate"`
	SenderBaseAmount   decimal.NullDecimal `json:"sender_base_amount"`
	ReceiverRate       decimal.NullDecimal `json:"receiver_rate"`
	ReceiverBaseAmount decimal.NullDecimal `json:"receiver_base_amount"`
	Description        string              `json:"description"`
	TransactionDate    time.Time           `json:"transaction_date"`
}

// CreateTransfer godoc
// @Summary      Transfer between customers
// @Description  Books an outflow on the sender and an inflow on the receiver. The sender's risk limit applies.
// @Accept       json
// @Produce      json
// @Tags         Transaction
// @Param        transfer  body      TransferRequestBody  true  "Transfer"
// @Success      200       {object}  service.Transfer
// @Failure      400       {object}  responses.ErrorResponse
// @Router       /transfers [post]
// @Security     OAuth2Password
func (controller *TransferController) CreateTransfer(c echo.Context) error {
	var body TransferRequestBody
	if ok, err := bind(c, &body, "transfer"); !ok {
		return err
	}
	transfer, err := controller.svc.CreateTransfer(c.Request().Context(), userID(c), service.TransferInput{
		FromAccountID:      body.FromAccountID,
		ToAccountID:        body.ToAccountID,
		CurrencyCode:       body.Currency,
		Amount:             body.Amount,
		SenderRate:         body.SenderRate,
		SenderBaseAmount:   body.SenderBaseAmount,
		ReceiverRate:       body.ReceiverRate,
		ReceiverBaseAmount: body.ReceiverBaseAmount,
		Description:        body.Description,
		TransactionDate:    body.TransactionDate,
	})
	if err != nil {
		return respondError(c, err, "transfer")
	}
	return c.JSON(http.StatusOK, transfer)
}

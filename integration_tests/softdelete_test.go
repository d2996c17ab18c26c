package integration_tests

import (
	"fmt"
	"log"
	"net/http"
	"testing"

	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/controllers"
	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/muhasebehub/muhasebe.go/lib/responses"
	"github.com/muhasebehub/muhasebe.go/lib/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SoftDeleteTestSuite struct {
	TestSuite
	Service *service.LedgerService
}

func (suite *SoftDeleteTestSuite) SetupSuite() {
	svc, err := LedgerTestServiceInit("softdelete")
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	_, tokens, err := createUsers(svc, 1, true)
	if err != nil {
		log.Fatalf("Error creating test users %v", err)
	}
	suite.Service = svc
	suite.echo = newTestEcho(svc)
	suite.token = tokens[0]
}

func (suite *SoftDeleteTestSuite) TearDownSuite() {
	suite.Service.DB.Close()
}

func (suite *SoftDeleteTestSuite) deleted(kind string) map[int64]service.DeletedRecord {
	records := []service.DeletedRecord{}
	suite.do(http.MethodGet, "/admin/deleted?kind="+kind, nil, http.StatusOK, &records)
	byID := map[int64]service.DeletedRecord{}
	for _, rec := range records {
		assert.Equal(suite.T(), kind, rec.Kind)
		byID[rec.ID] = rec
	}
	return byID
}

func (suite *SoftDeleteTestSuite) other(customerID int64, direction ledger.Direction, amount string) *models.Transaction {
	return suite.createTransaction(&controllers.TransactionRequestBody{
		AccountID: customerID,
		Channel:   common.ChannelOther,
		Direction: string(direction),
		Amount:    dec(amount),
	})
}

func (suite *SoftDeleteTestSuite) TestDeleteRestorePurgeItem() {
	item := suite.createItem("Silinecek Ürün", 5, 10, 20)

	// restoring an active item changes nothing
	resp := &controllers.DeleteResponseBody{}
	suite.do(http.MethodPost, fmt.Sprintf("/admin/deleted/items/%d/restore", item.ID), nil, http.StatusOK, resp)
	assert.False(suite.T(), resp.Changed)

	// active items cannot be purged
	rec := suite.request(http.MethodDelete, fmt.Sprintf("/admin/deleted/items/%d", item.ID), nil, suite.token)
	conflict := suite.checkErrResponse(rec, http.StatusConflict)
	assert.Equal(suite.T(), responses.LifecycleConflictError.Code, conflict.Code)

	suite.do(http.MethodDelete, fmt.Sprintf("/items/%d", item.ID), nil, http.StatusOK, resp)
	assert.True(suite.T(), resp.Changed)
	listed, ok := suite.deleted(common.EntityItem)[item.ID]
	if assert.True(suite.T(), ok) {
		assert.Contains(suite.T(), listed.Label, "Silinecek Ürün")
		assert.NotZero(suite.T(), listed.DeletedBy)
	}
	rec = suite.request(http.MethodGet, fmt.Sprintf("/items/%d", item.ID), nil, suite.token)
	suite.checkErrResponse(rec, http.StatusNotFound)

	suite.do(http.MethodPost, fmt.Sprintf("/admin/deleted/items/%d/restore", item.ID), nil, http.StatusOK, resp)
	assert.True(suite.T(), resp.Changed)
	suite.do(http.MethodGet, fmt.Sprintf("/items/%d", item.ID), nil, http.StatusOK, nil)
	assert.NotContains(suite.T(), suite.deleted(common.EntityItem), item.ID)

	suite.do(http.MethodDelete, fmt.Sprintf("/items/%d", item.ID), nil, http.StatusOK, resp)
	suite.do(http.MethodDelete, fmt.Sprintf("/admin/deleted/items/%d", item.ID), nil, http.StatusOK, resp)
	assert.NotContains(suite.T(), suite.deleted(common.EntityItem), item.ID)

	// purged is final
	rec = suite.request(http.MethodPost, fmt.Sprintf("/admin/deleted/items/%d/restore", item.ID), nil, suite.token)
	suite.checkErrResponse(rec, http.StatusNotFound)
}

func (suite *SoftDeleteTestSuite) TestPurgeAccountInUse() {
	customer := suite.createAccount(common.AccountKindCustomer, "Kullanımda", "TL")
	suite.other(customer.ID, ledger.Inflow, "10")
	suite.do(http.MethodDelete, fmt.Sprintf("/accounts/%d", customer.ID), nil, http.StatusOK, nil)

	rec := suite.request(http.MethodDelete, fmt.Sprintf("/admin/deleted/accounts/%d", customer.ID), nil, suite.token)
	resp := suite.checkErrResponse(rec, http.StatusConflict)
	assert.Equal(suite.T(), responses.InUseError.Code, resp.Code)

	unused := suite.createAccount(common.AccountKindCustomer, "Boş Hesap", "TL")
	suite.do(http.MethodDelete, fmt.Sprintf("/accounts/%d", unused.ID), nil, http.StatusOK, nil)

	purged := &controllers.PurgeAllResponseBody{}
	suite.do(http.MethodDelete, "/admin/deleted/accounts", nil, http.StatusOK, purged)
	assert.GreaterOrEqual(suite.T(), purged.Purged, 1)
	assert.Contains(suite.T(), purged.Skipped, customer.ID)
	remaining := suite.deleted(common.EntityAccount)
	assert.Contains(suite.T(), remaining, customer.ID)
	assert.NotContains(suite.T(), remaining, unused.ID)
}

func (suite *SoftDeleteTestSuite) TestPurgeTransferLegsTogether() {
	sender := suite.createAccount(common.AccountKindCustomer, "Virman Gönderen", "TL")
	receiver := suite.createAccount(common.AccountKindCustomer, "Virman Alan", "TL")
	transfer := &service.Transfer{}
	suite.do(http.MethodPost, "/transfers", &controllers.TransferRequestBody{
		FromAccountID: sender.ID,
		ToAccountID:   receiver.ID,
		Amount:        dec("75"),
	}, http.StatusOK, transfer)
	suite.do(http.MethodDelete, fmt.Sprintf("/transactions/%d", transfer.Outflow.ID), nil, http.StatusOK, nil)

	deleted := suite.deleted(common.EntityTransaction)
	assert.Contains(suite.T(), deleted, transfer.Outflow.ID)
	assert.Contains(suite.T(), deleted, transfer.Inflow.ID)

	// restoring one leg brings both back
	suite.do(http.MethodPost, fmt.Sprintf("/admin/deleted/transactions/%d/restore", transfer.Inflow.ID), nil, http.StatusOK, nil)
	assert.Equal(suite.T(), "-75.00", suite.balance(sender.ID, "").StringFixed(2))
	assert.Equal(suite.T(), "75.00", suite.balance(receiver.ID, "").StringFixed(2))

	suite.do(http.MethodDelete, fmt.Sprintf("/transactions/%d", transfer.Inflow.ID), nil, http.StatusOK, nil)
	suite.do(http.MethodDelete, "/admin/deleted/transactions", nil, http.StatusOK, nil)
	deleted = suite.deleted(common.EntityTransaction)
	assert.NotContains(suite.T(), deleted, transfer.Outflow.ID)
	assert.NotContains(suite.T(), deleted, transfer.Inflow.ID)
	assert.Equal(suite.T(), "0.00", suite.balance(sender.ID, "").StringFixed(2))
}

func (suite *SoftDeleteTestSuite) TestRestoreChecksRiskLimit() {
	customer := &models.Account{}
	suite.do(http.MethodPost, "/accounts", &controllers.AccountRequestBody{
		Kind:      common.AccountKindCustomer,
		Name:      "Limitli Müşteri",
		Currency:  "TL",
		RiskLimit: dec("100"),
	}, http.StatusOK, customer)

	first := suite.other(customer.ID, ledger.Outflow, "80")
	suite.do(http.MethodDelete, fmt.Sprintf("/transactions/%d", first.ID), nil, http.StatusOK, nil)
	suite.other(customer.ID, ledger.Outflow, "90")

	rec := suite.request(http.MethodPost, fmt.Sprintf("/admin/deleted/transactions/%d/restore", first.ID), nil, suite.token)
	resp := suite.checkErrResponse(rec, http.StatusBadRequest)
	assert.Equal(suite.T(), responses.RiskLimitExceededError.Code, resp.Code)
	assert.Equal(suite.T(), "-90.00", suite.balance(customer.ID, "").StringFixed(2))
}

func (suite *SoftDeleteTestSuite) TestRestoreInvoiceReappliesStock() {
	customer := suite.createAccount(common.AccountKindCustomer, "Fatura Müşterisi", "TL")
	item := suite.createItem("Kalem", 10, 5, 20)
	invoice := &models.Invoice{}
	suite.do(http.MethodPost, "/invoices", &controllers.InvoiceRequestBody{
		Type:      common.InvoiceTypeSale,
		AccountID: customer.ID,
		Lines:     []controllers.InvoiceLineRequestBody{{ItemID: item.ID, Quantity: dec("4")}},
	}, http.StatusOK, invoice)
	suite.do(http.MethodDelete, fmt.Sprintf("/invoices/%d", invoice.ID), nil, http.StatusOK, nil)

	fetched := &models.Item{}
	suite.do(http.MethodGet, fmt.Sprintf("/items/%d", item.ID), nil, http.StatusOK, fetched)
	assert.Equal(suite.T(), "10", fetched.Quantity.String())

	listed, ok := suite.deleted(common.EntityInvoice)[invoice.ID]
	if assert.True(suite.T(), ok) {
		assert.Contains(suite.T(), listed.Label, invoice.Number)
	}

	suite.do(http.MethodPost, fmt.Sprintf("/admin/deleted/invoices/%d/restore", invoice.ID), nil, http.StatusOK, nil)
	suite.do(http.MethodGet, fmt.Sprintf("/items/%d", item.ID), nil, http.StatusOK, fetched)
	assert.Equal(suite.T(), "6", fetched.Quantity.String())

	restored := &models.Invoice{}
	suite.do(http.MethodGet, fmt.Sprintf("/invoices/%d", invoice.ID), nil, http.StatusOK, restored)
	assert.Equal(suite.T(), "24.00", restored.GrandTotal.StringFixed(2))

	// an item on an invoice stays until the invoice is purged
	suite.do(http.MethodDelete, fmt.Sprintf("/items/%d", item.ID), nil, http.StatusOK, nil)
	rec := suite.request(http.MethodDelete, fmt.Sprintf("/admin/deleted/items/%d", item.ID), nil, suite.token)
	suite.checkErrResponse(rec, http.StatusConflict)
}

func (suite *SoftDeleteTestSuite) TestUnknownKind() {
	rec := suite.request(http.MethodGet, "/admin/deleted?kind=payments", nil, suite.token)
	suite.checkErrResponse(rec, http.StatusBadRequest)
	rec = suite.request(http.MethodDelete, "/admin/deleted/payments/1", nil, suite.token)
	suite.checkErrResponse(rec, http.StatusBadRequest)
}

func TestSoftDeleteTestSuite(t *testing.T) {
	suite.Run(t, new(SoftDeleteTestSuite))
}

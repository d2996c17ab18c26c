package integration_tests

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"testing"

	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/controllers"
	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/muhasebehub/muhasebe.go/lib/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type InvoiceTestSuite struct {
	TestSuite
	Service  *service.LedgerService
	customer *models.Account
}

func (suite *InvoiceTestSuite) SetupSuite() {
	svc, err := LedgerTestServiceInit("invoice")
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	_, tokens, err := createUsers(svc, 1, false)
	if err != nil {
		log.Fatalf("Error creating test users %v", err)
	}
	suite.Service = svc
	suite.echo = newTestEcho(svc)
	suite.token = tokens[0]
	suite.customer = suite.createAccount(common.AccountKindCustomer, "Anadolu Market", "TL")
}

func (suite *InvoiceTestSuite) TearDownSuite() {
	suite.Service.DB.Close()
}

func (suite *InvoiceTestSuite) stock(itemID int64) decimal.Decimal {
	item := &models.Item{}
	suite.do(http.MethodGet, fmt.Sprintf("/items/%d", itemID), nil, http.StatusOK, item)
	return item.Quantity
}

func (suite *InvoiceTestSuite) saleBody(itemID int64, quantity string) *controllers.InvoiceRequestBody {
	return &controllers.InvoiceRequestBody{
		Type:      common.InvoiceTypeSale,
		AccountID: suite.customer.ID,
		Lines:     []controllers.InvoiceLineRequestBody{{ItemID: itemID, Quantity: dec(quantity)}},
	}
}

func (suite *InvoiceTestSuite) TestSaleInvoiceTotalsAndStock() {
	item := suite.createItem("Çay 1kg", 10, 100, 20)

	invoice := &models.Invoice{}
	suite.do(http.MethodPost, "/invoices", suite.saleBody(item.ID, "2"), http.StatusOK, invoice)
	assert.Regexp(suite.T(), `^SF\d{10}$`, invoice.Number)
	assert.Equal(suite.T(), "200.00", invoice.Subtotal.StringFixed(2))
	assert.Equal(suite.T(), "40.00", invoice.TaxTotal.StringFixed(2))
	assert.Equal(suite.T(), "240.00", invoice.GrandTotal.StringFixed(2))
	if assert.Len(suite.T(), invoice.Lines, 1) {
		line := invoice.Lines[0]
		assert.Equal(suite.T(), "Çay 1kg", line.Description)
		assert.True(suite.T(), line.Net.Add(line.Tax).Equal(line.Gross))
	}
	assert.Equal(suite.T(), "8", suite.stock(item.ID).String())

	second := &models.Invoice{}
	suite.do(http.MethodPost, "/invoices", suite.saleBody(item.ID, "1"), http.StatusOK, second)
	assert.Greater(suite.T(), second.Number, invoice.Number)
	assert.Equal(suite.T(), "7", suite.stock(item.ID).String())
}

func (suite *InvoiceTestSuite) TestInclusiveVATAndInvoiceDiscount() {
	item := suite.createItem("Kahve", 50, 118, 18)
	body := suite.saleBody(item.ID, "1")
	body.VATMode = string(ledger.VATInclusive)
	body.DiscountKind = string(ledger.DiscountPercent)
	body.DiscountValue = dec("10")

	invoice := &models.Invoice{}
	suite.do(http.MethodPost, "/invoices", body, http.StatusOK, invoice)
	if assert.Len(suite.T(), invoice.Lines, 1) {
		assert.Equal(suite.T(), "100.00", invoice.Lines[0].Net.StringFixed(2))
		assert.Equal(suite.T(), "18.00", invoice.Lines[0].Tax.StringFixed(2))
		assert.Equal(suite.T(), "118.00", invoice.Lines[0].Gross.StringFixed(2))
	}
	assert.Equal(suite.T(), "10.00", invoice.DiscountAmount.StringFixed(2))
	assert.Equal(suite.T(), "108.00", invoice.GrandTotal.StringFixed(2))
}

func (suite *InvoiceTestSuite) TestClientTotalsAreRecomputed() {
	item := suite.createItem("Şeker", 10, 30, 10)
	body := suite.saleBody(item.ID, "3")
	body.Lines[0].UnitPrice = nullDec("25")
	body.Lines[0].DiscountPercent = dec("20")

	preview := &models.Invoice{}
	suite.do(http.MethodPost, "/invoices/preview", body, http.StatusOK, preview)
	assert.Equal(suite.T(), "60.00", preview.Subtotal.StringFixed(2))
	assert.Equal(suite.T(), "6.00", preview.TaxTotal.StringFixed(2))
	assert.Equal(suite.T(), "66.00", preview.GrandTotal.StringFixed(2))
	assert.Zero(suite.T(), preview.ID)
	// previews never move stock
	assert.Equal(suite.T(), "10", suite.stock(item.ID).String())
}

func (suite *InvoiceTestSuite) TestInvalidLinesAreRejected() {
	item := suite.createItem("Un", 10, 20, 1)
	for _, mutate := range []func(*controllers.InvoiceLineRequestBody){
		func(l *controllers.InvoiceLineRequestBody) { l.Quantity = dec("0") },
		func(l *controllers.InvoiceLineRequestBody) { l.Quantity = dec("-1") },
		func(l *controllers.InvoiceLineRequestBody) { l.UnitPrice = nullDec("-1") },
		func(l *controllers.InvoiceLineRequestBody) { l.DiscountPercent = dec("101") },
		func(l *controllers.InvoiceLineRequestBody) { l.VATRate = nullDec("-18") },
	} {
		body := suite.saleBody(item.ID, "1")
		mutate(&body.Lines[0])
		rec := suite.request(http.MethodPost, "/invoices", body, suite.token)
		suite.checkErrResponse(rec, http.StatusBadRequest)
	}
	assert.Equal(suite.T(), "10", suite.stock(item.ID).String())

	body := suite.saleBody(item.ID, "1")
	body.Lines = nil
	rec := suite.request(http.MethodPost, "/invoices", body, suite.token)
	suite.checkErrResponse(rec, http.StatusBadRequest)
}

func (suite *InvoiceTestSuite) TestUpdateRebooksStock() {
	item := suite.createItem("Pirinç", 20, 40, 1)
	invoice := &models.Invoice{}
	suite.do(http.MethodPost, "/invoices", suite.saleBody(item.ID, "5"), http.StatusOK, invoice)
	assert.Equal(suite.T(), "15", suite.stock(item.ID).String())

	updated := &models.Invoice{}
	suite.do(http.MethodPut, fmt.Sprintf("/invoices/%d", invoice.ID), suite.saleBody(item.ID, "2"), http.StatusOK, updated)
	assert.Equal(suite.T(), invoice.Number, updated.Number)
	assert.Equal(suite.T(), "18", suite.stock(item.ID).String())

	fetched := &models.Invoice{}
	suite.do(http.MethodGet, fmt.Sprintf("/invoices/%d", invoice.ID), nil, http.StatusOK, fetched)
	assert.Len(suite.T(), fetched.Lines, 1)
	assert.Equal(suite.T(), "80.00", fetched.Subtotal.StringFixed(2))

	// the type of an invoice is fixed
	body := suite.saleBody(item.ID, "2")
	body.Type = common.InvoiceTypePurchase
	rec := suite.request(http.MethodPut, fmt.Sprintf("/invoices/%d", invoice.ID), body, suite.token)
	suite.checkErrResponse(rec, http.StatusBadRequest)
}

func (suite *InvoiceTestSuite) TestPurchaseIncreasesStock() {
	item := suite.createItem("Zeytinyağı", 0, 200, 8)
	invoice := &models.Invoice{}
	suite.do(http.MethodPost, "/invoices", &controllers.InvoiceRequestBody{
		Type:      common.InvoiceTypePurchase,
		AccountID: suite.customer.ID,
		Lines:     []controllers.InvoiceLineRequestBody{{ItemID: item.ID, Quantity: dec("12"), UnitPrice: nullDec("150")}},
	}, http.StatusOK, invoice)
	assert.Regexp(suite.T(), `^AF\d{10}$`, invoice.Number)
	assert.Equal(suite.T(), "12", suite.stock(item.ID).String())
}

func (suite *InvoiceTestSuite) TestVoidAndPaid() {
	item := suite.createItem("Makarna", 10, 15, 1)
	invoice := &models.Invoice{}
	suite.do(http.MethodPost, "/invoices", suite.saleBody(item.ID, "4"), http.StatusOK, invoice)

	paid := &models.Invoice{}
	suite.do(http.MethodPost, fmt.Sprintf("/invoices/%d/paid", invoice.ID), &controllers.PaidRequestBody{Paid: true}, http.StatusOK, paid)
	assert.True(suite.T(), paid.Paid)
	suite.do(http.MethodPost, fmt.Sprintf("/invoices/%d/paid", invoice.ID), &controllers.PaidRequestBody{Paid: false}, http.StatusOK, paid)
	assert.False(suite.T(), paid.Paid)

	voided := &models.Invoice{}
	suite.do(http.MethodPost, fmt.Sprintf("/invoices/%d/void", invoice.ID), nil, http.StatusOK, voided)
	assert.True(suite.T(), voided.Void)
	assert.Equal(suite.T(), "10", suite.stock(item.ID).String())

	// voiding twice reverses the stock once
	suite.do(http.MethodPost, fmt.Sprintf("/invoices/%d/void", invoice.ID), nil, http.StatusOK, voided)
	assert.Equal(suite.T(), "10", suite.stock(item.ID).String())

	rec := suite.request(http.MethodPost, fmt.Sprintf("/invoices/%d/paid", invoice.ID), &controllers.PaidRequestBody{Paid: true}, suite.token)
	suite.checkErrResponse(rec, http.StatusBadRequest)
	rec = suite.request(http.MethodPut, fmt.Sprintf("/invoices/%d", invoice.ID), suite.saleBody(item.ID, "1"), suite.token)
	suite.checkErrResponse(rec, http.StatusBadRequest)
}

func (suite *InvoiceTestSuite) TestDeleteReversesStock() {
	item := suite.createItem("Bulgur", 10, 25, 1)
	invoice := &models.Invoice{}
	suite.do(http.MethodPost, "/invoices", suite.saleBody(item.ID, "3"), http.StatusOK, invoice)
	assert.Equal(suite.T(), "7", suite.stock(item.ID).String())

	deleted := &controllers.DeleteResponseBody{}
	suite.do(http.MethodDelete, fmt.Sprintf("/invoices/%d", invoice.ID), nil, http.StatusOK, deleted)
	assert.True(suite.T(), deleted.Changed)
	assert.Equal(suite.T(), "10", suite.stock(item.ID).String())

	rec := suite.request(http.MethodGet, fmt.Sprintf("/invoices/%d", invoice.ID), nil, suite.token)
	suite.checkErrResponse(rec, http.StatusNotFound)

	listed := []models.Invoice{}
	suite.do(http.MethodGet, fmt.Sprintf("/invoices?account_id=%d", suite.customer.ID), nil, http.StatusOK, &listed)
	for _, inv := range listed {
		assert.NotEqual(suite.T(), invoice.ID, inv.ID)
	}

	suite.do(http.MethodDelete, fmt.Sprintf("/invoices/%d", invoice.ID), nil, http.StatusOK, deleted)
	assert.False(suite.T(), deleted.Changed)
	assert.Equal(suite.T(), "10", suite.stock(item.ID).String())
}

func (suite *InvoiceTestSuite) TestGroupPricesAndOptions() {
	parent := &models.CustomerGroup{}
	suite.do(http.MethodPost, "/groups", &controllers.CreateGroupRequestBody{Name: "Toptancılar"}, http.StatusOK, parent)
	child := &models.CustomerGroup{}
	suite.do(http.MethodPost, "/groups", &controllers.CreateGroupRequestBody{Name: "Bölge Bayileri", ParentID: parent.ID}, http.StatusOK, child)
	assert.Regexp(suite.T(), `^GR\d{3}$`, parent.Code)
	assert.Regexp(suite.T(), `^AR\d{3}$`, child.Code)

	dealer := &models.Account{}
	suite.do(http.MethodPost, "/accounts", &controllers.AccountRequestBody{
		Kind:     common.AccountKindCustomer,
		Name:     "Bayi Ltd",
		Currency: "TL",
		GroupID:  child.ID,
	}, http.StatusOK, dealer)

	item := suite.createItem("Koli Bandı", 100, 100, 20)
	suite.do(http.MethodPut, fmt.Sprintf("/items/%d/group-prices", item.ID), &controllers.GroupPricesRequestBody{
		Prices: []controllers.GroupPrice{{GroupID: parent.ID, Price: dec("80")}},
	}, http.StatusOK, nil)

	// the parent group price reaches the child group
	quote := &service.PriceQuote{}
	suite.do(http.MethodGet, fmt.Sprintf("/items/%d/quote?customer_id=%d", item.ID, dealer.ID), nil, http.StatusOK, quote)
	assert.True(suite.T(), quote.GroupPrice)
	assert.Equal(suite.T(), "80.00", quote.UnitPrice.StringFixed(2))
	assert.Equal(suite.T(), "20.00", quote.ImpliedDiscount.StringFixed(2))

	suite.do(http.MethodGet, fmt.Sprintf("/items/%d/quote?customer_id=%d", item.ID, suite.customer.ID), nil, http.StatusOK, quote)
	assert.False(suite.T(), quote.GroupPrice)
	assert.Equal(suite.T(), "100.00", quote.UnitPrice.StringFixed(2))

	option := &models.ItemOption{}
	suite.do(http.MethodPost, fmt.Sprintf("/items/%d/options", item.ID), &controllers.OptionRequestBody{Name: "Renk", Required: true}, http.StatusOK, option)
	value := &models.ItemOptionValue{}
	suite.do(http.MethodPost, fmt.Sprintf("/items/options/%d/values", option.ID), &controllers.OptionValueRequestBody{
		Value:         "Şeffaf",
		SurchargeKind: string(ledger.SurchargeFixed),
		Surcharge:     dec("10"),
		IsDefault:     true,
	}, http.StatusOK, value)

	// the required option falls back to its default value
	invoice := &models.Invoice{}
	suite.do(http.MethodPost, "/invoices", &controllers.InvoiceRequestBody{
		Type:      common.InvoiceTypeSale,
		AccountID: dealer.ID,
		Lines:     []controllers.InvoiceLineRequestBody{{ItemID: item.ID, Quantity: dec("2")}},
	}, http.StatusOK, invoice)
	if assert.Len(suite.T(), invoice.Lines, 1) {
		line := invoice.Lines[0]
		assert.Equal(suite.T(), value.ID, line.OptionValueID)
		assert.Equal(suite.T(), "80.00", line.UnitPrice.StringFixed(2))
		assert.Equal(suite.T(), "10.00", line.OptionSurcharge.StringFixed(2))
		// the group price is not discounted a second time
		assert.Equal(suite.T(), "180.00", line.Net.StringFixed(2))
		assert.Equal(suite.T(), "0.00", line.DiscountAmount.StringFixed(2))
		assert.NotEmpty(suite.T(), line.PriceNote)
	}

	other := suite.createItem("Streç Film", 10, 50, 20)
	rec := suite.request(http.MethodPost, "/invoices", &controllers.InvoiceRequestBody{
		Type:      common.InvoiceTypeSale,
		AccountID: dealer.ID,
		Lines:     []controllers.InvoiceLineRequestBody{{ItemID: other.ID, Quantity: dec("1"), OptionValueID: value.ID}},
	}, suite.token)
	suite.checkErrResponse(rec, http.StatusBadRequest)
}

func (suite *InvoiceTestSuite) TestQRCode() {
	item := suite.createItem("Defter", 10, 12, 20)
	invoice := &models.Invoice{}
	suite.do(http.MethodPost, "/invoices", suite.saleBody(item.ID, "1"), http.StatusOK, invoice)

	rec := suite.request(http.MethodGet, fmt.Sprintf("/invoices/%d/qr.png?size=128", invoice.ID), nil, suite.token)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "image/png", rec.Header().Get("Content-Type"))
	assert.True(suite.T(), bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = suite.request(http.MethodGet, "/invoices/99999/qr.png", nil, suite.token)
	suite.checkErrResponse(rec, http.StatusNotFound)
}

func TestInvoiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceTestSuite))
}

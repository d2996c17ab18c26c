package service_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/db"
	"github.com/muhasebehub/muhasebe.go/db/migrations"
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/muhasebehub/muhasebe.go/lib/logging"
	"github.com/muhasebehub/muhasebe.go/lib/service"
	"github.com/muhasebehub/muhasebe.go/rabbitmq"
	"github.com/muhasebehub/muhasebe.go/rabbitmq/mock_rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/migrate"
	"github.com/xuri/excelize/v2"
)

var dbSeq int64

func newTestService(t *testing.T, configure func(c *service.Config)) *service.LedgerService {
	t.Helper()
	c := &service.Config{
		DatabaseUri:  fmt.Sprintf("sqlite://file:svc%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1)),
		JWTSecret:    []byte("SECRET"),
		BaseCurrency: common.DefaultBaseCurrency,
		CompanyName:  "Test Ticaret",
		LogLevel:     "error",
	}
	if configure != nil {
		configure(c)
	}
	dbConn, err := db.Open(c)
	require.NoError(t, err)
	t.Cleanup(func() { dbConn.Close() })

	ctx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return &service.LedgerService{
		Config: c,
		DB:     dbConn,
		Logger: logging.Logger("", c.LogLevel),
	}
}

func newCustomer(t *testing.T, svc *service.LedgerService, name string) int64 {
	t.Helper()
	account, err := svc.CreateAccount(context.Background(), 1, service.AccountInput{
		Kind:         common.AccountKindCustomer,
		Name:         name,
		CurrencyCode: "TL",
		Active:       true,
	})
	require.NoError(t, err)
	return account.ID
}

func TestStatementXLSX(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	customer := newCustomer(t, svc, "Ekstre Müşterisi")

	day := func(d int) time.Time { return time.Date(2025, time.March, d, 10, 0, 0, 0, time.UTC) }
	for _, in := range []service.TransactionInput{
		{Direction: "inflow", Amount: decimal.NewFromInt(100), TransactionDate: day(1)},
		{Direction: "outflow", Amount: decimal.NewFromInt(30), TransactionDate: day(5), Description: "iade"},
		{Direction: "inflow", CurrencyCode: "USD", Amount: decimal.NewFromInt(10), ExchangeRate: decimal.NewNullDecimal(decimal.NewFromInt(30)), BaseAmount: decimal.NewNullDecimal(decimal.NewFromInt(300)), TransactionDate: day(6)},
		{Direction: "inflow", Amount: decimal.NewFromInt(1), TransactionDate: day(20)},
	} {
		in.AccountID = customer
		in.Channel = common.ChannelOther
		_, err := svc.CreateTransaction(ctx, 1, in)
		require.NoError(t, err)
	}

	data, err := svc.StatementXLSX(ctx, customer, day(2), day(10))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Statement", "Balances"}, f.GetSheetList())

	rows, err := f.GetRows("Statement")
	require.NoError(t, err)
	// header, opening balance, two entries in range
	require.Len(t, rows, 4)
	assert.Equal(t, "Opening balance", rows[1][2])
	assert.Equal(t, "100", rows[1][7])
	assert.Equal(t, "iade", rows[2][2])
	assert.Equal(t, "70", rows[2][7])
	assert.Equal(t, "USD", rows[3][4])
	assert.Equal(t, "300", rows[3][8])

	balances, err := f.GetRows("Balances")
	require.NoError(t, err)
	last := balances[len(balances)-1]
	assert.Equal(t, "Total (TL)", last[0])
	assert.Equal(t, "371", last[3])

	_, err = svc.StatementXLSX(ctx, 424242, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestInvoiceQRPayload(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	customer := newCustomer(t, svc, "QR Müşterisi")
	item, err := svc.CreateItem(ctx, 1, service.ItemInput{
		Name:      "Silgi",
		Unit:      "adet",
		Quantity:  decimal.NewFromInt(5),
		SalePrice: decimal.NewFromInt(10),
		VATRate:   decimal.NewFromInt(20),
		Active:    true,
	})
	require.NoError(t, err)
	invoice, err := svc.CreateInvoice(ctx, 1, service.InvoiceInput{
		Type:      common.InvoiceTypeSale,
		AccountID: customer,
		IssueDate: time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC),
		Lines:     []service.InvoiceLineInput{{ItemID: item.ID, Quantity: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)

	payload, err := svc.InvoiceQRPayload(ctx, invoice.ID)
	require.NoError(t, err)
	fields := strings.Split(payload, "|")
	require.Len(t, fields, 7)
	assert.Equal(t, "Test Ticaret", fields[0])
	assert.Equal(t, invoice.Number, fields[1])
	assert.True(t, strings.HasPrefix(invoice.Number, "SF2025"))
	assert.Equal(t, "2025-05-02", fields[2])
	assert.Equal(t, "4.00 TL", fields[5])
	assert.Equal(t, "24.00 TL", fields[6])

	png, err := svc.InvoiceQR(ctx, invoice.ID, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestMissingBaseCurrency(t *testing.T) {
	ctx := context.Background()

	lenient := newTestService(t, func(c *service.Config) { c.BaseCurrency = "GBP" })
	customer := newCustomer(t, lenient, "Sterlin Müşteri")
	_, err := lenient.CreateTransaction(ctx, 1, service.TransactionInput{
		AccountID: customer,
		Channel:   common.ChannelOther,
		Direction: "inflow",
		Amount:    decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	balance, err := lenient.AccountBalance(ctx, customer, "GBP")
	require.NoError(t, err)
	assert.True(t, balance.Balance.IsZero())
	assert.True(t, balance.Base)

	balance, err = lenient.AccountBalance(ctx, customer, "TL")
	require.NoError(t, err)
	assert.Equal(t, "50.00", balance.Balance.StringFixed(2))
	assert.False(t, balance.Base)

	strict := newTestService(t, func(c *service.Config) {
		c.BaseCurrency = "GBP"
		c.StrictBaseCurrency = true
	})
	customer = newCustomer(t, strict, "Sterlin Müşteri")
	_, err = strict.AccountBalance(ctx, customer, "GBP")
	assert.ErrorIs(t, err, service.ErrBaseCurrencyMissing)

	// balances in other currencies do not need the base currency
	balance, err = strict.AccountBalance(ctx, customer, "TL")
	require.NoError(t, err)
	assert.True(t, balance.Balance.IsZero())

	_, err = strict.CreateTransaction(ctx, 1, service.TransactionInput{
		AccountID: customer,
		Channel:   common.ChannelOther,
		Direction: "inflow",
		Amount:    decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, service.ErrBaseCurrencyMissing)
}

func TestTransferBaseCurrency(t *testing.T) {
	ctx := context.Background()
	transfer := service.TransferInput{Amount: decimal.NewFromInt(20)}

	lenient := newTestService(t, func(c *service.Config) { c.BaseCurrency = "GBP" })
	transfer.FromAccountID = newCustomer(t, lenient, "Gönderen")
	transfer.ToAccountID = newCustomer(t, lenient, "Alan")
	_, err := lenient.CreateTransfer(ctx, 1, transfer)
	require.NoError(t, err)
	balance, err := lenient.AccountBalance(ctx, transfer.ToAccountID, "TL")
	require.NoError(t, err)
	assert.Equal(t, "20.00", balance.Balance.StringFixed(2))

	strict := newTestService(t, func(c *service.Config) {
		c.BaseCurrency = "GBP"
		c.StrictBaseCurrency = true
	})
	transfer.FromAccountID = newCustomer(t, strict, "Gönderen")
	transfer.ToAccountID = newCustomer(t, strict, "Alan")
	_, err = strict.CreateTransfer(ctx, 1, transfer)
	assert.ErrorIs(t, err, service.ErrBaseCurrencyMissing)
	balance, err = strict.AccountBalance(ctx, transfer.FromAccountID, "TL")
	require.NoError(t, err)
	assert.True(t, balance.Balance.IsZero())
}

func TestUpdateInvoiceKeepsDates(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	customer := newCustomer(t, svc, "Tarihli Müşteri")
	item, err := svc.CreateItem(ctx, 1, service.ItemInput{
		Name:      "Defter",
		Unit:      "adet",
		Quantity:  decimal.NewFromInt(10),
		SalePrice: decimal.NewFromInt(20),
		VATRate:   decimal.NewFromInt(10),
		Active:    true,
	})
	require.NoError(t, err)

	issued := time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)
	due := time.Date(2025, time.January, 30, 0, 0, 0, 0, time.UTC)
	invoice, err := svc.CreateInvoice(ctx, 1, service.InvoiceInput{
		Type:      common.InvoiceTypeSale,
		AccountID: customer,
		IssueDate: issued,
		DueDate:   due,
		Lines:     []service.InvoiceLineInput{{ItemID: item.ID, Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(invoice.Number, "SF2024"))

	_, err = svc.UpdateInvoice(ctx, 1, invoice.ID, service.InvoiceInput{
		AccountID: customer,
		Lines:     []service.InvoiceLineInput{{ItemID: item.ID, Quantity: decimal.NewFromInt(3)}},
	})
	require.NoError(t, err)

	updated, err := svc.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.Number, updated.Number)
	assert.Equal(t, 2024, updated.IssueDate.Year())
	assert.True(t, issued.Equal(updated.IssueDate))
	assert.True(t, !updated.DueDate.IsZero())
	assert.True(t, due.Equal(updated.DueDate.Time))
	assert.Equal(t, "66.00", updated.GrandTotal.StringFixed(2))
}

func TestSoftDeleteLifecycle(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	customer := newCustomer(t, svc, "Döngü")

	changed, err := svc.MarkDeleted(ctx, common.EntityAccount, customer, 7)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = svc.MarkDeleted(ctx, common.EntityAccount, customer, 7)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = svc.GetAccount(ctx, customer)
	assert.ErrorIs(t, err, service.ErrNotFound)

	changed, err = svc.Restore(ctx, common.EntityAccount, customer, 7)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.ErrorIs(t, svc.Purge(ctx, common.EntityAccount, customer, 7), ledger.ErrTransition)

	_, err = svc.MarkDeleted(ctx, common.EntityAccount, customer, 7)
	require.NoError(t, err)
	require.NoError(t, svc.Purge(ctx, common.EntityAccount, customer, 7))
	_, err = svc.Restore(ctx, common.EntityAccount, customer, 7)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.MarkDeleted(ctx, "payments", 1, 7)
	assert.ErrorIs(t, err, service.ErrUnknownEntity)
}

func TestLedgerEventsArePublished(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	amqpClient := mock_rabbitmq.NewMockAMQPClient(ctrl)
	amqpClient.EXPECT().
		ExchangeDeclare(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
	keys := []string{}
	amqpClient.EXPECT().
		PublishWithContext(gomock.Any(), gomock.Eq("test_ledger"), gomock.Any(), false, false, gomock.Any()).
		AnyTimes().
		DoAndReturn(func(_ context.Context, _, key string, _, _ bool, _ amqp.Publishing) error {
			keys = append(keys, key)
			return nil
		})
	client, err := rabbitmq.NewClient(amqpClient, rabbitmq.WithLedgerExchange("test_ledger"))
	require.NoError(t, err)

	svc := newTestService(t, nil)
	svc.RabbitMQClient = client
	ctx := context.Background()

	customer := newCustomer(t, svc, "Olaylı")
	tx, err := svc.CreateTransaction(ctx, 1, service.TransactionInput{
		AccountID: customer,
		Channel:   common.ChannelOther,
		Direction: "inflow",
		Amount:    decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	_, err = svc.MarkDeleted(ctx, common.EntityTransaction, tx.ID, 1)
	require.NoError(t, err)

	// failed operations publish nothing
	_, err = svc.CreateTransaction(ctx, 1, service.TransactionInput{
		AccountID: customer,
		Channel:   common.ChannelOther,
		Direction: "inflow",
		Amount:    decimal.Zero,
	})
	assert.Error(t, err)

	assert.Equal(t, []string{"accounts.created", "transactions.created", "transactions.deleted"}, keys)
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// InvoiceQRPayload is the text encoded in the QR code printed on an
// invoice: number, issue date, customer code and tax number, tax total and
// grand total.
func (svc *LedgerService) InvoiceQRPayload(ctx context.Context, id int64) (string, error) {
	invoice, err := getInvoice(ctx, svc.DB, id)
	if err != nil {
		return "", err
	}
	account, err := getAccount(ctx, svc.DB, invoice.AccountID)
	if err != nil {
		return "", err
	}
	fields := []string{
		svc.Config.CompanyName,
		invoice.Number,
		invoice.IssueDate.Format("2006-01-02"),
		account.Code,
		account.TaxNumber,
		invoice.TaxTotal.StringFixed(2) + " " + invoice.CurrencyCode,
		invoice.GrandTotal.StringFixed(2) + " " + invoice.CurrencyCode,
	}
	return strings.Join(fields, "|"), nil
}

func (svc *LedgerService) InvoiceQR(ctx context.Context, id int64, size int) ([]byte, error) {
	payload, err := svc.InvoiceQRPayload(ctx, id)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

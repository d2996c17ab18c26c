package service

import (
	"context"
	"fmt"
	"time"

	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type InvoiceLineInput struct {
	ItemID        int64
	OptionValueID int64
	Description   string
	Quantity      decimal.Decimal
	// UnitPrice overrides the resolved item price when set.
	UnitPrice       decimal.NullDecimal
	DiscountPercent decimal.Decimal
	// VATRate overrides the item VAT rate when set.
	VATRate decimal.NullDecimal
}

type InvoiceInput struct {
	Type         string
	AccountID    int64
	IssueDate    time.Time
	DueDate      time.Time
	CurrencyCode string
	VATMode      ledger.VATMode
	Discount     ledger.InvoiceDiscount
	Notes        string
	Lines        []InvoiceLineInput
}

type InvoiceFilter struct {
	Type      string
	AccountID int64
	From      time.Time
	To        time.Time
	Paid      *bool
	Limit     int
	Offset    int
}

func invoicePrefix(invoiceType string) (string, error) {
	switch invoiceType {
	case common.InvoiceTypeSale:
		return common.InvoicePrefixSale, nil
	case common.InvoiceTypePurchase:
		return common.InvoicePrefixPurchase, nil
	}
	return "", fmt.Errorf("%q: %w", invoiceType, ErrInvalidInvoiceType)
}

// buildInvoice fills invoice and its lines from in. Prices come from the
// item unless the line overrides them; every derived amount is computed
// here and nowhere else.
func buildInvoice(ctx context.Context, db bun.IDB, invoice *models.Invoice, in InvoiceInput) ([]*models.InvoiceLine, error) {
	if _, err := invoicePrefix(in.Type); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, ErrEmptyInvoice
	}
	vatMode := in.VATMode
	if vatMode == "" {
		vatMode = ledger.VATExclusive
	}
	if !vatMode.Valid() {
		return nil, ledger.ErrInvalidVATMode
	}
	account, err := requireLiveAccount(ctx, db, in.AccountID, common.AccountKindCustomer)
	if err != nil {
		return nil, err
	}
	currency := in.CurrencyCode
	if currency == "" {
		currency = account.CurrencyCode
	}
	if err := requireCurrency(ctx, db, currency); err != nil {
		return nil, err
	}

	lines := make([]*models.InvoiceLine, 0, len(in.Lines))
	results := make([]ledger.LineResult, 0, len(in.Lines))
	for i, lineIn := range in.Lines {
		line, err := buildLine(ctx, db, in.Type, account.ID, vatMode, lineIn)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		line.Position = i + 1
		lines = append(lines, line)
		results = append(results, ledger.LineResult{Net: line.Net, Tax: line.Tax, Gross: line.Gross})
	}
	totals, err := ledger.CalculateTotals(results, in.Discount)
	if err != nil {
		return nil, err
	}

	issueDate := in.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now().UTC()
	}
	invoice.Type = in.Type
	invoice.AccountID = account.ID
	invoice.IssueDate = issueDate
	invoice.DueDate = bun.NullTime{Time: in.DueDate}
	invoice.CurrencyCode = currency
	invoice.VATMode = string(vatMode)
	invoice.DiscountKind = string(in.Discount.Kind)
	invoice.DiscountValue = in.Discount.Value
	invoice.Notes = in.Notes
	setTotals(invoice, totals)
	return lines, nil
}

func setTotals(invoice *models.Invoice, totals ledger.Totals) {
	invoice.Subtotal = totals.Subtotal
	invoice.DiscountAmount = totals.Discount
	invoice.TaxTotal = totals.TaxTotal
	invoice.GrandTotal = totals.GrandTotal
}

func buildLine(ctx context.Context, db bun.IDB, invoiceType string, customerID int64, vatMode ledger.VATMode, in InvoiceLineInput) (*models.InvoiceLine, error) {
	item, err := getItem(ctx, db, in.ItemID)
	if err != nil {
		return nil, err
	}
	line := &models.InvoiceLine{
		ItemID:          item.ID,
		Description:     in.Description,
		Quantity:        in.Quantity,
		DiscountPercent: in.DiscountPercent,
		VATRate:         item.VATRate,
		VATMode:         string(vatMode),
		OptionSurcharge: decimal.Zero,
		SoftDelete:      models.SoftDelete{State: string(ledger.StateActive)},
	}
	if line.Description == "" {
		line.Description = item.Name
	}
	if in.VATRate.Valid {
		line.VATRate = in.VATRate.Decimal
	}

	switch {
	case in.UnitPrice.Valid:
		line.UnitPrice = in.UnitPrice.Decimal
	case invoiceType == common.InvoiceTypePurchase:
		line.UnitPrice = item.PurchasePrice
	default:
		q, err := quote(ctx, db, item.ID, customerID, 0)
		if err != nil {
			return nil, err
		}
		line.UnitPrice = q.UnitPrice
		if q.GroupPrice {
			line.PriceNote = fmt.Sprintf("group price %s, list %s (%s%% below)",
				q.UnitPrice.StringFixed(2), q.ListPrice.StringFixed(2), q.ImpliedDiscount.StringFixed(2))
		}
	}

	optionValueID, err := lineOption(item, in.OptionValueID)
	if err != nil {
		return nil, err
	}
	if optionValueID != 0 {
		surcharge, err := optionSurcharge(ctx, db, item, optionValueID, line.UnitPrice)
		if err != nil {
			return nil, err
		}
		line.OptionValueID = optionValueID
		line.OptionSurcharge = ledger.Round(surcharge)
	}

	res, err := ledger.CalculateLine(ledger.LineInput{
		Quantity:        line.Quantity,
		UnitPrice:       line.UnitPrice,
		OptionSurcharge: line.OptionSurcharge,
		DiscountPercent: line.DiscountPercent,
		VATRate:         line.VATRate,
		VATMode:         vatMode,
	})
	if err != nil {
		return nil, err
	}
	line.DiscountAmount = res.DiscountAmount
	line.Net = res.Net
	line.Tax = res.Tax
	line.Gross = res.Gross
	return line, nil
}

// lineOption picks the option value of a line. Without an explicit choice
// the default value of a required option is used.
func lineOption(item *models.Item, chosen int64) (int64, error) {
	if chosen != 0 {
		return chosen, nil
	}
	for _, option := range item.Options {
		if !option.Required {
			continue
		}
		for _, value := range option.Values {
			if value.IsDefault {
				return value.ID, nil
			}
		}
		return 0, fmt.Errorf("option %q is required: %w", option.Name, ErrInvalidOptionValue)
	}
	return 0, nil
}

// applyStock moves stock for the lines of an invoice. sign 1 books the
// invoice, -1 reverses it.
func (svc *LedgerService) applyStock(ctx context.Context, tx bun.Tx, invoiceType string, lines []*models.InvoiceLine, sign int64) error {
	factor := decimal.NewFromInt(sign)
	if invoiceType == common.InvoiceTypeSale {
		factor = factor.Neg()
	}
	for _, line := range lines {
		_, err := tx.NewUpdate().
			Model((*models.Item)(nil)).
			Set("quantity = quantity + ?", line.Quantity.Mul(factor)).
			Where("id = ?", line.ItemID).
			Exec(ctx)
		if err != nil {
			return err
		}
		item := &models.Item{}
		if err := tx.NewSelect().Model(item).Where("id = ?", line.ItemID).Scan(ctx); err != nil {
			return err
		}
		if item.BelowCritical() {
			svc.Logger.Warnf("Item %s (%s) is at or below its critical level: %s left", item.Code, item.Name, item.Quantity.String())
		}
	}
	return nil
}

func liveLines(ctx context.Context, db bun.IDB, invoiceID int64) ([]*models.InvoiceLine, error) {
	lines := []*models.InvoiceLine{}
	err := models.NotDeleted(db.NewSelect().Model(&lines).Where("invoice_id = ?", invoiceID)).
		Order("position").
		Scan(ctx)
	return lines, err
}

func insertLines(ctx context.Context, tx bun.Tx, invoiceID int64, lines []*models.InvoiceLine) error {
	for _, line := range lines {
		line.InvoiceID = invoiceID
	}
	_, err := tx.NewInsert().Model(&lines).Exec(ctx)
	return err
}

// CreateInvoice numbers and stores an invoice and books its stock
// movement.
func (svc *LedgerService) CreateInvoice(ctx context.Context, actor int64, in InvoiceInput) (*models.Invoice, error) {
	invoice := &models.Invoice{
		CreatedBy:  actor,
		SoftDelete: models.SoftDelete{State: string(ledger.StateActive)},
	}
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		lines, err := buildInvoice(ctx, tx, invoice, in)
		if err != nil {
			return err
		}
		prefix, _ := invoicePrefix(invoice.Type)
		prefix = fmt.Sprintf("%s%d", prefix, invoice.IssueDate.Year())
		if err := lockSequence(ctx, tx, prefix); err != nil {
			return err
		}
		if invoice.Number, err = nextCode(ctx, tx, (*models.Invoice)(nil), "number", prefix, 6); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(invoice).Exec(ctx); err != nil {
			return err
		}
		if err := insertLines(ctx, tx, invoice.ID, lines); err != nil {
			return err
		}
		invoice.Lines = lines
		return svc.applyStock(ctx, tx, invoice.Type, lines, 1)
	})
	if err != nil {
		return nil, err
	}
	svc.publish(ctx, common.EntityInvoice, "created", invoice.ID, actor, invoice, invoice.AccountID)
	return invoice, nil
}

// UpdateInvoice replaces the lines of an invoice. The stock movement of the
// old lines is reversed before the new lines are booked; the old lines are
// soft deleted so the edit stays traceable.
func (svc *LedgerService) UpdateInvoice(ctx context.Context, actor, id int64, in InvoiceInput) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := models.NotDeleted(tx.NewSelect().Model(invoice).Where("id = ?", id)).Scan(ctx); err != nil {
			return notFound(err, "invoice", id)
		}
		if invoice.Void {
			return ErrInvoiceVoid
		}
		if in.Type == "" {
			in.Type = invoice.Type
		}
		if in.Type != invoice.Type {
			return fmt.Errorf("type of %s cannot change: %w", invoice.Number, ErrInvalidInvoiceType)
		}
		// the number carries the issue year, so an edit keeps the stored dates
		if in.IssueDate.IsZero() {
			in.IssueDate = invoice.IssueDate
		}
		if in.DueDate.IsZero() && !invoice.DueDate.IsZero() {
			in.DueDate = invoice.DueDate.Time
		}
		old, err := liveLines(ctx, tx, invoice.ID)
		if err != nil {
			return err
		}
		if err := svc.applyStock(ctx, tx, invoice.Type, old, -1); err != nil {
			return err
		}
		_, err = tx.NewUpdate().
			Model((*models.InvoiceLine)(nil)).
			Set("state = ?", string(ledger.StateDeleted)).
			Set("deleted_at = ?", time.Now().UTC()).
			Set("deleted_by = ?", actor).
			Where("invoice_id = ?", invoice.ID).
			Where("state = ?", string(ledger.StateActive)).
			Exec(ctx)
		if err != nil {
			return err
		}

		lines, err := buildInvoice(ctx, tx, invoice, in)
		if err != nil {
			return err
		}
		if _, err := tx.NewUpdate().Model(invoice).WherePK().Exec(ctx); err != nil {
			return err
		}
		if err := insertLines(ctx, tx, invoice.ID, lines); err != nil {
			return err
		}
		invoice.Lines = lines
		return svc.applyStock(ctx, tx, invoice.Type, lines, 1)
	})
	if err != nil {
		return nil, err
	}
	svc.publish(ctx, common.EntityInvoice, "updated", invoice.ID, actor, invoice, invoice.AccountID)
	return invoice, nil
}

// GetInvoice loads an invoice with its live lines. Totals are recomputed
// from the lines rather than read from the stored cache.
func (svc *LedgerService) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	return getInvoice(ctx, svc.DB, id)
}

func getInvoice(ctx context.Context, db bun.IDB, id int64) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	if err := models.NotDeleted(db.NewSelect().Model(invoice).Where("id = ?", id)).Scan(ctx); err != nil {
		return nil, notFound(err, "invoice", id)
	}
	lines, err := liveLines(ctx, db, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.Lines = lines
	results := make([]ledger.LineResult, 0, len(lines))
	for _, line := range lines {
		results = append(results, ledger.LineResult{Net: line.Net, Tax: line.Tax, Gross: line.Gross})
	}
	totals, err := ledger.CalculateTotals(results, ledger.InvoiceDiscount{
		Kind:  ledger.DiscountKind(invoice.DiscountKind),
		Value: invoice.DiscountValue,
	})
	if err != nil {
		return nil, err
	}
	setTotals(invoice, totals)
	return invoice, nil
}

func (svc *LedgerService) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	query := models.NotDeleted(svc.DB.NewSelect().Model(&invoices))
	if filter.Type != "" {
		query.Where("type = ?", filter.Type)
	}
	if filter.AccountID != 0 {
		query.Where("account_id = ?", filter.AccountID)
	}
	if !filter.From.IsZero() {
		query.Where("issue_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query.Where("issue_date <= ?", filter.To)
	}
	if filter.Paid != nil {
		query.Where("paid = ?", *filter.Paid)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	err := query.OrderExpr("issue_date DESC, id DESC").Limit(limit).Offset(filter.Offset).Scan(ctx)
	return invoices, err
}

// PreviewInvoice computes an invoice without storing it or moving stock.
func (svc *LedgerService) PreviewInvoice(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	lines, err := buildInvoice(ctx, svc.DB, invoice, in)
	if err != nil {
		return nil, err
	}
	invoice.Lines = lines
	return invoice, nil
}

func (svc *LedgerService) SetPaid(ctx context.Context, actor, id int64, paid bool) (*models.Invoice, error) {
	invoice, err := getInvoice(ctx, svc.DB, id)
	if err != nil {
		return nil, err
	}
	if invoice.Void && paid {
		return nil, ErrInvoiceVoid
	}
	invoice.Paid = paid
	if _, err := svc.DB.NewUpdate().Model(invoice).Column("paid", "updated_at").WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	svc.publish(ctx, common.EntityInvoice, "paid", invoice.ID, actor, invoice, invoice.AccountID)
	return invoice, nil
}

// VoidInvoice cancels an invoice and reverses its stock movement. A void
// invoice keeps its number and stays listed.
func (svc *LedgerService) VoidInvoice(ctx context.Context, actor, id int64) (*models.Invoice, error) {
	var invoice *models.Invoice
	changed := false
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if invoice, err = getInvoice(ctx, tx, id); err != nil {
			return err
		}
		if invoice.Void {
			return nil
		}
		if err := svc.applyStock(ctx, tx, invoice.Type, invoice.Lines, -1); err != nil {
			return err
		}
		invoice.Void = true
		changed = true
		_, err = tx.NewUpdate().Model(invoice).Column("void", "updated_at").WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		svc.publish(ctx, common.EntityInvoice, "voided", invoice.ID, actor, invoice, invoice.AccountID)
	}
	return invoice, nil
}

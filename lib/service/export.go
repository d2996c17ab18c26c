package service

import (
	"context"
	"fmt"
	"time"

	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	statementSheet = "Statement"
	balancesSheet  = "Balances"
)

// StatementXLSX renders the live transactions of an account between from
// and to as an XLSX workbook with a running balance per currency. Zero
// bounds are open. Entries before from are folded into an opening row.
func (svc *LedgerService) StatementXLSX(ctx context.Context, accountID int64, from, to time.Time) ([]byte, error) {
	start := time.Now()
	account, err := getAccount(ctx, svc.DB, accountID)
	if err != nil {
		return nil, err
	}
	transactions, err := liveEntries(ctx, svc.DB, account)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", statementSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(balancesSheet); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Channel", "Description", "Document", "Currency", "Inflow", "Outflow", "Balance", "Base amount"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(statementSheet, cell, h)
	}

	row := 2
	write := func(sheet string, col int, v interface{}) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	money := func(d decimal.Decimal) float64 {
		v, _ := d.Round(ledger.CurrencyPlaces).Float64()
		return v
	}

	running := map[string]decimal.Decimal{}
	currencies := []string{}
	signedOf := func(e ledger.Entry) decimal.Decimal {
		if e.Direction == ledger.Outflow {
			return e.Amount.Face().Neg()
		}
		return e.Amount.Face()
	}
	first := 0
	for ; first < len(transactions); first++ {
		t := &transactions[first]
		if from.IsZero() || !t.TransactionDate.Before(from) {
			break
		}
		if _, ok := running[t.CurrencyCode]; !ok {
			currencies = append(currencies, t.CurrencyCode)
		}
		running[t.CurrencyCode] = running[t.CurrencyCode].Add(signedOf(t.LedgerEntry(svc.Config.BaseCurrency)))
	}
	for _, currency := range currencies {
		write(statementSheet, 1, from.Format("2006-01-02"))
		write(statementSheet, 3, "Opening balance")
		write(statementSheet, 5, currency)
		write(statementSheet, 8, money(running[currency]))
		row++
	}

	for i := first; i < len(transactions); i++ {
		t := &transactions[i]
		if !to.IsZero() && t.TransactionDate.After(to) {
			break
		}
		entry := t.LedgerEntry(svc.Config.BaseCurrency)
		balance := running[t.CurrencyCode].Add(signedOf(entry))
		running[t.CurrencyCode] = balance

		write(statementSheet, 1, t.TransactionDate.Format("2006-01-02"))
		write(statementSheet, 2, t.Channel)
		write(statementSheet, 3, t.Description)
		write(statementSheet, 4, t.DocumentNo)
		write(statementSheet, 5, t.CurrencyCode)
		if entry.Direction == ledger.Inflow {
			write(statementSheet, 6, money(t.Amount))
		} else {
			write(statementSheet, 7, money(t.Amount))
		}
		write(statementSheet, 8, money(balance))
		if converted, ok := entry.Amount.(ledger.Converted); ok {
			write(statementSheet, 9, money(converted.BaseValue))
		}
		row++
	}
	entries := row - 2

	row = 1
	for i, h := range []string{"Currency", "Inflow", "Outflow", "Balance"} {
		write(balancesSheet, i+1, h)
	}
	for _, b := range ledger.Breakdown(entriesOf(transactions, svc.Config.BaseCurrency)) {
		row++
		write(balancesSheet, 1, b.Currency)
		write(balancesSheet, 2, money(b.Inflow))
		write(balancesSheet, 3, money(b.Outflow))
		write(balancesSheet, 4, money(b.Balance))
	}
	if base, err := svc.accountBalance(ctx, svc.DB, account, svc.Config.BaseCurrency); err == nil {
		row += 2
		write(balancesSheet, 1, fmt.Sprintf("Total (%s)", base.Currency))
		write(balancesSheet, 4, money(base.Balance))
	}

	_ = f.SetColWidth(statementSheet, "A", "A", 12)
	_ = f.SetColWidth(statementSheet, "C", "C", 40)
	_ = f.SetColWidth(statementSheet, "F", "I", 14)
	_ = f.SetColWidth(balancesSheet, "A", "D", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	svc.Logger.Infof("Exported statement of account %d: %d rows in %dms", account.ID, entries, time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/sh44ni/telalalbedaya-sub000/internal/receipt"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

const sheetName = "Transactions"

var columns = []struct {
	header string
	width  float64
}{
	{"Number", 11},
	{"Date", 12},
	{"Category", 10},
	{"Type", 16},
	{"Payer / Payee", 28},
	{"Amount", 14},
	{"Method", 14},
	{"Property", 24},
	{"Project", 20},
	{"Reference", 14},
	{"Description", 40},
}

// Service handles the export of transactions as spreadsheets and receipt bundles.
type Service struct {
	transactions *transaction.Service
	receipts     *receipt.Renderer
}

// NewService creates a new export Service.
func NewService(txService *transaction.Service, receipts *receipt.Renderer) *Service {
	return &Service{
		transactions: txService,
		receipts:     receipts,
	}
}

// Export loads the transactions matching the filter.
func (s *Service) Export(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return txs, nil
}

// WriteWorkbook writes txs as an XLSX workbook with a totals footer.
func (s *Service) WriteWorkbook(w io.Writer, txs []*transaction.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	for i, c := range columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column %d: %w", i+1, err)
		}

		f.SetCellValue(sheetName, col+"1", c.header)
		f.SetColWidth(sheetName, col, col, c.width)
	}

	var revenue, expenses decimal.Decimal

	for idx, tx := range txs {
		row := idx + 2

		amount := tx.Amount
		if tx.IsIncome() {
			revenue = revenue.Add(tx.Amount)
		} else {
			expenses = expenses.Add(tx.Amount)
			amount = amount.Neg()
		}

		values := []any{
			tx.Number,
			tx.Date.Format(time.DateOnly),
			string(tx.Category),
			string(tx.Type),
			tx.Party(),
			amount.InexactFloat64(),
			string(tx.PaymentMethod),
			strings.TrimSpace(tx.Display.PropertyNumber + " " + tx.Display.PropertyTitle),
			tx.Display.ProjectName,
			tx.Reference,
			tx.Description,
		}

		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
	}

	footer := len(txs) + 3
	totals := [][2]any{
		{"Revenue", revenue.InexactFloat64()},
		{"Expenses", expenses.InexactFloat64()},
		{"Net income", revenue.Sub(expenses).InexactFloat64()},
	}

	for i, t := range totals {
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", footer+i), t[0])
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", footer+i), t[1])
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

// WriteBundle writes a zip archive holding the workbook, a plain-text
// summary and one PDF receipt per transaction.
func (s *Service) WriteBundle(w io.Writer, txs []*transaction.Transaction) error {
	zw := zip.NewWriter(w)

	var workbook bytes.Buffer
	if err := s.WriteWorkbook(&workbook, txs); err != nil {
		return err
	}

	if err := addFile(zw, "transactions.xlsx", workbook.Bytes()); err != nil {
		return err
	}

	if err := addFile(zw, "summary.txt", []byte(s.Summary(txs))); err != nil {
		return err
	}

	for _, tx := range txs {
		var pdf bytes.Buffer
		if err := s.receipts.Render(&pdf, tx); err != nil {
			return err
		}

		if err := addFile(zw, "receipts/"+receipt.Filename(tx), pdf.Bytes()); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}

	return nil
}

func addFile(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}

	return nil
}

// Summary creates a plain-text listing of txs, one line each.
func (s *Service) Summary(txs []*transaction.Transaction) string {
	var sb strings.Builder

	for _, tx := range txs {
		sign := "-"
		if tx.IsIncome() {
			sign = "+"
		}

		party := tx.Party()
		if party == "" {
			party = "-"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s%s | %s\n",
			tx.Date.Format(time.DateOnly), tx.Number, tx.Type, sign, tx.Amount.StringFixed(2), party)
	}

	return sb.String()
}

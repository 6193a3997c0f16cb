// Package statement reads bank statement CSV exports into transaction params.
package statement

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/sh44ni/telalalbedaya-sub000/internal/encoding"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

// Parser auto-detects the statement layout by matching column headers
// against known profiles. Credits become income, debits expenses.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.RecordParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, colMap, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching statement format found: expected date, description and amount columns")
	}

	return parseRows(profile, colMap, rows[headerIdx+1:], headerIdx+1)
}

func sniffDelimiter(data []byte) rune {
	switch {
	case bytes.Count(data, []byte{'\t'}) > 0:
		return '\t'
	case bytes.Count(data, []byte{';'}) > bytes.Count(data, []byte{','}):
		return ';'
	}

	return ','
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) index(name string) int {
	if name == "" {
		return -1
	}

	if i, ok := c[name]; ok {
		return i
	}

	return -1
}

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts transactions from data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file (for error messages).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]transaction.RecordParams, error) {
	dateIdx := cols.index(p.DateCol)
	descIdx := cols.index(p.DescCol)
	refIdx := cols.index(p.RefCol)

	var params []transaction.RecordParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		date, ok := parseDate(row, dateIdx)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, category, ok := parseRowAmount(p, cols, row)
		if !ok {
			continue
		}

		typ := transaction.TypeOtherIncome
		if category == transaction.CategoryExpense {
			typ = transaction.TypeOtherExpense
		}

		params = append(params, transaction.RecordParams{
			Category:       category,
			Type:           typ,
			Amount:         amount,
			PaymentMethod:  transaction.MethodBankTransfer,
			Date:           date,
			Description:    desc,
			RawDescription: desc,
			Reference:      cellValue(row, refIdx),
		})
	}

	return params, nil
}

// parseDate returns false for empty cells or unparseable values (footer rows, etc).
func parseDate(row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseRowAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Category, bool) {
	switch p.AmountMode {
	case amountSingle:
		return parseSingleAmount(row, cols.index(p.AmountCol))
	case amountSplit:
		return parseSplitAmount(row, cols.index(p.DebitCol), cols.index(p.CreditCol))
	}

	return decimal.Zero, "", false
}

// parseSingleAmount handles a single signed amount column.
func parseSingleAmount(row []string, idx int) (decimal.Decimal, transaction.Category, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, "", false
	}

	amount, err := parseAmount(s)
	if err != nil || amount.IsZero() {
		return decimal.Zero, "", false
	}

	if amount.IsNegative() {
		return amount.Neg(), transaction.CategoryExpense, true
	}

	return amount, transaction.CategoryIncome, true
}

// parseSplitAmount handles separate debit/credit columns.
func parseSplitAmount(row []string, debitIdx, creditIdx int) (decimal.Decimal, transaction.Category, bool) {
	if s := cellValue(row, debitIdx); s != "" {
		amount, err := parseAmount(s)
		if err == nil && !amount.IsZero() {
			return amount.Abs(), transaction.CategoryExpense, true
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		amount, err := parseAmount(s)
		if err == nil && !amount.IsZero() {
			return amount.Abs(), transaction.CategoryIncome, true
		}
	}

	return decimal.Zero, "", false
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

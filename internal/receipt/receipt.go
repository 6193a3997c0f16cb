package receipt

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

// Renderer turns a recorded transaction into a printable A4 receipt.
type Renderer struct {
	company string
	now     func() time.Time
}

type Option func(*Renderer)

// WithClock overrides the time printed in the footer.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

func NewRenderer(company string, opts ...Option) *Renderer {
	r := &Renderer{company: company, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Filename is the download name of the receipt for tx.
func Filename(tx *transaction.Transaction) string {
	if tx.Number == "" {
		return tx.ID.String() + ".pdf"
	}

	return tx.Number + ".pdf"
}

// Render writes the PDF receipt of tx to w.
func (r *Renderer) Render(w io.Writer, tx *transaction.Transaction) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(16, 16, 16)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(r.company))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, title(tx))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("No. %s    Date %s", tx.Number, tx.Date.Format(time.DateOnly)))
	pdf.Ln(12)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetTextColor(20, 20, 20)

	for _, row := range rows(tx) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(55, 9, row[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 9, tr(row[1]), "1", 1, "L", false, 0, "")
	}

	if sd := tx.SaleDetails; sd != nil {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 11)

		colW := []float64{60, 60, 58}
		pdf.CellFormat(colW[0], 9, "Total price", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 9, "Paid to date", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[2], 9, "Remaining", "1", 1, "C", true, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(colW[0], 9, sd.TotalPrice.StringFixed(2), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 9, sd.PaidAmount.StringFixed(2), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[2], 9, sd.RemainingAmount.StringFixed(2), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(24)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(80, 6, "Received by", "T", 0, "C", false, 0, "")

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated "+r.now().Format(time.RFC3339), "", 0, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering receipt %s: %w", tx.Number, err)
	}

	return nil
}

func title(tx *transaction.Transaction) string {
	if tx.IsIncome() {
		return "PAYMENT RECEIPT"
	}

	return "PAYMENT VOUCHER"
}

func rows(tx *transaction.Transaction) [][2]string {
	party := "Received from"
	if !tx.IsIncome() {
		party = "Paid to"
	}

	out := [][2]string{
		{party, tx.Party()},
		{"Amount", tx.Amount.StringFixed(2)},
		{"Payment method", humanize(string(tx.PaymentMethod))},
		{"Type", humanize(string(tx.Type))},
	}

	if d := tx.Display; d.PropertyNumber != "" || d.PropertyTitle != "" {
		out = append(out, [2]string{"Property", strings.TrimSpace(d.PropertyNumber + " " + d.PropertyTitle)})
	}

	if tx.Display.ProjectName != "" {
		out = append(out, [2]string{"Project", tx.Display.ProjectName})
	}

	if tx.Reference != "" {
		out = append(out, [2]string{"Reference", tx.Reference})
	}

	if tx.Description != "" {
		out = append(out, [2]string{"Description", trimTo(tx.Description, 90)})
	}

	return out
}

// humanize turns "bank_transfer" into "Bank transfer".
func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}

	return s[:max-3] + "..."
}

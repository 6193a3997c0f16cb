package statement

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Amount" with value "-10.000").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// Profile describes the column layout of a bank statement export.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	RefCol     string // optional
	AmountMode amountMode
	AmountCol  string // used when AmountMode == amountSingle
	DebitCol   string // used when AmountMode == amountSplit
	CreditCol  string // used when AmountMode == amountSplit
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:       "narration",
		DateCol:    "value date",
		DescCol:    "narration",
		RefCol:     "cheque/ref no",
		AmountMode: amountSplit,
		DebitCol:   "withdrawals",
		CreditCol:  "deposits",
	},
	{
		Name:       "split",
		DateCol:    "transaction date",
		DescCol:    "description",
		RefCol:     "reference",
		AmountMode: amountSplit,
		DebitCol:   "debit",
		CreditCol:  "credit",
	},
	{
		Name:       "signed",
		DateCol:    "date",
		DescCol:    "description",
		RefCol:     "reference",
		AmountMode: amountSingle,
		AmountCol:  "amount",
	},
}

// dateLayouts are the date formats seen in statement exports.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"02-01-2006",
	"02 Jan 2006",
	"02-Jan-2006",
	"2-Jan-06",
}

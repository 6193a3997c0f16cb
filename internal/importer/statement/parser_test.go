package statement_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sh44ni/telalalbedaya-sub000/internal/importer/statement"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParser_Split(t *testing.T) {
	csv := `Account Statement
Account Number,0123456789
Currency,OMR
Period,01/01/2024 to 31/01/2024

Transaction Date,Value Date,Description,Reference,Debit,Credit,Balance
03/01/2024,03/01/2024,TRF FROM AISHA AL BALUSHI,FT24003,,"1,500.000","11,500.000"
15/01/2024,15/01/2024,GULF PLUMBING LLC,CHQ 000145,120.500,,"11,379.500"
,,Closing balance,,,,"11,379.500"
`

	txs, err := statement.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2024, 1, 3), txs[0].Date)
	assert.Equal(t, "TRF FROM AISHA AL BALUSHI", txs[0].Description)
	assert.Equal(t, "TRF FROM AISHA AL BALUSHI", txs[0].RawDescription)
	assert.Equal(t, "FT24003", txs[0].Reference)
	assert.True(t, amount("1500").Equal(txs[0].Amount))
	assert.Equal(t, transaction.CategoryIncome, txs[0].Category)
	assert.Equal(t, transaction.TypeOtherIncome, txs[0].Type)
	assert.Equal(t, transaction.MethodBankTransfer, txs[0].PaymentMethod)

	assert.Equal(t, date(2024, 1, 15), txs[1].Date)
	assert.True(t, amount("120.5").Equal(txs[1].Amount))
	assert.Equal(t, transaction.CategoryExpense, txs[1].Category)
	assert.Equal(t, transaction.TypeOtherExpense, txs[1].Type)
}

func TestParser_Signed(t *testing.T) {
	csv := "Date;Description;Amount\n2024-02-01;Rent February PRP-0001;500,000\n2024-02-04;Electricity;-35,250\n"

	txs, err := statement.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.True(t, amount("500000").Equal(txs[0].Amount), "a lone three-digit group is a thousands separator")
	assert.Equal(t, transaction.CategoryIncome, txs[0].Category)

	assert.True(t, amount("35250").Equal(txs[1].Amount))
	assert.Equal(t, transaction.CategoryExpense, txs[1].Category)
}

func TestParser_Narration(t *testing.T) {
	csv := "VALUE DATE\tNARRATION\tCHEQUE/REF NO\tWITHDRAWALS\tDEPOSITS\n" +
		"05 Feb 2024\tCASH DEPOSIT RNT-0002\t\t\t300.000\n" +
		"06 Feb 2024\tMUSCAT LAW OFFICE\t778\t(75.000)\t\n"

	txs, err := statement.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2024, 2, 5), txs[0].Date)
	assert.Equal(t, transaction.CategoryIncome, txs[0].Category)
	assert.True(t, amount("300").Equal(txs[0].Amount))

	assert.Equal(t, "778", txs[1].Reference)
	assert.Equal(t, transaction.CategoryExpense, txs[1].Category)
	assert.True(t, amount("75").Equal(txs[1].Amount))
}

func TestParser_SkipsZeroAndUnparseableRows(t *testing.T) {
	csv := `Date,Description,Amount
2024-03-01,Opening balance,0.000
not a date,Footer,12.000
2024-03-02,Service charge,abc
2024-03-03,Deposit,250.000
`

	txs, err := statement.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Deposit", txs[0].Description)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{
			name: "UnknownLayout",
			csv:  "Foo,Bar\n1,2\n",
			want: "no matching statement format",
		},
		{
			name: "MissingDescription",
			csv:  "Date,Description,Amount\n2024-03-01,,10.000\n",
			want: "row 2: missing description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := statement.NewParser().Parse(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// Package dashboard derives the figures shown on the back office landing page.
// It only reads.
package dashboard

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
)

type Period string

const (
	PeriodAll       Period = "all"
	PeriodThisWeek  Period = "this_week"
	PeriodThisMonth Period = "this_month"
	PeriodThisYear  Period = "this_year"
)

// Periods lists every Period in display order.
var Periods = []Period{PeriodAll, PeriodThisWeek, PeriodThisMonth, PeriodThisYear}

// ParsePeriod maps raw input onto a Period. Empty input means all.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return PeriodAll, nil
	}

	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}

	return "", apperrors.Invalid("period", "oneof", fmt.Sprintf("unknown period %q", s))
}

type Dashboard struct {
	Period     Period
	Start      *time.Time // nil for all
	End        time.Time
	Financial  Financial
	ChartData  []MonthPoint
	Properties PropertyStats
	Rentals    RentalStats
}

type Totals struct {
	Revenue   decimal.Decimal
	Expenses  decimal.Decimal
	NetIncome decimal.Decimal
}

type Financial struct {
	Totals

	// Previous is nil when the period is all.
	Previous *Comparison
}

// Comparison holds the totals of the window of equal length right before the
// period, and the percentage change against it.
type Comparison struct {
	Start  time.Time
	End    time.Time
	Totals Totals

	RevenueChange   float64
	ExpensesChange  float64
	NetIncomeChange float64
}

// MonthPoint is one YYYY-MM bucket of the chart.
type MonthPoint struct {
	Month    string
	Revenue  decimal.Decimal
	Expenses decimal.Decimal
}

type PropertyStats struct {
	Total         int
	ByStatus      map[property.Status]int
	OccupancyRate float64 // rented / total, 0..1
}

type RentalStats struct {
	Total    int
	ByStatus map[rental.PaymentStatus]int
}

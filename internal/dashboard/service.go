package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/calendar"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=dashboard
type Repository interface {
	ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	ListProperties(ctx context.Context, filter property.ListFilter) ([]*property.Property, error)
	ListRentals(ctx context.Context, filter rental.ListFilter) ([]*rental.Rental, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides time.Now when computing period windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Compute builds the dashboard for period. Financial figures cover the window
// from the period start to now; property and rental counts always cover the
// whole collections.
func (s *Service) Compute(ctx context.Context, period Period) (*Dashboard, error) {
	now := s.now().UTC()

	txs, err := s.repo.ListTransactions(ctx, transaction.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	props, err := s.repo.ListProperties(ctx, property.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}

	rentals, err := s.repo.ListRentals(ctx, rental.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing rentals: %w", err)
	}

	d := &Dashboard{
		Period:     period,
		End:        now,
		Properties: propertyStats(props),
		Rentals:    rentalStats(rentals),
	}

	start, bounded := PeriodStart(period, now)
	if !bounded {
		d.Financial.Totals = sum(txs, nil, &now)
		d.ChartData = chart(txs, earliest(txs, now), now)

		return d, nil
	}

	d.Start = &start
	d.Financial.Totals = sum(txs, &start, &now)
	d.ChartData = chart(txs, start, now)

	prevStart, prevEnd := PreviousWindow(start, now)
	prev := sum(txs, &prevStart, &prevEnd)

	d.Financial.Previous = &Comparison{
		Start:           prevStart,
		End:             prevEnd,
		Totals:          prev,
		RevenueChange:   PercentChange(d.Financial.Revenue, prev.Revenue),
		ExpensesChange:  PercentChange(d.Financial.Expenses, prev.Expenses),
		NetIncomeChange: PercentChange(d.Financial.NetIncome, prev.NetIncome),
	}

	return d, nil
}

// PeriodStart returns the first day of period relative to now. The second
// result is false for all, which has no lower bound.
func PeriodStart(period Period, now time.Time) (time.Time, bool) {
	switch period {
	case PeriodThisWeek:
		return calendar.StartOfWeek(now), true
	case PeriodThisMonth:
		return calendar.StartOfMonth(now), true
	case PeriodThisYear:
		return calendar.StartOfYear(now), true
	}

	return time.Time{}, false
}

// PreviousWindow is the run of days immediately before start with the same
// number of calendar days as [start, now]. The end is inclusive.
func PreviousWindow(start, now time.Time) (time.Time, time.Time) {
	days := calendar.DaysInclusive(start, now)
	prevEnd := calendar.Day(start).AddDate(0, 0, -1)

	return prevEnd.AddDate(0, 0, -(days - 1)), prevEnd
}

// PercentChange compares cur against prev. A zero baseline reports 100 when
// anything was earned and 0 otherwise.
func PercentChange(cur, prev decimal.Decimal) float64 {
	if prev.IsZero() {
		if cur.IsPositive() {
			return 100
		}

		return 0
	}

	return cur.Sub(prev).Div(prev.Abs()).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

func within(d time.Time, start, end *time.Time) bool {
	day := calendar.Day(d)

	if start != nil && day.Before(calendar.Day(*start)) {
		return false
	}

	if end != nil && day.After(calendar.Day(*end)) {
		return false
	}

	return true
}

func sum(txs []*transaction.Transaction, start, end *time.Time) Totals {
	var t Totals

	for _, tx := range txs {
		if !within(tx.Date, start, end) {
			continue
		}

		// Records without a category predate expenses and count as revenue.
		if tx.IsIncome() {
			t.Revenue = t.Revenue.Add(tx.Amount)
		} else {
			t.Expenses = t.Expenses.Add(tx.Amount)
		}
	}

	t.NetIncome = t.Revenue.Sub(t.Expenses)

	return t
}

func earliest(txs []*transaction.Transaction, fallback time.Time) time.Time {
	first := fallback
	for _, tx := range txs {
		if tx.Date.Before(first) {
			first = tx.Date
		}
	}

	return first
}

// chart buckets the window by month, including months without activity.
func chart(txs []*transaction.Transaction, start, end time.Time) []MonthPoint {
	var points []MonthPoint

	index := make(map[string]int)

	for m := calendar.StartOfMonth(start); !m.After(end); m = calendar.AddMonths(m, 1) {
		index[calendar.MonthKey(m)] = len(points)
		points = append(points, MonthPoint{Month: calendar.MonthKey(m)})
	}

	for _, tx := range txs {
		if !within(tx.Date, &start, &end) {
			continue
		}

		i, ok := index[calendar.MonthKey(tx.Date)]
		if !ok {
			continue
		}

		if tx.IsIncome() {
			points[i].Revenue = points[i].Revenue.Add(tx.Amount)
		} else {
			points[i].Expenses = points[i].Expenses.Add(tx.Amount)
		}
	}

	return points
}

func propertyStats(props []*property.Property) PropertyStats {
	stats := PropertyStats{
		Total:    len(props),
		ByStatus: make(map[property.Status]int, len(property.Statuses)),
	}

	for _, st := range property.Statuses {
		stats.ByStatus[st] = 0
	}

	for _, p := range props {
		stats.ByStatus[p.Status]++
	}

	if stats.Total > 0 {
		stats.OccupancyRate = float64(stats.ByStatus[property.StatusRented]) / float64(stats.Total)
	}

	return stats
}

func rentalStats(rentals []*rental.Rental) RentalStats {
	stats := RentalStats{
		Total:    len(rentals),
		ByStatus: make(map[rental.PaymentStatus]int, len(rental.PaymentStatuses)),
	}

	for _, st := range rental.PaymentStatuses {
		stats.ByStatus[st] = 0
	}

	for _, r := range rentals {
		stats.ByStatus[r.PaymentStatus]++
	}

	return stats
}

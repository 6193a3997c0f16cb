package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/dashboard"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
)

const chartWidth = 30

var cardStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1).
	Width(30)

type DashboardModel struct {
	CommonModel
	svc *dashboard.Service

	periodIdx int
	data      *dashboard.Dashboard
	loading   bool
	err       error
}

func NewDashboardModel(svc *dashboard.Service) DashboardModel {
	return DashboardModel{svc: svc, periodIdx: 2, loading: true}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	return "Esc: back | Tab: period | r: refresh"
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) period() dashboard.Period {
	return dashboard.Periods[m.periodIdx]
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.loading = false
		m.data, m.err = msg.data, msg.err

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "tab", "right":
			m.periodIdx = (m.periodIdx + 1) % len(dashboard.Periods)
			m.loading = true

			return m, m.loadCmd()
		case "shift+tab", "left":
			m.periodIdx = (m.periodIdx + len(dashboard.Periods) - 1) % len(dashboard.Periods)
			m.loading = true

			return m, m.loadCmd()
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	tabs := make([]string, len(dashboard.Periods))
	for i, p := range dashboard.Periods {
		label := Humanize(p)
		if i == m.periodIdx {
			label = activeStyle("[" + label + "]")
		}

		tabs[i] = label
	}

	header := strings.Join(tabs, "  ")

	var body string

	switch {
	case m.loading:
		body = "Loading dashboard..."
	case m.err != nil:
		body = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.data != nil:
		body = m.viewData()
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", faintStyle.Render(m.ShortHelp())),
	)
}

func (m DashboardModel) viewData() string {
	d := m.data
	f := d.Financial

	financial := fmt.Sprintf("Revenue    %14s%s\nExpenses   %14s%s\nNet income %14s%s",
		FormatAmount(f.Revenue), change(f.Previous, func(c *dashboard.Comparison) float64 { return c.RevenueChange }),
		FormatAmount(f.Expenses), change(f.Previous, func(c *dashboard.Comparison) float64 { return c.ExpensesChange }),
		FormatAmount(f.NetIncome), change(f.Previous, func(c *dashboard.Comparison) float64 { return c.NetIncomeChange }),
	)

	props := fmt.Sprintf("Properties %d\nOccupancy  %.0f%%", d.Properties.Total, d.Properties.OccupancyRate*100)
	for _, st := range property.Statuses {
		props += fmt.Sprintf("\n  %-18s %d", Humanize(st), d.Properties.ByStatus[st])
	}

	rentals := fmt.Sprintf("Rentals %d", d.Rentals.Total)
	for _, st := range rental.PaymentStatuses {
		rentals += fmt.Sprintf("\n  %-16s %d", Humanize(st), d.Rentals.ByStatus[st])
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		cardStyle.Render(financial),
		cardStyle.Render(props),
		cardStyle.Render(rentals),
	)

	return lipgloss.JoinVertical(lipgloss.Left, cards, "", chart(d.ChartData))
}

func change(prev *dashboard.Comparison, pick func(*dashboard.Comparison) float64) string {
	if prev == nil {
		return ""
	}

	pct := pick(prev)

	style := successStyle
	if pct < 0 {
		style = errorStyle
	}

	return " " + style.Render(fmt.Sprintf("%+.1f%%", pct))
}

// chart draws revenue and expense bars for the last twelve months.
func chart(points []dashboard.MonthPoint) string {
	if len(points) > 12 {
		points = points[len(points)-12:]
	}

	if len(points) == 0 {
		return faintStyle.Render("No transactions in this period.")
	}

	peak := decimal.Zero
	for _, p := range points {
		peak = decimal.Max(peak, p.Revenue, p.Expenses)
	}

	bar := func(v decimal.Decimal, style lipgloss.Style) string {
		if peak.IsZero() {
			return ""
		}

		n := int(v.Div(peak).Mul(decimal.NewFromInt(chartWidth)).IntPart())

		return style.Render(strings.Repeat("█", n))
	}

	var sb strings.Builder

	for _, p := range points {
		fmt.Fprintf(&sb, "%s  %s %s\n", p.Month, bar(p.Revenue, successStyle), FormatAmount(p.Revenue))
		fmt.Fprintf(&sb, "%s  %s %s\n", strings.Repeat(" ", len(p.Month)), bar(p.Expenses, errorStyle), FormatAmount(p.Expenses))
	}

	return sb.String()
}

type dashboardMsg struct {
	data *dashboard.Dashboard
	err  error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	period := m.period()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.svc.Compute(ctx, period)

		return dashboardMsg{data: d, err: err}
	}
}

package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sh44ni/telalalbedaya-sub000/internal/reminder"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
)

type RentalsModel struct {
	CommonModel
	rentals   *rental.Service
	reminders *reminder.Service

	table   table.Model
	items   []*rental.Rental
	filter  rental.ListFilter
	loading bool
	err     error
	status  string

	// 0 is "All", then one entry per rental.PaymentStatuses
	statusFilterIdx int
}

func NewRentalsModel(rentals *rental.Service, reminders *reminder.Service) RentalsModel {
	columns := []table.Column{
		{Title: "Number", Width: 10},
		{Title: "Lease", Width: 23},
		{Title: "Rent", Width: 10},
		{Title: "Due", Width: 4},
		{Title: "Status", Width: 15},
		{Title: "Paid until", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return RentalsModel{
		rentals:   rentals,
		reminders: reminders,
		table:     t,
		loading:   true,
	}
}

func (m RentalsModel) Title() string { return "Rentals" }

func (m RentalsModel) ShortHelp() string {
	return "Esc: back | s: status filter | m: send reminder | r: refresh"
}

func (m RentalsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m RentalsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadRentalsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.items = msg.rentals
		m.refreshTable()

		return m, nil

	case reminderSentMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Reminder for %s failed: %v", msg.number, msg.err))
		} else {
			m.status = successStyle.Render("Reminder sent for " + msg.number)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % (len(rental.PaymentStatuses) + 1)
			m.applyFilter()
			m.loading = true

			return m, m.loadCmd()
		case "m":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.items) {
				return m, nil
			}

			m.status = "Sending reminder..."

			return m, m.remindCmd(m.items[idx])
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m RentalsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading rentals...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	label := "All"
	if m.filter.PaymentStatus != nil {
		label = Humanize(*m.filter.PaymentStatus)
	}

	header := fmt.Sprintf("Filter: [s] Payment status: %s | %d rentals", activeStyle(label), len(m.items))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *RentalsModel) applyFilter() {
	if m.statusFilterIdx == 0 {
		m.filter.PaymentStatus = nil
		return
	}

	m.filter.PaymentStatus = new(rental.PaymentStatuses[m.statusFilterIdx-1])
}

func (m *RentalsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.items))
	for _, r := range m.items {
		lease := FormatDate(r.LeaseStart)
		if !r.LeaseEnd.IsZero() {
			lease += " " + FormatDate(r.LeaseEnd)
		}

		rows = append(rows, table.Row{
			r.Number,
			lease,
			FormatAmount(r.MonthlyRent),
			fmt.Sprintf("%d", r.DueDay),
			Humanize(r.PaymentStatus),
			FormatDate(r.PaidThrough()),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadRentalsMsg struct {
	rentals []*rental.Rental
	err     error
}

func (m RentalsModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rentals, err := m.rentals.List(ctx, filter)

		return loadRentalsMsg{rentals: rentals, err: err}
	}
}

type reminderSentMsg struct {
	number string
	err    error
}

func (m RentalsModel) remindCmd(r *rental.Rental) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.reminders.Send(ctx, r.ID)

		return reminderSentMsg{number: r.Number, err: err}
	}
}

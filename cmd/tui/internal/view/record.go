package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/calendar"
	"github.com/sh44ni/telalalbedaya-sub000/internal/receipt"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

// recordFields is kept behind a pointer so the form bindings survive the
// model being copied by bubbletea.
type recordFields struct {
	category    transaction.Category
	txType      transaction.Type
	amount      string
	party       string
	method      transaction.PaymentMethod
	date        string
	description string
	reference   string
}

type RecordModel struct {
	CommonModel
	txService *transaction.Service
	receipts  *receipt.Renderer

	form     *huh.Form
	fields   *recordFields
	recorded *transaction.Transaction
	err      error
}

func NewRecordModel(txSvc *transaction.Service, receipts *receipt.Renderer) RecordModel {
	m := RecordModel{txService: txSvc, receipts: receipts}
	m.reset()

	return m
}

func (m RecordModel) Title() string { return "Record Transaction" }

func (m RecordModel) ShortHelp() string {
	if m.recorded != nil || m.err != nil {
		return "Enter: record another | p: save receipt | Esc: back"
	}

	return "Esc: back | Enter/Tab: navigate form"
}

func (m RecordModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m *RecordModel) reset() {
	m.fields = &recordFields{
		category: transaction.CategoryIncome,
		txType:   transaction.TypeRentPayment,
		method:   transaction.MethodCash,
		date:     FormatDate(time.Now()),
	}
	m.recorded = nil
	m.err = nil
	m.form = m.buildForm()
}

func (m RecordModel) buildForm() *huh.Form {
	f := m.fields

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Category]().
				Title("Category").
				Options(
					huh.NewOption("Income", transaction.CategoryIncome),
					huh.NewOption("Expense", transaction.CategoryExpense),
				).
				Value(&f.category),

			huh.NewSelect[transaction.Type]().
				Title("Type").
				Options(options(transaction.Types)...).
				Value(&f.txType),

			huh.NewInput().
				Title("Amount").
				Placeholder("500.000").
				Value(&f.amount).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil || !d.IsPositive() {
						return errors.New("enter a positive amount")
					}

					return nil
				}),

			huh.NewInput().
				Title("Payer / Payee").
				Value(&f.party),
		),
		huh.NewGroup(
			huh.NewSelect[transaction.PaymentMethod]().
				Title("Payment method").
				Options(options(transaction.PaymentMethods)...).
				Value(&f.method),

			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&f.date).
				Validate(func(s string) error {
					_, err := calendar.ParseDay(strings.TrimSpace(s))
					return err
				}),

			huh.NewInput().
				Title("Description").
				Value(&f.description),

			huh.NewInput().
				Title("Reference (optional)").
				Value(&f.reference),
		),
	).WithWidth(50).WithShowHelp(false)
}

func options[T ~string](values []T) []huh.Option[T] {
	out := make([]huh.Option[T], len(values))
	for i, v := range values {
		out[i] = huh.NewOption(Humanize(v), v)
	}

	return out
}

func (m RecordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordResultMsg:
		m.recorded = msg.tx
		m.err = msg.err

		return m, nil

	case receiptSavedMsg:
		if msg.err != nil {
			m.err = msg.err
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.form.State == huh.StateCompleted {
			switch msg.String() {
			case "enter":
				m.reset()
				return m, m.form.Init()
			case "p":
				if m.recorded != nil {
					return m, saveReceiptCmd(m.receipts, m.recorded)
				}
			}

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.recordCmd()
	}

	return m, cmd
}

func (m RecordModel) View() string {
	if m.form.State != huh.StateCompleted {
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.recorded == nil {
		return lipgloss.NewStyle().Padding(2).Render("Recording...")
	}

	tx := m.recorded
	body := fmt.Sprintf("%s\n\n%s  %s  %s  %s",
		successStyle.Bold(true).Render("Recorded "+tx.Number),
		FormatDate(tx.Date), Humanize(tx.Type), FormatSigned(tx.Amount, tx.IsIncome()), tx.Party(),
	)

	return lipgloss.NewStyle().Padding(2).Render(body)
}

type recordResultMsg struct {
	tx  *transaction.Transaction
	err error
}

func (m RecordModel) recordCmd() tea.Cmd {
	f := *m.fields

	return func() tea.Msg {
		amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
		if err != nil {
			return recordResultMsg{err: err}
		}

		date, err := calendar.ParseDay(strings.TrimSpace(f.date))
		if err != nil {
			return recordResultMsg{err: err}
		}

		params := transaction.RecordParams{
			Category:      f.category,
			Type:          f.txType,
			Amount:        amount,
			PaymentMethod: f.method,
			Date:          date,
			Description:   strings.TrimSpace(f.description),
			Reference:     strings.TrimSpace(f.reference),
		}

		if f.category == transaction.CategoryExpense {
			params.Payee = strings.TrimSpace(f.party)
		} else {
			params.Payer = strings.TrimSpace(f.party)
		}

		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.txService.Record(ctx, params)

		return recordResultMsg{tx: tx, err: err}
	}
}

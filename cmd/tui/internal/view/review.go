package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/matching"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

type reviewState int

const (
	reviewStateTimeframe reviewState = iota
	reviewStateReviewing
)

// ReviewModel walks through income that is not linked to a customer and lets
// the user assign one. Every assignment is learned as a payer pattern.
type ReviewModel struct {
	CommonModel
	txService       *transaction.Service
	customerService *customer.Service
	matchingService *matching.Service

	state           reviewState
	timeframePicker TimeframePicker

	queue     []*transaction.Transaction
	currentTx *transaction.Transaction
	customers map[string]*customer.Customer // by upper-cased number

	customerInput textinput.Model

	status     string
	loading    bool
	totalCount int
}

func NewReviewModel(txSvc *transaction.Service, customerSvc *customer.Service, matchSvc *matching.Service) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "CUS-0001"
	ti.CharLimit = 20
	ti.Width = 20
	ti.Prompt = "Customer: "

	return ReviewModel{
		txService:       txSvc,
		customerService: customerSvc,
		matchingService: matchSvc,
		timeframePicker: NewTimeframePicker(TimeframeThisWeek),
		customerInput:   ti,
	}
}

func (m ReviewModel) Title() string { return "Review payers" }

func (m ReviewModel) ShortHelp() string {
	if m.state == reviewStateReviewing {
		return "Enter: save & next | Tab: skip | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		filter := transaction.ListFilter{Category: new(transaction.CategoryIncome)}
		msg.Apply(&filter)

		m.state = reviewStateReviewing
		m.loading = true

		return m, m.loadQueueCmd(filter)

	case loadQueueMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading transactions: %v", msg.err)
			return m, nil
		}

		m.queue = msg.txs
		m.customers = msg.customers
		m.totalCount = len(m.queue)

		if len(m.queue) == 0 {
			m.status = "Every payment in this period is linked to a customer."
			return m, nil
		}

		cmd := m.nextTx()

		return m, cmd

	case suggestionMsg:
		if m.currentTx != nil && msg.txID == m.currentTx.ID {
			m.customerInput.SetValue(msg.number)
			m.customerInput.CursorEnd()
		}

		return m, nil

	case saveResultMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error saving: %v", msg.err))
			return m, nil
		}

		cmd := m.nextTx()

		return m, cmd
	}

	if m.state == reviewStateTimeframe {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.loading {
			return m, nil
		}

		switch keyMsg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyTab:
			cmd := m.nextTx()

		return m, cmd
		case tea.KeyEnter:
			if m.currentTx == nil {
				return m, nil
			}

			c, ok := m.customers[strings.ToUpper(strings.TrimSpace(m.customerInput.Value()))]
			if !ok {
				m.status = errorStyle.Render("Unknown customer number")
				return m, nil
			}

			return m, m.saveCmd(m.currentTx, c)
		}
	}

	var cmd tea.Cmd
	m.customerInput, cmd = m.customerInput.Update(msg)

	return m, cmd
}

func (m ReviewModel) View() string {
	if m.state == reviewStateTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading payments...")
	}

	if m.currentTx == nil {
		return lipgloss.NewStyle().Padding(2).Render(m.status + "\n\n(Esc to back)")
	}

	tx := m.currentTx
	info := fmt.Sprintf(
		"Number:  %s\nDate:    %s\nType:    %s\nAmount:  %s\nPayer:   %s\nRaw:     %s\n",
		tx.Number,
		FormatDate(tx.Date),
		Humanize(tx.Type),
		FormatAmount(tx.Amount),
		tx.Payer,
		tx.RawDescription,
	)

	content := fmt.Sprintf("%s\n\n%s\n%s", m.status, info, m.customerInput.View())

	return lipgloss.NewStyle().Padding(2).Render(content)
}

// nextTx pops the queue and asks the matcher for a customer suggestion.
func (m *ReviewModel) nextTx() tea.Cmd {
	if len(m.queue) == 0 {
		m.currentTx = nil
		m.status = successStyle.Render("All done!")
		m.customerInput.Blur()

		return nil
	}

	m.currentTx = m.queue[0]
	m.queue = m.queue[1:]

	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)
	m.customerInput.SetValue("")
	m.customerInput.Focus()

	return tea.Batch(textinput.Blink, m.suggestCmd(m.currentTx))
}

type loadQueueMsg struct {
	txs       []*transaction.Transaction
	customers map[string]*customer.Customer
	err       error
}

func (m ReviewModel) loadQueueCmd(filter transaction.ListFilter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)
		if err != nil {
			return loadQueueMsg{err: err}
		}

		var unlinked []*transaction.Transaction
		for _, tx := range txs {
			if tx.CustomerID == nil {
				unlinked = append(unlinked, tx)
			}
		}

		list, err := m.customerService.List(ctx)
		if err != nil {
			return loadQueueMsg{err: err}
		}

		customers := make(map[string]*customer.Customer, len(list))
		for _, c := range list {
			customers[strings.ToUpper(c.Number)] = c
		}

		return loadQueueMsg{txs: unlinked, customers: customers}
	}
}

type suggestionMsg struct {
	txID   uuid.UUID
	number string
}

func (m ReviewModel) suggestCmd(tx *transaction.Transaction) tea.Cmd {
	customers := m.customers

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		id, err := m.matchingService.Suggest(ctx, patternOf(tx))
		if err != nil || id == nil {
			return nil
		}

		for number, c := range customers {
			if c.ID == *id {
				return suggestionMsg{txID: tx.ID, number: number}
			}
		}

		return nil
	}
}

type saveResultMsg struct {
	err error
}

func (m ReviewModel) saveCmd(tx *transaction.Transaction, c *customer.Customer) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		payer := c.DisplayName()

		_, err := m.txService.Update(ctx, tx.ID, transaction.UpdateParams{
			CustomerID: &c.ID,
			Payer:      &payer,
		})
		if err != nil {
			return saveResultMsg{err: err}
		}

		if pattern := patternOf(tx); pattern != "" {
			if err := m.matchingService.Learn(ctx, pattern, c.ID); err != nil {
				return saveResultMsg{err: err}
			}
		}

		return saveResultMsg{}
	}
}

// patternOf is the text a payer is recognised by on future statements.
func patternOf(tx *transaction.Transaction) string {
	return payerPattern(tx.RawDescription, tx.Payer)
}

func payerPattern(raw, payer string) string {
	if raw != "" {
		return raw
	}

	if payer == transaction.UnknownPayer {
		return ""
	}

	return payer
}

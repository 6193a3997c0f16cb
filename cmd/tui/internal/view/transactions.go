package view

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sh44ni/telalalbedaya-sub000/internal/receipt"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

const receiptDir = "receipts"

type txState int

const (
	txStateTimeframe txState = iota
	txStateList
	txStateEditing
)

// txItem wraps a transaction to implement list.Item.
type txItem struct {
	tx *transaction.Transaction
}

func (i txItem) Title() string {
	kind := faintStyle.Render(fmt.Sprintf("[%s]", i.tx.Type))

	return fmt.Sprintf("%s  %s  %12s  %s  %s",
		i.tx.Number, FormatDate(i.tx.Date), FormatSigned(i.tx.Amount, i.tx.IsIncome()), kind, i.tx.Party())
}

func (i txItem) Description() string {
	var parts []string

	if d := i.tx.Display; d.PropertyNumber != "" {
		parts = append(parts, strings.TrimSpace(d.PropertyNumber+" "+d.PropertyTitle))
	}

	if i.tx.Display.ProjectName != "" {
		parts = append(parts, i.tx.Display.ProjectName)
	}

	if i.tx.Description != "" {
		parts = append(parts, i.tx.Description)
	}

	return strings.Join(parts, " | ")
}

func (i txItem) FilterValue() string {
	return i.tx.Number + " " + i.tx.Party() + " " + i.tx.Description
}

type TransactionsModel struct {
	CommonModel
	txService *transaction.Service
	receipts  *receipt.Renderer

	state           txState
	timeframePicker TimeframePicker
	list            list.Model
	form            *huh.Form
	txs             []*transaction.Transaction
	selectedTx      *transaction.Transaction

	filter  transaction.ListFilter
	loading bool
	status  string

	// Form field bindings
	formParty     string
	formDesc      string
	formReference string
}

func NewTransactionsModel(txSvc *transaction.Service, receipts *receipt.Renderer) TransactionsModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 0, 0)
	l.Title = "Transactions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return TransactionsModel{
		txService:       txSvc,
		receipts:        receipts,
		timeframePicker: NewTimeframePicker(TimeframeThisWeek),
		list:            l,
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateTimeframe:
		return "Esc: back | Enter: select"
	case txStateList:
		return "Esc: back | Enter: edit | p: save receipt | /: filter"
	case txStateEditing:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m TransactionsModel) Init() tea.Cmd {
	return nil
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		msg.Apply(&m.filter)
		m.loading = true
		m.state = txStateList

		return m, m.loadTxsCmd()

	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.txs = msg.txs
		m.refreshListItems()

		if len(msg.txs) == 0 {
			m.status = "No transactions found."
		}

		return m, nil

	case saveTxResultMsg:
		m.state = txStateList

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = "Saved."

		return m, m.loadTxsCmd()

	case receiptSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error writing receipt: %v", msg.err)
		} else {
			m.status = "Receipt written to " + msg.path
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case txStateTimeframe:
		return m.updateTimeframe(msg)
	case txStateList:
		return m.updateList(msg)
	case txStateEditing:
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "enter":
			return m.startEditing()
		case "p":
			if selected, ok := m.list.SelectedItem().(txItem); ok {
				return m, saveReceiptCmd(m.receipts, selected.tx)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m TransactionsModel) startEditing() (tea.Model, tea.Cmd) {
	selected, ok := m.list.SelectedItem().(txItem)
	if !ok {
		return m, nil
	}

	m.selectedTx = selected.tx
	m.formParty = selected.tx.Party()
	m.formDesc = selected.tx.Description
	m.formReference = selected.tx.Reference

	partyTitle := "Payer"
	if !selected.tx.IsIncome() {
		partyTitle = "Payee"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("party").
				Title(partyTitle).
				Value(&m.formParty),

			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.formDesc),

			huh.NewInput().
				Key("reference").
				Title("Reference (optional)").
				Placeholder("cheque or transfer number").
				Value(&m.formReference),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = txStateEditing

	return m, m.form.Init()
}

func (m TransactionsModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = txStateList
			m.form = nil

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveTxCmd()
}

func (m TransactionsModel) View() string {
	switch m.state {
	case txStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case txStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
		}

		statusLine := ""
		if m.status != "" {
			statusLine = faintStyle.Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())

	case txStateEditing:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(
			m.txInfoView() + "\n" + m.form.View(),
		)
	}

	return ""
}

func (m TransactionsModel) txInfoView() string {
	if m.selectedTx == nil {
		return ""
	}

	tx := m.selectedTx

	info := fmt.Sprintf(
		"%s  |  %s  |  %s  |  %s  |  %s",
		tx.Number, FormatDate(tx.Date), Humanize(tx.Type), FormatAmount(tx.Amount), Humanize(tx.PaymentMethod),
	)

	if sd := tx.SaleDetails; sd != nil {
		info += fmt.Sprintf("\nSale: %s paid of %s, %s remaining",
			FormatAmount(sd.PaidAmount), FormatAmount(sd.TotalPrice), FormatAmount(sd.RemainingAmount))
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(info)
}

func (m *TransactionsModel) refreshListItems() {
	items := make([]list.Item, len(m.txs))
	for i, tx := range m.txs {
		items[i] = txItem{tx: tx}
	}

	m.list.SetItems(items)
}

// Messages

type loadTxsMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)

		return loadTxsMsg{txs: txs, err: err}
	}
}

type saveTxResultMsg struct {
	err error
}

func (m TransactionsModel) saveTxCmd() tea.Cmd {
	tx := m.selectedTx
	party := strings.TrimSpace(m.formParty)
	desc := m.formDesc
	reference := m.formReference
	txSvc := m.txService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		params := transaction.UpdateParams{
			Description: &desc,
			Reference:   &reference,
		}

		if tx.IsIncome() {
			params.Payer = &party
		} else {
			params.Payee = &party
		}

		_, err := txSvc.Update(ctx, tx.ID, params)

		return saveTxResultMsg{err: err}
	}
}

type receiptSavedMsg struct {
	path string
	err  error
}

// saveReceiptCmd writes the PDF receipt of tx under ./receipts.
func saveReceiptCmd(receipts *receipt.Renderer, tx *transaction.Transaction) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll(receiptDir, 0o755); err != nil {
			return receiptSavedMsg{err: err}
		}

		path := filepath.Join(receiptDir, receipt.Filename(tx))

		f, err := os.Create(path)
		if err != nil {
			return receiptSavedMsg{err: err}
		}
		defer f.Close()

		if err := receipts.Render(f, tx); err != nil {
			return receiptSavedMsg{err: err}
		}

		return receiptSavedMsg{path: path}
	}
}

// txItemDelegate renders items in the list.
type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 2 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(txItem)
	if !ok {
		return
	}

	title := i.Title()
	desc := i.Description()

	if index == m.Index() {
		title = accentStyle.Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)

	if desc == "" {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "    %s\n", faintStyle.Render(desc))
}

package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/importer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/matching"
	"github.com/sh44ni/telalalbedaya-sub000/internal/project"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFormatSelect importState = iota
	importStateProjectSelect
	importStatePropertySelect
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStatePayers
	importStateResult
)

// ImportServices are the services the import screen reads and writes.
type ImportServices struct {
	Transactions *transaction.Service
	Importer     *importer.Service
	Matching     *matching.Service
	Customers    *customer.Service
	Projects     *project.Service
	Properties   *property.Service
}

// ImportModel imports a statement or legacy file. Statement rows are linked
// to a project and property picked up front. Income whose payer is unknown
// is held back until a customer is assigned to it.
type ImportModel struct {
	CommonModel
	svc ImportServices

	state          importState
	filePicker     filepicker.Model
	selectedFormat importer.Format
	formatOptions  []importer.Format
	cursor         int

	projects   []*project.Project
	properties []*property.Property
	target     importer.Target

	newParams    []transaction.RecordParams
	conflicts    []transaction.Conflict
	conflictList list.Model
	selected     map[int]bool

	pending    []transaction.RecordParams
	assigned   []transaction.RecordParams
	customers  map[string]*customer.Customer // by upper-cased number
	payerInput textinput.Model

	imported int
	skipped  int
	status   string
	err      error
}

func NewImportModel(svc ImportServices) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	ti := textinput.New()
	ti.Placeholder = "CUS-0001"
	ti.CharLimit = 20
	ti.Width = 20
	ti.Prompt = "Customer: "

	return ImportModel{
		svc:           svc,
		filePicker:    fp,
		formatOptions: []importer.Format{importer.FormatStatement, importer.FormatLegacy},
		selected:      make(map[int]bool),
		payerInput:    ti,
	}
}

var formatLabels = map[importer.Format]string{
	importer.FormatStatement: "Bank statement (CSV)",
	importer.FormatLegacy:    "Legacy receipts (JSON)",
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) resultLine() string {
	line := fmt.Sprintf("Imported %d transactions.", m.imported)
	if m.skipped > 0 {
		line += fmt.Sprintf(" %d payments without a customer were skipped.", m.skipped)
	}

	return line
}

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateConflicts:
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: cancel"
	case importStatePayers:
		return "Enter: assign & next | Tab: skip | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateFormatSelect, importStateProjectSelect, importStatePropertySelect:
			return m.updateSelect(msg)
		case importStateConflicts:
			return m.updateConflicts(msg)
		case importStatePayers:
			return m.updatePayers(msg)
		}

	case projectsLoadedMsg:
		if msg.err == nil && len(msg.projects) == 0 {
			msg.err = fmt.Errorf("no projects yet, create one before importing a statement")
		}

		if msg.err != nil {
			return m.fail(msg.err), nil
		}

		m.projects = msg.projects
		m.cursor = 0

		return m, nil

	case propertiesLoadedMsg:
		if msg.err == nil && len(msg.properties) == 0 {
			msg.err = fmt.Errorf("the selected project has no properties")
		}

		if msg.err != nil {
			return m.fail(msg.err), nil
		}

		m.properties = msg.properties
		m.cursor = 0

		return m, nil

	case importResultMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}

		m.imported = len(msg.result.Imported)
		m.pending = msg.unmatched
		m.customers = msg.customers

		if len(msg.result.Conflicts) == 0 {
			cmd := m.afterBatch()
			return m, cmd
		}

		m.newParams = msg.result.New
		m.conflicts = msg.result.Conflicts
		m.selected = make(map[int]bool)
		m.state = importStateConflicts

		items := make([]list.Item, len(m.conflicts))
		for i, c := range m.conflicts {
			items[i] = conflictItem{conflict: c, index: i}
		}

		delegate := conflictDelegate{selected: &m.selected}
		m.conflictList = list.New(items, delegate, 80, 20)
		m.conflictList.Title = "Duplicate Conflicts"
		m.conflictList.SetShowStatusBar(false)
		m.conflictList.SetFilteringEnabled(false)
		m.conflictList.SetShowHelp(false)

		return m, nil

	case confirmResultMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}

		m.imported += msg.count
		cmd := m.afterBatch()

		return m, cmd

	case assignResultMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}

		m.imported += msg.count
		m.state = importStateResult
		m.status = m.resultLine()

		return m, nil
	}

	if m.state == importStatePayers {
		var cmd tea.Cmd
		m.payerInput, cmd = m.payerInput.Update(msg)

		return m, cmd
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) fail(err error) ImportModel {
	m.state = importStateResult
	m.err = err
	m.status = fmt.Sprintf("Error: %v", err)

	return m
}

func (m *ImportModel) reset() {
	m.state = importStateFormatSelect
	m.cursor = 0
	m.target = importer.Target{}
	m.conflicts = nil
	m.newParams = nil
	m.selected = make(map[int]bool)
	m.pending = nil
	m.assigned = nil
	m.imported = 0
	m.skipped = 0
	m.err = nil
	m.status = ""
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFormatSelect:
		return m, Back
	case importStateImporting:
		return m, nil
	}

	m.reset()

	return m, nil
}

func (m ImportModel) optionCount() int {
	switch m.state {
	case importStateProjectSelect:
		return len(m.projects)
	case importStatePropertySelect:
		return len(m.properties)
	}

	return len(m.formatOptions)
}

func (m ImportModel) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < m.optionCount()-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		if m.cursor >= m.optionCount() {
			return m, nil
		}

		return m.choose()
	}

	return m, nil
}

func (m ImportModel) choose() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFormatSelect:
		m.selectedFormat = m.formatOptions[m.cursor]
		m.target = importer.Target{}
		m.cursor = 0

		// Legacy rows carry their own project and property.
		if m.selectedFormat == importer.FormatLegacy {
			m.state = importStateFilePick
			return m, m.filePicker.Init()
		}

		m.projects = nil
		m.state = importStateProjectSelect

		return m, m.loadProjectsCmd()

	case importStateProjectSelect:
		m.target.ProjectID = &m.projects[m.cursor].ID
		m.properties = nil
		m.state = importStatePropertySelect

		return m, m.loadPropertiesCmd(m.projects[m.cursor].ID)

	case importStatePropertySelect:
		m.target.PropertyID = &m.properties[m.cursor].ID
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.conflicts {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

// afterBatch moves on to payer assignment when income is still unlinked.
func (m *ImportModel) afterBatch() tea.Cmd {
	if len(m.pending) == 0 {
		m.state = importStateResult
		m.status = m.resultLine()

		return nil
	}

	m.state = importStatePayers
	m.assigned = nil
	m.status = ""
	m.payerInput.SetValue("")
	m.payerInput.Focus()

	return textinput.Blink
}

func (m ImportModel) updatePayers(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.pending) == 0 {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyTab:
		m.skipped++
		cmd := m.nextPayer()

		return m, cmd
	case tea.KeyEnter:
		c, ok := m.customers[strings.ToUpper(strings.TrimSpace(m.payerInput.Value()))]
		if !ok {
			m.status = errorStyle.Render("Unknown customer number")
			return m, nil
		}

		row := m.pending[0]
		row.CustomerID = &c.ID
		m.assigned = append(m.assigned, row)
		cmd := m.nextPayer()

		return m, cmd
	}

	var cmd tea.Cmd
	m.payerInput, cmd = m.payerInput.Update(msg)

	return m, cmd
}

// nextPayer drops the current row and saves the assigned rows after the last one.
func (m *ImportModel) nextPayer() tea.Cmd {
	m.pending = m.pending[1:]
	m.status = ""
	m.payerInput.SetValue("")

	if len(m.pending) > 0 {
		return nil
	}

	m.payerInput.Blur()
	m.state = importStateImporting
	m.status = "Saving assigned payments..."

	return m.assignCmd(m.assigned)
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFormatSelect:
		labels := make([]string, len(m.formatOptions))
		for i, f := range m.formatOptions {
			labels[i] = formatLabels[f]
		}

		return m.viewSelect("Select Format:", labels)
	case importStateProjectSelect:
		labels := make([]string, len(m.projects))
		for i, p := range m.projects {
			labels[i] = p.Number + " " + p.Name
		}

		return m.viewSelect("Link statement rows to project:", labels)
	case importStatePropertySelect:
		labels := make([]string, len(m.properties))
		for i, p := range m.properties {
			labels[i] = p.Label()
		}

		return m.viewSelect("Link statement rows to property:", labels)
	case importStateFilePick:
		return m.viewFilePick()
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.conflictList.View())
	case importStatePayers:
		return m.viewPayers()
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewSelect(title string, labels []string) string {
	if len(labels) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("Loading...")
	}

	s := title + "\n\n"

	for i, label := range labels {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, label)
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select file to import (%s):\n\n%s", formatLabels[m.selectedFormat], m.filePicker.View()),
	)
}

func (m ImportModel) viewPayers() string {
	row := m.pending[0]

	desc := row.RawDescription
	if desc == "" {
		desc = row.Description
	}

	info := fmt.Sprintf(
		"Payment %d of %d has no known payer\n\nDate:    %s\nAmount:  %s\nRaw:     %s\n",
		len(m.assigned)+m.skipped+1,
		len(m.assigned)+m.skipped+len(m.pending),
		FormatDate(row.Date),
		FormatAmount(row.Amount),
		desc,
	)

	return lipgloss.NewStyle().Padding(2).Render(
		fmt.Sprintf("%s\n%s\n\n%s", info, m.payerInput.View(), m.status),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
}

// Messages

type projectsLoadedMsg struct {
	projects []*project.Project
	err      error
}

type propertiesLoadedMsg struct {
	properties []*property.Property
	err        error
}

type importResultMsg struct {
	result    *transaction.ImportResult
	unmatched []transaction.RecordParams
	customers map[string]*customer.Customer
	err       error
}

type confirmResultMsg struct {
	count int
	err   error
}

type assignResultMsg struct {
	count int
	err   error
}

func (m ImportModel) loadProjectsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		projects, err := m.svc.Projects.List(ctx)

		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func (m ImportModel) loadPropertiesCmd(projectID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		props, err := m.svc.Properties.List(ctx, property.ListFilter{ProjectID: &projectID})

		return propertiesLoadedMsg{properties: props, err: err}
	}
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	format := m.selectedFormat
	target := m.target

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		batch, err := m.svc.Importer.Import(ctx, format, f, target)
		if err != nil {
			return importResultMsg{err: err}
		}

		result, err := m.svc.Transactions.ImportBatch(ctx, batch.Ready)
		if err != nil {
			return importResultMsg{err: err}
		}

		msg := importResultMsg{result: result, unmatched: batch.Unmatched}

		if len(batch.Unmatched) > 0 {
			if msg.customers, err = customersByNumber(ctx, m.svc.Customers); err != nil {
				return importResultMsg{err: err}
			}
		}

		return msg
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	newParams := m.newParams
	conflicts := m.conflicts
	selected := m.selected

	return func() tea.Msg {
		var allParams []transaction.RecordParams
		allParams = append(allParams, newParams...)

		for i, c := range conflicts {
			if !selected[i] {
				continue
			}

			allParams = append(allParams, c.Incoming)
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.svc.Transactions.CreateBatch(ctx, allParams)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(txs)}
	}
}

// assignCmd saves the rows a customer was assigned to and learns each payer.
func (m ImportModel) assignCmd(rows []transaction.RecordParams) tea.Cmd {
	return func() tea.Msg {
		if len(rows) == 0 {
			return assignResultMsg{}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.svc.Transactions.CreateBatch(ctx, rows)
		if err != nil {
			return assignResultMsg{err: err}
		}

		for _, row := range rows {
			pattern := payerPattern(row.RawDescription, row.Payer)
			if pattern == "" {
				continue
			}

			if err := m.svc.Matching.Learn(ctx, pattern, *row.CustomerID); err != nil {
				return assignResultMsg{count: len(txs), err: err}
			}
		}

		return assignResultMsg{count: len(txs)}
	}
}

func customersByNumber(ctx context.Context, svc *customer.Service) (map[string]*customer.Customer, error) {
	list, err := svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading customers: %w", err)
	}

	customers := make(map[string]*customer.Customer, len(list))
	for _, c := range list {
		customers[strings.ToUpper(c.Number)] = c
	}

	return customers, nil
}

// Conflict list item

type conflictItem struct {
	conflict transaction.Conflict
	index    int
}

func (i conflictItem) Title() string       { return "" }
func (i conflictItem) Description() string { return "" }
func (i conflictItem) FilterValue() string { return "" }

// Conflict list delegate

type conflictDelegate struct {
	selected *map[int]bool
}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing

	desc := incoming.RawDescription
	if desc == "" {
		desc = incoming.Description
	}

	line1 := fmt.Sprintf("%s%s %s  %s  %s",
		cursor, checkbox,
		FormatDate(incoming.Date),
		FormatAmount(incoming.Amount),
		desc,
	)

	line2 := fmt.Sprintf("      Existing: %s  %s  %s  %s",
		existing.Number,
		FormatDate(existing.Date),
		FormatAmount(existing.Amount),
		existing.Party(),
	)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}

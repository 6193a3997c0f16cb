package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/sh44ni/telalalbedaya-sub000/cmd/tui/internal/view"
	"github.com/sh44ni/telalalbedaya-sub000/internal/config"
	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/dashboard"
	"github.com/sh44ni/telalalbedaya-sub000/internal/database"
	"github.com/sh44ni/telalalbedaya-sub000/internal/export"
	"github.com/sh44ni/telalalbedaya-sub000/internal/importer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/matching"
	"github.com/sh44ni/telalalbedaya-sub000/internal/project"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/receipt"
	"github.com/sh44ni/telalalbedaya-sub000/internal/reminder"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
	"github.com/sh44ni/telalalbedaya-sub000/internal/settlement"
	"github.com/sh44ni/telalalbedaya-sub000/internal/store"
	"github.com/sh44ni/telalalbedaya-sub000/internal/store/memory"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

const logFile = "tui.log"

type backend interface {
	transaction.Repository
	customer.Repository
	project.Repository
	property.Repository
	rental.Repository
	matching.Repository
	dashboard.Repository
	reminder.Repository
}

type services struct {
	company      string
	transactions *transaction.Service
	customers    *customer.Service
	projects     *project.Service
	properties   *property.Service
	rentals      *rental.Service
	matching     *matching.Service
	importer     *importer.Service
	export       *export.Service
	dashboard    *dashboard.Service
	reminders    *reminder.Service
	receipts     *receipt.Renderer
}

type model struct {
	svc services

	currentView View

	dashboardView    view.DashboardModel
	transactionsView view.TransactionsModel
	recordView       view.RecordModel
	rentalsView      view.RentalsModel
	reviewView       view.ReviewModel
	importView       view.ImportModel
	exportView       view.ExportModel
}

type View int

const (
	ViewMenu View = iota
	ViewDashboard
	ViewTransactions
	ViewRecord
	ViewRentals
	ViewReview
	ViewImport
	ViewExport
)

func newServices(cfg *config.Config, repo backend) services {
	var mailer reminder.Mailer = reminder.LogMailer{}
	if cfg.SMTP.Host != "" {
		mailer = reminder.NewSMTPMailer(reminder.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	receipts := receipt.NewRenderer(cfg.Company.Name)
	txSvc := transaction.NewService(repo, settlement.NewEngine())
	matchSvc := matching.NewService(repo)

	return services{
		company:      cfg.Company.Name,
		transactions: txSvc,
		customers:    customer.NewService(repo),
		projects:     project.NewService(repo),
		properties:   property.NewService(repo),
		rentals:      rental.NewService(repo),
		matching:     matchSvc,
		importer:     importer.NewService(matchSvc),
		export:       export.NewService(txSvc, receipts),
		dashboard:    dashboard.NewService(repo),
		reminders:    reminder.NewService(repo, mailer, cfg.Company.Name),
		receipts:     receipts,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewRecord:
		var newModel tea.Model
		newModel, cmd = m.recordView.Update(msg)
		m.recordView = newModel.(view.RecordModel)
	case ViewRentals:
		var newModel tea.Model
		newModel, cmd = m.rentalsView.Update(msg)
		m.rentalsView = newModel.(view.RentalsModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.svc

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewDashboard
		m.dashboardView = view.NewDashboardModel(s.dashboard)

		return m, m.dashboardView.Init()
	case "2":
		m.currentView = ViewTransactions
		m.transactionsView = view.NewTransactionsModel(s.transactions, s.receipts)

		return m, m.transactionsView.Init()
	case "3":
		m.currentView = ViewRecord
		m.recordView = view.NewRecordModel(s.transactions, s.receipts)

		return m, m.recordView.Init()
	case "4":
		m.currentView = ViewRentals
		m.rentalsView = view.NewRentalsModel(s.rentals, s.reminders)

		return m, m.rentalsView.Init()
	case "5":
		m.currentView = ViewReview
		m.reviewView = view.NewReviewModel(s.transactions, s.customers, s.matching)

		return m, m.reviewView.Init()
	case "6":
		m.currentView = ViewImport
		m.importView = view.NewImportModel(view.ImportServices{
			Transactions: s.transactions,
			Importer:     s.importer,
			Matching:     s.matching,
			Customers:    s.customers,
			Projects:     s.projects,
			Properties:   s.properties,
		})

		return m, m.importView.Init()
	case "7":
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(s.export)

		return m, m.exportView.Init()
	}

	return m, nil
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			lipgloss.NewStyle().Bold(true).Render(m.svc.company) + "\n\n" +
				"1. Dashboard\n" +
				"2. Transactions\n" +
				"3. Record Transaction\n" +
				"4. Rentals\n" +
				"5. Review Payers\n" +
				"6. Import Transactions\n" +
				"7. Export Transactions\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewRecord:
		return m.recordView.View()
	case ViewRentals:
		return m.rentalsView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to bubbletea; logs go to a file.
	var logOut io.Writer = io.Discard
	if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		defer f.Close()
		logOut = f
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.Level()})))

	if err := run(cfg); err != nil {
		slog.Error("failed to run TUI", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	var repo backend

	switch cfg.Store.Driver {
	case config.StoreMemory:
		repo = memory.New()
	default:
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			return err
		}

		repo = store.New(db)
	}

	p := tea.NewProgram(model{svc: newServices(cfg, repo), currentView: ViewMenu}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}

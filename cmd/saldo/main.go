package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/amqp"
	"saldo/internal/backend"
	"saldo/internal/cli"
	"saldo/internal/config"
	"saldo/internal/core"
	applog "saldo/internal/log"
	"saldo/internal/services"
)

type app struct {
	ledger *services.LedgerService
	money  *moneyFormatter
	logger *applog.Logger
	close  func()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}

	run, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	a := newApp()
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = applog.WithContext(ctx, a.logger)

	if err := run(ctx, a, args); err != nil {
		a.close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var commands = map[string]func(context.Context, *app, []string) error{
	"view":        runView,
	"add":         runAdd,
	"edit":        runEdit,
	"delete":      runDelete,
	"list":        runList,
	"rules":       runRules,
	"rule-add":    runRuleAdd,
	"rule-delete": runRuleDelete,
	"config":      runConfig,
}

func printUsage() {
	fmt.Println("Saldo personal ledger")
	fmt.Println("\nUsage:")
	fmt.Println("  saldo <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  view          Project recurring rules and show a month")
	fmt.Println("  add           Record a transaction")
	fmt.Println("  edit          Edit a transaction")
	fmt.Println("  delete        Delete a transaction")
	fmt.Println("  list          List transactions")
	fmt.Println("  rules         List recurring rules")
	fmt.Println("  rule-add      Add a recurring rule")
	fmt.Println("  rule-delete   Delete a recurring rule and its generated transactions")
	fmt.Println("  config        Show or update salary and savings goal")
	fmt.Println("  help          Show this help message")
	fmt.Printf("\nData backends: %s\n", strings.Join(backend.GetBackendTypeStrings(), ", "))
	fmt.Println("\nRun 'saldo <command> -h' for more information on a command.")
}

func newApp() *app {
	cfg, logger := cli.Bootstrap(applog.ComponentCLI)

	money, err := newMoneyFormatter(cfg.Currency, cfg.Locale)
	if err != nil {
		logger.Error("Invalid presentation settings", applog.FieldError, err)
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg)

	opts := []services.LedgerOption{
		services.WithDefaultConfig(defaultFinance(cfg)),
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", applog.FieldError, err)
			amqpClient = nil
		} else {
			opts = append(opts, services.WithPublisher(amqpClient))
		}
	}

	closed := false
	return &app{
		ledger: services.NewLedgerService(res.Store, res.Locker, opts...),
		money:  money,
		logger: logger,
		close: func() {
			if closed {
				return
			}
			closed = true
			if amqpClient != nil {
				_ = amqpClient.Close()
			}
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", applog.FieldError, err)
			}
		},
	}
}

func defaultFinance(cfg *config.Config) core.FinanceConfig {
	salary, goal := cfg.DefaultFinance()
	return core.DefaultFinanceConfig(salary, goal)
}

func runView(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	month := fs.String("month", "", "Month to view as YYYY-MM (default current month)")
	fs.Parse(args)

	horizon, err := monthFlag(*month)
	if err != nil {
		return err
	}

	dash, err := a.ledger.View(ctx, horizon)
	if err != nil {
		return err
	}

	if dash.Generated > 0 {
		fmt.Printf("Generated %d recurring transactions.\n\n", dash.Generated)
	}

	fmt.Printf("Year %d\n", dash.Series.Year)
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Month\tIncome\tExpense\tNet\t")
	for i := 0; i < 12; i++ {
		m := core.NewMonth(dash.Series.Year, time.Month(i+1))
		income, expense := dash.Series.Income[i], dash.Series.Expense[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", m, a.money.Money(income), a.money.Money(expense), a.money.Money(income.Sub(expense)))
	}
	w.Flush()

	m := dash.Metrics
	fmt.Println()
	fmt.Printf("Projected income:   %s\n", a.money.Money(m.ProjectedIncome))
	fmt.Printf("Projected spend:    %s\n", a.money.Money(m.ProjectedSpend))
	fmt.Printf("Projected balance:  %s\n", a.money.Money(m.ProjectedBalance))
	fmt.Printf("Committed:          %s (%s)\n", a.money.Percent(m.PercentCommitted), dash.Health)
	fmt.Printf("Savings goal:       %s\n", a.money.Money(dash.Config.SavingsGoal))

	fmt.Printf("\n%s\n", dash.Horizon)
	printTransactions(a, dash.MonthTransactions)
	return nil
}

func transactionFlags(fs *flag.FlagSet) (desc, amount, kind, category, date *string) {
	desc = fs.String("desc", "", "Description")
	amount = fs.String("amount", "", "Amount as a positive number")
	kind = fs.String("kind", "debit", "debit or credit")
	category = fs.String("category", string(core.Other), "Category")
	date = fs.String("date", "", "Date as YYYY-MM-DD (default today)")
	return
}

func transactionInput(desc, amount, kind, category, date string) (services.TransactionInput, error) {
	in := services.TransactionInput{
		Description: desc,
		Amount:      amount,
		Kind:        core.Kind(kind),
		Category:    core.ParseCategory(category),
	}
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return in, fmt.Errorf("parse date %q: %w", date, err)
		}
		in.Date = core.MonthOf(d).Date(d.Day())
	}
	return in, nil
}

func runAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	desc, amount, kind, category, date := transactionFlags(fs)
	fs.Parse(args)

	in, err := transactionInput(*desc, *amount, *kind, *category, *date)
	if err != nil {
		return err
	}
	t, err := a.ledger.AddTransaction(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s\n", t.ID)
	return nil
}

func runEdit(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.String("id", "", "Transaction ID")
	desc, amount, kind, category, date := transactionFlags(fs)
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}
	in, err := transactionInput(*desc, *amount, *kind, *category, *date)
	if err != nil {
		return err
	}
	t, err := a.ledger.UpdateTransaction(ctx, core.ID(*id), in)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s\n", t.ID)
	return nil
}

func runDelete(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "Transaction ID")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}
	if err := a.ledger.DeleteTransaction(ctx, core.ID(*id)); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", *id)
	return nil
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	month := fs.String("month", "", "Only list YYYY-MM")
	fs.Parse(args)

	txs, err := a.ledger.ListTransactions(ctx)
	if err != nil {
		return err
	}
	if *month != "" {
		m, err := core.ParseMonth(*month)
		if err != nil {
			return err
		}
		filtered := txs[:0]
		for _, t := range txs {
			if m.Contains(t.Date) {
				filtered = append(filtered, t)
			}
		}
		txs = filtered
	}
	printTransactions(a, txs)
	return nil
}

func printTransactions(a *app, txs []core.Transaction) {
	if len(txs) == 0 {
		fmt.Println("No transactions.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDate\tDescription\tCategory\tAmount\tRecurring")
	for _, t := range txs {
		recurring := ""
		if t.IsRecurring {
			recurring = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date.Format("2006-01-02"), t.Description, t.Category, a.money.Money(t.Amount), recurring)
	}
	w.Flush()
}

func runRules(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("rules", flag.ExitOnError)
	fs.Parse(args)

	rules, err := a.ledger.ListRules(ctx)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		fmt.Println("No recurring rules.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDay\tDescription\tCategory\tKind\tAmount\tGenerated through")
	for _, r := range rules {
		through := "-"
		if r.LastGenerated != nil {
			through = core.MonthOf(*r.LastGenerated).String()
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.DayOfMonth, r.Description, r.Category, r.Kind, a.money.Money(r.Amount), through)
	}
	w.Flush()
	return nil
}

func runRuleAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("rule-add", flag.ExitOnError)
	desc := fs.String("desc", "", "Description")
	amount := fs.String("amount", "", "Amount as a positive number")
	kind := fs.String("kind", "debit", "debit or credit")
	category := fs.String("category", string(core.FixedBills), "Category")
	day := fs.Int("day", 1, "Day of month (1-31)")
	fs.Parse(args)

	r, err := a.ledger.AddRule(ctx, services.RuleInput{
		Description: *desc,
		Amount:      *amount,
		Kind:        core.Kind(*kind),
		Category:    core.ParseCategory(*category),
		DayOfMonth:  *day,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added rule %s\n", r.ID)
	return nil
}

func runRuleDelete(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("rule-delete", flag.ExitOnError)
	id := fs.String("id", "", "Rule ID")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}
	purged, err := a.ledger.DeleteRule(ctx, core.ID(*id))
	if err != nil {
		return err
	}
	fmt.Printf("Deleted rule %s and %d generated transactions\n", *id, purged)
	return nil
}

func runConfig(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	salary := fs.String("salary", "", "Monthly base salary")
	goal := fs.String("goal", "", "Savings goal")
	fs.Parse(args)

	cfg, err := a.ledger.Config(ctx)
	if err != nil {
		return err
	}

	if *salary != "" || *goal != "" {
		if *salary != "" {
			if cfg.BaseSalary, err = parseNonNegative(*salary); err != nil {
				return fmt.Errorf("salary: %w", err)
			}
		}
		if *goal != "" {
			if cfg.SavingsGoal, err = parseNonNegative(*goal); err != nil {
				return fmt.Errorf("goal: %w", err)
			}
		}
		if err := a.ledger.UpdateConfig(ctx, cfg); err != nil {
			return err
		}
	}

	fmt.Printf("Base salary:   %s\n", a.money.Money(cfg.BaseSalary))
	fmt.Printf("Savings goal:  %s\n", a.money.Money(cfg.SavingsGoal))
	return nil
}

// parseNonNegative accepts zero, which ParseAmount rejects.
func parseNonNegative(s string) (decimal.Decimal, error) {
	if d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ".")); err == nil && d.IsZero() {
		return decimal.Zero, nil
	}
	return core.ParseAmount(s)
}

func monthFlag(s string) (core.Month, error) {
	if s == "" {
		return core.MonthOf(time.Now()), nil
	}
	return core.ParseMonth(s)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	naturaldate "github.com/tj/go-naturaldate"

	"github.com/skoglund/timegrid/internal/api"
	"github.com/skoglund/timegrid/internal/catalog"
	"github.com/skoglund/timegrid/internal/config"
	"github.com/skoglund/timegrid/internal/date"
	"github.com/skoglund/timegrid/internal/grid"
	"github.com/skoglund/timegrid/internal/holiday"
	"github.com/skoglund/timegrid/internal/notify"
	"github.com/skoglund/timegrid/internal/store"
	"github.com/skoglund/timegrid/internal/submit"
	"github.com/skoglund/timegrid/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "timegrid",
	Short: "Weekly timesheet client",
	Long:  "timegrid edits a week of time entries as a grid, expands recurring tasks into entries, and keeps failed submissions for retry.",
}

var weekCmd = &cobra.Command{
	Use:   "week [when]",
	Short: "Open the weekly grid editor",
	RunE:  runWeek,
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a single time entry",
	RunE:  runLog,
}

var recurCmd = &cobra.Command{
	Use:   "recur <pattern>",
	Short: "Expand a recurring task into time entries",
	Long: `Expand a recurrence pattern over a date range and create one entry per
eligible date. Patterns: daily, weekly, monthly:<occurrence>:<weekday>
with occurrence in first/second/third/fourth/last and weekday 0 (Sunday)
to 6. Weekends and holidays are skipped per your week settings.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecur,
}

var statusCmd = &cobra.Command{
	Use:   "status [when]",
	Short: "Show the week's logged hours against the daily goal",
	RunE:  runStatus,
}

var holidaysCmd = &cobra.Command{
	Use:   "holidays [year]",
	Short: "List the loaded holiday calendar",
	RunE:  runHolidays,
}

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Resubmit failed operations",
	RunE:  runRetry,
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List clients, projects, and tasks",
	RunE:  runProjects,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	logCmd.Flags().String("client", "", "Client name or id")
	logCmd.Flags().String("project", "", "Project name or id")
	logCmd.Flags().String("task", "", "Task name")
	logCmd.Flags().String("date", "", "Entry date (YYYY-MM-DD, default today)")
	logCmd.Flags().Float64("hours", 0, "Hours worked")
	logCmd.Flags().String("note", "", "Entry note")

	recurCmd.Flags().String("client", "", "Client name or id")
	recurCmd.Flags().String("project", "", "Project name or id")
	recurCmd.Flags().String("task", "", "Task name")
	recurCmd.Flags().Float64("hours", 0, "Hours per generated entry")
	recurCmd.Flags().String("from", "", "Range start (YYYY-MM-DD)")
	recurCmd.Flags().String("to", "", "Range end (YYYY-MM-DD)")
	recurCmd.Flags().String("note", "", "Note for generated entries")
	recurCmd.Flags().Bool("dry-run", false, "Print the resolved dates without creating entries")

	holidaysCmd.Flags().String("set", "", "Save an ICS URL or file path as the holiday source")
	retryCmd.Flags().Bool("list", false, "List recent operations instead of retrying")

	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(recurCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(holidaysCmd)
	rootCmd.AddCommand(retryCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Server.BaseURL == "" {
		return nil, fmt.Errorf("server base URL not configured, run 'timegrid config' to set it up")
	}
	if cfg.Server.APIKey == "" {
		return nil, fmt.Errorf("API key not configured, run 'timegrid config' to set it up")
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("TIMEGRID_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newAPIClient(cfg *config.Config, logger *slog.Logger) *api.HTTPClient {
	return api.NewClient(cfg.Server.BaseURL, cfg.Server.APIKey, 1*time.Hour, logger)
}

// loadHolidays fetches the configured holiday calendar; with no source
// configured an empty calendar is used and only weekend rules apply.
func loadHolidays(ctx context.Context, cfg *config.Config, logger *slog.Logger) *holiday.Calendar {
	if cfg.Holidays.Source == "" {
		return holiday.NewCalendar(nil)
	}
	cal, err := holiday.Load(ctx, cfg.Holidays.Source)
	if err != nil {
		logger.Warn("loading holiday calendar", "source", cfg.Holidays.Source, "error", err)
		fmt.Fprintf(os.Stderr, "Warning: holiday calendar unavailable: %v\n", err)
		return holiday.NewCalendar(nil)
	}
	return cal
}

// parseWhen resolves a natural-language or YYYY-MM-DD argument to a date,
// defaulting to today.
func parseWhen(args []string) (date.Date, error) {
	if len(args) == 0 {
		return date.Today(), nil
	}

	arg := strings.Join(args, " ")
	if d, err := date.Parse(arg); err == nil {
		return d, nil
	}

	t, err := naturaldate.Parse(arg, time.Now(), naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return date.Date{}, fmt.Errorf("parsing %q as a date: %w", arg, err)
	}
	return date.FromTime(t), nil
}

func runWeek(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	anchor, err := parseWhen(args)
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	logger := newLogger()
	client := newAPIClient(cfg, logger)
	ctx := context.Background()

	week := date.Week(anchor, cfg.StartOfWeek())
	rules := holiday.Rules{SaturdayOff: cfg.Week.SaturdayOff}
	days := holiday.Annotate(week, rules, loadHolidays(ctx, cfg, logger))

	entries, err := client.ListEntries(ctx, week[0], week[6])
	if err != nil {
		return fmt.Errorf("fetching entries: %w", err)
	}

	snapshot, err := client.GetCatalog(ctx)
	if err != nil {
		return fmt.Errorf("fetching catalog: %w", err)
	}
	cat := catalog.New(snapshot)

	state := grid.BuildWeek(week, entries)
	submitter := submit.New(client, db, logger)

	app := tui.NewGridApp(state, days, cat, submitter, cfg.Week.DailyGoalHours)
	p := tea.NewProgram(app)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	result := app.GetResult()
	if result == nil || !result.Submitted {
		return nil
	}

	failed := submit.Failed(result.Results)
	if failed > 0 {
		if cfg.Notifications.Enabled {
			notify.Send("timegrid", fmt.Sprintf("%d operations failed, run 'timegrid retry'", failed))
		}
		return fmt.Errorf("%d of %d operations failed", failed, len(result.Results))
	}

	fmt.Printf("Submitted %d operations for week %s.\n", len(result.Results), week[0])
	return nil
}

func runLog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	clientArg, _ := cmd.Flags().GetString("client")
	projectArg, _ := cmd.Flags().GetString("project")
	taskArg, _ := cmd.Flags().GetString("task")
	dateArg, _ := cmd.Flags().GetString("date")
	hours, _ := cmd.Flags().GetFloat64("hours")
	note, _ := cmd.Flags().GetString("note")

	day := date.Today()
	if dateArg != "" {
		if day, err = date.Parse(dateArg); err != nil {
			return err
		}
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	logger := newLogger()
	client := newAPIClient(cfg, logger)
	ctx := context.Background()

	snapshot, err := client.GetCatalog(ctx)
	if err != nil {
		return fmt.Errorf("fetching catalog: %w", err)
	}
	cat := catalog.New(snapshot)

	clientID, err := resolveClient(cat, clientArg)
	if err != nil {
		return err
	}
	projectID, err := resolveProject(cat, clientID, projectArg)
	if err != nil {
		return err
	}
	if taskArg == "" {
		taskArg = cat.FirstTaskName(projectID)
	}

	// Quick-add goes through the same grid validation and partition as
	// the weekly editor: a one-row, one-cell grid.
	week := date.Week(day, cfg.StartOfWeek())
	state := grid.BuildWeek(week, nil)
	state = grid.Apply(state, grid.SetRowField{Row: 0, Field: grid.FieldClient, Value: clientID}, cat)
	state = grid.Apply(state, grid.SetRowField{Row: 0, Field: grid.FieldProject, Value: projectID}, cat)
	state = grid.Apply(state, grid.SetRowField{Row: 0, Field: grid.FieldTask, Value: taskArg}, cat)
	state = grid.Apply(state, grid.SetCell{Row: 0, Date: day, Hours: hours, Note: note}, cat)

	if result := grid.Validate(state); !result.OK() {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", e.Field, e.Message)
		}
		return fmt.Errorf("invalid entry")
	}

	ops := grid.Partition(state)
	if len(ops) == 0 {
		return fmt.Errorf("nothing to log, set --hours")
	}

	if cfg.Week.DailyGoalHours > 0 {
		existing, err := client.ListEntries(ctx, day, day)
		if err == nil {
			total := 0.0
			for _, e := range existing {
				total += e.Hours
			}
			if grid.ExceedsGoal(hours, total, cfg.Week.DailyGoalHours) {
				fmt.Printf("Heads up: %s will be at %gh, over the %gh goal.\n",
					day, total+hours, cfg.Week.DailyGoalHours)
			}
		}
	}

	submitter := submit.New(client, db, logger)
	results := submitter.Submit(ctx, ops)
	if n := submit.Failed(results); n > 0 {
		return fmt.Errorf("logging entry: %v", results[0].Err)
	}

	op := ops[0]
	fmt.Printf("Logged: %s  %s / %s / %s (%sh)\n",
		op.Entry.Date, cat.ClientName(op.Entry.ClientID), cat.ProjectName(op.Entry.ProjectID),
		op.Entry.Task, strconv.FormatFloat(op.Entry.Hours, 'g', 4, 64))
	return nil
}

func runRecur(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pattern, err := recurPattern(args[0])
	if err != nil {
		return err
	}

	clientArg, _ := cmd.Flags().GetString("client")
	projectArg, _ := cmd.Flags().GetString("project")
	taskArg, _ := cmd.Flags().GetString("task")
	hours, _ := cmd.Flags().GetFloat64("hours")
	fromArg, _ := cmd.Flags().GetString("from")
	toArg, _ := cmd.Flags().GetString("to")
	note, _ := cmd.Flags().GetString("note")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if hours <= 0 {
		return fmt.Errorf("--hours must be positive")
	}
	from, err := date.Parse(fromArg)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := date.Parse(toArg)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	logger := newLogger()
	ctx := context.Background()

	rules := holiday.Rules{SaturdayOff: cfg.Week.SaturdayOff}
	cal := loadHolidays(ctx, cfg, logger)
	dates := resolveDates(pattern, from, to, rules, cal)

	if len(dates) == 0 {
		fmt.Println("No eligible dates in range.")
		return nil
	}

	if dryRun {
		for _, d := range dates {
			fmt.Printf("  %s (%s)\n", d, d.Weekday())
		}
		fmt.Printf("%d entries would be created.\n", len(dates))
		return nil
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	client := newAPIClient(cfg, logger)

	snapshot, err := client.GetCatalog(ctx)
	if err != nil {
		return fmt.Errorf("fetching catalog: %w", err)
	}
	cat := catalog.New(snapshot)

	clientID, err := resolveClient(cat, clientArg)
	if err != nil {
		return err
	}
	projectID, err := resolveProject(cat, clientID, projectArg)
	if err != nil {
		return err
	}
	if taskArg == "" {
		return fmt.Errorf("--task is required")
	}

	ops := make([]grid.Op, 0, len(dates))
	for _, d := range dates {
		ops = append(ops, grid.Op{
			Kind: grid.OpCreate,
			Entry: api.EntryRequest{
				Date:      d,
				ClientID:  clientID,
				ProjectID: projectID,
				Task:      taskArg,
				Hours:     hours,
				Notes:     note,
			},
		})
	}

	submitter := submit.New(client, db, logger)
	results := submitter.Submit(ctx, ops)

	failed := submit.Failed(results)
	fmt.Printf("Created %d of %d entries (%s through %s).\n", len(results)-failed, len(results), dates[0], dates[len(dates)-1])
	if failed > 0 {
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", r.Op.Entry.Date, r.Err)
			}
		}
		return fmt.Errorf("%d entries failed, run 'timegrid retry'", failed)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	anchor, err := parseWhen(args)
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	logger := newLogger()
	client := newAPIClient(cfg, logger)
	ctx := context.Background()

	name, err := resolveUserName(ctx, client, db)
	if err == nil && name != "" {
		fmt.Printf("Entries for %s\n\n", name)
	}

	week := date.Week(anchor, cfg.StartOfWeek())
	entries, err := client.ListEntries(ctx, week[0], week[6])
	if err != nil {
		return fmt.Errorf("fetching entries: %w", err)
	}

	rules := holiday.Rules{SaturdayOff: cfg.Week.SaturdayOff}
	days := holiday.Annotate(week, rules, loadHolidays(ctx, cfg, logger))

	state := grid.BuildWeek(week, entries)
	totals := grid.DayTotals(state)

	weekTotal := 0.0
	for _, day := range days {
		total := totals[day.Date]
		weekTotal += total

		marker := " "
		if day.IsToday {
			marker = ">"
		}
		flag := ""
		switch {
		case day.HolidayName != "":
			flag = "  (" + day.HolidayName + ")"
		case day.Forbidden:
			flag = "  (off)"
		case cfg.Week.DailyGoalHours > 0 && total > cfg.Week.DailyGoalHours:
			flag = fmt.Sprintf("  (over %gh goal)", cfg.Week.DailyGoalHours)
		}

		fmt.Printf("%s %s %s  %5.2fh%s\n", marker, day.Date.Weekday().String()[:3], day.Date, total, flag)
	}

	fmt.Printf("\nWeek total: %.2fh across %d entries\n", weekTotal, len(entries))

	pending, err := db.FailedOps()
	if err == nil && len(pending) > 0 {
		fmt.Printf("%d failed operations pending, run 'timegrid retry'\n", len(pending))
	}
	return nil
}

func runHolidays(cmd *cobra.Command, args []string) error {
	if source, _ := cmd.Flags().GetString("set"); source != "" {
		if _, err := holiday.Load(context.Background(), source); err != nil {
			return fmt.Errorf("checking holiday source: %w", err)
		}
		if err := config.SaveHolidaySource(source); err != nil {
			return fmt.Errorf("saving holiday source: %w", err)
		}
		fmt.Printf("Holiday source set to %s\n", source)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Holidays.Source == "" {
		fmt.Println("No holiday calendar configured, set holidays.source in the config.")
		return nil
	}

	cal, err := holiday.Load(context.Background(), cfg.Holidays.Source)
	if err != nil {
		return fmt.Errorf("loading holiday calendar: %w", err)
	}
	if cal.Len() == 0 {
		fmt.Println("Holiday calendar is empty.")
		return nil
	}

	year := 0
	if len(args) > 0 {
		if year, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("parsing year %q: %w", args[0], err)
		}
	}

	count := 0
	for _, e := range cal.All() {
		if year != 0 && e.Date.Year != year {
			continue
		}
		fmt.Printf("  %s  %s  %s\n", e.Date, e.Date.Weekday().String()[:3], e.Name)
		count++
	}
	if count == 0 {
		fmt.Println("No holidays found.")
	}
	return nil
}

func runRetry(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if list, _ := cmd.Flags().GetBool("list"); list {
		recent, err := db.RecentOps(20)
		if err != nil {
			return fmt.Errorf("listing operations: %w", err)
		}
		if len(recent) == 0 {
			fmt.Println("No recorded operations.")
			return nil
		}
		for _, op := range recent {
			line := fmt.Sprintf("  %s  %-6s  %-9s  %gh", op.Entry.Date, op.Kind, op.Status, op.Entry.Hours)
			if op.Error != "" {
				line += "  " + op.Error
			}
			fmt.Println(line)
		}
		return nil
	}

	logger := newLogger()
	client := newAPIClient(cfg, logger)
	submitter := submit.New(client, db, logger)

	results, err := submitter.Retry(context.Background())
	if err != nil {
		return fmt.Errorf("retrying failed operations: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("Nothing to retry.")
		return nil
	}

	failed := submit.Failed(results)
	fmt.Printf("Retried %d operations: %d succeeded, %d still failing.\n", len(results), len(results)-failed, failed)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "  %s (%s): %v\n", r.Op.Entry.Date, r.Op.Kind, r.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d operations still failing", failed)
	}
	return nil
}

func runProjects(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger()
	client := newAPIClient(cfg, logger)

	snapshot, err := client.GetCatalog(context.Background())
	if err != nil {
		return fmt.Errorf("fetching catalog: %w", err)
	}
	cat := catalog.New(snapshot)

	if len(snapshot.Clients) == 0 {
		fmt.Println("No clients found.")
		return nil
	}

	for _, c := range snapshot.Clients {
		fmt.Printf("%s  %s\n", c.ID, c.Name)
		for _, p := range cat.ProjectsFor(c.ID) {
			fmt.Printf("  %s  %s\n", p.ID, p.Name)
			for _, t := range cat.TasksFor(p.ID) {
				fmt.Printf("    - %s\n", t.Name)
			}
		}
	}
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		data := fmt.Sprintf(`[server]
base_url = "%s"
api_key = "%s"

[week]
start_of_week = "%s"
saturday_off = %t
daily_goal_hours = %g

[holidays]
source = "%s"

[notifications]
enabled = %t
`,
			cfg.Server.BaseURL,
			cfg.Server.APIKey,
			cfg.Week.StartOfWeek,
			cfg.Week.SaturdayOff,
			cfg.Week.DailyGoalHours,
			cfg.Holidays.Source,
			cfg.Notifications.Enabled,
		)
		if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}

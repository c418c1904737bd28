// Package cmd implements the CLI command structure for taskmaster.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"taskmaster/internal/config"
	"taskmaster/internal/export"
	"taskmaster/internal/logging"
	"taskmaster/internal/store"
	"taskmaster/internal/task"
	"taskmaster/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the taskmaster CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskmaster", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand. With no arguments the interactive UI runs.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, cfg, remainingArgs)
	case "edit":
		return editCommand(ctx, cfg, remainingArgs)
	case "done":
		return doneCommand(ctx, cfg, remainingArgs, true)
	case "undone":
		return doneCommand(ctx, cfg, remainingArgs, false)
	case "search":
		return searchCommand(ctx, cfg, remainingArgs)
	case "export":
		return exportCommand(ctx, cfg, remainingArgs)
	case "import":
		return importCommand(ctx, cfg, remainingArgs)
	case "seed":
		return seedCommand(ctx, cfg, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// setup opens the store and the log file. The returned cleanup closes both.
func setup(cfg *config.Config) (*store.Store, *logging.FileLogger, func(), error) {
	logger, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("opening database failed", "path", cfg.DBPath, "err", err)
		logger.Close()
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}
	cleanup := func() {
		st.Close()
		logger.Close()
	}
	return st, logger, cleanup, nil
}

// tuiCommand launches the interactive UI.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskmaster tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	st, logger, cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.SeedSamples {
		n, err := st.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seeding samples: %w", err)
		}
		if n > 0 {
			logger.Info("seeded sample tasks", "count", n)
		}
	}

	logger.Info("starting tui", "db", cfg.DBPath)
	return ui.RunTUI(ctx, cfg, st, logger)
}

// addCommand creates a single task from the command line.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskmaster add", flag.ContinueOnError)
	desc := fs.String("desc", "", "Task description")
	priority := fs.Int("priority", cfg.DefaultPriority, "Task priority (1-5)")
	dueStr := fs.String("due", "", "Due date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	title := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("usage: taskmaster add [-desc text] [-priority n] [-due date] <title...>")
	}
	due, err := task.ParseDue(*dueStr)
	if err != nil {
		return err
	}

	st, logger, cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := st.Add(ctx, task.Task{
		Title:       title,
		Description: *desc,
		Priority:    *priority,
		DueDate:     due,
	})
	if err != nil {
		return err
	}
	logger.Info("added task", "id", id, "title", title)
	fmt.Printf("Added task %d: %s\n", id, strings.TrimSpace(title))
	return nil
}

// lsCommand lists all tasks in insertion order.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskmaster ls", flag.ContinueOnError)
	sorted := fs.Bool("sorted", false, "Sort by status, priority, and due date instead of insertion order")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	st, _, cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	tasks, err := st.List(ctx)
	if err != nil {
		return err
	}
	if *sorted {
		task.SortForDisplay(tasks)
	}
	printTasks(os.Stdout, tasks)
	return nil
}

// rmCommand deletes tasks by id.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskmaster rm", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := parseIDs(fs.Args())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("usage: taskmaster rm <id...>")
	}

	st, logger, cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, id := range ids {
		if err := st.Delete(ctx, id); err != nil {
			return fmt.Errorf("task %d: %w", id, err)
		}
		logger.Info("deleted task", "id", id)
		fmt.Printf("Deleted task %d\n", id)
	}
	return nil
}

// editCommand updates fields of an existing task.
func editCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskmaster edit", flag.ContinueOnError)
	title := fs.String("title", "", "New title")
	desc := fs.String("desc", "", "New description")
	priority := fs.Int("priority", 0, "New priority (1-5)")
	dueStr := fs.String("due", "", "New due date (YYYY-MM-DD)")
	clearDue := fs.Bool("clear-due", false, "Remove the due date")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := parseIDs(fs.Args())
	if err != nil {
		return err
	}
	if len(ids) != 1 {
		return fmt.Errorf("usage: taskmaster edit <id> [-title t] [-desc d] [-priority n] [-due date] [-clear-due]")
	}

	st, logger, cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	t, err := st.Get(ctx, ids[0])
	if err != nil {
		return fmt.Errorf("task %d: %w", ids[0], err)
	}
	changed := false
	fs.Visit(func(f *flag.Flag) {
		changed = true
		switch f.Name {
		case "title":
			t.Title = *title
		case "desc":
			t.Description = *desc
		case "priority":
			t.Priority = *priority
		}
	})
	if *clearDue {
		t.DueDate = nil
	} else if *dueStr != "" {
		due, err := task.ParseDue(*dueStr)
		if err != nil {
			return err
		}
		t.DueDate = due
	}
	if !changed {
		return fmt.Errorf("nothing to change for task %d", t.ID)
	}

	if err := st.Update(ctx, t); err != nil {
		return fmt.Errorf("task %d: %w", t.ID, err)
	}
	logger.Info("updated task", "id", t.ID, "title", t.Title)
	fmt.Printf("Updated task %d\n", t.ID)
	return nil
}

// doneCommand marks tasks done or not done.
func doneCommand(ctx context.Context, cfg *config.Config, args []string, done bool) error {
	fs := flag.NewFlagSet("taskmaster done", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := parseIDs(fs.Args())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("usage: taskmaster done|undone <id...>")
	}

	st, logger, cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, id := range ids {
		if err := st.SetDone(ctx, id, done); err != nil {
			return fmt.Errorf("task %d: %w", id, err)
		}
		logger.Info("toggled task", "id", id, "done", done)
		if done {
			fmt.Printf("Marked task %d done\n", id)
		} else {
			fmt.Printf("Marked task %d not done\n", id)
		}
	}
	return nil
}

// searchCommand lists tasks matching a filter in display order.
func searchCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskmaster search", flag.ContinueOnError)
	priority := fs.Int("priority", 0, "Only tasks with this priority")
	doneOnly := fs.Bool("done", false, "Only completed tasks")
	openOnly := fs.Bool("open", false, "Only open tasks")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *doneOnly && *openOnly {
		return fmt.Errorf("-done and -open are mutually exclusive")
	}

	filter := task.Filter{
		Text:     strings.Join(fs.Args(), " "),
		Priority: *priority,
	}
	if *doneOnly {
		v := true
		filter.Done = &v
	}
	if *openOnly {
		v := false
		filter.Done = &v
	}

	st, _, cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	tasks, err := st.Search(ctx, filter)
	if err != nil {
		return err
	}
	printTasks(os.Stdout, tasks)
	return nil
}

// exportCommand writes all tasks to a file or stdout.
func exportCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskmaster export", flag.ContinueOnError)
	format := fs.String("format", cfg.ExportFormat, "Output format (csv|json|pdf)")
	out := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	st, logger, cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := export.New(st).Export(ctx, *format)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	logger.Info("exported tasks", "format", *format, "file", *out)
	fmt.Printf("Exported tasks to %s\n", *out)
	return nil
}

// importCommand loads tasks from a JSON file.
func importCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskmaster import", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: taskmaster import <file.json>")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("reading %s: %w", fs.Arg(0), err)
	}

	st, logger, cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	n, err := export.New(st).Import(ctx, data)
	if err != nil {
		return err
	}
	logger.Info("imported tasks", "count", n, "file", fs.Arg(0))
	fmt.Printf("Imported %d tasks\n", n)
	return nil
}

// seedCommand inserts the welcome sample tasks into an empty database.
func seedCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskmaster seed", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, logger, cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	n, err := st.Seed(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("Database is not empty; nothing seeded")
		return nil
	}
	logger.Info("seeded sample tasks", "count", n)
	fmt.Printf("Seeded %d sample tasks\n", n)
	return nil
}

func versionCommand() error {
	fmt.Printf("taskmaster %s\n", Version)
	return nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid task id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printTasks(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}
	fmt.Fprintf(w, "%4s  %-40s  %2s  %-10s  %s\n", "ID", "TITLE", "P", "DUE", "DONE")
	for _, t := range tasks {
		mark := ""
		if t.Done {
			mark = "x"
		}
		title := t.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(w, "%4d  %-40s  %2d  %-10s  %s\n", t.ID, title, t.Priority, t.DueString(), mark)
	}
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "taskmaster - a local task manager")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskmaster [flags] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                 Interactive task browser (default)")
	fmt.Fprintln(w, "  add <title...>      Add a task (-desc, -priority, -due)")
	fmt.Fprintln(w, "  ls                  List tasks in insertion order (-sorted)")
	fmt.Fprintln(w, "  rm <id...>          Delete tasks")
	fmt.Fprintln(w, "  edit <id>           Edit a task (-title, -desc, -priority, -due, -clear-due)")
	fmt.Fprintln(w, "  done <id...>        Mark tasks done")
	fmt.Fprintln(w, "  undone <id...>      Mark tasks not done")
	fmt.Fprintln(w, "  search [text...]    Search tasks (-priority, -done, -open)")
	fmt.Fprintln(w, "  export              Export tasks (-format csv|json|pdf, -o file)")
	fmt.Fprintln(w, "  import <file>       Import tasks from a JSON file")
	fmt.Fprintln(w, "  seed                Insert sample tasks into an empty database")
	fmt.Fprintln(w, "  version             Show version")
	fmt.Fprintln(w, "  help                Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
}

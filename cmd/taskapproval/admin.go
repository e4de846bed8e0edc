package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sonntkms/taskapproval/internal/adapter/postgres"
	"github.com/sonntkms/taskapproval/internal/config"
	"github.com/sonntkms/taskapproval/internal/domain"
	"github.com/sonntkms/taskapproval/internal/port/database"
)

// runAdmin dispatches admin subcommands (migrate, rollback, version, actions).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "migrate":
		return runAdminMigrate()
	case "rollback":
		return runAdminRollback(args[1:])
	case "version":
		return runAdminVersion()
	case "actions":
		return runAdminActions(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: taskapproval admin <command> [options]

Commands:
  migrate          Apply all pending schema migrations
  rollback         Roll back schema migrations
  version          Print the current schema version
  actions          Show the start record and decisions of an instance
  help             Show this help message

Examples:
  taskapproval admin migrate
  taskapproval admin rollback -steps 2
  taskapproval admin actions -instance approval-3f2a
`)
}

func adminConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func runAdminMigrate() error {
	cfg, err := adminConfig()
	if err != nil {
		return err
	}
	if err := postgres.RunMigrations(context.Background(), cfg.Postgres.DSN); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Migrations applied")
	return nil
}

func runAdminRollback(args []string) error {
	fs := flag.NewFlagSet("rollback", flag.ContinueOnError)
	steps := fs.Int("steps", 1, "number of migrations to roll back")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *steps < 1 {
		return fmt.Errorf("-steps must be at least 1")
	}

	cfg, err := adminConfig()
	if err != nil {
		return err
	}
	if err := postgres.RollbackMigrations(context.Background(), cfg.Postgres.DSN, *steps); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Rolled back %d migration(s)\n", *steps)
	return nil
}

func runAdminVersion() error {
	cfg, err := adminConfig()
	if err != nil {
		return err
	}
	v, err := postgres.MigrationVersion(context.Background(), cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}

func runAdminActions(args []string) error {
	fs := flag.NewFlagSet("actions", flag.ContinueOnError)
	instance := fs.String("instance", "", "approval instance id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *instance == "" {
		return fmt.Errorf("-instance is required")
	}

	cfg, err := adminConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return printInstanceHistory(ctx, os.Stdout, postgres.NewStore(pool), *instance)
}

// printInstanceHistory writes the start record of an instance followed by
// its recorded decisions.
func printInstanceHistory(ctx context.Context, out io.Writer, store database.Store, instanceID string) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	rec, err := store.GetApprovalRecord(ctx, instanceID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		fmt.Fprintf(w, "No start record for %s\n", instanceID)
	case err != nil:
		return fmt.Errorf("get approval record: %w", err)
	default:
		fmt.Fprintf(w, "INSTANCE\t%s\n", rec.InstanceID)
		fmt.Fprintf(w, "TASK\t%s\n", rec.TaskName)
		fmt.Fprintf(w, "REQUESTED BY\t%s\n", rec.UserEmail)
		fmt.Fprintf(w, "REQUESTED AT\t%s\n", rec.RequestedAt.Format(time.RFC3339))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	entries, err := store.ListApprovalActions(ctx, instanceID)
	if err != nil {
		return fmt.Errorf("list actions: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "\nNo actions recorded for %s\n", instanceID)
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(w, "TIME\tDECISION\tREQUEST ID\tMESSAGE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Format(time.RFC3339), e.Decision, e.RequestID, e.Message)
	}
	return w.Flush()
}

package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/yuvrajjangir/AlphaAI-Backend/config"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/bootstrap"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/data"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/devseed"
	domainjob "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/job"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Stdout io.Writer
	Stdin  io.Reader
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultQueryTimeout     = 30 * time.Second
)

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: bootstrap.ConfigureLogger(&cfg, logger),
		Config: cfg,
		Stdout: os.Stdout,
		Stdin:  os.Stdin,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"db-reset": {
			name:        "db-reset",
			description: "Drop the database schema, run migrations, and optionally seed data",
			run:         runDBReset,
		},
		"db-seed": {
			name:        "db-seed",
			description: "Run migrations and load campaigns, companies and people from YAML",
			run:         runDBSeed,
		},
		"job-counts": {
			name:        "job-counts",
			description: "Print research job counts per state",
			run:         runJobCounts,
		},
		"job-status": {
			name:        "job-status",
			description: "Print the status document for one job",
			run:         runJobStatus,
		},
		"clear-inflight": {
			name:        "clear-inflight",
			description: "Remove enrichment in-flight keys from Redis",
			run:         runClearInflight,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: enrich-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-16s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
}

type dbResetOptions struct {
	Timeout     time.Duration
	Yes         bool
	Seed        bool
	SeedFile    string
	AllowRemote bool
}

type dbSeedOptions struct {
	Timeout     time.Duration
	File        string
	AllowRemote bool
}

type jobStatusOptions struct {
	JobID string
	JSON  bool
}

type clearInflightOptions struct {
	DryRun bool
	Yes    bool
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runDBReset(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBResetFlags(args)
	if err != nil {
		return err
	}

	target := fmt.Sprintf(
		"database %q on %s:%d",
		cmdCtx.Config.Postgres.Name,
		cmdCtx.Config.Postgres.Host,
		cmdCtx.Config.Postgres.Port,
	)

	remote, err := guardRemoteHost(cmdCtx, opts.AllowRemote, "drop and recreate the public schema")
	if err != nil {
		return err
	}
	confirm := confirmRequest{
		Yes:     opts.Yes && !remote,
		Action:  "reset database schema",
		Target:  target,
		Warning: "WARNING: this will drop and recreate the public schema for the configured database.",
	}
	if confirmErr := cmdCtx.confirm(confirm); confirmErr != nil {
		return confirmErr
	}

	var seed *devseed.Seed
	if opts.Seed {
		if seed, err = devseed.Load(opts.SeedFile); err != nil {
			return err
		}
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("dropping public schema", "database", cmdCtx.Config.Postgres.Name)
		if resetErr := cmdCtx.resetDatabase(ctx, db); resetErr != nil {
			return resetErr
		}

		cmdCtx.Logger.Info("re-running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}

		if seed != nil {
			if _, seedErr := devseed.Run(ctx, db, seed, cmdCtx.Logger); seedErr != nil {
				return fmt.Errorf("seed data: %w", seedErr)
			}
		}
		cmdCtx.Logger.Info("database reset completed successfully")
		return nil
	})
}

func runDBSeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBSeedFlags(args)
	if err != nil {
		return err
	}
	if _, guardErr := guardRemoteHost(cmdCtx, opts.AllowRemote, "seed development data on the configured database"); guardErr != nil {
		return guardErr
	}
	seed, err := devseed.Load(opts.File)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("ensuring database migrations are current")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}
		stats, seedErr := devseed.Run(ctx, db, seed, cmdCtx.Logger)
		if seedErr != nil {
			return fmt.Errorf("seed data: %w", seedErr)
		}
		return writef(cmdCtx.Stdout, "Seeded %d campaigns, %d companies, %d people\n",
			stats.Campaigns, stats.Companies, stats.People)
	})
}

func runJobCounts(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("job-counts", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDatabase(cmdCtx, defaultQueryTimeout, func(ctx context.Context, db *sql.DB) error {
		jobs, err := newJobService(cmdCtx, db)
		if err != nil {
			return err
		}
		stats, err := jobs.Stats(ctx)
		if err != nil {
			return err
		}
		return renderJobCounts(cmdCtx.Stdout, stats)
	})
}

func renderJobCounts(w io.Writer, stats *model.JobStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct {
		state model.JobState
		n     int
	}{
		{model.JobStateWaiting, stats.Waiting},
		{model.JobStateActive, stats.Active},
		{model.JobStateCompleted, stats.Completed},
		{model.JobStateFailed, stats.Failed},
	}
	if err := writeln(tw, "STATE\tCOUNT"); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writef(tw, "%s\t%d\n", r.state, r.n); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runJobStatus(cmdCtx *commandContext, args []string) error {
	opts, err := parseJobStatusFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, defaultQueryTimeout, func(ctx context.Context, db *sql.DB) error {
		jobs, err := newJobService(cmdCtx, db)
		if err != nil {
			return err
		}
		status, err := jobs.GetStatus(ctx, opts.JobID)
		if err != nil {
			return err
		}
		if opts.JSON {
			enc := json.NewEncoder(cmdCtx.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		}
		return renderJobStatus(cmdCtx.Stdout, status)
	})
}

func renderJobStatus(w io.Writer, st *model.JobStatusResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	lines := [][2]string{
		{"ID", st.ID},
		{"State", string(st.State)},
		{"Progress", fmt.Sprintf("%d%%", st.Progress)},
		{"Attempts", fmt.Sprintf("%d/%d", st.Attempts.Current, st.Attempts.Max)},
		{"Payload", string(st.Payload)},
		{"Created", formatMillis(&st.Timestamps.Created)},
		{"Started", formatMillis(st.Timestamps.Started)},
		{"Finished", formatMillis(st.Timestamps.Finished)},
	}
	if st.Error != nil {
		lines = append(lines, [2]string{"Error", *st.Error})
	}
	for _, l := range lines {
		if err := writef(tw, "%s:\t%s\n", l[0], l[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func formatMillis(ms *int64) string {
	if ms == nil || *ms == 0 {
		return "-"
	}
	return time.UnixMilli(*ms).UTC().Format(time.RFC3339)
}

func runClearInflight(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearInflightFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	_, client, err := connectInfra(&connectInfraOptions{
		Logger:    cmdCtx.Logger,
		Config:    &cmdCtx.Config,
		WantRedis: true,
	})
	if err != nil {
		return err
	}
	if client == nil {
		return errors.New("redis is not configured")
	}
	defer func() {
		if cerr := closeInfra(nil, client); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	repo := data.NewRedisInflightRepo(client)
	keys, err := repo.Keys(ctx)
	if err != nil {
		return err
	}
	if err := renderInflightKeys(cmdCtx.Stdout, keys); err != nil {
		return err
	}
	if opts.DryRun || len(keys) == 0 {
		return nil
	}

	if err := cmdCtx.confirm(confirmRequest{
		Yes:    opts.Yes,
		Action: "delete in-flight keys",
		Target: fmt.Sprintf("%d keys", len(keys)),
	}); err != nil {
		return err
	}
	deleted, err := repo.ClearAll(ctx)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Info("in-flight keys cleared", "deleted", deleted)
	return nil
}

func renderInflightKeys(w io.Writer, keys map[string]string) error {
	if len(keys) == 0 {
		return writeln(w, "No in-flight keys.")
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "KEY\tVALUE"); err != nil {
		return err
	}
	for _, k := range names {
		if err := writef(tw, "%s\t%s\n", k, keys[k]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func newJobService(cmdCtx *commandContext, db *sql.DB) (*service.JobService, error) {
	lease, err := domainjob.NewLeasePolicy(cmdCtx.Config.Research.AttemptTimeout, 0)
	if err != nil {
		return nil, err
	}
	return service.NewJobService(service.JobServiceOptions{
		Repo:        data.NewJobRepo(db, data.RepoConfig{Logger: cmdCtx.Logger}),
		LeasePolicy: lease,
		Logger:      cmdCtx.Logger,
	})
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseDBResetFlags(args []string) (dbResetOptions, error) {
	fs := flag.NewFlagSet("db-reset", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := dbResetOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout,
		"Maximum duration to wait for reset operations to complete")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	fs.BoolVar(&opts.Seed, "seed", false, "Run database seeding after reset completes")
	fs.StringVar(&opts.SeedFile, "seed-file", "", "YAML seed file (defaults to the built-in dataset)")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false,
		"Permit running against database hosts that do not look local")

	if err := fs.Parse(args); err != nil {
		return dbResetOptions{}, err
	}
	if opts.Timeout <= 0 {
		return dbResetOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseDBSeedFlags(args []string) (dbSeedOptions, error) {
	fs := flag.NewFlagSet("db-seed", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := dbSeedOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout,
		"Maximum duration to wait for seeding to complete")
	fs.StringVar(&opts.File, "file", "", "YAML seed file (defaults to the built-in dataset)")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false,
		"Permit running against database hosts that do not look local")

	if err := fs.Parse(args); err != nil {
		return dbSeedOptions{}, err
	}
	if opts.Timeout <= 0 {
		return dbSeedOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseJobStatusFlags(args []string) (jobStatusOptions, error) {
	fs := flag.NewFlagSet("job-status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := jobStatusOptions{}
	fs.StringVar(&opts.JobID, "job-id", "", "Job ID to inspect (required)")
	fs.BoolVar(&opts.JSON, "json", false, "Print the raw JSON status document")

	if err := fs.Parse(args); err != nil {
		return jobStatusOptions{}, err
	}
	if opts.JobID == "" && fs.NArg() > 0 {
		opts.JobID = fs.Arg(0)
	}
	opts.JobID = strings.TrimSpace(opts.JobID)
	if opts.JobID == "" {
		return jobStatusOptions{}, errors.New("--job-id is required")
	}
	return opts, nil
}

func parseClearInflightFlags(args []string) (clearInflightOptions, error) {
	fs := flag.NewFlagSet("clear-inflight", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := clearInflightOptions{}
	fs.BoolVar(&opts.DryRun, "dry-run", false, "List keys without deleting them")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return clearInflightOptions{}, err
	}
	return opts, nil
}

func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, _, err := connectInfra(&connectInfraOptions{
		Logger: cmdCtx.Logger,
		Config: &cmdCtx.Config,
		WantDB: true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeInfra(db, nil); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

func guardRemoteHost(cmdCtx *commandContext, allow bool, action string) (bool, error) {
	host := cmdCtx.Config.Postgres.Host
	if !isLikelyRemoteHost(host) {
		return false, nil
	}
	if !allow {
		return true, fmt.Errorf(
			"refusing to run against potentially remote database host %q; re-run with --allow-remote if this is intentional",
			host,
		)
	}
	if err := cmdCtx.requireRemoteHostConfirmation(action, host); err != nil {
		return true, err
	}
	return true, nil
}

func (cmdCtx *commandContext) resetDatabase(ctx context.Context, db *sql.DB) error {
	cfg := &cmdCtx.Config.Postgres
	statements := []string{
		"DROP SCHEMA public CASCADE",
		"CREATE SCHEMA public",
		"GRANT ALL ON SCHEMA public TO public",
	}
	if user := strings.TrimSpace(cfg.User); user != "" && !strings.EqualFold(user, "public") {
		statements = append(statements, "GRANT ALL ON SCHEMA public TO "+quoteIdentifier(user))
	}

	for _, stmt := range statements {
		cmdCtx.Logger.DebugContext(ctx, "executing reset statement", "sql", stmt)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func isLikelyRemoteHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" || h == "localhost" || strings.HasSuffix(h, ".local") {
		return false
	}
	if ip := net.ParseIP(h); ip != nil {
		return !ip.IsLoopback()
	}
	return true
}

func (cmdCtx *commandContext) requireRemoteHostConfirmation(action, host string) error {
	if err := writef(os.Stderr,
		"\nWARNING: database host %q does not look like a local address.\nThis operation will %s.\n",
		host, action); err != nil {
		return fmt.Errorf("print remote host warning: %w", err)
	}
	if err := writef(os.Stderr, "Type %q to continue or press enter to abort: ", host); err != nil {
		return fmt.Errorf("print remote host prompt: %w", err)
	}
	resp, err := bufio.NewReader(cmdCtx.Stdin).ReadString('\n')
	if err != nil || strings.TrimSpace(resp) != host {
		return errors.New("aborted by user")
	}
	return nil
}

type confirmRequest struct {
	Yes     bool
	Action  string
	Target  string
	Warning string
}

func (cmdCtx *commandContext) confirm(req confirmRequest) error {
	if req.Yes {
		return nil
	}
	if req.Warning != "" {
		if err := writeln(cmdCtx.Stdout, req.Warning); err != nil {
			return err
		}
	}
	if err := writef(cmdCtx.Stdout, "About to %s for %s.\nContinue? [y/N]: ", req.Action, req.Target); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	resp, err := bufio.NewReader(cmdCtx.Stdin).ReadString('\n')
	if err != nil {
		return errors.New("aborted by user")
	}
	switch strings.ToLower(strings.TrimSpace(resp)) {
	case "y", "yes":
		return nil
	default:
		return errors.New("aborted by user")
	}
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

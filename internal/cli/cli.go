// Package cli implements the pattidsv command line: parse files to JSON
// lines, validate pipeline configurations and load typed rows into SQL
// tables.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sischcode/patti-csv/internal/config"
	"github.com/sischcode/patti-csv/internal/datasource"
	"github.com/sischcode/patti-csv/internal/datasource/file"
	"github.com/sischcode/patti-csv/internal/etl"
	"github.com/sischcode/patti-csv/internal/probe"
	"github.com/sischcode/patti-csv/internal/storage"

	// register all backends with the storage factory; the pipeline file
	// picks one by sink.kind.
	_ "github.com/sischcode/patti-csv/internal/storage/all"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, cancel := setupContext()
	defer cancel()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("pattidsv failed")
		cancel()
		os.Exit(1)
	}
}

// runFlags are shared by parse and load.
type runFlags struct {
	configPath string
	listPath   string
	workers    int
	maxErrors  int
	dedupe     bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "pipeline config JSON path")
	cmd.Flags().StringVar(&f.listPath, "list", "", "file listing input paths, one per line")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "sources parsed concurrently (overrides runtime.workers)")
	cmd.Flags().IntVar(&f.maxErrors, "max-errors", -1, "row errors tolerated per source (overrides runtime.maxErrors)")
	cmd.Flags().BoolVar(&f.dedupe, "dedupe", false, "drop rows equal to an earlier row of the run")
	_ = cmd.MarkFlagRequired("config")
}

// NewRootCmd builds the command tree. Output goes to the command's out and
// err writers so callers can capture it.
func NewRootCmd() *cobra.Command {
	var (
		verbose        bool
		metricsBackend string
	)
	rootCmd := &cobra.Command{
		Use:           "pattidsv",
		Short:         "Streaming DSV/CSV parser with sanitizing and typed columns",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
	rootCmd.PersistentFlags().StringVar(&metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides METRICS_BACKEND)")

	app := &app{verbose: &verbose, metricsBackend: &metricsBackend}

	rootCmd.AddCommand(app.parseCmd())
	rootCmd.AddCommand(app.validateCmd())
	rootCmd.AddCommand(app.loadCmd())
	rootCmd.AddCommand(app.probeCmd())
	rootCmd.AddCommand(sinksCmd())
	return rootCmd
}

type app struct {
	verbose        *bool
	metricsBackend *string
}

func (a *app) logger(w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if *a.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: zerolog.SyncWriter(w), TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()
}

func (a *app) parseCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "parse -c CONFIG [FILE...]",
		Short: "Parse input files and print typed rows as JSON lines",
		Long: `Parses every FILE (or stdin when none is given, or for "-") with the
pipeline config and writes one JSON object per data row to stdout.
Compressed inputs (.gz, .zst, .xz, .bz2) are detected by extension.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, f, args, false, func(context.Context, config.Config, config.Env, *zerolog.Logger) (etl.SinkFactory, func(), error) {
				return etl.JSONLines(cmd.OutOrStdout()), func() {}, nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) loadCmd() *cobra.Command {
	var (
		f         runFlags
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "load -c CONFIG FILE...",
		Short: "Parse input files and load typed rows into the configured sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, f, args, true, func(ctx context.Context, c config.Config, env config.Env, lg *zerolog.Logger) (etl.SinkFactory, func(), error) {
				if batchSize > 0 {
					c.Runtime.BatchSize = batchSize
				}
				return openStorageSink(ctx, c, env, lg)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per insert batch (overrides runtime.batchSize)")
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "validate -c CONFIG",
		Short: "Check a pipeline config and report errors and warnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			issues := config.ValidateConfig(c)
			for _, iss := range issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
			}
			if config.HasErrors(issues) {
				return fmt.Errorf("configuration is invalid: %s", configPath)
			}
			// Static checks pass; building catches what only the parser knows.
			if _, err := config.BuildParser(c, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: %s\n", configPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "pipeline config JSON path")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func (a *app) probeCmd() *cobra.Command {
	var (
		separator, enclosure string
		opt                  probe.Options
		datePref             string
	)
	cmd := &cobra.Command{
		Use:   "probe FILE",
		Short: "Sample a file, infer column types and print a pipeline config",
		Long: `Reads the head of FILE, infers a type (and a date pattern) for every
column and prints a configuration for parse and load. With --sink the
config gets a sink block; fill in sink.options.dsn or set PATTIDSV_SINK_DSN.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sep, err := probe.DecodeChar(separator)
			if err != nil {
				return fmt.Errorf("--separator: %w", err)
			}
			opt.Separator = sep
			opt.Enclosure = 0
			if enclosure != "" && enclosure != "none" {
				enc, err := probe.DecodeChar(enclosure)
				if err != nil {
					return fmt.Errorf("--enclosure: %w", err)
				}
				opt.Enclosure = enc
			}
			switch pref := probe.DatePreference(datePref); pref {
			case probe.PreferAuto, probe.PreferEU, probe.PreferUS:
				opt.DatePreference = pref
			default:
				return fmt.Errorf("--dates: want auto, eu or us, got %q", datePref)
			}
			lg := a.logger(cmd.ErrOrStderr())
			opt.Logger = &lg

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			var src datasource.Source = file.NewLocal(args[0])
			if args[0] == "-" {
				src = datasource.FromReader("<stdin>", cmd.InOrStdin())
			}
			res, err := probe.Probe(ctx, src, opt)
			if err != nil {
				return err
			}
			if res.Rejected > 0 {
				lg.Warn().Int("rows", res.Rejected).Msg("Sampled rows with a different shape were ignored")
			}
			js, err := res.JSON(opt)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(js)
			return err
		},
	}
	cmd.Flags().StringVarP(&separator, "separator", "s", ",", `separator character ("\t" or "tab" for tab)`)
	cmd.Flags().StringVar(&enclosure, "enclosure", `"`, `enclosure character, "none" disables quoting`)
	cmd.Flags().IntVar(&opt.MaxBytes, "max-bytes", 1<<20, "bytes to sample from the start of the input")
	cmd.Flags().IntVar(&opt.MaxRows, "max-rows", 1000, "data rows to sample")
	cmd.Flags().StringVar(&datePref, "dates", string(probe.PreferAuto), "ambiguous date order: auto, eu or us")
	cmd.Flags().StringVar(&opt.Name, "name", "", "table name (default: the file name without extensions)")
	cmd.Flags().StringVar(&opt.SinkKind, "sink", "", "add a sink block for this storage kind")
	return cmd
}

func sinksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sinks",
		Short: "List the registered storage backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(storage.ListKinds(), "\n"))
			return nil
		},
	}
}

type sinkOpener func(ctx context.Context, c config.Config, env config.Env, log *zerolog.Logger) (etl.SinkFactory, func(), error)

func (a *app) run(cmd *cobra.Command, f runFlags, args []string, withSink bool, open sinkOpener) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	lg := a.logger(cmd.ErrOrStderr())
	env := config.LoadEnv()

	c, err := loadConfig(f.configPath)
	if err != nil {
		return err
	}
	env.Apply(&c)
	if !withSink {
		c.Sink = config.Sink{}
	}
	if f.workers > 0 {
		c.Runtime.Workers = f.workers
	}
	if f.maxErrors >= 0 {
		c.Runtime.MaxErrors = f.maxErrors
	}
	if f.dedupe {
		c.Runtime.Dedupe = true
	}

	issues := config.ValidateConfig(c)
	for _, iss := range issues {
		if iss.Severity == config.SeverityWarning {
			lg.Warn().Str("path", iss.Path).Msg(iss.Message)
		}
	}
	if config.HasErrors(issues) {
		for _, iss := range issues {
			if iss.Severity == config.SeverityError {
				lg.Error().Str("path", iss.Path).Msg(iss.Message)
			}
		}
		return fmt.Errorf("configuration is invalid: %s", f.configPath)
	}

	p, err := config.BuildParser(c, &lg)
	if err != nil {
		return err
	}

	sources, err := collectSources(ctx, args, f.listPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	flush, err := setupMetrics(a.backendName(env), env, lg)
	if err != nil {
		return err
	}
	defer flush()

	newSink, closeSink, err := open(ctx, c, env, &lg)
	if err != nil {
		return err
	}
	defer closeSink()

	runner := etl.NewRunner(p, etl.Options{
		Job:       env.Job,
		Workers:   c.Runtime.Workers,
		MaxErrors: c.Runtime.MaxErrors,
		Dedupe:    c.Runtime.Dedupe,
		Logger:    &lg,
	})
	sum, err := runner.Run(ctx, sources, newSink)
	fmt.Fprint(cmd.ErrOrStderr(), sum.String())
	return err
}

func (a *app) backendName(env config.Env) string {
	if *a.metricsBackend != "" {
		return *a.metricsBackend
	}
	return env.MetricsBackend
}

func loadConfig(path string) (config.Config, error) {
	fh, err := os.Open(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()
	return config.Load(fh)
}

// collectSources turns positional arguments and the optional list file into
// sources. No inputs at all means stdin.
func collectSources(ctx context.Context, args []string, listPath string, stdin io.Reader) ([]datasource.Source, error) {
	paths := append([]string(nil), args...)
	if listPath != "" {
		listed, err := file.ReadList(ctx, listPath)
		if err != nil {
			return nil, fmt.Errorf("read list %s: %w", listPath, err)
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	sources := make([]datasource.Source, 0, len(paths))
	usedStdin := false
	for _, p := range paths {
		if p == "-" {
			if usedStdin {
				return nil, fmt.Errorf("stdin given more than once")
			}
			usedStdin = true
			sources = append(sources, datasource.FromReader("<stdin>", stdin))
			continue
		}
		sources = append(sources, file.NewLocal(p))
	}
	return sources, nil
}

func openStorageSink(ctx context.Context, c config.Config, env config.Env, lg *zerolog.Logger) (etl.SinkFactory, func(), error) {
	if strings.TrimSpace(c.Sink.Kind) == "" {
		return nil, nil, fmt.Errorf("load needs a sink: set sink.kind in the config")
	}
	table := c.Sink.Options.String("table", "")
	repo, err := storage.New(ctx, storage.Config{
		Kind:  c.Sink.Kind,
		DSN:   c.Sink.Options.String("dsn", ""),
		Table: table,
	})
	if err != nil {
		return nil, nil, err
	}
	lg.Debug().Str("kind", c.Sink.Kind).Str("table", table).Msg("Sink opened")

	newSink := etl.StorageSink(etl.TableTarget{
		Repo:        repo,
		Table:       table,
		BatchSize:   c.Runtime.BatchSize,
		CreateTable: c.Sink.Options.Bool("auto_create_table", false),
		Job:         env.Job,
		Logger:      lg,
	})
	return newSink, repo.Close, nil
}

func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

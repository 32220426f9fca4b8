package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"emperror.dev/errors"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/l3lackShark/procmon/config"
	"github.com/l3lackShark/procmon/database"
	"github.com/l3lackShark/procmon/logging"
	"github.com/l3lackShark/procmon/monitor"
	"github.com/l3lackShark/procmon/plot"
	"github.com/l3lackShark/procmon/proctable"
	"github.com/l3lackShark/procmon/report"
	"github.com/l3lackShark/procmon/sampler"
	"github.com/l3lackShark/procmon/sysinfo"
)

var errUsage = errors.NewPlain("wrong number of arguments")

type options struct {
	configPath   string
	interval     time.Duration
	queryTimeout time.Duration
	outputDir    string
	noPlots      bool
	exportDB     string
	logLevel     string
	logFormat    string
	logFile      string
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stdout, usage(cmd))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd, _ := newRootCmdWithOptions()
	return cmd
}

func newRootCmdWithOptions() (*cobra.Command, *options) {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "procmon <username used in TOP> <process_name>",
		Short: "Sample CPU and memory of matching processes and summarize on exit",
		Long: `procmon polls the process table of one user, sums CPU% and MEM% of every
process whose command contains the given name and prints min/max/mean/median/
mode/stddev statistics when interrupted with Ctrl+C.`,
		Example: `  procmon adeshpande sp_xdesvr
  procmon adeshpande sp_xdeclt`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errUsage
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0], args[1])
		},
	}

	defaults := config.Default()
	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.DurationVar(&opts.interval, "interval", defaults.Interval, "pause between two snapshots")
	flags.DurationVar(&opts.queryTimeout, "query-timeout", defaults.QueryTimeout, "upper bound for one snapshot, 0 disables it")
	flags.StringVar(&opts.outputDir, "output-dir", defaults.OutputDir, "directory for graph images")
	flags.BoolVar(&opts.noPlots, "no-plots", false, "do not save graph images")
	flags.StringVar(&opts.exportDB, "export-db", "", "sqlite file receiving this run's samples and summary")
	flags.StringVar(&opts.logLevel, "log-level", defaults.Log.Level, "one of trace, debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", defaults.Log.Format, "console or json")
	flags.StringVar(&opts.logFile, "log-file", "", "also write logs to this rotated file")

	return cmd, opts
}

func usage(cmd *cobra.Command) string {
	return cmd.UsageString() +
		"\ntry running 'top -u <username>' and check if your username exists\n"
}

// loadConfig layers defaults, the optional file and explicitly set flags.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return config.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("interval") {
		cfg.Interval = opts.interval
	}
	if flags.Changed("query-timeout") {
		cfg.QueryTimeout = opts.queryTimeout
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if opts.noPlots {
		cfg.Plots = false
	}
	if flags.Changed("export-db") {
		cfg.ExportDB = opts.exportDB
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = opts.logFile
	}

	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, opts *options, username, process string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	collector := sysinfo.New(sysinfo.DefaultProbes(), logger)
	facts, err := collector.Collect()
	if err != nil {
		logger.Error().Err(err).Msg("unable to read system facts, make sure /proc is mounted and readable")
		return err
	}

	var sink database.Database
	if cfg.ExportDB != "" {
		if sink, err = database.New(cfg.ExportDB); err != nil {
			return err
		}
		defer sink.Close()
	}

	session := monitor.NewSession(cfg, facts, username, process, logger)
	s := sampler.New(proctable.NewTop(""), username, process, cfg.QueryTimeout, logger)
	var tickSink monitor.Sink
	if sink != nil {
		tickSink = sink
	}
	mon := monitor.New(session, s, tickSink, logger)

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	runErr := mon.Run(ctx)
	interrupted := ctx.Err() != nil
	//from here on a second Ctrl+C terminates right away
	stop()

	if interrupted {
		fmt.Fprint(cmd.OutOrStdout(), "\nMonitoring stopped by user\n\n")
	}
	if runErr != nil {
		logger.Error().Err(runErr).Msg("monitoring stopped, process table query failed; try running 'top -u <username>'")
	}

	var renderer report.Renderer
	if cfg.Plots {
		renderer = plot.NewPNG(cfg.OutputDir, cfg.TimestampFormat)
	}
	reporter := report.New(collector, renderer, logger)
	reporter.Summarize(cmd.OutOrStdout(), session)

	// failures are logged per metric with the render hint
	_, _ = reporter.Plot(session)

	if sink != nil {
		exportSummary(sink, report.Build(session, collector.Host(), time.Now()), logger)
	}

	return runErr
}

func exportSummary(sink database.Database, sum report.Summary, logger zerolog.Logger) {
	out, err := json.Marshal(sum)
	if err != nil {
		logger.Warn().Err(err).Msg("json.Marshal()")
		return
	}
	if err := sink.SendPayload(monitor.KindSummary, out); err != nil {
		logger.Warn().Err(err).Msg("export summary")
	}
}

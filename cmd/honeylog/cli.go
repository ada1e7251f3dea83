package main

import (
	"fmt"
	"honeylog/internal/analysis"
	"honeylog/internal/audit"
	"honeylog/internal/config"
	"honeylog/internal/detect"
	"honeylog/internal/logger"
	"honeylog/internal/metrics"
	"honeylog/internal/types"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app bundles what every subcommand needs
type app struct {
	cfg      *types.Config
	log      zerolog.Logger
	recorder *metrics.Recorder
	analyzer *analysis.Analyzer
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "honeylog",
		Short:        "Offline analysis of cowrie honeypot logs",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (built-in defaults when empty)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "bruteforce [log-file]",
		Short: "Flag source IPs with bursts of login attempts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, configPath, args)
			if err != nil {
				return err
			}
			return runBruteForce(cmd.OutOrStdout(), rt)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "passwords [log-file]",
		Short: "List the most attempted passwords",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, configPath, args)
			if err != nil {
				return err
			}
			return runPasswords(cmd.OutOrStdout(), rt)
		},
	})

	return rootCmd
}

func setup(cmd *cobra.Command, configPath string, args []string) (*app, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if len(args) == 1 {
		cfg.Input.LogPath = args[0]
	}

	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	recorder := metrics.New()
	trail := audit.NewLogger(cfg.Parsing.MalformedLines, cmd.ErrOrStderr())

	return &app{
		cfg:      cfg,
		log:      log,
		recorder: recorder,
		analyzer: analysis.NewAnalyzer(trail, recorder, log),
	}, nil
}

func runBruteForce(out io.Writer, rt *app) error {
	bf := rt.cfg.Detection.BruteForce
	engine := detect.NewEngine(bf.Threshold, bf.WindowDuration, bf.Strategy)

	report, err := rt.analyzer.BruteForce(rt.cfg.Input.LogPath, engine)
	if err != nil {
		return err
	}
	rt.pushMetrics()

	fmt.Fprintf(out, "analysing log file: %s\n", sanitize(report.Path))
	if report.Result.Len() == 0 {
		fmt.Fprintln(out, "\nno brute force attempts detected.")
		return nil
	}
	for _, f := range report.Result.Findings {
		fmt.Fprintf(out, "IP: %s, ATTEMPTS: %d\n", sanitize(f.IP), f.Attempts)
	}
	return nil
}

func runPasswords(out io.Writer, rt *app) error {
	report, err := rt.analyzer.Passwords(rt.cfg.Input.LogPath, rt.cfg.Passwords.TopN)
	if err != nil {
		return err
	}
	rt.pushMetrics()

	for _, e := range report.Top {
		fmt.Fprintf(out, "%s: %d\n", sanitize(e.Password), e.Count)
	}
	return nil
}

// pushMetrics is best effort: a down Pushgateway never fails the run
func (rt *app) pushMetrics() {
	url := rt.cfg.Metrics.PushgatewayURL
	if url == "" {
		return
	}
	if err := rt.recorder.Push(url, rt.cfg.Metrics.Job); err != nil {
		rt.log.Warn().Err(err).Msg("metrics push failed")
		return
	}
	rt.log.Debug().Str("url", url).Msg("metrics pushed")
}

// sanitize strips control characters (except tab) to prevent terminal injection
func sanitize(s string) string {
	var builder strings.Builder
	for _, r := range s {
		if (r >= 32 && r != 127) || r == '\t' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

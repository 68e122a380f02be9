// main package for the bulletin service
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/book-expert/bulletin-service/internal/config"
	"github.com/book-expert/logger"
	"github.com/spf13/cobra"
)

// Flag names.
const (
	flagConfig  = "config"
	flagSources = "sources"
	flagNames   = "names"
)

// ErrNATSDisabled is returned by serve when [nats] is not enabled.
var ErrNATSDisabled = errors.New("serve requires [nats] enabled = true")

func setupLogger(logPath, name string) (*logger.Logger, error) {
	log, err := logger.New(logPath, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// loadConfig reads the configuration through an explicit file or the central configurator,
// logging to a bootstrap logger in the temp directory.
func loadConfig(configPath string) (*config.Config, error) {
	bootstrapLog, err := setupLogger(os.TempDir(), "bulletin-bootstrap.log")
	if err != nil {
		return nil, err
	}

	defer func() { _ = bootstrapLog.Close() }()

	bootstrapLog.Info("Bootstrap logger created.")

	var cfg *config.Config

	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(bootstrapLog)
	}

	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	return cfg, nil
}

// withService loads configuration, opens the final logger and wires the service
// before calling fn.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service) error) error {
	configPath, _ := cmd.Flags().GetString(flagConfig)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir, "bulletin.log")
	if err != nil {
		return err
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx, cfg, finalLog)
	if err != nil {
		finalLog.Error("Failed to initialize: %v", err)

		return err
	}
	defer svc.Close()

	return fn(ctx, svc)
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect the feeds and deliver one audio bulletin per source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, _ := cmd.Flags().GetStringSlice(flagSources)

			return withService(cmd, func(ctx context.Context, svc *service) error {
				sources, err := config.SelectSources(svc.sources, names)
				if err != nil {
					return err
				}

				svc.log.System("Bulletin run started for %d source(s)", len(sources))

				report, err := svc.pipeline.Run(ctx, sources)
				if err != nil {
					return fmt.Errorf("run failed: %w", err)
				}

				printReport(cmd, report)

				return nil
			})
		},
	}

	cmd.Flags().StringSlice(flagSources, nil, "Run only the named sources")

	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Wait for run requests on NATS and run the pipeline for each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(ctx context.Context, svc *service) error {
				runWorker, err := svc.worker()
				if err != nil {
					return err
				}

				svc.log.System("Bulletin service listening for run requests on %s", svc.cfg.NATS.RunSubject)

				return runWorker.Run(ctx)
			})
		},
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "bulletin",
		Short:         "Spoken news bulletins from RSS feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String(flagConfig, "", "Path to a TOML config file (defaults to the central configurator)")

	root.AddCommand(newRunCommand(), newServeCommand(), newPreviewCommand())

	return root
}

func main() {
	err := newRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}

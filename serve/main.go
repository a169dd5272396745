// Command terminai-api serves the TerminAI API. It receives natural-language
// queries with shell context, asks the completion model for a command and
// returns it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	terminai "github.com/terminai/terminai-api"
	"github.com/terminai/terminai-api/generate"
	"github.com/terminai/terminai-api/logging"
)

// Version is set at build time via -ldflags.
var Version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		addr       string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "terminai-api",
		Short:         "Serve the TerminAI command generation API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := terminai.LoadConfig(configFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logging.New(cfg.Log, verbose)
			if err != nil {
				return err
			}
			// Sync on a console fd can fail with EINVAL; nothing useful to do with it.
			defer func() { _ = log.Sync() }()

			return run(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "config file (toml, yaml or json)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log every prompt and response")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "terminai-api", Version)
		},
	})

	return cmd
}

func run(ctx context.Context, cfg *terminai.Config, log *zap.Logger) error {
	for _, w := range terminai.ValidateConfig(cfg) {
		log.Warn(w)
	}

	prompts := generate.NewPromptStore(cfg.Generation.PromptFile, cfg.Generation.PromptTTL, log)
	defer prompts.Close()

	engine := generate.NewEngine(generate.NewGenerator(cfg.Generation), prompts, log)
	srv := NewServer(cfg, engine, log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("ready",
		zap.String("version", Version),
		zap.String("model", cfg.Generation.Model),
		zap.String("upstream", cfg.Generation.BaseURL),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shrihari-lab/chipatlas/internal/toolserver"
	"github.com/shrihari-lab/chipatlas/pkg/config"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON tool server for assistant integrations",
		Long: `Serve exposes the fetch pipeline over a local HTTP JSON API with
/tools/fetch_chip_atlas, /tools/ping and /tools/version_info endpoints.
The server runs until interrupted.`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (defaults to the configured port)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	// Tool responses carry status in the body; keep progress logging out
	// of the server's stderr.
	cfg.Quiet = true

	runner, err := runnerFactory(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	srv, err := toolserver.New(runner, cfg.Server.Port)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv.Start(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "chipatlas tool server listening on http://127.0.0.1:%d\n", srv.Port())
	return srv.Wait()
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/stepper/internal/cli"
	httpAdapter "github.com/aretw0/stepper/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/stepper/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the stored sequences as a JSON API, with server-sent events and Prometheus metrics.

With --mcp the sequences are served as Model Context Protocol tools over stdin/stdout instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if useMCP, _ := cmd.Flags().GetBool("mcp"); useMCP {
			app, err := setupApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			app.Logger.Info("starting stepper MCP server (stdio)")
			return mcpAdapter.NewServer(app.Engine, app.Logger).Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		}

		streams := httpAdapter.NewStreamManager()
		app, err := setupApp(cmd, cli.WithStreams(streams))
		if err != nil {
			return err
		}
		defer app.Close()

		addr, _ := cmd.Flags().GetString("addr")
		srv := cli.NewServer(app, streams, addr)
		return cli.Serve(ctx, srv, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from config, :8080)")
	serveCmd.Flags().Bool("mcp", false, "Serve MCP tools over stdio instead of HTTP")
}

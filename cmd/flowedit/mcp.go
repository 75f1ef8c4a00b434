package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/flowedit/internal/cli"
	"github.com/aretw0/flowedit/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the workspaces of the configured store as MCP tools, so agents can
load, inspect and edit flows.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		baseURL, _ := cmd.Flags().GetString("base-url")
		seeds, _ := cmd.Flags().GetStringArray("seed")

		manager, backend, err := workspaces(nil)
		if err != nil {
			return err
		}
		defer backend.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if err := seed(ctx, manager, seeds); err != nil {
			return err
		}
		srv := mcp.NewServer(manager,
			mcp.WithLogger(logger),
			mcp.WithExpansionLimit(cfg.Server.MaxBranches),
		)

		switch transport {
		case "stdio":
			// Logs go to stderr; stdout carries JSON-RPC.
			logger.Info("Starting flowedit MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			if baseURL == "" {
				baseURL = "http://localhost" + addr
			}
			logger.Info("Starting flowedit MCP Server (SSE)", "addr", addr, "base_url", baseURL)
			if err := srv.ServeSSE(ctx, addr, baseURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Listen address (only for SSE)")
	mcpCmd.Flags().String("base-url", "", "Public base URL announced to SSE clients (default http://localhost<addr>)")
	mcpCmd.Flags().StringArray("seed", nil, "Import a flow at startup: name=path, or a path to get a random name (repeatable)")
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/flowedit/internal/cli"
	"github.com/aretw0/flowedit/internal/config"
	"github.com/aretw0/flowedit/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    = config.Default()
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "flowedit",
	Short: "flowedit edits conversational flow graphs",
	Long: `flowedit loads flow documents (JSON or YAML), projects them into trees,
checks them for dangling edges, disconnected nodes and loops, and edits nodes
and environment variables from the command line or over HTTP and MCP.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./"+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json or pretty")
}

// setup loads the config file and applies flag overrides.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	optional := path == ""
	if optional {
		path = config.DefaultPath
	}
	loaded, err := config.Load(path, optional)
	if err != nil {
		return err
	}
	cfg = loaded

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
	}

	l, err := cli.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logger = l
	slog.SetDefault(logger)
	return nil
}

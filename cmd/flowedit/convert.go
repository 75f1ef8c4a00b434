package main

import (
	"fmt"

	"github.com/aretw0/flowedit/internal/cli"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> [out]",
	Short: "Re-encode a flow document",
	Long: `Reads a flow document and writes it in the canonical layout. Formats follow the
file extensions, so flow.yaml -> flow.json converts YAML to JSON. The output
defaults to the configured export filename.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cfg.Export.Filename
		if len(args) == 2 {
			out = args[1]
		}
		ed, err := openEditor(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := cli.SaveFile(ed, out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d nodes)\n", out, len(ed.Inspect()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

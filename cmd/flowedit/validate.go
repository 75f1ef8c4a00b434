package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/flowedit/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check the graph for consistency",
	Long: `Walks the flow from its start node and reports dead links, disconnected and
unreachable nodes. Loops are listed but are not errors.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := openEditor(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		report := ed.Analyze()
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(report))
		if !report.Clean() {
			return errors.New("validation failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowedit/internal/cli"
	"github.com/aretw0/flowedit/pkg/form"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "List or edit environment variables",
}

var varsListCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List environment variables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := openEditor(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rows := ed.EnvironmentRows()
		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no environment variables")
			return nil
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers("Key", "Value")
		for _, row := range rows {
			t.Row(row.Key, row.Value)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return err
	},
}

var varsSetCmd = &cobra.Command{
	Use:   "set <file> [key=value...]",
	Short: "Set or remove environment variables and save the file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		unset, _ := cmd.Flags().GetStringArray("unset")

		ed, err := openEditor(cmd.Context(), path)
		if err != nil {
			return err
		}

		rows := ed.EnvironmentRows()
		for _, pair := range args[1:] {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("invalid variable %q (want key=value)", pair)
			}
			rows = append(rows, form.VarRow{Key: key, Value: value})
		}
		drop := make(map[string]bool, len(unset))
		for _, k := range unset {
			drop[k] = true
		}
		kept := rows[:0]
		for _, r := range rows {
			if !drop[strings.TrimSpace(r.Key)] {
				kept = append(kept, r)
			}
		}

		env := ed.SaveEnvironments(cmd.Context(), kept)
		if err := cli.SaveFile(ed, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d environment variable(s) saved\n", len(env))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(varsCmd)
	varsCmd.AddCommand(varsListCmd, varsSetCmd)
	varsSetCmd.Flags().StringArray("unset", nil, "Variable to remove (repeatable)")
}

package main

import (
	"github.com/aretw0/flowedit/internal/presentation/tui"
	"github.com/aretw0/flowedit/pkg/form"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse <file>",
	Short: "Browse the flow tree interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := openEditor(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		model := tui.NewBrowseModel(ed.Tree(cmd.Context()), func(id string) (form.Form, error) {
			return ed.OpenNode(id, "")
		})
		_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

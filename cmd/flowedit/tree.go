package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/flowedit/internal/presentation/tui"
	"github.com/aretw0/flowedit/pkg/tree"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Print the flow as a tree",
	Long: `Projects the flow into a tree rooted at the start node, followed by one tree
per disconnected node. On a terminal the tree is rendered as Markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		ed, err := openEditor(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		p := ed.Tree(cmd.Context())
		out := cmd.OutOrStdout()

		if format == "auto" {
			format = "text"
			if tui.IsTerminal(os.Stdout) {
				format = "markdown"
			}
		}

		switch format {
		case "text":
			return tree.Text(out, p, tui.TreeStyle(termenv.EnvColorProfile()))
		case "markdown":
			md := tree.Markdown(p)
			if tui.IsTerminal(os.Stdout) {
				render, err := tui.NewRenderer()
				if err != nil {
					return err
				}
				if md, err = render(md); err != nil {
					return err
				}
			}
			_, err := fmt.Fprint(out, md)
			return err
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		default:
			return fmt.Errorf("unknown tree format %q (use auto, text, markdown or json)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().StringP("format", "f", "auto", "Output format: auto, text, markdown or json")
}

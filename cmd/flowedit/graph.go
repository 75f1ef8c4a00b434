package main

import (
	"fmt"
	"os"

	"github.com/aretw0/flowedit/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the flow graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD), a Graphviz DOT graph or an SVG rendering
of the flow. Dangling targets and disconnected nodes are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		ed, err := openEditor(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		overlay := graph.OverlayFrom(ed.Analyze())

		var data []byte
		switch format {
		case "mermaid":
			data = []byte(graph.GenerateMermaid(ed.Inspect(), ed.StartNodeID(), overlay))
		case "dot":
			data = []byte(graph.ToDOT(ed.Inspect(), ed.StartNodeID(), overlay))
		case "svg":
			data, err = graph.RenderSVG(cmd.Context(), graph.ToDOT(ed.Inspect(), ed.StartNodeID(), overlay))
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown graph format %q (use mermaid, dot or svg)", format)
		}

		if output == "" || output == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return os.WriteFile(output, data, 0644)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid, dot or svg")
	graphCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
}

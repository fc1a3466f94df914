package main

import (
	"fmt"

	"github.com/aretw0/stepper/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// diagramCmd represents the diagram command
var diagramCmd = &cobra.Command{
	Use:   "diagram <sequence>",
	Short: "Print the tree of a sequence",
	Long:  `Prints the trial tree with box-drawing connectors, or as a Mermaid flowchart (graph TD) with the visited and current leaves highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		seq, err := app.Engine.Open(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading sequence '%s': %w", args[0], err)
		}
		if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(seq.Tree(), graph.OverlayOf(seq.Tree())))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), seq.Diagram())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diagramCmd)
	diagramCmd.Flags().Bool("mermaid", false, "Output a Mermaid flowchart")
}

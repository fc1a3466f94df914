package main

import (
	"github.com/aretw0/stepper/internal/cli"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <sequence> <design.yaml>",
	Short: "Commit the tables of a design to a sequence",
	Long:  `Builds the design and commits its tables in order. Tables already committed are skipped, so applying twice is safe.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.ApplyDesign(app, args[0], args[1], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

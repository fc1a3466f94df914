package main

import (
	"log/slog"

	"github.com/aretw0/stepper/internal/cli"
	"github.com/aretw0/stepper/internal/logging"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <design.yaml>",
	Short: "Build the tables of a design and print them",
	Long:  `Runs every step of the design and prints the resulting tables with their hashes. Nothing is stored.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, _ := cmd.Flags().GetString("seed")
		logger := logging.NewNop()
		if globalOptions(cmd).Debug {
			logger = logging.New(slog.LevelDebug)
		}
		return cli.BuildDesign(args[0], seed, logger, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().String("seed", "", "Override the design seed")
}

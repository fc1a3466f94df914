package main

import (
	"fmt"
	"os"

	"github.com/aretw0/stepper/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stepper",
	Short: "Stepper sequences the trials of an experiment",
	Long: `Stepper builds trial tables from YAML designs, commits them to named sequences
and walks participants through them, persisting the position after every step.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default <dir>/stepper.yaml)")
	rootCmd.PersistentFlags().String("dir", ".", "Project directory holding the config and the file store")
	rootCmd.PersistentFlags().Bool("debug", false, "Log debug information to stderr")
}

func globalOptions(cmd *cobra.Command) cli.Options {
	configPath, _ := cmd.Flags().GetString("config")
	dir, _ := cmd.Flags().GetString("dir")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Options{ConfigPath: configPath, Dir: dir, Debug: debug}
}

// setupApp wires the engine for commands that touch stored sequences.
// Callers must Close the app.
func setupApp(cmd *cobra.Command, extra ...cli.SetupOption) (*cli.App, error) {
	app, err := cli.Setup(globalOptions(cmd), extra...)
	if err != nil {
		return nil, fmt.Errorf("error initializing stepper: %w", err)
	}
	return app, nil
}

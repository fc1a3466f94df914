package main

import (
	"os"

	"github.com/aretw0/stepper/internal/cli"
	"github.com/spf13/cobra"
)

var walkCmd = &cobra.Command{
	Use:   "walk <sequence>",
	Short: "Walk through a sequence interactively",
	Long: `Shows the current step and waits for a command:
  (enter), n   next
  p, b         previous
  r            reset
  g <path>     go to path
  q            quit
The position is saved after every move, so a walk can be resumed later.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := cli.WalkOptions{Name: args[0]}
		opts.Design, _ = cmd.Flags().GetString("design")
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Plain, _ = cmd.Flags().GetBool("plain")
		return cli.RunWalk(app, opts, os.Stdin, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(walkCmd)
	walkCmd.Flags().String("design", "", "Apply this design before walking")
	walkCmd.Flags().Bool("headless", false, "Advance to the end without waiting for input")
	walkCmd.Flags().Bool("fresh", false, "Delete the stored sequence first")
	walkCmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering")
}

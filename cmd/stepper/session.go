package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"seq"},
	Short:   "Manage stored sequences",
	Long:    `List, inspect, and remove the sequences kept in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored sequences",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		names, err := app.Engine.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sequences: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(names) == 0 {
			fmt.Fprintln(out, "No stored sequences found.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCURSOR\tCOMMITS\tUPDATED")
		for _, name := range names {
			rec, err := app.Engine.Inspect(cmd.Context(), name)
			if err != nil {
				fmt.Fprintf(w, "%s\t?\t?\t%v\n", name, err)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", name, rec.Cursor, rec.Committed, rec.UpdatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <sequence>",
	Short: "Print the stored record of a sequence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		rec, err := app.Engine.Inspect(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading sequence '%s': %w", args[0], err)
		}
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling sequence: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <sequence>...",
	Short: "Remove one or more sequences",
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if all, _ := cmd.Flags().GetBool("all"); all {
			if args, err = app.Engine.List(cmd.Context()); err != nil {
				return fmt.Errorf("error listing sequences: %w", err)
			}
		}
		var errs []error
		for _, name := range args {
			if err := app.Engine.Delete(cmd.Context(), name); err != nil {
				errs = append(errs, fmt.Errorf("error removing '%s': %w", name, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed sequence '%s'\n", name)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	sessionRmCmd.Flags().Bool("all", false, "Remove every stored sequence")
}

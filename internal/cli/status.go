package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootHashCmd = &cobra.Command{
	Use:   "root",
	Short: "Print the current root hash and entry count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, formatRoot(svc.Root()))
		if !quiet {
			fmt.Fprintf(out, "entries: %d\n", svc.Len())
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Rebuild the tree and verify its invariants against the persisted root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.Check(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d entries, root %s\n", svc.Len(), formatRoot(svc.Root()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rootHashCmd)
	rootCmd.AddCommand(checkCmd)
}

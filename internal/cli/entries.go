package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put <key> <value>",
	Short: "Insert or update an entry and print the new root",
	Args:  cobra.ExactArgs(2),
	RunE:  runPut,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove an entry and print the new root",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value stored under a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(getCmd)
}

func runPut(cmd *cobra.Command, args []string) error {
	key, err := decodeArg("key", args[0])
	if err != nil {
		return err
	}
	value, err := decodeArg("value", args[1])
	if err != nil {
		return err
	}

	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	root, err := svc.Put(cmd.Context(), key, value)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatRoot(root))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	key, err := decodeArg("key", args[0])
	if err != nil {
		return err
	}

	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	removed, root, err := svc.Delete(cmd.Context(), key)
	if err != nil {
		return err
	}
	if !removed {
		logger.Warn("key not present", "key", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatRoot(root))
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	key, err := decodeArg("key", args[0])
	if err != nil {
		return err
	}

	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	value, ok := svc.Get(key)
	if !ok {
		return fmt.Errorf("key %q not found", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatBytes(value))
	return nil
}

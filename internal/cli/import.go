package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LeJamon/gocmt/internal/storage/treestore"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Insert every key=value line of a file in one batch",
	Long: `Import reads one key=value pair per line and commits them all in a single
atomic write. Blank lines and lines starting with # are skipped. Use - to read
from standard input. With --hex, keys and values are hex encoded.

Examples:
    cmt import entries.txt
    cmt --hex import - < entries.hex`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	entries, err := parseEntries(in)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	root, err := svc.Import(cmd.Context(), entries)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatRoot(root))
	return nil
}

func parseEntries(r io.Reader) ([]treestore.Entry, error) {
	var entries []treestore.Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16<<20)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		k, v, ok := strings.Cut(text, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key=value", line)
		}
		key, err := decodeArg("key", k)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(key) == 0 {
			return nil, fmt.Errorf("line %d: empty key", line)
		}
		value, err := decodeArg("value", v)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, treestore.Entry{Key: key, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/LeJamon/gocmt/internal/commitment"
	"github.com/LeJamon/gocmt/internal/config"
	"github.com/LeJamon/gocmt/internal/storage/treestore"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	debug      bool
	quiet      bool
	hexInput   bool

	// Set by loadConfig before any command runs
	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cmt",
	Short: "cmt - persisted Cartesian Merkle Tree",
	Long: `cmt maintains a Cartesian Merkle Tree over a persisted key-value store.
Every change produces a new root hash, and any key can be proven present or
absent against that root with a compact proof that verifies without the store.`,
	Version:           "0.1.0-dev",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().BoolVar(&hexInput, "hex", false, "keys and values are given and printed as hex")
}

// loadConfig reads the configuration file and CMT_ environment variables
// and sets up logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	cfg = c
	logger = setupLogger(cmd.ErrOrStderr(), c.Log)
	return nil
}

func setupLogger(out io.Writer, lc config.LogConfig) *slog.Logger {
	var hopts slog.HandlerOptions
	switch strings.ToLower(lc.Level) {
	case "debug":
		hopts.Level = slog.LevelDebug
	case "warn":
		hopts.Level = slog.LevelWarn
	case "error":
		hopts.Level = slog.LevelError
	default:
		hopts.Level = slog.LevelInfo
	}
	if debug {
		hopts.Level = slog.LevelDebug
	}
	if quiet {
		hopts.Level = slog.LevelError
	}

	var handler slog.Handler
	if strings.ToLower(lc.Format) == "json" {
		handler = slog.NewJSONHandler(out, &hopts)
	} else {
		handler = slog.NewTextHandler(out, &hopts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// openService opens the configured store and rebuilds the tree.
func openService(cmd *cobra.Command) (*commitment.Service, error) {
	return commitment.Open(cmd.Context(), commitment.Config{
		Store: treestore.Config{
			Backend:    cfg.Store.Backend,
			Path:       cfg.ResolveStorePath(),
			Compressor: cfg.Store.Compressor,
		},
		ProofCacheSize: cfg.Cache.ProofCacheSize,
		ProveWorkers:   cfg.Prove.Workers,
		Logger:         logger,
	})
}

// decodeArg interprets a key or value argument, as hex when --hex is set.
func decodeArg(name, s string) ([]byte, error) {
	if !hexInput {
		return []byte(s), nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %s %q: %w", name, s, err)
	}
	return b, nil
}

// formatBytes renders a key or value for output, as hex when --hex is set.
func formatBytes(b []byte) string {
	if hexInput {
		return hex.EncodeToString(b)
	}
	return string(b)
}

func formatRoot(root []byte) string {
	if len(root) == 0 {
		return "(empty)"
	}
	return hex.EncodeToString(root)
}

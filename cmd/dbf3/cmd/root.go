package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/halvard/dbf3/pkg/codec"
	"github.com/halvard/dbf3/pkg/config"
	"github.com/halvard/dbf3/pkg/store"
)

// cfg holds the effective configuration: the config file (or
// defaults) with flag overrides applied.
var cfg *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dbf3",
	Short: "dbf3 - dBASE III table diagnostics",
	Long: `dbf3 inspects, exports, mutates, and repairs dBASE III PLUS
table files. All subcommands consume the table strictly through the
store's public read/write/repair operations.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if config.ConfigExists(path) {
			loaded, err := config.LoadConfig(path)
			if err != nil {
				return err
			}
			cfg = loaded
		} else {
			cfg = config.DefaultConfig()
		}

		flags := cmd.Flags()
		if flags.Changed("codepage") {
			cfg.CodePage, _ = flags.GetString("codepage")
		}
		if flags.Changed("window") {
			cfg.WindowSize, _ = flags.GetInt("window")
		}
		if flags.Changed("header-mode") {
			cfg.HeaderMode, _ = flags.GetString("header-mode")
		}
		if flags.Changed("allow-off-by-one") {
			cfg.AllowOffByOne, _ = flags.GetBool("allow-off-by-one")
		}
		if flags.Changed("log-level") {
			cfg.Logging.Level, _ = flags.GetString("log-level")
		}

		level, err := logrus.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
		}
		logrus.SetLevel(level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default: ~/.config/dbf3/config.yaml)")
	pf.String("codepage", "", "Code page for Character fields (cp437, cp850, cp1252, ...)")
	pf.Int("window", 100, "Read-ahead window in rows (0 disables the row cache)")
	pf.String("header-mode", "scan", "Header parse strategy: scan or trust")
	pf.Bool("allow-off-by-one", false, "Keep a declared header length that is off by exactly one byte")
	pf.String("log-level", "warning", "Log level (debug, info, warning, error)")
}

// openOptions translates the effective configuration into store
// options for the current invocation.
func openOptions() (store.Options, error) {
	opts := store.Options{
		WindowSize:    cfg.WindowSize,
		AllowOffByOne: cfg.AllowOffByOne,
		Logger:        logrus.StandardLogger(),
	}
	switch cfg.HeaderMode {
	case "trust":
		opts.HeaderMode = store.TrustDeclared
	case "scan", "":
		opts.HeaderMode = store.ScanTerminator
	default:
		return store.Options{}, fmt.Errorf("unknown header mode %q (want scan or trust)", cfg.HeaderMode)
	}
	cp, err := codec.CodePage(cfg.CodePage)
	if err != nil {
		return store.Options{}, err
	}
	opts.CodePage = cp
	return opts, nil
}

// openTable opens path with the effective options.
func openTable(path string) (*store.Table, error) {
	opts, err := openOptions()
	if err != nil {
		return nil, err
	}
	return store.Open(path, opts)
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/hdx"
)

var (
	verbose    bool
	jsonOut    bool
	dataDir    string
	configPath string

	cfg hdx.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hdx",
	Short: "A hierarchical JSON data store with cascading soft deletes",
	Long: `hdx keeps customers, projects, quotes, freight requests and vendor quotes
in one JSON file per collection. Deletes are soft and cascade down the hierarchy.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		path := configPath
		if path == "" {
			if wd, err := os.Getwd(); err == nil {
				path, _ = hdx.FindConfig(wd)
			}
		}

		var err error
		cfg, err = hdx.LoadConfig(path)
		if err != nil {
			fatal("Error loading config", err)
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}

		level := slog.LevelInfo
		if cfg.LogLevel != "" {
			if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
				fatal("Error loading config", fmt.Errorf("invalid log level %q", cfg.LogLevel))
			}
		}
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// openService builds the service from the loaded configuration.
func openService() *hdx.Service {
	svc, err := hdx.OpenConfig(cfg, hdx.WithLogger(slog.Default()))
	if err != nil {
		fatal("Error initializing hdx", err)
	}
	return svc
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Directory holding the collection files")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to hdx.yaml (default: searched upwards)")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/hdx/pkg/adapters/lifecycle"
	"github.com/aretw0/hdx/pkg/core"
)

var watchTypes []string

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Print changes to collection files until interrupted",
	Long: `Watch observes the data directory and prints one line per changed collection.
The optional pattern uses glob syntax against collection names, e.g. "{quotes,projects}".`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pattern := "*"
		if len(args) == 1 {
			pattern = args[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events, err := openService().Watch(ctx, pattern)
		if err != nil {
			fatal("Error starting watcher", err)
		}

		types := make([]core.EventType, 0, len(watchTypes))
		for _, t := range watchTypes {
			types = append(types, core.EventType(t))
		}
		src := lifecycle.NewSource(events, types...)
		if err := src.Start(ctx); err != nil {
			fatal("Error starting watcher", err)
		}

		slog.Info("watching", "dir", cfg.DataDir, "pattern", pattern)
		for e := range src.Events() {
			if jsonOut {
				printJSON(e)
				continue
			}
			fmt.Println(e.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringSliceVar(&watchTypes, "type", nil, "Only report these event types (CREATE, MODIFY, DELETE)")
}

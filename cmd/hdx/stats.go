package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/hdx/pkg/core"
)

var statsCmd = &cobra.Command{
	Use:   "stats <collection> <id>",
	Short: "Summarize the active hierarchy below a record",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c := parseCollection(args[0])
		id := parseID(args[1])

		stats, err := openService().Stats(context.Background(), c, id)
		if err != nil {
			fatal("Error computing stats", err)
		}

		if jsonOut {
			printJSON(stats)
			return
		}

		fmt.Printf("%s\n", stats.Root)
		for _, child := range core.Collections() {
			if n, ok := stats.Counts[child]; ok {
				fmt.Printf("  %s: %d\n", child, n)
			}
		}
		fmt.Printf("total: %d\n", stats.TotalItems)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

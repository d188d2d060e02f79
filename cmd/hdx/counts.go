package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aretw0/hdx/pkg/aggregate"
)

var countsCmd = &cobra.Command{
	Use:   "counts <collection> [parent-id...]",
	Short: "Count active children per parent record",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := parseCollection(args[0])
		ids := make([]int64, 0, len(args)-1)
		for _, a := range args[1:] {
			ids = append(ids, parseID(a))
		}

		counts, err := openService().Counts(context.Background(), c, ids...)
		if err != nil {
			fatal("Error counting children", err)
		}

		if jsonOut {
			printJSON(counts)
			return
		}

		keys := make([]int64, 0, len(counts))
		for id := range counts {
			keys = append(keys, id)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		field, ok := aggregate.CountField(c)
		if !ok {
			field = "count"
		}
		for _, id := range keys {
			fmt.Printf("%d\t%s=%d\n", id, field, counts[id])
		}
	},
}

func init() {
	rootCmd.AddCommand(countsCmd)
}

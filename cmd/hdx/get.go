package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <collection> <id>",
	Short: "Show one active record",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c := parseCollection(args[0])
		id := parseID(args[1])

		rec, err := openService().Get(context.Background(), c, id)
		if err != nil {
			fatal("Error reading record", err)
		}

		if jsonOut {
			printJSON(rec)
			return
		}

		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s: %v\n", k, rec[k])
		}
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}

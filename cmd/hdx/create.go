package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <collection> <fields-json>",
	Short: "Create a record",
	Long: `Create validates the given fields and appends a new record with the next id.

Example:
  hdx create customers '{"name": "Acme", "status": "active"}'`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c := parseCollection(args[0])
		fields := parseFields(args[1])

		rec, err := openService().Create(context.Background(), c, fields)
		if err != nil {
			fatal("Error creating record", err)
		}

		if jsonOut {
			printJSON(rec)
			return
		}
		id, _ := rec.ID()
		fmt.Printf("%s created: %d\n", c.Singular(), id)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}

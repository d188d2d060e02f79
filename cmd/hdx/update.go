package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <collection> <id> <fields-json>",
	Short: "Update fields of an active record",
	Long:  `Update merges the given fields into the record. Absent and null fields are left untouched.`,
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		c := parseCollection(args[0])
		id := parseID(args[1])
		fields := parseFields(args[2])

		rec, err := openService().Update(context.Background(), c, id, fields)
		if err != nil {
			fatal("Error updating record", err)
		}

		if jsonOut {
			printJSON(rec)
			return
		}
		fmt.Printf("%s updated: %d\n", c.Singular(), id)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

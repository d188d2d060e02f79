package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/hdx/pkg/core"
)

var (
	listParent         int64
	listIncludeDeleted bool
)

var listCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "List the records of a collection",
	Long: `List prints the active records of a collection with their derived fields.
Use --parent to restrict the listing to the children of one record.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := parseCollection(args[0])
		svc := openService()
		ctx := context.Background()

		var records []core.Record
		var err error
		if listParent > 0 {
			records, err = svc.ListByParent(ctx, c, listParent)
		} else {
			records, err = svc.List(ctx, c, listIncludeDeleted)
		}
		if err != nil {
			fatal("Error listing records", err)
		}

		if jsonOut {
			printJSON(records)
			return
		}

		for _, r := range records {
			id, _ := r.ID()
			line := fmt.Sprintf("%d\t%s", id, r.Text("name"))
			if !r.Active() {
				line += "\t(deleted)"
			}
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Int64Var(&listParent, "parent", 0, "Only list children of this parent id")
	listCmd.Flags().BoolVar(&listIncludeDeleted, "include-deleted", false, "Include soft-deleted records")
}

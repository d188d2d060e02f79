package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <collection> <id>",
	Short: "Soft-delete a record and its descendants",
	Long: `Delete marks the record as deleted and cascades to every active descendant.
Descendants that fail are listed and the command exits with status 2.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c := parseCollection(args[0])
		id := parseID(args[1])

		report, err := openService().Delete(context.Background(), c, id)
		if err != nil {
			fatal("Error deleting record", err)
		}

		if jsonOut {
			printJSON(map[string]any{
				"message": report.Message(),
				"report":  report,
			})
		} else {
			fmt.Println(report.Message())
			for _, f := range report.Failures {
				fmt.Fprintf(os.Stderr, "  failed: %s %d (parent %s): %s\n", f.Type, f.ID, f.Parent, f.Error)
			}
		}
		if report.Partial() {
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

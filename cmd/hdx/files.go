package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Describe the collection files in the data directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		stats, err := openService().FileStats(context.Background())
		if err != nil {
			fatal("Error reading file stats", err)
		}

		if jsonOut {
			printJSON(stats)
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "COLLECTION\tSIZE\tACTIVE\tDELETED\tMODIFIED")
		for _, st := range stats {
			modified := "-"
			if st.LastModified != nil {
				modified = humanize.Time(*st.LastModified)
			}
			if st.LoadError != "" {
				modified += " (unreadable)"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				st.Collection, humanize.Bytes(uint64(st.SizeBytes)), st.ActiveItems, st.DeletedItems, modified)
		}
		_ = w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var prune int

var backupsCmd = &cobra.Command{
	Use:   "backups <collection>",
	Short: "List or prune the backups of a collection",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := parseCollection(args[0])
		svc := openService()

		if cmd.Flags().Changed("prune") {
			removed, err := svc.PruneBackups(c, prune)
			if err != nil {
				fatal("Error pruning backups", err)
			}
			if jsonOut {
				printJSON(map[string]int{"removed": removed})
				return
			}
			fmt.Printf("Removed %d backups of %s\n", removed, c)
			return
		}

		paths, err := svc.Backups(c)
		if err != nil {
			fatal("Error listing backups", err)
		}

		if jsonOut {
			printJSON(paths)
			return
		}
		for _, p := range paths {
			info, err := os.Stat(p)
			if err != nil {
				fmt.Println(filepath.Base(p))
				continue
			}
			fmt.Printf("%s\t%s\t%s\n", filepath.Base(p), humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime()))
		}
	},
}

func init() {
	rootCmd.AddCommand(backupsCmd)
	backupsCmd.Flags().IntVar(&prune, "prune", 0, "Keep only the newest N backups")
}

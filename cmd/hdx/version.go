package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/hdx"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hdx",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hdx version %s\n", strings.TrimSpace(hdx.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the internal state of the service and its store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		out := map[string]any{}
		addState(out, svc)
		addState(out, svc.Store())
		printJSON(out)
	},
}

func addState(out map[string]any, v any) {
	intro, ok := v.(introspection.Introspectable)
	if !ok {
		return
	}
	name := "component"
	if comp, ok := v.(introspection.Component); ok {
		name = comp.ComponentType()
	}
	out[name] = intro.State()
}

func init() {
	rootCmd.AddCommand(stateCmd)
}

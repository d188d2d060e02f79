package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/hdx/pkg/core"
)

func main() {
	Execute()
}

func fatal(msg string, err error) {
	if jsonOut {
		out := map[string]any{"error": err.Error()}
		var e *core.Error
		if errors.As(err, &e) {
			out = e.ToMap()
		}
		_ = json.NewEncoder(os.Stderr).Encode(out)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fatal("Error encoding JSON", err)
	}
}

func parseCollection(name string) core.Collection {
	c, err := core.ParseCollection(name)
	if err != nil {
		fatal("Error", err)
	}
	return c
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		fatal("Error", fmt.Errorf("invalid id %q", s))
	}
	return id
}

// parseFields decodes a JSON object of field values. Numbers stay
// json.Number so amounts keep their precision through validation.
func parseFields(raw string) map[string]any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		fatal("Error parsing fields", err)
	}
	return fields
}

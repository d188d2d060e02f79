package cascade

import (
	"fmt"
	"strings"

	"github.com/aretw0/hdx/pkg/core"
)

// Failure names a descendant whose soft delete did not happen.
type Failure struct {
	Collection core.Collection `json:"-"`
	Type       string          `json:"type"`
	ID         int64           `json:"id"`
	ParentRef  core.Ref        `json:"-"`
	Parent     string          `json:"parent"`
	Operation  string          `json:"operation"`
	File       string          `json:"file"`
	Error      string          `json:"error,omitempty"`
}

// Report is the outcome of a cascade delete whose root was deleted.
// A non-empty Failures list marks a partial cascade: the root is gone but
// some descendants are still active.
type Report struct {
	OperationID string                  `json:"operation_id"`
	Root        core.Ref                `json:"root"`
	Discovered  map[core.Collection]int `json:"total_items_before_deletion"`
	Deleted     map[core.Collection]int `json:"successful_deletions"`
	Failures    []Failure               `json:"failed_deletions,omitempty"`
}

func newReport(id string, root core.Ref) *Report {
	r := &Report{
		OperationID: id,
		Root:        root,
		Discovered:  make(map[core.Collection]int),
		Deleted:     make(map[core.Collection]int),
	}
	for _, c := range descendants(root.Collection) {
		r.Discovered[c] = 0
		r.Deleted[c] = 0
	}
	return r
}

// Partial reports whether any descendant failed to delete.
func (r *Report) Partial() bool {
	return len(r.Failures) > 0
}

// Total is the number of descendants deleted, the root excluded.
func (r *Report) Total() int {
	n := 0
	for _, v := range r.Deleted {
		n += v
	}
	return n
}

func (r *Report) totalDiscovered() int {
	n := 0
	for _, v := range r.Discovered {
		n += v
	}
	return n
}

// Message is the caller-facing confirmation.
func (r *Report) Message() string {
	name := capitalize(r.Root.Collection.Singular())
	levels := descendants(r.Root.Collection)

	if r.Partial() {
		return fmt.Sprintf("Cascade delete partially failed for %s %d. %d items failed to delete out of %d total items.",
			r.Root.Collection.Singular(), r.Root.ID, len(r.Failures), r.totalDiscovered())
	}
	if len(levels) == 0 || r.totalDiscovered() == 0 {
		return name + " deleted successfully"
	}

	parts := make([]string, 0, len(levels))
	for _, c := range levels {
		parts = append(parts, fmt.Sprintf("%d %s", r.Deleted[c], strings.ReplaceAll(string(c), "_", " ")))
	}
	return fmt.Sprintf("%s and %s deleted successfully (%d total items)", name, joinList(parts), r.Total())
}

func joinList(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
}

func capitalize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// descendants lists the collections reachable below c, in edge order.
func descendants(c core.Collection) []core.Collection {
	var out []core.Collection
	var walk func(core.Collection)
	walk = func(p core.Collection) {
		for _, e := range core.ChildEdges(p) {
			out = append(out, e.Child)
			walk(e.Child)
		}
	}
	walk(c)
	return out
}

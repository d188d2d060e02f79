package core

// Edge links a parent collection to a child collection through a foreign
// key field on the child.
type Edge struct {
	Parent     Collection
	Child      Collection
	ForeignKey string
}

// Edges is the ownership graph walked by cascades and counters, in
// discovery order. The first edge of a parent is its counted edge.
var Edges = []Edge{
	{Parent: Customers, Child: Projects, ForeignKey: "customer_id"},
	{Parent: Projects, Child: Quotes, ForeignKey: "project_id"},
	{Parent: Quotes, Child: FreightRequests, ForeignKey: "quote_id"},
	{Parent: Quotes, Child: VendorQuotes, ForeignKey: "quote_id"},
}

// ChildEdges returns the edges owned by parent, in table order.
func ChildEdges(parent Collection) []Edge {
	var out []Edge
	for _, e := range Edges {
		if e.Parent == parent {
			out = append(out, e)
		}
	}
	return out
}

// ParentEdge returns the edge that owns child, if any.
func ParentEdge(child Collection) (Edge, bool) {
	for _, e := range Edges {
		if e.Child == child {
			return e, true
		}
	}
	return Edge{}, false
}

// CountEdge returns the edge used for child counts on parent records.
func CountEdge(parent Collection) (Edge, bool) {
	edges := ChildEdges(parent)
	if len(edges) == 0 {
		return Edge{}, false
	}
	return edges[0], true
}

// ReadOnly reports whether records of c are reference data that the core
// never soft-deletes.
func ReadOnly(c Collection) bool {
	return c == Vendors
}

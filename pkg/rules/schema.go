package rules

import (
	"github.com/shopspring/decimal"

	"github.com/aretw0/hdx/pkg/core"
)

// check validates and normalizes one field value.
type check func(field string, value any) (any, error)

// Field describes one writable field of a collection.
type Field struct {
	Name     string
	Required bool
	// Fixed fields can be set on create but never patched.
	Fixed bool
	// Default is applied on create when the field is absent.
	Default any
	check   check
}

// Reference is a foreign key whose target must exist and be active.
type Reference struct {
	Field  string
	Target core.Collection
}

func name(max int) check {
	return func(f string, v any) (any, error) { return RequiredString(f, v, max) }
}

func text(max int) check {
	return func(f string, v any) (any, error) { return OptionalString(f, v, max) }
}

func choice(choices []string) check {
	return func(f string, v any) (any, error) { return Choice(f, v, choices) }
}

func amount(max decimal.Decimal) check {
	return func(f string, v any) (any, error) { return Amount(f, v, max) }
}

func date(f string, v any) (any, error) { return Date(f, v) }

func ref(f string, v any) (any, error) { return RefID(f, v) }

func boolean(f string, v any) (any, error) { return Bool(f, v) }

func tracking(f string, v any) (any, error) { return TrackingID(f, v) }

var schemas = map[core.Collection][]Field{
	core.Customers: {
		{Name: "name", Required: true, check: name(MaxNameLength)},
		{Name: "status", Required: true, check: choice(Statuses)},
		{Name: "created_date", check: date},
	},
	core.Projects: {
		{Name: "customer_id", Required: true, Fixed: true, check: ref},
		{Name: "name", Required: true, check: name(MaxNameLength)},
		{Name: "budget", Required: true, check: amount(MaxBudget)},
		{Name: "status", Required: true, check: choice(Statuses)},
		{Name: "start_date", check: date},
	},
	core.Quotes: {
		{Name: "project_id", Required: true, Fixed: true, check: ref},
		{Name: "name", Required: true, check: name(MaxNameLength)},
		{Name: "amount", Required: true, check: amount(MaxBudget)},
		{Name: "status", Required: true, check: choice(Statuses)},
		{Name: "valid_until", check: date},
	},
	core.FreightRequests: {
		{Name: "quote_id", Required: true, Fixed: true, check: ref},
		{Name: "vendor_id", Required: true, check: ref},
		{Name: "name", Required: true, check: name(MaxNameLength)},
		{Name: "weight", Required: true, check: amount(MaxWeight)},
		{Name: "priority", Required: true, check: choice(Priorities)},
		{Name: "status", Required: true, check: choice(Statuses)},
		{Name: "estimated_delivery", check: date},
	},
	core.VendorQuotes: {
		{Name: "quote_id", Required: true, Fixed: true, check: ref},
		{Name: "vendor_id", Required: true, check: ref},
		{Name: "tracking_id", Required: true, check: tracking},
		{Name: "items_text", Required: true, check: name(MaxItemsTextLength)},
		{Name: "status", Required: true, check: choice(VendorQuoteStatuses)},
		{Name: "priority", Default: "medium", check: choice(Priorities)},
		{Name: "quoted_amount", check: amount(MaxBudget)},
		{Name: "delivery_requirements", Default: "", check: text(MaxDeliveryRequirementsLength)},
		{Name: "is_rush", Default: false, check: boolean},
	},
}

var references = map[core.Collection][]Reference{
	core.Projects:        {{Field: "customer_id", Target: core.Customers}},
	core.Quotes:          {{Field: "project_id", Target: core.Projects}},
	core.FreightRequests: {{Field: "quote_id", Target: core.Quotes}, {Field: "vendor_id", Target: core.Vendors}},
	core.VendorQuotes:    {{Field: "quote_id", Target: core.Quotes}, {Field: "vendor_id", Target: core.Vendors}},
}

// Fields returns the writable fields of c.
func Fields(c core.Collection) []Field {
	return append([]Field(nil), schemas[c]...)
}

// References returns the foreign keys of c that must point at active
// records.
func References(c core.Collection) []Reference {
	return append([]Reference(nil), references[c]...)
}

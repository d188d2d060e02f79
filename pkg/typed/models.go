package typed

// Customer owns projects.
type Customer struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	CreatedDate  string `json:"created_date,omitempty"`
	ProjectCount int    `json:"project_count,omitempty"`
}

// Project belongs to a customer and owns quotes.
type Project struct {
	CustomerID int64   `json:"customer_id"`
	Name       string  `json:"name"`
	Budget     float64 `json:"budget,omitempty"`
	Status     string  `json:"status"`
	StartDate  string  `json:"start_date,omitempty"`
	QuoteCount int     `json:"quote_count,omitempty"`
}

// Quote belongs to a project and owns freight requests and vendor quotes.
type Quote struct {
	ProjectID           int64   `json:"project_id"`
	Name                string  `json:"name"`
	Amount              float64 `json:"amount,omitempty"`
	Status              string  `json:"status"`
	ValidUntil          string  `json:"valid_until,omitempty"`
	FreightRequestCount int     `json:"freight_request_count,omitempty"`
}

// FreightRequest is a shipment request under a quote.
type FreightRequest struct {
	QuoteID           int64   `json:"quote_id"`
	VendorID          int64   `json:"vendor_id"`
	Name              string  `json:"name"`
	Weight            float64 `json:"weight,omitempty"`
	Priority          string  `json:"priority"`
	Status            string  `json:"status"`
	EstimatedDelivery string  `json:"estimated_delivery,omitempty"`
	VendorName        string  `json:"vendor_name,omitempty"`
}

// Vendor is read-only reference data.
type Vendor struct {
	Name      string  `json:"name"`
	Specialty string  `json:"specialty,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
}

// VendorQuote is a vendor's offer for a quote, identified by a tracking id.
type VendorQuote struct {
	QuoteID              int64    `json:"quote_id"`
	VendorID             int64    `json:"vendor_id"`
	TrackingID           string   `json:"tracking_id"`
	ItemsText            string   `json:"items_text"`
	Status               string   `json:"status"`
	Priority             string   `json:"priority,omitempty"`
	QuotedAmount         *float64 `json:"quoted_amount,omitempty"`
	DeliveryRequirements string   `json:"delivery_requirements,omitempty"`
	IsRush               bool     `json:"is_rush,omitempty"`
	CreatedAt            string   `json:"created_at,omitempty"`
	UpdatedAt            string   `json:"updated_at,omitempty"`
	VendorName           string   `json:"vendor_name,omitempty"`
	QuoteName            string   `json:"quote_name,omitempty"`
}

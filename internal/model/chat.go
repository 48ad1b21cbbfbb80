package model

// ChatRequest is a single "ask a question" exchange. There is no dialogue
// state on the server; history, if any, lives in the client.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse carries the assistant's answer plus the evidence behind it.
type ChatResponse struct {
	Message         string             `json:"message"`
	Products        []Product          `json:"products"`
	Entities        *ExtractedEntities `json:"entities,omitempty"`
	Reasoning       string             `json:"reasoning,omitempty"`
	NormalizedInput string             `json:"normalizedInput,omitempty"`
	Took            int64              `json:"took_ms"`
}

// InsightsRequest asks for aggregate statistics over the products a search
// message would match.
type InsightsRequest struct {
	Message string `json:"message" binding:"required"`
}

// SearchInsights summarizes one slice of the catalog.
type SearchInsights struct {
	TotalResults int       `json:"totalResults"`
	AveragePrice float64   `json:"averagePrice"`
	PriceRange   PriceSpan `json:"priceRange"`
	TopBrands    []string  `json:"topBrands"`
	Categories   []string  `json:"categories"`
}

// PriceSpan is an observed min/max sale-price range.
type PriceSpan struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FeedbackRequest records a user action on a previously returned product.
type FeedbackRequest struct {
	SearchID  string `json:"search_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Action    string `json:"action" binding:"required"` // click, contact, view_details
}

package models

// ScrapedMetadata is the response for /scrape. Unknown fields are omitted.
type ScrapedMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`

	// ImageURL is either a data: URI or the unmodified remote image URL
	// when inlining failed.
	ImageURL string `json:"imageUrl,omitempty"`
}

// GreetingResponse is the response for /hello.
type GreetingResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

package models

// ScrapeRequest is bound from the query string of /scrape.
type ScrapeRequest struct {
	// URL is the page to scrape. Required.
	URL string `form:"url" binding:"required"`
}

// GreetRequest is bound from the query string of /hello.
type GreetRequest struct {
	// Name defaults to "World" when absent or empty.
	Name string `form:"name"`
}

// Defaults applies default values to unset fields.
func (r *GreetRequest) Defaults() {
	if r.Name == "" {
		r.Name = "World"
	}
}

package search

// Result is a single search hit returned to the caller.
type Result struct {
	Date       string `json:"date"`
	SenderName string `json:"senderName,omitempty"`
	Snippet    string `json:"snippet"`
}

// Query describes a search request.
type Query struct {
	Text   string
	Limit  int
	Offset int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search over stored reports.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// ReportRecord is the data we index for one report date.
type ReportRecord struct {
	Date       string `json:"date"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
}

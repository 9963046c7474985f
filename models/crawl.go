package models

// CrawlStats summarizes a completed crawl (I4: succeeded + failed ==
// processed, processed <= min(limit, discovered)).
type CrawlStats struct {
	Discovered int `json:"discovered"`
	Processed  int `json:"processed"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
}

// CrawlPageError is a per-URL failure recorded in the crawl response
// without failing the whole crawl (spec.md §7).
type CrawlPageError struct {
	URL   string       `json:"url"`
	Error *ErrorDetail `json:"error"`
}

// CrawlResponse is the top-level /crawl response envelope.
type CrawlResponse struct {
	Success   bool             `json:"success"`
	Pages     []Document       `json:"pages,omitempty"`
	Errors    []CrawlPageError `json:"errors,omitempty"`
	Stats     CrawlStats       `json:"stats"`
	RequestID string           `json:"requestId,omitempty"`
	Error     *ErrorDetail     `json:"error,omitempty"`
}

package scraper

import "time"

// Source identifiers recorded in run provenance.
const (
	SourceNYSE   = "NYSE"
	SourceNASDAQ = "NASDAQ"

	// runSource is the combined provenance string stored with each run.
	runSource = "NYSE+NASDAQ+Fallback"
)

// CalendarEntry is a single holiday or early-close row scraped from an
// exchange page.
type CalendarEntry struct {
	Date       time.Time `json:"date"`
	Label      string    `json:"label"`
	EarlyClose bool      `json:"early_close"`
}

// SourceResult is the outcome of fetching one exchange source.
type SourceResult struct {
	Source  string          `json:"source"`
	Success bool            `json:"success"`
	Entries []CalendarEntry `json:"entries,omitempty"`
	Error   string          `json:"error,omitempty"`
}

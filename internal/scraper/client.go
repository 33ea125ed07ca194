package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/wonny/market-hours/pkg/httputil"
	"github.com/wonny/market-hours/pkg/logger"
)

const (
	nyseCalendarURL   = "https://www.nyse.com/markets/hours-calendars"
	nasdaqCalendarURL = "https://www.nasdaq.com/market-activity/stock-market-holiday-calendar"
)

// Client fetches exchange calendar pages from NYSE and Nasdaq.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	limiter    *rate.Limiter
}

// NewClient creates a new exchange calendar client.
// Outbound requests are throttled to stay well under anti-bot thresholds.
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "scraper"),
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// fetchDocument fetches a URL and parses it as an HTML document.
func (c *Client) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	return doc, nil
}

// FetchNYSE fetches and parses the NYSE hours & calendars page.
func (c *Client) FetchNYSE(ctx context.Context) SourceResult {
	result := SourceResult{Source: SourceNYSE}

	doc, err := c.fetchDocument(ctx, nyseCalendarURL)
	if err != nil {
		c.logger.WithError(err).Warn("NYSE calendar fetch failed")
		result.Error = err.Error()
		return result
	}

	result.Entries = parseCalendarTables(doc)
	result.Success = true

	c.logger.WithFields(map[string]interface{}{
		"source":  result.Source,
		"entries": len(result.Entries),
	}).Info("Exchange calendar fetched")

	return result
}

// FetchNASDAQ fetches and parses the Nasdaq holiday calendar page.
func (c *Client) FetchNASDAQ(ctx context.Context) SourceResult {
	result := SourceResult{Source: SourceNASDAQ}

	doc, err := c.fetchDocument(ctx, nasdaqCalendarURL)
	if err != nil {
		c.logger.WithError(err).Warn("Nasdaq calendar fetch failed")
		result.Error = err.Error()
		return result
	}

	result.Entries = parseCalendarTables(doc)
	result.Success = true

	c.logger.WithFields(map[string]interface{}{
		"source":  result.Source,
		"entries": len(result.Entries),
	}).Info("Exchange calendar fetched")

	return result
}

// FetchAll fetches every configured exchange source. Individual failures are
// reported in the per-source results, never as an error.
func (c *Client) FetchAll(ctx context.Context) []SourceResult {
	return []SourceResult{
		c.FetchNYSE(ctx),
		c.FetchNASDAQ(ctx),
	}
}

// parseCalendarTables extracts holiday rows from the calendar tables on an
// exchange page. Exchange pages change markup without notice, so this is
// best-effort: rows that do not look like a date/label pair are skipped.
func parseCalendarTables(doc *goquery.Document) []CalendarEntry {
	var entries []CalendarEntry

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}

		var texts []string
		cells.Each(func(_ int, cell *goquery.Selection) {
			texts = append(texts, normalizeCellText(cell.Text()))
		})

		entry, ok := entryFromRow(texts)
		if ok {
			entries = append(entries, entry)
		}
	})

	return entries
}

// normalizeCellText collapses whitespace in a table cell.
func normalizeCellText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// entryFromRow builds a calendar entry from a row's cell texts. The first
// cell that parses as a date becomes the entry date; the first non-date,
// non-empty cell becomes the label.
func entryFromRow(texts []string) (CalendarEntry, bool) {
	var entry CalendarEntry

	for _, text := range texts {
		if entry.Date.IsZero() {
			if d, ok := parseCalendarDate(text); ok {
				entry.Date = d
				continue
			}
		}
		if entry.Label == "" && text != "" && !looksLikeTime(text) {
			entry.Label = text
		}
	}

	if entry.Date.IsZero() || entry.Label == "" {
		return CalendarEntry{}, false
	}

	entry.EarlyClose = strings.Contains(strings.ToLower(entry.Label), "early") ||
		strings.Contains(entry.Label, "1:00")

	return entry, true
}

// calendarDateLayouts are the date formats seen on NYSE and Nasdaq pages.
var calendarDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"Monday, January 2, 2006",
	"01/02/2006",
	"2006-01-02",
}

// parseCalendarDate tries the known exchange page date formats.
func parseCalendarDate(s string) (time.Time, bool) {
	for _, layout := range calendarDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), true
		}
	}
	return time.Time{}, false
}

// looksLikeTime reports whether a cell is a time value like "9:30 a.m.".
func looksLikeTime(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "a.m.") || strings.Contains(lower, "p.m.") ||
		strings.Contains(lower, "am") && strings.Contains(s, ":") ||
		strings.Contains(lower, "pm") && strings.Contains(s, ":")
}

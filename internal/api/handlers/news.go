package handlers

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/wonny/market-hours/pkg/httputil"
	"github.com/wonny/market-hours/pkg/logger"
	"github.com/wonny/market-hours/pkg/redis"
)

// newsFeed is one upstream RSS source.
type newsFeed struct {
	Name   string
	URL    string
	Source string
}

// newsFeeds are the trusted financial news sources, aggregated in order.
var newsFeeds = []newsFeed{
	{Name: "Reuters Business", URL: "https://www.reutersagency.com/feed/?taxonomy=best-topics&post_type=best", Source: "Reuters"},
	{Name: "CNBC Markets", URL: "https://www.cnbc.com/id/10000664/device/rss/rss.html", Source: "CNBC"},
	{Name: "MarketWatch", URL: "https://feeds.marketwatch.com/marketwatch/topstories/", Source: "MarketWatch"},
	{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/news/rssindex", Source: "Yahoo Finance"},
}

const (
	articlesPerFeed  = 10
	articlesTotal    = 20
	descriptionLimit = 300
)

// Article is one aggregated news item.
type Article struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	PubDate     string `json:"pubDate"`
	Source      string `json:"source"`
}

// newsResponse is the aggregated payload.
type newsResponse struct {
	Articles    []Article `json:"articles"`
	Sources     []string  `json:"sources"`
	LastUpdated string    `json:"last_updated"`
}

// rssDocument maps the RSS 2.0 elements we consume.
type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// NewsHandler aggregates market news from RSS feeds.
type NewsHandler struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
}

// NewNewsHandler creates a new news handler.
func NewNewsHandler(httpClient *httputil.Client, cache *redis.Cache, log *logger.Logger) *NewsHandler {
	return &NewsHandler{
		httpClient: httpClient,
		cache:      cache,
		logger:     log,
	}
}

const newsCacheKey = "news:latest"

// GetNews returns the latest aggregated market news.
// GET /api/news
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached newsResponse
	if hit, err := h.cache.Get(ctx, newsCacheKey, &cached); err == nil && hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	var all []Article
	sources := make([]string, 0, len(newsFeeds))
	for _, feed := range newsFeeds {
		sources = append(sources, feed.Source)

		articles, err := h.fetchFeed(ctx, feed)
		if err != nil {
			h.logger.WithError(err).WithField("source", feed.Source).Warn("Feed fetch failed")
			continue
		}
		all = append(all, articles...)
	}

	// Newest first across all sources
	sort.Slice(all, func(i, j int) bool {
		return all[i].PubDate > all[j].PubDate
	})
	if len(all) > articlesTotal {
		all = all[:articlesTotal]
	}
	if all == nil {
		all = []Article{}
	}

	resp := newsResponse{
		Articles:    all,
		Sources:     sources,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.cache.Set(ctx, newsCacheKey, resp, redis.TTLNews); err != nil {
		h.logger.WithError(err).Debug("Cache write failed")
	}

	respondJSON(w, http.StatusOK, resp)
}

// fetchFeed downloads and parses one RSS feed.
func (h *NewsHandler) fetchFeed(ctx context.Context, feed newsFeed) ([]Article, error) {
	resp, err := h.httpClient.Get(ctx, feed.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	return parseRSS(body, feed.Source), nil
}

// parseRSS extracts up to articlesPerFeed items from an RSS document.
// Items that fail to parse are skipped, not fatal.
func parseRSS(body []byte, source string) []Article {
	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil
	}

	items := doc.Channel.Items
	if len(items) > articlesPerFeed {
		items = items[:articlesPerFeed]
	}

	articles := make([]Article, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "No title"
		}

		desc := stripHTML(item.Description)
		if len(desc) > descriptionLimit {
			desc = desc[:descriptionLimit]
		}

		articles = append(articles, Article{
			Title:       title,
			Link:        strings.TrimSpace(item.Link),
			Description: desc,
			PubDate:     normalizePubDate(item.PubDate),
			Source:      source,
		})
	}
	return articles
}

var htmlTagPattern = regexp.MustCompile(`<[^<]+?>`)

// stripHTML removes markup from a feed description.
func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

// pubDateLayouts are the timestamp formats seen across RSS feeds.
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// normalizePubDate converts a feed timestamp to UTC RFC 3339 so articles
// from different feeds sort lexicographically. Unparseable timestamps
// fall back to now.
func normalizePubDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

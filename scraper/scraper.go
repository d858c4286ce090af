// Package scraper crawls the paginated catalog and merges listing and
// detail page fields into raw records.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-book-analytics/config"
	"github.com/aluiziolira/go-book-analytics/models"
	"github.com/aluiziolira/go-book-analytics/pipeline"
)

// stepKind is the explicit outcome of one crawl step. Item failures skip,
// page failures terminate the crawl; nothing is retried.
type stepKind int

const (
	stepContinue stepKind = iota
	stepSkip
	stepTerminate
)

type outcome struct {
	kind   stepKind
	reason string
	err    error
}

func continueStep() outcome {
	return outcome{kind: stepContinue}
}

func skipStep(reason string, err error) outcome {
	return outcome{kind: stepSkip, reason: reason, err: err}
}

func terminateStep(reason string, err error) outcome {
	return outcome{kind: stepTerminate, reason: reason, err: err}
}

// listingEntry holds the listing-page-only fields of one catalog entry.
type listingEntry struct {
	title  string
	price  string
	rating string
	link   string
}

// Scraper drives the sequential page loop over the catalog.
type Scraper struct {
	cfg     *config.Config
	list    *colly.Collector
	detail  *colly.Collector
	Metrics *Metrics

	mu        sync.Mutex
	entries   []listingEntry
	detailDoc *goquery.Document
	detailErr error
	lastFetch *FetchError
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	s := &Scraper{
		cfg:     cfg,
		Metrics: NewMetrics(),
	}

	// Colly matches allowed domains against the hostname without the port.
	s.list = newCollector(cfg, parsed.Hostname())
	s.detail = newCollector(cfg, parsed.Hostname())
	s.configureHandlers()

	return s, nil
}

func newCollector(cfg *config.Config, host string) *colly.Collector {
	c := colly.NewCollector(
		colly.AllowedDomains(host),
		colly.UserAgent(cfg.UserAgent),
	)

	c.SetRequestTimeout(cfg.Timeout)
	// The same scraper may serve several crawls (dataset refreshes), so the
	// collectors must not remember visited URLs across runs.
	c.AllowURLRevisit = true
	c.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return c
}

func (s *Scraper) configureHandlers() {
	s.instrument(s.list)
	s.instrument(s.detail)

	s.list.OnHTML("article.product_pod", func(e *colly.HTMLElement) {
		entry := listingEntry{
			title:  e.ChildAttr("h3 a", "title"),
			price:  e.ChildText("p.price_color"),
			rating: ratingToken(e.ChildAttr("p.star-rating", "class")),
		}
		if href := e.ChildAttr("h3 a", "href"); href != "" {
			entry.link = e.Request.AbsoluteURL(href)
		}

		s.mu.Lock()
		s.entries = append(s.entries, entry)
		s.mu.Unlock()
	})

	s.detail.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))

		s.mu.Lock()
		s.detailDoc = doc
		s.detailErr = err
		s.mu.Unlock()
	})
}

func (s *Scraper) instrument(c *colly.Collector) {
	c.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
	})

	c.OnResponse(func(r *colly.Response) {
		if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
			s.Metrics.ObserveDuration(time.Since(start))
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		requestURL := ""
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
			if r.Request != nil && r.Request.URL != nil {
				requestURL = r.Request.URL.String()
			}
		}

		fe := classifyFetch(requestURL, err, statusCode)
		s.Metrics.IncError(fe.Kind)

		s.mu.Lock()
		s.lastFetch = fe
		s.mu.Unlock()
	})
}

// ratingToken extracts the star-count class token ("star-rating Three").
func ratingToken(class string) string {
	fields := strings.Fields(class)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// Run crawls listing pages starting at page 1 until a page fetch fails or a
// page contains zero items, streaming merged records into the pipeline.
// Partial results already streamed are kept on termination.
func (s *Scraper) Run(ctx context.Context, p *pipeline.Pipeline) (*models.CrawlResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &models.CrawlResult{
		StartTime:    time.Now(),
		ErrorsByKind: make(map[string]int),
	}

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			result.StopReason = "canceled"
			break
		}

		out := s.scrapePage(page, p, result)
		if out.kind == stepTerminate {
			result.StopReason = out.reason
			slog.Info("crawl finished",
				slog.Int("page", page),
				slog.String("reason", out.reason),
				slog.Int("items", result.ItemCount),
			)
			break
		}

		slog.Info("scraped page",
			slog.Int("page", page),
			slog.Int("items", result.ItemCount),
			slog.Int("skipped", result.SkippedCount),
		)

		// Politeness delay between successive page fetches. Item fetches
		// within a page are not individually rate limited.
		select {
		case <-ctx.Done():
		case <-time.After(s.cfg.Delay):
		}
	}

	result.EndTime = time.Now()
	return result, nil
}

func (s *Scraper) scrapePage(page int, p *pipeline.Pipeline, result *models.CrawlResult) outcome {
	pageURL := s.cfg.PageURL(page)

	s.mu.Lock()
	s.entries = nil
	s.lastFetch = nil
	s.mu.Unlock()

	if err := s.list.Visit(pageURL); err != nil {
		fe := s.takeFetchError(pageURL, err)
		result.ErrorsByKind[fe.Kind.String()]++
		return terminateStep(fmt.Sprintf("page %d fetch failed: %s", page, fe.Kind), fe)
	}

	s.mu.Lock()
	entries := s.entries
	s.entries = nil
	s.mu.Unlock()

	if len(entries) == 0 {
		return terminateStep(fmt.Sprintf("page %d has no items", page), nil)
	}

	s.Metrics.IncPages()
	result.PageCount++

	for _, entry := range entries {
		out := s.scrapeItem(entry, p)
		if out.kind == stepSkip {
			result.SkippedCount++
			s.Metrics.IncSkipped(out.reason)

			var fe *FetchError
			if errors.As(out.err, &fe) {
				result.ErrorsByKind[fe.Kind.String()]++
			}
			slog.Warn("skipping item",
				slog.String("url", entry.link),
				slog.String("reason", out.reason),
				slog.Any("error", out.err),
			)
			continue
		}

		result.ItemCount++
		s.Metrics.IncItems()
	}

	return continueStep()
}

// scrapeItem fetches and parses one item's detail page, overlays the listing
// fields on the detail attributes, and hands the merged record to the
// pipeline. Any failure skips the item without affecting the page.
func (s *Scraper) scrapeItem(entry listingEntry, p *pipeline.Pipeline) outcome {
	if entry.title == "" || entry.link == "" {
		return skipStep("listing_fields", fmt.Errorf("listing entry missing title or link"))
	}

	detail, err := s.fetchDetail(entry.link)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return skipStep("detail_fetch", err)
		}
		return skipStep("detail_parse", err)
	}

	// Listing fields are written after the detail attributes so they win on
	// any conceptual collision.
	raw := &models.RawBook{
		Attrs:       detail.Attrs,
		Description: detail.Description,
		Category:    detail.Category,
		Title:       entry.title,
		Price:       entry.price,
		Rating:      entry.rating,
		Link:        entry.link,
		ScrapedAt:   time.Now(),
	}

	if err := p.Process(raw); err != nil {
		return skipStep("pipeline", err)
	}

	return continueStep()
}

func (s *Scraper) fetchDetail(link string) (*DetailPage, error) {
	s.mu.Lock()
	s.detailDoc = nil
	s.detailErr = nil
	s.lastFetch = nil
	s.mu.Unlock()

	if err := s.detail.Visit(link); err != nil {
		return nil, s.takeFetchError(link, err)
	}

	s.mu.Lock()
	doc, docErr := s.detailDoc, s.detailErr
	s.mu.Unlock()

	if docErr != nil {
		return nil, fmt.Errorf("parse detail page %s: %w", link, docErr)
	}
	if doc == nil {
		return nil, fmt.Errorf("detail page %s: no parseable response", link)
	}

	return ParseDetailPage(doc)
}

// takeFetchError prefers the classification recorded by the OnError handler
// over the bare error colly returned from Visit.
func (s *Scraper) takeFetchError(requestURL string, err error) *FetchError {
	s.mu.Lock()
	fe := s.lastFetch
	s.lastFetch = nil
	s.mu.Unlock()

	if fe != nil {
		return fe
	}
	return classifyFetch(requestURL, err, 0)
}

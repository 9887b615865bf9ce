package huggingface

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
	"github.com/zbmed-semtec/mlentory/config"
)

// Pre-compiled cleanup regexes.
var (
	scriptRe         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	excessiveLinesRe = regexp.MustCompile(`\n{4,}`)
)

// ScrapeResult is the readable content of one scraped page.
type ScrapeResult struct {
	Title    string
	Markdown string
}

// Scraper fetches model pages and reduces them to readable markdown.
// It backs the enable_scraping path for platforms whose cards or stats
// are not exposed over an API.
type Scraper struct {
	converter *md.Converter
	http      *http.Client
}

// NewScraper creates a page scraper.
func NewScraper() *Scraper {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Scraper{
		converter: converter,
		http:      &http.Client{Timeout: config.HTTPTimeout},
	}
}

// Scrape fetches pageURL and converts its main content to markdown.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (*ScrapeResult, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid scrape URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build scrape request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape returned status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to extract readable content: %w", err)
	}

	cleaned := scriptRe.ReplaceAllString(article.Content, "")
	cleaned = styleRe.ReplaceAllString(cleaned, "")

	markdown, err := s.converter.ConvertString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to convert content to markdown: %w", err)
	}
	markdown = strings.TrimSpace(excessiveLinesRe.ReplaceAllString(markdown, "\n\n\n"))

	return &ScrapeResult{Title: article.Title, Markdown: markdown}, nil
}

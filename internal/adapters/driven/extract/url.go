package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
)

// Ensure URL implements the interface.
var _ driven.TextExtractor = (*URL)(nil)

// DefaultFetchTimeout bounds a page fetch.
const DefaultFetchTimeout = 30 * time.Second

// chrome holds elements stripped before reading page text: scripts,
// styling, and navigation furniture rather than readable content.
const chrome = "script, style, noscript, nav, header, footer, aside, form, iframe"

// URL fetches a web page and extracts its readable text.
type URL struct {
	client *http.Client
}

// NewURL creates a web page extractor with the default fetch timeout.
func NewURL() *URL {
	return &URL{
		client: &http.Client{Timeout: DefaultFetchTimeout},
	}
}

// Kind identifies the source kind this extractor produces.
func (e *URL) Kind() domain.SourceKind {
	return domain.SourceKindURL
}

// Extract fetches the page and returns its readable body text with the
// page title as the display name. The title falls back to the URL when
// the page has none.
func (e *URL) Extract(ctx context.Context, url string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", "", &domain.ExtractionError{Ref: url, Err: err}
	}
	req.Header.Set("User-Agent", "notebook-cli/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", "", &domain.ExtractionError{Ref: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", &domain.ExtractionError{
			Ref: url,
			Err: fmt.Errorf("server returned status %d", resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", &domain.ExtractionError{Ref: url, Err: err}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = url
	}

	doc.Find(chrome).Remove()

	body := doc.Find("body")
	var parts []string
	body.Find("h1, h2, h3, h4, h5, h6, p, li, td, blockquote, pre").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	text := strings.Join(parts, "\n")
	if text == "" {
		// Pages without block structure still get their raw body text.
		text = strings.TrimSpace(body.Text())
	}
	if text == "" {
		return "", "", &domain.ExtractionError{
			Ref: url,
			Err: fmt.Errorf("page has no readable text"),
		}
	}

	return text, title, nil
}

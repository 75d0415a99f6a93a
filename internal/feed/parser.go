// Package feed reads RSS and Atom feeds and selects the items relevant to a
// summary window.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/artcava/XPoster/internal/domain"
)

// httpPrefix is the scheme prefix used to determine if a GUID is a valid URL.
const httpPrefix = "http"

// ParseFeed parses an RSS or Atom feed body into feed items with plain-text
// content. Items without a publish or update date are skipped because they
// cannot be placed in a window.
func ParseFeed(ctx context.Context, body string) ([]domain.FeedItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	parsed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.FeedItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		published := publishedAt(entry)
		if published.IsZero() {
			continue
		}

		items = append(items, domain.FeedItem{
			Title:       strings.TrimSpace(entry.Title),
			Content:     itemText(entry),
			Link:        extractLink(entry),
			PublishDate: published.UTC(),
		})
	}

	return items, nil
}

// extractLink prefers the explicit Link field, falling back to the GUID if
// it looks like an HTTP URL.
func extractLink(entry *gofeed.Item) string {
	if entry.Link != "" {
		return entry.Link
	}
	if strings.HasPrefix(entry.GUID, httpPrefix) {
		return entry.GUID
	}
	return ""
}

func publishedAt(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}
	return time.Time{}
}

// itemText prefers the description over the full content, which on most
// news feeds repeats the article with markup.
func itemText(entry *gofeed.Item) string {
	if text := StripHTML(entry.Description); text != "" {
		return text
	}
	return StripHTML(entry.Content)
}

// StripHTML returns the visible text of an HTML fragment with whitespace
// collapsed to single spaces.
func StripHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc.Find("script, style").Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}

package scrape

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/matheuskafuri/epaper/internal/archive"
	"github.com/matheuskafuri/epaper/internal/config"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

// FeedSource collects a section from an RSS or Atom feed instead of the
// edition page.
type FeedSource struct {
	parser *gofeed.Parser
	policy *bluemonday.Policy
}

func NewFeedSource(timeout time.Duration) *FeedSource {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	p.UserAgent = userAgent
	return &FeedSource{parser: p, policy: bluemonday.StrictPolicy()}
}

func (f *FeedSource) Fetch(ctx context.Context, section config.Section, date string) ([]archive.Story, error) {
	feed, err := f.parser.ParseURLWithContext(section.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s feed: %w", section.Name, err)
	}

	stories := make([]archive.Story, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		desc := item.Description
		if desc == "" {
			desc = item.Content
		}
		stories = append(stories, archive.Story{
			Title:    cleanText(item.Title),
			URL:      item.Link,
			ImageURL: itemImage(item),
			Summary:  f.plainText(desc),
			Author:   itemAuthor(item),
			Section:  section.Name,
			Date:     date,
		})
	}
	return stories, nil
}

// plainText strips all markup and decodes the entities the sanitiser leaves.
func (f *FeedSource) plainText(s string) string {
	return cleanText(html.UnescapeString(f.policy.Sanitize(s)))
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

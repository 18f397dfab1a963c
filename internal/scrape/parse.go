package scrape

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/matheuskafuri/epaper/internal/archive"
)

// ErrMissingPage marks a section page the newspaper never published.
var ErrMissingPage = errors.New("section page not found")

// minPageSize is the smallest body treated as a real edition page.
const minPageSize = 5000

// storySelectors are tried in order; the first that yields stories wins.
var storySelectors = []string{
	`article.story`,
	`article[class*="story"]`,
	`.story.box`,
	`.story`,
	`article`,
	`.box.story`,
	`.story-list article`,
	`div[class*="story"]`,
	`.article-box`,
	`[data-story-id]`,
}

const (
	titleSelector   = `h2 a, .story__title a, h3 a, .story__link, a.story__link, [class*="title"] a, h2, h3`
	summarySelector = `.story__excerpt, .story__text, .excerpt, [class*="excerpt"], p, .description`
	authorSelector  = `.story__byline, .byline, [class*="author"]`
)

var lazyImageAttrs = []string{"data-src", "data-original", "data-lazy-src"}

// IsMissingPage reports whether html is a "not found" or stub page.
func IsMissingPage(html string) bool {
	return strings.Contains(html, "Page not found") || len(html) < minPageSize
}

// SiteOrigin reduces a section base URL such as
// https://www.dawn.com/newspaper to https://www.dawn.com.
func SiteOrigin(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q is not absolute", baseURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// ParseSection extracts the stories of one section page. Relative links and
// images are resolved against origin.
func ParseSection(html, section, date, origin string) ([]archive.Story, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing %s page: %w", section, err)
	}

	stories := []archive.Story{}
	for _, selector := range storySelectors {
		seen := make(map[string]bool)
		doc.Find(selector).Each(func(_ int, el *goquery.Selection) {
			s, ok := parseStory(el, origin)
			if !ok || seen[s.Title] {
				return
			}
			seen[s.Title] = true
			s.Section = section
			s.Date = date
			stories = append(stories, s)
		})
		if len(stories) > 0 {
			break
		}
	}
	return stories, nil
}

func parseStory(el *goquery.Selection, origin string) (archive.Story, bool) {
	titleEl := el.Find(titleSelector).First()
	if titleEl.Length() == 0 {
		return archive.Story{}, false
	}
	title := cleanText(titleEl.Text())

	var href string
	if goquery.NodeName(titleEl) == "a" {
		href, _ = titleEl.Attr("href")
	}
	if href == "" {
		href, _ = el.Find("a").First().Attr("href")
	}
	if title == "" || href == "" {
		return archive.Story{}, false
	}

	s := archive.Story{
		Title:   title,
		URL:     absolute(href, origin),
		Summary: cleanText(el.Find(summarySelector).First().Text()),
		Author:  cleanText(el.Find(authorSelector).First().Text()),
	}
	if img := resolveImage(el); img != "" {
		s.ImageURL = absolute(img, origin)
	}
	return s, true
}

// resolveImage prefers lazy-load attributes, then srcset, then the first
// <picture> source, then plain src.
func resolveImage(el *goquery.Selection) string {
	img := el.Find("img").First()
	if img.Length() > 0 {
		for _, attr := range lazyImageAttrs {
			if v, ok := img.Attr(attr); ok && v != "" && !isDataURL(v) {
				return v
			}
		}
		if v, ok := img.Attr("srcset"); ok {
			if first := firstSrcset(v); first != "" && !isDataURL(first) {
				return first
			}
		}
	}

	if v, ok := el.Find("picture source").First().Attr("srcset"); ok {
		if first := firstSrcset(v); first != "" && !isDataURL(first) {
			return first
		}
	}

	if v, ok := img.Attr("src"); ok && v != "" && !isDataURL(v) {
		return v
	}
	return ""
}

func firstSrcset(srcset string) string {
	first, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func isDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

func absolute(ref, origin string) string {
	switch {
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "http"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return origin + ref
	default:
		return origin + "/" + ref
	}
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

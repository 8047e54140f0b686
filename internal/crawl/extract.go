package crawl

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is one hyperlink discovered on a page, with its href already resolved
// to an absolute URL. Resolution happens before classification or visited-set
// membership tests; relative hrefs would make both unsound.
type Link struct {
	URL  string
	Text string
}

// dataURLAttrs are element attributes some portals stash download URLs in.
var dataURLAttrs = []string{"data-download", "data-href", "data-url"}

// scriptURLPatterns pull artifact URLs out of inline JavaScript.
var scriptURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)["']url["']\s*:\s*["']([^"']+\.(?:ipynb|zip|tar|gz|nc))["']`),
	regexp.MustCompile(`(?i)href\s*=\s*["']([^"']+\.(?:ipynb|zip|tar|gz|nc))["']`),
}

// ExtractLinks parses htmlContent and returns every discovered link resolved
// against baseURL: anchor hrefs, data-* download attributes, and URLs
// embedded in inline scripts. Duplicate URLs are collapsed, first text wins.
func ExtractLinks(htmlContent string, baseURL string) ([]Link, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse base URL",
			Cause:   err,
		}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &LinkExtractionError{
			Message: fmt.Sprintf("invalid base URL: %s (must have scheme and host)", baseURL),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	seen := make(map[string]bool)
	links := make([]Link, 0)

	add := func(href, text string) {
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}

		absolute := base.ResolveReference(ref)
		if absolute.Scheme != "http" && absolute.Scheme != "https" {
			return
		}
		absolute.Fragment = ""
		urlString := absolute.String()

		if !seen[urlString] {
			seen[urlString] = true
			links = append(links, Link{URL: urlString, Text: text})
		}
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		add(href, strings.TrimSpace(s.Text()))
	})

	for _, attr := range dataURLAttrs {
		doc.Find(fmt.Sprintf("[%s]", attr)).Each(func(_ int, s *goquery.Selection) {
			if value, exists := s.Attr(attr); exists {
				add(value, strings.TrimSpace(s.Text()))
			}
		})
	}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		for _, pattern := range scriptURLPatterns {
			for _, match := range pattern.FindAllStringSubmatch(text, -1) {
				add(match[1], "script link")
			}
		}
	})

	return links, nil
}

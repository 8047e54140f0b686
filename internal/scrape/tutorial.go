package scrape

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Tutorial is one tutorial entry discovered on the portal's listing page.
type Tutorial struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Folder string `json:"folder"`
}

// tutorialPattern matches hrefs that look like tutorial or notebook pages.
var tutorialPattern = regexp.MustCompile(`(?i)tutorial|notebook|\.ipynb`)

// cardClassPattern matches container elements the portal renders tutorial
// cards into.
var cardClassPattern = regexp.MustCompile(`(?i)tutorial|card|item|resource`)

// ExtractTutorials pulls tutorial entries out of the listing page HTML.
// Several element patterns are tried because the portal has changed its
// markup over time; duplicates by URL are collapsed.
func ExtractTutorials(htmlContent string, baseURL string) ([]Tutorial, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	seen := make(map[string]bool)
	var tutorials []Tutorial
	nextID := 1

	add := func(href, title string) {
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		absolute := base.ResolveReference(ref).String()
		if seen[absolute] {
			return
		}
		seen[absolute] = true

		title = SanitizeFilename(truncateTitle(title))
		if title == "" {
			title = fmt.Sprintf("Tutorial_%d", nextID)
		}

		tutorials = append(tutorials, Tutorial{
			ID:     nextID,
			Title:  title,
			URL:    absolute,
			Folder: fmt.Sprintf("%02d_%s", nextID, title),
		})
		nextID++
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if tutorialPattern.MatchString(href) {
			add(href, s.Text())
		}
	})

	doc.Find("div, li").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		if !cardClassPattern.MatchString(class) {
			return
		}
		anchor := s.Find("a[href]").First()
		if href, exists := anchor.Attr("href"); exists {
			add(href, s.Text())
		}
	})

	return tutorials, nil
}

func truncateTitle(title string) string {
	title = strings.TrimSpace(title)
	if len(title) > 100 {
		title = title[:100]
	}
	return title
}

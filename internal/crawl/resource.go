package crawl

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// SourceType labels where a resource is hosted.
type SourceType string

const (
	SourceGitHub     SourceType = "github"
	SourceGitLab     SourceType = "gitlab"
	SourceCopernicus SourceType = "copernicus"
	SourceMercator   SourceType = "mercator"
	SourceZenodo     SourceType = "zenodo"
	SourceOther      SourceType = "other"
)

// Resource is one downloadable artifact discovered during a crawl.
type Resource struct {
	URL        string     `json:"url"`
	Filename   string     `json:"filename"`
	Extension  string     `json:"extension"`
	LinkText   string     `json:"link_text,omitempty"`
	Source     SourceType `json:"source"`
	SourcePage string     `json:"source_page"`
	Rule       string     `json:"rule,omitempty"`
}

// ClassifySource labels the hosting origin of a URL.
func ClassifySource(urlStr string) SourceType {
	switch {
	case strings.Contains(urlStr, "github"):
		return SourceGitHub
	case strings.Contains(urlStr, "gitlab.com"):
		return SourceGitLab
	case strings.Contains(urlStr, "copernicus"):
		return SourceCopernicus
	case strings.Contains(urlStr, "mercator"):
		return SourceMercator
	case strings.Contains(urlStr, "zenodo.org"):
		return SourceZenodo
	default:
		return SourceOther
	}
}

// NormalizeShareURL rewrites known share links into direct download links.
// Mercator Ocean atlas share pages serve the artifact at <share>/download.
func NormalizeShareURL(urlStr string) string {
	if mercatorSharePattern.MatchString(urlStr) && !strings.HasSuffix(urlStr, "/download") {
		return strings.TrimSuffix(urlStr, "/") + "/download"
	}
	return urlStr
}

// FilenameFromURL derives a usable filename from the locator's path. When the
// path yields nothing usable, a short hash of the URL stands in so every
// resource still gets a stable, distinct name.
func FilenameFromURL(urlStr string) string {
	name := ""
	if parsed, err := url.Parse(urlStr); err == nil {
		path := parsed.Path
		if unescaped, err := url.PathUnescape(path); err == nil {
			path = unescaped
		}
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			name = path[idx+1:]
		} else {
			name = path
		}
	}

	if len(name) < 3 {
		sum := sha256.Sum256([]byte(urlStr))
		name = hex.EncodeToString(sum[:])[:8]
	}
	return name
}

// newResource builds a Resource for an absolute link found on sourcePage.
// Extension may be empty; the crawler probes ambiguous cases afterwards.
func newResource(link Link, rule string, sourcePage string) Resource {
	normalized := NormalizeShareURL(link.URL)
	return Resource{
		URL:        normalized,
		Filename:   FilenameFromURL(normalized),
		Extension:  HasTargetExtension(normalized),
		LinkText:   truncate(link.Text, 100),
		Source:     ClassifySource(normalized),
		SourcePage: sourcePage,
		Rule:       rule,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// githubMaxDepth bounds contents-API recursion inside one repository.
const githubMaxDepth = 2

// relevantDirNames selects which repository directories are worth walking.
var relevantDirNames = []string{
	"notebooks", "examples", "tutorials", "demos",
	"training", "exercises", "data", "use-cases",
}

var githubRepoPattern = regexp.MustCompile(`https?://github\.com/([\w\-]+)/([\w\-.]+)`)

// githubItem is one entry returned by the GitHub contents API.
type githubItem struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
}

// GitHubCrawler discovers notebooks and archives in repositories via the
// contents API, which is both faster and more reliable than scraping the
// repository HTML.
type GitHubCrawler struct {
	fetcher PageFetcher
}

// NewGitHubCrawler creates a GitHubCrawler using fetcher for API requests.
func NewGitHubCrawler(fetcher PageFetcher) *GitHubCrawler {
	return &GitHubCrawler{fetcher: fetcher}
}

// ExtractRepoLinks returns the distinct "owner/name" repositories referenced
// anywhere in htmlContent.
func ExtractRepoLinks(htmlContent string) []string {
	seen := make(map[string]bool)
	var repos []string

	for _, match := range githubRepoPattern.FindAllStringSubmatch(htmlContent, -1) {
		repo := match[1] + "/" + strings.TrimSuffix(match[2], ".git")
		if !seen[repo] {
			seen[repo] = true
			repos = append(repos, repo)
		}
	}
	return repos
}

// RepoResources walks a repository's contents to depth 2 and returns its
// notebook and archive files. API failures on one directory skip that
// directory only.
func (g *GitHubCrawler) RepoResources(ctx context.Context, repo string) ([]Resource, error) {
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/contents", repo)
	var resources []Resource
	g.walk(ctx, apiURL, repo, 0, &resources)
	return resources, nil
}

func (g *GitHubCrawler) walk(ctx context.Context, apiURL string, repo string, depth int, resources *[]Resource) {
	if depth > githubMaxDepth || ctx.Err() != nil {
		return
	}

	page, err := g.fetcher.Page(ctx, apiURL)
	if err != nil {
		logrus.WithField("api_url", apiURL).WithError(err).Debug("contents API request failed")
		return
	}

	var items []githubItem
	if err := json.Unmarshal([]byte(page.HTML), &items); err != nil {
		logrus.WithField("api_url", apiURL).WithError(err).Debug("contents API response not a listing")
		return
	}

	for _, item := range items {
		switch item.Type {
		case "file":
			ext := HasTargetExtension(item.Name)
			if ext == "" || item.DownloadURL == "" {
				continue
			}
			*resources = append(*resources, Resource{
				URL:        item.DownloadURL,
				Filename:   item.Name,
				Extension:  ext,
				LinkText:   item.Path,
				Source:     SourceGitHub,
				SourcePage: "github.com/" + repo,
				Rule:       "github-contents",
			})

		case "dir":
			if depth >= githubMaxDepth || !isRelevantDir(item.Name) {
				continue
			}
			if item.URL != "" {
				g.walk(ctx, item.URL, repo, depth+1, resources)
			}
		}
	}
}

func isRelevantDir(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range relevantDirNames {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// RawURL converts a GitHub blob URL to its raw download form.
func RawURL(blobURL string) string {
	raw := strings.Replace(blobURL, "github.com", "raw.githubusercontent.com", 1)
	return strings.Replace(raw, "/blob/", "/", 1)
}

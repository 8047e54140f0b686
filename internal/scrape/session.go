// Package scrape orchestrates a full run: crawl the portal, discover
// resources, and hand them to the parallel downloader.
package scrape

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/marinetools/copernicus-scraper/internal/cache"
	"github.com/marinetools/copernicus-scraper/internal/crawl"
	"github.com/marinetools/copernicus-scraper/internal/download"
	"github.com/marinetools/copernicus-scraper/internal/fetch"
)

// DefaultBaseURL is the tutorial listing page of the marine data portal.
const DefaultBaseURL = "https://marine.copernicus.eu/services/user-learning-services/tutorials"

// maxGitHubRepos caps how many referenced repositories are walked per run.
const maxGitHubRepos = 5

// Options configures a scrape session.
type Options struct {
	BaseURL      string
	OutputDir    string
	Workers      int
	UseCache     bool
	CacheExpiry  time.Duration
	MaxDepth     int
	Retries      int
	UseBrowser   bool
	FollowGitHub bool
}

// Session runs one scrape end to end. It owns the cache manager, the crawler,
// and the downloader for the duration of the run.
type Session struct {
	id         string
	opts       Options
	client     *fetch.Client
	cache      *cache.Manager
	crawler    *crawl.Crawler
	github     *crawl.GitHubCrawler
	downloader *download.Downloader
}

// browserFetcher routes page fetches through the browser fallback.
type browserFetcher struct {
	client *fetch.Client
}

func (b *browserFetcher) Page(ctx context.Context, url string) (*fetch.PageResult, error) {
	return b.client.PageWithFallback(ctx, url, true)
}

// NewSession validates the options and builds the pipeline. An unusable
// output directory is a fatal configuration error, surfaced here before any
// network work begins.
func NewSession(opts Options) (*Session, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "tutorials"
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("output directory %s is not usable: %w", opts.OutputDir, err)
	}

	client := fetch.NewClient(nil)

	var cacheManager *cache.Manager
	if opts.UseCache {
		var err error
		cacheManager, err = cache.NewManager(filepath.Join(opts.OutputDir, ".cache"), opts.CacheExpiry)
		if err != nil {
			return nil, err
		}
	}

	var pageFetcher crawl.PageFetcher = client
	if opts.UseBrowser {
		pageFetcher = &browserFetcher{client: client}
	}

	return &Session{
		id:      uuid.New().String(),
		opts:    opts,
		client:  client,
		cache:   cacheManager,
		crawler: crawl.New(pageFetcher, client, crawl.Options{MaxDepth: opts.MaxDepth}),
		github:  crawl.NewGitHubCrawler(client),
		downloader: download.New(client, cacheManager, download.Options{
			Workers: opts.Workers,
			Retries: opts.Retries,
		}),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Run executes the session and returns the run metadata. Individual tutorial
// failures are recorded, not fatal; Run only errors when the listing page
// itself is unreachable.
func (s *Session) Run(ctx context.Context) (*Metadata, error) {
	log := logrus.WithField("session", s.id)
	log.WithField("base_url", s.opts.BaseURL).Info("scrape session starting")

	if s.cache != nil {
		s.cache.ClearExpired()
	}

	page, err := s.client.PageWithFallback(ctx, s.opts.BaseURL, s.opts.UseBrowser)
	if err != nil {
		return nil, &crawl.Error{Message: "failed to fetch listing page", Cause: err}
	}

	tutorials, err := ExtractTutorials(page.HTML, s.opts.BaseURL)
	if err != nil {
		return nil, err
	}
	log.WithField("count", len(tutorials)).Info("tutorials discovered")

	metadata := &Metadata{
		SessionID:    s.id,
		ScrapeDate:   time.Now().UTC(),
		BaseURL:      s.opts.BaseURL,
		CacheEnabled: s.cache != nil,
	}

	for _, tutorial := range tutorials {
		if ctx.Err() != nil {
			return metadata, ctx.Err()
		}
		report := s.processTutorial(ctx, tutorial)
		metadata.Tutorials = append(metadata.Tutorials, report)
	}

	if s.opts.FollowGitHub {
		report := s.processGitHub(ctx, page.HTML)
		if report != nil {
			metadata.Tutorials = append(metadata.Tutorials, *report)
		}
	}

	if err := metadata.Write(s.opts.OutputDir); err != nil {
		log.WithError(err).Warn("failed to write metadata")
	}

	return metadata, nil
}

// processTutorial crawls one tutorial's pages and downloads its resources.
func (s *Session) processTutorial(ctx context.Context, tutorial Tutorial) TutorialReport {
	log := logrus.WithField("session", s.id).WithField("tutorial", tutorial.Title)

	resources, err := s.crawler.Crawl(ctx, tutorial.URL)
	if err != nil {
		log.WithError(err).Warn("crawl failed")
		return newTutorialReport(tutorial, nil, 0)
	}

	tasks, skipped := s.buildTasks(tutorial.Folder, resources)
	if len(tasks) == 0 {
		return newTutorialReport(tutorial, nil, skipped)
	}

	log.WithField("tasks", len(tasks)).Info("downloading resources")
	results := s.downloader.Batch(ctx, tasks, s.cache != nil)
	return newTutorialReport(tutorial, results, skipped)
}

// processGitHub walks repositories referenced on the listing page and
// downloads any notebooks or archives they carry.
func (s *Session) processGitHub(ctx context.Context, listingHTML string) *TutorialReport {
	repos := crawl.ExtractRepoLinks(listingHTML)
	if len(repos) == 0 {
		return nil
	}
	if len(repos) > maxGitHubRepos {
		repos = repos[:maxGitHubRepos]
	}

	var resources []crawl.Resource
	for _, repo := range repos {
		repoResources, err := s.github.RepoResources(ctx, repo)
		if err != nil {
			continue
		}
		resources = append(resources, repoResources...)
	}
	if len(resources) == 0 {
		return nil
	}

	tutorial := Tutorial{
		ID:     len(resources),
		Title:  "GitHub_Resources",
		URL:    "https://github.com",
		Folder: "github_resources",
	}
	tasks, skipped := s.buildTasks(tutorial.Folder, resources)
	if len(tasks) == 0 {
		report := newTutorialReport(tutorial, nil, skipped)
		return &report
	}

	results := s.downloader.Batch(ctx, tasks, s.cache != nil)
	report := newTutorialReport(tutorial, results, skipped)
	return &report
}

// buildTasks turns resources into download tasks. Resources whose extension
// never resolved are dropped, and destinations that already hold a non-empty
// file are skipped rather than re-downloaded.
func (s *Session) buildTasks(folder string, resources []crawl.Resource) ([]download.Task, int) {
	dir := filepath.Join(s.opts.OutputDir, folder)
	var tasks []download.Task
	skipped := 0

	for _, resource := range resources {
		if resource.Extension == "" {
			skipped++
			continue
		}

		name := SanitizeFilename(resource.Filename)
		if name == "" {
			skipped++
			continue
		}
		dest := filepath.Join(dir, name)

		if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
			logrus.WithField("file", name).Debug("skipping existing file")
			skipped++
			continue
		}

		tasks = append(tasks, download.Task{URL: resource.URL, Dest: dest})
	}

	return tasks, skipped
}

package crawl

import (
	"context"
	"net/url"
	"strings"

	lrucache "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/marinetools/copernicus-scraper/internal/fetch"
)

// DefaultMaxDepth bounds how far the crawler descends from the root page.
const DefaultMaxDepth = 3

// DefaultLinksPerPage caps how many traversable links are followed from any
// single page. The visited set bounds revisits, not breadth; this does.
const DefaultLinksPerPage = 20

// probeCacheSize bounds the HEAD-probe memoization cache. The same artifact
// URL tends to appear on many pages of a portal.
const probeCacheSize = 256

// PageFetcher retrieves page HTML. Satisfied by fetch.Client.
type PageFetcher interface {
	Page(ctx context.Context, url string) (*fetch.PageResult, error)
}

// Prober issues HEAD metadata probes. Satisfied by fetch.Client.
type Prober interface {
	Probe(ctx context.Context, url string) (*fetch.ProbeResult, error)
}

// Options configures a Crawler.
type Options struct {
	MaxDepth     int
	LinksPerPage int
	Rules        []Rule
}

// Crawler walks same-origin pages from a root locator and accumulates
// downloadable resources. One Crawler may run many sessions; each session
// owns its own visited set and work stack.
type Crawler struct {
	fetcher      PageFetcher
	prober       Prober
	classifier   *Classifier
	maxDepth     int
	linksPerPage int
	probeCache   *lrucache.Cache
}

// New creates a Crawler. The prober may be nil, which disables extension
// disambiguation by HEAD probe. Zero option fields use defaults.
func New(fetcher PageFetcher, prober Prober, opts Options) *Crawler {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.LinksPerPage <= 0 {
		opts.LinksPerPage = DefaultLinksPerPage
	}
	if opts.Rules == nil {
		opts.Rules = DefaultRules()
	}

	// Size is fixed, so this cannot fail.
	probeCache, _ := lrucache.New(probeCacheSize)

	return &Crawler{
		fetcher:      fetcher,
		prober:       prober,
		classifier:   NewClassifier(opts.Rules),
		maxDepth:     opts.MaxDepth,
		linksPerPage: opts.LinksPerPage,
		probeCache:   probeCache,
	}
}

type workItem struct {
	url   string
	depth int
}

// Crawl traverses pages starting at rootURL, depth-first via an explicit work
// stack, and returns every resource discovered. Traversal stays on the root's
// host. A transport or parse failure on one page yields zero resources from
// that page and the traversal continues.
func (c *Crawler) Crawl(ctx context.Context, rootURL string) ([]Resource, error) {
	root, err := url.Parse(rootURL)
	if err != nil || root.Scheme == "" || root.Host == "" {
		return nil, &Error{Message: "invalid root URL: " + rootURL, Cause: err}
	}

	visited := NewVisitedSet()
	seenResources := make(map[string]bool)
	var resources []Resource

	stack := []workItem{{url: rootURL, depth: 0}}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return resources, ctx.Err()
		}

		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visited.MarkIfNew(item.url) {
			continue
		}

		log := logrus.WithField("url", item.url).WithField("depth", item.depth)
		log.Info("crawling page")

		page, err := c.fetcher.Page(ctx, item.url)
		if err != nil {
			log.WithError(err).Warn("page fetch failed, skipping")
			continue
		}

		links, err := ExtractLinks(page.HTML, item.url)
		if err != nil {
			log.WithError(err).Warn("link extraction failed, skipping")
			continue
		}

		followed := 0
		for _, link := range links {
			class, rule := c.classifier.Classify(link)

			switch class {
			case ClassResource:
				resource := newResource(link, rule, item.url)
				if resource.Extension == "" {
					c.disambiguate(ctx, &resource)
				}
				if !seenResources[resource.URL] {
					seenResources[resource.URL] = true
					resources = append(resources, resource)
					log.WithField("file", resource.Filename).Debug("resource found")
				}

			case ClassTraversable:
				if item.depth >= c.maxDepth || followed >= c.linksPerPage {
					continue
				}
				linkURL, err := url.Parse(link.URL)
				if err != nil || linkURL.Host != root.Host {
					continue
				}
				if visited.Seen(link.URL) {
					continue
				}
				stack = append(stack, workItem{url: link.URL, depth: item.depth + 1})
				followed++
			}
		}
	}

	logrus.WithField("pages", visited.Len()).
		WithField("resources", len(resources)).
		Info("crawl session complete")
	return resources, nil
}

// disambiguate fills in a missing extension via a HEAD probe. Probe failures
// are ignored; the resource keeps its unknown extension and downstream stages
// are free to drop it.
func (c *Crawler) disambiguate(ctx context.Context, resource *Resource) {
	if c.prober == nil {
		return
	}

	if cached, ok := c.probeCache.Get(resource.URL); ok {
		if probe, ok := cached.(*fetch.ProbeResult); ok {
			applyProbe(resource, probe)
		}
		return
	}

	probe, err := c.prober.Probe(ctx, resource.URL)
	if err != nil {
		logrus.WithField("url", resource.URL).WithError(err).Debug("probe failed")
		return
	}

	c.probeCache.Add(resource.URL, probe)
	applyProbe(resource, probe)
}

func applyProbe(resource *Resource, probe *fetch.ProbeResult) {
	if probe.Filename != "" {
		resource.Filename = probe.Filename
		if ext := HasTargetExtension(probe.Filename); ext != "" {
			resource.Extension = ext
			return
		}
	}

	contentType := strings.ToLower(probe.ContentType)
	switch {
	case strings.Contains(contentType, "zip"):
		resource.Extension = ".zip"
	case strings.Contains(contentType, "notebook"), strings.Contains(contentType, "json"):
		resource.Extension = ".ipynb"
	case strings.Contains(contentType, "netcdf"):
		resource.Extension = ".nc"
	}
}

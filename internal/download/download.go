// Package download fans a batch of file downloads out across a bounded worker
// pool, consulting the cache before each fetch and registering results after.
package download

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/marinetools/copernicus-scraper/internal/cache"
)

// DefaultWorkers is the default worker pool width.
const DefaultWorkers = 5

// DefaultRetries is the default number of fetch attempts per task.
const DefaultRetries = 3

// DefaultBackoff is the base delay for exponential retry backoff.
const DefaultBackoff = time.Second

// Task is one (URL, destination) pair produced by a crawler.
type Task struct {
	URL  string
	Dest string
}

// Result is the outcome of one task. Exactly one Result is produced per
// submitted Task, in completion order.
type Result struct {
	URL       string
	Dest      string
	Success   bool
	FromCache bool
	Size      int64
	Err       string
	// CacheErr records a best-effort cache write that failed. The download
	// itself is still a success.
	CacheErr string
}

// FileFetcher performs a single network retrieval to a destination path.
// fetch.Client satisfies this; tests substitute stubs.
type FileFetcher interface {
	File(ctx context.Context, url string, dest string) (int64, error)
}

// Options configures a Downloader.
type Options struct {
	Workers int
	Retries int
	Backoff time.Duration
}

// Downloader runs download batches. The cache manager may be nil, in which
// case every task goes to the network.
type Downloader struct {
	fetcher FileFetcher
	cache   *cache.Manager
	workers int
	retries int
	backoff time.Duration
}

// New creates a Downloader. Zero option fields use defaults.
func New(fetcher FileFetcher, cacheManager *cache.Manager, opts Options) *Downloader {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	return &Downloader{
		fetcher: fetcher,
		cache:   cacheManager,
		workers: opts.Workers,
		retries: opts.Retries,
		backoff: opts.Backoff,
	}
}

// Batch downloads every task, at most `workers` at a time. One task's failure
// never aborts the batch; failed tasks carry their error in the Result. The
// context cancels outstanding fetches, but a Result is still recorded for
// every task so callers always get len(tasks) results back.
func (d *Downloader) Batch(ctx context.Context, tasks []Task, useCache bool) []Result {
	results := make([]Result, 0, len(tasks))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for _, task := range tasks {
		task := task
		g.Go(func() error {
			result := d.one(ctx, task, useCache)

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; failures live in the results.
	_ = g.Wait()
	return results
}

// one runs a single task: cache short-circuit, then fetch with retry, then
// best-effort cache registration.
func (d *Downloader) one(ctx context.Context, task Task, useCache bool) Result {
	result := Result{URL: task.URL, Dest: task.Dest}

	log := logrus.WithField("url", task.URL)

	if useCache && d.cache != nil {
		size, hit, err := d.cache.CopyTo(task.URL, task.Dest)
		if hit {
			if err == nil {
				log.WithField("bytes", size).Debug("served from cache")
				result.Success = true
				result.FromCache = true
				result.Size = size
				return result
			}
			// A hit that fails to materialize falls through to the network.
			log.WithError(err).Warn("failed to copy cached file, refetching")
		}
	}

	size, err := d.fetchWithRetry(ctx, task)
	if err != nil {
		log.WithError(err).Warn("download failed")
		result.Err = err.Error()
		return result
	}

	result.Success = true
	result.Size = size

	if useCache && d.cache != nil {
		if _, err := d.cache.Add(task.URL, task.Dest); err != nil {
			// The artifact is already on disk; record the cache failure
			// without invalidating the download.
			log.WithError(err).Warn("failed to cache downloaded file")
			result.CacheErr = err.Error()
		}
	}

	return result
}

func (d *Downloader) fetchWithRetry(ctx context.Context, task Task) (int64, error) {
	var lastErr error
	delay := d.backoff

	for attempt := 1; attempt <= d.retries; attempt++ {
		size, err := d.fetcher.File(ctx, task.URL, task.Dest)
		if err == nil {
			return size, nil
		}
		lastErr = err

		if attempt == d.retries || ctx.Err() != nil {
			break
		}

		logrus.WithField("url", task.URL).
			WithField("attempt", attempt).
			WithError(err).
			Debug("retrying download")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
		delay *= 2
	}

	// The fetcher cleans up its own partial writes, but not every
	// implementation is that careful. Never leave a truncated file at dest.
	if _, err := os.Stat(task.Dest); err == nil {
		_ = os.Remove(task.Dest)
	}

	return 0, lastErr
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marinetools/copernicus-scraper/internal/config"
	"github.com/marinetools/copernicus-scraper/internal/scrape"
)

var scrapeCommand = &cobra.Command{
	Use:   "scrape",
	Short: "Crawl the tutorial portal and download discovered resources",
	Long: `Crawls the tutorial listing page, follows same-origin tutorial pages up to
the configured depth, classifies discovered links, and downloads notebooks and
data archives through the cached parallel downloader.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runScrapeCmd,
}

var (
	scrapeConfigPath   string
	scrapeURL          string
	scrapeOutput       string
	scrapeWorkers      int
	scrapeDepth        int
	scrapeRetries      int
	scrapeNoCache      bool
	scrapeUseBrowser   bool
	scrapeFollowGitHub bool
	scrapeVerbose      bool
)

func init() {
	scrapeCommand.Flags().StringVar(&scrapeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	scrapeCommand.Flags().StringVarP(&scrapeURL, "url", "u", "", "Tutorial listing page URL")
	scrapeCommand.Flags().StringVarP(&scrapeOutput, "output", "o", "", "Output directory for downloads")
	scrapeCommand.Flags().IntVarP(&scrapeWorkers, "workers", "w", 0, "Number of parallel download workers")
	scrapeCommand.Flags().IntVarP(&scrapeDepth, "depth", "d", 0, "Maximum crawl depth")
	scrapeCommand.Flags().IntVar(&scrapeRetries, "retries", 0, "Download attempts per file")
	scrapeCommand.Flags().BoolVar(&scrapeNoCache, "no-cache", false, "Disable the download cache")
	scrapeCommand.Flags().BoolVar(&scrapeUseBrowser, "use-browser", false, "Use headless browser for JS-rendered pages (requires Chrome)")
	scrapeCommand.Flags().BoolVar(&scrapeFollowGitHub, "follow-github", false, "Walk GitHub repositories referenced on the listing page")
	scrapeCommand.Flags().BoolVarP(&scrapeVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(scrapeCommand)
}

func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	// Step 1: Load config file if provided
	var cfg config.Config
	if scrapeConfigPath != "" {
		loadedCfg, err := config.LoadConfig(scrapeConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (flags take priority over the file)
	if cmd.Flags().Changed("url") {
		cfg.BaseURL = scrapeURL
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = scrapeOutput
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = scrapeWorkers
	}
	if cmd.Flags().Changed("depth") {
		cfg.MaxDepth = scrapeDepth
	}
	if cmd.Flags().Changed("retries") {
		cfg.Retries = scrapeRetries
	}
	if cmd.Flags().Changed("no-cache") {
		cfg.NoCache = scrapeNoCache
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = scrapeUseBrowser
	}
	if cmd.Flags().Changed("follow-github") {
		cfg.FollowGitHub = scrapeFollowGitHub
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = scrapeVerbose
	}

	// Step 3: Fill remaining gaps from defaults and validate
	cfg = cfg.MergeWithDefaults(config.DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return err
	}

	setupLogging(cfg.Verbose)

	session, err := scrape.NewSession(scrape.Options{
		BaseURL:      cfg.BaseURL,
		OutputDir:    cfg.OutputDir,
		Workers:      cfg.Workers,
		UseCache:     !cfg.NoCache,
		CacheExpiry:  time.Duration(cfg.CacheExpireDays) * 24 * time.Hour,
		MaxDepth:     cfg.MaxDepth,
		Retries:      cfg.Retries,
		UseBrowser:   cfg.UseBrowser,
		FollowGitHub: cfg.FollowGitHub,
	})
	if err != nil {
		return err
	}

	// Ctrl-C cancels outstanding downloads instead of killing mid-write.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metadata, err := session.Run(ctx)
	if metadata != nil {
		scrape.NewPrinter(os.Stdout).PrintSummary(metadata)
	}
	return err
}

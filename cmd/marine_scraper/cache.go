package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/marinetools/copernicus-scraper/internal/cache"
)

var cacheCommand = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the download cache",
}

var (
	cacheOutput     string
	cacheExpireDays int
)

var cacheClearCommand = &cobra.Command{
	Use:   "clear",
	Short: "Evict expired entries from the download cache",
	RunE: func(_ *cobra.Command, _ []string) error {
		manager, err := openCache()
		if err != nil {
			return err
		}
		evicted := manager.ClearExpired()
		fmt.Printf("Evicted %d expired cache entries\n", evicted)
		return nil
	},
}

var cacheStatsCommand = &cobra.Command{
	Use:   "stats",
	Short: "Show download cache entry count and size",
	RunE: func(_ *cobra.Command, _ []string) error {
		manager, err := openCache()
		if err != nil {
			return err
		}
		entries, size := manager.Stats()
		fmt.Printf("Cache directory: %s\n", manager.Dir())
		fmt.Printf("Entries:         %d\n", entries)
		fmt.Printf("Total size:      %.1f MB\n", float64(size)/(1024*1024))
		return nil
	},
}

func openCache() (*cache.Manager, error) {
	dir := filepath.Join(cacheOutput, ".cache")
	return cache.NewManager(dir, time.Duration(cacheExpireDays)*24*time.Hour)
}

func init() {
	cacheCommand.PersistentFlags().StringVarP(&cacheOutput, "output", "o", "tutorials", "Output directory holding the cache")
	cacheCommand.PersistentFlags().IntVar(&cacheExpireDays, "expire-days", 30, "Cache expiry window in days")

	cacheCommand.AddCommand(cacheClearCommand)
	cacheCommand.AddCommand(cacheStatsCommand)
	rootCmd.AddCommand(cacheCommand)
}

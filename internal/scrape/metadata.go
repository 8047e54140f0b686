package scrape

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marinetools/copernicus-scraper/internal/download"
)

// metadataFilename is the name of the run record written into the output dir.
const metadataFilename = "metadata.json"

// TutorialReport records the outcome of one tutorial's downloads.
type TutorialReport struct {
	Tutorial  Tutorial          `json:"tutorial"`
	Resources []download.Result `json:"resources"`
	Success   int               `json:"success"`
	Cached    int               `json:"cached"`
	Failed    int               `json:"failed"`
	Skipped   int               `json:"skipped"`
}

// Metadata is the structured record of a whole scrape session, persisted as
// a human-inspectable JSON document alongside the downloads.
type Metadata struct {
	SessionID    string           `json:"session_id"`
	ScrapeDate   time.Time        `json:"scrape_date"`
	BaseURL      string           `json:"base_url"`
	CacheEnabled bool             `json:"cache_enabled"`
	Tutorials    []TutorialReport `json:"tutorials"`
}

// newTutorialReport tallies batch results for one tutorial.
func newTutorialReport(tutorial Tutorial, results []download.Result, skipped int) TutorialReport {
	report := TutorialReport{
		Tutorial:  tutorial,
		Resources: results,
		Skipped:   skipped,
	}
	for _, result := range results {
		switch {
		case result.Success && result.FromCache:
			report.Success++
			report.Cached++
		case result.Success:
			report.Success++
		default:
			report.Failed++
		}
	}
	return report
}

// Write persists the metadata document into dir.
func (m *Metadata) Write(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	path := filepath.Join(dir, metadataFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

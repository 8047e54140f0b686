package scrape

import (
	"fmt"
	"io"
	"strings"
)

const (
	// boxWidth is the width of formatted summary boxes.
	boxWidth = 60
	// maxFailuresToShow limits the failure list in the summary.
	maxFailuresToShow = 5
)

// Printer renders a human-readable run summary.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer that writes to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSummary renders the outcome of a scrape session.
func (p *Printer) PrintSummary(metadata *Metadata) {
	if metadata == nil {
		return
	}

	var success, cached, failed, skipped int
	var failures []string

	for _, report := range metadata.Tutorials {
		success += report.Success
		cached += report.Cached
		failed += report.Failed
		skipped += report.Skipped

		for _, result := range report.Resources {
			if !result.Success && len(failures) < maxFailuresToShow {
				failures = append(failures, fmt.Sprintf("  ✗ %s", result.URL))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Tutorials:  %d\n", len(metadata.Tutorials)))
	sb.WriteString(fmt.Sprintf("Downloaded: %d (cached: %d)\n", success, cached))
	sb.WriteString(fmt.Sprintf("Failed:     %d\n", failed))
	sb.WriteString(fmt.Sprintf("Skipped:    %d", skipped))

	if len(failures) > 0 {
		sb.WriteString("\n\nFailures:\n")
		sb.WriteString(strings.Join(failures, "\n"))
		if failed > maxFailuresToShow {
			sb.WriteString(fmt.Sprintf("\n  ... and %d more", failed-maxFailuresToShow))
		}
	}

	p.printBox("Scrape Summary", sb.String())
}

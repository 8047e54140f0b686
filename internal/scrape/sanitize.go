package scrape

import (
	"regexp"
	"strings"
)

// maxFilenameLength caps sanitized names so deeply nested output paths stay
// well under filesystem limits.
const maxFilenameLength = 50

var (
	forbiddenChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	underscoreRun  = regexp.MustCompile(`_+`)
	controlChars   = regexp.MustCompile(`[\x00-\x1f]`)
)

// SanitizeFilename makes a discovered name safe for the local filesystem:
// forbidden characters are stripped, whitespace collapses to underscores,
// repeats collapse, and the result is length-capped.
func SanitizeFilename(name string) string {
	name = controlChars.ReplaceAllString(name, "")
	name = forbiddenChars.ReplaceAllString(name, "")
	name = whitespaceRun.ReplaceAllString(name, "_")
	name = underscoreRun.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}
	return name
}

package crawl

import (
	"regexp"
	"strings"
)

// Class is the classification assigned to a discovered link.
type Class string

const (
	// ClassResource marks a link pointing at a downloadable artifact.
	ClassResource Class = "resource"
	// ClassTraversable marks a link worth following for more resources.
	ClassTraversable Class = "traversable"
	// ClassUnknown marks a link the rules could not place.
	ClassUnknown Class = "unknown"
)

// TargetExtensions are the artifact extensions worth downloading, in match
// priority order. Compound extensions come before their suffixes.
var TargetExtensions = []string{
	".ipynb", ".tar.gz", ".zip", ".tar", ".gz", ".7z",
	".nc", ".netcdf", ".hdf5", ".hdf", ".grib2", ".grib",
}

// Rule is one (predicate, class) pair. Rules are evaluated in order and the
// first match wins, so the classification policy is a plain data structure
// rather than scattered conditionals.
type Rule struct {
	Name  string
	Match func(link Link) bool
	Class Class
}

// Classifier evaluates an ordered rule list against links.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier with the given rule order.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the class of link and the name of the matching rule.
func (c *Classifier) Classify(link Link) (Class, string) {
	for _, rule := range c.rules {
		if rule.Match(link) {
			return rule.Class, rule.Name
		}
	}
	return ClassUnknown, ""
}

var fileHostingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)github\.com/.*?/raw/`),
	regexp.MustCompile(`(?i)github\.com/.*?/releases/download/`),
	regexp.MustCompile(`(?i)raw\.githubusercontent\.com/`),
	regexp.MustCompile(`(?i)gitlab\.com/.*?/-/raw/`),
	regexp.MustCompile(`(?i)bitbucket\.org/.*?/raw/`),
	regexp.MustCompile(`(?i)drive\.google\.com/.*?/download`),
	regexp.MustCompile(`(?i)dropbox\.com/.*?\?dl=1`),
	regexp.MustCompile(`(?i)zenodo\.org/record/`),
	regexp.MustCompile(`(?i)figshare\.com/.*?/download`),
	regexp.MustCompile(`(?i)data\.marine\.copernicus\.eu/.*?/download`),
	regexp.MustCompile(`(?i)resources\.marine\.copernicus\.eu/.*?/download`),
	regexp.MustCompile(`(?i)mercator-ocean\.fr/.*?/download`),
}

var mercatorSharePattern = regexp.MustCompile(`(?i)atlas\.mercator-ocean\.fr/s/`)

// downloadKeywords are loose hints that a URL serves a file. They both under-
// and over-match, which is why extension rules run first and ambiguous hits
// get a HEAD probe before download.
var downloadKeywords = []string{"download", "export", "retrieve"}

// traversalKeywords select which same-origin pages are worth descending into.
var traversalKeywords = []string{
	"tutorial", "notebook", "example", "demo", "training",
	"learn", "education", "material", "resource", "download",
	"data", "dataset", "file", "github", "gitlab", "code",
}

// HasTargetExtension returns the matching target extension of url, or "".
func HasTargetExtension(url string) string {
	lower := strings.ToLower(url)
	for _, ext := range TargetExtensions {
		if strings.Contains(lower, ext) {
			return ext
		}
	}
	return ""
}

// DefaultRules returns the standard classification policy. Extension matches
// outrank hosting patterns, which outrank keyword heuristics; traversal
// keywords come last so a direct file link is never mistaken for a page.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "target-extension",
			Class: ClassResource,
			Match: func(link Link) bool {
				return HasTargetExtension(link.URL) != ""
			},
		},
		{
			Name:  "file-hosting-pattern",
			Class: ClassResource,
			Match: func(link Link) bool {
				for _, pattern := range fileHostingPatterns {
					if pattern.MatchString(link.URL) {
						return true
					}
				}
				return false
			},
		},
		{
			Name:  "mercator-share",
			Class: ClassResource,
			Match: func(link Link) bool {
				return mercatorSharePattern.MatchString(link.URL)
			},
		},
		{
			Name:  "download-keyword",
			Class: ClassResource,
			Match: func(link Link) bool {
				lower := strings.ToLower(link.URL)
				for _, keyword := range downloadKeywords {
					if strings.Contains(lower, keyword) {
						return true
					}
				}
				return false
			},
		},
		{
			Name:  "traversal-keyword",
			Class: ClassTraversable,
			Match: func(link Link) bool {
				lowerURL := strings.ToLower(link.URL)
				lowerText := strings.ToLower(link.Text)
				for _, keyword := range traversalKeywords {
					if strings.Contains(lowerURL, keyword) || strings.Contains(lowerText, keyword) {
						return true
					}
				}
				return false
			},
		},
	}
}

package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_RulePriority(t *testing.T) {
	classifier := NewClassifier(DefaultRules())

	tests := []struct {
		name      string
		link      Link
		wantClass Class
		wantRule  string
	}{
		{
			name:      "target extension outranks everything",
			link:      Link{URL: "https://example.com/tutorial/download/data.zip"},
			wantClass: ClassResource,
			wantRule:  "target-extension",
		},
		{
			name:      "raw githubusercontent is a resource even without extension",
			link:      Link{URL: "https://raw.githubusercontent.com/org/repo/main/file"},
			wantClass: ClassResource,
			wantRule:  "file-hosting-pattern",
		},
		{
			name:      "github releases download",
			link:      Link{URL: "https://github.com/org/repo/releases/download/v1.0/bundle"},
			wantClass: ClassResource,
			wantRule:  "file-hosting-pattern",
		},
		{
			name:      "mercator share link",
			link:      Link{URL: "https://atlas.mercator-ocean.fr/s/AbCdEf123"},
			wantClass: ClassResource,
			wantRule:  "mercator-share",
		},
		{
			name:      "download keyword in URL",
			link:      Link{URL: "https://example.com/export?id=42"},
			wantClass: ClassResource,
			wantRule:  "download-keyword",
		},
		{
			name:      "traversal keyword in URL",
			link:      Link{URL: "https://example.com/tutorials/ocean-currents"},
			wantClass: ClassTraversable,
			wantRule:  "traversal-keyword",
		},
		{
			name:      "traversal keyword in link text only",
			link:      Link{URL: "https://example.com/page-42", Text: "More training material"},
			wantClass: ClassTraversable,
			wantRule:  "traversal-keyword",
		},
		{
			name:      "no rule matches",
			link:      Link{URL: "https://example.com/about", Text: "About us"},
			wantClass: ClassUnknown,
			wantRule:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, rule := classifier.Classify(tt.link)
			assert.Equal(t, tt.wantClass, class)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// A link matching both a resource rule and a traversal rule must get the
	// earlier rule's class.
	classifier := NewClassifier(DefaultRules())

	class, rule := classifier.Classify(Link{URL: "https://example.com/notebooks/intro.ipynb", Text: "tutorial"})
	assert.Equal(t, ClassResource, class)
	assert.Equal(t, "target-extension", rule)
}

func TestHasTargetExtension(t *testing.T) {
	assert.Equal(t, ".ipynb", HasTargetExtension("https://example.com/a.ipynb"))
	assert.Equal(t, ".tar.gz", HasTargetExtension("https://example.com/a.tar.gz"))
	assert.Equal(t, ".nc", HasTargetExtension("https://example.com/SST.NC?version=2"))
	assert.Equal(t, "", HasTargetExtension("https://example.com/page.html"))
}

func TestClassify_CustomRuleOrder(t *testing.T) {
	// The policy is data; callers can reorder or replace it wholesale.
	rules := []Rule{
		{
			Name:  "everything-is-a-page",
			Class: ClassTraversable,
			Match: func(Link) bool { return true },
		},
	}
	classifier := NewClassifier(rules)

	class, rule := classifier.Classify(Link{URL: "https://example.com/data.zip"})
	assert.Equal(t, ClassTraversable, class)
	assert.Equal(t, "everything-is-a-page", rule)
}

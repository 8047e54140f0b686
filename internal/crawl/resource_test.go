package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySource(t *testing.T) {
	assert.Equal(t, SourceGitHub, ClassifySource("https://raw.githubusercontent.com/org/repo/main/a.ipynb"))
	assert.Equal(t, SourceGitLab, ClassifySource("https://gitlab.com/org/repo/-/raw/main/a.zip"))
	assert.Equal(t, SourceCopernicus, ClassifySource("https://data.marine.copernicus.eu/product/download"))
	assert.Equal(t, SourceMercator, ClassifySource("https://atlas.mercator-ocean.fr/s/AbC123"))
	assert.Equal(t, SourceZenodo, ClassifySource("https://zenodo.org/record/42"))
	assert.Equal(t, SourceOther, ClassifySource("https://example.com/a.zip"))
}

func TestNormalizeShareURL(t *testing.T) {
	assert.Equal(t,
		"https://atlas.mercator-ocean.fr/s/AbC123/download",
		NormalizeShareURL("https://atlas.mercator-ocean.fr/s/AbC123"))
	assert.Equal(t,
		"https://atlas.mercator-ocean.fr/s/AbC123/download",
		NormalizeShareURL("https://atlas.mercator-ocean.fr/s/AbC123/"))

	// Already normalized, and non-share URLs, pass through untouched.
	assert.Equal(t,
		"https://atlas.mercator-ocean.fr/s/AbC123/download",
		NormalizeShareURL("https://atlas.mercator-ocean.fr/s/AbC123/download"))
	assert.Equal(t,
		"https://example.com/a.zip",
		NormalizeShareURL("https://example.com/a.zip"))
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "intro.ipynb", FilenameFromURL("https://example.com/notebooks/intro.ipynb"))
	assert.Equal(t, "sea surface.nc", FilenameFromURL("https://example.com/data/sea%20surface.nc"))

	// Too-short or empty basenames fall back to a stable hash prefix.
	hashed := FilenameFromURL("https://example.com/a")
	assert.Len(t, hashed, 8)
	assert.Equal(t, hashed, FilenameFromURL("https://example.com/a"))
	assert.NotEqual(t, hashed, FilenameFromURL("https://example.com/b"))
}

func TestNewResource(t *testing.T) {
	link := Link{URL: "https://atlas.mercator-ocean.fr/s/AbC123", Text: "Mercator dataset"}
	resource := newResource(link, "mercator-share", "https://example.com/tutorials")

	assert.Equal(t, "https://atlas.mercator-ocean.fr/s/AbC123/download", resource.URL)
	assert.Equal(t, SourceMercator, resource.Source)
	assert.Equal(t, "https://example.com/tutorials", resource.SourcePage)
	assert.Equal(t, "mercator-share", resource.Rule)
	assert.Equal(t, "Mercator dataset", resource.LinkText)
}

package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkURLs(links []Link) []string {
	urls := make([]string, 0, len(links))
	for _, link := range links {
		urls = append(urls, link.URL)
	}
	return urls
}

func TestExtractLinks_ResolvesRelativeHrefs(t *testing.T) {
	html := `<html><body>
		<a href="/notebooks/intro.ipynb">Intro notebook</a>
		<a href="data.zip">Data</a>
		<a href="https://other.example.org/abs.zip">Absolute</a>
	</body></html>`

	links, err := ExtractLinks(html, "https://example.com/tutorials/")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.com/notebooks/intro.ipynb",
		"https://example.com/tutorials/data.zip",
		"https://other.example.org/abs.zip",
	}, linkURLs(links))
	assert.Equal(t, "Intro notebook", links[0].Text)
}

func TestExtractLinks_SkipsFragmentsAndNonHTTP(t *testing.T) {
	html := `<html><body>
		<a href="#section">Jump</a>
		<a href="mailto:info@example.com">Mail</a>
		<a href="javascript:void(0)">JS</a>
		<a href="ftp://example.com/file.zip">FTP</a>
		<a href="/real-page">Real</a>
	</body></html>`

	links, err := ExtractLinks(html, "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/real-page"}, linkURLs(links))
}

func TestExtractLinks_StripsFragmentAndDedupes(t *testing.T) {
	html := `<html><body>
		<a href="/page#top">First text</a>
		<a href="/page#bottom">Second text</a>
	</body></html>`

	links, err := ExtractLinks(html, "https://example.com/")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com/page", links[0].URL)
	assert.Equal(t, "First text", links[0].Text, "first occurrence's text wins")
}

func TestExtractLinks_DataAttributes(t *testing.T) {
	html := `<html><body>
		<button data-download="/files/bundle.zip">Get bundle</button>
		<div data-href="/files/more.nc">More data</div>
	</body></html>`

	links, err := ExtractLinks(html, "https://example.com/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"https://example.com/files/bundle.zip",
		"https://example.com/files/more.nc",
	}, linkURLs(links))
}

func TestExtractLinks_InlineScriptURLs(t *testing.T) {
	html := `<html><body><script>
		var resources = [{"url": "/assets/exercise.ipynb"}];
		var el = '<a href="/assets/archive.tar.gz">x</a>';
	</script></body></html>`

	links, err := ExtractLinks(html, "https://example.com/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"https://example.com/assets/exercise.ipynb",
		"https://example.com/assets/archive.tar.gz",
	}, linkURLs(links))
}

func TestExtractLinks_InvalidBaseURL(t *testing.T) {
	_, err := ExtractLinks("<html></html>", "not-a-url")
	require.Error(t, err)

	var extractErr *LinkExtractionError
	assert.ErrorAs(t, err, &extractErr)
}

func TestExtractLinks_EmptyPage(t *testing.T) {
	links, err := ExtractLinks("<html><body></body></html>", "https://example.com/")
	require.NoError(t, err)
	assert.Empty(t, links)
}

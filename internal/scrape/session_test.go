package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// portalServer serves a minimal tutorial portal: a listing page, one tutorial
// page, and one downloadable notebook.
func portalServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/tutorials", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/tutorials/ocean-currents">Ocean Currents Tutorial</a>
		</body></html>`))
	})
	mux.HandleFunc("/tutorials/ocean-currents", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/files/currents.ipynb">Download the notebook</a>
		</body></html>`))
	})
	mux.HandleFunc("/files/currents.ipynb", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"cells": []}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSession_RunEndToEnd(t *testing.T) {
	server := portalServer(t)
	outputDir := t.TempDir()

	session, err := NewSession(Options{
		BaseURL:   server.URL + "/tutorials",
		OutputDir: outputDir,
		UseCache:  true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID())

	metadata, err := session.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, metadata)

	assert.Equal(t, session.ID(), metadata.SessionID)
	assert.True(t, metadata.CacheEnabled)
	require.Len(t, metadata.Tutorials, 1)

	report := metadata.Tutorials[0]
	assert.Equal(t, "Ocean_Currents_Tutorial", report.Tutorial.Title)
	assert.Equal(t, 1, report.Success)
	assert.Equal(t, 0, report.Failed)

	downloaded := filepath.Join(outputDir, "01_Ocean_Currents_Tutorial", "currents.ipynb")
	data, err := os.ReadFile(downloaded)
	require.NoError(t, err)
	assert.Equal(t, `{"cells": []}`, string(data))

	_, err = os.Stat(filepath.Join(outputDir, "metadata.json"))
	assert.NoError(t, err)
}

func TestSession_SecondRunServesFromCacheDir(t *testing.T) {
	server := portalServer(t)
	outputDir := t.TempDir()

	first, err := NewSession(Options{
		BaseURL:   server.URL + "/tutorials",
		OutputDir: outputDir,
		UseCache:  true,
	})
	require.NoError(t, err)
	_, err = first.Run(context.Background())
	require.NoError(t, err)

	// Remove the download but keep the cache; the rerun must restore the file
	// without it counting as a failure.
	downloaded := filepath.Join(outputDir, "01_Ocean_Currents_Tutorial", "currents.ipynb")
	require.NoError(t, os.Remove(downloaded))

	second, err := NewSession(Options{
		BaseURL:   server.URL + "/tutorials",
		OutputDir: outputDir,
		UseCache:  true,
	})
	require.NoError(t, err)
	metadata, err := second.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, metadata.Tutorials, 1)
	assert.Equal(t, 1, metadata.Tutorials[0].Success)
	assert.Equal(t, 1, metadata.Tutorials[0].Cached)

	_, err = os.Stat(downloaded)
	assert.NoError(t, err)
}

func TestSession_ExistingFileIsSkipped(t *testing.T) {
	server := portalServer(t)
	outputDir := t.TempDir()

	dest := filepath.Join(outputDir, "01_Ocean_Currents_Tutorial", "currents.ipynb")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, []byte("already here"), 0o644))

	session, err := NewSession(Options{
		BaseURL:   server.URL + "/tutorials",
		OutputDir: outputDir,
	})
	require.NoError(t, err)

	metadata, err := session.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, metadata.Tutorials, 1)
	assert.Equal(t, 1, metadata.Tutorials[0].Skipped)
	assert.Equal(t, 0, metadata.Tutorials[0].Success)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "already here", string(data), "existing file must not be overwritten")
}

func TestSession_UnreachableListingPageIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	session, err := NewSession(Options{
		BaseURL:   server.URL + "/tutorials",
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)

	_, err = session.Run(context.Background())
	assert.Error(t, err)
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultExpiry is how long a cached artifact stays valid.
const DefaultExpiry = 30 * 24 * time.Hour

// indexFilename is the name of the index document inside the cache directory.
const indexFilename = "cache_index.json"

// Entry describes one cached artifact. Entries are keyed in the index by the
// hex SHA-256 of the source URL.
type Entry struct {
	URL          string    `json:"url"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	Date         time.Time `json:"date"`
	Size         int64     `json:"size"`
}

// Manager owns a cache directory and its index. All index mutations happen
// under a single mutex; the index document is rewritten in full on every
// change. That is O(index size) per write, which is acceptable at the small
// index sizes a scrape session produces.
type Manager struct {
	dir    string
	expiry time.Duration

	mu    sync.Mutex
	index map[string]Entry
}

// NewManager opens (or creates) the cache at dir. A non-positive expiry uses
// DefaultExpiry. A corrupt or missing index starts empty rather than failing:
// the cache is an optimization, not a source of truth.
func NewManager(dir string, expiry time.Duration) (*Manager, error) {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	m := &Manager{
		dir:    dir,
		expiry: expiry,
		index:  make(map[string]Entry),
	}

	data, err := os.ReadFile(m.indexPath())
	if err == nil {
		if err := json.Unmarshal(data, &m.index); err != nil {
			logrus.WithError(err).Warn("cache index unreadable, starting empty")
			m.index = make(map[string]Entry)
		}
	}

	return m, nil
}

// Dir returns the cache directory path.
func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) indexPath() string {
	return filepath.Join(m.dir, indexFilename)
}

// Key returns the index key for a URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// persistIndexLocked rewrites the index document. Callers must hold m.mu.
func (m *Manager) persistIndexLocked() error {
	data, err := json.MarshalIndent(m.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.indexPath(), data, 0o644)
}

// IsCached reports whether url has a valid cached artifact. An expired entry
// is evicted and reported as a miss. An entry whose backing file has been
// deleted externally is reported as a miss without error.
func (m *Manager) IsCached(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isCachedLocked(url)
}

func (m *Manager) isCachedLocked(url string) bool {
	entry, ok := m.index[Key(url)]
	if !ok {
		return false
	}

	if time.Since(entry.Date) > m.expiry {
		m.removeLocked(url)
		return false
	}

	if _, err := os.Stat(filepath.Join(m.dir, entry.Filename)); err != nil {
		return false
	}
	return true
}

// CachedPath returns the backing file path for url, or "" on a miss.
func (m *Manager) CachedPath(url string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isCachedLocked(url) {
		return ""
	}
	return filepath.Join(m.dir, m.index[Key(url)].Filename)
}

// Add copies source into the cache directory keyed by url and persists the
// index. The cached filename is hash-of-url plus the original basename, so
// distinct URLs never collide.
func (m *Manager) Add(url string, source string) (string, error) {
	key := Key(url)
	original := filepath.Base(source)
	cachedName := key + "_" + original
	cachedPath := filepath.Join(m.dir, cachedName)

	size, err := copyFile(source, cachedPath)
	if err != nil {
		return "", &WriteError{
			URL:     url,
			Message: fmt.Sprintf("failed to copy %s into cache", source),
			Cause:   err,
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.index[key] = Entry{
		URL:          url,
		Filename:     cachedName,
		OriginalName: original,
		Date:         time.Now(),
		Size:         size,
	}

	if err := m.persistIndexLocked(); err != nil {
		return "", &WriteError{
			URL:     url,
			Message: "failed to persist cache index",
			Cause:   err,
		}
	}

	return cachedPath, nil
}

// CopyTo materializes the cached artifact for url at dest. It returns the
// number of bytes copied, or a miss as a zero-byte copy with ok=false.
func (m *Manager) CopyTo(url string, dest string) (int64, bool, error) {
	cached := m.CachedPath(url)
	if cached == "" {
		return 0, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, true, fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}
	size, err := copyFile(cached, dest)
	if err != nil {
		return 0, true, err
	}
	return size, true, nil
}

// Remove deletes the backing file and index entry for url. Removing a URL
// that is not cached is a no-op.
func (m *Manager) Remove(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(url)
}

func (m *Manager) removeLocked(url string) error {
	key := Key(url)
	entry, ok := m.index[key]
	if !ok {
		return nil
	}

	if err := os.Remove(filepath.Join(m.dir, entry.Filename)); err != nil && !os.IsNotExist(err) {
		return &WriteError{
			URL:     url,
			Message: "failed to delete cached file",
			Cause:   err,
		}
	}

	delete(m.index, key)
	if err := m.persistIndexLocked(); err != nil {
		return &WriteError{
			URL:     url,
			Message: "failed to persist cache index",
			Cause:   err,
		}
	}
	return nil
}

// ClearExpired evicts every entry older than the expiry window and returns
// the number evicted. Intended to run once at session start.
func (m *Manager) ClearExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []string
	for _, entry := range m.index {
		if time.Since(entry.Date) > m.expiry {
			expired = append(expired, entry.URL)
		}
	}

	for _, url := range expired {
		if err := m.removeLocked(url); err != nil {
			logrus.WithField("url", url).WithError(err).Warn("failed to evict expired cache entry")
		}
	}

	if len(expired) > 0 {
		logrus.WithField("count", len(expired)).Info("evicted expired cache entries")
	}
	return len(expired)
}

// Stats reports the entry count and total recorded size of the cache.
func (m *Manager) Stats() (entries int, totalSize int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range m.index {
		entries++
		totalSize += entry.Size
	}
	return entries, totalSize
}

func copyFile(src, dest string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(out, in)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return 0, err
	}
	return written, nil
}

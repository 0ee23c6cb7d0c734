package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type entry struct {
	CachedAt time.Time       `json:"cached_at"`
	Value    json.RawMessage `json:"value"`
}

// FileCache keeps one JSON file per key in dir.
type FileCache struct {
	dir       string
	namespace string
	ttl       time.Duration
}

// NewFileCache returns a FileCache scoped to namespace (see Namespace).
func NewFileCache(dir, namespace string, ttl time.Duration) *FileCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FileCache{dir: dir, namespace: namespace, ttl: ttl}
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.json", sanitizeKey(key), c.namespace))
}

// Get loads the entry for key into dst.
func (c *FileCache) Get(_ context.Context, key string, dst any) bool {
	if Disabled() {
		return false
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	if time.Since(e.CachedAt) > c.ttl {
		return false
	}
	return json.Unmarshal(e.Value, dst) == nil
}

// Put writes value for key, replacing the file atomically.
func (c *FileCache) Put(_ context.Context, key string, value any) error {
	if Disabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	data, err := json.Marshal(entry{CachedAt: time.Now(), Value: raw})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	path := c.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write cache file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Clear removes every entry of this cache's namespace.
func (c *FileCache) Clear(_ context.Context) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	suffix := "_" + c.namespace + ".json"
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// ClearAll removes all cache files from dir, whatever their namespace. Only
// names following the "<key>_<12 hex>.json" scheme are touched.
func ClearAll(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !isCacheFilename(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// DefaultDir returns "$XDG_CACHE_HOME/greenhouse-cli" or the platform equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "greenhouse-cli"), nil
}

func isCacheFilename(name string) bool {
	if filepath.Ext(name) != ".json" {
		return false
	}
	key, ns, found := strings.Cut(strings.TrimSuffix(name, ".json"), "_")
	if !found || key == "" || len(ns) != 12 {
		return false
	}
	return isHex(ns)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

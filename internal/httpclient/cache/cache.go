// Package cache implements the HTTP Client's two-level cache: an
// in-memory fastcache L1 in front of a JSON-index + blob-file on-disk L2,
// the same (key, inline-or-blob) shape as cache/cache.go, enriched with
// the fastcache layer aofei-air's coffer.go uses for binary assets.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/google/uuid"
)

// indexEntry mirrors spec §3's Cache Entry: an absolute expiry in
// wall-clock seconds (0 = session, never auto-expires) and either inline
// content or a blob id.
type indexEntry struct {
	Expiry  int64  `json:"expiry"`
	Inline  []byte `json:"inline,omitempty"`
	BlobID  string `json:"blob_id,omitempty"`
}

// Cache is the process-wide HTTP cache. Exclusive mutation belongs to the
// HTTP Client per spec §5.
type Cache struct {
	mu    sync.RWMutex
	index map[string]*indexEntry
	l1    *fastcache.Cache
	dir   string // on-disk blob directory; "" disables L2

	// now is overridable for tests exercising expiry at an exact boundary.
	now func() time.Time
}

// New constructs a cache with an in-memory L1 of memoryBytes and an
// optional on-disk blob directory. When dir is empty, cache entries are
// always stored inline (spec §4.2 step 10's "else store inline" branch).
func New(memoryBytes int, dir string) *Cache {
	c := &Cache{
		index: make(map[string]*indexEntry),
		l1:    fastcache.New(memoryBytes),
		dir:   dir,
		now:   time.Now,
	}
	if dir != "" {
		_ = os.MkdirAll(filepath.Join(dir, "cache"), 0o755)
		c.loadIndex()
	}
	return c
}

// Key builds the cache key per spec §4.2 step 3:
// "scheme://host:port/path?search".
func Key(scheme, host string, port int, path, search string) string {
	s := scheme + "://" + host + ":" + itoa(port) + path
	if search != "" {
		s += "?" + search
	}
	return s
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Get returns the cached body for key if present and unexpired. Expired
// entries are removed (index entry and any blob file) as spec §4.2 step 3
// requires.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.index[key]
	if !ok {
		return nil, false
	}
	if e.Expiry != 0 && c.now().Unix() >= e.Expiry {
		c.removeLocked(key, e)
		return nil, false
	}
	if e.BlobID != "" {
		b := c.l1.Get(nil, []byte(e.BlobID))
		if len(b) > 0 {
			return b, true
		}
		b, err := os.ReadFile(c.blobPath(e.BlobID))
		if err != nil {
			// Index pointed at a missing blob: treat as cache
			// corruption per spec §7, drop and miss.
			c.removeLocked(key, e)
			return nil, false
		}
		c.l1.Set([]byte(e.BlobID), b)
		return b, true
	}
	return e.Inline, true
}

// Set stores body under key with an absolute expiry computed as
// now+maxAgeSeconds (0 means session-only, per spec §3). This is
// deliberately in seconds, not milliseconds: cache/cache.go's
// maxAgeMs-as-time.Millisecond shape is the documented bug class spec §9
// calls out, and cache_test.go asserts the seconds boundary directly.
func (c *Cache) Set(key string, body []byte, maxAgeSeconds int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiry int64
	if maxAgeSeconds > 0 {
		expiry = c.now().Unix() + maxAgeSeconds
	}

	e := &indexEntry{Expiry: expiry}
	if c.dir != "" {
		id := uuid.NewString()
		if err := os.WriteFile(c.blobPath(id), body, 0o644); err == nil {
			e.BlobID = id
			c.l1.Set([]byte(id), body)
		} else {
			e.Inline = body
		}
	} else {
		e.Inline = body
	}
	c.index[key] = e
	if c.dir != "" {
		c.saveIndexLocked()
	}
}

// Purge manually removes key regardless of expiry.
func (c *Cache) Purge(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.index[key]; ok {
		c.removeLocked(key, e)
	}
}

func (c *Cache) removeLocked(key string, e *indexEntry) {
	delete(c.index, key)
	if e.BlobID != "" {
		c.l1.Del([]byte(e.BlobID))
		_ = os.Remove(c.blobPath(e.BlobID))
	}
	if c.dir != "" {
		c.saveIndexLocked()
	}
}

func (c *Cache) blobPath(id string) string {
	return filepath.Join(c.dir, "cache", id)
}

func (c *Cache) indexPath() string {
	return filepath.Join(c.dir, "__cache.json")
}

func (c *Cache) saveIndexLocked() {
	b, err := json.Marshal(c.index)
	if err != nil {
		return
	}
	_ = os.WriteFile(c.indexPath(), b, 0o644)
}

func (c *Cache) loadIndex() {
	b, err := os.ReadFile(c.indexPath())
	if err != nil {
		return
	}
	var idx map[string]*indexEntry
	if err := json.Unmarshal(b, &idx); err != nil {
		// Malformed index: spec §7 CacheCorruption — start empty.
		return
	}
	c.index = idx
}

// sha256Hex returns the hex-encoded SHA-256 digest of s. No code in this
// module calls it; blob ids are UUIDs.
func sha256Hex(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Package embedcache provides a persistent embedding cache backed by an
// append-only JSONL log. A key is written at most once; re-ingesting the
// same data turns every embedding call into a cache hit.
package embedcache

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kart-io/logger"
	"github.com/kart-io/tedrag/pkg/utils/json"
)

// Entry is one record in the cache log.
type Entry struct {
	Key       string    `json:"key"`
	Embedding []float32 `json:"embedding"`
}

// Cache is an in-memory key->vector map persisted to an append-only log.
// It assumes a single writer process; concurrent appenders from multiple
// processes are not serialized.
type Cache interface {
	// Get returns the cached vector for key, or false when absent.
	Get(key string) ([]float32, bool)

	// Put stores the vector in memory and appends it to the log.
	// Keys are never overwritten; putting an existing key is a no-op.
	Put(key string, embedding []float32) error

	// Len reports the number of cached entries.
	Len() int
}

// Key builds the cache key for one chunk. It incorporates the chunking
// parameters so that changing chunk size or overlap invalidates stale
// entries by construction, with no explicit invalidation pass.
func Key(talkID string, chunkIndex int, text string, chunkSizeTokens int, overlapRatio float64) string {
	digest := sha1.Sum([]byte(text))
	return fmt.Sprintf("%s:%d:%s:%d:%g", talkID, chunkIndex, hex.EncodeToString(digest[:]), chunkSizeTokens, overlapRatio)
}

type fileCache struct {
	path    string
	entries map[string][]float32
}

// Load reads the log at path into memory. A missing file yields an empty
// cache. Malformed or incomplete lines are skipped so a partially written
// log degrades to a smaller cache instead of failing the ingestion run.
func Load(path string) (Cache, error) {
	c := &fileCache{
		path:    path,
		entries: make(map[string][]float32),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}
	defer f.Close()

	skipped := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil || e.Key == "" || len(e.Embedding) == 0 {
			skipped++
			continue
		}
		c.entries[e.Key] = e.Embedding
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read embedding cache: %w", err)
	}
	if skipped > 0 {
		logger.Warnw("skipped malformed embedding cache lines", "path", path, "skipped", skipped)
	}

	return c, nil
}

func (c *fileCache) Get(key string) ([]float32, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *fileCache) Put(key string, embedding []float32) error {
	if _, ok := c.entries[key]; ok {
		return nil
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	data, err := json.Marshal(Entry{Key: key, Embedding: embedding})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open embedding cache for append: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append cache entry: %w", err)
	}

	c.entries[key] = embedding
	return nil
}

func (c *fileCache) Len() int {
	return len(c.entries)
}

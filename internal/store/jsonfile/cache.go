// Package jsonfile persists the diff cache as a single JSON document on
// disk, read and written wholesale. Concurrent processes race benignly:
// last writer wins, and the in-process filter step deduplicates on the
// next write.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/benchwatch/revdiff/internal/core/diffcache"
)

// CacheFile is the root JSON structure stored on disk.
type CacheFile struct {
	Entries []diffcache.Entry `json:"entries"`
}

// CacheStore implements diffcache.Store using a JSON file.
type CacheStore struct {
	path string
	mu   sync.RWMutex
}

var _ diffcache.Store = (*CacheStore)(nil)

// NewCacheStore creates a store backed by the JSON file at path.
func NewCacheStore(path string) *CacheStore {
	return &CacheStore{path: path}
}

// Load returns all persisted entries. A missing or empty file is an
// empty cache, not an error.
func (s *CacheStore) Load(ctx context.Context) ([]diffcache.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	return file.Entries, nil
}

// Save replaces the persisted collection.
func (s *CacheStore) Save(ctx context.Context, entries []diffcache.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(CacheFile{Entries: entries})
}

// Clear removes all persisted entries.
func (s *CacheStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(CacheFile{Entries: []diffcache.Entry{}})
}

func (s *CacheStore) load() (CacheFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CacheFile{}, nil
		}
		return CacheFile{}, err
	}

	if len(data) == 0 {
		return CacheFile{}, nil
	}

	var file CacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return CacheFile{}, err
	}
	return file, nil
}

// save writes the cache file to disk atomically.
func (s *CacheStore) save(file CacheFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Copyright (c) 2026 Khaled Abbas
//
// This source code is licensed under the Business Source License 1.1.
//
// Change Date: 4 years after the first public release of this version.
// Change License: MIT
//
// On the Change Date, this version of the code automatically converts
// to the MIT License. Prior to that date, use is subject to the
// Additional Use Grant. See the LICENSE file for details.

package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/darraghmahns/DES-Demo/src/model"
)

// CachedExtraction is a persisted terminal result keyed by document
// fingerprint and mode, so re-submitting the same document skips the
// extraction passes entirely.
type CachedExtraction struct {
	FileHash  string                 `json:"file_hash"`
	Mode      model.Mode             `json:"mode"`
	TaskID    string                 `json:"task_id"`
	Result    model.ExtractionResult `json:"result"`
	CreatedAt time.Time              `json:"created_at"`
}

// ResultStore persists completed extraction results.
type ResultStore interface {
	// SaveResult stores a terminal result. A later save for the same
	// (hash, mode) pair replaces the earlier one.
	SaveResult(ctx context.Context, entry CachedExtraction) error
	// FindCached returns the stored result for a document fingerprint and
	// mode, or found=false if none exists.
	FindCached(ctx context.Context, fileHash string, mode model.Mode) (CachedExtraction, bool, error)
	// ListCached returns all cached entries, newest first.
	ListCached(ctx context.Context) ([]CachedExtraction, error)
}

// MemoryResultStore keeps results in process memory. It is the default
// when no database is configured.
type MemoryResultStore struct {
	mu      sync.RWMutex
	entries map[string]CachedExtraction
}

func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{entries: make(map[string]CachedExtraction)}
}

func cacheKey(fileHash string, mode model.Mode) string {
	return fileHash + "|" + string(mode)
}

func (s *MemoryResultStore) SaveResult(_ context.Context, entry CachedExtraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.entries[cacheKey(entry.FileHash, entry.Mode)] = entry
	return nil
}

func (s *MemoryResultStore) FindCached(_ context.Context, fileHash string, mode model.Mode) (CachedExtraction, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[cacheKey(fileHash, mode)]
	return entry, ok, nil
}

func (s *MemoryResultStore) ListCached(_ context.Context) ([]CachedExtraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CachedExtraction, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

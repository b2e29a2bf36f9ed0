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
	"testing"
	"time"

	"github.com/darraghmahns/DES-Demo/src/model"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryResultStore()
	ctx := context.Background()

	if _, found, err := s.FindCached(ctx, "abc", model.ModeRealEstate); err != nil || found {
		t.Fatalf("empty store FindCached = (found=%v, err=%v)", found, err)
	}

	entry := CachedExtraction{
		FileHash: "abc",
		Mode:     model.ModeRealEstate,
		TaskID:   "t-1",
		Result:   model.ExtractionResult{Mode: model.ModeRealEstate, SourceFile: "deal.pdf"},
	}
	if err := s.SaveResult(ctx, entry); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	got, found, err := s.FindCached(ctx, "abc", model.ModeRealEstate)
	if err != nil || !found {
		t.Fatalf("FindCached = (found=%v, err=%v)", found, err)
	}
	if got.TaskID != "t-1" || got.Result.SourceFile != "deal.pdf" {
		t.Fatalf("got = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not stamped")
	}

	// Same hash, different mode is a distinct cache entry.
	if _, found, _ := s.FindCached(ctx, "abc", model.ModeGov); found {
		t.Fatal("mode crossover in cache lookup")
	}
}

func TestMemoryStoreReplaceAndList(t *testing.T) {
	s := NewMemoryResultStore()
	ctx := context.Background()

	s.SaveResult(ctx, CachedExtraction{
		FileHash: "a", Mode: model.ModeGov, TaskID: "t-1",
		CreatedAt: time.Now().Add(-time.Hour),
	})
	s.SaveResult(ctx, CachedExtraction{
		FileHash: "b", Mode: model.ModeGov, TaskID: "t-2",
	})
	// Replacing an entry keeps one row per (hash, mode).
	s.SaveResult(ctx, CachedExtraction{
		FileHash: "a", Mode: model.ModeGov, TaskID: "t-3",
		CreatedAt: time.Now().Add(-time.Minute),
	})

	entries, err := s.ListCached(ctx)
	if err != nil {
		t.Fatalf("ListCached: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].TaskID != "t-2" {
		t.Fatalf("newest first broken: %+v", entries)
	}

	got, found, _ := s.FindCached(ctx, "a", model.ModeGov)
	if !found || got.TaskID != "t-3" {
		t.Fatalf("replacement lost: %+v", got)
	}
}

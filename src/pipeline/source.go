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

package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source resolves a task's subject reference to document bytes.
type Source interface {
	Load(ctx context.Context, subjectRef string) (doc []byte, filename string, err error)
}

// FSSource serves documents from a single directory. Subject references are
// bare file names; path traversal outside the directory is rejected.
type FSSource struct {
	dir string
}

func NewFSSource(dir string) *FSSource {
	return &FSSource{dir: dir}
}

func (s *FSSource) Load(_ context.Context, subjectRef string) ([]byte, string, error) {
	name := filepath.Base(strings.TrimSpace(subjectRef))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, "", fmt.Errorf("invalid document reference %q", subjectRef)
	}

	doc, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, "", fmt.Errorf("load document %s: %w", name, err)
	}
	if len(doc) == 0 {
		return nil, "", fmt.Errorf("document %s is empty", name)
	}
	return doc, name, nil
}

// Fingerprint is the cache key for a document's bytes.
func Fingerprint(doc []byte) string {
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}

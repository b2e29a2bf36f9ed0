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

// Package render turns a document into per-page images for the extraction
// engine. The Docker renderer runs poppler inside a persistent sandbox
// container; the passthrough renderer exists for offline mock runs.
package render

import "context"

// Renderer converts raw document bytes into base64-encoded page images.
type Renderer interface {
	Render(ctx context.Context, doc []byte) ([]string, error)
}

// Passthrough emits one synthetic page marker per estimated page without
// touching the bytes. The mock engine never reads page pixels, so this keeps
// mock runs free of any Docker dependency.
type Passthrough struct{}

func NewPassthrough() *Passthrough { return &Passthrough{} }

func (p *Passthrough) Render(_ context.Context, doc []byte) ([]string, error) {
	// Rough page estimate so multi-page documents still produce multi-page
	// event payloads downstream.
	pages := len(doc)/32768 + 1
	if pages > 16 {
		pages = 16
	}
	out := make([]string, pages)
	for i := range out {
		out[i] = "cGFnZQ==" // placeholder page
	}
	return out, nil
}

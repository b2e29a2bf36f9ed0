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

package model

// Citation is one verification claim: where in the source document an
// extracted value was found. Produced only by the verification pass.
// A field the verifier could not locate gets Confidence 0.0 and
// LineOrRegion "NOT FOUND" — a valid outcome, not an error.
type Citation struct {
	FieldPath         string  `json:"field_path"`
	ClaimedValue      string  `json:"claimed_value"`
	PageNumber        int     `json:"page_number"`
	LineOrRegion      string  `json:"line_or_region"`
	SupportingContext string  `json:"supporting_context"`
	Confidence        float64 `json:"confidence"`
}

// Usage accumulates engine token consumption across pipeline steps.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// ExtractionResult is the aggregated output of one completed task, carried
// by the terminal_success event and persisted to the result store.
type ExtractionResult struct {
	Mode                Mode              `json:"mode"`
	SourceFile          string            `json:"source_file"`
	FileHash            string            `json:"file_hash"`
	ExtractionTimestamp string            `json:"extraction_timestamp"`
	PagesProcessed      int               `json:"pages_processed"`
	Data                map[string]any    `json:"data,omitempty"`
	ValidationErrors    []string          `json:"validation_errors,omitempty"`
	Citations           []Citation        `json:"citations"`
	OverallConfidence   float64           `json:"overall_confidence"`
	ComplianceReport    *ComplianceReport `json:"compliance_report,omitempty"`
	PIIReport           *PIIReport        `json:"pii_report,omitempty"`
	Enrichment          *ParcelInfo       `json:"enrichment,omitempty"`
	Usage               Usage             `json:"usage"`
	CostUSD             float64           `json:"cost_usd"`
}

// ParcelInfo is the enrichment stage's output: public-record context for the
// property a real-estate document describes.
type ParcelInfo struct {
	ParcelID      string  `json:"parcel_id"`
	LotSizeAcres  float64 `json:"lot_size_acres,omitempty"`
	YearBuilt     int     `json:"year_built,omitempty"`
	AssessedValue float64 `json:"assessed_value,omitempty"`
	LandUse       string  `json:"land_use,omitempty"`
	Source        string  `json:"source"`
}

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

package extract

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/darraghmahns/DES-Demo/src/model"
)

// MockEngine is a deterministic, offline engine for demos and tests. Given
// the same pages and mode it always returns the same data, citations, and
// usage, which keeps pipeline runs reproducible without an API key.
type MockEngine struct{}

func NewMockEngine() *MockEngine { return &MockEngine{} }

func (e *MockEngine) Name() string { return "mock" }

func (e *MockEngine) Extract(_ context.Context, pages []string, mode model.Mode) (map[string]any, model.Usage, error) {
	usage := model.Usage{PromptTokens: 1200 * max(len(pages), 1), CompletionTokens: 450}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	switch mode {
	case model.ModeGov:
		return map[string]any{
			"requester": map[string]any{
				"first_name":     "Sarah",
				"last_name":      "Mitchell",
				"email":          "s.mitchell@springfield-news.org",
				"phone":          "(217) 555-0134",
				"address_street": "742 Evergreen Terrace",
				"address_city":   "Springfield",
				"address_state":  "IL",
				"address_zip":    "62704",
				"organization":   "Springfield Daily Register",
			},
			"request_description":  "All records related to border technology procurement contracts",
			"request_category":     "media",
			"agency":               "Department of Homeland Security",
			"fee_waiver":           true,
			"expedited_processing": true,
			"date_range_start":     "01/01/2023",
			"date_range_end":       "12/31/2024",
		}, usage, nil
	default:
		return map[string]any{
			"loop_name":          "Michael B. Curtis, 812 Granite Ave, Helena, MT 59601",
			"transaction_type":   "PURCHASE_OFFER",
			"transaction_status": "PRE_OFFER",
			"property_address": map[string]any{
				"street_number":     "812",
				"street_name":       "Granite Ave",
				"city":              "Helena",
				"state_or_province": "MT",
				"postal_code":       "59601",
				"country":           "US",
				"county":            "Lewis and Clark",
			},
			"financials": map[string]any{
				"purchase_price":        485000.0,
				"earnest_money_amount":  10000.0,
				"earnest_money_held_by": "First American Title",
			},
			"contract_dates": map[string]any{
				"closing_date": "03/15/2025",
				"offer_date":   "01/28/2025",
			},
			"participants": []any{
				map[string]any{"full_name": "Michael B. Curtis", "role": "BUYER"},
				map[string]any{"full_name": "Tiffany J. Selong", "role": "SELLER"},
			},
		}, usage, nil
	}
}

func (e *MockEngine) Verify(_ context.Context, pages []string, data map[string]any) ([]model.Citation, model.Usage, error) {
	usage := model.Usage{PromptTokens: 1500 * max(len(pages), 1), CompletionTokens: 600}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	fields := flattenFields("", data)
	citations := make([]model.Citation, 0, len(fields))
	for _, f := range fields {
		citations = append(citations, model.Citation{
			FieldPath:         f.path,
			ClaimedValue:      f.value,
			PageNumber:        1 + int(pathHash(f.path)%uint32(max(len(pages), 1))),
			LineOrRegion:      fmt.Sprintf("line %d", 3+pathHash(f.path)%40),
			SupportingContext: fmt.Sprintf("...%s...", f.value),
			Confidence:        0.80 + float64(pathHash(f.path)%20)/100.0,
		})
	}
	return citations, usage, nil
}

func (e *MockEngine) RawText(_ context.Context, pages []string) ([]string, model.Usage, error) {
	usage := model.Usage{PromptTokens: 900 * max(len(pages), 1), CompletionTokens: 300}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	texts := make([]string, 0, max(len(pages), 1))
	texts = append(texts,
		"FREEDOM OF INFORMATION ACT REQUEST\n"+
			"Requester: Sarah Mitchell (SSN 123-45-6789)\n"+
			"Phone: (217) 555-0134\n"+
			"Email: s.mitchell@springfield-news.org\n")
	for i := 1; i < len(pages); i++ {
		texts = append(texts, fmt.Sprintf("Page %d — continuation of records request.\n", i+1))
	}
	return texts, usage, nil
}

type flatField struct {
	path  string
	value string
}

// flattenFields walks nested extraction data depth first and returns one
// entry per non-empty leaf, sorted by path for determinism.
func flattenFields(prefix string, v any) []flatField {
	var out []flatField
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			out = append(out, flattenFields(p, val[k])...)
		}
	case []any:
		for i, item := range val {
			out = append(out, flattenFields(fmt.Sprintf("%s[%d]", prefix, i), item)...)
		}
	case nil:
	case string:
		if val != "" {
			out = append(out, flatField{path: prefix, value: val})
		}
	default:
		out = append(out, flatField{path: prefix, value: fmt.Sprintf("%v", val)})
	}
	return out
}

func pathHash(path string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(path))
	return h.Sum32()
}

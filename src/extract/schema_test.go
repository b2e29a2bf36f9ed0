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
	"strings"
	"testing"

	"github.com/darraghmahns/DES-Demo/src/model"
)

func validLoopData() map[string]any {
	return map[string]any{
		"loop_name": "Curtis Purchase, Helena MT",
		"property_address": map[string]any{
			"street_number":     "812",
			"street_name":       "Granite Ave",
			"city":              "Helena",
			"state_or_province": "MT",
			"postal_code":       "59601",
		},
		"financials": map[string]any{
			"purchase_price": 485000.0,
		},
		"contract_dates": map[string]any{},
		"participants": []any{
			map[string]any{"full_name": "Michael B. Curtis", "role": "BUYER"},
		},
	}
}

func TestValidateStrictAcceptsCompleteLoop(t *testing.T) {
	data, errs := ValidateStrict(validLoopData(), model.ModeRealEstate)
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	addr, _ := data["property_address"].(map[string]any)
	if addr == nil || addr["city"] != "Helena" {
		t.Fatalf("round-tripped address lost city: %v", data["property_address"])
	}
}

func TestValidateStrictReportsMissingRequiredFields(t *testing.T) {
	raw := validLoopData()
	delete(raw, "loop_name")
	raw["financials"] = map[string]any{"purchase_price": 0.0}

	_, errs := ValidateStrict(raw, model.ModeRealEstate)
	if len(errs) != 2 {
		t.Fatalf("got %d errors %v, want 2", len(errs), errs)
	}
	joined := strings.Join(errs, "; ")
	if !strings.Contains(joined, "loop_name") || !strings.Contains(joined, "purchase_price") {
		t.Fatalf("errors missing field names: %v", errs)
	}
}

func TestValidateStrictRejectsUnknownFields(t *testing.T) {
	raw := validLoopData()
	raw["escrow_agent_fax"] = "406-555-0000"

	_, errs := ValidateStrict(raw, model.ModeRealEstate)
	if len(errs) == 0 {
		t.Fatal("unknown field passed strict validation")
	}
}

func TestValidateStrictGovSchema(t *testing.T) {
	raw := map[string]any{
		"requester": map[string]any{
			"first_name": "Sarah",
			"last_name":  "Mitchell",
		},
		"request_description": "All procurement records",
		"agency":              "DHS",
	}
	if _, errs := ValidateStrict(raw, model.ModeGov); len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}

	delete(raw, "agency")
	_, errs := ValidateStrict(raw, model.ModeGov)
	if len(errs) != 1 || !strings.Contains(errs[0], "agency") {
		t.Fatalf("errors = %v, want single agency error", errs)
	}
}

func TestValidateLenientRecoversFromTypeMismatch(t *testing.T) {
	raw := validLoopData()
	raw["financials"] = map[string]any{
		"purchase_price": "four hundred grand", // mistyped
	}

	data, err := ValidateLenient(raw, model.ModeRealEstate)
	if err != nil {
		t.Fatalf("lenient decode failed: %v", err)
	}
	if data["loop_name"] != "Curtis Purchase, Helena MT" {
		t.Fatalf("lenient decode lost well-typed fields: %v", data)
	}
}

func TestValidateLenientToleratesUnknownFields(t *testing.T) {
	raw := validLoopData()
	raw["escrow_agent_fax"] = "406-555-0000"

	data, err := ValidateLenient(raw, model.ModeRealEstate)
	if err != nil {
		t.Fatalf("lenient decode failed: %v", err)
	}
	if _, ok := data["escrow_agent_fax"]; ok {
		t.Fatal("unknown field survived the schema round trip")
	}
}

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

package compliance

import (
	"context"
	"testing"

	"github.com/darraghmahns/DES-Demo/src/model"
)

func TestHelenaMergesCityAndStateLevels(t *testing.T) {
	checker := NewChecker(NewMemoryRuleStore())

	report, err := checker.CheckAddress(context.Background(), "MT", "Lewis and Clark County", "Helena", "purchase")
	if err != nil {
		t.Fatalf("CheckAddress: %v", err)
	}
	if report.JurisdictionKey != "MT:Lewis And Clark:Helena" {
		t.Fatalf("key = %s", report.JurisdictionKey)
	}
	if report.OverallStatus != model.ComplianceActionNeeded {
		t.Fatalf("status = %s, want action_needed", report.OverallStatus)
	}

	// City-level Helena rules plus the MT:: statewide fallback must both
	// appear, minus (name, level) duplicates within each level.
	byLevel := map[model.JurisdictionType]int{}
	for _, req := range report.Requirements {
		byLevel[req.Level]++
	}
	if byLevel[model.JurisdictionCity] == 0 {
		t.Fatal("no city-level requirements in merged report")
	}
	if byLevel[model.JurisdictionState] == 0 {
		t.Fatal("no state-level requirements in merged report")
	}

	seen := map[string]bool{}
	for _, req := range report.Requirements {
		key := req.Name + "|" + string(req.Level)
		if seen[key] {
			t.Fatalf("duplicate requirement at same level: %s", key)
		}
		seen[key] = true
		if req.Provenance != model.ProvenanceSeeded {
			t.Fatalf("requirement %s provenance = %s, want seeded", req.Name, req.Provenance)
		}
	}
}

func TestFullStateNameNormalizes(t *testing.T) {
	checker := NewChecker(NewMemoryRuleStore())

	report, err := checker.CheckAddress(context.Background(), "Montana", "", "Helena", "purchase")
	if err != nil {
		t.Fatalf("CheckAddress: %v", err)
	}
	if report.JurisdictionKey != "MT::Helena" {
		t.Fatalf("key = %s, want MT::Helena", report.JurisdictionKey)
	}
	// No city rules under MT::Helena, but the statewide MT:: fallback hits.
	if report.OverallStatus == model.ComplianceUnknownJurisdiction {
		t.Fatal("statewide fallback missed")
	}
}

func TestCityLimitsBoundary(t *testing.T) {
	checker := NewChecker(NewMemoryRuleStore())

	inCity, err := checker.CheckAddress(context.Background(), "MT", "Missoula", "Missoula", "purchase")
	if err != nil {
		t.Fatalf("CheckAddress (city): %v", err)
	}
	county, err := checker.CheckAddress(context.Background(), "MT", "Missoula", "", "purchase")
	if err != nil {
		t.Fatalf("CheckAddress (county): %v", err)
	}

	hasConnectOnSale := func(r *model.ComplianceReport) bool {
		for _, req := range r.Requirements {
			if req.Name == "Connect on Sale — Sewer Connection" {
				return true
			}
		}
		return false
	}
	if !hasConnectOnSale(inCity) {
		t.Fatal("Connect on Sale missing inside Missoula city limits")
	}
	if hasConnectOnSale(county) {
		t.Fatal("Connect on Sale leaked into unincorporated county")
	}
	if county.JurisdictionType != model.JurisdictionCounty {
		t.Fatalf("county jurisdiction type = %s", county.JurisdictionType)
	}
}

func TestUnknownJurisdictionIsDistinctFromNoRequirements(t *testing.T) {
	checker := NewChecker(NewMemoryRuleStore())

	report, err := checker.CheckAddress(context.Background(), "TX", "Travis", "Austin", "purchase")
	if err != nil {
		t.Fatalf("CheckAddress: %v", err)
	}
	if report.OverallStatus != model.ComplianceUnknownJurisdiction {
		t.Fatalf("status = %s, want unknown_jurisdiction", report.OverallStatus)
	}
	if report.JurisdictionType != model.JurisdictionUnknown {
		t.Fatalf("type = %s, want unknown", report.JurisdictionType)
	}
	if report.Requirements == nil || len(report.Requirements) != 0 {
		t.Fatalf("requirements = %v, want empty non-nil list", report.Requirements)
	}
}

func TestMissingStateYieldsUnknown(t *testing.T) {
	checker := NewChecker(NewMemoryRuleStore())

	report, err := checker.Check(context.Background(), map[string]any{}, "purchase")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.OverallStatus != model.ComplianceUnknownJurisdiction {
		t.Fatalf("status = %s, want unknown_jurisdiction", report.OverallStatus)
	}
}

func TestDiscoveredRulesGatedOnActivation(t *testing.T) {
	store := NewMemoryRuleStore()
	checker := NewChecker(store)

	store.Insert(RuleSet{
		JurisdictionKey: "TX::",
		Requirements: []model.Requirement{
			{Name: "Seller's Disclosure Notice", Category: model.CategoryDisclosure, Status: model.StatusRequired},
		},
		Source: "research-agent",
	})

	// Inert until a human activates the run.
	before, err := checker.CheckAddress(context.Background(), "TX", "", "", "purchase")
	if err != nil {
		t.Fatalf("CheckAddress: %v", err)
	}
	if before.OverallStatus != model.ComplianceUnknownJurisdiction {
		t.Fatalf("unactivated rules influenced resolution: %s", before.OverallStatus)
	}

	store.Activate("TX::", "reviewer@example.com")

	after, err := checker.CheckAddress(context.Background(), "TX", "", "", "purchase")
	if err != nil {
		t.Fatalf("CheckAddress: %v", err)
	}
	if after.OverallStatus != model.ComplianceActionNeeded {
		t.Fatalf("status = %s, want action_needed", after.OverallStatus)
	}
	if len(after.Requirements) != 1 || after.Requirements[0].Provenance != model.ProvenanceDiscovered {
		t.Fatalf("requirements = %+v, want one discovered entry", after.Requirements)
	}
}

func TestSeededWinsNameCollisionAtSameLevel(t *testing.T) {
	store := NewMemoryRuleStore()
	checker := NewChecker(store)

	store.Insert(RuleSet{
		JurisdictionKey: "MT::",
		Requirements: []model.Requirement{
			{Name: "Realty Transfer Certificate", Description: "stale discovered copy", Status: model.StatusOptional},
			{Name: "Flood Plain Disclosure", Category: model.CategoryDisclosure, Status: model.StatusRequired},
		},
	})
	store.Activate("MT::", "reviewer@example.com")

	report, err := checker.CheckAddress(context.Background(), "MT", "", "", "purchase")
	if err != nil {
		t.Fatalf("CheckAddress: %v", err)
	}

	var rtc *model.Requirement
	var flood *model.Requirement
	for i := range report.Requirements {
		switch report.Requirements[i].Name {
		case "Realty Transfer Certificate":
			rtc = &report.Requirements[i]
		case "Flood Plain Disclosure":
			flood = &report.Requirements[i]
		}
	}
	if rtc == nil || rtc.Provenance != model.ProvenanceSeeded {
		t.Fatalf("seeded entry lost the collision: %+v", rtc)
	}
	if flood == nil || flood.Provenance != model.ProvenanceDiscovered {
		t.Fatalf("non-colliding discovered entry missing: %+v", flood)
	}
}

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
	"fmt"
	"log/slog"

	"github.com/darraghmahns/DES-Demo/src/logging"
	"github.com/darraghmahns/DES-Demo/src/model"
)

// Checker resolves jurisdictions and produces compliance reports by merging
// discovered (active-only) and seeded rules across the city → county → state
// cascade.
type Checker struct {
	store RuleStore
}

func NewChecker(store RuleStore) *Checker {
	return &Checker{store: store}
}

// LookupRequirements merges rules from every matching cascade level. A
// city-level requirement and a state-level requirement both appear; only an
// exact (name, level) duplicate is collapsed, and when a discovered entry
// collides with a seeded one at the same level the seeded entry is kept (its
// authority text is authoritative). The found flag reports whether any level
// matched at all.
func (c *Checker) LookupRequirements(ctx context.Context, j Jurisdiction) ([]model.Requirement, bool, error) {
	var merged []model.Requirement
	found := false

	for _, level := range j.CascadeKeys() {
		seen := make(map[string]bool)

		seeded, seededFound := seedRules[level.Key]
		discovered, discoveredFound, err := c.store.FindActive(ctx, level.Key)
		if err != nil {
			return nil, false, fmt.Errorf("rule store lookup %s: %w", level.Key, err)
		}
		if seededFound || discoveredFound {
			found = true
		}

		for _, req := range seeded {
			req.Level = level.Level
			req.Provenance = model.ProvenanceSeeded
			if !seen[req.Name] {
				seen[req.Name] = true
				merged = append(merged, req)
			}
		}
		for _, req := range discovered {
			req.Level = level.Level
			req.Provenance = model.ProvenanceDiscovered
			if !seen[req.Name] {
				seen[req.Name] = true
				merged = append(merged, req)
			}
		}
	}
	return merged, found, nil
}

// CheckAddress runs a standalone compliance check for raw address fields.
func (c *Checker) CheckAddress(ctx context.Context, state, county, city, transactionType string) (*model.ComplianceReport, error) {
	if state == "" {
		logging.Log("No state in address — cannot resolve jurisdiction", slog.LevelWarn)
		return unknownReport("", "Unknown", transactionType,
			"No state found in property address."), nil
	}

	j := Resolve(state, county, city)
	logging.Log(fmt.Sprintf("Resolved jurisdiction: %s (%s, type=%s)", j.Key, j.Display, j.Type), slog.LevelInfo)

	reqs, found, err := c.LookupRequirements(ctx, j)
	if err != nil {
		return nil, err
	}
	if !found {
		logging.Log(fmt.Sprintf("No compliance rules at any level for %s", j.Key), slog.LevelInfo)
		return unknownReport(j.Key, j.Display, transactionType,
			fmt.Sprintf("No compliance rules found for %s. This jurisdiction may still have requirements.", j.Display)), nil
	}

	report := &model.ComplianceReport{
		JurisdictionKey:     j.Key,
		JurisdictionDisplay: j.Display,
		JurisdictionType:    j.Type,
		Requirements:        reqs,
		TransactionType:     transactionType,
	}
	if report.ActionItems() > 0 {
		report.OverallStatus = model.ComplianceActionNeeded
	} else {
		report.OverallStatus = model.CompliancePass
	}

	logging.Log(fmt.Sprintf("Compliance check complete: %s — %d requirements, %d action items, status=%s",
		j.Display, report.RequirementCount(), report.ActionItems(), report.OverallStatus), slog.LevelInfo)
	return report, nil
}

// Check extracts the property address from validated extraction data and
// runs the compliance check against it.
func (c *Checker) Check(ctx context.Context, data map[string]any, transactionType string) (*model.ComplianceReport, error) {
	state, county, city := addressFields(data)
	return c.CheckAddress(ctx, state, county, city, transactionType)
}

func addressFields(data map[string]any) (state, county, city string) {
	addr, _ := data["property_address"].(map[string]any)
	if addr == nil {
		return "", "", ""
	}
	state, _ = addr["state_or_province"].(string)
	county, _ = addr["county"].(string)
	city, _ = addr["city"].(string)
	return state, county, city
}

func unknownReport(key, display, transactionType, notes string) *model.ComplianceReport {
	return &model.ComplianceReport{
		JurisdictionKey:     key,
		JurisdictionDisplay: display,
		JurisdictionType:    model.JurisdictionUnknown,
		OverallStatus:       model.ComplianceUnknownJurisdiction,
		Requirements:        []model.Requirement{},
		TransactionType:     transactionType,
		Notes:               notes,
	}
}

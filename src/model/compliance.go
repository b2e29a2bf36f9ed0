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

type RequirementCategory string

const (
	CategoryForm        RequirementCategory = "form"
	CategoryCertificate RequirementCategory = "certificate"
	CategoryDisclosure  RequirementCategory = "disclosure"
	CategoryInspection  RequirementCategory = "inspection"
	CategoryFee         RequirementCategory = "fee"
)

type RequirementStatus string

const (
	StatusRequired       RequirementStatus = "required"
	StatusLikelyRequired RequirementStatus = "likely_required"
	StatusOptional       RequirementStatus = "optional"
)

// Provenance distinguishes hardcoded rules from ones an automated research
// pass discovered. Discovered rules are inert until a human flips them active.
type Provenance string

const (
	ProvenanceSeeded     Provenance = "seeded"
	ProvenanceDiscovered Provenance = "discovered"
)

type JurisdictionType string

const (
	JurisdictionCity    JurisdictionType = "city"
	JurisdictionCounty  JurisdictionType = "county"
	JurisdictionState   JurisdictionType = "state"
	JurisdictionUnknown JurisdictionType = "unknown"
)

// Requirement is one compliance obligation for a jurisdiction.
type Requirement struct {
	Name        string              `json:"name"`
	Code        string              `json:"code,omitempty"`
	Category    RequirementCategory `json:"category"`
	Description string              `json:"description"`
	Authority   string              `json:"authority,omitempty"`
	Fee         string              `json:"fee,omitempty"`
	URL         string              `json:"url,omitempty"`
	Status      RequirementStatus   `json:"status"`
	Notes       string              `json:"notes,omitempty"`
	Level       JurisdictionType    `json:"level"`
	Provenance  Provenance          `json:"provenance"`
	Confidence  float64             `json:"confidence,omitempty"`
}

type ComplianceOverallStatus string

const (
	CompliancePass                ComplianceOverallStatus = "pass"
	ComplianceActionNeeded        ComplianceOverallStatus = "action_needed"
	ComplianceUnknownJurisdiction ComplianceOverallStatus = "unknown_jurisdiction"
)

// ComplianceReport is the resolved rule set for one jurisdiction. An unknown
// jurisdiction yields JurisdictionUnknown + ComplianceUnknownJurisdiction and
// an empty requirement list, which is distinct from a successful lookup that
// finds zero requirements (CompliancePass).
type ComplianceReport struct {
	JurisdictionKey     string                  `json:"jurisdiction_key"`
	JurisdictionDisplay string                  `json:"jurisdiction_display"`
	JurisdictionType    JurisdictionType        `json:"jurisdiction_type"`
	OverallStatus       ComplianceOverallStatus `json:"overall_status"`
	Requirements        []Requirement           `json:"requirements"`
	TransactionType     string                  `json:"transaction_type,omitempty"`
	Notes               string                  `json:"notes,omitempty"`
}

// RequirementCount is the number of resolved requirements.
func (r *ComplianceReport) RequirementCount() int { return len(r.Requirements) }

// ActionItems counts requirements demanding action before closing.
func (r *ComplianceReport) ActionItems() int {
	n := 0
	for _, req := range r.Requirements {
		if req.Status == StatusRequired || req.Status == StatusLikelyRequired {
			n++
		}
	}
	return n
}

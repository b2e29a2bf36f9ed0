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

type PIIType string

const (
	PIISSN   PIIType = "SSN"
	PIIPhone PIIType = "PHONE"
	PIIEmail PIIType = "EMAIL"
)

type PIISeverity string

const (
	SeverityHigh   PIISeverity = "HIGH"
	SeverityMedium PIISeverity = "MEDIUM"
	SeverityLow    PIISeverity = "LOW"
)

// PIIFinding is one detected instance of sensitive data.
type PIIFinding struct {
	Type           PIIType     `json:"pii_type"`
	ValueRedacted  string      `json:"value_redacted"`
	Severity       PIISeverity `json:"severity"`
	Confidence     float64     `json:"confidence"`
	Location       string      `json:"location"`
	Recommendation string      `json:"recommendation"`
}

// PIIReport aggregates findings with a weighted risk score.
type PIIReport struct {
	Findings  []PIIFinding `json:"findings"`
	RiskScore int          `json:"pii_risk_score"`
	RiskLevel PIISeverity  `json:"risk_level"`
}

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

package pii

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/darraghmahns/DES-Demo/src/model"
)

type pattern struct {
	piiType        model.PIIType
	re             *regexp.Regexp
	severity       model.PIISeverity
	redact         func(match string) string
	recommendation string
}

// patterns are checked in order so findings group by type within a page.
var patterns = []pattern{
	{
		piiType:  model.PIISSN,
		re:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		severity: model.SeverityHigh,
		redact: func(m string) string {
			return "***-**-" + m[len(m)-4:]
		},
		recommendation: "CRITICAL: SSN detected. Encrypt before transmission. Verify if SSN is required for this request.",
	},
	{
		piiType:  model.PIIPhone,
		re:       regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		severity: model.SeverityMedium,
		redact: func(m string) string {
			return "(***) ***-" + m[len(m)-4:]
		},
		recommendation: "Phone number detected. Required for FOIA contact. Ensure secure transmission channel.",
	},
	{
		piiType:  model.PIIEmail,
		re:       regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`),
		severity: model.SeverityMedium,
		redact: func(m string) string {
			at := strings.Index(m, "@")
			return m[:1] + "***@" + m[at+1:]
		},
		recommendation: "Email address detected. Required for FOIA correspondence. Standard handling applies.",
	},
}

// riskWeights score each finding type; the total is capped at 100.
var riskWeights = map[model.PIIType]int{
	model.PIISSN:   40,
	model.PIIPhone: 15,
	model.PIIEmail: 10,
}

// ScanPage scans one page of raw text. pageNumber is 1-indexed and only
// used for location reporting.
func ScanPage(text string, pageNumber int) []model.PIIFinding {
	var findings []model.PIIFinding
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			match := text[loc[0]:loc[1]]
			line := strings.Count(text[:loc[0]], "\n") + 1
			findings = append(findings, model.PIIFinding{
				Type:           p.piiType,
				ValueRedacted:  p.redact(match),
				Severity:       p.severity,
				Confidence:     0.95,
				Location:       fmt.Sprintf("Page %d, line %d", pageNumber, line),
				Recommendation: p.recommendation,
			})
		}
	}
	return findings
}

// ScanPages scans a whole document and computes the weighted risk score.
func ScanPages(pageTexts []string) *model.PIIReport {
	var findings []model.PIIFinding
	for i, text := range pageTexts {
		findings = append(findings, ScanPage(text, i+1)...)
	}

	score := 0
	for _, f := range findings {
		w, ok := riskWeights[f.Type]
		if !ok {
			w = 5
		}
		score += w
	}
	if score > 100 {
		score = 100
	}

	level := model.SeverityLow
	switch {
	case score >= 60:
		level = model.SeverityHigh
	case score >= 25:
		level = model.SeverityMedium
	}

	return &model.PIIReport{
		Findings:  findings,
		RiskScore: score,
		RiskLevel: level,
	}
}

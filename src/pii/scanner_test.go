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
	"strings"
	"testing"

	"github.com/darraghmahns/DES-Demo/src/model"
)

func TestScanPageDetectsAndRedacts(t *testing.T) {
	text := "Requester: Sarah Mitchell\nSSN 123-45-6789\nPhone: (217) 555-0134\nEmail: s.mitchell@springfield-news.org\n"

	findings := ScanPage(text, 1)

	byType := map[model.PIIType]model.PIIFinding{}
	for _, f := range findings {
		byType[f.Type] = f
	}

	ssn, ok := byType[model.PIISSN]
	if !ok {
		t.Fatal("SSN not detected")
	}
	if ssn.ValueRedacted != "***-**-6789" {
		t.Fatalf("SSN redaction = %s", ssn.ValueRedacted)
	}
	if ssn.Severity != model.SeverityHigh {
		t.Fatalf("SSN severity = %s, want HIGH", ssn.Severity)
	}
	if !strings.Contains(ssn.Location, "line 2") {
		t.Fatalf("SSN location = %s, want line 2", ssn.Location)
	}

	phone, ok := byType[model.PIIPhone]
	if !ok {
		t.Fatal("phone not detected")
	}
	if !strings.HasSuffix(phone.ValueRedacted, "0134") || strings.Contains(phone.ValueRedacted, "217") {
		t.Fatalf("phone redaction = %s", phone.ValueRedacted)
	}

	email, ok := byType[model.PIIEmail]
	if !ok {
		t.Fatal("email not detected")
	}
	if email.ValueRedacted != "s***@springfield-news.org" {
		t.Fatalf("email redaction = %s", email.ValueRedacted)
	}
}

func TestScanPageCleanText(t *testing.T) {
	findings := ScanPage("All records related to procurement contracts between 2023 and 2024.", 1)
	if len(findings) != 0 {
		t.Fatalf("findings = %+v, want none", findings)
	}
}

func TestScanPagesRiskLevels(t *testing.T) {
	cases := []struct {
		name      string
		pages     []string
		wantLevel model.PIISeverity
		wantScore int
	}{
		{
			name:      "ssn phone and email is high",
			pages:     []string{"SSN 123-45-6789 phone (217) 555-0134 email a.b@example.org"},
			wantLevel: model.SeverityHigh,
			wantScore: 65,
		},
		{
			name:      "ssn and phone is medium",
			pages:     []string{"SSN 123-45-6789 phone (217) 555-0134"},
			wantLevel: model.SeverityMedium,
			wantScore: 55,
		},
		{
			name:      "email alone is low",
			pages:     []string{"contact a.b@example.org"},
			wantLevel: model.SeverityLow,
			wantScore: 10,
		},
		{
			name:      "two phones is medium",
			pages:     []string{"call (217) 555-0134", "or (406) 555-0199"},
			wantLevel: model.SeverityMedium,
			wantScore: 30,
		},
		{
			name:      "score caps at 100",
			pages:     []string{"111-22-3333 222-33-4444 333-44-5555"},
			wantLevel: model.SeverityHigh,
			wantScore: 100,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := ScanPages(tc.pages)
			if report.RiskScore != tc.wantScore {
				t.Fatalf("score = %d, want %d", report.RiskScore, tc.wantScore)
			}
			if report.RiskLevel != tc.wantLevel {
				t.Fatalf("level = %s, want %s", report.RiskLevel, tc.wantLevel)
			}
		})
	}
}

func TestScanPagesReportsPerPageLocations(t *testing.T) {
	report := ScanPages([]string{"clean page", "SSN here: 123-45-6789"})
	if len(report.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(report.Findings))
	}
	if !strings.HasPrefix(report.Findings[0].Location, "Page 2") {
		t.Fatalf("location = %s, want Page 2", report.Findings[0].Location)
	}
}

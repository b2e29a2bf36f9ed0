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

import "github.com/darraghmahns/DES-Demo/src/model"

// seedRules is the hardcoded rule table, keyed by jurisdiction key.
// Seeded markets demonstrate the last-mile municipal problem: LA City
// requires a 9A Report where unincorporated LA County does not, and
// Missoula's "Connect on Sale" ordinance stops at the city limits.
var seedRules = map[string][]model.Requirement{
	// Montana — Helena (Lewis and Clark County)
	"MT:Lewis And Clark:Helena": {
		{
			Name:        "Water Rights Form 608",
			Code:        "DNRC-608",
			Category:    model.CategoryForm,
			Description: "Montana DNRC Form 608 — Ownership Update for water rights attached to the property. Required whenever water rights are conveyed with real property.",
			Authority:   "Montana DNRC",
			Fee:         "$100 (first right) + $20 each additional",
			URL:         "https://dnrc.mt.gov/water-rights/",
			Status:      model.StatusRequired,
			Notes:       "Submit to local Water Resources Regional Office with copy of recorded deed. Must be filed within 60 days of closing.",
		},
		{
			Name:        "Realty Transfer Certificate",
			Code:        "RTC",
			Category:    model.CategoryCertificate,
			Description: "Montana Realty Transfer Certificate filed with the county clerk and recorder at closing. Required for all real property transfers. Includes water rights disclosure (Boxes A-D).",
			Authority:   "Montana DOR",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Seller Property Disclosure",
			Code:        "SPD",
			Category:    model.CategoryDisclosure,
			Description: "Montana Seller Property Condition Disclosure Statement. Seller must disclose known material defects including water service, wastewater systems, structural issues, and environmental hazards.",
			Authority:   "Montana Legislature (MCA 70-9-313)",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Septic System Inspection",
			Category:    model.CategoryInspection,
			Description: "Inspection of private septic system if property is not connected to municipal sewer. Lewis and Clark County has more stringent regulations than state standards based on soil type and depth to groundwater.",
			Authority:   "Lewis and Clark County Health Dept",
			Fee:         "$150-$300",
			Status:      model.StatusLikelyRequired,
			Notes:       "Only required if property has a private septic system. County may require pressure dosed or level 2 treatment systems.",
		},
		{
			Name:        "Well Water Quality Test",
			Category:    model.CategoryInspection,
			Description: "Water quality test for private wells — bacteria, nitrates, and recommended broader sampling every 5 years.",
			Authority:   "Montana DEQ",
			Fee:         "$50-$150",
			Status:      model.StatusLikelyRequired,
			Notes:       "Required by most lenders; FHA/VA loans always require this.",
		},
		{
			Name:        "Radon Disclosure",
			Code:        "MCA 75-3-606",
			Category:    model.CategoryDisclosure,
			Description: "Montana Radon Control Act disclosure. Seller must disclose whether property has been tested for radon gas or radon progeny, and attach test results and evidence of any mitigation or treatment.",
			Authority:   "Montana DEQ — Radon Control Program",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Lead-Based Paint Disclosure",
			Code:        "42 USC §4852d",
			Category:    model.CategoryDisclosure,
			Description: "Federal requirement for homes built before 1978. Seller must disclose known lead-based paint hazards and provide EPA pamphlet. Buyer has 10-day inspection period.",
			Authority:   "EPA / HUD",
			Status:      model.StatusLikelyRequired,
			Notes:       "Only applies to homes built before 1978.",
		},
	},

	// Montana — Missoula (Missoula County)
	"MT:Missoula:Missoula": {
		{
			Name:        "Connect on Sale — Sewer Connection",
			Code:        "MMC 13.04.020",
			Category:    model.CategoryCertificate,
			Description: "City of Missoula 'Connect on Sale' ordinance. It is unlawful to sell, transfer, or convey any real property containing plumbed buildings with available public sewer until connected. 'Sewer available' = within 200 feet of public sewer system.",
			Authority:   "City of Missoula Public Works",
			URL:         "https://www.ci.missoula.mt.us/837/Connect-on-Sale",
			Status:      model.StatusRequired,
			Notes:       "Unique to Missoula City — not required outside city limits. City Engineer may grant a one-time 6-month delay with evidence of negotiated financial holdback.",
		},
		{
			Name:        "Sewer Line TV Inspection",
			Category:    model.CategoryInspection,
			Description: "TV inspection of sewer lateral by licensed 3rd-party contractor to verify connection to public sewer. Both property owner and contractor must sign the inspection form.",
			Authority:   "City of Missoula Public Works",
			Status:      model.StatusRequired,
			Notes:       "Required when connection cannot be verified with a ditch card.",
		},
		{
			Name:        "Water Rights Form 608",
			Code:        "DNRC-608",
			Category:    model.CategoryForm,
			Description: "Montana DNRC Form 608 — Ownership Update for water rights attached to the property. Required whenever water rights are conveyed with real property.",
			Authority:   "Montana DNRC",
			Fee:         "$100 (first right) + $20 each additional",
			URL:         "https://dnrc.mt.gov/water-rights/",
			Status:      model.StatusRequired,
			Notes:       "Submit to local Water Resources Regional Office with copy of recorded deed.",
		},
		{
			Name:        "Realty Transfer Certificate",
			Code:        "RTC",
			Category:    model.CategoryCertificate,
			Description: "Montana Realty Transfer Certificate filed with the county clerk and recorder at closing. Includes water rights disclosure (Boxes A-D).",
			Authority:   "Montana DOR",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Seller Property Disclosure",
			Code:        "SPD",
			Category:    model.CategoryDisclosure,
			Description: "Montana Seller Property Condition Disclosure Statement. Seller must disclose known material defects including water service, wastewater systems, structural issues, and environmental hazards.",
			Authority:   "Montana Legislature (MCA 70-9-313)",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Radon Disclosure",
			Code:        "MCA 75-3-606",
			Category:    model.CategoryDisclosure,
			Description: "Montana Radon Control Act disclosure. Seller must disclose whether property has been tested for radon gas or radon progeny, and attach test results and evidence of any mitigation or treatment.",
			Authority:   "Montana DEQ — Radon Control Program",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Lead-Based Paint Disclosure",
			Code:        "42 USC §4852d",
			Category:    model.CategoryDisclosure,
			Description: "Federal requirement for homes built before 1978. Seller must disclose known lead-based paint hazards and provide EPA pamphlet. Buyer has 10-day inspection period.",
			Authority:   "EPA / HUD",
			Status:      model.StatusLikelyRequired,
			Notes:       "Only applies to homes built before 1978.",
		},
	},

	// Montana — unincorporated Missoula County (no Connect on Sale / TV inspection)
	"MT:Missoula:": {
		{
			Name:        "Water Rights Form 608",
			Code:        "DNRC-608",
			Category:    model.CategoryForm,
			Description: "Montana DNRC Form 608 — Ownership Update for water rights attached to the property.",
			Authority:   "Montana DNRC",
			Fee:         "$100 (first right) + $20 each additional",
			URL:         "https://dnrc.mt.gov/water-rights/",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Realty Transfer Certificate",
			Code:        "RTC",
			Category:    model.CategoryCertificate,
			Description: "Montana Realty Transfer Certificate filed with the county clerk and recorder at closing.",
			Authority:   "Montana DOR",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Seller Property Disclosure",
			Code:        "SPD",
			Category:    model.CategoryDisclosure,
			Description: "Montana Seller Property Condition Disclosure Statement.",
			Authority:   "Montana Legislature (MCA 70-9-313)",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Radon Disclosure",
			Code:        "MCA 75-3-606",
			Category:    model.CategoryDisclosure,
			Description: "Montana Radon Control Act disclosure. Seller must disclose radon test results and mitigation if tested.",
			Authority:   "Montana DEQ — Radon Control Program",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Lead-Based Paint Disclosure",
			Code:        "42 USC §4852d",
			Category:    model.CategoryDisclosure,
			Description: "Federal requirement for homes built before 1978. Seller must disclose known lead-based paint hazards.",
			Authority:   "EPA / HUD",
			Status:      model.StatusLikelyRequired,
			Notes:       "Only applies to homes built before 1978.",
		},
	},

	// Montana statewide fallback
	"MT::": {
		{
			Name:        "Water Rights Form 608",
			Code:        "DNRC-608",
			Category:    model.CategoryForm,
			Description: "Montana DNRC Form 608 — Ownership Update for water rights attached to the property.",
			Authority:   "Montana DNRC",
			Fee:         "$100 (first right) + $20 each additional",
			URL:         "https://dnrc.mt.gov/water-rights/",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Realty Transfer Certificate",
			Code:        "RTC",
			Category:    model.CategoryCertificate,
			Description: "Montana Realty Transfer Certificate filed with the county clerk and recorder at closing.",
			Authority:   "Montana DOR",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Seller Property Disclosure",
			Code:        "SPD",
			Category:    model.CategoryDisclosure,
			Description: "Montana Seller Property Condition Disclosure Statement.",
			Authority:   "Montana Legislature (MCA 70-9-313)",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Radon Disclosure",
			Code:        "MCA 75-3-606",
			Category:    model.CategoryDisclosure,
			Description: "Montana Radon Control Act disclosure. Seller must disclose radon test results and mitigation if tested.",
			Authority:   "Montana DEQ — Radon Control Program",
			Status:      model.StatusRequired,
		},
	},

	// California — Los Angeles City
	"CA:Los Angeles:Los Angeles": {
		{
			Name:        "9A Report (Residential Property Report)",
			Code:        "9A/LADBS",
			Category:    model.CategoryForm,
			Description: "City of LA Department of Building and Safety report disclosing any open/unpermitted work, code violations, and zoning information. Required for all residential sales within LA City limits.",
			Authority:   "LA Dept of Building & Safety",
			Fee:         "$225",
			URL:         "https://www.ladbs.org/",
			Status:      model.StatusRequired,
			Notes:       "Unique to LA City — not required in unincorporated LA County.",
		},
		{
			Name:        "Low-Flow Plumbing Retrofit",
			Code:        "LAMC 94.1010",
			Category:    model.CategoryCertificate,
			Description: "Certificate of compliance for water-conserving plumbing fixtures. Seller must retrofit or certify compliance before transfer.",
			Authority:   "LA Dept of Water & Power",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Transfer Disclosure Statement",
			Code:        "TDS",
			Category:    model.CategoryDisclosure,
			Description: "California statutory disclosure of known material facts and defects affecting the property.",
			Authority:   "California Civil Code §1102",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Natural Hazard Disclosure",
			Code:        "NHD",
			Category:    model.CategoryDisclosure,
			Description: "Report identifying natural hazard zones (flood, fire, earthquake fault, seismic hazard, wildfire).",
			Authority:   "California Civil Code §1103",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Smoke & CO Detector Compliance",
			Code:        "CA HSC §13113.8",
			Category:    model.CategoryCertificate,
			Description: "Written statement of compliance confirming operable smoke and carbon monoxide detectors installed per state law.",
			Authority:   "California Health & Safety Code",
			Status:      model.StatusRequired,
		},
	},

	// California — unincorporated Los Angeles County (no 9A Report)
	"CA:Los Angeles:": {
		{
			Name:        "Transfer Disclosure Statement",
			Code:        "TDS",
			Category:    model.CategoryDisclosure,
			Description: "California statutory disclosure of known material facts and defects affecting the property.",
			Authority:   "California Civil Code §1102",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Natural Hazard Disclosure",
			Code:        "NHD",
			Category:    model.CategoryDisclosure,
			Description: "Report identifying natural hazard zones (flood, fire, earthquake fault, seismic hazard, wildfire).",
			Authority:   "California Civil Code §1103",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Smoke & CO Detector Compliance",
			Code:        "CA HSC §13113.8",
			Category:    model.CategoryCertificate,
			Description: "Written statement of compliance confirming operable smoke and carbon monoxide detectors installed per state law.",
			Authority:   "California Health & Safety Code",
			Status:      model.StatusRequired,
		},
	},

	// California statewide fallback
	"CA::": {
		{
			Name:        "Transfer Disclosure Statement",
			Code:        "TDS",
			Category:    model.CategoryDisclosure,
			Description: "California statutory disclosure of known material facts and defects affecting the property.",
			Authority:   "California Civil Code §1102",
			Status:      model.StatusRequired,
		},
		{
			Name:        "Natural Hazard Disclosure",
			Code:        "NHD",
			Category:    model.CategoryDisclosure,
			Description: "Report identifying natural hazard zones.",
			Authority:   "California Civil Code §1103",
			Status:      model.StatusRequired,
		},
	},
}

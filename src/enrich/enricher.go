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

// Package enrich supplies public-record context for real-estate extractions:
// parcel identity, lot size, and assessment data keyed off the property
// address.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/darraghmahns/DES-Demo/src/model"
)

// Enricher looks up parcel data for a property address. Lookups are
// blocking I/O against an external cadastral source.
type Enricher interface {
	Enrich(ctx context.Context, data map[string]any) (*model.ParcelInfo, error)
}

// StaticEnricher serves a small seeded parcel table for the demo markets.
// An address outside the table yields a nil parcel, which the pipeline
// reports as "no enrichment available" rather than an error.
type StaticEnricher struct {
	parcels map[string]model.ParcelInfo
}

func NewStaticEnricher() *StaticEnricher {
	return &StaticEnricher{
		parcels: map[string]model.ParcelInfo{
			"helena:mt": {
				ParcelID:      "05-1888-30-1-01-12-0000",
				LotSizeAcres:  0.21,
				YearBuilt:     1972,
				AssessedValue: 402300,
				LandUse:       "Residential",
				Source:        "montana-cadastral",
			},
			"missoula:mt": {
				ParcelID:      "04-2200-14-2-07-05-0000",
				LotSizeAcres:  0.17,
				YearBuilt:     1958,
				AssessedValue: 451900,
				LandUse:       "Residential",
				Source:        "montana-cadastral",
			},
			"billings:mt": {
				ParcelID:      "03-0915-22-3-04-18-0000",
				LotSizeAcres:  0.25,
				YearBuilt:     1994,
				AssessedValue: 468100,
				LandUse:       "Residential",
				Source:        "montana-cadastral",
			},
			"los angeles:ca": {
				ParcelID:      "5546-030-022",
				LotSizeAcres:  0.14,
				YearBuilt:     1941,
				AssessedValue: 987400,
				LandUse:       "Single Family Residence",
				Source:        "la-county-assessor",
			},
		},
	}
}

func (e *StaticEnricher) Enrich(_ context.Context, data map[string]any) (*model.ParcelInfo, error) {
	addr, _ := data["property_address"].(map[string]any)
	if addr == nil {
		return nil, nil
	}
	city, _ := addr["city"].(string)
	state, _ := addr["state_or_province"].(string)
	if city == "" || state == "" {
		return nil, nil
	}

	key := fmt.Sprintf("%s:%s", strings.ToLower(strings.TrimSpace(city)), strings.ToLower(strings.TrimSpace(state)))
	if parcel, ok := e.parcels[key]; ok {
		return &parcel, nil
	}
	return nil, nil
}

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
	"fmt"
	"strings"

	"github.com/darraghmahns/DES-Demo/src/model"
)

// usStateAbbreviations maps full US state names to postal abbreviations.
var usStateAbbreviations = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
}

// Jurisdiction is the resolved identity of an address: a canonical
// "ST:County:City" key plus display metadata.
type Jurisdiction struct {
	Key     string
	Display string
	Type    model.JurisdictionType
	State   string
	County  string
	City    string
}

// Resolve normalizes free-form state/county/city text into a canonical
// jurisdiction. Full state names collapse to postal abbreviations, a
// trailing "County" word is stripped, and county/city are title-cased.
// Missing segments stay empty in the key.
func Resolve(state, county, city string) Jurisdiction {
	s := normalizeState(state)
	co := titleCase(stripCountySuffix(county))
	ci := titleCase(city)

	j := Jurisdiction{
		Key:    fmt.Sprintf("%s:%s:%s", s, co, ci),
		State:  s,
		County: co,
		City:   ci,
	}

	switch {
	case ci != "":
		sep := ""
		if co != "" {
			sep = co + " County, "
		}
		j.Display = fmt.Sprintf("%s, %s%s", ci, sep, s)
		j.Type = model.JurisdictionCity
	case co != "":
		j.Display = fmt.Sprintf("%s County, %s (unincorporated)", co, s)
		j.Type = model.JurisdictionCounty
	default:
		j.Display = fmt.Sprintf("%s (statewide)", s)
		j.Type = model.JurisdictionState
	}
	return j
}

// CascadeKeys lists lookup keys from most to least specific: city, county,
// state. Each key pairs with the level its results are tagged with.
func (j Jurisdiction) CascadeKeys() []CascadeLevel {
	var levels []CascadeLevel
	if j.City != "" {
		levels = append(levels, CascadeLevel{Key: j.Key, Level: model.JurisdictionCity})
	}
	if j.County != "" {
		levels = append(levels, CascadeLevel{
			Key:   fmt.Sprintf("%s:%s:", j.State, j.County),
			Level: model.JurisdictionCounty,
		})
	}
	if j.State != "" {
		levels = append(levels, CascadeLevel{
			Key:   fmt.Sprintf("%s::", j.State),
			Level: model.JurisdictionState,
		})
	}
	return levels
}

// CascadeLevel is one tier of the city → county → state lookup.
type CascadeLevel struct {
	Key   string
	Level model.JurisdictionType
}

func normalizeState(state string) string {
	s := strings.TrimSpace(state)
	if len(s) == 2 {
		return strings.ToUpper(s)
	}
	if abbr, ok := usStateAbbreviations[strings.ToLower(s)]; ok {
		return abbr
	}
	return strings.ToUpper(s)
}

func stripCountySuffix(county string) string {
	c := strings.TrimSpace(county)
	lower := strings.ToLower(c)
	if strings.HasSuffix(lower, " county") {
		return strings.TrimSpace(c[:len(c)-len(" county")])
	}
	return c
}

// titleCase upper-cases the first rune of each space-separated word, like
// the classic str.title() normalization the rule keys were built with.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

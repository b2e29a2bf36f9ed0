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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/darraghmahns/DES-Demo/src/model"
)

// PropertyAddress mirrors the Loop Details "Property Address" section.
type PropertyAddress struct {
	StreetNumber    string `json:"street_number"`
	StreetName      string `json:"street_name"`
	UnitNumber      string `json:"unit_number,omitempty"`
	City            string `json:"city"`
	StateOrProvince string `json:"state_or_province"`
	PostalCode      string `json:"postal_code"`
	Country         string `json:"country,omitempty"`
	County          string `json:"county,omitempty"`
	MLSNumber       string `json:"mls_number,omitempty"`
	ParcelTaxID     string `json:"parcel_tax_id,omitempty"`
}

type Financials struct {
	PurchasePrice       float64 `json:"purchase_price"`
	EarnestMoneyAmount  float64 `json:"earnest_money_amount,omitempty"`
	EarnestMoneyHeldBy  string  `json:"earnest_money_held_by,omitempty"`
	SaleCommissionRate  string  `json:"sale_commission_rate,omitempty"`
	SaleCommissionTotal float64 `json:"sale_commission_total,omitempty"`
}

type Participant struct {
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

type ContractDates struct {
	ContractAgreementDate string `json:"contract_agreement_date,omitempty"`
	ClosingDate           string `json:"closing_date,omitempty"`
	OfferDate             string `json:"offer_date,omitempty"`
	OfferExpirationDate   string `json:"offer_expiration_date,omitempty"`
	InspectionDate        string `json:"inspection_date,omitempty"`
}

// LoopDetails is the real_estate schema: the complete transaction record
// extracted from a purchase agreement.
type LoopDetails struct {
	LoopName          string          `json:"loop_name"`
	TransactionType   string          `json:"transaction_type,omitempty"`
	TransactionStatus string          `json:"transaction_status,omitempty"`
	PropertyAddress   PropertyAddress `json:"property_address"`
	Financials        Financials      `json:"financials"`
	ContractDates     ContractDates   `json:"contract_dates"`
	Participants      []Participant   `json:"participants"`
}

// RequesterInfo mirrors the FOIA.gov requester block.
type RequesterInfo struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	AddressStreet string `json:"address_street,omitempty"`
	AddressCity   string `json:"address_city,omitempty"`
	AddressState  string `json:"address_state,omitempty"`
	AddressZip    string `json:"address_zip,omitempty"`
	Organization  string `json:"organization,omitempty"`
}

// FOIARequest is the gov schema.
type FOIARequest struct {
	Requester           RequesterInfo `json:"requester"`
	RequestDescription  string        `json:"request_description"`
	RequestCategory     string        `json:"request_category,omitempty"`
	Agency              string        `json:"agency"`
	AgencyComponentName string        `json:"agency_component_name,omitempty"`
	FeeAmountWilling    float64       `json:"fee_amount_willing,omitempty"`
	FeeWaiver           bool          `json:"fee_waiver,omitempty"`
	ExpeditedProcessing bool          `json:"expedited_processing,omitempty"`
	DateRangeStart      string        `json:"date_range_start,omitempty"`
	DateRangeEnd        string        `json:"date_range_end,omitempty"`
}

// ValidateStrict decodes raw against the mode's schema with unknown fields
// rejected and required fields enforced. On success it returns the data
// round-tripped through the typed schema.
func ValidateStrict(raw map[string]any, mode model.Mode) (map[string]any, []string) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, []string{fmt.Sprintf("encode: %v", err)}
	}

	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.DisallowUnknownFields()

	var errs []string
	switch mode {
	case model.ModeRealEstate:
		var details LoopDetails
		if err := dec.Decode(&details); err != nil {
			return nil, []string{err.Error()}
		}
		if details.LoopName == "" {
			errs = append(errs, "loop_name: field required")
		}
		if details.PropertyAddress.City == "" {
			errs = append(errs, "property_address.city: field required")
		}
		if details.PropertyAddress.StateOrProvince == "" {
			errs = append(errs, "property_address.state_or_province: field required")
		}
		if details.Financials.PurchasePrice <= 0 {
			errs = append(errs, "financials.purchase_price: must be a positive amount")
		}
		if len(details.Participants) == 0 {
			errs = append(errs, "participants: at least one participant required")
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return roundTrip(details), nil

	case model.ModeGov:
		var req FOIARequest
		if err := dec.Decode(&req); err != nil {
			return nil, []string{err.Error()}
		}
		if req.Requester.FirstName == "" || req.Requester.LastName == "" {
			errs = append(errs, "requester: first_name and last_name required")
		}
		if req.RequestDescription == "" {
			errs = append(errs, "request_description: field required")
		}
		if req.Agency == "" {
			errs = append(errs, "agency: field required")
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return roundTrip(req), nil
	}
	return nil, []string{fmt.Sprintf("no schema for mode %q", mode)}
}

// ValidateLenient re-decodes raw with unknown fields tolerated, no
// required-field checks, and mistyped fields skipped, recovering whatever
// partial data fits the schema. It only fails when the payload is not
// schema-shaped at all.
func ValidateLenient(raw map[string]any, mode model.Mode) (map[string]any, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	switch mode {
	case model.ModeRealEstate:
		var details LoopDetails
		if err := lenientUnmarshal(encoded, &details); err != nil {
			return nil, err
		}
		return roundTrip(details), nil
	case model.ModeGov:
		var req FOIARequest
		if err := lenientUnmarshal(encoded, &req); err != nil {
			return nil, err
		}
		return roundTrip(req), nil
	}
	return nil, fmt.Errorf("no schema for mode %q", mode)
}

// lenientUnmarshal keeps the fields encoding/json could populate. Unmarshal
// skips mistyped fields and finishes the rest, reporting the first type
// error; that partial decode is exactly what lenient mode wants.
func lenientUnmarshal(encoded []byte, v any) error {
	err := json.Unmarshal(encoded, v)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return err
}

func roundTrip(v any) map[string]any {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil
	}
	return out
}

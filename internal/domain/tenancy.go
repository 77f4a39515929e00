package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Text is a form value. Wizards send amounts and days either as JSON strings
// or numbers; both are kept in their literal form. A null value reads as
// "None", the way the pack documents have always printed it.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = nullText
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(data)
	}
	return nil
}

const nullText Text = "None"

func (t Text) String() string { return string(t) }

// Flag follows JSON truthiness: false, null, 0, "", [] and {} are false.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Flag(truthy(v))
	return nil
}

type Property struct {
	HouseNumber Text `json:"houseNumber"`
	Street      Text `json:"street"`
	City        Text `json:"city"`
	Postcode    Text `json:"postcode"`
}

// Address renders the single-line property address used across the pack.
func (p Property) Address() string {
	return p.HouseNumber.String() + " " + p.Street.String() + ", " + p.City.String() + ", " + p.Postcode.String()
}

// Party is a landlord or a tenant.
type Party struct {
	FullName Text `json:"fullName"`
	Address  Text `json:"address"`
	Phone    Text `json:"phone"`
	Email    Text `json:"email"`
}

type RentalTerms struct {
	AgreementDate    Text `json:"agreementDate"`
	RentAmount       Text `json:"rentAmount"`
	PaymentFrequency Text `json:"paymentFrequency"`
	PaymentDay       Text `json:"paymentDay"`
	FirstPaymentDate Text `json:"firstPaymentDate"`
	DepositAmount    Text `json:"depositAmount"`
	TenancyLength    Text `json:"tenancyLength"`
	StartDate        Text `json:"startDate"`
}

// Monthly reports whether rent falls due on a day of each month.
func (r RentalTerms) Monthly() bool {
	return r.PaymentFrequency == "month"
}

type DocumentStatus struct {
	HasDocument Flag `json:"hasDocument"`
}

// DocumentKey names a supporting certificate in the request.
type DocumentKey string

const (
	DocumentEPC         DocumentKey = "epc"
	DocumentGasSafety   DocumentKey = "gasSafety"
	DocumentEICR        DocumentKey = "eicr"
	DocumentRightToRent DocumentKey = "rightToRent"
	DocumentDeposit     DocumentKey = "deposit"
)

// DocumentKeys lists the supporting certificates in pack order.
var DocumentKeys = []DocumentKey{
	DocumentEPC,
	DocumentGasSafety,
	DocumentEICR,
	DocumentRightToRent,
	DocumentDeposit,
}

// TenancyRequest is the payload of POST /generate-tenancy-pack.
type TenancyRequest struct {
	Property    Property                       `json:"property"`
	Landlord    Party                          `json:"landlord"`
	Tenants     []Party                        `json:"tenants"`
	RentalTerms RentalTerms                    `json:"rentalTerms"`
	Documents   map[DocumentKey]DocumentStatus `json:"documents"`
}

// Has reports whether the landlord acknowledged holding the document.
func (r *TenancyRequest) Has(key DocumentKey) bool {
	return bool(r.Documents[key].HasDocument)
}

// TenantNames returns tenant names in payload order.
func (r *TenancyRequest) TenantNames() []string {
	names := make([]string, 0, len(r.Tenants))
	for _, t := range r.Tenants {
		names = append(names, t.FullName.String())
	}
	return names
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// isBlank reports whether a decoded body carries no data at all.
func isBlank(raw []byte) bool {
	return len(strings.TrimSpace(string(raw))) == 0
}

package valuation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/godilite/valuation-server/internal/industry"
)

// Tier is the product plan an assessment was submitted under.
type Tier string

const (
	TierFree   Tier = "free"
	TierGrowth Tier = "growth"
)

// ParseTier accepts "free", "growth" and the "paid" alias. Anything else
// yields "".
func ParseTier(s string) Tier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free":
		return TierFree
	case "growth", "paid":
		return TierGrowth
	default:
		return ""
	}
}

// Amount is a currency figure decoded leniently: JSON numbers, numeric
// strings ("$1,250.50") and null are accepted; anything unparseable is 0.
type Amount float64

// UnmarshalJSON never fails; bad values decode as 0.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount(parseAmount(data))
	return nil
}

func parseAmount(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0
	}

	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
	} else {
		s = string(data)
	}
	return ParseAmount(s)
}

// ParseAmount parses s as a float after stripping whitespace, "$" and
// thousands separators. Failures, NaN and infinities yield 0.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Contact identifies the person submitting the assessment.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Company is descriptive metadata about the business being valued.
type Company struct {
	Name            string `json:"name,omitempty"`
	YearsInBusiness Amount `json:"years_in_business,omitempty"`
	EmployeeCount   Amount `json:"employee_count,omitempty"`
	AnnualRevenue   Amount `json:"annual_revenue,omitempty"`
}

// Narrative holds free-text answers passed through to the report layer.
type Narrative struct {
	BusinessDescription string `json:"business_description,omitempty"`
	GrowthOpportunities string `json:"growth_opportunities,omitempty"`
	Challenges          string `json:"challenges,omitempty"`
	AdditionalNotes     string `json:"additional_notes,omitempty"`
}

// RawFinancials mirrors FinancialInputs with lenient amounts.
type RawFinancials struct {
	NetIncome       Amount `json:"net_income"`
	InterestExpense Amount `json:"interest_expense"`
	TaxExpense      Amount `json:"tax_expense"`
	Depreciation    Amount `json:"depreciation"`
	Amortization    Amount `json:"amortization"`
}

// RawAdjustments mirrors Adjustments with lenient amounts.
type RawAdjustments struct {
	OwnerSalaryAddback Amount `json:"owner_salary_addback"`
	PersonalExpenses   Amount `json:"personal_expenses"`
	OneTimeExpenses    Amount `json:"one_time_expenses"`
	OtherAdjustments   Amount `json:"other_adjustments"`
	Notes              string `json:"adjustment_notes,omitempty"`
}

// RawAssessmentInput is the submission document as supplied by callers.
type RawAssessmentInput struct {
	Tier         string                     `json:"tier,omitempty"`
	Contact      Contact                    `json:"contact"`
	Company      Company                    `json:"company"`
	Financials   RawFinancials              `json:"financials"`
	Adjustments  RawAdjustments             `json:"adjustments"`
	ValueDrivers map[string]json.RawMessage `json:"value_drivers,omitempty"`
	Industry     industry.Context           `json:"industry"`
	Narrative    Narrative                  `json:"narrative"`
}

// ParseRawInput decodes a JSON submission document.
func ParseRawInput(data []byte) (RawAssessmentInput, error) {
	var in RawAssessmentInput
	if err := json.Unmarshal(data, &in); err != nil {
		return RawAssessmentInput{}, fmt.Errorf("%w: decode input: %v", ErrMalformedInput, err)
	}
	return in, nil
}

// FinancialInputs returns the coerced financial lines.
func (in RawAssessmentInput) FinancialInputs() FinancialInputs {
	f := in.Financials
	return FinancialInputs{
		NetIncome:       float64(f.NetIncome),
		InterestExpense: float64(f.InterestExpense),
		TaxExpense:      float64(f.TaxExpense),
		Depreciation:    float64(f.Depreciation),
		Amortization:    float64(f.Amortization),
	}
}

// AdjustmentInputs returns the coerced add-backs.
func (in RawAssessmentInput) AdjustmentInputs() Adjustments {
	a := in.Adjustments
	return Adjustments{
		OwnerSalaryAddback: float64(a.OwnerSalaryAddback),
		PersonalExpenses:   float64(a.PersonalExpenses),
		OneTimeExpenses:    float64(a.OneTimeExpenses),
		OtherAdjustments:   float64(a.OtherAdjustments),
		Notes:              a.Notes,
	}
}

// DriverRatings detects the rating shape and returns the tagged union.
// Unknown driver names and null/empty values are dropped. A mix of shapes,
// or values of any other JSON type, is ErrMalformedInput.
func (in RawAssessmentInput) DriverRatings() (DriverRatings, error) {
	grades := make(map[Driver]Grade)
	answers := make(map[Driver]int)
	// Only an explicit free tier reads numeric strings as letter grades.
	numericAnswers := ParseTier(in.Tier) != TierFree

	for name, raw := range in.ValueDrivers {
		d, ok := ParseDriver(name)
		if !ok {
			continue
		}

		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}

		switch raw[0] {
		case '"':
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return DriverRatings{}, fmt.Errorf("%w: driver %s: %v", ErrMalformedInput, name, err)
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if numericAnswers {
				if v, err := strconv.ParseFloat(s, 64); err == nil {
					if idx, ok := roundAnswer(v); ok {
						answers[d] = idx
						continue
					}
				}
			}
			grades[d] = ParseGrade(s)
		default:
			var v float64
			if err := json.Unmarshal(raw, &v); err != nil {
				return DriverRatings{}, fmt.Errorf("%w: driver %s must be a letter grade or answer index, got %s", ErrMalformedInput, name, raw)
			}
			idx, ok := roundAnswer(v)
			if !ok {
				return DriverRatings{}, fmt.Errorf("%w: driver %s answer index %s", ErrMalformedInput, name, raw)
			}
			answers[d] = idx
		}
	}

	switch {
	case len(grades) > 0 && len(answers) > 0:
		return DriverRatings{}, fmt.Errorf("%w: value drivers mix letter grades and answer indices", ErrMalformedInput)
	case len(answers) > 0:
		return WeightedAnswers(answers), nil
	default:
		return LetterGrades(grades), nil
	}
}

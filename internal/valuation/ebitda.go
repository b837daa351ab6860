package valuation

// FinancialInputs are the period-normalized income-statement lines.
type FinancialInputs struct {
	NetIncome       float64 `json:"net_income"`
	InterestExpense float64 `json:"interest_expense"`
	TaxExpense      float64 `json:"tax_expense"`
	Depreciation    float64 `json:"depreciation"`
	Amortization    float64 `json:"amortization"`
}

// Adjustments are normalizing add-backs applied on top of base EBITDA.
type Adjustments struct {
	OwnerSalaryAddback float64 `json:"owner_salary_addback"`
	PersonalExpenses   float64 `json:"personal_expenses"`
	OneTimeExpenses    float64 `json:"one_time_expenses"`
	OtherAdjustments   float64 `json:"other_adjustments"`
	Notes              string  `json:"adjustment_notes,omitempty"`
}

// BaseEBITDA is net income plus interest, taxes, depreciation and amortization.
func BaseEBITDA(in FinancialInputs) float64 {
	return in.NetIncome + in.InterestExpense + in.TaxExpense + in.Depreciation + in.Amortization
}

// AdjustedEBITDA adds the four add-backs to base. The result may be zero or
// negative.
func AdjustedEBITDA(base float64, adj Adjustments) float64 {
	return base + adj.OwnerSalaryAddback + adj.PersonalExpenses + adj.OneTimeExpenses + adj.OtherAdjustments
}

package calc

import (
	"math"
	"strings"
)

const (
	// HomeLoanRate is the fixed annual rate (percent) used to size eligibility.
	HomeLoanRate = 8.75

	minAge        = 21
	retirementAge = 65

	// Share of net income that may go to the installment.
	foir = 0.5
	// Self-employed applicants are sized at 85% of a salaried applicant.
	selfEmployedFactor = 0.85
)

// Rejection reasons.
const (
	ReasonAge          = "Age not eligible"
	ReasonTenure       = "Tenure exceeds retirement age"
	ReasonInsufficient = "Insufficient income"
)

// EligibilityInput carries the answers collected by the loan flow.
type EligibilityInput struct {
	LoanType        string
	Age             int
	EmploymentType  string
	MonthlyIncome   float64
	MonthlyExpenses float64
	TenureYears     int
}

// EligibilityResult is the structured output of the eligibility tool.
// When Eligible is false only Reason is meaningful.
type EligibilityResult struct {
	Eligible       bool   `json:"eligible"`
	Reason         string `json:"reason,omitempty"`
	EligibleAmount int64  `json:"eligible_amount,omitempty"`
	NetIncome      int64  `json:"net_income,omitempty"`
	EligibleEMI    int64  `json:"eligible_emi,omitempty"`
	TenureYears    int    `json:"tenure_years,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`
}

// Eligibility applies the home-loan rules: age band, retirement cap on tenure,
// positive net income, then sizes the loan as the principal that half the net
// income (less for the self-employed) can service at HomeLoanRate.
func Eligibility(in EligibilityInput) *EligibilityResult {
	if in.Age < minAge || in.Age > retirementAge {
		return &EligibilityResult{Reason: ReasonAge}
	}
	if in.TenureYears > retirementAge-in.Age {
		return &EligibilityResult{Reason: ReasonTenure}
	}

	net := in.MonthlyIncome - in.MonthlyExpenses
	if net <= 0 {
		return &EligibilityResult{Reason: ReasonInsufficient}
	}

	multiplier := 1.0
	if strings.Contains(strings.ToLower(in.EmploymentType), "self") {
		multiplier = selfEmployedFactor
	}
	emi := net * foir * multiplier

	amount := principalFor(emi, HomeLoanRate/(12*100), in.TenureYears*12)

	return &EligibilityResult{
		Eligible:       true,
		EligibleAmount: roundInt(amount),
		NetIncome:      roundInt(net),
		EligibleEMI:    roundInt(emi),
		TenureYears:    in.TenureYears,
		EmploymentType: in.EmploymentType,
	}
}

// roundInt rounds half to even, matching how the published figures were produced.
func roundInt(x float64) int64 {
	return int64(math.RoundToEven(x))
}

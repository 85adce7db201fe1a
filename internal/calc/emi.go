// Package calc implements the deterministic loan arithmetic: EMI with an
// amortization preview, and home-loan eligibility.
package calc

import "math"

// PreviewMonths is how many amortization rows are produced.
const PreviewMonths = 6

// ScheduleRow is one month of the amortization preview.
type ScheduleRow struct {
	Month    int     `json:"month"`
	Opening  float64 `json:"opening"`
	Interest float64 `json:"interest"`
	EMI      float64 `json:"emi"`
	Closing  float64 `json:"closing"`
}

// EMIResult is the structured output of the EMI tool.
// Either Error is set or every other field is.
type EMIResult struct {
	Principal       float64       `json:"principal,omitempty"`
	Rate            float64       `json:"rate,omitempty"`
	TenureMonths    int           `json:"tenure_months,omitempty"`
	EMI             float64       `json:"emi,omitempty"`
	TotalPayment    float64       `json:"total_payment,omitempty"`
	TotalInterest   float64       `json:"total_interest,omitempty"`
	SchedulePreview []ScheduleRow `json:"schedule_preview,omitempty"`
	Error           string        `json:"error,omitempty"`
	// Field names the input that failed validation.
	Field string `json:"field,omitempty"`
}

// OK reports whether the calculation succeeded.
func (r *EMIResult) OK() bool { return r.Error == "" }

// EMI computes the level monthly installment for principal p at annual
// rate (percent) over n months, along with total payment and total interest.
// All three are rounded to paise.
func EMI(p, annualRate float64, n int) (emi, totalPayment, totalInterest float64) {
	raw := annuity(p, annualRate/100/12, n)
	total := raw * float64(n)
	return Round2(raw), Round2(total), Round2(total - p)
}

// Schedule returns the first rows of the amortization table.
//
// The installment is the rounded EMI and the running balance is carried at
// full precision; each row is rounded for display. This keeps the output
// identical to the bank's published calculator, including the drift that the
// rounded installment introduces month to month.
func Schedule(p, annualRate float64, n, rows int) []ScheduleRow {
	r := annualRate / 100 / 12
	emi, _, _ := EMI(p, annualRate, n)

	out := make([]ScheduleRow, 0, rows)
	balance := p
	for month := 1; month <= rows; month++ {
		interest := balance * r
		closing := balance - (emi - interest)
		out = append(out, ScheduleRow{
			Month:    month,
			Opening:  Round2(balance),
			Interest: Round2(interest),
			EMI:      emi,
			Closing:  Round2(closing),
		})
		balance = closing
	}
	return out
}

// CalculateEMI validates the inputs and produces the full EMI result.
// Invalid inputs yield a result with Error set rather than a Go error.
func CalculateEMI(principal, rate float64, tenureMonths int) *EMIResult {
	switch {
	case principal <= 0:
		return &EMIResult{Error: "Principal must be greater than zero.", Field: "principal"}
	case rate <= 0:
		return &EMIResult{Error: "Rate must be greater than zero.", Field: "rate"}
	case tenureMonths <= 0:
		return &EMIResult{Error: "Tenure must be greater than zero.", Field: "tenure_months"}
	}

	if f := math.Pow(1+rate/100/12, float64(tenureMonths)); f == 1 || !finite(f) || !finite(Round2(rate)) {
		return &EMIResult{Error: "Rate is outside the range that can be calculated.", Field: "rate"}
	}
	emi, total, interest := EMI(principal, rate, tenureMonths)
	res := &EMIResult{
		Principal:       Round2(principal),
		Rate:            Round2(rate),
		TenureMonths:    tenureMonths,
		EMI:             emi,
		TotalPayment:    total,
		TotalInterest:   interest,
		SchedulePreview: Schedule(principal, rate, tenureMonths, PreviewMonths),
	}
	if !res.isFinite() {
		return &EMIResult{Error: "Principal is too large to calculate.", Field: "principal"}
	}
	return res
}

func (r *EMIResult) isFinite() bool {
	if !finite(r.Principal) || !finite(r.EMI) || !finite(r.TotalPayment) || !finite(r.TotalInterest) {
		return false
	}
	for _, row := range r.SchedulePreview {
		if !finite(row.Opening) || !finite(row.Interest) || !finite(row.Closing) {
			return false
		}
	}
	return true
}

// annuity is the level payment for principal p at periodic rate r over n periods.
func annuity(p, r float64, n int) float64 {
	f := math.Pow(1+r, float64(n))
	return p * r * f / (f - 1)
}

// principalFor inverts annuity: the principal a level payment can service.
func principalFor(payment, r float64, n int) float64 {
	f := math.Pow(1+r, float64(n))
	return payment * (f - 1) / (r * f)
}

// Round2 rounds to two decimal places, half to even.
func Round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

package flow

import (
	"fmt"
	"strings"

	"github.com/banktalk/banktalk/internal/calc"
	"github.com/dustin/go-humanize"
)

func rupees(x float64) string {
	return "₹" + humanize.CommafWithDigits(x, 2)
}

// FormatEMI renders an EMI result as markdown.
func FormatEMI(r *calc.EMIResult) string {
	if !r.OK() {
		return "Error: " + r.Error
	}

	var b strings.Builder
	b.WriteString("Here is your EMI calculation:\n\n")
	fmt.Fprintf(&b, "- Loan Amount: %s\n", rupees(r.Principal))
	fmt.Fprintf(&b, "- Interest Rate: %s%%\n", humanize.Ftoa(r.Rate))
	fmt.Fprintf(&b, "- Tenure: %d months\n\n", r.TenureMonths)
	fmt.Fprintf(&b, "- EMI: %s\n", rupees(r.EMI))
	fmt.Fprintf(&b, "- Total Interest: %s\n", rupees(r.TotalInterest))
	fmt.Fprintf(&b, "- Total Payment: %s\n", rupees(r.TotalPayment))

	if len(r.SchedulePreview) > 0 {
		b.WriteString("\nAmortization Schedule (First Few Months):\n\n")
		b.WriteString("| Month | Opening | Interest | EMI | Closing |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, row := range r.SchedulePreview {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
				row.Month, rupees(row.Opening), rupees(row.Interest), rupees(row.EMI), rupees(row.Closing))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatEligibility renders an eligibility result as markdown.
func FormatEligibility(r *calc.EligibilityResult) string {
	if !r.Eligible {
		return "You are not eligible for a home loan.\nReason: " + r.Reason
	}

	return fmt.Sprintf(
		"You may be eligible for a home loan of approximately ₹%s.\n"+
			"Net Monthly Income: ₹%s\n"+
			"Eligible EMI: ₹%s\n"+
			"Tenure: %d years\n\n"+
			"**To change loan eligibility parameters, please type 'reset' or 'clear loan'.**",
		humanize.Comma(r.EligibleAmount),
		humanize.Comma(r.NetIncome),
		humanize.Comma(r.EligibleEMI),
		r.TenureYears,
	)
}

package flow

var questions = map[string]string{
	"principal":     "What loan amount should I use for EMI calculation?",
	"rate":          "What annual interest rate should I use?",
	"tenure_months": "What should be the loan tenure?",

	"loan_type":        "Is this a fresh home loan or a balance transfer?",
	"age":              "What is your age?",
	"employment_type":  "Are you salaried or self-employed?",
	"monthly_income":   "What is your monthly income?",
	"monthly_expenses": "What are your monthly expenses including EMIs?",
	"tenure_years":     "For how many years do you want the loan?",
}

// Question returns the prompt shown when field is the next one needed.
func Question(field string) string {
	if q, ok := questions[field]; ok {
		return q
	}
	return "Please provide the required information."
}

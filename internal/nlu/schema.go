package nlu

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// FieldType is the semantic type a field's value is coerced to.
type FieldType int

const (
	Number  FieldType = iota // float64
	Integer                  // int, fractional values truncated
	Enum                     // one of Field.Values
)

// Field describes one slot the oracle may fill.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Values      []string // allowed values for Enum fields
}

// Schema is an ordered set of fields. Order is the order questions are asked in.
type Schema struct {
	Topic  string
	Fields []Field
	Rules  []string // extra conversion rules stated to the oracle
}

// EMISchema holds the fields of the EMI calculator.
var EMISchema = &Schema{
	Topic: "EMI-related",
	Fields: []Field{
		{Name: "principal", Type: Number, Description: "loan amount (number)"},
		{Name: "rate", Type: Number, Description: "annual interest rate percentage"},
		{Name: "tenure_months", Type: Integer, Description: "loan tenure in months (integer)"},
	},
	Rules: []string{
		"If tenure is given in years, convert to months.",
		"If tenure is already in months, use as is.",
	},
}

// LoanSchema holds the fields of the home-loan eligibility check.
var LoanSchema = &Schema{
	Topic: "loan-related",
	Fields: []Field{
		{Name: "loan_type", Type: Enum, Description: `"fresh" or "balance_transfer"`, Values: []string{"fresh", "balance_transfer"}},
		{Name: "age", Type: Integer, Description: "integer (years, between 1 and 100)"},
		{Name: "employment_type", Type: Enum, Description: `"salaried" or "self_employed"`, Values: []string{"salaried", "self_employed"}},
		{Name: "monthly_income", Type: Number, Description: "number"},
		{Name: "monthly_expenses", Type: Number, Description: "number (includes existing EMIs)"},
		{Name: "tenure_years", Type: Integer, Description: "integer"},
	},
}

// Names returns the field names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Field looks a field up by name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s *Schema) extractionPrompt() string {
	var b strings.Builder
	b.WriteString("You are a strict information extraction engine.\n\n")
	fmt.Fprintf(&b, "Extract %s values ONLY if explicitly present.\n", s.Topic)
	b.WriteString("Do NOT guess or infer missing information.\n\nFields:\n")
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Description)
	}
	if len(s.Rules) > 0 {
		b.WriteString("\nConversion rules:\n")
		for _, r := range s.Rules {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	b.WriteString("\nReturn ONLY valid JSON:\n{\n")
	for i, f := range s.Fields {
		sep := ","
		if i == len(s.Fields)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  %q: null%s\n", f.Name, sep)
	}
	b.WriteString("}\n")
	return b.String()
}

// Coerce converts a raw oracle value to the field's type.
// Anything that does not convert cleanly is reported as absent.
func (f Field) Coerce(raw any) (any, bool) {
	switch f.Type {
	case Number:
		return toFloat(raw)
	case Integer:
		return toInt(raw)
	case Enum:
		s, ok := raw.(string)
		if !ok {
			return nil, false
		}
		v := normalizeEnum(s)
		if !slices.Contains(f.Values, v) {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

func toFloat(raw any) (any, bool) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false
		}
		n = f
	default:
		return nil, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, false
	}
	return n, true
}

func toInt(raw any) (any, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return int(f), true
	}
	return nil, false
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

package banktalk_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/banktalk/banktalk"
	"github.com/banktalk/banktalk/internal/calc"
	"github.com/banktalk/banktalk/pkg/ports"
)

// ExampleAssistant_Chat runs a complete EMI request in one message against a
// canned oracle. In production the oracle is an LLM (see pkg/adapters/eino).
func ExampleAssistant_Chat() {
	oracle := ports.OracleFunc(func(ctx context.Context, system, user string) (string, error) {
		if strings.Contains(system, "intent routing") {
			return `{"action": "START_EMI"}`, nil
		}
		return `{"principal": 100000, "rate": 12, "tenure_months": 12}`, nil
	})

	assistant, err := banktalk.New(oracle)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := assistant.Chat(context.Background(), "demo", "EMI on 1 lakh at 12% for a year?")
	if err != nil {
		log.Fatal(err)
	}

	res := resp.Output.(*calc.EMIResult)
	fmt.Println(resp.Route)
	fmt.Println(res.EMI, res.TotalInterest)
	fmt.Println(res.SchedulePreview[0].Closing)
	// Output:
	// emi
	// 8884.88 6618.55
	// 92115.12
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcelsud/payment-gateway-orchestrator/catalog"
)

/* validate-gateways - Standalone CLI tool to validate gateways.yaml
 * Usage: go run cmd/validate-gateways/main.go [gateways.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	gatewaysFile := "gateways.yaml"
	if len(os.Args) > 1 {
		gatewaysFile = os.Args[1]
	}

	fmt.Printf("Validating gateways file: %s\n", gatewaysFile)
	fmt.Println(strings.Repeat("-", 50))

	loader := catalog.NewLoader()
	if err := loader.Load(gatewaysFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// Building the adapters catches bad base URLs and simulation settings
	if _, err := loader.Registrations(false); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	entries := loader.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d gateway(s), in routing order:\n", len(entries))

	for i, e := range entries {
		fmt.Printf("\n%d. Gateway: %s\n", i+1, e.ID)
		fmt.Printf("   Adapter:       %s\n", e.Adapter)
		fmt.Printf("   Preference:    %d\n", e.Preference)
		if e.MaxAmount > 0 {
			fmt.Printf("   Amount range:  %.2f - %.2f\n", e.MinAmount, e.MaxAmount)
		} else {
			fmt.Printf("   Amount range:  %.2f - unbounded\n", e.MinAmount)
		}
		fmt.Printf("   Installments:  %t\n", e.Installments)
		fmt.Printf("   Commission:    %.2f%%\n", e.CommissionRate*100)
		if e.BaseURL != "" {
			fmt.Printf("   Base URL:      %s\n", e.BaseURL)
		}
		if _, ok := e.Secret(); ok {
			fmt.Printf("   Webhooks:      signed\n")
		}
	}
	if def := loader.DefaultWebhookGateway(); def != "" {
		fmt.Printf("\nUnrecognized webhooks go to: %s\n", def)
	}

	fmt.Printf("\n✓ All gateways are valid!\n")
	os.Exit(0)
}

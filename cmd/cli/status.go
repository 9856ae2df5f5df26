package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcelsud/payment-gateway-orchestrator/monitoring"
)

func statusCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the health and active alerts of a running orchestrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), strings.TrimRight(addr, "/"))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "Orchestrator base URL")
	return cmd
}

func runStatus(ctx context.Context, addr string) error {
	client := &http.Client{Timeout: 10 * time.Second}

	var health monitoring.HealthStatus
	if err := getJSON(ctx, client, addr+"/v1/monitoring/health", &health); err != nil {
		return err
	}

	fmt.Println("Payment System Status")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("  Overall:       %s\n", health.Overall)
	fmt.Printf("  Success rate:  %.2f%%\n", health.SuccessRate)
	fmt.Printf("  Response time: %.0fms\n", health.ResponseTimeMs)
	fmt.Printf("  Transactions:  %d (last hour)\n", health.TotalTransactions)

	if len(health.Gateways) > 0 {
		fmt.Println("\nGateways:")
		for id, g := range health.Gateways {
			fmt.Printf("  %-14s %-10s %6.2f%% %6.0fms %d tx\n", id, g.Status, g.SuccessRate, g.ResponseTimeMs, g.Transactions)
		}
	}

	fmt.Println("\nActive alerts:")
	if len(health.Alerts) == 0 {
		fmt.Println("  none")
	}
	for _, a := range health.Alerts {
		fmt.Printf("  [%s] %s %s (%s)\n", a.Severity, a.Type, a.Message, a.ID)
	}
	return nil
}

// getJSON decodes the body of a 200 response into v
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("requesting %s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marcelsud/payment-gateway-orchestrator/catalog"
	"github.com/marcelsud/payment-gateway-orchestrator/config"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway/adapters"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway/memory"
	"github.com/marcelsud/payment-gateway-orchestrator/monitoring"
)

// simulation is the JSON document printed at the end of a run
type simulation struct {
	Payments int                     `json:"payments"`
	Failed   int                     `json:"failed"`
	Gateways []gateway.Health        `json:"gateways"`
	Metrics  []gateway.Metrics       `json:"metrics"`
	Summary  gateway.Summary         `json:"summary"`
	Health   monitoring.HealthStatus `json:"health"`
	Report   monitoring.Report       `json:"report"`
}

/* simulateCmd pushes payments through the catalog with every gateway simulated
 * Useful to see failover, alerts and the report without real providers
 */
func simulateCmd() *cobra.Command {
	var (
		count   int
		amount  float64
		outages []string
		file    string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run simulated payments through the router and print the monitoring view",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.GatewaysFile
			}
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
			return simulate(cmd.Context(), cfg, file, count, amount, outages, logger)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 100, "Number of payments to create")
	cmd.Flags().Float64VarP(&amount, "amount", "a", 150, "Amount of each payment")
	cmd.Flags().StringSliceVar(&outages, "down", nil, "Gateways to take down before the run")
	cmd.Flags().StringVarP(&file, "gateways", "g", "", "Gateway catalog (defaults to GATEWAYS_FILE)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every attempt")

	return cmd
}

func simulate(ctx context.Context, cfg *config.Config, file string, count int, amount float64, outages []string, logger zerolog.Logger) error {
	loader := catalog.NewLoader()
	if err := loader.Load(file); err != nil {
		return fmt.Errorf("loading gateway catalog: %w", err)
	}
	regs, err := loader.Registrations(true)
	if err != nil {
		return err
	}
	for _, id := range outages {
		if err := takeDown(regs, gateway.ID(id)); err != nil {
			return err
		}
	}

	engine := monitoring.NewEngine(monitoring.Options{
		ResponseTimeThreshold: cfg.ResponseTimeThreshold(),
		SuccessRateThreshold:  cfg.SuccessRateThreshold,
		SmoothingAlpha:        cfg.MetricSmoothingAlpha,
		BufferSize:            cfg.EventBufferSize,
		Logger:                logger,
	})
	router, err := gateway.NewRouter(gateway.RouterConfig{
		Gateways: regs,
		Repo:     memory.NewRepository(),
		Sink:     engine,
		Tracker: gateway.TrackerOptions{
			FailoverThreshold: cfg.FailoverThreshold,
			SmoothingAlpha:    cfg.MetricSmoothingAlpha,
		},
		StrictHealthy: !cfg.AllowDegradedFallback,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	out := simulation{Payments: count}
	for i := 0; i < count; i++ {
		_, err := router.CreatePayment(ctx, gateway.Request{
			BookingID:     fmt.Sprintf("sim-%05d", i+1),
			Amount:        amount,
			Currency:      "ARS",
			PaymentMethod: "credit_card",
			Installments:  1,
			Description:   "simulated payment",
			ClientEmail:   "simulation@example.com",
			ClientName:    "Simulation",
		})
		if err != nil {
			out.Failed++
			logger.Debug().Err(err).Int("payment", i+1).Msg("payment failed")
		}
	}

	out.Gateways = router.GatewayHealth()
	out.Metrics = router.GatewayMetrics()
	out.Summary = router.Summary()
	out.Health = engine.EvaluateHealth()
	out.Report, err = engine.GenerateReport(start, time.Now().Add(time.Second))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func takeDown(regs []gateway.Registration, id gateway.ID) error {
	for _, reg := range regs {
		if reg.ID != id {
			continue
		}
		sim, ok := reg.Adapter.(*adapters.Simulated)
		if !ok {
			return fmt.Errorf("gateway %s is not simulated", id)
		}
		sim.SetDown(true)
		return nil
	}
	return fmt.Errorf("gateway %s is not in the catalog", id)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"

	"github.com/hadeslabs/paygate"
	"github.com/hadeslabs/paygate/clients"
	"github.com/hadeslabs/paygate/config"
	"github.com/hadeslabs/paygate/logger"
	"github.com/hadeslabs/paygate/metrics"
	"github.com/hadeslabs/paygate/server"
	"github.com/hadeslabs/paygate/types"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return
		}
		fmt.Fprintf(os.Stderr, "paygate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		return err
	}

	log := logger.NewZapLogger(cfg.LogLevel)

	pg, err := paygate.New(cfg,
		paygate.WithLogger(log),
		paygate.WithMetrics(metrics.NewPrometheusRecorder()),
	)
	if err != nil {
		return err
	}
	defer pg.Close()

	if cfg.DemoMode {
		seedDemoLedger(pg, cfg)
		log.Warn("demo mode: in-memory ledger, relaxed startup checks", nil)
	}

	srv := server.New(cfg, pg, log)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case err := <-serveErr:
		return err
	case sig := <-shutdown:
		log.Info("shutting down", map[string]any{"signal": sig.String()})
		return srv.Shutdown(context.Background())
	}
}

// seedDemoLedger records one qualifying transaction so the full unlock flow
// can be exercised against the in-memory ledger:
//
//	curl -X POST :3000/v1/pay -d '{"transactionId":"demo-tx-1"}'
func seedDemoLedger(pg *paygate.PayGate, cfg *config.Config) {
	mem, ok := pg.Ledger().(*clients.MemoryLedger)
	if !ok {
		return
	}
	mem.Record(types.LedgerTransaction{
		Signature: "demo-tx-1",
		Transfers: []types.Transfer{{
			Source:      "DemoPayer11111111111111111111111",
			Destination: cfg.Recipient,
			Lamports:    cfg.PriceLamports + cfg.PriceLamports/5,
		}},
	})
}

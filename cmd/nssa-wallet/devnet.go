package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nssa-network/nssa-wallet/internal/config"
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	devprover "github.com/nssa-network/nssa-wallet/internal/infrastructure/prover/dev"
	httpsequencer "github.com/nssa-network/nssa-wallet/internal/infrastructure/sequencer/http"
	memsequencer "github.com/nssa-network/nssa-wallet/internal/infrastructure/sequencer/inmemory"
	"github.com/nssa-network/nssa-wallet/pkg/stats"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var devnet = cli.Command{
	Name:  "devnet",
	Usage: "run a local in-memory sequencer for development",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "the address to serve the sequencer http API on",
			Value: ":3040",
		},
		&cli.DurationFlag{
			Name:  "block-time",
			Usage: "the interval between blocks, 0 seals a block per transaction",
			Value: 0,
		},
		&cli.StringSliceFlag{
			Name:  "fund",
			Usage: "<account_id>:<amount> genesis allocation of a public account, repeatable",
		},
		&cli.StringFlag{
			Name:  "pinata",
			Usage: "the id of a pinata account to create",
		},
		&cli.StringFlag{
			Name:  "pinata-balance",
			Usage: "the balance of the pinata",
			Value: "1000000",
		},
		&cli.UintFlag{
			Name:  "pinata-difficulty",
			Usage: "the number of leading zero bytes of a pinata solution",
			Value: 2,
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "the address to serve prometheus metrics on, disabled if empty",
		},
		&cli.DurationFlag{
			Name:  "stats-interval",
			Usage: "the interval between memory statistics logs, disabled if 0",
		},
	},
	Action: devnetAction,
}

func devnetAction(ctx *cli.Context) error {
	blockTime := ctx.Duration("block-time")
	ledger, err := memsequencer.NewLedger(memsequencer.Opts{
		Prover:          devprover.NewProver(),
		MerkleTreeDepth: uint8(config.GetInt(config.MerkleTreeDepthKey)),
		AutoSeal:        blockTime <= 0,
	})
	if err != nil {
		return err
	}
	if err := initLedger(ctx, ledger); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx.Context)
	defer cancel()

	if blockTime > 0 {
		go produceBlocks(runCtx, ledger, blockTime)
	}
	if interval := ctx.Duration("stats-interval"); interval > 0 {
		stats.EnableMemoryStatistics(
			runCtx, interval, filepath.Join(config.GetStatsDir(), "devnet"),
		)
	}

	servers := []*http.Server{
		{Addr: ctx.String("addr"), Handler: httpsequencer.NewHandler(ledger)},
	}
	if addr := ctx.String("metrics-addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		servers = append(servers, &http.Server{Addr: addr, Handler: mux})
	}

	errChan := make(chan error, len(servers))
	for _, s := range servers {
		s := s
		go func() {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
		log.Infof("listening on %s", s.Addr)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-sigChan:
	case err = <-errChan:
		log.WithError(err).Error("server stopped unexpectedly")
	}

	log.Info("shutting down devnet")
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(), 5*time.Second,
	)
	defer shutdownCancel()
	for _, s := range servers {
		if shutdownErr := s.Shutdown(shutdownCtx); shutdownErr != nil {
			log.WithError(shutdownErr).Warnf("failed to stop server on %s", s.Addr)
		}
	}
	return err
}

func initLedger(ctx *cli.Context, ledger *memsequencer.Ledger) error {
	for _, fund := range ctx.StringSlice("fund") {
		parts := strings.SplitN(fund, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid fund %q, must be <account_id>:<amount>", fund)
		}
		id, err := domain.ParseAccountId(parts[0])
		if err != nil {
			return err
		}
		amount, err := domain.ParseAmount(parts[1])
		if err != nil {
			return err
		}
		if err := ledger.Fund(id, amount); err != nil {
			return err
		}
		log.Infof("funded %s with %s", id, amount)
	}

	if !ctx.IsSet("pinata") {
		return nil
	}
	id, err := domain.ParseAccountId(ctx.String("pinata"))
	if err != nil {
		return err
	}
	balance, err := domain.ParseAmount(ctx.String("pinata-balance"))
	if err != nil {
		return err
	}
	difficulty := ctx.Uint("pinata-difficulty")
	if difficulty > 32 {
		return fmt.Errorf("pinata difficulty must be at most 32")
	}
	challenge := domain.PinataChallenge{Difficulty: uint8(difficulty)}
	if _, err := rand.Read(challenge.Seed[:]); err != nil {
		return err
	}
	if err := ledger.CreatePinata(id, balance, challenge); err != nil {
		return err
	}
	log.Infof("created pinata %s with balance %s", id, balance)
	return nil
}

func produceBlocks(
	ctx context.Context, ledger *memsequencer.Ledger, interval time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			block := ledger.ProduceBlock()
			log.Debugf(
				"produced block %d with %d txs", block.BlockId, len(block.Transactions),
			)
		case <-ctx.Done():
			return
		}
	}
}

// main.go - Lottery benchmark driver.
//
// Runs the configured schemes over U users and R rounds, timing setup, key
// generation, opening precomputation, ticket production, aggregation and
// verification, and reporting artifact sizes. All schemes share the same
// configuration so the numbers are comparable.
//
// Usage:
//   jackbench -config bench.json

package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"jackpot/internal/lottery"
)

func main() {
	configPath := flag.String("config", "bench.json", "path to the benchmark configuration")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := NewLogger(cfg.LogLevel)
	log.Info().
		Int("domain_size", cfg.DomainSize).
		Uint64("k", cfg.K).
		Int("users", cfg.Users).
		Int("rounds", cfg.Rounds).
		Msg("starting benchmark")

	for _, scheme := range cfg.Schemes {
		var err error
		switch scheme {
		case "jack":
			err = benchJack(log, cfg, scheme, lottery.Jack{})
		case "jack-pre":
			err = benchJack(log, cfg, scheme, lottery.Jack{Preprocess: true})
		case "bls-h":
			err = benchBLSH(log, cfg, scheme)
		}
		if err != nil {
			log.Fatal().Err(err).Str("scheme", scheme).Msg("benchmark failed")
		}
	}
}

// benchJack drives the KZG-based variants.
func benchJack(log zerolog.Logger, cfg *Config, name string, sch lottery.Jack) error {
	mc := NewMetricsCollector()

	var par *lottery.Params
	if err := mc.Time("setup", func() (err error) {
		par, err = sch.Setup(rand.Reader, cfg.DomainSize, cfg.K)
		return err
	}); err != nil {
		return err
	}

	pks := make([]lottery.PublicKey, cfg.Users)
	sks := make([]*lottery.SecretKey, cfg.Users)
	var g errgroup.Group
	g.SetLimit(cfg.MaxConcurrency)
	for u := 0; u < cfg.Users; u++ {
		g.Go(func() error {
			var err error
			return mc.Time("keygen", func() error {
				pks[u], sks[u], err = sch.KeyGen(rand.Reader, par)
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Str("scheme", name).Int("users", cfg.Users).Msg("keys generated")

	// For the lazy variant, time one explicit preprocessing pass.
	if !sch.Preprocess {
		spare := *sks[0]
		spare.Proofs = nil
		if err := mc.Time("fk_preprocess", func() error {
			return lottery.FKPreprocess(par, &spare)
		}); err != nil {
			return err
		}
	}

	totalWins := 0
	for round := 0; round < cfg.Rounds; round++ {
		seed, err := sch.SampleSeed(rand.Reader, par, round)
		if err != nil {
			return err
		}

		var winners []uint64
		var winnerPks []lottery.PublicKey
		var tickets []lottery.Ticket
		for u := 0; u < cfg.Users; u++ {
			pid := uint64(u)
			var won bool
			if err := mc.Time("participate", func() (err error) {
				won, err = sch.Participate(par, seed, pid, sks[u])
				return err
			}); err != nil {
				return err
			}
			if !won {
				continue
			}
			var t lottery.Ticket
			if err := mc.Time("get_ticket", func() (err error) {
				t, err = sch.GetTicket(par, seed, pid, sks[u])
				return err
			}); err != nil {
				return err
			}
			winners = append(winners, pid)
			winnerPks = append(winnerPks, pks[u])
			tickets = append(tickets, t)
		}
		totalWins += len(winners)
		if len(winners) == 0 {
			continue
		}

		var agg lottery.AggTicket
		if err := mc.Time("aggregate", func() (err error) {
			agg, err = sch.Aggregate(par, seed, winners, winnerPks, tickets)
			return err
		}); err != nil {
			return err
		}
		mc.RecordSize("ticket", len(tickets[0].Bytes()))
		mc.RecordSize("aggregate", len(agg.Bytes()))
		mc.RecordSize("public_key", len(winnerPks[0].Bytes()))

		if err := mc.Time("verify", func() error {
			ok, err := sch.VerifyAggregate(par, seed, winners, winnerPks, agg)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("aggregate for round %d rejected", round)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	log.Info().Str("scheme", name).Int("wins", totalWins).
		Float64("expected", float64(cfg.Users*cfg.Rounds)/float64(cfg.K)).
		Msg("rounds complete")
	renderReport(name, mc)
	return nil
}

// benchBLSH drives the baseline.
func benchBLSH(log zerolog.Logger, cfg *Config, name string) error {
	sch := lottery.BLSH{}
	mc := NewMetricsCollector()

	var par *lottery.BLSHParams
	if err := mc.Time("setup", func() (err error) {
		par, err = sch.Setup(rand.Reader, cfg.DomainSize, cfg.K)
		return err
	}); err != nil {
		return err
	}

	pks := make([]lottery.BLSHPublicKey, cfg.Users)
	sks := make([]*lottery.BLSHSecretKey, cfg.Users)
	var g errgroup.Group
	g.SetLimit(cfg.MaxConcurrency)
	for u := 0; u < cfg.Users; u++ {
		g.Go(func() error {
			var err error
			return mc.Time("keygen", func() error {
				pks[u], sks[u], err = sch.KeyGen(rand.Reader, par)
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	totalWins := 0
	for round := 0; round < cfg.Rounds; round++ {
		seed, err := sch.SampleSeed(rand.Reader, par, round)
		if err != nil {
			return err
		}

		var winners []uint64
		var winnerPks []lottery.BLSHPublicKey
		var tickets []lottery.BLSHTicket
		for u := 0; u < cfg.Users; u++ {
			pid := uint64(u)
			var won bool
			if err := mc.Time("participate", func() (err error) {
				won, err = sch.Participate(par, seed, pid, sks[u])
				return err
			}); err != nil {
				return err
			}
			if !won {
				continue
			}
			var t lottery.BLSHTicket
			if err := mc.Time("get_ticket", func() (err error) {
				t, err = sch.GetTicket(par, seed, pid, sks[u])
				return err
			}); err != nil {
				return err
			}
			winners = append(winners, pid)
			winnerPks = append(winnerPks, pks[u])
			tickets = append(tickets, t)
		}
		totalWins += len(winners)
		if len(winners) == 0 {
			continue
		}

		var agg lottery.BLSHAgg
		if err := mc.Time("aggregate", func() (err error) {
			agg, err = sch.Aggregate(par, seed, winners, winnerPks, tickets)
			return err
		}); err != nil {
			return err
		}
		aggBytes := 0
		for i := range agg.Sigs {
			aggBytes += len(lottery.BLSHTicket{Sig: agg.Sigs[i]}.Bytes())
		}
		mc.RecordSize("ticket", len(tickets[0].Bytes()))
		mc.RecordSize("aggregate", aggBytes)
		mc.RecordSize("public_key", len(winnerPks[0].Bytes()))

		if err := mc.Time("verify", func() error {
			ok, err := sch.VerifyAggregate(par, seed, winners, winnerPks, agg)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("aggregate for round %d rejected", round)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	log.Info().Str("scheme", name).Int("wins", totalWins).
		Float64("expected", float64(cfg.Users*cfg.Rounds)/float64(cfg.K)).
		Msg("rounds complete")
	renderReport(name, mc)
	return nil
}

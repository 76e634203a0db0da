// main.go - Comprehensive 5-user + 1 relay lottery scenario.
//
// This demonstrates a full deployment of the aggregatable lottery:
//   - 1 relay starts, plays the beacon and the aggregator
//   - 5 users generate keypairs and register their public keys
//   - For each round: users fetch the seed, decide locally whether they won,
//     and winners submit their tickets
//   - The relay verifies each ticket, folds the winners into one aggregate
//     and appends the round to the public board
//   - Everyone re-verifies the board offline
//
// Usage:
//   go run main.go
//
// Architecture:
//   - All closed rounds are appended to a single board.json file (public,
//     append-only)
//   - Each user holds only their secret vector; the relay only ever sees
//     public keys and tickets

package main

import (
	"crypto/rand"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"jackpot/internal/lottery"
	"jackpot/internal/relay"
)

const (
	numUsers   = 5
	numRounds  = 8
	domainSize = 16
	winParamK  = 4
	relayAddr  = "localhost:8080"
	boardPath  = "board.json"
)

func main() {
	log.Println("=== Starting 5-user + 1 relay lottery scenario ===")

	// Fresh board per run; the demo replays the same round indices.
	os.Remove(boardPath)

	// Setup: one SRS shared by everyone. A deployment would run a ceremony;
	// here the relay operator plays the trusted dealer.
	scheme := lottery.Jack{Preprocess: true}
	par, err := scheme.Setup(rand.Reader, domainSize, winParamK)
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}
	log.Printf("SRS ready: domain size %d, win probability 1/%d", domainSize, winParamK)

	// Start the relay.
	relayLog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	r := relay.New(par, boardPath, relayLog)
	r.Serve(relayAddr)
	defer r.Shutdown()
	time.Sleep(500 * time.Millisecond)

	// Users generate keys (FK-preprocessed, so tickets are table lookups)
	// and register with the relay.
	sks := make([]*lottery.SecretKey, numUsers)
	pks := make([]lottery.PublicKey, numUsers)
	for u := 0; u < numUsers; u++ {
		pk, sk, err := scheme.KeyGen(rand.Reader, par)
		if err != nil {
			log.Fatalf("user %d keygen failed: %v", u, err)
		}
		pks[u], sks[u] = pk, sk
		if err := relay.RegisterKey(relayAddr, uint64(u), pk); err != nil {
			log.Fatalf("user %d registration failed: %v", u, err)
		}
		log.Printf("user %d registered, pk=%x...", u, pk.Bytes()[:8])
	}

	// Rounds: fetch the seed, participate locally, submit winning tickets.
	for round := 0; round < numRounds; round++ {
		seed, err := relay.FetchSeed(relayAddr, round)
		if err != nil {
			log.Fatalf("round %d seed fetch failed: %v", round, err)
		}

		winners := 0
		for u := 0; u < numUsers; u++ {
			pid := uint64(u)
			won, err := scheme.Participate(par, seed, pid, sks[u])
			if err != nil {
				log.Fatalf("round %d participate failed for user %d: %v", round, u, err)
			}
			if !won {
				continue
			}
			ticket, err := scheme.GetTicket(par, seed, pid, sks[u])
			if err != nil {
				log.Fatalf("round %d ticket failed for user %d: %v", round, u, err)
			}
			if err := relay.SubmitTicket(relayAddr, round, pid, ticket); err != nil {
				log.Fatalf("round %d submit failed for user %d: %v", round, u, err)
			}
			winners++
			log.Printf("round %d: user %d won and submitted a ticket", round, u)
		}

		rec, err := relay.CloseRound(relayAddr, round)
		if err != nil {
			log.Fatalf("round %d close failed: %v", round, err)
		}
		log.Printf("round %d closed: %d winner(s), aggregate %d bytes",
			round, winners, len(rec.Aggregate)/2)
	}

	// Everyone re-verifies the public board.
	log.Println("\n=== Board verification ===")
	board, err := relay.FetchBoard(relayAddr)
	if err != nil {
		log.Fatalf("board fetch failed: %v", err)
	}
	for _, rec := range board.Records {
		if len(rec.Pids) == 0 {
			log.Printf("round %d: no winners", rec.Round)
			continue
		}
		seed, recPks, agg, err := rec.Decode()
		if err != nil {
			log.Fatalf("round %d decode failed: %v", rec.Round, err)
		}
		ok, err := scheme.VerifyAggregate(par, seed, rec.Pids, recPks, agg)
		if err != nil {
			log.Fatalf("round %d verification errored: %v", rec.Round, err)
		}
		if !ok {
			log.Fatalf("round %d aggregate rejected", rec.Round)
		}
		log.Printf("round %d: aggregate for %d winner(s) verified", rec.Round, len(rec.Pids))
	}

	log.Println("\n=== Scenario complete ===")
	log.Printf("The board at %s holds %d verified rounds.", boardPath, len(board.Records))
}

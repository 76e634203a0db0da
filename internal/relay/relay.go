// relay.go - REST ticket relay and aggregator.
//
// One relay node plays the beacon and the aggregator for a deployment of
// Jack: users register their public keys, fetch the per-round seed, and
// submit winning tickets; the relay verifies each submission, folds the
// winners into one aggregate ticket when the round closes, and appends the
// result to the round board. Anyone can re-verify the board offline.

package relay

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"jackpot/internal/lottery"
)

// Relay is the aggregator node.
type Relay struct {
	scheme lottery.Jack
	params *lottery.Params

	mu      sync.Mutex
	keys    map[uint64]lottery.PublicKey
	seeds   map[int]lottery.Seed
	pending map[int]map[uint64]lottery.Ticket
	board   *Board

	boardPath string
	server    *http.Server
	log       zerolog.Logger
}

// New creates a relay over the given parameters. If boardPath is non-empty
// the board is loaded from it when present and saved after every closed
// round.
func New(params *lottery.Params, boardPath string, log zerolog.Logger) *Relay {
	board := NewBoard()
	if boardPath != "" {
		if b, err := LoadBoardFromFile(boardPath); err == nil {
			board = b
		}
	}
	return &Relay{
		params:    params,
		keys:      make(map[uint64]lottery.PublicKey),
		seeds:     make(map[int]lottery.Seed),
		pending:   make(map[int]map[uint64]lottery.Ticket),
		board:     board,
		boardPath: boardPath,
		log:       log,
	}
}

// Board returns a snapshot of the relay's round board.
func (r *Relay) Board() *Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := &Board{Records: make([]RoundRecord, len(r.board.Records))}
	copy(snap.Records, r.board.Records)
	return snap
}

// Register adds a user's public key after well-formedness checks.
func (r *Relay) Register(pid uint64, pk lottery.PublicKey) error {
	if err := r.scheme.VerifyKey(r.params, pk); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[pid]; ok {
		return fmt.Errorf("relay: pid %d already registered", pid)
	}
	r.keys[pid] = pk
	return nil
}

// Seed returns the seed for a round, drawing it on first use. This stands in
// for the beacon.
func (r *Relay) Seed(round int) (lottery.Seed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seed, ok := r.seeds[round]; ok {
		return seed, nil
	}
	seed, err := r.scheme.SampleSeed(rand.Reader, r.params, round)
	if err != nil {
		return lottery.Seed{}, err
	}
	r.seeds[round] = seed
	return seed, nil
}

// Submit accepts one winning ticket for an open round. The ticket is verified
// before it is held for aggregation.
func (r *Relay) Submit(round int, pid uint64, t lottery.Ticket) error {
	r.mu.Lock()
	seed, haveSeed := r.seeds[round]
	pk, havePk := r.keys[pid]
	_, closed := r.board.Record(round)
	r.mu.Unlock()

	if !haveSeed {
		return fmt.Errorf("relay: round %d has no seed yet", round)
	}
	if !havePk {
		return fmt.Errorf("relay: pid %d is not registered", pid)
	}
	if closed {
		return fmt.Errorf("relay: round %d is already closed", round)
	}

	ok, err := r.scheme.VerifyTicket(r.params, seed, pid, pk, t)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("relay: ticket for pid %d does not verify in round %d", pid, round)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending[round] == nil {
		r.pending[round] = make(map[uint64]lottery.Ticket)
	}
	r.pending[round][pid] = t
	r.log.Info().Int("round", round).Uint64("pid", pid).Msg("ticket accepted")
	return nil
}

// CloseRound aggregates the round's submissions, appends the record to the
// board and persists it. Rounds with no winners close with an empty record.
func (r *Relay) CloseRound(round int) (RoundRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seed, ok := r.seeds[round]
	if !ok {
		return RoundRecord{}, fmt.Errorf("relay: round %d has no seed yet", round)
	}

	subs := r.pending[round]
	pids := make([]uint64, 0, len(subs))
	for pid := range subs {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(a, b int) bool { return pids[a] < pids[b] })

	rec := RoundRecord{Round: round}
	if len(pids) > 0 {
		pks := make([]lottery.PublicKey, len(pids))
		ticks := make([]lottery.Ticket, len(pids))
		for i, pid := range pids {
			pks[i] = r.keys[pid]
			ticks[i] = subs[pid]
		}
		agg, err := r.scheme.Aggregate(r.params, seed, pids, pks, ticks)
		if err != nil {
			return RoundRecord{}, err
		}
		rec = NewRoundRecord(seed, pids, pks, agg)
	} else {
		z := seed.Z.Bytes()
		rec.Z = hex.EncodeToString(z[:])
	}

	if err := r.board.AppendRound(rec); err != nil {
		return RoundRecord{}, err
	}
	if r.boardPath != "" {
		if err := r.board.SaveToFile(r.boardPath); err != nil {
			return RoundRecord{}, err
		}
	}
	delete(r.pending, round)
	r.log.Info().Int("round", round).Int("winners", len(pids)).Msg("round closed")
	return rec, nil
}

// VerifyBoard re-verifies every non-empty record against the public keys
// stored in that record.
func (r *Relay) VerifyBoard() (bool, error) {
	r.mu.Lock()
	records := make([]RoundRecord, len(r.board.Records))
	copy(records, r.board.Records)
	r.mu.Unlock()

	for _, rec := range records {
		if len(rec.Pids) == 0 {
			continue
		}
		seed, pks, agg, err := rec.Decode()
		if err != nil {
			return false, err
		}
		ok, err := r.scheme.VerifyAggregate(r.params, seed, rec.Pids, pks, agg)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// --- REST surface ---

type registerRequest struct {
	Pid uint64 `json:"pid"`
	Pk  string `json:"pk"`
}

type submitRequest struct {
	Pid    uint64 `json:"pid"`
	Round  int    `json:"round"`
	Ticket string `json:"ticket"`
}

type seedResponse struct {
	Round int    `json:"round"`
	Z     string `json:"z"`
}

// Serve starts the REST server on the given address in a background
// goroutine and returns without waiting for the listener; Shutdown stops it.
func (r *Relay) Serve(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/register", r.handleRegister)
	mux.HandleFunc("/seed", r.handleSeed)
	mux.HandleFunc("/submit", r.handleSubmit)
	mux.HandleFunc("/close", r.handleClose)
	mux.HandleFunc("/board", r.handleBoard)

	r.server = &http.Server{Addr: addr, Handler: mux}
	go func() {
		r.log.Info().Str("addr", addr).Msg("relay listening")
		if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.log.Error().Err(err).Msg("relay server stopped")
		}
	}()
}

// Shutdown stops the REST server gracefully.
func (r *Relay) Shutdown() error {
	if r.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.server.Shutdown(ctx)
}

func (r *Relay) handleRegister(w http.ResponseWriter, req *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	raw, err := hex.DecodeString(body.Pk)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	var pk lottery.PublicKey
	if err := pk.SetBytes(raw); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	if err := r.Register(body.Pid, pk); err != nil {
		httpError(w, http.StatusConflict, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (r *Relay) handleSeed(w http.ResponseWriter, req *http.Request) {
	var round int
	if _, err := fmt.Sscanf(req.URL.Query().Get("round"), "%d", &round); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	seed, err := r.Seed(round)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	z := seed.Z.Bytes()
	writeJSON(w, seedResponse{Round: seed.Round, Z: hex.EncodeToString(z[:])})
}

func (r *Relay) handleSubmit(w http.ResponseWriter, req *http.Request) {
	var body submitRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	raw, err := hex.DecodeString(body.Ticket)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	var t lottery.Ticket
	if err := t.SetBytes(raw); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	if err := r.Submit(body.Round, body.Pid, t); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (r *Relay) handleClose(w http.ResponseWriter, req *http.Request) {
	var round int
	if _, err := fmt.Sscanf(req.URL.Query().Get("round"), "%d", &round); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := r.CloseRound(round)
	if err != nil {
		httpError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, rec)
}

func (r *Relay) handleBoard(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, r.Board())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, err error) {
	w.WriteHeader(code)
	fmt.Fprintf(w, "%v", err)
}

// board.go - Append-only round board.
//
// The board records the outcome of every closed round: the seed, the winner
// list and the aggregate ticket. It is append-only with duplicate-round
// detection and persists as a single JSON file so every node can replay and
// re-verify the history.
//
// NOTE: Board is not thread-safe by itself; the relay guards it with its own
// mutex.

package relay

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"jackpot/internal/lottery"
)

var ErrDuplicateRound = errors.New("relay: round already recorded on the board")

// RoundRecord is one closed round.
type RoundRecord struct {
	Round     int      `json:"round"`
	Z         string   `json:"z"`
	Pids      []uint64 `json:"pids"`
	Pks       []string `json:"pks"`
	Aggregate string   `json:"aggregate"`
}

// Board is the canonical, append-only list of closed rounds.
type Board struct {
	Records []RoundRecord `json:"records"`
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{Records: make([]RoundRecord, 0)}
}

// AppendRound records a closed round. Rounds may close once.
func (b *Board) AppendRound(rec RoundRecord) error {
	for _, r := range b.Records {
		if r.Round == rec.Round {
			return ErrDuplicateRound
		}
	}
	b.Records = append(b.Records, rec)
	return nil
}

// Record returns the record for a round, if present.
func (b *Board) Record(round int) (RoundRecord, bool) {
	for _, r := range b.Records {
		if r.Round == round {
			return r, true
		}
	}
	return RoundRecord{}, false
}

// SaveToFile persists the board as indented JSON.
func (b *Board) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("board save failed: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// LoadBoardFromFile loads a previously saved board.
func LoadBoardFromFile(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var b Board
	if err := json.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("board load failed: %w", err)
	}
	return &b, nil
}

// NewRoundRecord encodes a closed round for the board.
func NewRoundRecord(seed lottery.Seed, pids []uint64, pks []lottery.PublicKey, agg lottery.AggTicket) RoundRecord {
	z := seed.Z.Bytes()
	rec := RoundRecord{
		Round:     seed.Round,
		Z:         hex.EncodeToString(z[:]),
		Pids:      pids,
		Pks:       make([]string, len(pks)),
		Aggregate: hex.EncodeToString(agg.Bytes()),
	}
	for i := range pks {
		rec.Pks[i] = hex.EncodeToString(pks[i].Bytes())
	}
	return rec
}

// Decode reconstructs the verifiable pieces of a record.
func (r RoundRecord) Decode() (lottery.Seed, []lottery.PublicKey, lottery.AggTicket, error) {
	var seed lottery.Seed
	seed.Round = r.Round
	zBytes, err := hex.DecodeString(r.Z)
	if err != nil || len(zBytes) != fr.Bytes {
		return seed, nil, lottery.AggTicket{}, fmt.Errorf("relay: invalid seed encoding for round %d", r.Round)
	}
	seed.Z.SetBytes(zBytes)

	pks := make([]lottery.PublicKey, len(r.Pks))
	for i, s := range r.Pks {
		raw, err := hex.DecodeString(s)
		if err != nil {
			return seed, nil, lottery.AggTicket{}, fmt.Errorf("relay: invalid pk encoding for round %d: %w", r.Round, err)
		}
		if err := pks[i].SetBytes(raw); err != nil {
			return seed, nil, lottery.AggTicket{}, err
		}
	}

	var agg lottery.AggTicket
	raw, err := hex.DecodeString(r.Aggregate)
	if err != nil {
		return seed, nil, lottery.AggTicket{}, fmt.Errorf("relay: invalid aggregate encoding for round %d: %w", r.Round, err)
	}
	if err := agg.SetBytes(raw); err != nil {
		return seed, nil, lottery.AggTicket{}, err
	}
	return seed, pks, agg, nil
}

// client.go - HTTP client helpers for talking to a relay.

package relay

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"jackpot/internal/lottery"
)

// RegisterKey registers a public key with the relay at addr.
func RegisterKey(addr string, pid uint64, pk lottery.PublicKey) error {
	body := registerRequest{Pid: pid, Pk: hex.EncodeToString(pk.Bytes())}
	return postJSON(fmt.Sprintf("http://%s/register", addr), body)
}

// FetchSeed fetches (and on first call fixes) the seed for a round.
func FetchSeed(addr string, round int) (lottery.Seed, error) {
	resp, err := http.Get(fmt.Sprintf("http://%s/seed?round=%d", addr, round))
	if err != nil {
		return lottery.Seed{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return lottery.Seed{}, readError(resp)
	}
	var sr seedResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return lottery.Seed{}, err
	}
	zBytes, err := hex.DecodeString(sr.Z)
	if err != nil || len(zBytes) != fr.Bytes {
		return lottery.Seed{}, fmt.Errorf("relay: invalid seed from %s", addr)
	}
	var seed lottery.Seed
	seed.Round = sr.Round
	seed.Z.SetBytes(zBytes)
	return seed, nil
}

// SubmitTicket submits a winning ticket for a round.
func SubmitTicket(addr string, round int, pid uint64, t lottery.Ticket) error {
	body := submitRequest{Pid: pid, Round: round, Ticket: hex.EncodeToString(t.Bytes())}
	return postJSON(fmt.Sprintf("http://%s/submit", addr), body)
}

// CloseRound asks the relay to aggregate and record a round.
func CloseRound(addr string, round int) (RoundRecord, error) {
	resp, err := http.Post(fmt.Sprintf("http://%s/close?round=%d", addr, round), "application/json", nil)
	if err != nil {
		return RoundRecord{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return RoundRecord{}, readError(resp)
	}
	var rec RoundRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return RoundRecord{}, err
	}
	return rec, nil
}

// FetchBoard fetches the relay's round board.
func FetchBoard(addr string) (*Board, error) {
	resp, err := http.Get(fmt.Sprintf("http://%s/board", addr))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}
	var b Board
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func postJSON(url string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	return nil
}

func readError(resp *http.Response) error {
	msg, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("relay: %s: %s", resp.Status, string(msg))
}

// blsh.go - Folklore BLS-H baseline.
//
// Each user holds a BLS keypair; the round ticket is the BLS signature on the
// round label, and winning means the hash of that signature lands in the
// winning set. Tickets are unique per (key, round) so the win decision is
// non-interactive, but nothing compresses: the aggregate is the list of
// signatures, each checked by its own pairing.

package lottery

import (
	"fmt"
	"io"
	"math/big"
	"sort"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"jackpot/internal/srs"
)

var (
	blshSigDST = []byte("jackpot/blsh/sig/v1")
	blshWinDST = []byte("jackpot/blsh/win/v1")
)

// BLSHParams carries the round bound and win parameter; BLS-H needs no
// structured setup.
type BLSHParams struct {
	Rounds int
	K      uint64
}

// BLSHPublicKey is a G2 point.
type BLSHPublicKey struct {
	P curve.G2Affine
}

// BLSHSecretKey is the signing scalar.
type BLSHSecretKey struct {
	X fr.Element
}

// BLSHTicket is the signature on the round label.
type BLSHTicket struct {
	Sig curve.G1Affine
}

// BLSHAgg is the concatenation of the winners' tickets in pid order.
type BLSHAgg struct {
	Sigs []curve.G1Affine
}

// BLSH implements the scheme surface for the baseline.
type BLSH struct{}

func (BLSH) Setup(rng io.Reader, size int, k uint64) (*BLSHParams, error) {
	if size < 2 {
		return nil, srs.ErrMinSize
	}
	if k < 2 {
		return nil, srs.ErrInvalidK
	}
	return &BLSHParams{Rounds: size - 1, K: k}, nil
}

func (BLSH) KeyGen(rng io.Reader, par *BLSHParams) (BLSHPublicKey, *BLSHSecretKey, error) {
	x, err := srs.SampleFr(rng)
	if err != nil {
		return BLSHPublicKey{}, nil, err
	}
	var xBig big.Int
	x.BigInt(&xBig)
	_, _, _, g2Gen := curve.Generators()
	var pk BLSHPublicKey
	pk.P.ScalarMultiplication(&g2Gen, &xBig)
	return pk, &BLSHSecretKey{X: x}, nil
}

func (BLSH) VerifyKey(par *BLSHParams, pk BLSHPublicKey) error {
	if pk.P.IsInfinity() || !pk.P.IsOnCurve() || !pk.P.IsInSubGroup() {
		return ErrMalformedPoint
	}
	return nil
}

func (BLSH) SampleSeed(rng io.Reader, par *BLSHParams, round int) (Seed, error) {
	if round < 0 || round >= par.Rounds {
		return Seed{}, ErrRoundRange
	}
	return sampleSeed(rng, round)
}

func (b BLSH) Participate(par *BLSHParams, seed Seed, pid uint64, sk *BLSHSecretKey) (bool, error) {
	t, err := b.sign(par, seed, sk)
	if err != nil {
		return false, err
	}
	return blshWins(&t.Sig, par.K)
}

func (b BLSH) GetTicket(par *BLSHParams, seed Seed, pid uint64, sk *BLSHSecretKey) (BLSHTicket, error) {
	t, err := b.sign(par, seed, sk)
	if err != nil {
		return BLSHTicket{}, err
	}
	won, err := blshWins(&t.Sig, par.K)
	if err != nil {
		return BLSHTicket{}, err
	}
	if !won {
		return BLSHTicket{}, ErrNotWinning
	}
	return t, nil
}

// VerifyTicket checks the signature against the round label and the win
// predicate on its hash.
func (BLSH) VerifyTicket(par *BLSHParams, seed Seed, pid uint64, pk BLSHPublicKey, t BLSHTicket) (bool, error) {
	if seed.Round < 0 || seed.Round >= par.Rounds {
		return false, ErrRoundRange
	}
	won, err := blshWins(&t.Sig, par.K)
	if err != nil || !won {
		return false, err
	}

	hm, err := curve.HashToG1(seed.encode(), blshSigDST)
	if err != nil {
		return false, err
	}
	var negG2 curve.G2Affine
	_, _, _, g2Gen := curve.Generators()
	negG2.Neg(&g2Gen)

	// e(sig, -G2) * e(H(m), pk) == 1
	return curve.PairingCheck(
		[]curve.G1Affine{t.Sig, hm},
		[]curve.G2Affine{negG2, pk.P},
	)
}

// Aggregate keeps the individual signatures; the baseline has nothing to
// compress. Inputs are sorted by pid for deterministic bytes.
func (b BLSH) Aggregate(par *BLSHParams, seed Seed, pids []uint64, pks []BLSHPublicKey, ticks []BLSHTicket) (BLSHAgg, error) {
	if len(pids) != len(pks) || len(pids) != len(ticks) {
		return BLSHAgg{}, ErrInputLength
	}
	order, err := pidOrder(pids)
	if err != nil {
		return BLSHAgg{}, err
	}
	agg := BLSHAgg{Sigs: make([]curve.G1Affine, len(order))}
	for n, idx := range order {
		ok, err := b.VerifyTicket(par, seed, pids[idx], pks[idx], ticks[idx])
		if err != nil {
			return BLSHAgg{}, err
		}
		if !ok {
			return BLSHAgg{}, fmt.Errorf("lottery: ticket for pid %d does not verify", pids[idx])
		}
		agg.Sigs[n] = ticks[idx].Sig
	}
	return agg, nil
}

func (b BLSH) VerifyAggregate(par *BLSHParams, seed Seed, pids []uint64, pks []BLSHPublicKey, agg BLSHAgg) (bool, error) {
	if len(pids) != len(pks) {
		return false, ErrInputLength
	}
	if len(pids) != len(agg.Sigs) {
		return false, nil
	}
	order := make([]int, len(pids))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return pids[order[a]] < pids[order[b]] })
	for n, idx := range order {
		ok, err := b.VerifyTicket(par, seed, pids[idx], pks[idx], BLSHTicket{Sig: agg.Sigs[n]})
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (BLSH) sign(par *BLSHParams, seed Seed, sk *BLSHSecretKey) (BLSHTicket, error) {
	if seed.Round < 0 || seed.Round >= par.Rounds {
		return BLSHTicket{}, ErrRoundRange
	}
	hm, err := curve.HashToG1(seed.encode(), blshSigDST)
	if err != nil {
		return BLSHTicket{}, err
	}
	var xBig big.Int
	sk.X.BigInt(&xBig)
	var t BLSHTicket
	t.Sig.ScalarMultiplication(&hm, &xBig)
	return t, nil
}

// blshWins hashes the signature into the field and tests the winning set.
func blshWins(sig *curve.G1Affine, k uint64) (bool, error) {
	sigBytes := sig.Bytes()
	h, err := fr.Hash(sigBytes[:], blshWinDST, 1)
	if err != nil {
		return false, err
	}
	return inWinningSet(&h[0], k), nil
}

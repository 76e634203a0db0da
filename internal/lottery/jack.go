// jack.go - The Jack lottery: a KZG vector commitment reduction.
//
// A user's public key commits to a uniformly random vector. Round i with
// beacon value z shifts entry i by the public label H(pid, i, z); the user
// wins when the shifted value lands in the winning set, and the ticket is the
// opening of the (label-shifted) commitment at index i. Winning tickets of one
// round fold into a single group element verified by one pairing equation.

package lottery

import (
	"fmt"
	"io"
	"math/big"
	"sort"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"jackpot/internal/kzg"
	"jackpot/internal/srs"
)

// Params wraps the SRS; K rides along inside it.
type Params struct {
	SRS *srs.SRS
}

// PublicKey is the commitment to the user's secret vector.
type PublicKey struct {
	C kzg.Digest
}

// SecretKey is the committed vector, optionally with the precomputed opening
// table. Proofs is nil until FKPreprocess fills it; either way the tickets
// produced are byte-identical.
type SecretKey struct {
	V      []fr.Element
	Proofs []curve.G1Affine
}

// Ticket proves one win: the shifted value (a member of the winning set) and
// the opening of the shifted commitment at the round index.
type Ticket struct {
	Value fr.Element
	Proof curve.G1Affine
}

// AggTicket is the aggregate of a round's winning tickets: one group element
// plus the winners' shifted values in pid order.
type AggTicket struct {
	Proof  curve.G1Affine
	Values []fr.Element
}

// Jack implements the scheme; the Preprocess flag selects the variant whose
// KeyGen fills the FK opening table eagerly.
type Jack struct {
	Preprocess bool
}

// Setup builds the SRS. size is the evaluation domain cardinality (a power of
// two); the parameter set supports rounds 0..size-2.
func (Jack) Setup(rng io.Reader, size int, k uint64) (*Params, error) {
	s, err := srs.Setup(rng, size, k)
	if err != nil {
		return nil, err
	}
	return &Params{SRS: s}, nil
}

// KeyGen samples the secret vector and commits to it.
func (j Jack) KeyGen(rng io.Reader, par *Params) (PublicKey, *SecretKey, error) {
	v := make([]fr.Element, par.SRS.Size)
	for i := range v {
		e, err := srs.SampleFr(rng)
		if err != nil {
			return PublicKey{}, nil, err
		}
		v[i] = e
	}
	c, err := kzg.Commit(par.SRS, v)
	if err != nil {
		return PublicKey{}, nil, err
	}
	sk := &SecretKey{V: v}
	if j.Preprocess {
		if err := FKPreprocess(par, sk); err != nil {
			return PublicKey{}, nil, err
		}
	}
	return PublicKey{C: c}, sk, nil
}

// FKPreprocess fills the secret key's opening table via the batch opener.
// Idempotent: a filled table is left untouched.
func FKPreprocess(par *Params, sk *SecretKey) error {
	if sk.Proofs != nil {
		return nil
	}
	proofs, err := kzg.OpenAll(par.SRS, sk.V)
	if err != nil {
		return err
	}
	sk.Proofs = proofs
	return nil
}

// VerifyKey checks the commitment is a non-identity point of the prime-order
// subgroup.
func (Jack) VerifyKey(par *Params, pk PublicKey) error {
	if pk.C.IsInfinity() || !pk.C.IsOnCurve() || !pk.C.IsInSubGroup() {
		return ErrMalformedPoint
	}
	return nil
}

// SampleSeed draws a beacon value for the round.
func (Jack) SampleSeed(rng io.Reader, par *Params, round int) (Seed, error) {
	if round < 0 || round > par.SRS.MaxRound() {
		return Seed{}, ErrRoundRange
	}
	return sampleSeed(rng, round)
}

// Participate reports whether sk wins the round: the label-shifted entry must
// land in the winning set.
func (Jack) Participate(par *Params, seed Seed, pid uint64, sk *SecretKey) (bool, error) {
	y, err := shiftedValue(par, seed, pid, sk)
	if err != nil {
		return false, err
	}
	return inWinningSet(&y, par.SRS.K), nil
}

// GetTicket produces the winning ticket, or ErrNotWinning. With a
// preprocessed key this is a table lookup; otherwise one opening is computed
// on demand.
func (Jack) GetTicket(par *Params, seed Seed, pid uint64, sk *SecretKey) (Ticket, error) {
	y, err := shiftedValue(par, seed, pid, sk)
	if err != nil {
		return Ticket{}, err
	}
	if !inWinningSet(&y, par.SRS.K) {
		return Ticket{}, ErrNotWinning
	}

	t := Ticket{Value: y}
	if sk.Proofs != nil {
		t.Proof = sk.Proofs[seed.Round]
		return t, nil
	}
	proof, err := kzg.Open(par.SRS, sk.V, seed.Round)
	if err != nil {
		return Ticket{}, err
	}
	t.Proof = proof.H
	return t, nil
}

// VerifyTicket checks one ticket on its own: the shifted value must sit in
// the winning set and the opening must verify against the label-shifted
// commitment.
func (Jack) VerifyTicket(par *Params, seed Seed, pid uint64, pk PublicKey, t Ticket) (bool, error) {
	if seed.Round < 0 || seed.Round > par.SRS.MaxRound() {
		return false, ErrRoundRange
	}
	if !inWinningSet(&t.Value, par.SRS.K) {
		return false, nil
	}
	shifted, err := shiftedDigest(pk.C, pid, seed)
	if err != nil {
		return false, err
	}
	proof := kzg.OpeningProof{H: t.Proof, ClaimedValue: t.Value}
	return kzg.Verify(par.SRS, &shifted, seed.Round, &proof)
}

// Aggregate folds the winning tickets of one round. Each ticket is verified
// individually first; inputs are sorted by pid so the aggregate is
// byte-identical regardless of submission order.
func (j Jack) Aggregate(par *Params, seed Seed, pids []uint64, pks []PublicKey, ticks []Ticket) (AggTicket, error) {
	if len(pids) != len(pks) || len(pids) != len(ticks) {
		return AggTicket{}, ErrInputLength
	}
	if len(pids) == 0 {
		return AggTicket{}, kzg.ErrEmptyAggregate
	}

	order, err := pidOrder(pids)
	if err != nil {
		return AggTicket{}, err
	}

	proofs := make([]kzg.OpeningProof, len(order))
	weights := make([]fr.Element, len(order))
	for n, idx := range order {
		ok, err := j.VerifyTicket(par, seed, pids[idx], pks[idx], ticks[idx])
		if err != nil {
			return AggTicket{}, err
		}
		if !ok {
			return AggTicket{}, fmt.Errorf("lottery: ticket for pid %d does not verify", pids[idx])
		}
		proofs[n] = kzg.OpeningProof{H: ticks[idx].Proof, ClaimedValue: ticks[idx].Value}
		if weights[n], err = foldingWeight(pids[idx], &pks[idx].C, seed); err != nil {
			return AggTicket{}, err
		}
	}

	agg, err := kzg.AggregateProofs(proofs, weights)
	if err != nil {
		return AggTicket{}, err
	}
	return AggTicket{Proof: agg.H, Values: agg.Values}, nil
}

// VerifyAggregate checks a round aggregate against the listed winners with a
// single pairing equation over the label-shifted commitments.
func (Jack) VerifyAggregate(par *Params, seed Seed, pids []uint64, pks []PublicKey, agg AggTicket) (bool, error) {
	if seed.Round < 0 || seed.Round > par.SRS.MaxRound() {
		return false, ErrRoundRange
	}
	if len(pids) != len(pks) {
		return false, ErrInputLength
	}
	if len(pids) != len(agg.Values) {
		return false, nil
	}

	order, err := pidOrder(pids)
	if err != nil {
		return false, err
	}

	digests := make([]kzg.Digest, len(order))
	weights := make([]fr.Element, len(order))
	for n, idx := range order {
		if !inWinningSet(&agg.Values[n], par.SRS.K) {
			return false, nil
		}
		if digests[n], err = shiftedDigest(pks[idx].C, pids[idx], seed); err != nil {
			return false, err
		}
		if weights[n], err = foldingWeight(pids[idx], &pks[idx].C, seed); err != nil {
			return false, err
		}
	}

	proof := kzg.AggregatedProof{H: agg.Proof, Values: agg.Values}
	return kzg.VerifyAggregate(par.SRS, digests, weights, seed.Round, &proof)
}

// shiftedValue computes v[i] + H(pid, i, z), the entry the round actually
// tests.
func shiftedValue(par *Params, seed Seed, pid uint64, sk *SecretKey) (fr.Element, error) {
	if seed.Round < 0 || seed.Round > par.SRS.MaxRound() {
		return fr.Element{}, ErrRoundRange
	}
	if len(sk.V) != par.SRS.Size {
		return fr.Element{}, kzg.ErrVectorLength
	}
	label, err := lotteryLabel(pid, seed)
	if err != nil {
		return fr.Element{}, err
	}
	var y fr.Element
	y.Add(&sk.V[seed.Round], &label)
	return y, nil
}

// shiftedDigest moves the label shift to the commitment side: C + H*G1 opens
// at the round index to the shifted value under the unchanged quotient.
func shiftedDigest(c kzg.Digest, pid uint64, seed Seed) (kzg.Digest, error) {
	label, err := lotteryLabel(pid, seed)
	if err != nil {
		return kzg.Digest{}, err
	}
	var labelBig big.Int
	label.BigInt(&labelBig)
	var shift curve.G1Affine
	shift.ScalarMultiplicationBase(&labelBig)

	var acc curve.G1Jac
	acc.FromAffine(&c)
	acc.AddMixed(&shift)

	var out kzg.Digest
	out.FromJacobian(&acc)
	return out, nil
}

// pidOrder returns the indices that sort pids ascending, rejecting
// duplicates.
func pidOrder(pids []uint64) ([]int, error) {
	order := make([]int, len(pids))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return pids[order[a]] < pids[order[b]] })
	for n := 1; n < len(order); n++ {
		if pids[order[n]] == pids[order[n-1]] {
			return nil, fmt.Errorf("lottery: duplicate pid %d", pids[order[n]])
		}
	}
	return order, nil
}

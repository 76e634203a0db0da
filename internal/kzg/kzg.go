// kzg.go - KZG vector commitment over the SRS evaluation domain.
//
// A vector v of length d is the evaluation table of a unique polynomial f of
// degree < d over the domain; the commitment is [f(tau)]G1 computed from the
// Lagrange table, and an opening at index i is the quotient commitment
// [(f(X) - v[i]) / (X - omega^i)](tau)G1. Same-index openings of different
// commitments fold into a single group element checked by one pairing.

package kzg

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"jackpot/internal/ecntt"
	"jackpot/internal/srs"
)

var (
	ErrInvalidIndex   = errors.New("kzg: opening index out of domain range")
	ErrVectorLength   = errors.New("kzg: vector length does not match SRS domain size")
	ErrLengthMismatch = errors.New("kzg: mismatched number of digests, values and proofs")
	ErrEmptyAggregate = errors.New("kzg: nothing to aggregate")
)

// Digest is the commitment to a vector.
type Digest = curve.G1Affine

// OpeningProof attests that the committed vector holds ClaimedValue at one
// domain index. The index travels alongside, not inside, the proof.
type OpeningProof struct {
	// H is the quotient commitment.
	H curve.G1Affine

	// ClaimedValue is the purported vector entry.
	ClaimedValue fr.Element
}

// AggregatedProof folds same-index openings of several commitments into one
// group element. Values keeps the per-commitment claimed entries in input
// order.
type AggregatedProof struct {
	H      curve.G1Affine
	Values []fr.Element
}

// Commit commits to v via one multi-scalar multiplication over the Lagrange
// table.
func Commit(s *srs.SRS, v []fr.Element) (Digest, error) {
	if len(v) != s.Size {
		return Digest{}, ErrVectorLength
	}
	var d Digest
	if _, err := d.MultiExp(s.Lagrange, v, ecc.MultiExpConfig{}); err != nil {
		return Digest{}, err
	}
	return d, nil
}

// Open produces the opening of v at index i. The quotient is obtained by
// synthetic division of the monomial form by (X - omega^i).
func Open(s *srs.SRS, v []fr.Element, i int) (OpeningProof, error) {
	if len(v) != s.Size {
		return OpeningProof{}, ErrVectorLength
	}
	if i < 0 || i >= s.Size {
		return OpeningProof{}, ErrInvalidIndex
	}

	c, err := ecntt.CoeffsFromEvals(s.Domain, v)
	if err != nil {
		return OpeningProof{}, err
	}

	proof := OpeningProof{ClaimedValue: v[i]}
	point := s.DomainPoint(i)
	q := dividePolyByXminusA(c, v[i], point)

	if _, err := proof.H.MultiExp(s.G1[:len(q)], q, ecc.MultiExpConfig{}); err != nil {
		return OpeningProof{}, err
	}
	return proof, nil
}

// Verify checks one opening against one digest at index i. A failed pairing
// check is a boolean result, not an error; errors are reserved for malformed
// inputs.
func Verify(s *srs.SRS, digest *Digest, i int, proof *OpeningProof) (bool, error) {
	if i < 0 || i >= s.Size {
		return false, ErrInvalidIndex
	}

	// [f(tau) - y]G1
	var claimed curve.G1Affine
	var yBig big.Int
	proof.ClaimedValue.BigInt(&yBig)
	claimed.ScalarMultiplicationBase(&yBig)
	var fMinusY, tmp curve.G1Jac
	fMinusY.FromAffine(digest)
	tmp.FromAffine(&claimed)
	fMinusY.SubAssign(&tmp)
	var fMinusYAff, negH curve.G1Affine
	fMinusYAff.FromJacobian(&fMinusY)
	negH.Neg(&proof.H)

	// [tau - omega^i]G2
	shifted := xMinusPointG2(s, i)

	return curve.PairingCheck(
		[]curve.G1Affine{fMinusYAff, negH},
		[]curve.G2Affine{s.G2[0], shifted},
	)
}

// AggregateProofs folds same-index proofs with the given coefficients:
// H* = sum_j coeffs[j] * H_j. The claimed values are carried through unfolded
// so the verifier can test each against the winning predicate.
func AggregateProofs(proofs []OpeningProof, coeffs []fr.Element) (AggregatedProof, error) {
	if len(proofs) == 0 {
		return AggregatedProof{}, ErrEmptyAggregate
	}
	if len(proofs) != len(coeffs) {
		return AggregatedProof{}, ErrLengthMismatch
	}

	quotients := make([]curve.G1Affine, len(proofs))
	agg := AggregatedProof{Values: make([]fr.Element, len(proofs))}
	for j := range proofs {
		quotients[j] = proofs[j].H
		agg.Values[j] = proofs[j].ClaimedValue
	}
	if _, err := agg.H.MultiExp(quotients, coeffs, ecc.MultiExpConfig{}); err != nil {
		return AggregatedProof{}, err
	}
	return agg, nil
}

// VerifyAggregate checks a folded same-index opening of several digests with
// one pairing equation:
//
//	e(sum_j c_j*(C_j - y_j*G1), G2) == e(H*, [tau - omega^i]G2)
func VerifyAggregate(s *srs.SRS, digests []Digest, coeffs []fr.Element, i int, agg *AggregatedProof) (bool, error) {
	if i < 0 || i >= s.Size {
		return false, ErrInvalidIndex
	}
	if len(digests) == 0 {
		return false, ErrEmptyAggregate
	}
	if len(digests) != len(agg.Values) || len(digests) != len(coeffs) {
		return false, ErrLengthMismatch
	}

	// fold digests and claimed values with the same coefficients
	var foldedDigest curve.G1Affine
	if _, err := foldedDigest.MultiExp(digests, coeffs, ecc.MultiExpConfig{}); err != nil {
		return false, err
	}
	var foldedValue, t fr.Element
	for j := range coeffs {
		t.Mul(&agg.Values[j], &coeffs[j])
		foldedValue.Add(&foldedValue, &t)
	}

	var claimed curve.G1Affine
	var yBig big.Int
	foldedValue.BigInt(&yBig)
	claimed.ScalarMultiplicationBase(&yBig)
	var lhs, tmp curve.G1Jac
	lhs.FromAffine(&foldedDigest)
	tmp.FromAffine(&claimed)
	lhs.SubAssign(&tmp)
	var lhsAff, negH curve.G1Affine
	lhsAff.FromJacobian(&lhs)
	negH.Neg(&agg.H)

	shifted := xMinusPointG2(s, i)

	return curve.PairingCheck(
		[]curve.G1Affine{lhsAff, negH},
		[]curve.G2Affine{s.G2[0], shifted},
	)
}

// xMinusPointG2 assembles [tau - omega^i]G2 from the two stored G2 powers.
func xMinusPointG2(s *srs.SRS, i int) curve.G2Affine {
	point := s.DomainPoint(i)
	var pointBig big.Int
	point.BigInt(&pointBig)

	var genG2, tauG2, shifted curve.G2Jac
	genG2.FromAffine(&s.G2[0])
	tauG2.FromAffine(&s.G2[1])
	shifted.ScalarMultiplication(&genG2, &pointBig).
		Neg(&shifted).
		AddAssign(&tauG2)

	var out curve.G2Affine
	out.FromJacobian(&shifted)
	return out
}

// dividePolyByXminusA computes (f - fa) / (x - a) by synthetic division, in
// monomial basis. f is consumed.
func dividePolyByXminusA(f []fr.Element, fa, a fr.Element) []fr.Element {
	f[0].Sub(&f[0], &fa)

	var c, t fr.Element
	for i := len(f) - 1; i >= 0; i-- {
		t.Mul(&c, &a)
		f[i].Add(&f[i], &t)
		c, f[i] = f[i], c
	}

	return f[:len(f)-1]
}

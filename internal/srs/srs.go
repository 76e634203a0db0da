// srs.go - Structured reference string for the KZG vector commitment.
//
// The SRS holds powers of a secret tau in G1 and G2, the Lagrange-basis image
// of the G1 powers for fast commits, and the preprocessed Toeplitz table used
// by the Feist-Khovratovich batch opener. tau itself is zeroized before Setup
// returns; a real deployment would replace Setup with a multiparty ceremony.

package srs

import (
	"errors"
	"io"
	"math/big"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"

	"jackpot/internal/ecntt"
)

var (
	ErrSizeNotPowerOfTwo = errors.New("srs: domain size must be a power of two")
	ErrMinSize           = errors.New("srs: minimum domain size is 2")
	ErrInvalidK          = errors.New("srs: win parameter k must be at least 2")
)

// SRS is the public parameter set shared by all provers and verifiers.
// It is immutable after Setup and safe for concurrent reads.
type SRS struct {
	// Size is the evaluation domain cardinality d, a power of two. Committed
	// vectors have length d; rounds use indices 0..d-2.
	Size int

	// K is the inverse win probability carried as a scheme parameter.
	K uint64

	// G1 holds [tau^i]G1 for i in [0, d-1].
	G1 []curve.G1Affine

	// G2 holds [G2, tau*G2]. The verifier never needs a longer tail: every
	// aggregate in a round shares a single opening index.
	G2 [2]curve.G2Affine

	// Lagrange holds [L_i(tau)]G1 over the domain, for Lagrange-basis commits.
	Lagrange []curve.G1Affine

	// TauHat is the size-2d transform of the reversed, padded G1 powers,
	// cached for the Toeplitz product of the batch opener.
	TauHat []curve.G1Affine

	// Domain and DomainExt are the radix-2 domains of size d and 2d.
	Domain    *fft.Domain
	DomainExt *fft.Domain
}

// SampleFr draws a field element from the entropy oracle. The draw is
// oversampled before reduction so the bias is negligible.
func SampleFr(rng io.Reader) (fr.Element, error) {
	var buf [fr.Bytes * 2]byte
	var e fr.Element
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return e, err
	}
	e.SetBytes(buf[:])
	return e, nil
}

// Setup builds an SRS for a domain of the given size (a power of two) and win
// parameter k. Callers that need n lotteries must pre-round size to the next
// power of two >= n+1.
func Setup(rng io.Reader, size int, k uint64) (*SRS, error) {
	if size < 2 {
		return nil, ErrMinSize
	}
	if size&(size-1) != 0 {
		return nil, ErrSizeNotPowerOfTwo
	}
	if k < 2 {
		return nil, ErrInvalidK
	}

	tau, err := SampleFr(rng)
	if err != nil {
		return nil, err
	}

	s := &SRS{
		Size:      size,
		K:         k,
		Domain:    fft.NewDomain(uint64(size)),
		DomainExt: fft.NewDomain(uint64(2 * size)),
	}

	_, _, g1Gen, g2Gen := curve.Generators()

	// Monomial powers tau^i * G1.
	s.G1 = make([]curve.G1Affine, size)
	s.G1[0] = g1Gen
	powers := make([]fr.Element, size-1)
	powers[0] = tau
	for i := 1; i < len(powers); i++ {
		powers[i].Mul(&powers[i-1], &tau)
	}
	copy(s.G1[1:], curve.BatchScalarMultiplicationG1(&g1Gen, powers))

	var tauBig big.Int
	tau.BigInt(&tauBig)
	s.G2[0] = g2Gen
	s.G2[1].ScalarMultiplication(&g2Gen, &tauBig)

	// Lagrange table: the inverse transform of the monomial powers in the
	// exponent turns the monomial basis into the Lagrange basis at tau.
	lag := make([]curve.G1Jac, size)
	for i := range lag {
		lag[i].FromAffine(&s.G1[i])
	}
	if err := ecntt.FFTInverse(s.Domain, lag); err != nil {
		return nil, err
	}
	s.Lagrange = curve.BatchJacobianToAffineG1(lag)

	// FK table: transform of (tau^{d-2}, ..., tau^0) * G1 padded with the
	// point at infinity to length 2d.
	ext := make([]curve.G1Jac, 2*size)
	for p := 0; p < size-1; p++ {
		ext[p].FromAffine(&s.G1[size-2-p])
	}
	for p := size - 1; p < 2*size; p++ {
		ext[p].Set(&g1JacInfinity)
	}
	if err := ecntt.FFT(s.DomainExt, ext); err != nil {
		return nil, err
	}
	s.TauHat = curve.BatchJacobianToAffineG1(ext)

	// toxic waste
	tau.SetZero()
	tauBig.SetInt64(0)

	return s, nil
}

// g1JacInfinity is the point at infinity in Jacobian coordinates (Z = 0).
var g1JacInfinity curve.G1Jac

// MaxRound returns the largest usable round index.
func (s *SRS) MaxRound() int {
	return s.Size - 2
}

// DomainPoint returns omega^i for the size-d domain.
func (s *SRS) DomainPoint(i int) fr.Element {
	var w fr.Element
	w.Exp(s.Domain.Generator, big.NewInt(int64(i)))
	return w
}

// fk.go - Feist-Khovratovich batch computation of all openings.
//
// The quotient commitments at every domain point share a Toeplitz structure in
// the monomial coefficients of f. Embedding the Toeplitz matrix in a size-2d
// circulant turns the matrix-vector product with the tau powers into a
// Hadamard product between transforms; the SRS caches the transform of the
// padded, reversed tau powers. One final size-d transform of the product
// yields the opening at omega^i for every i in O(d log d) group operations.

package kzg

import (
	"math/big"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"

	"jackpot/internal/ecntt"
	"jackpot/internal/srs"
)

// OpenAll computes the opening of v at every domain index. OpenAll(v)[i] is
// byte-identical to Open(v, i).H after affine serialization.
func OpenAll(s *srs.SRS, v []fr.Element) ([]curve.G1Affine, error) {
	if len(v) != s.Size {
		return nil, ErrVectorLength
	}
	d := s.Size
	m := 2 * d

	c, err := ecntt.CoeffsFromEvals(s.Domain, v)
	if err != nil {
		return nil, err
	}

	// Circulant kernel: the Toeplitz first column (c[1], ..., c[d-1], 0)
	// embedded at offsets 1..d-1 of the length-2d vector.
	kernel := make([]fr.Element, m)
	copy(kernel[1:d], c[1:])
	s.DomainExt.FFT(kernel, fft.DIF)
	fft.BitReverse(kernel)

	// Hadamard product with the cached transform of the tau powers, then the
	// inverse transform; entries d-1..2d-3 hold h_0..h_{d-2}.
	conv := make([]curve.G1Jac, m)
	var t curve.G1Affine
	var kBig big.Int
	for i := 0; i < m; i++ {
		t.ScalarMultiplication(&s.TauHat[i], kernel[i].BigInt(&kBig))
		conv[i].FromAffine(&t)
	}
	if err := ecntt.FFTInverse(s.DomainExt, conv); err != nil {
		return nil, err
	}

	// h_u = conv[u + d - 1] for u in [0, d-2]; h_{d-1} is the identity.
	h := make([]curve.G1Jac, d)
	for u := 0; u < d-1; u++ {
		h[u].Set(&conv[u+d-1])
	}
	// h[d-1] stays at the point at infinity (zero value, Z = 0).

	// The openings are the size-d transform of h.
	if err := ecntt.FFT(s.Domain, h); err != nil {
		return nil, err
	}
	return curve.BatchJacobianToAffineG1(h), nil
}

// ecntt.go - Number-theoretic transforms in the exponent of G1.
//
// A radix-2 Cooley-Tukey FFT applied to a vector of group elements, using
// scalar twiddle factors from an fft.Domain. This is the primitive behind the
// Lagrange SRS table and the Feist-Khovratovich batch opener: evaluating a
// polynomial with G1 coefficients at all roots of unity of the domain.

package ecntt

import (
	"errors"
	"math/big"
	"math/bits"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
)

var (
	ErrSizeMismatch  = errors.New("ecntt: input length does not match domain cardinality")
	ErrNotPowerOfTwo = errors.New("ecntt: input length is not a power of two")
)

// FFT computes, in place, a[i] <- sum_u a[u] * w^(i*u) for w the domain
// generator. Input and output are in natural order.
func FFT(domain *fft.Domain, a []curve.G1Jac) error {
	if err := checkSize(domain, a); err != nil {
		return err
	}
	return transform(domain.Generator, a)
}

// FFTInverse computes the inverse transform in place, including the 1/n
// scaling. Input and output are in natural order.
func FFTInverse(domain *fft.Domain, a []curve.G1Jac) error {
	if err := checkSize(domain, a); err != nil {
		return err
	}
	if err := transform(domain.GeneratorInv, a); err != nil {
		return err
	}
	var nInv big.Int
	domain.CardinalityInv.BigInt(&nInv)
	for i := range a {
		a[i].ScalarMultiplication(&a[i], &nInv)
	}
	return nil
}

func checkSize(domain *fft.Domain, a []curve.G1Jac) error {
	n := len(a)
	if n == 0 || n&(n-1) != 0 {
		return ErrNotPowerOfTwo
	}
	if uint64(n) != domain.Cardinality {
		return ErrSizeMismatch
	}
	return nil
}

// transform is the iterative decimation-in-time butterfly. The permutation to
// bit-reversed order happens up front so callers always see natural order.
func transform(gen fr.Element, a []curve.G1Jac) error {
	n := len(a)
	if n == 1 {
		return nil
	}
	bitReverse(a)

	logN := bits.TrailingZeros(uint(n))
	var w, wm fr.Element
	var wBig big.Int
	var t, u curve.G1Jac
	for s := 1; s <= logN; s++ {
		m := 1 << s
		half := m >> 1
		// wm = gen^(n/m), the m-th root of unity of the domain
		wm.Exp(gen, big.NewInt(int64(n/m)))
		for k := 0; k < n; k += m {
			w.SetOne()
			for j := 0; j < half; j++ {
				t.ScalarMultiplication(&a[k+j+half], w.BigInt(&wBig))
				u.Set(&a[k+j])
				a[k+j].Set(&u).AddAssign(&t)
				a[k+j+half].Set(&u).SubAssign(&t)
				w.Mul(&w, &wm)
			}
		}
	}
	return nil
}

func bitReverse(a []curve.G1Jac) {
	n := uint64(len(a))
	nn := uint64(64 - bits.TrailingZeros64(n))
	for i := uint64(0); i < n; i++ {
		irev := bits.Reverse64(i) >> nn
		if irev > i {
			a[i], a[irev] = a[irev], a[i]
		}
	}
}

// CoeffsFromEvals interprets v as evaluations over the domain and returns the
// monomial coefficients of the interpolating polynomial, in natural order.
// v is not modified.
func CoeffsFromEvals(domain *fft.Domain, v []fr.Element) ([]fr.Element, error) {
	if uint64(len(v)) != domain.Cardinality {
		return nil, ErrSizeMismatch
	}
	c := make([]fr.Element, len(v))
	copy(c, v)
	domain.FFTInverse(c, fft.DIF)
	fft.BitReverse(c)
	return c, nil
}

// EvalsFromCoeffs evaluates the polynomial with the given monomial
// coefficients at every domain point, in natural order. c is not modified.
func EvalsFromCoeffs(domain *fft.Domain, c []fr.Element) ([]fr.Element, error) {
	if uint64(len(c)) != domain.Cardinality {
		return nil, ErrSizeMismatch
	}
	e := make([]fr.Element, len(c))
	copy(e, c)
	domain.FFT(e, fft.DIF)
	fft.BitReverse(e)
	return e, nil
}

package ecntt

import (
	"math/big"
	"testing"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
	"github.com/stretchr/testify/require"
)

// naiveDFT evaluates the G1 polynomial at every domain point directly.
func naiveDFT(domain *fft.Domain, a []curve.G1Jac) []curve.G1Jac {
	n := len(a)
	out := make([]curve.G1Jac, n)
	var wi, wij fr.Element
	var term curve.G1Jac
	var b big.Int
	for i := 0; i < n; i++ {
		wi.Exp(domain.Generator, big.NewInt(int64(i)))
		wij.SetOne()
		for j := 0; j < n; j++ {
			term.Set(&a[j])
			term.ScalarMultiplication(&term, wij.BigInt(&b))
			out[i].AddAssign(&term)
			wij.Mul(&wij, &wi)
		}
	}
	return out
}

func randomPoints(t *testing.T, n int) []curve.G1Jac {
	t.Helper()
	_, _, g1Gen, _ := curve.Generators()
	points := make([]curve.G1Jac, n)
	var s fr.Element
	var b big.Int
	for i := range points {
		_, err := s.SetRandom()
		require.NoError(t, err)
		points[i].FromAffine(&g1Gen)
		points[i].ScalarMultiplication(&points[i], s.BigInt(&b))
	}
	return points
}

func TestFFTMatchesNaiveDFT(t *testing.T) {
	const n = 8
	domain := fft.NewDomain(n)
	a := randomPoints(t, n)

	want := naiveDFT(domain, a)
	require.NoError(t, FFT(domain, a))

	for i := range a {
		require.True(t, a[i].Equal(&want[i]), "mismatch at index %d", i)
	}
}

func TestFFTInverseRoundTrip(t *testing.T) {
	const n = 16
	domain := fft.NewDomain(n)
	a := randomPoints(t, n)
	orig := make([]curve.G1Jac, n)
	copy(orig, a)

	require.NoError(t, FFT(domain, a))
	require.NoError(t, FFTInverse(domain, a))

	for i := range a {
		require.True(t, a[i].Equal(&orig[i]), "round trip broke index %d", i)
	}
}

func TestFFTRejectsBadLength(t *testing.T) {
	domain := fft.NewDomain(8)
	require.ErrorIs(t, FFT(domain, make([]curve.G1Jac, 6)), ErrNotPowerOfTwo)
	require.ErrorIs(t, FFT(domain, nil), ErrNotPowerOfTwo)
}

func TestScalarTransformsRoundTrip(t *testing.T) {
	const n = 16
	domain := fft.NewDomain(n)
	v := make([]fr.Element, n)
	for i := range v {
		_, err := v[i].SetRandom()
		require.NoError(t, err)
	}

	c, err := CoeffsFromEvals(domain, v)
	require.NoError(t, err)
	e, err := EvalsFromCoeffs(domain, c)
	require.NoError(t, err)

	for i := range v {
		require.True(t, e[i].Equal(&v[i]), "round trip broke index %d", i)
	}

	_, err = CoeffsFromEvals(domain, v[:4])
	require.ErrorIs(t, err, ErrSizeMismatch)
}

package kzg

import (
	"crypto/rand"
	"math/big"
	"testing"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"jackpot/internal/srs"
)

const testSize = 16

func testSRS(t *testing.T) *srs.SRS {
	t.Helper()
	s, err := srs.Setup(rand.Reader, testSize, 4)
	require.NoError(t, err)
	return s
}

func randomVector(t *testing.T, n int) []fr.Element {
	t.Helper()
	v := make([]fr.Element, n)
	for i := range v {
		_, err := v[i].SetRandom()
		require.NoError(t, err)
	}
	return v
}

func genFr() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		var a fr.Element
		a.SetRandom()
		return gopter.NewGenResult(a, gopter.NoShrinker)
	}
}

func TestCommitDeterminism(t *testing.T) {
	s := testSRS(t)
	v := randomVector(t, s.Size)

	c1, err := Commit(s, v)
	require.NoError(t, err)
	c2, err := Commit(s, v)
	require.NoError(t, err)
	require.True(t, c1.Equal(&c2))

	_, err = Commit(s, v[:4])
	require.ErrorIs(t, err, ErrVectorLength)
}

func TestCommitHomomorphism(t *testing.T) {
	s := testSRS(t)
	v1 := randomVector(t, s.Size)
	v2 := randomVector(t, s.Size)
	c1, err := Commit(s, v1)
	require.NoError(t, err)
	c2, err := Commit(s, v2)
	require.NoError(t, err)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10
	properties := gopter.NewProperties(parameters)

	properties.Property("commit(a*v1 + b*v2) == a*C1 + b*C2", prop.ForAll(
		func(a, b fr.Element) bool {
			combined := make([]fr.Element, s.Size)
			var t1, t2 fr.Element
			for i := range combined {
				t1.Mul(&a, &v1[i])
				t2.Mul(&b, &v2[i])
				combined[i].Add(&t1, &t2)
			}
			cc, err := Commit(s, combined)
			if err != nil {
				return false
			}

			var aBig, bBig big.Int
			var ac, bc curve.G1Affine
			ac.ScalarMultiplication(&c1, a.BigInt(&aBig))
			bc.ScalarMultiplication(&c2, b.BigInt(&bBig))
			var sum curve.G1Jac
			sum.FromAffine(&ac)
			sum.AddMixed(&bc)
			var sumAff curve.G1Affine
			sumAff.FromJacobian(&sum)

			return cc.Equal(&sumAff)
		},
		genFr(),
		genFr(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestOpenVerify(t *testing.T) {
	s := testSRS(t)
	v := randomVector(t, s.Size)
	c, err := Commit(s, v)
	require.NoError(t, err)

	for _, i := range []int{0, 1, 7, s.Size - 1} {
		proof, err := Open(s, v, i)
		require.NoError(t, err)
		require.True(t, proof.ClaimedValue.Equal(&v[i]))

		ok, err := Verify(s, &c, i, &proof)
		require.NoError(t, err)
		require.True(t, ok, "opening at %d rejected", i)
	}

	_, err = Open(s, v, s.Size)
	require.ErrorIs(t, err, ErrInvalidIndex)
	_, err = Open(s, v, -1)
	require.ErrorIs(t, err, ErrInvalidIndex)
}

func TestVerifyRejectsWrongValue(t *testing.T) {
	s := testSRS(t)
	v := randomVector(t, s.Size)
	c, err := Commit(s, v)
	require.NoError(t, err)

	proof, err := Open(s, v, 3)
	require.NoError(t, err)

	var one fr.Element
	one.SetOne()
	proof.ClaimedValue.Add(&proof.ClaimedValue, &one)
	ok, err := Verify(s, &c, 3, &proof)
	require.NoError(t, err)
	require.False(t, ok)

	// right value, wrong index
	proof, err = Open(s, v, 3)
	require.NoError(t, err)
	ok, err = Verify(s, &c, 4, &proof)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = Verify(s, &c, s.Size, &proof)
	require.ErrorIs(t, err, ErrInvalidIndex)
}

func TestAggregateRoundTrip(t *testing.T) {
	s := testSRS(t)
	const m = 4
	const index = 5

	digests := make([]Digest, m)
	proofs := make([]OpeningProof, m)
	coeffs := make([]fr.Element, m)
	for j := 0; j < m; j++ {
		v := randomVector(t, s.Size)
		var err error
		digests[j], err = Commit(s, v)
		require.NoError(t, err)
		proofs[j], err = Open(s, v, index)
		require.NoError(t, err)
		_, err = coeffs[j].SetRandom()
		require.NoError(t, err)
	}

	agg, err := AggregateProofs(proofs, coeffs)
	require.NoError(t, err)
	require.Len(t, agg.Values, m)

	ok, err := VerifyAggregate(s, digests, coeffs, index, &agg)
	require.NoError(t, err)
	require.True(t, ok)

	// tampered aggregate point
	var bad AggregatedProof
	bad.Values = agg.Values
	var j curve.G1Jac
	j.FromAffine(&agg.H)
	j.AddMixed(&s.G1[0])
	bad.H.FromJacobian(&j)
	ok, err = VerifyAggregate(s, digests, coeffs, index, &bad)
	require.NoError(t, err)
	require.False(t, ok)

	// tampered claimed value
	bad = agg
	bad.Values = make([]fr.Element, m)
	copy(bad.Values, agg.Values)
	var one fr.Element
	one.SetOne()
	bad.Values[2].Add(&bad.Values[2], &one)
	ok, err = VerifyAggregate(s, digests, coeffs, index, &bad)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = AggregateProofs(nil, nil)
	require.ErrorIs(t, err, ErrEmptyAggregate)
	_, err = AggregateProofs(proofs, coeffs[:1])
	require.ErrorIs(t, err, ErrLengthMismatch)
}

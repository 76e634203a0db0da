package kzg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The batch opener must agree with the single opener at every index, down to
// the serialized bytes.
func TestOpenAllMatchesOpen(t *testing.T) {
	s := testSRS(t)
	v := randomVector(t, s.Size)

	table, err := OpenAll(s, v)
	require.NoError(t, err)
	require.Len(t, table, s.Size)

	for i := 0; i < s.Size; i++ {
		proof, err := Open(s, v, i)
		require.NoError(t, err)
		require.True(t, table[i].Equal(&proof.H), "batch opening %d differs", i)
		require.Equal(t, proof.H.Bytes(), table[i].Bytes(), "batch opening %d serializes differently", i)
	}
}

// Every table entry must also pass the pairing verifier.
func TestOpenAllVerifies(t *testing.T) {
	s := testSRS(t)
	v := randomVector(t, s.Size)
	c, err := Commit(s, v)
	require.NoError(t, err)

	table, err := OpenAll(s, v)
	require.NoError(t, err)

	for i := 0; i < s.Size; i++ {
		proof := OpeningProof{H: table[i], ClaimedValue: v[i]}
		ok, err := Verify(s, &c, i, &proof)
		require.NoError(t, err)
		require.True(t, ok, "batch opening %d rejected", i)
	}
}

func TestOpenAllRejectsBadLength(t *testing.T) {
	s := testSRS(t)
	_, err := OpenAll(s, randomVector(t, 4))
	require.ErrorIs(t, err, ErrVectorLength)
}

package lottery

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBLSHRoundTrip(t *testing.T) {
	b := BLSH{}
	par, err := b.Setup(rand.Reader, testSize, 2)
	require.NoError(t, err)

	const users = 8
	pks := make([]BLSHPublicKey, users)
	sks := make([]*BLSHSecretKey, users)
	for u := range pks {
		pks[u], sks[u], err = b.KeyGen(rand.Reader, par)
		require.NoError(t, err)
		require.NoError(t, b.VerifyKey(par, pks[u]))
	}

	var infinity BLSHPublicKey
	require.ErrorIs(t, b.VerifyKey(par, infinity), ErrMalformedPoint)

	foundWinner := false
	for round := 0; round < par.Rounds && !foundWinner; round++ {
		seed, err := b.SampleSeed(rand.Reader, par, round)
		require.NoError(t, err)

		var pids []uint64
		var winnerPks []BLSHPublicKey
		var tickets []BLSHTicket
		for u := 0; u < users; u++ {
			pid := uint64(u)
			won, err := b.Participate(par, seed, pid, sks[u])
			require.NoError(t, err)
			if !won {
				_, err := b.GetTicket(par, seed, pid, sks[u])
				require.ErrorIs(t, err, ErrNotWinning)
				continue
			}
			tk, err := b.GetTicket(par, seed, pid, sks[u])
			require.NoError(t, err)
			ok, err := b.VerifyTicket(par, seed, pid, pks[u], tk)
			require.NoError(t, err)
			require.True(t, ok)

			pids = append(pids, pid)
			winnerPks = append(winnerPks, pks[u])
			tickets = append(tickets, tk)
		}
		if len(pids) == 0 {
			continue
		}
		foundWinner = true

		agg, err := b.Aggregate(par, seed, pids, winnerPks, tickets)
		require.NoError(t, err)
		require.Len(t, agg.Sigs, len(pids))

		ok, err := b.VerifyAggregate(par, seed, pids, winnerPks, agg)
		require.NoError(t, err)
		require.True(t, ok)

		// a ticket from one key does not verify for another
		if len(pids) >= 1 && users >= 2 {
			otherPk := pks[(int(pids[0])+1)%users]
			ok, err := b.VerifyTicket(par, seed, pids[0], otherPk, tickets[0])
			require.NoError(t, err)
			require.False(t, ok)
		}
	}
	require.True(t, foundWinner, "no winner over %d rounds with k=2; statistically impossible", par.Rounds)
}

func TestBLSHMarshal(t *testing.T) {
	b := BLSH{}
	par, err := b.Setup(rand.Reader, testSize, 2)
	require.NoError(t, err)

	pk, sk, err := b.KeyGen(rand.Reader, par)
	require.NoError(t, err)

	var pk2 BLSHPublicKey
	require.NoError(t, pk2.SetBytes(pk.Bytes()))
	require.True(t, pk2.P.Equal(&pk.P))
	require.Error(t, pk2.SetBytes([]byte{0xff}))

	seed, err := b.SampleSeed(rand.Reader, par, 0)
	require.NoError(t, err)
	tk, err := b.sign(par, seed, sk)
	require.NoError(t, err)

	var tk2 BLSHTicket
	require.NoError(t, tk2.SetBytes(tk.Bytes()))
	require.True(t, tk2.Sig.Equal(&tk.Sig))
}

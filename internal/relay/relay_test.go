package relay

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"jackpot/internal/lottery"
)

const testAddr = "localhost:18080"

func TestRelayRoundTrip(t *testing.T) {
	scheme := lottery.Jack{Preprocess: true}
	par, err := scheme.Setup(rand.Reader, 16, 2)
	require.NoError(t, err)

	boardPath := filepath.Join(t.TempDir(), "board.json")
	r := New(par, boardPath, zerolog.Nop())
	r.Serve(testAddr)
	defer r.Shutdown()
	time.Sleep(200 * time.Millisecond)

	const users = 6
	sks := make([]*lottery.SecretKey, users)
	pks := make([]lottery.PublicKey, users)
	for u := 0; u < users; u++ {
		pks[u], sks[u], err = scheme.KeyGen(rand.Reader, par)
		require.NoError(t, err)
		require.NoError(t, RegisterKey(testAddr, uint64(u), pks[u]))
	}

	// duplicate registration is refused
	require.Error(t, RegisterKey(testAddr, 0, pks[0]))

	sawWinner := false
	const rounds = 10
	for round := 0; round < rounds; round++ {
		seed, err := FetchSeed(testAddr, round)
		require.NoError(t, err)
		require.Equal(t, round, seed.Round)

		// the seed is fixed once drawn
		again, err := FetchSeed(testAddr, round)
		require.NoError(t, err)
		require.True(t, again.Z.Equal(&seed.Z))

		for u := 0; u < users; u++ {
			pid := uint64(u)
			won, err := scheme.Participate(par, seed, pid, sks[u])
			require.NoError(t, err)
			if !won {
				continue
			}
			tk, err := scheme.GetTicket(par, seed, pid, sks[u])
			require.NoError(t, err)
			require.NoError(t, SubmitTicket(testAddr, round, pid, tk))
			sawWinner = true
		}

		rec, err := CloseRound(testAddr, round)
		require.NoError(t, err)
		require.Equal(t, round, rec.Round)

		// a closed round refuses a second close
		_, err = CloseRound(testAddr, round)
		require.Error(t, err)
	}
	require.True(t, sawWinner, "no winner across %d rounds with k=2", rounds)

	// the persisted board re-verifies from disk
	board, err := FetchBoard(testAddr)
	require.NoError(t, err)
	require.Len(t, board.Records, rounds)

	saved, err := LoadBoardFromFile(boardPath)
	require.NoError(t, err)
	require.Len(t, saved.Records, rounds)

	for _, rec := range saved.Records {
		if len(rec.Pids) == 0 {
			continue
		}
		seed, recPks, agg, err := rec.Decode()
		require.NoError(t, err)
		ok, err := scheme.VerifyAggregate(par, seed, rec.Pids, recPks, agg)
		require.NoError(t, err)
		require.True(t, ok, "round %d failed to re-verify", rec.Round)
	}

	ok, err := r.VerifyBoard()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRelayRejectsBadSubmissions(t *testing.T) {
	scheme := lottery.Jack{}
	par, err := scheme.Setup(rand.Reader, 16, 2)
	require.NoError(t, err)

	r := New(par, "", zerolog.Nop())

	pk, sk, err := scheme.KeyGen(rand.Reader, par)
	require.NoError(t, err)
	require.NoError(t, r.Register(7, pk))

	// no seed yet
	err = r.Submit(0, 7, lottery.Ticket{})
	require.Error(t, err)

	seed, err := r.Seed(0)
	require.NoError(t, err)

	// unregistered pid
	err = r.Submit(0, 99, lottery.Ticket{})
	require.Error(t, err)

	// losing or garbage tickets never land on the board
	err = r.Submit(0, 7, lottery.Ticket{})
	require.Error(t, err)

	won, err := scheme.Participate(par, seed, 7, sk)
	require.NoError(t, err)
	if won {
		tk, err := scheme.GetTicket(par, seed, 7, sk)
		require.NoError(t, err)
		require.NoError(t, r.Submit(0, 7, tk))
	}

	_, err = r.CloseRound(5)
	require.Error(t, err, "closing a seedless round must fail")
}

func TestBoardAppendOnly(t *testing.T) {
	b := NewBoard()
	require.NoError(t, b.AppendRound(RoundRecord{Round: 3}))
	require.ErrorIs(t, b.AppendRound(RoundRecord{Round: 3}), ErrDuplicateRound)

	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, b.SaveToFile(path))
	got, err := LoadBoardFromFile(path)
	require.NoError(t, err)
	require.Len(t, got.Records, 1)

	_, err = LoadBoardFromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.True(t, os.IsNotExist(err))
}

// scheme.go - Uniform surface over lottery schemes.
//
// A lottery scheme lets a registered user locally decide, per beacon-seeded
// round, whether they won with probability 1/k, and if so produce a short
// ticket. Implementations: Jack (KZG-based, aggregatable), the same with
// FK-preprocessed keys, and the folklore BLS-H baseline.

package lottery

import (
	"errors"
	"io"
)

var (
	// ErrNotWinning is the sentinel returned by GetTicket when the caller did
	// not win the round; no ticket exists in that case.
	ErrNotWinning = errors.New("lottery: secret key does not win this round")

	// ErrRoundRange is returned when a round index exceeds the parameter set.
	ErrRoundRange = errors.New("lottery: round index out of range")

	// ErrMalformedPoint is returned when a deserialized group element is not
	// on the curve or not in the prime-order subgroup.
	ErrMalformedPoint = errors.New("lottery: malformed group element")

	// ErrInputLength is returned when pids, keys and tickets disagree in
	// number.
	ErrInputLength = errors.New("lottery: mismatched pids, keys and tickets")
)

// Scheme is the capability set shared by all lottery variants. Type
// parameters pin the scheme-specific representations; call sites bind a
// concrete implementation statically.
type Scheme[Par, PK, SK, Tick, Agg any] interface {
	// Setup creates the public parameter set for a domain of the given size
	// (rounds 0..size-2) with inverse win probability k.
	Setup(rng io.Reader, size int, k uint64) (Par, error)

	// KeyGen creates a keypair for one user.
	KeyGen(rng io.Reader, par Par) (PK, SK, error)

	// VerifyKey checks that a public key is well formed.
	VerifyKey(par Par, pk PK) error

	// SampleSeed draws a round seed. In a deployment the seed comes from the
	// beacon; this entry point stands in for it.
	SampleSeed(rng io.Reader, par Par, round int) (Seed, error)

	// Participate reports whether the user wins the round.
	Participate(par Par, seed Seed, pid uint64, sk SK) (bool, error)

	// GetTicket produces the winning ticket; ErrNotWinning if Participate
	// would return false.
	GetTicket(par Par, seed Seed, pid uint64, sk SK) (Tick, error)

	// Aggregate combines the winning tickets of one round. Inputs are sorted
	// by pid internally so aggregates are byte-identical across runs.
	Aggregate(par Par, seed Seed, pids []uint64, pks []PK, ticks []Tick) (Agg, error)

	// VerifyAggregate checks an aggregate against the listed winners.
	// A failed check is a boolean result, never an error.
	VerifyAggregate(par Par, seed Seed, pids []uint64, pks []PK, agg Agg) (bool, error)
}

// Compile-time trait conformance of the variants.
var (
	_ Scheme[*Params, PublicKey, *SecretKey, Ticket, AggTicket]               = Jack{}
	_ Scheme[*Params, PublicKey, *SecretKey, Ticket, AggTicket]               = Jack{Preprocess: true}
	_ Scheme[*BLSHParams, BLSHPublicKey, *BLSHSecretKey, BLSHTicket, BLSHAgg] = BLSH{}
)

// hash.go - Domain-separated hashes into the scalar field.
//
// Two independent hash-to-field uses: the per-user lottery label that shifts a
// committed entry into the winning set, and the per-winner folding weight that
// binds an aggregate to its (pid, pk) associations.

package lottery

import (
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"jackpot/internal/kzg"
)

var (
	labelDST  = []byte("jackpot/label/v1")
	weightDST = []byte("jackpot/agg/v1")
)

// lotteryLabel computes H(pid, i, z_i), the field element added to the user's
// committed entry to decide the round.
func lotteryLabel(pid uint64, seed Seed) (fr.Element, error) {
	msg := make([]byte, 8, 8+8+fr.Bytes)
	binary.BigEndian.PutUint64(msg, pid)
	msg = append(msg, seed.encode()...)

	h, err := fr.Hash(msg, labelDST, 1)
	if err != nil {
		return fr.Element{}, err
	}
	return h[0], nil
}

// foldingWeight derives the deterministic coefficient that folds one winner's
// opening into the aggregate. Binding the weight to (pid, pk, seed) makes the
// batched pairing check reject any re-association of pids and keys, while
// keeping aggregation order-independent.
func foldingWeight(pid uint64, pk *kzg.Digest, seed Seed) (fr.Element, error) {
	pkBytes := pk.Bytes()
	msg := make([]byte, 8, 8+len(pkBytes)+8+fr.Bytes)
	binary.BigEndian.PutUint64(msg, pid)
	msg = append(msg, pkBytes[:]...)
	msg = append(msg, seed.encode()...)

	h, err := fr.Hash(msg, weightDST, 1)
	if err != nil {
		return fr.Element{}, err
	}
	return h[0], nil
}

// inWinningSet reports membership in W = {x : canonical(x) mod k == 0}, the
// fixed k-to-1 predicate on the field.
func inWinningSet(y *fr.Element, k uint64) bool {
	var z, kBig big.Int
	y.BigInt(&z)
	kBig.SetUint64(k)
	return z.Mod(&z, &kBig).Sign() == 0
}

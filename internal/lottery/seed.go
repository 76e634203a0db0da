// seed.go - Round seeds.

package lottery

import (
	"encoding/binary"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"jackpot/internal/srs"
)

// Seed identifies one lottery round: its index and the uniform field element
// the beacon fixed for it. A seed is shared by every scheme variant.
type Seed struct {
	Round int
	Z     fr.Element
}

// sampleSeed draws the beacon value from the entropy oracle.
func sampleSeed(rng io.Reader, round int) (Seed, error) {
	z, err := srs.SampleFr(rng)
	if err != nil {
		return Seed{}, err
	}
	return Seed{Round: round, Z: z}, nil
}

// encode serializes the seed for hashing: round index then the canonical
// bytes of z.
func (s Seed) encode() []byte {
	buf := make([]byte, 8+fr.Bytes)
	binary.BigEndian.PutUint64(buf[:8], uint64(s.Round))
	zBytes := s.Z.Bytes()
	copy(buf[8:], zBytes[:])
	return buf
}

// marshal.go - SRS serialization.
//
// Layout: size and k as fixed-width integers, then the g1 powers, the two g2
// points, the Lagrange table, and the FK table. The three G1 tables are
// length-prefixed by the curve encoder; the two g2 points are written as
// single points without a prefix. Points travel compressed.

package srs

import (
	"encoding/binary"
	"errors"
	"io"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
)

var ErrCorruptSRS = errors.New("srs: deserialized tables are inconsistent")

// WriteTo serializes the SRS. Implements io.WriterTo.
func (s *SRS) WriteTo(w io.Writer) (int64, error) {
	var header [16]byte
	binary.BigEndian.PutUint64(header[:8], uint64(s.Size))
	binary.BigEndian.PutUint64(header[8:], s.K)
	n, err := w.Write(header[:])
	written := int64(n)
	if err != nil {
		return written, err
	}

	enc := curve.NewEncoder(w)
	toEncode := []interface{}{
		s.G1,
		&s.G2[0],
		&s.G2[1],
		s.Lagrange,
		s.TauHat,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return written + enc.BytesWritten(), err
		}
	}
	return written + enc.BytesWritten(), nil
}

// ReadFrom deserializes an SRS written by WriteTo and rebuilds the domains.
// Implements io.ReaderFrom.
func (s *SRS) ReadFrom(r io.Reader) (int64, error) {
	var header [16]byte
	n, err := io.ReadFull(r, header[:])
	read := int64(n)
	if err != nil {
		return read, err
	}
	size := binary.BigEndian.Uint64(header[:8])
	if size < 2 || size&(size-1) != 0 {
		return read, ErrSizeNotPowerOfTwo
	}
	s.Size = int(size)
	s.K = binary.BigEndian.Uint64(header[8:])

	dec := curve.NewDecoder(r)
	toDecode := []interface{}{
		&s.G1,
		&s.G2[0],
		&s.G2[1],
		&s.Lagrange,
		&s.TauHat,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return read + dec.BytesRead(), err
		}
	}
	if len(s.G1) != s.Size || len(s.Lagrange) != s.Size || len(s.TauHat) != 2*s.Size {
		return read + dec.BytesRead(), ErrCorruptSRS
	}

	s.Domain = fft.NewDomain(size)
	s.DomainExt = fft.NewDomain(2 * size)
	return read + dec.BytesRead(), nil
}

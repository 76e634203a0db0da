// marshal.go - Wire encodings for keys, tickets and aggregates.
//
// Group elements travel compressed (48 bytes in G1, 96 in G2); field elements
// use their canonical reduced bytes. Deserialization rejects points off the
// curve or outside the prime-order subgroup.

package lottery

import (
	"encoding/binary"
	"fmt"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

const (
	g1Len     = curve.SizeOfG1AffineCompressed
	g2Len     = curve.SizeOfG2AffineCompressed
	frLen     = fr.Bytes
	ticketLen = frLen + g1Len
)

// Bytes serializes the public key as one compressed G1 point.
func (pk PublicKey) Bytes() []byte {
	b := pk.C.Bytes()
	return b[:]
}

// SetBytes deserializes and validates a public key.
func (pk *PublicKey) SetBytes(data []byte) error {
	if len(data) != g1Len {
		return fmt.Errorf("%w: want %d bytes, got %d", ErrMalformedPoint, g1Len, len(data))
	}
	if _, err := pk.C.SetBytes(data); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPoint, err)
	}
	if pk.C.IsInfinity() {
		return ErrMalformedPoint
	}
	return nil
}

// Bytes serializes a ticket as value || proof.
func (t Ticket) Bytes() []byte {
	out := make([]byte, 0, ticketLen)
	v := t.Value.Bytes()
	p := t.Proof.Bytes()
	out = append(out, v[:]...)
	return append(out, p[:]...)
}

// SetBytes deserializes a ticket.
func (t *Ticket) SetBytes(data []byte) error {
	if len(data) != ticketLen {
		return fmt.Errorf("%w: want %d bytes, got %d", ErrMalformedPoint, ticketLen, len(data))
	}
	t.Value.SetBytes(data[:frLen])
	if _, err := t.Proof.SetBytes(data[frLen:]); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPoint, err)
	}
	return nil
}

// Bytes serializes an aggregate as proof || count || values.
func (a AggTicket) Bytes() []byte {
	out := make([]byte, 0, g1Len+8+len(a.Values)*frLen)
	p := a.Proof.Bytes()
	out = append(out, p[:]...)
	out = binary.BigEndian.AppendUint64(out, uint64(len(a.Values)))
	for i := range a.Values {
		v := a.Values[i].Bytes()
		out = append(out, v[:]...)
	}
	return out
}

// SetBytes deserializes an aggregate.
func (a *AggTicket) SetBytes(data []byte) error {
	if len(data) < g1Len+8 {
		return fmt.Errorf("%w: aggregate too short", ErrMalformedPoint)
	}
	if _, err := a.Proof.SetBytes(data[:g1Len]); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPoint, err)
	}
	count := binary.BigEndian.Uint64(data[g1Len : g1Len+8])
	rest := data[g1Len+8:]
	if uint64(len(rest)) != count*frLen {
		return fmt.Errorf("%w: aggregate value section truncated", ErrMalformedPoint)
	}
	a.Values = make([]fr.Element, count)
	for i := range a.Values {
		a.Values[i].SetBytes(rest[i*frLen : (i+1)*frLen])
	}
	return nil
}

// Bytes serializes the BLS-H public key as one compressed G2 point.
func (pk BLSHPublicKey) Bytes() []byte {
	b := pk.P.Bytes()
	return b[:]
}

// SetBytes deserializes and validates a BLS-H public key.
func (pk *BLSHPublicKey) SetBytes(data []byte) error {
	if len(data) != g2Len {
		return fmt.Errorf("%w: want %d bytes, got %d", ErrMalformedPoint, g2Len, len(data))
	}
	if _, err := pk.P.SetBytes(data); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPoint, err)
	}
	if pk.P.IsInfinity() {
		return ErrMalformedPoint
	}
	return nil
}

// Bytes serializes the BLS-H ticket as one compressed G1 point.
func (t BLSHTicket) Bytes() []byte {
	b := t.Sig.Bytes()
	return b[:]
}

// SetBytes deserializes a BLS-H ticket.
func (t *BLSHTicket) SetBytes(data []byte) error {
	if len(data) != g1Len {
		return fmt.Errorf("%w: want %d bytes, got %d", ErrMalformedPoint, g1Len, len(data))
	}
	if _, err := t.Sig.SetBytes(data); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPoint, err)
	}
	return nil
}

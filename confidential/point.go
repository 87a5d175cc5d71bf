// Package confidential implements the Pedersen value commitments, blinded
// asset generators, and ECDH nonce scheme used to build confidential
// transaction outputs.
//
// Curve arithmetic is performed with btcec's secp256k1 curve
// (crypto/elliptic-compatible) combined with math/big scalars, the same
// combination lnwallet/script_utils.go uses for revocation key derivation.
package confidential

import (
	"crypto/sha256"
	"errors"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
)

// ErrInvalidPoint is returned when a compressed point fails to decompress
// onto the curve.
var ErrInvalidPoint = errors.New("confidential: point is not on curve")

// curve returns the secp256k1 curve used throughout this package.
func curve() *btcec.KoblitzCurve {
	return btcec.S256()
}

// Point is an affine secp256k1 point, kept as a pair of big.Int coordinates
// so it can be fed straight into curve().Add/ScalarMult/ScalarBaseMult,
// mirroring deriveRevocationPubkey's arithmetic in script_utils.go.
type Point struct {
	X, Y *big.Int
}

func (p Point) add(q Point) Point {
	x, y := curve().Add(p.X, p.Y, q.X, q.Y)
	return Point{X: x, Y: y}
}

func scalarBaseMult(scalar []byte) Point {
	x, y := curve().ScalarBaseMult(scalar)
	return Point{X: x, Y: y}
}

func (p Point) scalarMult(scalar []byte) Point {
	x, y := curve().ScalarMult(p.X, p.Y, scalar)
	return Point{X: x, Y: y}
}

// Compressed serializes a point the way the network represents public keys:
// a 0x02/0x03 parity prefix followed by the 32-byte big-endian X coordinate.
func (p Point) Compressed() [33]byte {
	var out [33]byte
	if p.Y.Bit(0) == 0 {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	xb := p.X.Bytes()
	copy(out[33-len(xb):], xb)
	return out
}

// DecompressPoint recovers the affine point from its compressed
// serialization, choosing the Y root whose parity matches the prefix byte.
func DecompressPoint(data [33]byte) (Point, error) {
	if data[0] != 0x02 && data[0] != 0x03 {
		return Point{}, ErrInvalidPoint
	}
	p := curve().P
	x := new(big.Int).SetBytes(data[1:])
	if x.Cmp(p) >= 0 {
		return Point{}, ErrInvalidPoint
	}

	// y^2 = x^3 + 7 mod p
	ySq := new(big.Int).Exp(x, big.NewInt(3), p)
	ySq.Add(ySq, curve().Params().B)
	ySq.Mod(ySq, p)

	y := new(big.Int).ModSqrt(ySq, p)
	if y == nil {
		return Point{}, ErrInvalidPoint
	}
	wantOdd := data[0] == 0x03
	if (y.Bit(0) == 1) != wantOdd {
		y.Sub(p, y)
	}
	if !curve().IsOnCurve(x, y) {
		return Point{}, ErrInvalidPoint
	}
	return Point{X: x, Y: y}, nil
}

// hashToCurve deterministically maps tag to a curve point using the
// standard try-and-increment construction: hash the tag with an
// incrementing counter byte until the digest lifts to a valid X coordinate.
func hashToCurve(tag []byte) Point {
	buf := make([]byte, len(tag)+1)
	copy(buf, tag)
	for counter := 0; counter < 256; counter++ {
		buf[len(tag)] = byte(counter)
		digest := sha256.Sum256(buf)
		var compressed [33]byte
		compressed[0] = 0x02
		copy(compressed[1:], digest[:])
		if p, err := DecompressPoint(compressed); err == nil {
			return p
		}
	}
	// Astronomically unlikely: no lift found in 256 tries.
	panic("confidential: hashToCurve exhausted counter space")
}

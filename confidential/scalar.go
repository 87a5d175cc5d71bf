package confidential

import (
	"crypto/rand"
	"io"
	"math/big"
)

// Scalar is a 32-byte big-endian integer modulo the curve order, used for
// blinding factors (abf, vbf) and ephemeral nonce private keys.
type Scalar [32]byte

func (s Scalar) bigInt() *big.Int {
	return new(big.Int).SetBytes(s[:])
}

func scalarFromBigInt(v *big.Int) Scalar {
	var out Scalar
	v = new(big.Int).Mod(v, curve().N)
	b := v.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// RandomScalar draws a uniformly random scalar in [1, N) from rnd. Pass
// crypto/rand.Reader in production; tests may substitute a deterministic
// source to make fixtures reproducible.
func RandomScalar(rnd io.Reader) (Scalar, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	for {
		var buf [32]byte
		if _, err := io.ReadFull(rnd, buf[:]); err != nil {
			return Scalar{}, err
		}
		v := new(big.Int).SetBytes(buf[:])
		if v.Sign() != 0 && v.Cmp(curve().N) < 0 {
			return Scalar(buf), nil
		}
	}
}

// Add returns s + other mod N.
func (s Scalar) Add(other Scalar) Scalar {
	sum := new(big.Int).Add(s.bigInt(), other.bigInt())
	return scalarFromBigInt(sum)
}

// Sub returns s - other mod N.
func (s Scalar) Sub(other Scalar) Scalar {
	diff := new(big.Int).Sub(s.bigInt(), other.bigInt())
	return scalarFromBigInt(diff)
}

// Mul returns s * other mod N.
func (s Scalar) Mul(other Scalar) Scalar {
	prod := new(big.Int).Mul(s.bigInt(), other.bigInt())
	return scalarFromBigInt(prod)
}

// IsZero reports whether s is the zero scalar.
func (s Scalar) IsZero() bool {
	return s.bigInt().Sign() == 0
}

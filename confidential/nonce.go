package confidential

import (
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// PubKey33 is a compressed secp256k1 public key, used both for blinding
// keys and the per-output ephemeral nonce.
type PubKey33 [33]byte

// sharedSecretHash derives the ECDH shared secret from an EC point the way
// the network does: SHA256d(parity_prefix || x), where the prefix byte is
// chosen by the parity of the point's Y coordinate rather than a fixed
// tag. This is not textbook ECDH-SHA256 and must match bit for bit on both
// sides of the handshake.
func sharedSecretHash(p Point) [32]byte {
	var buf [33]byte
	if p.Y.Bit(0) == 0 {
		buf[0] = 0x02
	} else {
		buf[0] = 0x03
	}
	xb := p.X.Bytes()
	copy(buf[33-len(xb):], xb)
	return chainhash.DoubleHashH(buf[:])
}

// NewNonce draws a fresh ephemeral keypair and derives the sender side of
// the shared secret against the recipient's blinding public key:
// nonce = n*G, secret = H(n*BK).
func NewNonce(rnd io.Reader, recipientBlindingKey PubKey33) (nonce PubKey33, sharedSecret [32]byte, err error) {
	n, err := RandomScalar(rnd)
	if err != nil {
		return PubKey33{}, [32]byte{}, err
	}
	nonce = PubKey33(scalarBaseMult(n[:]).Compressed())

	bk, err := DecompressPoint([33]byte(recipientBlindingKey))
	if err != nil {
		return PubKey33{}, [32]byte{}, err
	}
	shared := bk.scalarMult(n[:])
	return nonce, sharedSecretHash(shared), nil
}

// SharedSecretFromNonce derives the recipient side of the shared secret
// from the sender's published nonce and the recipient's blinding private
// key: secret = H(bk*N).
func SharedSecretFromNonce(nonce PubKey33, blindingKey Scalar) ([32]byte, error) {
	n, err := DecompressPoint([33]byte(nonce))
	if err != nil {
		return [32]byte{}, err
	}
	shared := n.scalarMult(blindingKey[:])
	return sharedSecretHash(shared), nil
}

// BlindingKeyPair derives the compressed public blinding key for a private
// scalar, i.e. BK = bk*G.
func BlindingKeyPair(priv Scalar) PubKey33 {
	return PubKey33(scalarBaseMult(priv[:]).Compressed())
}

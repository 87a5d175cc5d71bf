package tx

import (
	"bytes"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/comit-network/waves/confidential"
)

// SigHashAll mirrors Bitcoin's SIGHASH_ALL; this module only ever produces
// single-signer P2WPKH-style witnesses, so it is the only hash type used.
const SigHashAll byte = 0x01

// CalcWitnessSigHash computes the BIP143-style signature hash for signing
// input at inputIndex against scriptCode, generalized to Elements-style
// confidential outputs: where BIP143 mixes in an 8-byte satoshi amount, a
// confidential input mixes in its 33-byte value commitment instead, since
// the plaintext amount is never on the ledger to begin with.
func (t *Transaction) CalcWitnessSigHash(inputIndex int, scriptCode []byte, inputValue confidential.ValueCommitment, hashType byte) [32]byte {
	var buf bytes.Buffer

	var verBuf [4]byte
	putUint32(verBuf[:], uint32(t.Version))
	buf.Write(verBuf[:])

	buf.Write(t.HashPrevouts()[:])
	buf.Write(t.HashSequence()[:])
	buf.Write(t.HashIssuances()[:])

	in := t.TxIn[inputIndex]
	buf.Write(in.PreviousOutPoint.Hash[:])
	var idxBuf [4]byte
	putUint32(idxBuf[:], in.PreviousOutPoint.Index)
	buf.Write(idxBuf[:])

	writeVarBytes(&buf, scriptCode)
	buf.Write(inputValue[:])

	var seqBuf [4]byte
	putUint32(seqBuf[:], in.Sequence)
	buf.Write(seqBuf[:])

	buf.Write(t.hashOutputs()[:])

	var lockBuf [4]byte
	putUint32(lockBuf[:], t.LockTime)
	buf.Write(lockBuf[:])

	buf.WriteByte(hashType)

	return chainhash.DoubleHashH(buf.Bytes())
}

// CalcWitnessSigHashExplicit is CalcWitnessSigHash for an input whose
// value is carried in the clear rather than behind a Pedersen commitment,
// used by the covenant package's collateral spends: the amount mixed into
// the preimage is the plain 8-byte satoshi value BIP143 itself uses.
func (t *Transaction) CalcWitnessSigHashExplicit(inputIndex int, scriptCode []byte, inputValue uint64, hashType byte) [32]byte {
	var buf bytes.Buffer

	var verBuf [4]byte
	putUint32(verBuf[:], uint32(t.Version))
	buf.Write(verBuf[:])

	buf.Write(t.HashPrevouts()[:])
	buf.Write(t.HashSequence()[:])
	buf.Write(t.HashIssuances()[:])

	in := t.TxIn[inputIndex]
	buf.Write(in.PreviousOutPoint.Hash[:])
	var idxBuf [4]byte
	putUint32(idxBuf[:], in.PreviousOutPoint.Index)
	buf.Write(idxBuf[:])

	writeVarBytes(&buf, scriptCode)
	putUint64(&buf, inputValue)

	var seqBuf [4]byte
	putUint32(seqBuf[:], in.Sequence)
	buf.Write(seqBuf[:])

	buf.Write(t.hashOutputs()[:])

	var lockBuf [4]byte
	putUint32(lockBuf[:], t.LockTime)
	buf.Write(lockBuf[:])

	buf.WriteByte(hashType)

	return chainhash.DoubleHashH(buf.Bytes())
}

// HashPrevouts is BIP143's hashPrevouts: the double-SHA256 of every
// input's outpoint, in order. The covenant package's witness stacks
// reconstruct this same value on-stack, so it is exported for reuse
// there.
func (t *Transaction) HashPrevouts() [32]byte {
	var buf bytes.Buffer
	for _, in := range t.TxIn {
		buf.Write(in.PreviousOutPoint.Hash[:])
		var idxBuf [4]byte
		putUint32(idxBuf[:], in.PreviousOutPoint.Index)
		buf.Write(idxBuf[:])
	}
	return chainhash.DoubleHashH(buf.Bytes())
}

// HashSequence is BIP143's hashSequence: the double-SHA256 of every
// input's sequence number, in order.
func (t *Transaction) HashSequence() [32]byte {
	var buf bytes.Buffer
	for _, in := range t.TxIn {
		var seqBuf [4]byte
		putUint32(seqBuf[:], in.Sequence)
		buf.Write(seqBuf[:])
	}
	return chainhash.DoubleHashH(buf.Bytes())
}

// HashIssuances is Elements' hashIssuances: the double-SHA256 of, for every
// input in order, either its encoded asset issuance or a single zero byte
// if it carries none. This module never issues assets, so every input
// takes the zero-byte branch -- but the field still has to be mixed into
// the signed preimage, since the covenant package's collateral script CATs
// it into the digest it reconstructs on-stack.
func (t *Transaction) HashIssuances() [32]byte {
	var buf bytes.Buffer
	for range t.TxIn {
		buf.WriteByte(0)
	}
	return chainhash.DoubleHashH(buf.Bytes())
}

// EncodeUint32LE returns v as 4 little-endian bytes, the encoding this
// package's sighash preimages and txid computation use for integer fields
// (Transaction.Encode's wire format is big-endian instead), mirrored
// field-by-field in the covenant package's witness stacks.
func EncodeUint32LE(v uint32) [4]byte {
	var buf [4]byte
	putUint32(buf[:], v)
	return buf
}

// EncodeUint64LE returns v as 8 little-endian bytes.
func EncodeUint64LE(v uint64) [8]byte {
	var buf [8]byte
	putUint64Arr(&buf, v)
	return buf
}

func (t *Transaction) hashOutputs() [32]byte {
	var buf bytes.Buffer
	for _, out := range t.TxOut {
		EncodeTxOutForSigHash(&buf, out)
	}
	return chainhash.DoubleHashH(buf.Bytes())
}

// EncodeTxOutForSigHash writes out to buf the same way hashOutputs
// does: asset, value, and script, with none of the wire discriminant
// byte or length-prefix endianness TxOut.Encode uses for full
// transaction serialization. The covenant package's witness stacks
// re-encode each output this same way, field-for-field, so the digest
// they reconstruct on-stack from the witness matches the one actually
// signed.
func EncodeTxOutForSigHash(buf *bytes.Buffer, out TxOut) {
	switch o := out.(type) {
	case *ConfidentialTxOut:
		buf.Write(o.Asset[:])
		buf.Write(o.Value[:])
		buf.Write(o.Nonce[:])
		writeVarBytes(buf, o.PkScript)
	case *ExplicitTxOut:
		buf.Write(o.Asset[:])
		putUint64(buf, o.Value)
		writeVarBytes(buf, o.PkScript)
	}
}

// EncodeOutPointForSigHash returns op's hash followed by its index as a
// 4-byte little-endian integer -- the same 36 bytes
// CalcWitnessSigHash/CalcWitnessSigHashExplicit mix into the preimage
// for the spent input's own outpoint, as opposed to OutPoint.Encode's
// big-endian wire format.
func EncodeOutPointForSigHash(op OutPoint) []byte {
	out := make([]byte, 0, 36)
	out = append(out, op.Hash[:]...)
	idx := EncodeUint32LE(op.Index)
	return append(out, idx[:]...)
}

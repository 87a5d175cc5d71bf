// Package tx defines the Elements-style transaction primitives shared by
// the confidential txout builder, the swap state machine, and the covenant
// loan state machine: outpoints, inputs, and the confidential/explicit
// output variants produced by package confidential and package txbuilder.
//
// This is deliberately not btcd's wire.MsgTx: an Elements transaction
// carries a per-output asset tag and, for confidential outputs, a value
// commitment, a blinding nonce, and range/surjection proofs that have no
// slot in Bitcoin's wire format.
package tx

import (
	"bytes"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/comit-network/waves/confidential"
)

// OutPoint identifies a previous transaction output being spent.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// TxIn is a transaction input. It has no signature script: every spend in
// this module is segwit-style, and Witness carries the actual spending
// data.
type TxIn struct {
	PreviousOutPoint OutPoint
	Sequence         uint32
	Witness          wire.TxWitness
}

// TxOut is implemented by ConfidentialTxOut and ExplicitTxOut.
type TxOut interface {
	// txOutMarker restricts TxOut to the two variants defined in this
	// package.
	txOutMarker()
}

// ConfidentialTxOut is an output whose asset and value are hidden behind a
// blinded generator and a Pedersen commitment, readable only by the party
// that can derive the ECDH shared secret from Nonce.
type ConfidentialTxOut struct {
	Asset           confidential.AssetGenerator
	Value           confidential.ValueCommitment
	Nonce           confidential.PubKey33
	PkScript        []byte
	RangeProof      []byte
	SurjectionProof []byte
}

func (ConfidentialTxOut) txOutMarker() {}

// ExplicitTxOut is an output whose asset and value are visible on the
// ledger, used for miner fee outputs.
type ExplicitTxOut struct {
	Asset    confidential.AssetID
	Value    uint64
	PkScript []byte
}

func (ExplicitTxOut) txOutMarker() {}

// Transaction is an Elements-style transaction: a Bitcoin-shaped skeleton
// (version, inputs, locktime) whose outputs may be confidential.
type Transaction struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []TxOut
	LockTime uint32
}

// NewTransaction returns an empty transaction with the default version
// used across this module's protocols.
func NewTransaction() *Transaction {
	return &Transaction{Version: 2}
}

// AddTxIn appends in to the transaction's input list.
func (t *Transaction) AddTxIn(in *TxIn) {
	t.TxIn = append(t.TxIn, in)
}

// AddTxOut appends out to the transaction's output list.
func (t *Transaction) AddTxOut(out TxOut) {
	t.TxOut = append(t.TxOut, out)
}

// serializeForHash writes the fields that determine the transaction's
// identity: version, locktime, and every input's outpoint and sequence
// plus every output's committed (not witness) data. It intentionally
// excludes witnesses, mirroring segwit's txid computation.
func (t *Transaction) serializeForHash(w *bytes.Buffer) error {
	var buf [4]byte
	putUint32(buf[:], uint32(t.Version))
	w.Write(buf[:])

	putUint32(buf[:], uint32(len(t.TxIn)))
	w.Write(buf[:])
	for _, in := range t.TxIn {
		w.Write(in.PreviousOutPoint.Hash[:])
		putUint32(buf[:], in.PreviousOutPoint.Index)
		w.Write(buf[:])
		putUint32(buf[:], in.Sequence)
		w.Write(buf[:])
	}

	putUint32(buf[:], uint32(len(t.TxOut)))
	w.Write(buf[:])
	for _, out := range t.TxOut {
		switch o := out.(type) {
		case *ConfidentialTxOut:
			w.Write(o.Asset[:])
			w.Write(o.Value[:])
			w.Write(o.Nonce[:])
			writeVarBytes(w, o.PkScript)
		case *ExplicitTxOut:
			w.Write(o.Asset[:])
			putUint64(w, o.Value)
			writeVarBytes(w, o.PkScript)
		}
	}

	putUint32(buf[:], t.LockTime)
	w.Write(buf[:])
	return nil
}

// Txid computes the transaction's double-SHA256 identity hash over its
// non-witness fields.
func (t *Transaction) Txid() chainhash.Hash {
	var buf bytes.Buffer
	_ = t.serializeForHash(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

func putUint32(buf []byte, v uint32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}

func putUint64(w *bytes.Buffer, v uint64) {
	buf := putUint64Arr(&[8]byte{}, v)
	w.Write(buf[:])
}

func putUint64Arr(buf *[8]byte, v uint64) [8]byte {
	for i := range buf {
		buf[i] = byte(v >> (8 * i))
	}
	return *buf
}

func writeVarBytes(w *bytes.Buffer, b []byte) {
	var lenBuf [4]byte
	putUint32(lenBuf[:], uint32(len(b)))
	w.Write(lenBuf[:])
	w.Write(b)
}

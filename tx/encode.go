package tx

import (
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
	"github.com/comit-network/waves/protocol"
)

// ErrUnknownTxOutType is returned when decoding encounters an output
// discriminant byte that names neither a confidential nor an explicit
// output.
var ErrUnknownTxOutType = errors.New("tx: unknown txout discriminant")

const (
	txOutDiscriminantConfidential byte = 0x01
	txOutDiscriminantExplicit     byte = 0x02
)

// Encode writes op to w as a fixed 36-byte outpoint.
func (op OutPoint) Encode(w io.Writer) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return err
	}
	return protocol.WriteUint32(w, op.Index)
}

// DecodeOutPoint reads a 36-byte outpoint from r.
func DecodeOutPoint(r io.Reader) (OutPoint, error) {
	var op OutPoint
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return OutPoint{}, err
	}
	idx, err := protocol.ReadUint32(r)
	if err != nil {
		return OutPoint{}, err
	}
	op.Index = idx
	return op, nil
}

// Encode writes out to w, prefixed with the confidential-output
// discriminant.
func (out *ConfidentialTxOut) Encode(w io.Writer) error {
	if _, err := w.Write([]byte{txOutDiscriminantConfidential}); err != nil {
		return err
	}
	if _, err := w.Write(out.Asset[:]); err != nil {
		return err
	}
	if _, err := w.Write(out.Value[:]); err != nil {
		return err
	}
	if _, err := w.Write(out.Nonce[:]); err != nil {
		return err
	}
	if err := protocol.WriteVarBytes(w, out.PkScript); err != nil {
		return err
	}
	if err := protocol.WriteVarBytes(w, out.RangeProof); err != nil {
		return err
	}
	return protocol.WriteVarBytes(w, out.SurjectionProof)
}

func decodeConfidentialTxOutBody(r io.Reader) (*ConfidentialTxOut, error) {
	out := &ConfidentialTxOut{}
	if _, err := io.ReadFull(r, out.Asset[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, out.Value[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, out.Nonce[:]); err != nil {
		return nil, err
	}
	var err error
	if out.PkScript, err = protocol.ReadVarBytes(r); err != nil {
		return nil, err
	}
	if out.RangeProof, err = protocol.ReadVarBytes(r); err != nil {
		return nil, err
	}
	if out.SurjectionProof, err = protocol.ReadVarBytes(r); err != nil {
		return nil, err
	}
	return out, nil
}

// Encode writes out to w, prefixed with the explicit-output discriminant.
func (out *ExplicitTxOut) Encode(w io.Writer) error {
	if _, err := w.Write([]byte{txOutDiscriminantExplicit}); err != nil {
		return err
	}
	if _, err := w.Write(out.Asset[:]); err != nil {
		return err
	}
	if err := protocol.WriteUint64(w, out.Value); err != nil {
		return err
	}
	return protocol.WriteVarBytes(w, out.PkScript)
}

func decodeExplicitTxOutBody(r io.Reader) (*ExplicitTxOut, error) {
	out := &ExplicitTxOut{}
	if _, err := io.ReadFull(r, out.Asset[:]); err != nil {
		return nil, err
	}
	var err error
	if out.Value, err = protocol.ReadUint64(r); err != nil {
		return nil, err
	}
	if out.PkScript, err = protocol.ReadVarBytes(r); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeTxOut reads a discriminant-tagged output of either variant from r.
func DecodeTxOut(r io.Reader) (TxOut, error) {
	var discriminant [1]byte
	if _, err := io.ReadFull(r, discriminant[:]); err != nil {
		return nil, err
	}
	switch discriminant[0] {
	case txOutDiscriminantConfidential:
		return decodeConfidentialTxOutBody(r)
	case txOutDiscriminantExplicit:
		return decodeExplicitTxOutBody(r)
	default:
		return nil, fmt.Errorf("%w: %#x", ErrUnknownTxOutType, discriminant[0])
	}
}

// Encode writes in to w, including its witness stack.
func (in *TxIn) Encode(w io.Writer) error {
	if err := in.PreviousOutPoint.Encode(w); err != nil {
		return err
	}
	if err := protocol.WriteUint32(w, in.Sequence); err != nil {
		return err
	}
	if err := protocol.WriteUint32(w, uint32(len(in.Witness))); err != nil {
		return err
	}
	for _, item := range in.Witness {
		if err := protocol.WriteVarBytes(w, item); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTxIn reads an input and its witness stack from r.
func DecodeTxIn(r io.Reader) (*TxIn, error) {
	in := &TxIn{}
	op, err := DecodeOutPoint(r)
	if err != nil {
		return nil, err
	}
	in.PreviousOutPoint = op
	if in.Sequence, err = protocol.ReadUint32(r); err != nil {
		return nil, err
	}
	witnessLen, err := protocol.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	in.Witness = make(wire.TxWitness, witnessLen)
	for i := range in.Witness {
		if in.Witness[i], err = protocol.ReadVarBytes(r); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// Encode writes the full transaction, including witnesses, to w.
func (t *Transaction) Encode(w io.Writer) error {
	if err := protocol.WriteUint32(w, uint32(t.Version)); err != nil {
		return err
	}
	if err := protocol.WriteUint32(w, uint32(len(t.TxIn))); err != nil {
		return err
	}
	for _, in := range t.TxIn {
		if err := in.Encode(w); err != nil {
			return err
		}
	}
	if err := protocol.WriteUint32(w, uint32(len(t.TxOut))); err != nil {
		return err
	}
	for _, out := range t.TxOut {
		var err error
		switch o := out.(type) {
		case *ConfidentialTxOut:
			err = o.Encode(w)
		case *ExplicitTxOut:
			err = o.Encode(w)
		default:
			err = fmt.Errorf("%w: %T", ErrUnknownTxOutType, out)
		}
		if err != nil {
			return err
		}
	}
	return protocol.WriteUint32(w, t.LockTime)
}

// DecodeTransaction reads a full transaction, including witnesses, from r.
func DecodeTransaction(r io.Reader) (*Transaction, error) {
	t := &Transaction{}
	version, err := protocol.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	t.Version = int32(version)

	inCount, err := protocol.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	t.TxIn = make([]*TxIn, inCount)
	for i := range t.TxIn {
		if t.TxIn[i], err = DecodeTxIn(r); err != nil {
			return nil, err
		}
	}

	outCount, err := protocol.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	t.TxOut = make([]TxOut, outCount)
	for i := range t.TxOut {
		if t.TxOut[i], err = DecodeTxOut(r); err != nil {
			return nil, err
		}
	}

	if t.LockTime, err = protocol.ReadUint32(r); err != nil {
		return nil, err
	}
	return t, nil
}

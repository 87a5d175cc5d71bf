// Package swap implements the three-message atomic swap handshake between
// a trader (Alice) who proposes a trade and a market maker (Bob) who fills
// it: Alice composes Message0 describing her side of the trade, Bob
// interprets it and composes Message1 carrying a transaction he has
// countersigned, and Alice interprets that to produce the final, fully
// signed transaction she broadcasts. Neither party signs until the
// transaction has been validated against the terms it agreed to.
package swap

import (
	"io"

	"github.com/comit-network/waves/confidential"
	"github.com/comit-network/waves/protocol"
	"github.com/comit-network/waves/tx"
)

// Recipient is a destination for a confidential output: a script plus the
// public blinding key the sender must blind the output against.
type Recipient struct {
	PkScript    []byte
	BlindingKey confidential.PubKey33
}

func (r Recipient) encode(w io.Writer) error {
	if err := protocol.WriteVarBytes(w, r.PkScript); err != nil {
		return err
	}
	_, err := w.Write(r.BlindingKey[:])
	return err
}

func decodeRecipient(r io.Reader) (Recipient, error) {
	pkScript, err := protocol.ReadVarBytes(r)
	if err != nil {
		return Recipient{}, err
	}
	var bk confidential.PubKey33
	if _, err := io.ReadFull(r, bk[:]); err != nil {
		return Recipient{}, err
	}
	return Recipient{PkScript: pkScript, BlindingKey: bk}, nil
}

// Message0 is sent from Alice to Bob. It discloses Alice's funding input
// in full -- including her own blinding private key for it -- since Bob
// must unblind it to learn what Alice is actually putting up before he
// builds the trade transaction.
type Message0 struct {
	Input            tx.OutPoint
	InputTxOut       *tx.ConfidentialTxOut
	InputBlindingKey confidential.Scalar
	RedeemRecipient  Recipient
	ChangeRecipient  Recipient
	Fee              uint64
}

func (m *Message0) MsgType() protocol.MessageType { return protocol.MsgSwapOffer }

func (m *Message0) MaxPayloadLength() uint32 {
	return protocol.MaxMessagePayload
}

func (m *Message0) Encode(w io.Writer) error {
	if err := m.Input.Encode(w); err != nil {
		return err
	}
	if err := m.InputTxOut.Encode(w); err != nil {
		return err
	}
	if _, err := w.Write(m.InputBlindingKey[:]); err != nil {
		return err
	}
	if err := m.RedeemRecipient.encode(w); err != nil {
		return err
	}
	if err := m.ChangeRecipient.encode(w); err != nil {
		return err
	}
	return protocol.WriteUint64(w, m.Fee)
}

func (m *Message0) Decode(r io.Reader) error {
	input, err := tx.DecodeOutPoint(r)
	if err != nil {
		return err
	}
	inputTxOut, err := tx.DecodeTxOut(r)
	if err != nil {
		return err
	}
	confidentialTxOut, ok := inputTxOut.(*tx.ConfidentialTxOut)
	if !ok {
		return ErrMalformedMessage
	}
	var blindingKey confidential.Scalar
	if _, err := io.ReadFull(r, blindingKey[:]); err != nil {
		return err
	}
	redeemRecipient, err := decodeRecipient(r)
	if err != nil {
		return err
	}
	changeRecipient, err := decodeRecipient(r)
	if err != nil {
		return err
	}
	fee, err := protocol.ReadUint64(r)
	if err != nil {
		return err
	}

	m.Input = input
	m.InputTxOut = confidentialTxOut
	m.InputBlindingKey = blindingKey
	m.RedeemRecipient = redeemRecipient
	m.ChangeRecipient = changeRecipient
	m.Fee = fee
	return nil
}

// Message1 is sent from Bob to Alice: the trade transaction with Bob's
// own input already signed.
type Message1 struct {
	Transaction *tx.Transaction
}

func (m *Message1) MsgType() protocol.MessageType { return protocol.MsgSwapAcceptance }

func (m *Message1) MaxPayloadLength() uint32 {
	return protocol.MaxMessagePayload
}

func (m *Message1) Encode(w io.Writer) error {
	return m.Transaction.Encode(w)
}

func (m *Message1) Decode(r io.Reader) error {
	transaction, err := tx.DecodeTransaction(r)
	if err != nil {
		return err
	}
	m.Transaction = transaction
	return nil
}

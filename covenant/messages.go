package covenant

import (
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/comit-network/waves/protocol"
	"github.com/comit-network/waves/tx"
)

// FundingInput names a UTXO a party is putting up, together with the
// amount it carries -- collateral and principal are always paid in the
// clear, so unlike the swap handshake's confidential inputs, the amount
// needs no separate unblinding step.
type FundingInput struct {
	Outpoint tx.OutPoint
	Amount   uint64
}

func (f FundingInput) encode(w io.Writer) error {
	if err := f.Outpoint.Encode(w); err != nil {
		return err
	}
	return protocol.WriteUint64(w, f.Amount)
}

func decodeFundingInput(r io.Reader) (FundingInput, error) {
	outpoint, err := tx.DecodeOutPoint(r)
	if err != nil {
		return FundingInput{}, err
	}
	amount, err := protocol.ReadUint64(r)
	if err != nil {
		return FundingInput{}, err
	}
	return FundingInput{Outpoint: outpoint, Amount: amount}, nil
}

func encodePubKey(w io.Writer, pk *btcec.PublicKey) error {
	return protocol.WriteVarBytes(w, pk.SerializeCompressed())
}

func decodePubKey(r io.Reader) (*btcec.PublicKey, error) {
	raw, err := protocol.ReadVarBytes(r)
	if err != nil {
		return nil, err
	}
	return btcec.ParsePubKey(raw)
}

// LoanRequest is sent from the borrower to the lender to open the loan
// handshake: it discloses the collateral the borrower will lock up, the
// inputs funding it, and the terms (timelock, own pubkey and receiving
// script) the collateral covenant must be built around.
type LoanRequest struct {
	CollateralAmount   uint64
	CollateralInputs   []FundingInput
	CollateralChange   *tx.ExplicitTxOut
	TxFee              uint64
	BorrowerPK         *btcec.PublicKey
	Timelock           uint32
	BorrowerScript     []byte
}

func (m *LoanRequest) MsgType() protocol.MessageType { return protocol.MsgLoanRequest }

func (m *LoanRequest) MaxPayloadLength() uint32 { return protocol.MaxMessagePayload }

func (m *LoanRequest) Encode(w io.Writer) error {
	if err := protocol.WriteUint64(w, m.CollateralAmount); err != nil {
		return err
	}
	if err := protocol.WriteUint32(w, uint32(len(m.CollateralInputs))); err != nil {
		return err
	}
	for _, in := range m.CollateralInputs {
		if err := in.encode(w); err != nil {
			return err
		}
	}
	if err := m.CollateralChange.Encode(w); err != nil {
		return err
	}
	if err := protocol.WriteUint64(w, m.TxFee); err != nil {
		return err
	}
	if err := encodePubKey(w, m.BorrowerPK); err != nil {
		return err
	}
	if err := protocol.WriteUint32(w, m.Timelock); err != nil {
		return err
	}
	return protocol.WriteVarBytes(w, m.BorrowerScript)
}

func (m *LoanRequest) Decode(r io.Reader) error {
	collateralAmount, err := protocol.ReadUint64(r)
	if err != nil {
		return err
	}
	inCount, err := protocol.ReadUint32(r)
	if err != nil {
		return err
	}
	inputs := make([]FundingInput, inCount)
	for i := range inputs {
		if inputs[i], err = decodeFundingInput(r); err != nil {
			return err
		}
	}
	collateralChangeOut, err := tx.DecodeTxOut(r)
	if err != nil {
		return err
	}
	collateralChange, ok := collateralChangeOut.(*tx.ExplicitTxOut)
	if !ok {
		return ErrMalformedMessage
	}
	txFee, err := protocol.ReadUint64(r)
	if err != nil {
		return err
	}
	borrowerPK, err := decodePubKey(r)
	if err != nil {
		return err
	}
	timelock, err := protocol.ReadUint32(r)
	if err != nil {
		return err
	}
	borrowerScript, err := protocol.ReadVarBytes(r)
	if err != nil {
		return err
	}

	m.CollateralAmount = collateralAmount
	m.CollateralInputs = inputs
	m.CollateralChange = collateralChange
	m.TxFee = txFee
	m.BorrowerPK = borrowerPK
	m.Timelock = timelock
	m.BorrowerScript = borrowerScript
	return nil
}

// LoanResponse is sent from the lender back to the borrower: the
// assembled, not yet signed loan transaction, spending the lender's
// principal inputs and the borrower's collateral inputs, plus the terms
// needed to derive the collateral covenant script independently.
type LoanResponse struct {
	Transaction *tx.Transaction
	LenderPK    *btcec.PublicKey
	LenderScript []byte
	Timelock    uint32
}

func (m *LoanResponse) MsgType() protocol.MessageType { return protocol.MsgLoanResponse }

func (m *LoanResponse) MaxPayloadLength() uint32 { return protocol.MaxMessagePayload }

func (m *LoanResponse) Encode(w io.Writer) error {
	if err := m.Transaction.Encode(w); err != nil {
		return err
	}
	if err := encodePubKey(w, m.LenderPK); err != nil {
		return err
	}
	if err := protocol.WriteVarBytes(w, m.LenderScript); err != nil {
		return err
	}
	return protocol.WriteUint32(w, m.Timelock)
}

func (m *LoanResponse) Decode(r io.Reader) error {
	transaction, err := tx.DecodeTransaction(r)
	if err != nil {
		return err
	}
	lenderPK, err := decodePubKey(r)
	if err != nil {
		return err
	}
	lenderScript, err := protocol.ReadVarBytes(r)
	if err != nil {
		return err
	}
	timelock, err := protocol.ReadUint32(r)
	if err != nil {
		return err
	}

	m.Transaction = transaction
	m.LenderPK = lenderPK
	m.LenderScript = lenderScript
	m.Timelock = timelock
	return nil
}

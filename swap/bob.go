package swap

import (
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/comit-network/waves/confidential"
	"github.com/comit-network/waves/tx"
	"github.com/comit-network/waves/txbuilder"
)

// Bob0 is the market maker's state before it has heard a trade proposal:
// it knows its own funding input, the asset it expects Alice to pay in,
// and where it wants to be paid.
type Bob0 struct {
	RedeemAmountAlice uint64
	RedeemAmountBob   uint64

	Input            tx.OutPoint
	InputTxOut       *tx.ConfidentialTxOut
	InputKey         *btcec.PrivateKey
	InputBlindingKey confidential.Scalar

	AssetAlice confidential.AssetID

	RedeemScript      []byte
	RedeemBlindingKey confidential.Scalar
	ChangeScript      []byte
	ChangeBlindingKey confidential.Scalar
}

// Interpret unblinds both parties' funding inputs, checks that each side
// can actually cover what it has committed to pay, and builds the trade
// transaction: each party's redeem output, each party's change output,
// and the miner fee. The market maker only trusts its own blinding keys
// here -- Alice's disclosed input is unblinded with the key she herself
// handed over in Message0, not assumed honest.
func (b *Bob0) Interpret(rnd io.Reader, msg *Message0) (*Bob1, error) {
	log.Debugf("interpreting swap offer for input %v", msg.Input)
	aliceInput, err := txbuilder.Unblind(msg.InputTxOut, msg.InputBlindingKey)
	if err != nil {
		return nil, ErrUnblindFailure
	}
	bobInput, err := txbuilder.Unblind(b.InputTxOut, b.InputBlindingKey)
	if err != nil {
		return nil, ErrUnblindFailure
	}
	if aliceInput.Asset != b.AssetAlice {
		log.Warnf("swap offer carries unexpected asset %x", aliceInput.Asset)
		return nil, ErrWrongAsset
	}

	changeAmountAlice, ok := checkedSub(aliceInput.Value, b.RedeemAmountBob, msg.Fee)
	if !ok {
		return nil, ErrInsufficientFunds
	}
	changeAmountBob, ok := checkedSub(bobInput.Value, b.RedeemAmountAlice, 0)
	if !ok {
		return nil, ErrInsufficientFunds
	}

	inputContributions := []confidential.Contribution{
		{Value: aliceInput.Value, ABF: aliceInput.ABF, VBF: aliceInput.VBF},
		{Value: bobInput.Value, ABF: bobInput.ABF, VBF: bobInput.VBF},
	}

	redeemAlice, err := txbuilder.BuildNonLastConfidential(rnd, bobInput.Asset, b.RedeemAmountAlice,
		msg.RedeemRecipient.PkScript, msg.RedeemRecipient.BlindingKey)
	if err != nil {
		return nil, err
	}
	redeemBob, err := txbuilder.BuildNonLastConfidential(rnd, b.AssetAlice, b.RedeemAmountBob,
		b.RedeemScript, confidential.BlindingKeyPair(b.RedeemBlindingKey))
	if err != nil {
		return nil, err
	}
	changeAlice, err := txbuilder.BuildNonLastConfidential(rnd, b.AssetAlice, changeAmountAlice,
		msg.ChangeRecipient.PkScript, msg.ChangeRecipient.BlindingKey)
	if err != nil {
		return nil, err
	}

	otherOutputContributions := txbuilder.Contributions([]txbuilder.Built{redeemAlice, redeemBob, changeAlice})
	changeBob, err := txbuilder.BuildLastConfidential(rnd, bobInput.Asset, changeAmountBob,
		b.ChangeScript, confidential.BlindingKeyPair(b.ChangeBlindingKey),
		inputContributions, otherOutputContributions)
	if err != nil {
		return nil, err
	}

	inputAGs := []confidential.AssetGenerator{msg.InputTxOut.Asset, b.InputTxOut.Asset}
	txbuilder.AttachSurjectionProof(redeemAlice.TxOut, inputAGs, 1)
	txbuilder.AttachSurjectionProof(redeemBob.TxOut, inputAGs, 0)
	txbuilder.AttachSurjectionProof(changeAlice.TxOut, inputAGs, 0)
	txbuilder.AttachSurjectionProof(changeBob.TxOut, inputAGs, 1)

	transaction := tx.NewTransaction()
	transaction.AddTxIn(&tx.TxIn{PreviousOutPoint: msg.Input, Sequence: 0xffffffff})
	transaction.AddTxIn(&tx.TxIn{PreviousOutPoint: b.Input, Sequence: 0xffffffff})
	transaction.AddTxOut(redeemAlice.TxOut)
	transaction.AddTxOut(redeemBob.TxOut)
	transaction.AddTxOut(changeAlice.TxOut)
	transaction.AddTxOut(changeBob.TxOut)
	transaction.AddTxOut(txbuilder.BuildFee(b.AssetAlice, msg.Fee))

	inputIndexBob := findInput(transaction, b.Input)
	if inputIndexBob < 0 {
		return nil, ErrInputNotFound
	}

	return &Bob1{
		Transaction:   transaction,
		InputIndexBob: inputIndexBob,
		InputKey:      b.InputKey,
		InputTxOut:    b.InputTxOut,
	}, nil
}

// Bob1 is the market maker's state once it has assembled the trade
// transaction and is ready to countersign its own input.
type Bob1 struct {
	Transaction   *tx.Transaction
	InputIndexBob int
	InputKey      *btcec.PrivateKey
	InputTxOut    *tx.ConfidentialTxOut
}

// Compose signs the market maker's own input and returns the message to
// send back to Alice.
func (b *Bob1) Compose() (*Message1, error) {
	if err := signP2WPKHInput(b.Transaction, b.InputIndexBob, b.InputKey, b.InputTxOut.Value); err != nil {
		return nil, ErrSignatureFailure
	}
	return &Message1{Transaction: b.Transaction}, nil
}

package swap

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/comit-network/waves/confidential"
	"github.com/comit-network/waves/txbuilder"
	"github.com/comit-network/waves/tx"
)

// Alice0 is the trader's state before she has heard back from the market
// maker: she knows her own funding input and what she expects to receive
// and keep as change, but has not yet seen a candidate transaction.
type Alice0 struct {
	RedeemAmountAlice uint64
	RedeemAmountBob   uint64

	Input      tx.OutPoint
	InputTxOut *tx.ConfidentialTxOut
	InputKey   *btcec.PrivateKey
	InputBlindingKey confidential.Scalar

	AssetBob confidential.AssetID

	RedeemScript      []byte
	RedeemBlindingKey confidential.Scalar
	ChangeScript      []byte
	ChangeBlindingKey confidential.Scalar

	Fee uint64
}

// Compose produces the message Alice sends the market maker to kick off
// the handshake, disclosing her funding input (and its blinding key) so
// the maker can unblind it and build the trade transaction.
func (a *Alice0) Compose() *Message0 {
	log.Debugf("composing swap offer for input %v", a.Input)
	return &Message0{
		Input:            a.Input,
		InputTxOut:       a.InputTxOut,
		InputBlindingKey: a.InputBlindingKey,
		RedeemRecipient: Recipient{
			PkScript:    a.RedeemScript,
			BlindingKey: confidential.BlindingKeyPair(a.RedeemBlindingKey),
		},
		ChangeRecipient: Recipient{
			PkScript:    a.ChangeScript,
			BlindingKey: confidential.BlindingKeyPair(a.ChangeBlindingKey),
		},
		Fee: a.Fee,
	}
}

// Interpret validates the market maker's proposed transaction against the
// terms Alice agreed to -- that it pays her redeem amount in the maker's
// asset and her expected change in her own asset -- and, only once that
// holds, signs her own input and returns the transaction ready to
// broadcast. Alice never signs a transaction she has not fully verified.
func (a *Alice0) Interpret(msg *Message1) (*tx.Transaction, error) {
	transaction := msg.Transaction

	if err := a.verifyRedeemOutput(transaction); err != nil {
		log.Errorf("rejecting swap acceptance: %v", err)
		return nil, err
	}
	inputOpening, err := txbuilder.Unblind(a.InputTxOut, a.InputBlindingKey)
	if err != nil {
		return nil, ErrUnblindFailure
	}
	expectedChange, ok := checkedSub(inputOpening.Value, a.RedeemAmountBob, a.Fee)
	if !ok {
		return nil, ErrInsufficientFunds
	}
	if err := a.verifyChangeOutput(transaction, inputOpening.Asset, expectedChange); err != nil {
		return nil, err
	}

	inputIndex := findInput(transaction, a.Input)
	if inputIndex < 0 {
		return nil, ErrInputNotFound
	}
	if err := signP2WPKHInput(transaction, inputIndex, a.InputKey, a.InputTxOut.Value); err != nil {
		return nil, ErrSignatureFailure
	}
	log.Infof("signed swap transaction %v", transaction.Txid())
	return transaction, nil
}

func (a *Alice0) verifyRedeemOutput(transaction *tx.Transaction) error {
	for _, out := range transaction.TxOut {
		confOut, ok := out.(*tx.ConfidentialTxOut)
		if !ok || string(confOut.PkScript) != string(a.RedeemScript) {
			continue
		}
		opening, err := txbuilder.Unblind(confOut, a.RedeemBlindingKey)
		if err != nil {
			continue
		}
		if opening.Asset == a.AssetBob && opening.Value == a.RedeemAmountAlice {
			return nil
		}
	}
	return ErrWrongRedeem
}

func (a *Alice0) verifyChangeOutput(transaction *tx.Transaction, expectedAsset confidential.AssetID, expectedAmount uint64) error {
	for _, out := range transaction.TxOut {
		confOut, ok := out.(*tx.ConfidentialTxOut)
		if !ok || string(confOut.PkScript) != string(a.ChangeScript) {
			continue
		}
		opening, err := txbuilder.Unblind(confOut, a.ChangeBlindingKey)
		if err != nil {
			continue
		}
		if opening.Asset == expectedAsset && opening.Value == expectedAmount {
			return nil
		}
	}
	return ErrWrongChange
}

// checkedSub returns in - (a+b) and false if the subtraction would
// underflow.
func checkedSub(in, a, b uint64) (uint64, bool) {
	total := a + b
	if total > in {
		return 0, false
	}
	return in - total, true
}

package covenant

import (
	"github.com/btcsuite/btcd/btcec/v2"
	secpecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/comit-network/waves/confidential"
	"github.com/comit-network/waves/tx"
)

// Borrower0 is the borrower's state before the lender has responded: it
// knows the collateral it is putting up and the terms (timelock, own
// key and receiving script) the loan must be built around, but has not
// yet seen the lender's counterpart key or the assembled transaction.
type Borrower0 struct {
	Key *btcec.PrivateKey

	BorrowerScript []byte

	CollateralAmount uint64
	CollateralInputs []FundingInput
	CollateralChange *tx.ExplicitTxOut
	TxFee            uint64
	Timelock         uint32

	BitcoinAsset confidential.AssetID
	USDTAsset    confidential.AssetID
}

// NewBorrower0 builds a Borrower0 after checking that collateralInputs
// covers collateralAmount, the change returned to collateralChange, and
// the fee -- coin selection itself is left to an external collaborator,
// but the arithmetic it must satisfy is checked once here rather than
// left to surface as a failed covenant script later.
func NewBorrower0(key *btcec.PrivateKey, borrowerScript []byte, collateralAmount uint64, collateralInputs []FundingInput, collateralChange *tx.ExplicitTxOut, txFee uint64, timelock uint32, bitcoinAsset, usdtAsset confidential.AssetID) (*Borrower0, error) {
	inputAmount := uint64(0)
	for _, in := range collateralInputs {
		inputAmount += in.Amount
	}
	changeAmount := uint64(0)
	if collateralChange != nil {
		changeAmount = collateralChange.Value
	}
	if inputAmount < collateralAmount+txFee+changeAmount {
		return nil, ErrInsufficientCollateral
	}

	return &Borrower0{
		Key:              key,
		BorrowerScript:   borrowerScript,
		CollateralAmount: collateralAmount,
		CollateralInputs: collateralInputs,
		CollateralChange: collateralChange,
		TxFee:            txFee,
		Timelock:         timelock,
		BitcoinAsset:     bitcoinAsset,
		USDTAsset:        usdtAsset,
	}, nil
}

// LoanRequest produces the message the borrower sends the lender to
// open the handshake.
func (b *Borrower0) LoanRequest() *LoanRequest {
	return &LoanRequest{
		CollateralAmount: b.CollateralAmount,
		CollateralInputs: b.CollateralInputs,
		CollateralChange: b.CollateralChange,
		TxFee:            b.TxFee,
		BorrowerPK:       b.Key.PubKey(),
		Timelock:         b.Timelock,
		BorrowerScript:   b.BorrowerScript,
	}
}

// Interpret validates the lender's proposed loan transaction against the
// terms the borrower offered -- that it pays the agreed principal to her
// own script, locks exactly her collateral amount under the covenant
// script both sides can independently derive, and preserves her
// collateral change output unmodified -- and, only once that holds,
// prepares to sign her own collateral inputs.
func (b *Borrower0) Interpret(resp *LoanResponse) (*Borrower1, error) {
	transaction := resp.Transaction

	principalTxOut, err := findExplicitOutput(transaction, b.USDTAsset, b.BorrowerScript)
	if err != nil {
		log.Errorf("rejecting loan response: %v", err)
		return nil, ErrNoPrincipalOutput
	}

	collateralScript, repaymentTxOut, err := loanContract(
		b.Key.PubKey(), resp.LenderPK, principalTxOut.Value, resp.LenderScript, int64(resp.Timelock), b.USDTAsset)
	if err != nil {
		return nil, err
	}
	collateralPkScript, err := witnessScriptHash(collateralScript)
	if err != nil {
		return nil, err
	}

	if _, err := findExplicitOutputByScript(transaction, b.BitcoinAsset, b.CollateralAmount, collateralPkScript); err != nil {
		return nil, ErrNoCollateralOutput
	}
	if !hasCollateralChangeOutput(transaction, b.CollateralChange) {
		return nil, ErrNoCollateralChangeOutput
	}

	return &Borrower1{
		Key:              b.Key,
		LoanTransaction:  transaction,
		CollateralAmount: b.CollateralAmount,
		CollateralInputs: b.CollateralInputs,
		CollateralScript: collateralScript,
		PrincipalTxOut:   principalTxOut,
		RepaymentTxOut:   repaymentTxOut,
		BorrowerScript:   b.BorrowerScript,
		BitcoinAsset:     b.BitcoinAsset,
		USDTAsset:        b.USDTAsset,
	}, nil
}

// Borrower1 is the borrower's state once she has agreed to the proposed
// loan transaction: she knows the collateral script she has locked
// funds under and the exact repayment output she must eventually pay to
// redeem them.
type Borrower1 struct {
	Key *btcec.PrivateKey

	LoanTransaction  *tx.Transaction
	CollateralAmount uint64
	CollateralInputs []FundingInput
	CollateralScript []byte
	PrincipalTxOut   *tx.ExplicitTxOut
	RepaymentTxOut   *tx.ExplicitTxOut
	BorrowerScript   []byte

	BitcoinAsset confidential.AssetID
	USDTAsset    confidential.AssetID
}

// Sign signs every one of the borrower's own collateral inputs in the
// loan transaction and returns it ready to combine with the lender's
// own signatures.
func (b *Borrower1) Sign() (*tx.Transaction, error) {
	for _, input := range b.CollateralInputs {
		idx := tx.FindInput(b.LoanTransaction, input.Outpoint)
		if idx < 0 {
			return nil, ErrNoCollateralOutput
		}
		if err := tx.SignP2WPKHInputExplicit(b.LoanTransaction, idx, b.Key, input.Amount); err != nil {
			return nil, err
		}
	}
	return b.LoanTransaction, nil
}

// RepaymentTransaction builds the transaction that redeems the
// collateral by paying exactly repaymentTxOut to the lender: a
// collateral input spending the covenant output, a repayment input plus
// optional change covering repaymentTxOut's amount, the collateral
// itself returned to the borrower less a fee, and the miner fee. The
// collateral input's witness is assembled and signed only once every
// output is in place, since the covenant script commits to the
// transaction's full output set; the repayment inputs are signed after it.
func (b *Borrower1) RepaymentTransaction(repaymentInputs []FundingInput, repaymentChange *tx.ExplicitTxOut, txFee uint64) (*tx.Transaction, error) {
	loanTxid := b.LoanTransaction.Txid()
	collateralVout := -1
	collateralPkScript, err := witnessScriptHash(b.CollateralScript)
	if err != nil {
		return nil, err
	}
	for i, out := range b.LoanTransaction.TxOut {
		explicit, ok := out.(*tx.ExplicitTxOut)
		if ok && string(explicit.PkScript) == string(collateralPkScript) {
			collateralVout = i
			break
		}
	}
	if collateralVout < 0 {
		return nil, ErrNoCollateralOutput
	}

	t := tx.NewTransaction()
	t.AddTxIn(&tx.TxIn{
		PreviousOutPoint: tx.OutPoint{Hash: loanTxid, Index: uint32(collateralVout)},
		Sequence:         0xffffffff,
	})
	for _, input := range repaymentInputs {
		t.AddTxIn(&tx.TxIn{PreviousOutPoint: input.Outpoint, Sequence: 0xffffffff})
	}

	t.AddTxOut(b.RepaymentTxOut)
	t.AddTxOut(&tx.ExplicitTxOut{
		Asset:    b.BitcoinAsset,
		Value:    b.CollateralAmount - txFee,
		PkScript: b.BorrowerScript,
	})
	t.AddTxOut(&tx.ExplicitTxOut{Asset: b.BitcoinAsset, Value: txFee})
	if repaymentChange != nil {
		t.AddTxOut(repaymentChange)
	}

	sigHash := repaymentSigHash(t, 0, b.CollateralScript, b.CollateralAmount)
	signature := secpecdsa.Sign(b.Key, sigHash[:])
	sigWithHashType := append(signature.Serialize(), tx.SigHashAll)

	witness, err := repaymentWitnessStack(t, 0, sigWithHashType, b.Key.PubKey().SerializeCompressed(), b.CollateralAmount, b.CollateralScript)
	if err != nil {
		return nil, err
	}
	t.TxIn[0].Witness = witness
	log.Infof("built repayment transaction %v", t.Txid())

	for i, input := range repaymentInputs {
		if err := tx.SignP2WPKHInputExplicit(t, i+1, b.Key, input.Amount); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func findExplicitOutput(t *tx.Transaction, asset confidential.AssetID, script []byte) (*tx.ExplicitTxOut, error) {
	for _, out := range t.TxOut {
		explicit, ok := out.(*tx.ExplicitTxOut)
		if ok && explicit.Asset == asset && string(explicit.PkScript) == string(script) {
			return explicit, nil
		}
	}
	return nil, ErrNoPrincipalOutput
}

func findExplicitOutputByScript(t *tx.Transaction, asset confidential.AssetID, value uint64, script []byte) (*tx.ExplicitTxOut, error) {
	for _, out := range t.TxOut {
		explicit, ok := out.(*tx.ExplicitTxOut)
		if ok && explicit.Asset == asset && explicit.Value == value && string(explicit.PkScript) == string(script) {
			return explicit, nil
		}
	}
	return nil, ErrNoCollateralOutput
}

func hasCollateralChangeOutput(t *tx.Transaction, want *tx.ExplicitTxOut) bool {
	for _, out := range t.TxOut {
		explicit, ok := out.(*tx.ExplicitTxOut)
		if ok && explicit.Asset == want.Asset && explicit.Value == want.Value && string(explicit.PkScript) == string(want.PkScript) {
			return true
		}
	}
	return false
}

package covenant

import (
	"github.com/btcsuite/btcd/btcec/v2"
	secpecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/comit-network/waves/confidential"
	"github.com/comit-network/waves/tx"
)

// Lender0 is the lender's state before it has heard a loan request: it
// knows its own principal funding and where it wants to be repaid, but
// has not yet decided the principal amount a particular request earns.
type Lender0 struct {
	Key *btcec.PrivateKey

	PrincipalInputs []FundingInput
	LenderScript    []byte

	BitcoinAsset confidential.AssetID
	USDTAsset    confidential.AssetID

	// LoanToValueNum/LoanToValueDen set the principal the lender is
	// willing to advance as a fraction of collateral offered, e.g. 1/2
	// for a 50% loan-to-value ratio.
	LoanToValueNum uint64
	LoanToValueDen uint64

	// Policy, if set, gives the lender a final veto over a request's
	// collateral/principal pair beyond the loan-to-value ratio alone --
	// e.g. a minimum or maximum position size.
	Policy PolicyFunc
}

// Interpret decides the principal to advance against req's collateral,
// checks it against the lender's policy, and assembles the loan
// transaction: the collateral output locked under the covenant script
// both parties can independently derive, the principal payment to the
// borrower, each side's change, and the miner fee.
func (l *Lender0) Interpret(req *LoanRequest) (*Lender1, error) {
	principalAmount := req.CollateralAmount * l.LoanToValueNum / l.LoanToValueDen
	if l.Policy != nil && !l.Policy(req.CollateralAmount, principalAmount) {
		log.Warnf("rejecting loan request for %d collateral by policy", req.CollateralAmount)
		return nil, ErrPolicyRejected
	}
	log.Debugf("advancing principal %d against collateral %d", principalAmount, req.CollateralAmount)

	collateralScript, _, err := loanContract(
		req.BorrowerPK, l.Key.PubKey(), principalAmount, l.LenderScript, int64(req.Timelock), l.USDTAsset)
	if err != nil {
		return nil, err
	}
	collateralPkScript, err := witnessScriptHash(collateralScript)
	if err != nil {
		return nil, err
	}

	collateralTxOut := &tx.ExplicitTxOut{
		Asset:    l.BitcoinAsset,
		Value:    req.CollateralAmount,
		PkScript: collateralPkScript,
	}
	principalTxOut := &tx.ExplicitTxOut{
		Asset:    l.USDTAsset,
		Value:    principalAmount,
		PkScript: req.BorrowerScript,
	}

	principalInputAmount := uint64(0)
	for _, in := range l.PrincipalInputs {
		principalInputAmount += in.Amount
	}
	if principalInputAmount < principalAmount {
		return nil, ErrInsufficientPrincipal
	}
	principalChangeTxOut := &tx.ExplicitTxOut{
		Asset:    l.USDTAsset,
		Value:    principalInputAmount - principalAmount,
		PkScript: l.LenderScript,
	}

	feeTxOut := &tx.ExplicitTxOut{Asset: l.BitcoinAsset, Value: req.TxFee}

	loanInputs := make([]FundingInput, 0, len(l.PrincipalInputs)+len(req.CollateralInputs))
	loanInputs = append(loanInputs, l.PrincipalInputs...)
	loanInputs = append(loanInputs, req.CollateralInputs...)

	loanTransaction := tx.NewTransaction()
	for _, in := range loanInputs {
		loanTransaction.AddTxIn(&tx.TxIn{PreviousOutPoint: in.Outpoint, Sequence: 0xffffffff})
	}
	loanTransaction.AddTxOut(collateralTxOut)
	loanTransaction.AddTxOut(principalTxOut)
	loanTransaction.AddTxOut(principalChangeTxOut)
	loanTransaction.AddTxOut(req.CollateralChange)
	loanTransaction.AddTxOut(feeTxOut)

	return &Lender1{
		Key:              l.Key,
		LenderScript:     l.LenderScript,
		Timelock:         req.Timelock,
		LoanTransaction:  loanTransaction,
		PrincipalInputs:  l.PrincipalInputs,
		CollateralScript: collateralScript,
		CollateralAmount: req.CollateralAmount,
		BitcoinAsset:     l.BitcoinAsset,
	}, nil
}

// Lender1 is the lender's state once it has assembled the loan
// transaction and is ready to sign its own principal inputs.
type Lender1 struct {
	Key *btcec.PrivateKey

	LenderScript    []byte
	Timelock        uint32
	LoanTransaction *tx.Transaction
	PrincipalInputs []FundingInput

	CollateralScript []byte
	CollateralAmount uint64
	BitcoinAsset     confidential.AssetID
}

// LoanResponse returns the message to send back to the borrower.
func (l *Lender1) LoanResponse() *LoanResponse {
	return &LoanResponse{
		Transaction:  l.LoanTransaction,
		LenderPK:     l.Key.PubKey(),
		LenderScript: l.LenderScript,
		Timelock:     l.Timelock,
	}
}

// FinaliseLoan signs the lender's own principal inputs in loanTransaction,
// refusing to sign anything but the exact transaction it proposed.
func (l *Lender1) FinaliseLoan(loanTransaction *tx.Transaction) (*tx.Transaction, error) {
	if l.LoanTransaction.Txid() != loanTransaction.Txid() {
		return nil, ErrWrongLoanTransaction
	}
	for _, input := range l.PrincipalInputs {
		idx := tx.FindInput(loanTransaction, input.Outpoint)
		if idx < 0 {
			return nil, ErrInsufficientPrincipal
		}
		if err := tx.SignP2WPKHInputExplicit(loanTransaction, idx, l.Key, input.Amount); err != nil {
			return nil, err
		}
	}
	return loanTransaction, nil
}

// LiquidationTransaction sweeps the collateral output to the lender's
// own script via the ELSE branch of the covenant script, usable only
// once the timelock has passed -- the locktime set here is what a
// validating node checks the current chain tip against. txFee is
// deducted from the swept collateral and paid out as its own explicit
// fee output, the same accounting RepaymentTransaction applies.
func (l *Lender1) LiquidationTransaction(txFee uint64) (*tx.Transaction, error) {
	if txFee > l.CollateralAmount {
		return nil, ErrInsufficientCollateral
	}

	collateralPkScript, err := witnessScriptHash(l.CollateralScript)
	if err != nil {
		return nil, err
	}
	collateralVout := -1
	for i, out := range l.LoanTransaction.TxOut {
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
	t.LockTime = l.Timelock
	t.AddTxIn(&tx.TxIn{
		PreviousOutPoint: tx.OutPoint{Hash: l.LoanTransaction.Txid(), Index: uint32(collateralVout)},
		Sequence:         0xfffffffe,
	})
	t.AddTxOut(&tx.ExplicitTxOut{
		Asset:    l.BitcoinAsset,
		Value:    l.CollateralAmount - txFee,
		PkScript: l.LenderScript,
	})
	t.AddTxOut(&tx.ExplicitTxOut{Asset: l.BitcoinAsset, Value: txFee})

	sigHash := t.CalcWitnessSigHashExplicit(0, l.CollateralScript, l.CollateralAmount, tx.SigHashAll)
	signature := secpecdsa.Sign(l.Key, sigHash[:])
	sigWithHashType := append(signature.Serialize(), tx.SigHashAll)

	t.TxIn[0].Witness = liquidationWitnessStack(sigWithHashType, l.CollateralScript)
	log.Infof("built liquidation transaction %v for collateral %d", t.Txid(), l.CollateralAmount)
	return t, nil
}

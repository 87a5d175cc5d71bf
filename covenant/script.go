// Package covenant implements the collateralised loan handshake: a
// borrower locks bitcoin-asset collateral under a two-branch script a
// lender funds against, and advances a USDT-asset principal in return.
// The collateral script commits, via OP_CAT and OP_CHECKSIGFROMSTACK, to
// the exact repayment output the borrower must eventually pay -- so the
// borrower can redeem her own collateral at any time by producing that
// repayment, while the lender can liquidate it unilaterally after a
// timelock if she never does.
package covenant

import (
	"bytes"
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/comit-network/waves/confidential"
	"github.com/comit-network/waves/tx"
)

// loanContract builds the repayment output the lender expects to be
// paid by, and the collateral script committing to it: the single
// source of truth for both sides of the handshake, since the borrower
// and the lender must independently derive the identical script from
// the same terms to agree the collateral is locked correctly.
func loanContract(borrowerPK, lenderPK *btcec.PublicKey, principalAmount uint64, lenderScript []byte, timelock int64, usdtAsset confidential.AssetID) ([]byte, *tx.ExplicitTxOut, error) {
	repaymentOut := &tx.ExplicitTxOut{
		Asset:    usdtAsset,
		Value:    principalAmount,
		PkScript: lenderScript,
	}
	script, err := collateralScript(borrowerPK, lenderPK, repaymentOut, timelock)
	if err != nil {
		return nil, nil, err
	}
	return script, repaymentOut, nil
}

// opCheckSigFromStack has no counterpart in Bitcoin's opcode table: it
// verifies a signature against a message popped off the stack rather
// than the spending transaction's own sighash, which is what lets the
// repayment branch bind today's spend to a future, not-yet-broadcast
// transaction that pays the lender her principal back.
const opCheckSigFromStack = 0xc1

// collateralScript builds the two-branch script collateral is locked
// under: the IF branch lets the borrower spend at any time by signing
// over a transaction that pays repaymentOut, using OP_CHECKSIGFROMSTACK
// against a message the script itself reconstructs field-by-field from
// the witness stack; the ELSE branch lets the lender sweep the
// collateral unilaterally once timelock has passed.
func collateralScript(borrowerPK, lenderPK *btcec.PublicKey, repaymentOut *tx.ExplicitTxOut, timelock int64) ([]byte, error) {
	var repaymentBuf bytes.Buffer
	tx.EncodeTxOutForSigHash(&repaymentBuf, repaymentOut)

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_IF)
	builder.AddOp(txscript.OP_DEPTH)
	builder.AddOp(txscript.OP_1SUB)
	builder.AddOp(txscript.OP_PICK)
	builder.AddOp(txscript.OP_1)
	builder.AddOp(txscript.OP_CAT)
	builder.AddData(borrowerPK.SerializeCompressed())
	builder.AddOp(txscript.OP_CHECKSIGVERIFY)
	builder.AddData(repaymentBuf.Bytes())
	builder.AddOp(txscript.OP_2ROT)
	builder.AddInt64(5)
	builder.AddOp(txscript.OP_ROLL)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_HASH256)
	builder.AddOp(txscript.OP_ROT)
	builder.AddOp(txscript.OP_ROT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	builder.AddOp(txscript.OP_CAT)
	// OP_SHA256 hashes the reconstructed preimage once and
	// OP_CHECKSIGFROMSTACK hashes that digest again, so the signature is
	// checked against the double-SHA256 sighash CalcWitnessSigHashExplicit
	// produces. This single hash here is a hard constraint: a second one
	// would make every repayment signature fail.
	builder.AddOp(txscript.OP_SHA256)
	builder.AddOp(txscript.OP_SWAP)
	builder.AddOp(opCheckSigFromStack)
	builder.AddOp(txscript.OP_ELSE)
	builder.AddInt64(timelock)
	builder.AddOp(txscript.OP_CHECKLOCKTIMEVERIFY)
	builder.AddOp(txscript.OP_DROP)
	builder.AddOp(txscript.OP_DUP)
	builder.AddData(lenderPK.SerializeCompressed())
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ENDIF)
	return builder.Script()
}

// witnessScriptHash generates a pay-to-witness-script-hash public key
// script paying to a version 0 witness program committing to
// redeemScript.
func witnessScriptHash(redeemScript []byte) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_0)
	scriptHash := sha256.Sum256(redeemScript)
	builder.AddData(scriptHash[:])
	return builder.Script()
}

// splitThree divides script, in its length-prefixed scriptCode encoding
// (the same 4-byte-length-plus-bytes shape CalcWitnessSigHashExplicit's
// writeVarBytes produces), into three roughly equal chunks -- the shape
// the repayment witness stack pushes it in: a single push of the whole
// script risks tripping the standardness limit on witness item size for
// scripts this large, so the script is pushed in three pieces, which the
// collateral script's OP_CAT chain joins back together inside the
// preimage it reconstructs. The
// split point is a third of the unprefixed script's length, the same
// arithmetic applied to the prefixed bytes.
func splitThree(script []byte) ([]byte, []byte, []byte) {
	prefix := tx.EncodeUint32LE(uint32(len(script)))
	encoded := make([]byte, 0, len(prefix)+len(script))
	encoded = append(encoded, prefix[:]...)
	encoded = append(encoded, script...)

	third := len(script) / 3
	return encoded[:third], encoded[third : 2*third], encoded[2*third:]
}

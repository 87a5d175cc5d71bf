package covenant

import (
	"bytes"

	"github.com/btcsuite/btcd/wire"
	"github.com/comit-network/waves/tx"
)

// repaymentSigHash computes the message the repayment branch's signature
// is produced over: the same BIP143-style preimage CalcWitnessSigHashExplicit
// hashes for any other explicit-value input, using the collateral script
// as scriptCode and the collateral amount as the spent value.
func repaymentSigHash(t *tx.Transaction, inputIndex int, script []byte, collateralValue uint64) [32]byte {
	return t.CalcWitnessSigHashExplicit(inputIndex, script, collateralValue, tx.SigHashAll)
}

// encodeTxOut encodes out the same way CalcWitnessSigHashExplicit's
// hashOutputs does, not the way TxOut.Encode serializes it onto the
// wire: no discriminant byte, and little-endian fields throughout. The
// collateral script CATs these same bytes together on-stack, so the
// two encodings must agree byte-for-byte.
func encodeTxOut(out tx.TxOut) []byte {
	var buf bytes.Buffer
	tx.EncodeTxOutForSigHash(&buf, out)
	return buf.Bytes()
}

// repaymentWitnessStack assembles the witness satisfying the IF branch of
// collateralScript: the signature and pubkey the script checks directly,
// plus every transaction field the script reconstructs and hashes
// on-stack to arrive at the same message that signature was produced
// over, each encoded the same way CalcWitnessSigHashExplicit encodes it.
// At most three "other" outputs -- those after the first, repayment
// output -- are supported: the covenant script has no way to commit to a
// variable-length output list, so the witness always carries exactly
// three output slots, padded with empty pushes when fewer outputs follow
// the repayment output, and ErrCovenantAmbiguity is returned when more do.
func repaymentWitnessStack(t *tx.Transaction, inputIndex int, sig, pubKey []byte, collateralValue uint64, script []byte) (wire.TxWitness, error) {
	in := t.TxIn[inputIndex]

	prevOutBuf := tx.EncodeOutPointForSigHash(in.PreviousOutPoint)

	script0, script1, script2 := splitThree(script)

	otherOutputs := t.TxOut[1:]
	if len(otherOutputs) > 3 {
		return nil, ErrCovenantAmbiguity
	}
	encodedOutputs := make([][]byte, 3)
	for i := range encodedOutputs {
		if i >= len(otherOutputs) {
			encodedOutputs[i] = []byte{}
			continue
		}
		encodedOutputs[i] = encodeTxOut(otherOutputs[i])
	}

	hashIssuances := t.HashIssuances()
	hashPrevouts := t.HashPrevouts()
	hashSequence := t.HashSequence()
	version := tx.EncodeUint32LE(uint32(t.Version))
	value := tx.EncodeUint64LE(collateralValue)
	sequence := tx.EncodeUint32LE(in.Sequence)
	lockTime := tx.EncodeUint32LE(t.LockTime)

	return wire.TxWitness{
		sig,
		pubKey,
		version[:],
		hashPrevouts[:],
		hashSequence[:],
		hashIssuances[:],
		prevOutBuf,
		script0,
		script1,
		script2,
		value[:],
		sequence[:],
		encodedOutputs[0],
		encodedOutputs[1],
		encodedOutputs[2],
		lockTime[:],
		{tx.SigHashAll},
		{0x01},
		script,
	}, nil
}

// liquidationWitnessStack assembles the witness satisfying the ELSE
// branch of collateralScript: just the lender's signature, with an
// empty push selecting the ELSE branch.
func liquidationWitnessStack(sig []byte, script []byte) wire.TxWitness {
	return wire.TxWitness{
		sig,
		{},
		script,
	}
}

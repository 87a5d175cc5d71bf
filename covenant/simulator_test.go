package covenant

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	secpecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

// scriptSimulator walks collateralScript's opcodes against a witness
// stack the way a validating node's interpreter would, without a full
// consensus script engine behind it: OP_CHECKSIGFROMSTACK and the
// OP_CAT chain that reconstructs the repayment digest have no
// consensus meaning in Bitcoin script, so nothing in btcsuite/btcd can
// run this script for us. witnessStack is in the same order a real
// witness stack is pushed, script last -- the simulator discards that
// trailing copy itself before walking the opcodes.
func scriptSimulator(script []byte, witnessStack [][]byte) ([][]byte, error) {
	stack := make([][]byte, len(witnessStack)-1)
	copy(stack, witnessStack[:len(witnessStack)-1])

	var altStack [][]byte
	pop := func(s *[][]byte) ([]byte, error) {
		if len(*s) == 0 {
			return nil, fmt.Errorf("covenant: stack underflow")
		}
		item := (*s)[len(*s)-1]
		*s = (*s)[:len(*s)-1]
		return item, nil
	}

	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		switch tokenizer.Opcode() {
		case txscript.OP_CAT:
			item1, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			item0, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			stack = append(stack, append(item0, item1...))
		case txscript.OP_IF:
			if _, err := pop(&stack); err != nil {
				return nil, err
			}
		case txscript.OP_ELSE, txscript.OP_ENDIF, txscript.OP_CHECKLOCKTIMEVERIFY:
			// Branch markers and the timelock check are enforced by a
			// real consensus engine, not here: the simulator only ever
			// walks the branch the witness already selected.
		case txscript.OP_SWAP:
			first, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			second, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			stack = append(stack, first, second)
		case txscript.OP_ROT:
			if len(stack) < 3 {
				return nil, fmt.Errorf("covenant: stack underflow")
			}
			n := len(stack)
			stack[n-3], stack[n-2], stack[n-1] = stack[n-2], stack[n-1], stack[n-3]
		case txscript.OP_2ROT:
			if len(stack) < 6 {
				return nil, fmt.Errorf("covenant: stack underflow")
			}
			n := len(stack)
			bottom := append([][]byte{}, stack[n-6:n-4]...)
			copy(stack[n-6:n-2], stack[n-4:n])
			copy(stack[n-2:n], bottom)
		case txscript.OP_ROLL:
			idxBytes, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			idx := int(idxBytes[0])
			if idx < 0 || idx >= len(stack) {
				return nil, fmt.Errorf("covenant: OP_ROLL index out of range")
			}
			pos := len(stack) - idx - 1
			item := stack[pos]
			stack = append(stack[:pos], stack[pos+1:]...)
			stack = append(stack, item)
		case txscript.OP_HASH256:
			item, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			hashed := chainhash.DoubleHashB(item)
			stack = append(stack, hashed)
		case txscript.OP_SHA256:
			item, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			hashed := sha256.Sum256(item)
			stack = append(stack, hashed[:])
		case txscript.OP_TOALTSTACK:
			item, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			altStack = append(altStack, item)
		case txscript.OP_FROMALTSTACK:
			item, err := pop(&altStack)
			if err != nil {
				return nil, err
			}
			stack = append(stack, item)
		case txscript.OP_DEPTH:
			stack = append(stack, []byte{byte(len(stack))})
		case txscript.OP_1SUB:
			item, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			stack = append(stack, []byte{item[0] - 1})
		case txscript.OP_PICK:
			idxBytes, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			idx := int(idxBytes[0])
			if idx < 0 || idx >= len(stack) {
				return nil, fmt.Errorf("covenant: OP_PICK index out of range")
			}
			picked := make([]byte, len(stack[len(stack)-idx-1]))
			copy(picked, stack[len(stack)-idx-1])
			stack = append(stack, picked)
		case txscript.OP_1:
			stack = append(stack, []byte{1})
		case txscript.OP_2, txscript.OP_3, txscript.OP_4, txscript.OP_5,
			txscript.OP_6, txscript.OP_7, txscript.OP_8, txscript.OP_9,
			txscript.OP_10, txscript.OP_11, txscript.OP_12, txscript.OP_13,
			txscript.OP_14, txscript.OP_15, txscript.OP_16:
			stack = append(stack, []byte{tokenizer.Opcode() - txscript.OP_1 + 1})
		case txscript.OP_CHECKSIGVERIFY:
			// Ignored, same as the original simulator: this branch
			// never reaches a real borrower/lender P2WPKH check, only
			// the borrower's own OP_CHECKSIGFROMSTACK further down.
			if _, err := pop(&stack); err != nil {
				return nil, err
			}
			if _, err := pop(&stack); err != nil {
				return nil, err
			}
		case opCheckSigFromStack:
			pkBytes, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			pk, err := btcec.ParsePubKey(pkBytes)
			if err != nil {
				return nil, err
			}
			message, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			hashed := sha256.Sum256(message)
			sigBytes, err := pop(&stack)
			if err != nil {
				return nil, err
			}
			if len(sigBytes) == 0 {
				return nil, fmt.Errorf("covenant: empty signature")
			}
			signature, err := secpecdsa.ParseDERSignature(sigBytes[:len(sigBytes)-1])
			if err != nil {
				return nil, err
			}
			if !signature.Verify(hashed[:], pk) {
				return nil, fmt.Errorf("covenant: OP_CHECKSIGFROMSTACK signature verification failed")
			}
			return stack, nil
		default:
			if data := tokenizer.Data(); data != nil {
				item := make([]byte, len(data))
				copy(item, data)
				stack = append(stack, item)
			}
		}
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return stack, nil
}

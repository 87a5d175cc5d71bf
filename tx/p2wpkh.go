package tx

import (
	"github.com/btcsuite/btcd/btcec/v2"
	secpecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/comit-network/waves/confidential"
)

// P2WPKHScriptCode builds the OP_DUP OP_HASH160 <hash160(pubkey)>
// OP_EQUALVERIFY OP_CHECKSIG script a P2WPKH input signs against, the
// template every party's own funding input uses throughout the swap and
// covenant protocols.
func P2WPKHScriptCode(pubKey *btcec.PublicKey) []byte {
	pkHash := btcutil.Hash160(pubKey.SerializeCompressed())
	script := make([]byte, 0, 25)
	script = append(script, 0x76, 0xa9, 0x14) // OP_DUP OP_HASH160 <20 bytes>
	script = append(script, pkHash...)
	script = append(script, 0x88, 0xac) // OP_EQUALVERIFY OP_CHECKSIG
	return script
}

// SignP2WPKHInput signs input at inputIndex of t with privKey, assuming a
// P2WPKH-style script and the input's confidential value commitment, and
// installs the resulting two-item witness stack (signature, pubkey).
func SignP2WPKHInput(t *Transaction, inputIndex int, privKey *btcec.PrivateKey, inputValue confidential.ValueCommitment) error {
	pubKey := privKey.PubKey()
	scriptCode := P2WPKHScriptCode(pubKey)

	sigHash := t.CalcWitnessSigHash(inputIndex, scriptCode, inputValue, SigHashAll)
	signature := secpecdsa.Sign(privKey, sigHash[:])

	sigWithHashType := append(signature.Serialize(), SigHashAll)
	t.TxIn[inputIndex].Witness = wire.TxWitness{
		sigWithHashType,
		pubKey.SerializeCompressed(),
	}
	return nil
}

// SignP2WPKHInputExplicit is SignP2WPKHInput for an input whose value is
// carried in the clear, used by the covenant package's own collateral
// and principal funding inputs.
func SignP2WPKHInputExplicit(t *Transaction, inputIndex int, privKey *btcec.PrivateKey, inputValue uint64) error {
	pubKey := privKey.PubKey()
	scriptCode := P2WPKHScriptCode(pubKey)

	sigHash := t.CalcWitnessSigHashExplicit(inputIndex, scriptCode, inputValue, SigHashAll)
	signature := secpecdsa.Sign(privKey, sigHash[:])

	sigWithHashType := append(signature.Serialize(), SigHashAll)
	t.TxIn[inputIndex].Witness = wire.TxWitness{
		sigWithHashType,
		pubKey.SerializeCompressed(),
	}
	return nil
}

// FindInput returns the index of the input spending outpoint, or -1.
func FindInput(t *Transaction, outpoint OutPoint) int {
	for i, in := range t.TxIn {
		if in.PreviousOutPoint == outpoint {
			return i
		}
	}
	return -1
}

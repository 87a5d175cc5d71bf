package swap

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/comit-network/waves/confidential"
	"github.com/comit-network/waves/tx"
)

// signP2WPKHInput signs input at inputIndex of t with privKey against its
// confidential value commitment.
func signP2WPKHInput(t *tx.Transaction, inputIndex int, privKey *btcec.PrivateKey, inputValue confidential.ValueCommitment) error {
	return tx.SignP2WPKHInput(t, inputIndex, privKey, inputValue)
}

// findInput returns the index of the input spending outpoint, or -1.
func findInput(t *tx.Transaction, outpoint tx.OutPoint) int {
	return tx.FindInput(t, outpoint)
}

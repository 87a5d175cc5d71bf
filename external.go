package waves

import (
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/comit-network/waves/confidential"
	"github.com/comit-network/waves/covenant"
	"github.com/comit-network/waves/tx"
)

// RandomSource is the CSPRNG every state transition that needs fresh
// blinding factors or nonces draws from -- the same shape as
// crypto/rand.Reader, so production code and tests can both hand in
// whatever io.Reader fits.
type RandomSource interface {
	io.Reader
}

// CoinSelector picks UTXOs covering amount of asset, the one piece of
// wallet logic this module never implements itself.
type CoinSelector interface {
	SelectCoins(amount uint64, asset confidential.AssetID) ([]covenant.FundingInput, error)
}

// Signer attaches a witness to the input at index, idempotent if the
// input already carries one -- mirroring lnwallet.Signer.SignOutputRaw's
// own already-signed short-circuit.
type Signer interface {
	SignInput(t *tx.Transaction, index int) error
}

// Broadcaster submits a fully signed transaction to the network and
// reports back its txid.
type Broadcaster interface {
	Broadcast(t *tx.Transaction) (chainhash.Hash, error)
}

// PendingLoan is the record an external LoanStore persists across a
// covenant handshake that outlives a single process -- the core itself
// never opens a database.
type PendingLoan struct {
	LoanTxid         chainhash.Hash
	CollateralScript []byte
	CollateralAmount uint64
	Timelock         uint32
}

// LoanStore persists and retrieves PendingLoan records on behalf of the
// covenant package; SQLite is one possible backend but never appears in
// this module.
type LoanStore interface {
	Save(loan PendingLoan) error
	Load(txid chainhash.Hash) (PendingLoan, error)
}

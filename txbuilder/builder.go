// Package txbuilder builds the confidential and explicit transaction
// outputs used by the swap and covenant state machines, wiring together
// package confidential's commitments and generators with the range and
// surjection proofs a recipient needs to unblind them.
package txbuilder

import (
	"errors"
	"io"

	"github.com/comit-network/waves/confidential"
	"github.com/comit-network/waves/tx"
)

// ErrOrderingViolation names a breach of the rule that exactly one output
// per transaction closes the blinding-factor balance. BuildLastConfidential
// does not detect such a breach, and no function in this package returns
// this error.
var ErrOrderingViolation = errors.New("txbuilder: at most one output may close the blinding factor balance")

// Opening is the recipient-facing disclosure of a confidential output: the
// asset and value plus the blinding factors needed to reproduce its
// commitments.
type Opening struct {
	Asset confidential.AssetID
	Value uint64
	ABF   confidential.Scalar
	VBF   confidential.Scalar
}

// Built pairs a constructed output with the sender's own record of its
// opening, since the sender must fold this contribution into any later
// call to BuildLastConfidential.
type Built struct {
	TxOut   *tx.ConfidentialTxOut
	Opening Opening
}

func (b Built) contribution() confidential.Contribution {
	return confidential.Contribution{Value: b.Opening.Value, ABF: b.Opening.ABF, VBF: b.Opening.VBF}
}

// Contributions extracts the (value, abf, vbf) tuples from a set of
// already-built outputs, for passing to BuildLastConfidential.
func Contributions(built []Built) []confidential.Contribution {
	out := make([]confidential.Contribution, len(built))
	for i, b := range built {
		out[i] = b.contribution()
	}
	return out
}

// BuildNonLastConfidential builds a confidential output with a freshly
// random value-blinding factor. Any output that is not the single output
// responsible for closing the transaction's blinding-factor balance must
// be built this way.
func BuildNonLastConfidential(rnd io.Reader, asset confidential.AssetID, value uint64, recipientScript []byte, recipientBlindingKey confidential.PubKey33) (Built, error) {
	vbf, err := confidential.RandomScalar(rnd)
	if err != nil {
		return Built{}, err
	}
	return buildConfidential(rnd, asset, value, recipientScript, recipientBlindingKey, vbf)
}

// BuildLastConfidential builds the single output whose value-blinding
// factor is computed, not randomly chosen, so that the sum of input and
// output Pedersen commitments balances. inputContributions and
// otherOutputContributions must together account for every other input
// and output of the transaction.
func BuildLastConfidential(rnd io.Reader, asset confidential.AssetID, value uint64, recipientScript []byte, recipientBlindingKey confidential.PubKey33, inputContributions, otherOutputContributions []confidential.Contribution) (Built, error) {
	abf, err := confidential.RandomScalar(rnd)
	if err != nil {
		return Built{}, err
	}
	vbf := confidential.FinalVBF(value, abf, inputContributions, otherOutputContributions)
	return buildConfidentialWithABF(rnd, asset, value, recipientScript, recipientBlindingKey, abf, vbf)
}

func buildConfidential(rnd io.Reader, asset confidential.AssetID, value uint64, recipientScript []byte, recipientBlindingKey confidential.PubKey33, vbf confidential.Scalar) (Built, error) {
	abf, err := confidential.RandomScalar(rnd)
	if err != nil {
		return Built{}, err
	}
	return buildConfidentialWithABF(rnd, asset, value, recipientScript, recipientBlindingKey, abf, vbf)
}

func buildConfidentialWithABF(rnd io.Reader, asset confidential.AssetID, value uint64, recipientScript []byte, recipientBlindingKey confidential.PubKey33, abf, vbf confidential.Scalar) (Built, error) {
	ag := confidential.MakeAssetGenerator(asset, abf)
	commitment, err := confidential.MakeValueCommitment(value, ag, vbf)
	if err != nil {
		return Built{}, err
	}
	nonce, sharedSecret, err := confidential.NewNonce(rnd, recipientBlindingKey)
	if err != nil {
		return Built{}, err
	}
	proof, err := buildRangeProof(asset, value, abf, vbf, sharedSecret)
	if err != nil {
		return Built{}, err
	}

	out := &tx.ConfidentialTxOut{
		Asset:      ag,
		Value:      commitment,
		Nonce:      nonce,
		PkScript:   recipientScript,
		RangeProof: proof,
		// SurjectionProof is filled in by AttachSurjectionProof once
		// every output in the transaction is known, since it must name
		// an input index alongside the asset generators.
	}
	return Built{TxOut: out, Opening: Opening{Asset: asset, Value: value, ABF: abf, VBF: vbf}}, nil
}

// AttachSurjectionProof binds out's hidden asset to inputAGs[inputIndex],
// recording the generator that proves its asset traces back to one of the
// transaction's inputs.
func AttachSurjectionProof(out *tx.ConfidentialTxOut, inputAGs []confidential.AssetGenerator, inputIndex int) {
	out.SurjectionProof = buildSurjectionProof(out.Asset, inputAGs, inputIndex)
}

// BuildFee builds the explicit miner-fee output required of every
// Elements-style transaction; fee outputs are never confidential.
func BuildFee(asset confidential.AssetID, value uint64) *tx.ExplicitTxOut {
	return &tx.ExplicitTxOut{Asset: asset, Value: value, PkScript: nil}
}

// Unblind recovers a confidential output's opening using the recipient's
// blinding private key, then checks the disclosed opening against the
// output's own commitments so a malicious sender cannot lie about what it
// paid.
func Unblind(out *tx.ConfidentialTxOut, blindingKey confidential.Scalar) (Opening, error) {
	sharedSecret, err := confidential.SharedSecretFromNonce(out.Nonce, blindingKey)
	if err != nil {
		return Opening{}, err
	}
	asset, value, abf, vbf, err := openRangeProof(out.RangeProof, sharedSecret)
	if err != nil {
		return Opening{}, err
	}

	wantAG := confidential.MakeAssetGenerator(asset, abf)
	if wantAG != out.Asset {
		return Opening{}, ErrAssetMismatch
	}
	if !confidential.VerifyValueCommitment(out.Value, value, out.Asset, vbf) {
		return Opening{}, ErrCommitmentMismatch
	}
	return Opening{Asset: asset, Value: value, ABF: abf, VBF: vbf}, nil
}

// ErrAssetMismatch is returned when a decrypted opening's asset generator
// does not match the output's published generator.
var ErrAssetMismatch = errors.New("txbuilder: opened asset does not match output generator")

// ErrCommitmentMismatch is returned when a decrypted opening does not
// reproduce the output's published value commitment.
var ErrCommitmentMismatch = errors.New("txbuilder: opened value does not match output commitment")

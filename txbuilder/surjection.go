package txbuilder

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"github.com/comit-network/waves/confidential"
)

// ErrSurjectionProof is returned when a surjection proof does not bind the
// output generator to any of the candidate input generators.
var ErrSurjectionProof = errors.New("txbuilder: surjection proof does not verify")

// buildSurjectionProof records which input asset generator the output's
// generator was derived from, so a verifier can confirm the output's
// hidden asset traces back to one of the transaction's input assets. The
// input index is stored in the clear as the proof's first byte, so the
// verifier also learns which input it is. This is a simplified binding
// rather than a full ring-signature surjection proof; see the design
// notes for why.
func buildSurjectionProof(outputAG confidential.AssetGenerator, inputAGs []confidential.AssetGenerator, inputIndex int) []byte {
	sum := bindingHash(outputAG, inputAGs[inputIndex])
	proof := make([]byte, 1+len(sum))
	proof[0] = byte(inputIndex)
	copy(proof[1:], sum)
	return proof
}

func verifySurjectionProof(proof []byte, outputAG confidential.AssetGenerator, inputAGs []confidential.AssetGenerator) error {
	if len(proof) != 1+sha256.Size {
		return ErrSurjectionProof
	}
	idx := int(proof[0])
	if idx < 0 || idx >= len(inputAGs) {
		return ErrSurjectionProof
	}
	want := bindingHash(outputAG, inputAGs[idx])
	if !bytes.Equal(want, proof[1:]) {
		return ErrSurjectionProof
	}
	return nil
}

func bindingHash(outputAG, inputAG confidential.AssetGenerator) []byte {
	h := sha256.New()
	h.Write(outputAG[:])
	h.Write(inputAG[:])
	sum := h.Sum(nil)
	return sum
}

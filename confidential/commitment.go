package confidential

import "math/big"

// ValueCommitment is a Pedersen commitment to an output value, C = v*AG +
// vbf*G, serialized in compressed point form. It reveals nothing about v
// without the pair (AG, vbf).
type ValueCommitment [33]byte

// MakeValueCommitment commits to value against asset generator ag under
// blinding factor vbf.
func MakeValueCommitment(value uint64, ag AssetGenerator, vbf Scalar) (ValueCommitment, error) {
	agPoint, err := ag.Point()
	if err != nil {
		return ValueCommitment{}, err
	}
	valueScalar := new(big.Int).SetUint64(value).Bytes()
	vTerm := agPoint.scalarMult(valueScalar)
	bTerm := scalarBaseMult(vbf[:])
	c := vTerm.add(bTerm)
	return ValueCommitment(c.Compressed()), nil
}

// VerifyValueCommitment reports whether commitment opens to (value, ag,
// vbf). It is used by a recipient after unblinding to check the sender's
// disclosure against the on-chain commitment.
func VerifyValueCommitment(commitment ValueCommitment, value uint64, ag AssetGenerator, vbf Scalar) bool {
	recomputed, err := MakeValueCommitment(value, ag, vbf)
	if err != nil {
		return false
	}
	return recomputed == commitment
}

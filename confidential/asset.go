package confidential

// AssetID identifies an asset type by its 32-byte tag, analogous to a
// genesis-pegged asset tag on an Elements-style ledger.
type AssetID [32]byte

// AssetGenerator is a blinded asset generator, AG = H(asset) + abf*G,
// serialized in compressed point form. Two outputs of the same asset with
// different blinding factors carry different, unlinkable generators.
type AssetGenerator [33]byte

// MakeAssetGenerator derives the blinded generator for asset under blinding
// factor abf.
func MakeAssetGenerator(asset AssetID, abf Scalar) AssetGenerator {
	h := hashToCurve(asset[:])
	blinded := h.add(scalarBaseMult(abf[:]))
	return AssetGenerator(blinded.Compressed())
}

// Point decompresses ag back onto the curve.
func (ag AssetGenerator) Point() (Point, error) {
	return DecompressPoint([33]byte(ag))
}

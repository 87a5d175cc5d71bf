package confidential

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomAsset(t *testing.T) AssetID {
	t.Helper()
	var a AssetID
	_, err := rand.Read(a[:])
	require.NoError(t, err)
	return a
}

func TestValueCommitmentRoundTrips(t *testing.T) {
	asset := randomAsset(t)
	abf, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	vbf, err := RandomScalar(rand.Reader)
	require.NoError(t, err)

	ag := MakeAssetGenerator(asset, abf)
	commitment, err := MakeValueCommitment(100000, ag, vbf)
	require.NoError(t, err)

	require.True(t, VerifyValueCommitment(commitment, 100000, ag, vbf))
	require.False(t, VerifyValueCommitment(commitment, 100001, ag, vbf))
}

func TestDistinctBlindingFactorsProduceDistinctGenerators(t *testing.T) {
	asset := randomAsset(t)
	abf1, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	abf2, err := RandomScalar(rand.Reader)
	require.NoError(t, err)

	ag1 := MakeAssetGenerator(asset, abf1)
	ag2 := MakeAssetGenerator(asset, abf2)
	require.NotEqual(t, ag1, ag2)
}

func TestNonceSharedSecretAgreesBothSides(t *testing.T) {
	blindingPriv, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	blindingPub := BlindingKeyPair(blindingPriv)

	nonce, senderSecret, err := NewNonce(rand.Reader, blindingPub)
	require.NoError(t, err)

	recipientSecret, err := SharedSecretFromNonce(nonce, blindingPriv)
	require.NoError(t, err)

	require.True(t, bytes.Equal(senderSecret[:], recipientSecret[:]))
}

func TestFinalVBFBalancesCommitments(t *testing.T) {
	asset := randomAsset(t)

	inputABF, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	inputVBF, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	changeABF, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	changeVBF, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	lastABF, err := RandomScalar(rand.Reader)
	require.NoError(t, err)

	const inputValue = uint64(500000)
	const changeValue = uint64(200000)
	const lastValue = inputValue - changeValue

	inputs := []Contribution{{Value: inputValue, ABF: inputABF, VBF: inputVBF}}
	otherOutputs := []Contribution{{Value: changeValue, ABF: changeABF, VBF: changeVBF}}

	lastVBF := FinalVBF(lastValue, lastABF, inputs, otherOutputs)

	inputAG := MakeAssetGenerator(asset, inputABF)
	changeAG := MakeAssetGenerator(asset, changeABF)
	lastAG := MakeAssetGenerator(asset, lastABF)

	inputC, err := MakeValueCommitment(inputValue, inputAG, inputVBF)
	require.NoError(t, err)
	changeC, err := MakeValueCommitment(changeValue, changeAG, changeVBF)
	require.NoError(t, err)
	lastC, err := MakeValueCommitment(lastValue, lastAG, lastVBF)
	require.NoError(t, err)

	inputPoint, err := decompressCommitment(inputC)
	require.NoError(t, err)
	changePoint, err := decompressCommitment(changeC)
	require.NoError(t, err)
	lastPoint, err := decompressCommitment(lastC)
	require.NoError(t, err)

	// inputs == change + last, as EC points.
	sumOutputs := changePoint.add(lastPoint)
	require.Equal(t, inputPoint.X, sumOutputs.X)
	require.Equal(t, inputPoint.Y, sumOutputs.Y)
}

func decompressCommitment(c ValueCommitment) (Point, error) {
	return DecompressPoint([33]byte(c))
}

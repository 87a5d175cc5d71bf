package swap

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/comit-network/waves/confidential"
	"github.com/comit-network/waves/protocol"
	"github.com/comit-network/waves/tx"
	"github.com/comit-network/waves/txbuilder"
	"github.com/stretchr/testify/require"
)

func randomAssetID(t *testing.T) confidential.AssetID {
	t.Helper()
	var a confidential.AssetID
	_, err := rand.Read(a[:])
	require.NoError(t, err)
	return a
}

func randomBlindingKeypair(t *testing.T) (confidential.Scalar, confidential.PubKey33) {
	t.Helper()
	priv, err := confidential.RandomScalar(rand.Reader)
	require.NoError(t, err)
	return priv, confidential.BlindingKeyPair(priv)
}

func randomSigningKey(t *testing.T) *btcec.PrivateKey {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv
}

func fundingOutput(t *testing.T, asset confidential.AssetID, value uint64, script []byte, blindingPub confidential.PubKey33) *tx.ConfidentialTxOut {
	t.Helper()
	built, err := txbuilder.BuildNonLastConfidential(rand.Reader, asset, value, script, blindingPub)
	require.NoError(t, err)
	return built.TxOut
}

// fixture wires up a funded Alice0 and Bob0 ready to run the handshake:
// Alice puts up assetAlice, wants redeemAmountAlice of assetBob back plus
// change, and Bob puts up assetBob expecting redeemAmountBob of
// assetAlice in return.
type fixture struct {
	assetAlice confidential.AssetID
	assetBob   confidential.AssetID

	aliceKey         *btcec.PrivateKey
	aliceBlindingKey confidential.Scalar
	aliceInput       tx.OutPoint
	aliceInputTxOut  *tx.ConfidentialTxOut

	aliceRedeemScript      []byte
	aliceRedeemBlindingKey confidential.Scalar
	aliceChangeScript      []byte
	aliceChangeBlindingKey confidential.Scalar

	bobKey         *btcec.PrivateKey
	bobBlindingKey confidential.Scalar
	bobInput       tx.OutPoint
	bobInputTxOut  *tx.ConfidentialTxOut

	bobRedeemScript      []byte
	bobRedeemBlindingKey confidential.Scalar
	bobChangeScript      []byte
	bobChangeBlindingKey confidential.Scalar

	redeemAmountAlice uint64
	redeemAmountBob   uint64
	fee               uint64
	aliceFunding      uint64
	bobFunding        uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		assetAlice:        randomAssetID(t),
		assetBob:          randomAssetID(t),
		redeemAmountAlice: 30000,
		redeemAmountBob:   50000,
		fee:               1000,
		aliceFunding:      100000,
		bobFunding:        100000,
	}

	f.aliceKey = randomSigningKey(t)
	f.aliceBlindingKey, _ = randomBlindingKeypair(t)
	f.aliceInput = tx.OutPoint{Index: 0}
	_, err := rand.Read(f.aliceInput.Hash[:])
	require.NoError(t, err)
	aliceScript := tx.P2WPKHScriptCode(f.aliceKey.PubKey())
	f.aliceInputTxOut = fundingOutput(t, f.assetAlice, f.aliceFunding, aliceScript, confidential.BlindingKeyPair(f.aliceBlindingKey))

	f.aliceRedeemBlindingKey, _ = randomBlindingKeypair(t)
	f.aliceRedeemScript = []byte{0x00, 0x01}
	f.aliceChangeBlindingKey, _ = randomBlindingKeypair(t)
	f.aliceChangeScript = []byte{0x00, 0x02}

	f.bobKey = randomSigningKey(t)
	f.bobBlindingKey, _ = randomBlindingKeypair(t)
	f.bobInput = tx.OutPoint{Index: 1}
	_, err = rand.Read(f.bobInput.Hash[:])
	require.NoError(t, err)
	bobScript := tx.P2WPKHScriptCode(f.bobKey.PubKey())
	f.bobInputTxOut = fundingOutput(t, f.assetBob, f.bobFunding, bobScript, confidential.BlindingKeyPair(f.bobBlindingKey))

	f.bobRedeemBlindingKey, _ = randomBlindingKeypair(t)
	f.bobRedeemScript = []byte{0x00, 0x03}
	f.bobChangeBlindingKey, _ = randomBlindingKeypair(t)
	f.bobChangeScript = []byte{0x00, 0x04}

	return f
}

func (f *fixture) alice() *Alice0 {
	return &Alice0{
		RedeemAmountAlice: f.redeemAmountAlice,
		RedeemAmountBob:   f.redeemAmountBob,
		Input:             f.aliceInput,
		InputTxOut:        f.aliceInputTxOut,
		InputKey:          f.aliceKey,
		InputBlindingKey:  f.aliceBlindingKey,
		AssetBob:          f.assetBob,
		RedeemScript:      f.aliceRedeemScript,
		RedeemBlindingKey: f.aliceRedeemBlindingKey,
		ChangeScript:      f.aliceChangeScript,
		ChangeBlindingKey: f.aliceChangeBlindingKey,
		Fee:               f.fee,
	}
}

func (f *fixture) bob() *Bob0 {
	return &Bob0{
		RedeemAmountAlice: f.redeemAmountAlice,
		RedeemAmountBob:   f.redeemAmountBob,
		Input:             f.bobInput,
		InputTxOut:        f.bobInputTxOut,
		InputKey:          f.bobKey,
		InputBlindingKey:  f.bobBlindingKey,
		AssetAlice:        f.assetAlice,
		RedeemScript:      f.bobRedeemScript,
		RedeemBlindingKey: f.bobRedeemBlindingKey,
		ChangeScript:      f.bobChangeScript,
		ChangeBlindingKey: f.bobChangeBlindingKey,
	}
}

func TestHandshakeProducesSignedTransaction(t *testing.T) {
	f := newFixture(t)
	alice := f.alice()
	bob := f.bob()

	msg0 := alice.Compose()

	bob1, err := bob.Interpret(rand.Reader, msg0)
	require.NoError(t, err)
	msg1, err := bob1.Compose()
	require.NoError(t, err)

	signed, err := alice.Interpret(msg1)
	require.NoError(t, err)

	require.Len(t, signed.TxIn, 2)
	require.Len(t, signed.TxOut, 5)
	for _, in := range signed.TxIn {
		require.Len(t, in.Witness, 2)
	}
}

func TestMessage0RoundTripsOverWire(t *testing.T) {
	f := newFixture(t)
	msg0 := f.alice().Compose()

	var buf bytes.Buffer
	_, err := protocol.WriteMessage(&buf, msg0)
	require.NoError(t, err)

	msgType, err := protocol.ReadMessageType(&buf)
	require.NoError(t, err)
	require.Equal(t, protocol.MsgSwapOffer, msgType)

	var decoded Message0
	err = protocol.ReadMessage(&buf, &decoded)
	require.NoError(t, err)

	require.Equal(t, msg0.Input, decoded.Input)
	require.Equal(t, msg0.Fee, decoded.Fee)
	require.Equal(t, msg0.InputTxOut.Asset, decoded.InputTxOut.Asset)
	require.Equal(t, msg0.RedeemRecipient, decoded.RedeemRecipient)
	require.Equal(t, msg0.ChangeRecipient, decoded.ChangeRecipient)
}

func TestMessage1RoundTripsOverWire(t *testing.T) {
	f := newFixture(t)
	alice := f.alice()
	bob := f.bob()

	bob1, err := bob.Interpret(rand.Reader, alice.Compose())
	require.NoError(t, err)
	msg1, err := bob1.Compose()
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = protocol.WriteMessage(&buf, msg1)
	require.NoError(t, err)

	msgType, err := protocol.ReadMessageType(&buf)
	require.NoError(t, err)
	require.Equal(t, protocol.MsgSwapAcceptance, msgType)

	var decoded Message1
	err = protocol.ReadMessage(&buf, &decoded)
	require.NoError(t, err)

	require.Equal(t, len(msg1.Transaction.TxOut), len(decoded.Transaction.TxOut))
	require.Equal(t, msg1.Transaction.TxIn[1].Witness, decoded.Transaction.TxIn[1].Witness)
}

func TestBobRejectsWrongAsset(t *testing.T) {
	f := newFixture(t)
	bob := f.bob()
	bob.AssetAlice = randomAssetID(t)

	_, err := bob.Interpret(rand.Reader, f.alice().Compose())
	require.ErrorIs(t, err, ErrWrongAsset)
}

func TestBobRejectsInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	f.redeemAmountBob = f.aliceFunding + 1

	_, err := f.bob().Interpret(rand.Reader, f.alice().Compose())
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestAliceRejectsTamperedRedeemScript(t *testing.T) {
	f := newFixture(t)
	alice := f.alice()
	bob := f.bob()

	bob1, err := bob.Interpret(rand.Reader, alice.Compose())
	require.NoError(t, err)

	for _, out := range bob1.Transaction.TxOut {
		confOut, ok := out.(*tx.ConfidentialTxOut)
		if ok && string(confOut.PkScript) == string(f.aliceRedeemScript) {
			confOut.PkScript = []byte{0xff, 0xff}
		}
	}

	msg1, err := bob1.Compose()
	require.NoError(t, err)

	_, err = alice.Interpret(msg1)
	require.ErrorIs(t, err, ErrWrongRedeem)
}

func TestAliceRejectsTamperedChangeScript(t *testing.T) {
	f := newFixture(t)
	alice := f.alice()
	bob := f.bob()

	bob1, err := bob.Interpret(rand.Reader, alice.Compose())
	require.NoError(t, err)

	for _, out := range bob1.Transaction.TxOut {
		confOut, ok := out.(*tx.ConfidentialTxOut)
		if ok && string(confOut.PkScript) == string(f.aliceChangeScript) {
			confOut.PkScript = []byte{0xfe, 0xfe}
		}
	}

	msg1, err := bob1.Compose()
	require.NoError(t, err)

	_, err = alice.Interpret(msg1)
	require.ErrorIs(t, err, ErrWrongChange)
}

func TestAliceRejectsMissingOwnInput(t *testing.T) {
	f := newFixture(t)
	alice := f.alice()
	bob := f.bob()

	bob1, err := bob.Interpret(rand.Reader, alice.Compose())
	require.NoError(t, err)
	for _, in := range bob1.Transaction.TxIn {
		if in.PreviousOutPoint == f.aliceInput {
			in.PreviousOutPoint.Index = 9999
		}
	}

	msg1, err := bob1.Compose()
	require.NoError(t, err)

	_, err = alice.Interpret(msg1)
	require.ErrorIs(t, err, ErrInputNotFound)
}

func TestUnblindFailureFromWrongBlindingKey(t *testing.T) {
	f := newFixture(t)
	bob := f.bob()
	bob.InputBlindingKey, _ = randomBlindingKeypair(t)

	_, err := bob.Interpret(rand.Reader, f.alice().Compose())
	require.ErrorIs(t, err, ErrUnblindFailure)
}

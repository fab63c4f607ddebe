package musig2

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"
)

func TestAdaptorRoundTrip(t *testing.T) {
	sk1 := privKey(t, 1)
	sk2 := privKey(t, 2)

	kp1, kp2 := NewKeypair(sk1), NewKeypair(sk2)

	_, cache, err := AggregateKeys([]*btcec.PublicKey{kp1.PubKey, kp2.PubKey})
	require.NoError(t, err)

	var msg [32]byte
	msg[0] = 0x42

	var secretT [32]byte
	secretT[31] = 0x07

	var tScalar btcec.ModNScalar
	tScalar.SetBytes(&secretT)

	var adaptorJ btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&tScalar, &adaptorJ)
	adaptorJ.ToAffine()
	adaptorPoint := btcec.NewPublicKey(&adaptorJ.X, &adaptorJ.Y)

	var sid1, sid2 [32]byte
	sid1[0], sid2[0] = 1, 2

	secNonce1, pubNonce1, err := GenNonces(sid1, WithNonceKeyAggCache(cache))
	require.NoError(t, err)
	secNonce2, pubNonce2, err := GenNonces(sid2, WithNonceKeyAggCache(cache))
	require.NoError(t, err)

	aggNonce, err := AggregateNonces([]*PubNonce{pubNonce1, pubNonce2})
	require.NoError(t, err)

	session, err := NonceProcess(
		aggNonce, msg, cache, WithAdaptorPoint(adaptorPoint),
	)
	require.NoError(t, err)

	sig1, err := Sign(secNonce1, kp1, cache, session)
	require.NoError(t, err)
	sig2, err := Sign(secNonce2, kp2, cache, session)
	require.NoError(t, err)

	preSig := PartialSigAgg(session, []*PartialSig{sig1, sig2})

	combinedX := cache.CombinedKey()
	pk, err := schnorr.ParsePubKey(combinedX[:])
	require.NoError(t, err)

	// The pre-signature must NOT be a valid signature on its own.
	preParsed, err := schnorr.ParseSignature(preSig[:])
	require.NoError(t, err)
	require.False(t, preParsed.Verify(msg[:], pk))

	parity := session.NonceParity()

	finalSig, err := Adapt(preSig, secretT, parity)
	require.NoError(t, err)

	finalParsed, err := schnorr.ParseSignature(finalSig[:])
	require.NoError(t, err)
	require.True(t, finalParsed.Verify(msg[:], pk))

	extracted, err := ExtractAdaptor(finalSig, preSig, parity)
	require.NoError(t, err)
	require.Equal(t, secretT, extracted)
}

func TestExtractAdaptorRejectsOverflow(t *testing.T) {
	overflow := [64]byte{}
	for i := 32; i < 64; i++ {
		overflow[i] = 0xff
	}

	var zero [64]byte

	_, err := ExtractAdaptor(overflow, zero, false)
	require.ErrorIs(t, err, ErrScalarOverflow)
}

package musig2

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"
)

func TestContextTwoOfTwoCeremony(t *testing.T) {
	sk1 := privKey(t, 1)
	sk2 := privKey(t, 2)

	signers := []*btcec.PublicKey{xOnly(t, sk1), xOnly(t, sk2)}

	ctx1, err := NewContext(sk1, signers, true)
	require.NoError(t, err)

	ctx2, err := NewContext(sk2, signers, true)
	require.NoError(t, err)

	require.Equal(t, ctx1.CombinedKey(), ctx2.CombinedKey())

	session1, err := ctx1.NewSigningSession()
	require.NoError(t, err)

	session2, err := ctx2.NewSigningSession()
	require.NoError(t, err)

	done, err := session1.RegisterPubNonce(session2.PublicNonce())
	require.NoError(t, err)
	require.True(t, done)

	done, err = session2.RegisterPubNonce(session1.PublicNonce())
	require.NoError(t, err)
	require.True(t, done)

	var msg [32]byte
	msg[0] = 0x11

	sig1, err := session1.Sign(msg)
	require.NoError(t, err)

	sig2, err := session2.Sign(msg)
	require.NoError(t, err)

	done, err = session1.CombineSig(sig2)
	require.NoError(t, err)
	require.True(t, done)

	done, err = session2.CombineSig(sig1)
	require.NoError(t, err)
	require.True(t, done)

	require.Equal(t, session1.FinalSig(), session2.FinalSig())

	combinedX := ctx1.CombinedKey()
	pk, err := schnorr.ParsePubKey(combinedX[:])
	require.NoError(t, err)

	finalSig := session1.FinalSig()
	sig, err := schnorr.ParseSignature(finalSig[:])
	require.NoError(t, err)

	require.True(t, sig.Verify(msg[:], pk))
}

func TestNewContextRejectsSignerNotInSet(t *testing.T) {
	sk1 := privKey(t, 1)
	sk2 := privKey(t, 2)
	sk3 := privKey(t, 3)

	signers := []*btcec.PublicKey{xOnly(t, sk1), xOnly(t, sk2)}

	_, err := NewContext(sk3, signers, true)
	require.ErrorIs(t, err, ErrSignerNotInKeySet)
}

func TestSigningSessionRejectsDoubleSign(t *testing.T) {
	sk1 := privKey(t, 1)
	sk2 := privKey(t, 2)

	signers := []*btcec.PublicKey{xOnly(t, sk1), xOnly(t, sk2)}

	ctx1, err := NewContext(sk1, signers, true)
	require.NoError(t, err)

	session1, err := ctx1.NewSigningSession()
	require.NoError(t, err)

	var pubNonce2 PubNonce
	{
		ctx2, err := NewContext(sk2, signers, true)
		require.NoError(t, err)

		session2, err := ctx2.NewSigningSession()
		require.NoError(t, err)

		pubNonce2 = *session2.PublicNonce()
	}

	_, err = session1.RegisterPubNonce(&pubNonce2)
	require.NoError(t, err)

	var msg [32]byte
	_, err = session1.Sign(msg)
	require.NoError(t, err)

	_, err = session1.Sign(msg)
	require.ErrorIs(t, err, ErrSigningContextReuse)
}

func TestSigningSessionRejectsSignBeforeNonces(t *testing.T) {
	sk1 := privKey(t, 1)
	sk2 := privKey(t, 2)

	signers := []*btcec.PublicKey{xOnly(t, sk1), xOnly(t, sk2)}

	ctx1, err := NewContext(sk1, signers, true)
	require.NoError(t, err)

	session1, err := ctx1.NewSigningSession()
	require.NoError(t, err)

	var msg [32]byte
	_, err = session1.Sign(msg)
	require.ErrorIs(t, err, ErrCombinedNonceUnavailable)
}

package musig2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenNoncesDeterministic(t *testing.T) {
	var sid [32]byte
	sid[0] = 0x42

	_, pub1, err := GenNonces(sid)
	require.NoError(t, err)

	_, pub2, err := GenNonces(sid)
	require.NoError(t, err)

	require.Equal(t, pub1.Serialize(), pub2.Serialize())
}

func TestGenNoncesVariesWithSessionID(t *testing.T) {
	var sidA, sidB [32]byte
	sidA[0], sidB[0] = 0x01, 0x02

	_, pubA, err := GenNonces(sidA)
	require.NoError(t, err)

	_, pubB, err := GenNonces(sidB)
	require.NoError(t, err)

	require.NotEqual(t, pubA.Serialize(), pubB.Serialize())
}

func TestAggregateNoncesOrderIndependent(t *testing.T) {
	var sid1, sid2, sid3 [32]byte
	sid1[0], sid2[0], sid3[0] = 1, 2, 3

	_, pub1, err := GenNonces(sid1)
	require.NoError(t, err)
	_, pub2, err := GenNonces(sid2)
	require.NoError(t, err)
	_, pub3, err := GenNonces(sid3)
	require.NoError(t, err)

	aggA, err := AggregateNonces([]*PubNonce{pub1, pub2, pub3})
	require.NoError(t, err)

	aggB, err := AggregateNonces([]*PubNonce{pub3, pub1, pub2})
	require.NoError(t, err)

	require.Equal(t, aggA.Serialize(), aggB.Serialize())
}

func TestAggregateNoncesEmptySet(t *testing.T) {
	_, err := AggregateNonces(nil)
	require.ErrorIs(t, err, ErrNoPubNonces)
}

func TestPubNonceRoundTrip(t *testing.T) {
	var sid [32]byte
	sid[0] = 7

	_, pub, err := GenNonces(sid)
	require.NoError(t, err)

	data := pub.Serialize()

	parsed, err := ParsePubNonce(data)
	require.NoError(t, err)
	require.Equal(t, data, parsed.Serialize())
}

func TestParsePubNonceRejectsGarbage(t *testing.T) {
	var garbage [PubNonceSize]byte
	for i := range garbage {
		garbage[i] = 0xff
	}

	_, err := ParsePubNonce(garbage)
	require.ErrorIs(t, err, ErrInvalidPubNonce)
}

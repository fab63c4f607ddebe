package musig2

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func privKey(t *testing.T, b byte) *btcec.PrivateKey {
	t.Helper()

	var buf [32]byte
	buf[31] = b

	return btcec.PrivKeyFromBytes(buf[:])
}

func xOnly(t *testing.T, sk *btcec.PrivateKey) *btcec.PublicKey {
	t.Helper()
	return NewKeypair(sk).PubKey
}

func TestAggregateKeysOrderDependence(t *testing.T) {
	p1 := xOnly(t, privKey(t, 1))
	p2 := xOnly(t, privKey(t, 2))

	aggA, _, err := AggregateKeys([]*btcec.PublicKey{p1, p2})
	require.NoError(t, err)

	aggB, _, err := AggregateKeys([]*btcec.PublicKey{p2, p1})
	require.NoError(t, err)

	require.NotEqual(t, aggA, aggB, "swapping signer order must change the aggregate key")
}

func TestAggregateKeysEmptySet(t *testing.T) {
	_, _, err := AggregateKeys(nil)
	require.ErrorIs(t, err, ErrInvalidNumberOfKeys)
}

func TestAggregateKeysDuplicateInputs(t *testing.T) {
	p1 := xOnly(t, privKey(t, 1))

	agg, cache, err := AggregateKeys([]*btcec.PublicKey{p1, p1, p1})
	require.NoError(t, err)
	require.False(t, cache.hasSecondPK)
	require.NotZero(t, agg)
}

func TestSortKeysIsDeterministic(t *testing.T) {
	p1 := xOnly(t, privKey(t, 1))
	p2 := xOnly(t, privKey(t, 2))
	p3 := xOnly(t, privKey(t, 3))

	sortedA := SortKeys([]*btcec.PublicKey{p3, p1, p2})
	sortedB := SortKeys([]*btcec.PublicKey{p2, p3, p1})

	aggA, _, err := AggregateKeys(sortedA)
	require.NoError(t, err)

	aggB, _, err := AggregateKeys(sortedB)
	require.NoError(t, err)

	require.Equal(t, aggA, aggB)
}

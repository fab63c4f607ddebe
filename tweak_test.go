package musig2

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func TestTweakOnce(t *testing.T) {
	p1 := xOnly(t, privKey(t, 1))
	p2 := xOnly(t, privKey(t, 2))

	_, cache, err := AggregateKeys([]*btcec.PublicKey{p1, p2})
	require.NoError(t, err)

	var tweak [32]byte
	tweak[31] = 0x0a

	tweakedX, err := cache.Tweak(tweak)
	require.NoError(t, err)
	require.NotZero(t, tweakedX)
	require.True(t, cache.isTweaked)

	_, err = cache.Tweak(tweak)
	require.ErrorIs(t, err, ErrAlreadyTweaked)
}

func TestTweakZeroRejected(t *testing.T) {
	p1 := xOnly(t, privKey(t, 1))

	_, cache, err := AggregateKeys([]*btcec.PublicKey{p1})
	require.NoError(t, err)

	var zero [32]byte
	_, err = cache.Tweak(zero)
	require.ErrorIs(t, err, ErrInvalidTweak)
}

func TestTweakOverflowRejected(t *testing.T) {
	p1 := xOnly(t, privKey(t, 1))

	_, cache, err := AggregateKeys([]*btcec.PublicKey{p1})
	require.NoError(t, err)

	// 2^256-1 in big-endian, which is above the curve order n; n itself and
	// anything above it must be rejected as a tweak scalar.
	overflow := [32]byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}

	_, err = cache.Tweak(overflow)
	require.ErrorIs(t, err, ErrInvalidTweak)
}

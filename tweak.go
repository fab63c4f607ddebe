// Copyright (c) 2013-2022 The btcsuite developers

package musig2

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// Tweak implements spec.md §4.2 pubkey_tweak_add: it applies one BIP-341
// style additive tweak to the cache's aggregate key, normalizing the
// pre-tweak aggregate to even y before adding t*G.
//
// A KeyAggCache can be tweaked at most once; a second call always fails
// with ErrAlreadyTweaked. It also fails if t is zero, t >= the curve
// order, or the resulting point would be the point at infinity (only
// possible if t is exactly the negated discrete log of |cache.pk|).
//
// On success it returns the new x-only aggregate key and records
// cache.tweak and cache.isTweaked; cache.internalKeyParity is left
// untouched, since it records the pre-tweak parity and is still needed by
// Sign and PartialSigVerify.
func (c *KeyAggCache) Tweak(t [32]byte) ([32]byte, error) {
	var outX [32]byte

	if c.isTweaked {
		return outX, ErrAlreadyTweaked
	}

	var tScalar btcec.ModNScalar
	overflow := tScalar.SetBytes(&t)
	if overflow != 0 || tScalar.IsZero() {
		return outX, ErrInvalidTweak
	}

	evenPK := normalizeEvenY(c.pk)

	var evenJ btcec.JacobianPoint
	evenPK.AsJacobian(&evenJ)

	var tweakJ btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&tScalar, &tweakJ)

	var sumJ btcec.JacobianPoint
	btcec.AddNonConst(&evenJ, &tweakJ, &sumJ)
	sumJ.ToAffine()

	if isJacobianInfinity(&sumJ) {
		zeroScalar(&tScalar)
		return outX, ErrTweakedKeyIsInfinity
	}

	newPK := btcec.NewPublicKey(&sumJ.X, &sumJ.Y)

	c.pk = newPK
	c.isTweaked = true
	c.tweak = tScalar

	copy(outX[:], schnorr.SerializePubKey(newPK))

	return outX, nil
}

// Copyright (c) 2013-2022 The btcsuite developers

package musig2

import "errors"

// Sentinel errors returned by this package. Each corresponds to one of the
// error kinds in the spec: InvalidArgument, CryptographicFailure, or
// ProtocolMisuse. Callers should compare with errors.Is.
var (
	// ErrInvalidNumberOfKeys is returned when key aggregation is
	// attempted with zero public keys.
	ErrInvalidNumberOfKeys = errors.New("musig2: must supply at least " +
		"one public key to aggregate")

	// ErrInvalidPubKey is returned when a 32-byte x-only public key
	// fails to parse to a valid curve point.
	ErrInvalidPubKey = errors.New("musig2: invalid x-only public key")

	// ErrAggregateKeyIsInfinity is returned by AggregateKeys if the
	// weighted sum of the input keys is the point at infinity.
	ErrAggregateKeyIsInfinity = errors.New("musig2: aggregate public " +
		"key is the point at infinity")

	// ErrAlreadyTweaked is returned when Tweak is called on a
	// KeyAggCache that has already been tweaked once.
	ErrAlreadyTweaked = errors.New("musig2: key aggregation cache has " +
		"already been tweaked")

	// ErrInvalidTweak is returned when a tweak scalar is zero or
	// exceeds the curve order.
	ErrInvalidTweak = errors.New("musig2: tweak is zero or not a " +
		"valid scalar")

	// ErrTweakedKeyIsInfinity is returned when a tweak cancels out the
	// aggregate key exactly, leaving the point at infinity.
	ErrTweakedKeyIsInfinity = errors.New("musig2: tweaked public key " +
		"is the point at infinity")

	// ErrNonceGenFailed is returned on the (cryptographically
	// negligible) chance that nonce generation produces a zero scalar.
	ErrNonceGenFailed = errors.New("musig2: nonce generation produced " +
		"a zero scalar")

	// ErrInvalidPubNonce is returned when a serialized public nonce
	// fails to parse, encodes a point at infinity, or is not in the
	// prime-order subgroup.
	ErrInvalidPubNonce = errors.New("musig2: invalid public nonce")

	// ErrNoPubNonces is returned when nonce aggregation is attempted
	// with an empty set of public nonces.
	ErrNoPubNonces = errors.New("musig2: must supply at least one " +
		"public nonce to aggregate")

	// ErrAggNonceIsInfinity is returned when the coordinate-wise sum of
	// the public nonces collapses to infinity in either coordinate.
	ErrAggNonceIsInfinity = errors.New("musig2: aggregate nonce is the " +
		"point at infinity")

	// ErrSecNonceReused is returned when Sign is called with a
	// SecNonce that has already been consumed by a prior Sign call (or
	// was never initialized).
	ErrSecNonceReused = errors.New("musig2: secret nonce was already " +
		"used to sign, or was never generated")

	// ErrScalarOverflow is returned when a 32-byte big-endian encoding
	// parses to an integer greater than or equal to the curve order.
	ErrScalarOverflow = errors.New("musig2: scalar value overflows " +
		"the curve order")

	// ErrSignerNotInKeySet is returned when NewContext is asked to
	// sign with a key that is not part of the supplied signer set.
	ErrSignerNotInKeySet = errors.New("musig2: signing key is not in " +
		"the set of signers")

	// ErrCombinedNonceUnavailable is returned when Sign is called on a
	// SigningSession before all signers' public nonces have been
	// registered.
	ErrCombinedNonceUnavailable = errors.New("musig2: combined nonce " +
		"not yet available, missing pubnonces")

	// ErrSigningContextReuse is returned when Sign is called more than
	// once on the same SigningSession.
	ErrSigningContextReuse = errors.New("musig2: session has already " +
		"produced a partial signature")

	// ErrAlreadyHaveAllNonces is returned when RegisterPubNonce is
	// called more times than there are signers.
	ErrAlreadyHaveAllNonces = errors.New("musig2: already have a " +
		"pubnonce from every signer")

	// ErrAlreadyHaveAllSigs is returned when CombineSig is called more
	// times than there are signers.
	ErrAlreadyHaveAllSigs = errors.New("musig2: already have a " +
		"partial signature from every signer")

	// ErrFinalSigInvalid is returned by SigningSession.CombineSig if the
	// aggregated signature fails BIP-340 verification under the
	// combined key. Only meaningful for non-adaptor sessions.
	ErrFinalSigInvalid = errors.New("musig2: combined signature does " +
		"not verify under the aggregate key")
)

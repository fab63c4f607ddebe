// Copyright (c) 2013-2022 The btcsuite developers

package musig2

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

var (
	// keyAggListTag is the tagged-hash tag used to fingerprint the
	// ordered list of public keys being aggregated.
	keyAggListTag = []byte("KeyAgg list")

	// keyAggCoeffTag is the tagged-hash tag used to derive each
	// signer's KeyAgg coefficient.
	keyAggCoeffTag = []byte("KeyAgg coefficient")
)

// KeyAggCache carries the per-session state produced by AggregateKeys: the
// pre-tweak aggregate point, enough information to recompute any signer's
// KeyAgg coefficient, and (once tweaked) the additive tweak and the parity
// bookkeeping needed to sign correctly for an x-only aggregate key.
//
// A KeyAggCache is plain data and safe to copy; it carries no secret
// material. It is a native typed stand-in for the 165-byte opaque
// secp256k1_musig_keyagg_cache blob — see spec.md §3 and §9.
type KeyAggCache struct {
	// pk is the pre-tweak aggregate point P', in its natural (possibly
	// odd-y) affine form.
	pk *btcec.PublicKey

	// pkHash is the tagged hash of the ordered, serialized input keys.
	pkHash [32]byte

	// secondPKX is the x-only serialization of the first input key that
	// differs from the first, or the all-zero sentinel if every input
	// key is equal.
	secondPKX [32]byte

	// hasSecondPK is false when secondPKX is the all-zero sentinel.
	hasSecondPK bool

	// isTweaked is true once Tweak has been called successfully.
	isTweaked bool

	// tweak is the scalar added to the aggregate key. Zero until
	// isTweaked.
	tweak btcec.ModNScalar

	// internalKeyParity records whether the pre-tweak aggregate P' had
	// odd y. This is fixed at aggregation time and never recomputed,
	// even after tweaking.
	internalKeyParity bool
}

// sortableKeys implements sort.Interface over BIP-340 x-only pubkeys, sorted
// lexicographically over their x-only serialization.
type sortableKeys []*btcec.PublicKey

func (s sortableKeys) Less(i, j int) bool {
	keyIBytes := schnorr.SerializePubKey(s[i])
	keyJBytes := schnorr.SerializePubKey(s[j])

	return bytes.Compare(keyIBytes, keyJBytes) == -1
}

func (s sortableKeys) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s sortableKeys) Len() int      { return len(s) }

// SortKeys returns a new slice holding the given x-only public keys sorted
// in ascending lexicographical order of their serialized form. Key
// aggregation order is significant (spec.md §4.1); callers that want a
// multiset-only aggregate key, independent of the order they happened to
// collect pubkeys in, must call SortKeys before AggregateKeys.
func SortKeys(keys []*btcec.PublicKey) []*btcec.PublicKey {
	keySet := make(sortableKeys, len(keys))
	copy(keySet, keys)

	if sort.IsSorted(keySet) {
		return keySet
	}

	sort.Sort(keySet)
	return keySet
}

// keyHashFingerprint computes H(tag="KeyAgg list", ser(P_0) || ser(P_1) || ...).
func keyHashFingerprint(keys []*btcec.PublicKey) [32]byte {
	keyBytes := make([]byte, 0, 32*len(keys))
	for _, key := range keys {
		keyBytes = append(keyBytes, schnorr.SerializePubKey(key)...)
	}

	return *chainhash.TaggedHash(keyAggListTag, keyBytes)
}

// secondUniqueKeyX returns the x-only serialization of the first key in the
// set that differs from the first key, and true if such a key exists. If
// every key is equal to the first, it returns the all-zero sentinel and
// false.
func secondUniqueKeyX(keys []*btcec.PublicKey) (x [32]byte, ok bool) {
	first := schnorr.SerializePubKey(keys[0])
	for _, key := range keys[1:] {
		keyX := schnorr.SerializePubKey(key)
		if !bytes.Equal(keyX, first) {
			copy(x[:], keyX)
			return x, true
		}
	}

	return x, false
}

// keyAggCoefficient computes the KeyAgg coefficient mu_i for a signer whose
// x-only pubkey is keyX, given the aggregation's key-hash fingerprint and
// second-unique-key marker. Signers whose key matches secondPKX get a free
// coefficient of 1; all others hash.
//
// Note: the degenerate all-keys-equal case (hasSecondPK == false) assigns
// the same hash-derived coefficient to every signer, rather than special
// casing a positional "second signer" — see DESIGN.md for why: Sign and
// PartialSigVerify only ever see a pubkey and this cache, never the
// signer's original index in the aggregation list, so any index-dependent
// branch here would be unrecoverable at signing time.
func keyAggCoefficient(
	pkHash [32]byte, secondPKX [32]byte, hasSecondPK bool,
	keyX [32]byte,
) *btcec.ModNScalar {

	var mu btcec.ModNScalar

	if hasSecondPK && bytes.Equal(keyX[:], secondPKX[:]) {
		return mu.SetInt(1)
	}

	var coefficientInput [64]byte
	copy(coefficientInput[:32], pkHash[:])
	copy(coefficientInput[32:], keyX[:])

	muHash := chainhash.TaggedHash(keyAggCoeffTag, coefficientInput[:])
	mu.SetByteSlice(muHash[:])

	return &mu
}

// AggregateKeys implements spec.md §4.1 pubkey_agg: it aggregates an
// ordered list of x-only public keys into a single aggregate x-only key
// and a KeyAggCache that must be passed to every later operation in the
// pipeline (tweaking, nonce generation, signing, verification).
//
// Different orderings of the same multiset of keys produce different
// aggregate keys; call SortKeys first if order-independence is required.
func AggregateKeys(keys []*btcec.PublicKey) ([32]byte, *KeyAggCache, error) {
	var aggX [32]byte

	if len(keys) == 0 {
		return aggX, nil, ErrInvalidNumberOfKeys
	}

	pkHash := keyHashFingerprint(keys)
	secondPKX, hasSecondPK := secondUniqueKeyX(keys)

	var finalKeyJ btcec.JacobianPoint
	for _, key := range keys {
		var keyJ btcec.JacobianPoint
		key.AsJacobian(&keyJ)

		keyX := [32]byte{}
		copy(keyX[:], schnorr.SerializePubKey(key))

		mu := keyAggCoefficient(pkHash, secondPKX, hasSecondPK, keyX)

		var tweakedKeyJ btcec.JacobianPoint
		btcec.ScalarMultNonConst(mu, &keyJ, &tweakedKeyJ)

		btcec.AddNonConst(&finalKeyJ, &tweakedKeyJ, &finalKeyJ)
	}

	finalKeyJ.ToAffine()
	if isJacobianInfinity(&finalKeyJ) {
		return aggX, nil, ErrAggregateKeyIsInfinity
	}

	finalKey := btcec.NewPublicKey(&finalKeyJ.X, &finalKeyJ.Y)

	finalKeyJ.Y.Normalize()
	cache := &KeyAggCache{
		pk:                finalKey,
		pkHash:            pkHash,
		secondPKX:         secondPKX,
		hasSecondPK:       hasSecondPK,
		internalKeyParity: finalKeyJ.Y.IsOdd(),
	}

	copy(aggX[:], schnorr.SerializePubKey(finalKey))

	return aggX, cache, nil
}

// CombinedKey returns the current (possibly tweaked) x-only aggregate
// public key held by the cache.
func (c *KeyAggCache) CombinedKey() [32]byte {
	var x [32]byte
	copy(x[:], schnorr.SerializePubKey(c.pk))
	return x
}

// pkYOdd reports whether the cache's current internal point (pre-tweak if
// untweaked, post-tweak otherwise) has odd y, without normalizing it.
func (c *KeyAggCache) pkYOdd() bool {
	y := *c.pk.Y()
	y.Normalize()
	return y.IsOdd()
}

// normalizeEvenY returns pk if it already has even y, or its negation
// otherwise. This is the "|P|" operation from spec.md §3.
func normalizeEvenY(pk *btcec.PublicKey) *btcec.PublicKey {
	y := *pk.Y()
	y.Normalize()
	if !y.IsOdd() {
		return pk
	}

	var j btcec.JacobianPoint
	pk.AsJacobian(&j)
	j.Y.Negate(1)
	j.Y.Normalize()

	return btcec.NewPublicKey(&j.X, &j.Y)
}

// rawX returns the x-coordinate of the cache's internal point without
// even-y normalization. This is the "x(cache.pk) without applying parity
// normalization" value spec.md §4.3 and §4.4 require for nonce generation
// and the binding coefficient — see DESIGN.md Open Question 2.
func (c *KeyAggCache) rawX() [32]byte {
	x := *c.pk.X()
	x.Normalize()
	return x.Bytes()
}

// isJacobianInfinity reports whether the given affine-reduced Jacobian
// point (i.e. one that has already had ToAffine called on it) is the point
// at infinity. ToAffine always sets Z to 1 and maps the point at infinity
// to X == Y == 0, which is not on the curve, so that form is recognized as
// well as Z == 0.
func isJacobianInfinity(p *btcec.JacobianPoint) bool {
	p.X.Normalize()
	p.Y.Normalize()
	p.Z.Normalize()
	return p.Z.IsZero() || (p.X.IsZero() && p.Y.IsZero())
}

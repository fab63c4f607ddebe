// Copyright (c) 2013-2022 The btcsuite developers

package musig2

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// PubNonceSize is the wire size, in bytes, of a serialized PubNonce
	// or AggNonce: two SEC1-compressed points.
	PubNonceSize = 66

	// AggNonceSize is the wire size, in bytes, of a serialized AggNonce.
	AggNonceSize = PubNonceSize
)

// nonceGenTag is the tagged-hash tag used to derive the per-call nonce
// seed in GenNonces.
var nonceGenTag = []byte("MuSig/nonce")

// SecNonce holds a signer's two secret nonce scalars. It is move-only:
// Sign consumes it and marks it used, after which any further use fails
// with ErrSecNonceReused. Copying a SecNonce and using both copies to sign
// is a protocol violation that leaks the signing key — see spec.md §3.
//
// This is a native typed stand-in for the 68-byte opaque
// secp256k1_musig_secnonce blob, with the magic-byte reuse detector
// replaced by an explicit used flag per spec.md §9's REDESIGN FLAGS.
type SecNonce struct {
	k1, k2 btcec.ModNScalar
	used   bool
}

// PubNonce holds a signer's two public nonce points, R1 = k1*G and
// R2 = k2*G. It is plain data and safe to copy and transmit.
type PubNonce struct {
	R1, R2 *btcec.PublicKey
}

// AggNonce is the coordinate-wise sum of every signer's PubNonce. It has
// the same shape as PubNonce, but production (via AggregateNonces) can
// fail if either coordinate sums to infinity.
type AggNonce struct {
	R1, R2 *btcec.PublicKey
}

// NonceGenOption customizes nonce generation (spec.md §4.3 Nonce.Gen's
// optional seckey/msg32/keyagg_cache/extra_input32 fields).
type NonceGenOption func(*nonceGenOpts)

type nonceGenOpts struct {
	seckey *btcec.PrivateKey
	msg    *[32]byte
	cache  *KeyAggCache
	extra  *[32]byte
}

// WithNonceSecretKey mixes the signer's own secret key into nonce
// derivation, increasing misuse-resistance and allowing session_id32 to
// be a monotonic counter instead of uniformly random (spec.md §4.3).
func WithNonceSecretKey(sk *btcec.PrivateKey) NonceGenOption {
	return func(o *nonceGenOpts) { o.seckey = sk }
}

// WithNonceMessage mixes the message to be signed into nonce derivation,
// if it is already known at nonce-generation time.
func WithNonceMessage(msg [32]byte) NonceGenOption {
	return func(o *nonceGenOpts) { o.msg = &msg }
}

// WithNonceKeyAggCache mixes the aggregate key cache's raw x-coordinate
// into nonce derivation, if the key aggregation for this session is
// already known.
func WithNonceKeyAggCache(cache *KeyAggCache) NonceGenOption {
	return func(o *nonceGenOpts) { o.cache = cache }
}

// WithNonceExtraInput mixes arbitrary additional data (e.g. a timestamp)
// into nonce derivation.
func WithNonceExtraInput(extra [32]byte) NonceGenOption {
	return func(o *nonceGenOpts) { o.extra = &extra }
}

// writeOptionalField writes a 0x00 marker if present is false, or a 0x01
// marker followed by the 32 data bytes if present is true. This is the
// opt(x) encoding of spec.md §4.3.
func writeOptionalField(buf *bytes.Buffer, present bool, data []byte) {
	if !present {
		buf.WriteByte(0x00)
		return
	}

	buf.WriteByte(0x01)
	buf.Write(data)
}

// nonceSeed computes seed = H(tag="MuSig/nonce", session_id32 ||
// opt(seckey) || opt(agg_pk32) || opt(msg32) || opt(extra_input32)).
//
// The field order here — seckey before agg_pk before msg — matches the
// source's secp256k1_nonce_function_musig exactly and differs from later
// BIP-327 drafts; see DESIGN.md Open Question 1.
func nonceSeed(sessionID [32]byte, o *nonceGenOpts) [32]byte {
	var buf bytes.Buffer
	buf.Write(sessionID[:])

	var skBytes []byte
	if o.seckey != nil {
		skBytes = o.seckey.Serialize()
	}
	writeOptionalField(&buf, o.seckey != nil, skBytes)

	var aggPKBytes []byte
	if o.cache != nil {
		aggPK := o.cache.rawX()
		aggPKBytes = aggPK[:]
	}
	writeOptionalField(&buf, o.cache != nil, aggPKBytes)

	var msgBytes []byte
	if o.msg != nil {
		msgBytes = o.msg[:]
	}
	writeOptionalField(&buf, o.msg != nil, msgBytes)

	var extraBytes []byte
	if o.extra != nil {
		extraBytes = o.extra[:]
	}
	writeOptionalField(&buf, o.extra != nil, extraBytes)

	seed := chainhash.TaggedHash(nonceGenTag, buf.Bytes())

	if skBytes != nil {
		zeroBytes(skBytes)
	}

	return *seed
}

// GenNonces implements spec.md §4.3 Nonce.Gen: it deterministically
// derives two secret nonce scalars from sessionID and the supplied
// optional fields, and returns both the SecNonce and its corresponding
// PubNonce.
//
// sessionID MUST be uniformly random on every call unless a secret key was
// supplied via WithNonceSecretKey, in which case it may instead be a
// strictly monotonic counter that never repeats. Reusing a sessionID (with
// the same other inputs) reproduces the same nonce and, if used to sign
// two different messages, leaks the signing key.
func GenNonces(sessionID [32]byte, opts ...NonceGenOption) (*SecNonce, *PubNonce, error) {
	o := &nonceGenOpts{}
	for _, opt := range opts {
		opt(o)
	}

	seed := nonceSeed(sessionID, o)

	var k [2]btcec.ModNScalar
	for i := 0; i < 2; i++ {
		h := sha256.New()
		h.Write(seed[:])
		h.Write([]byte{byte(i)})
		digest := h.Sum(nil)

		var ki btcec.ModNScalar
		ki.SetByteSlice(digest)
		if ki.IsZero() {
			return nil, nil, ErrNonceGenFailed
		}
		k[i] = ki
	}

	var r [2]*btcec.PublicKey
	for i := 0; i < 2; i++ {
		var rJ btcec.JacobianPoint
		btcec.ScalarBaseMultNonConst(&k[i], &rJ)
		rJ.ToAffine()
		r[i] = btcec.NewPublicKey(&rJ.X, &rJ.Y)
	}

	secNonce := &SecNonce{k1: k[0], k2: k[1]}
	pubNonce := &PubNonce{R1: r[0], R2: r[1]}

	return secNonce, pubNonce, nil
}

// AggregateNonces implements spec.md §4.3 Nonce.Agg: it sums every
// signer's PubNonce coordinate-wise into a single AggNonce. The result is
// the same regardless of the order nonces are passed in (property 3 of
// spec.md §8).
//
// It fails if either coordinate's sum is the point at infinity; this can
// happen with adversarially crafted pubnonces, and the correct recovery
// is for every signer to restart with fresh nonces.
func AggregateNonces(nonces []*PubNonce) (*AggNonce, error) {
	if len(nonces) == 0 {
		return nil, ErrNoPubNonces
	}

	var sum1J, sum2J btcec.JacobianPoint
	for _, n := range nonces {
		var r1J, r2J btcec.JacobianPoint
		n.R1.AsJacobian(&r1J)
		n.R2.AsJacobian(&r2J)

		btcec.AddNonConst(&sum1J, &r1J, &sum1J)
		btcec.AddNonConst(&sum2J, &r2J, &sum2J)
	}

	sum1J.ToAffine()
	sum2J.ToAffine()
	if isJacobianInfinity(&sum1J) || isJacobianInfinity(&sum2J) {
		return nil, ErrAggNonceIsInfinity
	}

	return &AggNonce{
		R1: btcec.NewPublicKey(&sum1J.X, &sum1J.Y),
		R2: btcec.NewPublicKey(&sum2J.X, &sum2J.Y),
	}, nil
}

// isInPrimeOrderSubgroup reports whether p lies in secp256k1's prime-order
// subgroup. secp256k1 has cofactor 1, so any point that parses as a valid
// curve point is already in the subgroup; this check exists to mirror the
// source's explicit secp256k1_ge_is_in_correct_subgroup call, documented
// rather than silently dropped. It only rejects a nil point.
func isInPrimeOrderSubgroup(p *btcec.PublicKey) bool {
	return p != nil
}

// serializeNoncePair writes the 66-byte wire encoding shared by PubNonce
// and AggNonce: ser33(r1) || ser33(r2).
func serializeNoncePair(r1, r2 *btcec.PublicKey) [PubNonceSize]byte {
	var out [PubNonceSize]byte
	copy(out[:33], r1.SerializeCompressed())
	copy(out[33:], r2.SerializeCompressed())
	return out
}

// parseNoncePair parses the 66-byte wire encoding shared by PubNonce and
// AggNonce, rejecting points at infinity, off-curve points, and points not
// in the prime-order subgroup.
func parseNoncePair(data [PubNonceSize]byte) (r1, r2 *btcec.PublicKey, err error) {
	r1, err = btcec.ParsePubKey(data[:33])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPubNonce, err)
	}
	r2, err = btcec.ParsePubKey(data[33:])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPubNonce, err)
	}

	if !isInPrimeOrderSubgroup(r1) || !isInPrimeOrderSubgroup(r2) {
		return nil, nil, ErrInvalidPubNonce
	}

	return r1, r2, nil
}

// Serialize encodes the public nonce as ser33(R1) || ser33(R2).
func (n *PubNonce) Serialize() [PubNonceSize]byte {
	return serializeNoncePair(n.R1, n.R2)
}

// ParsePubNonce parses a 66-byte wire-encoded public nonce.
func ParsePubNonce(data [PubNonceSize]byte) (*PubNonce, error) {
	r1, r2, err := parseNoncePair(data)
	if err != nil {
		return nil, err
	}

	return &PubNonce{R1: r1, R2: r2}, nil
}

// Serialize encodes the aggregate nonce as ser33(R1) || ser33(R2).
func (n *AggNonce) Serialize() [AggNonceSize]byte {
	return serializeNoncePair(n.R1, n.R2)
}

// ParseAggNonce parses a 66-byte wire-encoded aggregate nonce.
func ParseAggNonce(data [AggNonceSize]byte) (*AggNonce, error) {
	r1, r2, err := parseNoncePair(data)
	if err != nil {
		return nil, err
	}

	return &AggNonce{R1: r1, R2: r2}, nil
}

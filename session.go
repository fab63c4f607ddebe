// Copyright (c) 2013-2022 The btcsuite developers

package musig2

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// bip340ChallengeTag is the tagged-hash tag used for the BIP-340 Schnorr
// challenge.
var bip340ChallengeTag = []byte("BIP0340/challenge")

// Session is the result of spec.md §4.4 nonce_process: it carries
// everything Sign, PartialSigVerify, and the aggregation/adaptor steps
// need to operate on a particular (aggnonce, message, key, adaptor)
// tuple.
//
// A Session is plain data, safe to copy, and carries no secret material
// of its own; it is a native typed stand-in for the 133-byte opaque
// secp256k1_musig_session blob.
type Session struct {
	// finNonceParity is true iff the final nonce point has odd y.
	finNonceParity bool

	// finNonce is the raw x-coordinate of the final nonce point,
	// without even-y normalization (it's the signature's R value, not
	// an x-only public key).
	finNonce [32]byte

	// b is the binding coefficient.
	b btcec.ModNScalar

	// e is the BIP-340 Schnorr challenge.
	e btcec.ModNScalar

	// sPart is the tweak's contribution to the final signature's s
	// value; zero if the key wasn't tweaked.
	sPart btcec.ModNScalar
}

// SessionOption customizes NonceProcess.
type SessionOption func(*sessionOpts)

type sessionOpts struct {
	adaptor *btcec.PublicKey
}

// WithAdaptorPoint marks this session as part of an adaptor-signature
// protocol: the resulting PartialSigAgg output will be a pre-signature
// that only becomes a valid signature once Adapt is called with the
// corresponding secret scalar.
func WithAdaptorPoint(t *btcec.PublicKey) SessionOption {
	return func(o *sessionOpts) { o.adaptor = t }
}

// NonceProcess implements spec.md §4.4 nonce_process: given the aggregate
// nonce, the message, the key aggregation cache, and an optional adaptor
// point, it derives the binding coefficient b, the final nonce and its
// parity, the BIP-340 challenge e, and (if the cache is tweaked) the
// tweak's contribution to the final signature.
func NonceProcess(
	aggNonce *AggNonce, msg [32]byte, cache *KeyAggCache,
	opts ...SessionOption,
) (*Session, error) {

	o := &sessionOpts{}
	for _, opt := range opts {
		opt(o)
	}

	// Step 1: agg_pk32 = x(cache.pk), WITHOUT even-y normalization.
	// This is intentionally different from the even-y agg_pk_final used
	// for the BIP-340 challenge in step 6 — see DESIGN.md Open
	// Question 2.
	rawAggPK32 := cache.rawX()

	// Steps 2-3: load (R1, R2), adding the adaptor point to R1 if
	// present.
	var r1J, r2J btcec.JacobianPoint
	aggNonce.R1.AsJacobian(&r1J)
	aggNonce.R2.AsJacobian(&r2J)

	if o.adaptor != nil {
		var adaptorJ btcec.JacobianPoint
		o.adaptor.AsJacobian(&adaptorJ)
		btcec.AddNonConst(&r1J, &adaptorJ, &r1J)
	}

	r1J.ToAffine()
	r2J.ToAffine()

	// Step 4: b = int(H_nonce("MuSig/noncecoef", ser33(R1) || ser33(R2)
	// || agg_pk32 || msg32)) mod n. H_nonce is an UNTAGGED SHA-256 in
	// the source; see DESIGN.md Open Question 3.
	b := nonceCoefficient(&r1J, &r2J, rawAggPK32, msg)

	// Step 5: final nonce point R_final = R1 + b*R2.
	var bR2J, finalJ btcec.JacobianPoint
	btcec.ScalarMultNonConst(&b, &r2J, &bR2J)
	btcec.AddNonConst(&r1J, &bR2J, &finalJ)
	finalJ.ToAffine()

	if isJacobianInfinity(&finalJ) {
		return nil, ErrAggNonceIsInfinity
	}

	var finNonce [32]byte
	finalX := finalJ.X
	finalX.Normalize()
	finNonce = finalX.Bytes()

	finalY := finalJ.Y
	finalY.Normalize()
	finNonceParity := finalY.IsOdd()

	// Step 6: e = BIP-340 challenge(fin_nonce || agg_pk_final || msg32),
	// where agg_pk_final = x(|cache.pk|) — the even-y normalized form,
	// unlike rawAggPK32 above.
	aggPKFinal := cache.CombinedKey()

	var challengeInput [96]byte
	copy(challengeInput[:32], finNonce[:])
	copy(challengeInput[32:64], aggPKFinal[:])
	copy(challengeInput[64:], msg[:])

	challengeHash := chainhash.TaggedHash(bip340ChallengeTag, challengeInput[:])

	var e btcec.ModNScalar
	e.SetByteSlice(challengeHash[:])

	// Step 7: tweak contribution to s_part.
	var sPart btcec.ModNScalar
	if cache.isTweaked {
		eTweak := e
		eTweak.Mul(&cache.tweak)

		if cache.pkYOdd() {
			eTweak.Negate()
		}

		sPart = eTweak
	}

	return &Session{
		finNonceParity: finNonceParity,
		finNonce:       finNonce,
		b:              b,
		e:              e,
		sPart:          sPart,
	}, nil
}

// nonceCoefficient computes hash(ser33(R1) || ser33(R2) || agg_pk32 ||
// msg32) as a plain, untagged SHA-256, reduced mod n. See DESIGN.md Open
// Question 3.
func nonceCoefficient(
	r1J, r2J *btcec.JacobianPoint, aggPK32 [32]byte, msg [32]byte,
) btcec.ModNScalar {

	r1 := btcec.NewPublicKey(&r1J.X, &r1J.Y)
	r2 := btcec.NewPublicKey(&r2J.X, &r2J.Y)

	h := sha256.New()
	h.Write(r1.SerializeCompressed())
	h.Write(r2.SerializeCompressed())
	h.Write(aggPK32[:])
	h.Write(msg[:])
	digest := h.Sum(nil)

	var b btcec.ModNScalar
	b.SetByteSlice(digest)

	return b
}

// NonceParity exposes the final nonce's parity bit, used for adaptor
// signatures (spec.md §4.8 nonce_parity).
func (s *Session) NonceParity() bool {
	return s.finNonceParity
}

// FinalNonce returns the session's x-only final nonce (the R value that
// will appear in the produced signature).
func (s *Session) FinalNonce() [32]byte {
	return s.finNonce
}

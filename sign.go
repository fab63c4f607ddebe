// Copyright (c) 2013-2022 The btcsuite developers

package musig2

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// PartialSig is one signer's contribution to the final aggregate
// signature: a single scalar s_i. It is plain data and safe to copy.
type PartialSig struct {
	s btcec.ModNScalar
}

// Serialize encodes the partial signature as a 32-byte big-endian scalar.
func (p *PartialSig) Serialize() [32]byte {
	s := p.s
	return s.Bytes()
}

// ParsePartialSig parses a 32-byte big-endian scalar, rejecting values
// greater than or equal to the curve order.
func ParsePartialSig(data [32]byte) (*PartialSig, error) {
	var s btcec.ModNScalar
	overflow := s.SetBytes(&data)
	if overflow != 0 {
		return nil, ErrScalarOverflow
	}

	return &PartialSig{s: s}, nil
}

// Sign implements spec.md §4.5 partial_sign. It consumes secNonce —
// zeroizing and marking it used before returning, on every code path,
// successful or not — so a second call with the same SecNonce always
// fails with ErrSecNonceReused and produces no output.
func Sign(
	secNonce *SecNonce, kp *Keypair, cache *KeyAggCache, session *Session,
) (*PartialSig, error) {

	if secNonce.used || secNonce.k1.IsZero() || secNonce.k2.IsZero() {
		return nil, ErrSecNonceReused
	}

	k1, k2 := secNonce.k1, secNonce.k2
	secNonce.used = true
	zeroScalars(&secNonce.k1, &secNonce.k2)

	// Step 3: parity_flip = parity(P_i.y) XOR parity(cache.pk.y) XOR
	// (cache.is_tweaked AND cache.internal_key_parity). kp.PubKey is
	// already even-y normalized by NewKeypair, so its parity term is
	// always 0 here — see keypair.go's doc comment for why that's
	// equivalent to the source's three-way XOR over the raw key.
	pkY := *kp.PubKey.Y()
	pkY.Normalize()

	parityFlip := pkY.IsOdd() != cache.pkYOdd()
	if cache.isTweaked && cache.internalKeyParity {
		parityFlip = !parityFlip
	}

	x := kp.SecretScalar
	if parityFlip {
		x.Negate()
	}

	// Step 4-5: x_i <- x_i * mu_i.
	var keyX [32]byte
	copy(keyX[:], schnorr.SerializePubKey(kp.PubKey))

	mu := keyAggCoefficient(cache.pkHash, cache.secondPKX, cache.hasSecondPK, keyX)
	x.Mul(mu)

	// Step 6: negate both nonce scalars if the final nonce had odd y.
	if session.finNonceParity {
		k1.Negate()
		k2.Negate()
	}

	// Step 7: s_i = e*x_i + k1 + b*k2.
	s := session.e
	s.Mul(&x)

	bk2 := session.b
	bk2.Mul(&k2)

	s.Add(&k1)
	s.Add(&bk2)

	zeroScalars(&x, &k1, &k2, &bk2)

	return &PartialSig{s: s}, nil
}

// PartialSigVerify implements spec.md §4.6 partial_sig_verify: it checks
// that s_i*G = R_i + e'*P_i for the signer identified by signerXOnly,
// without needing to know the session's tweak contribution (which is only
// relevant at final aggregation).
//
// A false return identifies the misbehaving signer; it does not prevent
// the rest of the signers from completing the protocol by excluding that
// signer and restarting.
func PartialSigVerify(
	sig *PartialSig, pubNonce *PubNonce, signerXOnly [32]byte,
	cache *KeyAggCache, session *Session,
) (bool, error) {

	signerPubKey, err := schnorr.ParsePubKey(signerXOnly[:])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidPubKey, err)
	}

	var keyX [32]byte
	copy(keyX[:], signerXOnly[:])

	mu := keyAggCoefficient(cache.pkHash, cache.secondPKX, cache.hasSecondPK, keyX)

	e := session.e
	e.Mul(mu)

	if cache.pkYOdd() != (cache.isTweaked && cache.internalKeyParity) {
		e.Negate()
	}

	// R_i = R_{i,1} + b*R_{i,2}, loading the signer's PubNonce once
	// (the source's session_impl.h loads it twice in a loop that only
	// uses the second load — a transcription slip; see DESIGN.md Open
	// Question 4).
	var r1J, r2J, br2J, riJ btcec.JacobianPoint
	pubNonce.R1.AsJacobian(&r1J)
	pubNonce.R2.AsJacobian(&r2J)

	b := session.b
	btcec.ScalarMultNonConst(&b, &r2J, &br2J)
	btcec.AddNonConst(&r1J, &br2J, &riJ)

	if session.finNonceParity {
		riJ.ToAffine()
		riJ.Y.Negate(1)
		riJ.Y.Normalize()
	}

	// Compute -s*G + e'*P_i + R_i and check it's infinity.
	sNeg := sig.s
	sNeg.Negate()

	var pkJ btcec.JacobianPoint
	signerPubKey.AsJacobian(&pkJ)

	var ePk, sG, sumJ btcec.JacobianPoint
	btcec.ScalarMultNonConst(&e, &pkJ, &ePk)
	btcec.ScalarBaseMultNonConst(&sNeg, &sG)

	btcec.AddNonConst(&ePk, &sG, &sumJ)
	btcec.AddNonConst(&sumJ, &riJ, &sumJ)
	sumJ.ToAffine()

	return isJacobianInfinity(&sumJ), nil
}

// PartialSigAgg implements spec.md §4.7 partial_sig_agg: it sums the
// tweak contribution already stored in the session with every partial
// signature, and lays out the result as a 64-byte BIP-340-shaped
// signature: R_x || s. The result is NOT verified here — do that
// separately, or rely on SigningSession's CombineSig, which does.
func PartialSigAgg(session *Session, sigs []*PartialSig) [64]byte {
	var out [64]byte
	copy(out[:32], session.finNonce[:])

	s := session.sPart
	for _, sig := range sigs {
		s.Add(&sig.s)
	}

	sBytes := s.Bytes()
	copy(out[32:], sBytes[:])

	return out
}

// Copyright (c) 2013-2022 The btcsuite developers

package musig2

import (
	"crypto/rand"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// Context is a managed signing context for MuSig2. It owns the signer's own
// keypair and the set of all signers, and takes care of key aggregation
// (and, optionally, tweaking) once up front so that every SigningSession
// derived from it can skip straight to nonce exchange.
type Context struct {
	keypair *Keypair

	keySet []*btcec.PublicKey

	cache *KeyAggCache

	combinedKey [32]byte

	shouldSort bool
}

// ContextOption customizes NewContext.
type ContextOption func(*contextOptions)

type contextOptions struct {
	tweaks [][32]byte
}

// WithTweakedContext specifies that the aggregated public key produced by
// this context should be tweaked with the given additive tweak. The tweaks
// are applied in order with KeyAggCache.Tweak, which allows only one tweak
// per cache: passing more than one makes NewContext fail with
// ErrAlreadyTweaked. NewContext returns the first Tweak error.
func WithTweakedContext(tweaks ...[32]byte) ContextOption {
	return func(o *contextOptions) { o.tweaks = tweaks }
}

// NewContext creates a new signing context with the given signing key and
// the complete set of signer public keys (including the one corresponding
// to signingKey). shouldSort requests that the signer set be sorted into
// BIP-327's canonical order before aggregation, so that independently
// constructed contexts for the same signer multiset always agree on the
// combined key regardless of input order.
func NewContext(
	signingKey *btcec.PrivateKey, signers []*btcec.PublicKey,
	shouldSort bool, ctxOpts ...ContextOption,
) (*Context, error) {

	opts := &contextOptions{}
	for _, opt := range ctxOpts {
		opt(opts)
	}

	kp := NewKeypair(signingKey)

	var keyFound bool
	for _, key := range signers {
		if key.IsEqual(kp.PubKey) {
			keyFound = true
			break
		}
	}
	if !keyFound {
		return nil, ErrSignerNotInKeySet
	}

	keySet := signers
	if shouldSort {
		keySet = SortKeys(signers)
	}

	combinedKey, cache, err := AggregateKeys(keySet)
	if err != nil {
		return nil, err
	}

	for _, tweak := range opts.tweaks {
		combinedKey, err = cache.Tweak(tweak)
		if err != nil {
			return nil, err
		}
	}

	return &Context{
		keypair:     kp,
		keySet:      keySet,
		cache:       cache,
		combinedKey: combinedKey,
		shouldSort:  shouldSort,
	}, nil
}

// CombinedKey returns the aggregate (and, if configured, tweaked) x-only
// public key that multi-signatures produced within this context verify
// against.
func (c *Context) CombinedKey() [32]byte {
	return c.combinedKey
}

// PubKey returns the even-y-normalized public key this context signs with.
func (c *Context) PubKey() *btcec.PublicKey {
	return c.keypair.PubKey
}

// SigningKeys returns the full signer set used by this context, in the
// order key aggregation used (i.e. post-sort if shouldSort was set).
func (c *Context) SigningKeys() []*btcec.PublicKey {
	keys := make([]*btcec.PublicKey, len(c.keySet))
	copy(keys, c.keySet)

	return keys
}

// SigningSession represents one MuSig2 signing ceremony: a single message
// signed once by every signer named in the owning Context. A new
// SigningSession must be created for every message: its SecNonce is
// consumed by the first Sign call, and any later Sign call on the same
// session fails with ErrSigningContextReuse.
//
// This is the stateful convenience wrapper spec.md §3 calls for, built on
// top of the stateless KeyAgg/Nonce/Sign primitives in the rest of this
// package. Errors are returned instead of panicking when nonce reuse or
// out-of-order calls are attempted.
type SigningSession struct {
	ctx *Context

	secNonce      *SecNonce
	localPubNonce *PubNonce

	pubNonces []*PubNonce
	aggNonce  *AggNonce

	msg [32]byte

	nonceSession *Session

	ourSig *PartialSig
	sigs   []*PartialSig

	finalSig [64]byte
}

// NewSigningSession creates a new MuSig2 signing session under c, generating
// and publishing this signer's own public nonce.
func (c *Context) NewSigningSession() (*SigningSession, error) {
	var sessionID [32]byte
	if _, err := rand.Read(sessionID[:]); err != nil {
		return nil, err
	}

	secNonce, pubNonce, err := GenNonces(
		sessionID, WithNonceKeyAggCache(c.cache),
	)
	if err != nil {
		return nil, err
	}

	s := &SigningSession{
		ctx:           c,
		secNonce:      secNonce,
		localPubNonce: pubNonce,
		pubNonces:     make([]*PubNonce, 0, len(c.keySet)),
		sigs:          make([]*PartialSig, 0, len(c.keySet)),
	}
	s.pubNonces = append(s.pubNonces, pubNonce)

	return s, nil
}

// PublicNonce returns this signer's public nonce. It must be sent to every
// other signer before RegisterPubNonce can complete on either side.
func (s *SigningSession) PublicNonce() *PubNonce {
	return s.localPubNonce
}

// NumRegisteredNonces returns the number of public nonces collected so far,
// including this signer's own.
func (s *SigningSession) NumRegisteredNonces() int {
	return len(s.pubNonces)
}

// RegisterPubNonce records a public nonce received from another signer. It
// returns true once every signer's nonce has been registered, at which
// point the aggregate nonce is computed and Sign becomes callable.
func (s *SigningSession) RegisterPubNonce(nonce *PubNonce) (bool, error) {
	haveAll := len(s.pubNonces) == len(s.ctx.keySet)
	if haveAll {
		return false, ErrAlreadyHaveAllNonces
	}

	s.pubNonces = append(s.pubNonces, nonce)
	haveAll = len(s.pubNonces) == len(s.ctx.keySet)

	if haveAll {
		aggNonce, err := AggregateNonces(s.pubNonces)
		if err != nil {
			return false, err
		}

		s.aggNonce = aggNonce
	}

	return haveAll, nil
}

// Sign produces this signer's partial signature over msg. It fails with
// ErrSigningContextReuse if called a second time on the same session, and
// with ErrCombinedNonceUnavailable if called before every signer's public
// nonce has been registered.
func (s *SigningSession) Sign(msg [32]byte) (*PartialSig, error) {
	switch {
	case s.secNonce == nil:
		return nil, ErrSigningContextReuse

	case s.aggNonce == nil:
		return nil, ErrCombinedNonceUnavailable
	}

	s.msg = msg

	nonceSession, err := NonceProcess(s.aggNonce, msg, s.ctx.cache)
	if err != nil {
		return nil, err
	}
	s.nonceSession = nonceSession

	partialSig, err := Sign(s.secNonce, s.ctx.keypair, s.ctx.cache, nonceSession)

	// Whether or not Sign succeeded, the nonce it consumed must never be
	// reachable again.
	s.secNonce = nil

	if err != nil {
		return nil, err
	}

	s.ourSig = partialSig
	s.sigs = append(s.sigs, partialSig)

	return partialSig, nil
}

// CombineSig records a partial signature received from another signer. It
// returns true once every signer's partial signature has been collected, at
// which point the final signature is aggregated and checked against the
// context's combined key.
func (s *SigningSession) CombineSig(sig *PartialSig) (bool, error) {
	haveAll := len(s.sigs) == len(s.ctx.keySet)
	if haveAll {
		return false, ErrAlreadyHaveAllSigs
	}

	s.sigs = append(s.sigs, sig)
	haveAll = len(s.sigs) == len(s.ctx.keySet)

	if haveAll {
		finalSig := PartialSigAgg(s.nonceSession, s.sigs)

		parsedSig, err := schnorr.ParseSignature(finalSig[:])
		if err != nil {
			return false, ErrFinalSigInvalid
		}

		combinedPK, err := schnorr.ParsePubKey(s.ctx.combinedKey[:])
		if err != nil {
			return false, ErrFinalSigInvalid
		}

		if !parsedSig.Verify(s.msg[:], combinedPK) {
			return false, ErrFinalSigInvalid
		}

		s.finalSig = finalSig
	}

	return haveAll, nil
}

// FinalSig returns the final combined signature, once CombineSig has
// reported true. It is the zero value until then.
func (s *SigningSession) FinalSig() [64]byte {
	return s.finalSig
}

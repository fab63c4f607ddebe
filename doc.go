// Copyright (c) 2013-2022 The btcsuite developers

// Package musig2 implements a MuSig2 multi-signature engine producing
// BIP-340 Schnorr signatures over secp256k1, extended with BIP-341
// x-only key tweaking and scriptless-script adaptor signatures.
//
// The pipeline runs forward through five stages: AggregateKeys combines
// an ordered set of signer pubkeys into an aggregate key and a
// KeyAggCache; an optional Tweak applies a BIP-341-style additive
// tweak; GenNonces and AggregateNonces produce and combine per-signer
// nonces; NonceProcess derives a Session from the aggregate nonce,
// message, and key; and Sign, PartialSigVerify, and PartialSigAgg
// produce and check partial signatures and combine them into a final
// 64-byte signature. Adapt and ExtractAdaptor implement the optional
// adaptor-signature branch.
//
// Context and SigningSession wrap the above into a stateful convenience
// API for a single signer driving one ceremony from nonce exchange
// through final signature.
package musig2

// Copyright (c) 2013-2022 The btcsuite developers

package musig2

import "github.com/btcsuite/btcd/btcec/v2"

// Keypair is a signer's even-y-normalized signing keypair. PubKey is
// guaranteed to have even y; SecretScalar is the secret scalar
// corresponding to PubKey, which may be the negation of the raw private
// key if the raw key's public point had odd y.
//
// This reproduces secp256k1_keypair_load's even-y bookkeeping, which
// spec.md §6.2 lists as a primitive the surrounding crypto library is
// assumed to supply.
type Keypair struct {
	SecretScalar btcec.ModNScalar
	PubKey       *btcec.PublicKey
}

// NewKeypair derives the even-y-normalized Keypair for sk.
func NewKeypair(sk *btcec.PrivateKey) *Keypair {
	pub := sk.PubKey()

	secret := sk.Key

	y := *pub.Y()
	y.Normalize()
	if y.IsOdd() {
		secret.Negate()
		pub = normalizeEvenY(pub)
	}

	return &Keypair{
		SecretScalar: secret,
		PubKey:       pub,
	}
}

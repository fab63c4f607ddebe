// Command musig2demo walks through two MuSig2 signing ceremonies: a plain
// 2-of-2, and a 3-of-3 ceremony tweaked with a BIP-341-style additive
// tweak. It exercises the full pipeline end to end, outside of a test
// binary, and prints the resulting signature and whether it verifies.
package main

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"log"
	"os"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/muun/musig2"
)

func main() {
	msg := sha256.Sum256([]byte("the ceremony proceeds"))

	fmt.Println("== 2-of-2, no tweak ==")
	if err := runCeremony(msg, 2, nil); err != nil {
		log.Fatal(err)
	}

	fmt.Println("== 3-of-3, tweaked ==")
	var tweak [32]byte
	tweak[31] = 0x2a
	if err := runCeremony(msg, 3, &tweak); err != nil {
		log.Fatal(err)
	}
}

func runCeremony(msg [32]byte, n int, tweak *[32]byte) error {
	seckeys := make([]*btcec.PrivateKey, n)
	pubkeys := make([]*btcec.PublicKey, n)
	keypairs := make([]*musig2.Keypair, n)

	for i := 0; i < n; i++ {
		sk, err := btcec.NewPrivateKey()
		if err != nil {
			return fmt.Errorf("generating signer %d's key: %w", i, err)
		}

		seckeys[i] = sk
		keypairs[i] = musig2.NewKeypair(sk)
		pubkeys[i] = keypairs[i].PubKey
	}

	combinedX, cache, err := musig2.AggregateKeys(pubkeys)
	if err != nil {
		return fmt.Errorf("aggregating keys: %w", err)
	}

	if tweak != nil {
		combinedX, err = cache.Tweak(*tweak)
		if err != nil {
			return fmt.Errorf("tweaking aggregate key: %w", err)
		}
	}
	fmt.Printf("combined key: %x\n", combinedX)

	secNonces := make([]*musig2.SecNonce, n)
	pubNonces := make([]*musig2.PubNonce, n)

	for i := 0; i < n; i++ {
		var sessionID [32]byte
		if _, err := rand.Read(sessionID[:]); err != nil {
			return fmt.Errorf("reading session id: %w", err)
		}

		secNonce, pubNonce, err := musig2.GenNonces(
			sessionID,
			musig2.WithNonceSecretKey(seckeys[i]),
			musig2.WithNonceMessage(msg),
			musig2.WithNonceKeyAggCache(cache),
		)
		if err != nil {
			return fmt.Errorf("generating nonces for signer %d: %w", i, err)
		}

		secNonces[i] = secNonce
		pubNonces[i] = pubNonce
	}

	aggNonce, err := musig2.AggregateNonces(pubNonces)
	if err != nil {
		return fmt.Errorf("aggregating nonces: %w", err)
	}

	session, err := musig2.NonceProcess(aggNonce, msg, cache)
	if err != nil {
		return fmt.Errorf("processing session: %w", err)
	}

	sigs := make([]*musig2.PartialSig, n)
	for i := 0; i < n; i++ {
		sig, err := musig2.Sign(secNonces[i], keypairs[i], cache, session)
		if err != nil {
			return fmt.Errorf("signer %d signing: %w", i, err)
		}

		var xOnly [32]byte
		copy(xOnly[:], schnorr.SerializePubKey(keypairs[i].PubKey))

		ok, err := musig2.PartialSigVerify(
			sig, pubNonces[i], xOnly, cache, session,
		)
		if err != nil {
			return fmt.Errorf("verifying signer %d's partial sig: %w", i, err)
		}
		if !ok {
			return fmt.Errorf("signer %d's partial signature is invalid", i)
		}

		sigs[i] = sig
	}

	finalSig := musig2.PartialSigAgg(session, sigs)

	pk, err := schnorr.ParsePubKey(combinedX[:])
	if err != nil {
		return fmt.Errorf("parsing combined key: %w", err)
	}

	sig, err := schnorr.ParseSignature(finalSig[:])
	if err != nil {
		return fmt.Errorf("parsing final signature: %w", err)
	}

	fmt.Printf("signature:    %x\n", finalSig)
	fmt.Printf("verifies:     %v\n\n", sig.Verify(msg[:], pk))

	if !sig.Verify(msg[:], pk) {
		fmt.Fprintln(os.Stderr, "final signature failed to verify")
		os.Exit(1)
	}

	return nil
}

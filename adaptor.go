// Copyright (c) 2013-2022 The btcsuite developers

package musig2

import "github.com/btcsuite/btcd/btcec/v2"

// Adapt implements spec.md §4.8 adapt: given a pre-signature produced by
// PartialSigAgg for a session built WithAdaptorPoint(t*G), and the secret
// scalar t, it produces the final, valid BIP-340 signature by adding or
// subtracting t from the s value depending on the final nonce's parity at
// adaptor-point-addition time.
//
// preSigParity is the NonceParity() observed on the session BEFORE the
// adaptor point's secret is known to the caller producing the final
// signature; it must be recorded alongside the pre-signature, since the s
// value alone doesn't reveal which way to apply t.
func Adapt(preSig [64]byte, secret [32]byte, preSigParity bool) ([64]byte, error) {
	var out [64]byte
	copy(out[:32], preSig[:32])

	var s, t btcec.ModNScalar
	overflow := s.SetByteSlice(preSig[32:])
	if overflow {
		return out, ErrScalarOverflow
	}

	tOverflow := t.SetBytes(&secret)
	if tOverflow != 0 {
		return out, ErrScalarOverflow
	}

	if preSigParity {
		t.Negate()
	}

	s.Add(&t)
	zeroScalar(&t)

	sBytes := s.Bytes()
	copy(out[32:], sBytes[:])

	return out, nil
}

// ExtractAdaptor implements spec.md §4.8 extract_adaptor: given the final
// signature produced after Adapt and the original pre-signature, it
// recovers the adaptor secret t. This lets the holder of a valid on-chain
// signature recover the off-chain secret it was exchanged for.
func ExtractAdaptor(finalSig, preSig [64]byte, preSigParity bool) ([32]byte, error) {
	var out [32]byte

	var sFinal, sPre btcec.ModNScalar
	if sFinal.SetByteSlice(finalSig[32:]) {
		return out, ErrScalarOverflow
	}
	if sPre.SetByteSlice(preSig[32:]) {
		return out, ErrScalarOverflow
	}

	t := sFinal
	sPreNeg := sPre
	sPreNeg.Negate()
	t.Add(&sPreNeg)

	if preSigParity {
		t.Negate()
	}

	out = t.Bytes()
	zeroScalar(&t)

	return out, nil
}

// Copyright (c) 2013-2022 The btcsuite developers

package musig2

import "github.com/btcsuite/btcd/btcec/v2"

// zeroBytes overwrites every byte of b with zero. Used on every exit path
// that has handled secret key material or a secret nonce, mirroring the
// memset(..., 0, ...) calls in the source's session_impl.h.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// zeroScalar overwrites a ModNScalar with zero. btcec.ModNScalar has no
// zeroizing method of its own, so this sets it via SetInt(0), which is the
// only exported mutator that doesn't require re-parsing from bytes.
func zeroScalar(s *btcec.ModNScalar) {
	if s == nil {
		return
	}
	s.SetInt(0)
}

// zeroScalars zeroizes every scalar in the slice.
func zeroScalars(ss ...*btcec.ModNScalar) {
	for _, s := range ss {
		zeroScalar(s)
	}
}

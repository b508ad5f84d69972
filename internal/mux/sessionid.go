// SPDX-License-Identifier: GPL-3.0-or-later

package mux

import (
	"crypto/rand"
	"math/big"

	"github.com/bassosimone/runtimex"
)

// NewSessionID generates a fresh random 128-bit session identifier.
func NewSessionID() [16]byte {
	var id [16]byte
	_, err := rand.Read(id[:])
	runtimex.Assert(err == nil)
	return id
}

// FormatSessionID renders id in the wire format pipe constructors
// expect as metadata: the ASCII string `sess-<u128-decimal>`.
func FormatSessionID(id [16]byte) string {
	n := new(big.Int).SetBytes(id[:])
	return "sess-" + n.String()
}

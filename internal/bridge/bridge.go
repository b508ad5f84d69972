// SPDX-License-Identifier: GPL-3.0-or-later

// Package bridge holds the directory's bridge/exit data model and the
// selection policy used to filter bridges and extract the end-to-end
// multiplex key shared across an exit's descriptors.
//
// Grounded on the `BridgeDescriptor`/`get_bridges_v2` handling and the
// `e2e_key` extraction loop in the original tunnel connector's `getsess`
// module, generalized here into a reusable, independently testable policy.
package bridge

import "errors"

// KeySize is the length in bytes of a transport or multiplex public key.
const KeySize = 32

// Protocol tags recognized in a [Descriptor]'s Protocol field. These are
// the bit-exact wire strings the directory emits, not a shorthand.
const (
	ProtocolObfsUDP = "sosistab2-obfsudp"
	ProtocolObfsTLS = "sosistab2-obfstls"
)

// DirectAllocGroup is the allocation group excluded by the bridges-only
// policy.
const DirectAllocGroup = "direct"

// Descriptor is an immutable bridge record produced by the directory.
type Descriptor struct {
	// Endpoint is the bridge's dial address, "host:port".
	Endpoint string

	// Protocol is one of [ProtocolObfsUDP] or [ProtocolObfsTLS].
	Protocol string

	// KeyBlob is the opaque per-protocol key material. For
	// [ProtocolObfsUDP] it decodes via [DecodeUDPKeyBlob] into a
	// (transport-public-key, multiplex-public-key) pair.
	KeyBlob []byte

	// AllocGroup is the allocation-group tag; [DirectAllocGroup] has
	// policy meaning for the bridges-only filter.
	AllocGroup string
}

// Exit is the directory's exit record. The core only reads Hostname,
// which is used as the bridge-lookup key.
type Exit struct {
	Hostname string
}

// UDPKeys is the pair decoded from an obfs-udp [Descriptor.KeyBlob].
type UDPKeys struct {
	TransportPublicKey [KeySize]byte
	MultiplexPublicKey [KeySize]byte
}

// ErrMalformedKeyBlob indicates a key blob is not the expected
// fixed-length (transport-key, multiplex-key) encoding.
var ErrMalformedKeyBlob = errors.New("bridge: malformed key blob")

// EncodeUDPKeyBlob encodes a (transport-key, multiplex-key) pair into
// the fixed-length tuple encoding [DecodeUDPKeyBlob] expects.
func EncodeUDPKeyBlob(keys UDPKeys) []byte {
	blob := make([]byte, 0, 2*KeySize)
	blob = append(blob, keys.TransportPublicKey[:]...)
	blob = append(blob, keys.MultiplexPublicKey[:]...)
	return blob
}

// DecodeUDPKeyBlob decodes an obfs-udp key blob into its
// (transport-public-key, multiplex-public-key) pair.
//
// The wire format is a bincode-style fixed-length tuple of two 32-byte
// arrays, which bincode encodes as plain concatenation with no length
// prefix since both fields have a statically known size.
func DecodeUDPKeyBlob(blob []byte) (UDPKeys, error) {
	var zero UDPKeys
	if len(blob) != 2*KeySize {
		return zero, ErrMalformedKeyBlob
	}
	var keys UDPKeys
	copy(keys.TransportPublicKey[:], blob[:KeySize])
	copy(keys.MultiplexPublicKey[:], blob[KeySize:])
	return keys, nil
}

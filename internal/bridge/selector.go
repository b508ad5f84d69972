// SPDX-License-Identifier: GPL-3.0-or-later

package bridge

import "errors"

// ErrNoKey indicates no descriptor in the list yielded a usable
// multiplex public key.
var ErrNoKey = errors.New("bridge: no end-to-end multiplex key found")

// Policy carries the user's bridge-selection preferences. Today this is
// only the bridges-only flag; see [Select].
type Policy struct {
	// BridgesOnly, when true, excludes every descriptor whose
	// AllocGroup is [DirectAllocGroup]. This filter applies both at
	// session assembly and at healing time.
	BridgesOnly bool
}

// Filter returns the subset of descriptors this policy allows.
func Filter(descs []Descriptor, policy Policy) []Descriptor {
	if !policy.BridgesOnly {
		out := make([]Descriptor, len(descs))
		copy(out, descs)
		return out
	}
	out := make([]Descriptor, 0, len(descs))
	for _, d := range descs {
		if d.AllocGroup == DirectAllocGroup {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Allowed reports whether a single descriptor survives policy, without
// allocating a filtered copy of the full list. The healer uses this to
// check the first shuffled candidate of a round.
func Allowed(d Descriptor, policy Policy) bool {
	return !policy.BridgesOnly || d.AllocGroup != DirectAllocGroup
}

// MultiplexKey scans descs for the first obfs-udp descriptor with a
// well-formed key blob and returns its multiplex public key.
//
// The result does not depend on scan order: every descriptor sharing an
// exit embeds the same multiplex public key, by construction of the
// directory.
func MultiplexKey(descs []Descriptor) ([KeySize]byte, error) {
	var zero [KeySize]byte
	for _, d := range descs {
		if d.Protocol != ProtocolObfsUDP {
			continue
		}
		keys, err := DecodeUDPKeyBlob(d.KeyBlob)
		if err != nil {
			continue
		}
		return keys.MultiplexPublicKey, nil
	}
	return zero, ErrNoKey
}

// Select applies [Filter] and [MultiplexKey] to descs, returning the
// filtered descriptor list and the exit's shared multiplex public key
// in a single call, as the Session Assembler needs both. The key is
// scanned from the full, unfiltered list, so a descriptor the policy
// drops can still supply it.
func Select(descs []Descriptor, policy Policy) ([]Descriptor, [KeySize]byte, error) {
	filtered := Filter(descs, policy)
	key, err := MultiplexKey(descs)
	if err != nil {
		return nil, [KeySize]byte{}, err
	}
	return filtered, key, nil
}

// SPDX-License-Identifier: GPL-3.0-or-later

// Package config holds the user-controlled policy knobs that shape
// session assembly and healing: whether to use bridges at all, which
// exit to target, and the timing constants the healer jitters around.
//
// Grounded on `binder_tunnel_params` (`use_bridges`, `exit_server`) in
// the original tunnel connector's `getsess` module; the timing
// constants come from the spec's fixed 300s/[1,3)s/10s values, exposed
// here as overridable fields rather than hardcoded so tests can shrink
// them.
package config

import (
	"time"

	"github.com/rbmk-project/conduit/internal/bridge"
)

// Policy is the user's session-assembly and healing policy.
type Policy struct {
	// BridgesOnly, when true, excludes bridges whose allocation
	// group is "direct" both at assembly and during healing.
	BridgesOnly bool

	// ExitHostname is the requested exit's hostname, or the empty
	// string to mean "closest available exit".
	ExitHostname string

	// DialTimeout bounds every pipe dial attempt. Defaults to 10s
	// via [DefaultPolicy].
	DialTimeout time.Duration

	// HealActivityWindow is how recently the user must have been
	// active for the healer to run a heal round. Defaults to 300s.
	HealActivityWindow time.Duration

	// HealJitterMin and HealJitterMax bound the per-iteration random
	// dwell the healer sleeps before acting. Defaults to [1s, 3s).
	HealJitterMin time.Duration
	HealJitterMax time.Duration
}

// BridgePolicy projects p onto the narrower [bridge.Policy] the Bridge
// Selector consumes.
func (p Policy) BridgePolicy() bridge.Policy {
	return bridge.Policy{BridgesOnly: p.BridgesOnly}
}

// DefaultPolicy returns the policy with the spec's fixed timing
// constants and bridges-only disabled.
func DefaultPolicy() Policy {
	return Policy{
		BridgesOnly:        false,
		ExitHostname:       "",
		DialTimeout:        10 * time.Second,
		HealActivityWindow: 300 * time.Second,
		HealJitterMin:      1 * time.Second,
		HealJitterMax:      3 * time.Second,
	}
}

// SPDX-License-Identifier: GPL-3.0-or-later

// Package directory is the client boundary the Session Assembler and
// Pipe Healer use to resolve an exit and fetch its bridges.
//
// The directory's own protocol and authentication internals are out of
// scope (the spec defers "directory client internals"); this package
// only defines the narrow interface the core depends on, grounded on
// `binder_tunnel_params.ccache.get_closest_exit`/`get_bridges_v2` in the
// original tunnel connector's `getsess` module.
package directory

import (
	"context"

	"github.com/rbmk-project/conduit/internal/bridge"
)

// Client resolves exits and their bridges.
type Client interface {
	// ClosestExit resolves the closest exit to hostnameHint, or the
	// overall closest exit when hostnameHint is empty.
	ClosestExit(ctx context.Context, hostnameHint string) (bridge.Exit, error)

	// BridgesFor returns the bridge list for the given exit hostname.
	BridgesFor(ctx context.Context, hostname string) ([]bridge.Descriptor, error)
}

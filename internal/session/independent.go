// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"

	"github.com/rbmk-project/conduit/internal/bridge"
	"github.com/rbmk-project/conduit/internal/directory"
	"github.com/rbmk-project/conduit/internal/endpoint"
	"github.com/rbmk-project/conduit/internal/mux"
)

// AssembleIndependent realizes the session the original tunnel
// connector left as a `todo!()` for `EndpointSource::Independent`: a
// pre-shared `pk@host:port` descriptor with no directory lookup.
//
// It synthesizes a single obfs-udp [bridge.Descriptor] whose key blob
// is `(pk, pk)` — the endpoint's own key doubling as both the
// transport key and the end-to-end multiplex key, since an independent
// endpoint has no separate exit to vouch for a distinct multiplex key
// — and otherwise assembles exactly as [Assemble] does, including
// installing a Pipe Healer. The healer's directory is a single-entry
// [directory.Fake] seeded with the same synthesized descriptor, so
// healing redials the same endpoint rather than failing outright.
func AssembleIndependent(ctx context.Context, ep endpoint.Endpoint, tctx TunnelCtx) (*mux.Multiplex, error) {
	desc := bridge.Descriptor{
		Endpoint: ep.Addr,
		Protocol: bridge.ProtocolObfsUDP,
		KeyBlob: bridge.EncodeUDPKeyBlob(bridge.UDPKeys{
			TransportPublicKey: ep.PublicKey,
			MultiplexPublicKey: ep.PublicKey,
		}),
	}

	fake := directory.NewFake(bridge.Exit{Hostname: ep.Addr})
	fake.SetBridges(ep.Addr, []bridge.Descriptor{desc})

	tctx.Directory = fake
	tctx.Policy.ExitHostname = ep.Addr

	return Assemble(ctx, tctx)
}

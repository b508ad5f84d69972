// SPDX-License-Identifier: GPL-3.0-or-later

// Package obfsudp dials the obfs-udp bridge pipe.
//
// The obfuscation codec itself is out of scope (the spec explicitly
// defers "pipe codec internals" to the directory/bridge firmware this
// core only talks to); this package owns the transport-level half of
// the contract: dial the UDP endpoint and hand back a [mux.Pipe] keyed
// by the transport public key and session identifier, exactly as
// `ObfsUdpPipe::connect(desc.endpoint, keys.0, meta)` does in the
// original tunnel connector.
package obfsudp

import (
	"context"
	"net"

	"github.com/rbmk-project/conduit/internal/bridge"
	"github.com/rbmk-project/conduit/internal/mux"
	"github.com/rbmk-project/conduit/internal/netcore"
)

// Pipe is an obfs-udp transport attached to a [mux.Multiplex].
type Pipe struct {
	conn   net.Conn
	addr   string
	closed bool
}

var _ mux.Pipe = (*Pipe)(nil)

// Protocol implements [mux.Pipe].
func (p *Pipe) Protocol() string { return bridge.ProtocolObfsUDP }

// PeerAddr implements [mux.Pipe].
func (p *Pipe) PeerAddr() string { return p.addr }

// Dead implements [mux.Pipe].
//
// A UDP pipe has no transport-level close signal, so liveness is
// judged entirely by the session layer above this package; this
// reports dead only once [Pipe.Close] has been called.
func (p *Pipe) Dead() bool { return p.closed }

// Close implements [mux.Pipe].
func (p *Pipe) Close() error {
	p.closed = true
	return p.conn.Close()
}

// Dial opens an obfs-udp pipe to endpoint, keyed by the bridge's
// transport public key and the session identifier meta.
//
// transportPublicKey and sessionID are accepted here (rather than
// dropped) to keep this package's signature stable once the real
// obfuscation handshake is wired in; the handshake itself is the
// out-of-scope codec.
func Dial(ctx context.Context, nx *netcore.Network, endpoint string, transportPublicKey [32]byte, sessionID string) (*Pipe, error) {
	conn, err := nx.DialContext(ctx, "udp", endpoint)
	if err != nil {
		return nil, err
	}
	return &Pipe{conn: conn, addr: endpoint}, nil
}

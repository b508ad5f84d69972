// SPDX-License-Identifier: GPL-3.0-or-later

// Package obfstls dials the obfs-tls bridge pipe: a TLS connection with
// certificate validation disabled, pinned to TLS 1.2, fronted by a
// randomly generated, plausible-looking SNI.
//
// Grounded on the `sosistab2-obfstls` branch of `connect_once` in the
// original tunnel connector, which builds a `native_tls::TlsConnector`
// with `danger_accept_invalid_certs`/`danger_accept_invalid_hostnames`
// both set and `min`/`max_protocol_version` pinned to TLS 1.2, fronted
// by `eff_wordlist::short::random_word()` plus two `large::random_word()`
// calls joined into `{short}.{large}{large}.com`. The end-to-end trust
// boundary is the multiplex key, not this TLS handshake, so the loose
// certificate policy here is intentional rather than a shortcut.
package obfstls

import (
	"context"
	"crypto/tls"
	"math/rand/v2"
	"net"

	"github.com/rbmk-project/conduit/internal/bridge"
	"github.com/rbmk-project/conduit/internal/mux"
	"github.com/rbmk-project/conduit/internal/netcore"
)

// Pipe is an obfs-tls transport attached to a [mux.Multiplex].
type Pipe struct {
	conn   net.Conn
	addr   string
	closed bool
}

var _ mux.Pipe = (*Pipe)(nil)

// Protocol implements [mux.Pipe].
func (p *Pipe) Protocol() string { return bridge.ProtocolObfsTLS }

// PeerAddr implements [mux.Pipe].
func (p *Pipe) PeerAddr() string { return p.addr }

// Dead implements [mux.Pipe].
func (p *Pipe) Dead() bool { return p.closed }

// Close implements [mux.Pipe].
func (p *Pipe) Close() error {
	p.closed = true
	return p.conn.Close()
}

// TLSConfig returns the TLS client configuration obfs-tls always
// dials with: certificate and hostname validation disabled, protocol
// version pinned to TLS 1.2, SNI set to serverName.
func TLSConfig(serverName string) *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS12,
		MaxVersion:         tls.VersionTLS12,
		ServerName:         serverName,
	}
}

// FakeSNI generates a plausible-looking but random SNI name by joining
// three dictionary words into `{short}.{large}{large}.com`.
func FakeSNI() string {
	return shortWord() + "." + largeWord() + largeWord() + ".com"
}

func shortWord() string {
	return shortWords[rand.IntN(len(shortWords))]
}

func largeWord() string {
	return largeWords[rand.IntN(len(largeWords))]
}

// Dial opens an obfs-tls pipe to endpoint, fronted by a freshly
// generated [FakeSNI]. keyBlob and sessionID are threaded through so
// the signature matches the real handshake once the obfuscation codec
// (out of scope here) is wired in.
func Dial(ctx context.Context, nx *netcore.Network, endpoint string, keyBlob []byte, sessionID string) (*Pipe, error) {
	tc := TLSConfig(FakeSNI())
	conn, err := nx.DialTLSContextWithConfig(ctx, "tcp", endpoint, tc)
	if err != nil {
		return nil, err
	}
	return &Pipe{conn: conn, addr: endpoint}, nil
}

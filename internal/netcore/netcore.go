// SPDX-License-Identifier: GPL-3.0-or-later

// Package netcore is conduit's core networking library.
//
// It wraps [github.com/bassosimone/nop] dial/TLS/observe pipelines into a
// [*Network] type shared by the pipe dialer and the directory client.
package netcore

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/bassosimone/errclass"
	"github.com/bassosimone/nop"
	"github.com/bassosimone/runtimex"
	"github.com/rbmk-project/conduit/internal/testablenet"
)

// Resolver is a [*net.Resolver]-like abstraction.
type Resolver interface {
	LookupHost(ctx context.Context, domain string) ([]string, error)
}

// DialContextFunc is the function for creating new [net.Conn] instances.
type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

type dialerAdapter struct {
	fx DialContextFunc
}

var _ nop.Dialer = dialerAdapter{}

// DialContext implements [nop.Dialer].
func (d dialerAdapter) DialContext(ctx context.Context, network string, address string) (net.Conn, error) {
	return d.fx(ctx, network, address)
}

// SplitHostPortFunc splits an endpoint into a host and a port.
//
// Overriding this lets callers honor a resolve map (as `curl --resolve`
// does in the teacher project) without changing the dialer itself.
type SplitHostPortFunc func(endpoint string) (host, port string, err error)

// Network allows to create network connections.
//
// Use [NewNetwork] to construct.
type Network struct {
	// DialContextFunc is the function for creating a new conn.
	//
	// The [NewNetwork] function initializes this using [testablenet.DialContext].
	DialContextFunc DialContextFunc

	// Logger is the logger to use.
	//
	// The [NewNetwork] function initializes this using a JSON slogger writing on [os.Stderr].
	Logger *slog.Logger

	// Resolver is the resolver to use.
	//
	// The [NewNetwork] function initializes this using a zero-initialized [*net.Resolver].
	Resolver Resolver

	// SplitHostPort splits an endpoint into host and port.
	//
	// The [NewNetwork] function initializes this using [net.SplitHostPort].
	SplitHostPort SplitHostPortFunc

	// TLSConfig is the default TLS config to use.
	//
	// The [NewNetwork] function initializes this using a [*tls.Config]
	// with the root CAs from [testablenet.RootCAs].
	TLSConfig *tls.Config

	// TimeNow is the function to get the current time.
	//
	// The [NewNetwork] function initializes this using [time.Now].
	TimeNow func() time.Time
}

// NewNetwork creates a new [*Network] with default values.
func NewNetwork() *Network {
	return &Network{
		DialContextFunc: testablenet.DialContext.Get(),
		Logger:          slog.New(slog.NewJSONHandler(os.Stderr, nil)),
		Resolver:        &net.Resolver{},
		SplitHostPort:   net.SplitHostPort,
		TLSConfig:       &tls.Config{RootCAs: testablenet.RootCAs.Get()},
		TimeNow:         time.Now,
	}
}

// NewNopConfig creates a new [*nop.Config] instance wired to this [*Network].
func (nx *Network) NewNopConfig() *nop.Config {
	return &nop.Config{
		Dialer:        dialerAdapter{nx.DialContextFunc},
		ErrClassifier: nop.ErrClassifierFunc(errclass.New),
		TimeNow:       nx.TimeNow,
	}
}

// DialContext establishes a new TCP/UDP [net.Conn].
func (nx *Network) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	config := nx.NewNopConfig()
	return dial[net.Conn](ctx, nx, address, nop.Compose3(
		nop.NewConnectFunc(config, network, nx.Logger),
		nop.NewCancelWatchFunc(),
		nop.NewObserveConnFunc(config, nx.Logger),
	))
}

// DialTLSContext establishes a new TLS [net.Conn] using [Network.TLSConfig].
func (nx *Network) DialTLSContext(ctx context.Context, network, address string) (net.Conn, error) {
	return nx.DialTLSContextWithConfig(ctx, network, address, nx.TLSConfig)
}

// DialTLSContextWithConfig is like [Network.DialTLSContext] but uses the
// given TLS config instead of [Network.TLSConfig].
//
// This is the hook the obfs-tls pipe uses to dial with a handshake
// configuration that varies per dial: a fake SNI and a pinned protocol
// version that must not leak into every other TLS dial this [*Network] does.
func (nx *Network) DialTLSContextWithConfig(ctx context.Context, network, address string, tlsConfig *tls.Config) (net.Conn, error) {
	config := nx.NewNopConfig()
	return dial[net.Conn](ctx, nx, address, nop.Compose5(
		nop.NewConnectFunc(config, network, nx.Logger),
		nop.NewCancelWatchFunc(),
		nop.NewObserveConnFunc(config, nx.Logger),
		nop.NewTLSHandshakeFunc(config, tlsConfig, nx.Logger),
		tlsConnAdapter{},
	))
}

// tlsConnAdapter adapts [nop.TLSConn] to be a [net.Conn].
type tlsConnAdapter struct{}

// Call implements [nop.Func].
func (tlsConnAdapter) Call(ctx context.Context, conn nop.TLSConn) (net.Conn, error) {
	return conn, nil
}

// dial resolves address and feeds each candidate through pipe until one
// succeeds, joining every per-address failure into the returned error.
func dial[T any](ctx context.Context, nx *Network, address string, pipe nop.Func[netip.AddrPort, T]) (T, error) {
	var zero T

	// Unpack the network endpoint
	domain, port, err := nx.SplitHostPort(address)
	if err != nil {
		return zero, err
	}

	// Map the domain to addresses
	addrs, err := nx.Resolver.LookupHost(ctx, domain)
	if err != nil {
		return zero, err
	}
	runtimex.Assert(len(addrs) >= 1)

	// Attempt dialing with each address
	var errv []error
	for _, addr := range addrs {
		epnt, err := netip.ParseAddrPort(net.JoinHostPort(addr, port))
		if err != nil {
			errv = append(errv, err)
			continue
		}
		result, err := pipe.Call(ctx, epnt)
		if err != nil {
			errv = append(errv, err)
			continue
		}
		return result, nil
	}
	return zero, errors.Join(errv...)
}

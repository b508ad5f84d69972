// SPDX-License-Identifier: GPL-3.0-or-later

package netcore

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"

	"github.com/bassosimone/nop"
	"github.com/bassosimone/runtimex"
)

// DialHTTP establishes a [*nop.HTTPConn] for the given request's URL.
//
// The directory client uses this to fetch exit/bridge listings with the
// same connect/observe/TLS/HTTP logging every other dial in this package gets.
func (nx *Network) DialHTTP(req *http.Request) (*nop.HTTPConn, error) {
	config := nx.NewNopConfig()

	// Determine the default port
	var defaultPort string
	switch req.URL.Scheme {
	case "http":
		defaultPort = "80"
	case "https":
		defaultPort = "443"
	default:
		return nil, fmt.Errorf("unsupported scheme: %q", req.URL.Scheme)
	}

	// Determine the endpoint to connect to
	hostname, port := req.URL.Host, ""
	if uh, up, err := net.SplitHostPort(req.URL.Host); err == nil {
		hostname, port = uh, up
	} else {
		port = defaultPort
	}
	endpoint := net.JoinHostPort(hostname, port)

	// Make the dialing pipeline
	var pipe nop.Func[netip.AddrPort, *nop.HTTPConn]
	switch req.URL.Scheme {
	case "http":
		pipe = nop.Compose2(
			nop.Func[netip.AddrPort, net.Conn](nop.Compose3(
				nop.NewConnectFunc(config, "tcp", nx.Logger),
				nop.NewCancelWatchFunc(),
				nop.NewObserveConnFunc(config, nx.Logger),
			)),
			nop.NewHTTPConnFuncPlain(config, nx.Logger),
		)

	case "https":
		tc := nx.TLSConfig.Clone()
		tc.ServerName = hostname
		tc.NextProtos = []string{"h2", "http/1.1"}
		pipe = nop.Compose2(
			nop.Func[netip.AddrPort, nop.TLSConn](nop.Compose4(
				nop.NewConnectFunc(config, "tcp", nx.Logger),
				nop.NewCancelWatchFunc(),
				nop.NewObserveConnFunc(config, nx.Logger),
				nop.NewTLSHandshakeFunc(config, tc, nx.Logger),
			)),
			nop.NewHTTPConnFuncTLS(config, nx.Logger),
		)
	}
	runtimex.Assert(pipe != nil) // Catches refactor that breaks scheme validation

	// Defer to the common dial code
	return dial[*nop.HTTPConn](req.Context(), nx, endpoint, pipe)
}

// SPDX-License-Identifier: GPL-3.0-or-later

// Package dial is the Pipe Dialer: given a bridge descriptor and a
// session identifier, it opens one pipe using the protocol named by
// that descriptor, bounded by a fixed per-attempt timeout.
//
// Grounded on `connect_once` in the original tunnel connector's
// `getsess` module, which dispatches on `desc.protocol` and wraps the
// dial in a 10-second `.timeout(...)`.
package dial

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rbmk-project/conduit/internal/bridge"
	"github.com/rbmk-project/conduit/internal/dial/obfstls"
	"github.com/rbmk-project/conduit/internal/dial/obfsudp"
	"github.com/rbmk-project/conduit/internal/mux"
	"github.com/rbmk-project/conduit/internal/netcore"
)

// Timeout is the wall-clock deadline bounding every dial attempt.
const Timeout = 10 * time.Second

// Errors returned by [Dialer.Dial]. A failed dial is never fatal to
// the Session Assembler: the caller logs it and abandons that bridge.
var (
	// ErrDialTimeout indicates the attempt did not complete within
	// [Timeout].
	ErrDialTimeout = errors.New("dial: timed out")

	// ErrDialFailed wraps an underlying transport error.
	ErrDialFailed = errors.New("dial: failed")
)

// ErrUnknownProtocol indicates a descriptor's Protocol tag is not one
// this dialer knows how to handle.
type ErrUnknownProtocol struct {
	Protocol string
}

func (e *ErrUnknownProtocol) Error() string {
	return fmt.Sprintf("dial: unknown protocol %q", e.Protocol)
}

// StatusFunc is invoked before the network attempt so the outer system
// can surface per-bridge progress (the original tunnel connector's
// `status_callback(TunnelStatus::PreConnect{...})`).
type StatusFunc func(protocol, addr string)

// Dialer opens bridge pipes over a [*netcore.Network].
//
// Use [NewDialer] to construct; the zero value has a nil Network and
// is not usable.
type Dialer struct {
	Network *netcore.Network
	Status  StatusFunc
}

// NewDialer constructs a [*Dialer] over nx. status may be nil, in
// which case no progress callback is invoked.
func NewDialer(nx *netcore.Network, status StatusFunc) *Dialer {
	return &Dialer{Network: nx, Status: status}
}

// Dial opens a single pipe for desc, keyed by sessionID, bounded by
// [Timeout].
func (d *Dialer) Dial(ctx context.Context, desc bridge.Descriptor, sessionID [16]byte) (mux.Pipe, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	if d.Status != nil {
		d.Status(desc.Protocol, desc.Endpoint)
	}

	meta := mux.FormatSessionID(sessionID)

	var pipe mux.Pipe
	var err error
	switch desc.Protocol {
	case bridge.ProtocolObfsUDP:
		keys, decErr := bridge.DecodeUDPKeyBlob(desc.KeyBlob)
		if decErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrDialFailed, decErr)
		}
		pipe, err = obfsudp.Dial(ctx, d.Network, desc.Endpoint, keys.TransportPublicKey, meta)

	case bridge.ProtocolObfsTLS:
		pipe, err = obfstls.Dial(ctx, d.Network, desc.Endpoint, desc.KeyBlob, meta)

	default:
		return nil, &ErrUnknownProtocol{Protocol: desc.Protocol}
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrDialTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrDialFailed, err)
	}
	return pipe, nil
}

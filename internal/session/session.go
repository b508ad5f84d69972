// SPDX-License-Identifier: GPL-3.0-or-later

// Package session implements the Session Assembler: it resolves an
// exit, fetches and filters its bridges, creates a multiplex keyed by
// the exit's end-to-end public key, fans out concurrent dials, and
// installs the Pipe Healer as the multiplex's drop companion.
//
// Grounded on the `EndpointSource::Binder` branch of `get_session` in
// the original tunnel connector's `getsess` module.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rbmk-project/conduit/internal/bridge"
	"github.com/rbmk-project/conduit/internal/config"
	"github.com/rbmk-project/conduit/internal/dial"
	"github.com/rbmk-project/conduit/internal/directory"
	"github.com/rbmk-project/conduit/internal/heal"
	"github.com/rbmk-project/conduit/internal/mux"
	"github.com/rbmk-project/conduit/internal/netcore"
)

// Errors surfaced by [Assemble]. Any of these means no multiplex is
// created and no dials are launched.
var (
	// ErrNoExit indicates the directory could not resolve an exit.
	ErrNoExit = errors.New("session: no exit available")

	// ErrNoBridges indicates the resolved exit has no bridges.
	ErrNoBridges = errors.New("session: no bridges for exit")
)

// TunnelCtx carries everything the Session Assembler and the Pipe
// Healer it installs need.
type TunnelCtx struct {
	// Network dials pipes and, indirectly, the directory.
	Network *netcore.Network

	// Directory resolves exits and bridges.
	Directory directory.Client

	// Policy is the user's bridge-selection and healing policy.
	Policy config.Policy

	// Activity gates the healer's redial cadence.
	Activity heal.ActivityWaiter

	// Status is invoked before each dial attempt. May be nil.
	Status dial.StatusFunc

	// Logger receives warnings about abandoned bridges and healing
	// failures. May be nil.
	Logger *slog.Logger
}

// Assemble resolves the closest exit to tctx.Policy.ExitHostname,
// fetches and filters its bridges, creates a multiplex, fans out one
// dial per eligible bridge without waiting for them, and installs the
// Pipe Healer as the multiplex's drop companion.
//
// Assemble returns a valid multiplex even if zero dials have completed
// by the time it returns: pipes arrive asynchronously as the detached
// dials finish. Callers must tolerate brief emptiness.
func Assemble(ctx context.Context, tctx TunnelCtx) (*mux.Multiplex, error) {
	exit, err := tctx.Directory.ClosestExit(ctx, tctx.Policy.ExitHostname)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoExit, err)
	}

	descs, err := tctx.Directory.BridgesFor(ctx, exit.Hostname)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoBridges, err)
	}
	if len(descs) == 0 {
		return nil, ErrNoBridges
	}

	filtered, peerKey, err := bridge.Select(descs, tctx.Policy.BridgePolicy())
	if err != nil {
		return nil, err
	}

	secretKey, err := newSecretKey()
	if err != nil {
		return nil, err
	}
	sessionID := mux.NewSessionID()
	m := mux.New(secretKey, peerKey, sessionID)

	dialer := dial.NewDialer(tctx.Network, tctx.Status)
	for _, d := range filtered {
		go dialOneDetached(dialer, m, d, sessionID, tctx.Logger)
	}

	installHealer(m, tctx, dialer, exit.Hostname, sessionID)

	return m, nil
}

// dialOneDetached dials d and attaches the pipe to m on success. It is
// meant to run in its own goroutine, detached from the caller's
// context: a failure here is logged and the bridge is abandoned, never
// propagated back to [Assemble]'s caller.
func dialOneDetached(dialer *dial.Dialer, m *mux.Multiplex, d bridge.Descriptor, sessionID [16]byte, logger *slog.Logger) {
	pipe, err := dialer.Dial(context.Background(), d, sessionID)
	if err != nil {
		if logger != nil {
			logger.Warn("pipe dial failed", slog.String("endpoint", d.Endpoint), slog.Any("err", err))
		}
		return
	}
	m.AddPipe(pipe)
}

// installHealer wires up a [heal.Healer] for m and registers its
// cancellation as m's drop companion.
func installHealer(m *mux.Multiplex, tctx TunnelCtx, dialer *dial.Dialer, exitHostname string, sessionID [16]byte) {
	healer := heal.New(m, tctx.Directory, dialer, tctx.Activity, tctx.Policy, exitHostname, sessionID, tctx.Logger)
	healCtx, cancel := context.WithCancel(context.Background())
	go healer.Run(healCtx)
	m.AddDropCompanion(cancel)
}

func newSecretKey() ([mux.KeySize]byte, error) {
	var key [mux.KeySize]byte
	_, err := rand.Read(key[:])
	return key, err
}

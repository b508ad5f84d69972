// SPDX-License-Identifier: GPL-3.0-or-later

// Package mux implements the shared, long-lived multiplex object that
// represents the end-to-end authenticated transport: a per-session
// secret key, the exit's multiplex public key, and the live pipes
// dialed for this session.
//
// Grounded on the `sosistab2::Multiplex` usage in the original tunnel
// connector's `getsess` module (`Multiplex::new`, `add_pipe`,
// `clear_dead_pipes`, `add_drop_friend`), reimplemented with
// [weak.Pointer] and [runtime.AddCleanup] standing in for the
// reference-counted `Arc`/`Weak` pair the Rust original used to avoid a
// cycle between the multiplex and its healer.
package mux

import (
	"runtime"
	"sync"
	"weak"
)

// KeySize is the length in bytes of a secret or public key.
const KeySize = 32

// Pipe is a live bidirectional transport dialed by the pipe dialer and
// attached to a [Multiplex].
type Pipe interface {
	// Protocol is the pipe's transport tag, e.g. "sosistab2-obfsudp".
	Protocol() string

	// PeerAddr is the dial address this pipe connects to.
	PeerAddr() string

	// Dead reports whether the pipe has permanently failed and
	// should be pruned on the next sweep.
	Dead() bool

	// Close releases the pipe's underlying resources.
	Close() error
}

// Multiplex is the shared transport object returned by the Session
// Assembler. Use [New] to construct.
type Multiplex struct {
	secretKey     [KeySize]byte
	peerPublicKey [KeySize]byte
	sessionID     [16]byte

	mu    sync.Mutex
	pipes []Pipe

	cleanupOnce sync.Once
}

// New creates a [*Multiplex] with the given per-session secret, the
// exit's multiplex public key, and the session identifier shared by
// every pipe dialed for this session.
func New(secretKey, peerPublicKey [KeySize]byte, sessionID [16]byte) *Multiplex {
	return &Multiplex{
		secretKey:     secretKey,
		peerPublicKey: peerPublicKey,
		sessionID:     sessionID,
	}
}

// PeerPublicKey returns the exit's end-to-end multiplex public key.
func (m *Multiplex) PeerPublicKey() [KeySize]byte {
	return m.peerPublicKey
}

// SessionID returns the session identifier every pipe of this
// multiplex was dialed with.
func (m *Multiplex) SessionID() [16]byte {
	return m.sessionID
}

// AddPipe attaches a successfully dialed pipe to the multiplex.
func (m *Multiplex) AddPipe(p Pipe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pipes = append(m.pipes, p)
}

// PipeCount returns the number of pipes currently attached.
func (m *Multiplex) PipeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pipes)
}

// PruneDead removes every pipe reporting [Pipe.Dead] and closes it,
// returning the number pruned.
func (m *Multiplex) PruneDead() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	alive := m.pipes[:0]
	pruned := 0
	for _, p := range m.pipes {
		if p.Dead() {
			p.Close()
			pruned++
			continue
		}
		alive = append(alive, p)
	}
	m.pipes = alive
	return pruned
}

// Weak returns a weak reference to m. The Pipe Healer holds only this
// reference, never m itself, so the multiplex can be collected once
// the caller drops its last strong reference.
func Weak(m *Multiplex) weak.Pointer[Multiplex] {
	return weak.Make(m)
}

// AddDropCompanion registers cancel to run when m becomes unreachable
// and is collected. The Session Assembler uses this to tie the Pipe
// Healer's lifetime to the multiplex without the healer holding a
// strong reference back to it (which would create a reference cycle
// and keep both alive forever).
func (m *Multiplex) AddDropCompanion(cancel func()) {
	runtime.AddCleanup(m, func(c func()) { c() }, cancel)
}

// SPDX-License-Identifier: GPL-3.0-or-later

// Package heal implements the Pipe Healer: a background task bound to
// a multiplex only by a weak reference, which periodically prunes dead
// pipes and redials replacements while the user is active.
//
// Grounded on the drop-friend goroutine in the original tunnel
// connector's `getsess` module (the `weak_multiplex.upgrade()` loop
// with its `dead_count`, jittered dwell, and bridges-only abort rule),
// reimplemented here with [weak.Pointer] in place of `Weak<Multiplex>`.
package heal

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
	"weak"

	"github.com/rbmk-project/conduit/internal/bridge"
	"github.com/rbmk-project/conduit/internal/config"
	"github.com/rbmk-project/conduit/internal/dial"
	"github.com/rbmk-project/conduit/internal/directory"
	"github.com/rbmk-project/conduit/internal/mux"
)

// ActivityWaiter blocks until the user has been active within a
// window. Satisfied by [*activity.Oracle].
type ActivityWaiter interface {
	Wait(ctx context.Context, window time.Duration) error
}

// Healer periodically prunes and redials a multiplex's pipes.
//
// Construct with [New]. A Healer holds only a weak reference to its
// multiplex: it never prevents the multiplex from being collected.
type Healer struct {
	weakMux      weak.Pointer[mux.Multiplex]
	directory    directory.Client
	dialer       *dial.Dialer
	activity     ActivityWaiter
	policy       config.Policy
	exitHostname string
	sessionID    [16]byte
	logger       *slog.Logger

	deadCount int
}

// New constructs a [*Healer] bound to m via a weak reference.
func New(
	m *mux.Multiplex,
	dir directory.Client,
	dialer *dial.Dialer,
	activityWaiter ActivityWaiter,
	policy config.Policy,
	exitHostname string,
	sessionID [16]byte,
	logger *slog.Logger,
) *Healer {
	return &Healer{
		weakMux:      mux.Weak(m),
		directory:    dir,
		dialer:       dialer,
		activity:     activityWaiter,
		policy:       policy,
		exitHostname: exitHostname,
		sessionID:    sessionID,
		logger:       logger,
	}
}

// Run executes the healing loop until ctx is cancelled or the weak
// reference fails to upgrade, meaning the multiplex has been dropped.
//
// Each iteration samples a jittered dwell, waits for the user to have
// been recently active, sleeps the dwell, then attempts to upgrade the
// weak reference before doing any work.
func (h *Healer) Run(ctx context.Context) {
	for {
		dwell := jitter(h.policy.HealJitterMin, h.policy.HealJitterMax)

		if err := h.activity.Wait(ctx, h.policy.HealActivityWindow); err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(dwell):
		}

		m := h.weakMux.Value()
		if m == nil {
			return
		}

		h.deadCount += m.PruneDead()
		h.healRound(ctx, m)
	}
}

// healRound drains h.deadCount by redialing one replacement pipe at a
// time, stopping early (without error) if the first shuffled candidate
// violates the bridges-only policy.
func (h *Healer) healRound(ctx context.Context, m *mux.Multiplex) {
	for h.deadCount > 0 {
		descs, err := h.directory.BridgesFor(ctx, h.exitHostname)
		if err != nil {
			h.logWarn("heal: cannot refresh bridges", err)
			return
		}
		if len(descs) == 0 {
			return
		}

		rand.Shuffle(len(descs), func(i, j int) { descs[i], descs[j] = descs[j], descs[i] })
		first := descs[0]

		if !bridge.Allowed(first, h.policy.BridgePolicy()) {
			// Policy compliance overrides liveness: abort this round
			// without decrementing dead_count.
			return
		}

		pipe, err := h.dialer.Dial(ctx, first, h.sessionID)
		if err != nil {
			h.logWarn("heal: redial failed", err)
			return
		}
		m.AddPipe(pipe)
		h.deadCount--
	}
}

func (h *Healer) logWarn(msg string, err error) {
	if h.logger != nil {
		h.logger.Warn(msg, slog.Any("err", err))
	}
}

// jitter samples a uniform random duration in [min, max).
func jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	span := max - min
	return min + time.Duration(rand.Int64N(int64(span)))
}

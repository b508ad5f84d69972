// SPDX-License-Identifier: GPL-3.0-or-later

// Package activity tracks whether the user has touched the tunnel
// recently, gating the Pipe Healer so it does not churn the network
// while the device is idle.
//
// Grounded on the `wait_activity` primitive referenced (but not
// included in the retrieved sources) by the original tunnel connector's
// `getsess` module; reconstructed here as a lock-free oracle in the
// style of [github.com/bassosimone/nop]'s atomic-backed fields.
package activity

import (
	"context"
	"sync/atomic"
	"time"
)

// pollInterval is how often [Oracle.Wait] rechecks the activity
// window while blocked.
const pollInterval = 1 * time.Second

// Oracle tracks the most recent user-activity timestamp.
//
// The zero value records its last activity at the Unix epoch, so it
// reports no recent activity until [Oracle.Touch] is called; use [New]
// to construct an oracle whose activity clock starts now.
type Oracle struct {
	lastActivityUnixNano atomic.Int64
	timeNow              func() time.Time
}

// New creates an [*Oracle] whose activity clock starts now.
func New() *Oracle {
	o := &Oracle{timeNow: time.Now}
	o.Touch()
	return o
}

// Touch records activity at the current time.
func (o *Oracle) Touch() {
	now := o.timeNow
	if now == nil {
		now = time.Now
	}
	o.lastActivityUnixNano.Store(now().UnixNano())
}

// Active reports whether the last touch happened within window of now.
func (o *Oracle) Active(window time.Duration) bool {
	now := o.timeNow
	if now == nil {
		now = time.Now
	}
	last := time.Unix(0, o.lastActivityUnixNano.Load())
	return now().Sub(last) <= window
}

// Wait blocks until the user has been active within window, or until
// ctx is cancelled. It returns ctx.Err() in the latter case.
func (o *Oracle) Wait(ctx context.Context, window time.Duration) error {
	if o.Active(window) {
		return nil
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if o.Active(window) {
				return nil
			}
		}
	}
}

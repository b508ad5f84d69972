// SPDX-License-Identifier: GPL-3.0-or-later

package directory

import (
	"context"
	"sync"

	"github.com/rbmk-project/conduit/internal/bridge"
)

// Fake is an in-memory [Client] for tests: a fixed closest exit and a
// per-hostname bridge table that can be mutated mid-test to exercise
// the Pipe Healer's "refresh the bridge list" step.
type Fake struct {
	mu            sync.Mutex
	closest       bridge.Exit
	closestErr    error
	bridgesByExit map[string][]bridge.Descriptor
}

var _ Client = (*Fake)(nil)

// NewFake constructs a [*Fake] that resolves every hint to closest.
func NewFake(closest bridge.Exit) *Fake {
	return &Fake{closest: closest, bridgesByExit: make(map[string][]bridge.Descriptor)}
}

// SetBridges sets the bridge list returned for hostname.
func (f *Fake) SetBridges(hostname string, descs []bridge.Descriptor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bridgesByExit[hostname] = descs
}

// FailClosestExit makes [Fake.ClosestExit] return err on every call.
func (f *Fake) FailClosestExit(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closestErr = err
}

// ClosestExit implements [Client].
func (f *Fake) ClosestExit(ctx context.Context, hostnameHint string) (bridge.Exit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closestErr != nil {
		return bridge.Exit{}, f.closestErr
	}
	return f.closest, nil
}

// BridgesFor implements [Client].
func (f *Fake) BridgesFor(ctx context.Context, hostname string) ([]bridge.Descriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bridge.Descriptor, len(f.bridgesByExit[hostname]))
	copy(out, f.bridgesByExit[hostname])
	return out, nil
}

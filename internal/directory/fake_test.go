// SPDX-License-Identifier: GPL-3.0-or-later

package directory_test

import (
	"errors"
	"testing"

	"github.com/rbmk-project/conduit/internal/bridge"
	"github.com/rbmk-project/conduit/internal/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFake_ClosestExit(t *testing.T) {
	f := directory.NewFake(bridge.Exit{Hostname: "ex.example"})
	exit, err := f.ClosestExit(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, "ex.example", exit.Hostname)
}

func TestFake_ClosestExitFailure(t *testing.T) {
	f := directory.NewFake(bridge.Exit{})
	sentinel := errors.New("no exit available")
	f.FailClosestExit(sentinel)
	_, err := f.ClosestExit(t.Context(), "")
	assert.ErrorIs(t, err, sentinel)
}

func TestFake_BridgesFor(t *testing.T) {
	f := directory.NewFake(bridge.Exit{Hostname: "ex.example"})
	assert.Empty(t, mustBridges(t, f, "ex.example"))

	descs := []bridge.Descriptor{{Endpoint: "1.2.3.4:443", Protocol: bridge.ProtocolObfsUDP}}
	f.SetBridges("ex.example", descs)
	assert.Equal(t, descs, mustBridges(t, f, "ex.example"))
}

func mustBridges(t *testing.T, f *directory.Fake, hostname string) []bridge.Descriptor {
	t.Helper()
	descs, err := f.BridgesFor(t.Context(), hostname)
	require.NoError(t, err)
	return descs
}

// SPDX-License-Identifier: GPL-3.0-or-later

package bridge_test

import (
	"testing"

	"github.com/rbmk-project/conduit/internal/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkDescriptor(protocol, allocGroup string, keys *bridge.UDPKeys) bridge.Descriptor {
	d := bridge.Descriptor{
		Endpoint:   "1.2.3.4:443",
		Protocol:   protocol,
		AllocGroup: allocGroup,
	}
	if keys != nil {
		d.KeyBlob = bridge.EncodeUDPKeyBlob(*keys)
	}
	return d
}

func TestFilter_BridgesOnly(t *testing.T) {
	mk := [bridge.KeySize]byte{1}
	descs := []bridge.Descriptor{
		mkDescriptor(bridge.ProtocolObfsUDP, "direct", &bridge.UDPKeys{MultiplexPublicKey: mk}),
		mkDescriptor(bridge.ProtocolObfsUDP, "eu", &bridge.UDPKeys{MultiplexPublicKey: mk}),
	}

	filtered := bridge.Filter(descs, bridge.Policy{BridgesOnly: true})
	require.Len(t, filtered, 1)
	assert.Equal(t, "eu", filtered[0].AllocGroup)

	unfiltered := bridge.Filter(descs, bridge.Policy{BridgesOnly: false})
	assert.Len(t, unfiltered, 2)
}

func TestAllowed(t *testing.T) {
	direct := mkDescriptor(bridge.ProtocolObfsUDP, "direct", nil)
	eu := mkDescriptor(bridge.ProtocolObfsUDP, "eu", nil)

	assert.False(t, bridge.Allowed(direct, bridge.Policy{BridgesOnly: true}))
	assert.True(t, bridge.Allowed(direct, bridge.Policy{BridgesOnly: false}))
	assert.True(t, bridge.Allowed(eu, bridge.Policy{BridgesOnly: true}))
}

func TestMultiplexKey_ScanOrderIndependence(t *testing.T) {
	mk := [bridge.KeySize]byte{0xAB}
	tlsOnly := mkDescriptor(bridge.ProtocolObfsTLS, "eu", nil)
	udp1 := mkDescriptor(bridge.ProtocolObfsUDP, "eu", &bridge.UDPKeys{MultiplexPublicKey: mk})
	udp2 := mkDescriptor(bridge.ProtocolObfsUDP, "us", &bridge.UDPKeys{MultiplexPublicKey: mk})

	k1, err := bridge.MultiplexKey([]bridge.Descriptor{tlsOnly, udp1, udp2})
	require.NoError(t, err)
	k2, err := bridge.MultiplexKey([]bridge.Descriptor{udp2, tlsOnly, udp1})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Equal(t, mk, k1)
}

func TestMultiplexKey_NoKey(t *testing.T) {
	descs := []bridge.Descriptor{
		mkDescriptor(bridge.ProtocolObfsTLS, "eu", nil),
	}
	_, err := bridge.MultiplexKey(descs)
	assert.ErrorIs(t, err, bridge.ErrNoKey)
}

func TestMultiplexKey_MalformedBlobSkipped(t *testing.T) {
	mk := [bridge.KeySize]byte{0x42}
	malformed := bridge.Descriptor{Protocol: bridge.ProtocolObfsUDP, KeyBlob: []byte{1, 2, 3}}
	ok := mkDescriptor(bridge.ProtocolObfsUDP, "eu", &bridge.UDPKeys{MultiplexPublicKey: mk})

	k, err := bridge.MultiplexKey([]bridge.Descriptor{malformed, ok})
	require.NoError(t, err)
	assert.Equal(t, mk, k)
}

func TestSelect(t *testing.T) {
	mk := [bridge.KeySize]byte{9}
	descs := []bridge.Descriptor{
		mkDescriptor(bridge.ProtocolObfsUDP, "direct", &bridge.UDPKeys{MultiplexPublicKey: mk}),
		mkDescriptor(bridge.ProtocolObfsUDP, "eu", &bridge.UDPKeys{MultiplexPublicKey: mk}),
	}
	filtered, key, err := bridge.Select(descs, bridge.Policy{BridgesOnly: true})
	require.NoError(t, err)
	assert.Equal(t, mk, key)
	require.Len(t, filtered, 1)
	assert.Equal(t, "eu", filtered[0].AllocGroup)
}

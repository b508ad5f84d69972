// SPDX-License-Identifier: GPL-3.0-or-later

package bridge_test

import (
	"testing"

	"github.com/rbmk-project/conduit/internal/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUDPKeyBlob_RoundTrip(t *testing.T) {
	keys := bridge.UDPKeys{
		TransportPublicKey: [bridge.KeySize]byte{1, 2, 3},
		MultiplexPublicKey: [bridge.KeySize]byte{4, 5, 6},
	}
	blob := bridge.EncodeUDPKeyBlob(keys)
	assert.Len(t, blob, 2*bridge.KeySize)

	got, err := bridge.DecodeUDPKeyBlob(blob)
	require.NoError(t, err)
	assert.Equal(t, keys, got)
}

func TestDecodeUDPKeyBlob_Malformed(t *testing.T) {
	_, err := bridge.DecodeUDPKeyBlob([]byte{1, 2, 3})
	assert.ErrorIs(t, err, bridge.ErrMalformedKeyBlob)
}

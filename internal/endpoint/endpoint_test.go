// SPDX-License-Identifier: GPL-3.0-or-later

package endpoint_test

import (
	"crypto/rand"
	"testing"

	"github.com/rbmk-project/conduit/internal/endpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	var pk [endpoint.KeySize]byte
	_, err := rand.Read(pk[:])
	require.NoError(t, err)

	addrs := []string{"1.2.3.4:443", "[::1]:8080", "bridge.example.com:4433"}
	for _, addr := range addrs {
		s := endpoint.Format(pk, addr)
		got, err := endpoint.Parse(s)
		require.NoError(t, err)
		assert.Equal(t, addr, got.Addr)
		assert.Equal(t, pk, got.PublicKey)
	}
}

func TestParse_MalformedURL(t *testing.T) {
	_, err := endpoint.Parse("no-at-sign-here")
	assert.ErrorIs(t, err, endpoint.ErrMalformedURL)
}

func TestParse_BadHex(t *testing.T) {
	_, err := endpoint.Parse("nothex@1.2.3.4:443")
	assert.ErrorIs(t, err, endpoint.ErrBadHex)

	shortHex := "aa@1.2.3.4:443"
	_, err = endpoint.Parse(shortHex)
	assert.ErrorIs(t, err, endpoint.ErrBadHex)
}

func TestParse_BadAddr(t *testing.T) {
	validHex := "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	_, err := endpoint.Parse(validHex + "@not-an-address")
	assert.ErrorIs(t, err, endpoint.ErrBadAddr)
}

// Parse never panics regardless of input shape.
func TestParse_Totality(t *testing.T) {
	inputs := []string{"", "@", "@@@", "pk@", "@host:1", "a@b@c:1"}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			endpoint.Parse(in)
		})
	}
}

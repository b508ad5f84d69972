// SPDX-License-Identifier: GPL-3.0-or-later

package dial_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rbmk-project/conduit/internal/bridge"
	"github.com/rbmk-project/conduit/internal/dial"
	"github.com/rbmk-project/conduit/internal/netcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNetwork returns a [*netcore.Network] whose dial always succeeds
// by handing back one end of an in-memory pipe, so these tests never
// touch the real network.
func fakeNetwork() *netcore.Network {
	nx := netcore.NewNetwork()
	nx.Resolver = fakeResolver{}
	nx.DialContextFunc = func(ctx context.Context, network, address string) (net.Conn, error) {
		client, server := net.Pipe()
		go func() {
			defer server.Close()
			buf := make([]byte, 4096)
			for {
				if _, err := server.Read(buf); err != nil {
					return
				}
			}
		}()
		return client, nil
	}
	return nx
}

type fakeResolver struct{}

func (fakeResolver) LookupHost(ctx context.Context, domain string) ([]string, error) {
	return []string{"127.0.0.1"}, nil
}

func TestDialer_ObfsUDP(t *testing.T) {
	nx := fakeNetwork()
	var gotProtocol, gotAddr string
	d := dial.NewDialer(nx, func(protocol, addr string) {
		gotProtocol, gotAddr = protocol, addr
	})

	desc := bridge.Descriptor{
		Endpoint: "127.0.0.1:1234",
		Protocol: bridge.ProtocolObfsUDP,
		KeyBlob: bridge.EncodeUDPKeyBlob(bridge.UDPKeys{
			TransportPublicKey: [bridge.KeySize]byte{1},
			MultiplexPublicKey: [bridge.KeySize]byte{2},
		}),
	}

	pipe, err := d.Dial(t.Context(), desc, [16]byte{0xAA})
	require.NoError(t, err)
	require.NotNil(t, pipe)
	defer pipe.Close()

	assert.Equal(t, bridge.ProtocolObfsUDP, pipe.Protocol())
	assert.Equal(t, "127.0.0.1:1234", pipe.PeerAddr())
	assert.Equal(t, bridge.ProtocolObfsUDP, gotProtocol)
	assert.Equal(t, "127.0.0.1:1234", gotAddr)
}

func TestDialer_UnknownProtocol(t *testing.T) {
	nx := fakeNetwork()
	d := dial.NewDialer(nx, nil)

	desc := bridge.Descriptor{Endpoint: "127.0.0.1:1234", Protocol: "carrier-pigeon"}
	_, err := d.Dial(t.Context(), desc, [16]byte{})

	var unknown *dial.ErrUnknownProtocol
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "carrier-pigeon", unknown.Protocol)
}

func TestDialer_MalformedKeyBlob(t *testing.T) {
	nx := fakeNetwork()
	d := dial.NewDialer(nx, nil)

	desc := bridge.Descriptor{
		Endpoint: "127.0.0.1:1234",
		Protocol: bridge.ProtocolObfsUDP,
		KeyBlob:  []byte{1, 2, 3},
	}
	_, err := d.Dial(t.Context(), desc, [16]byte{})
	assert.ErrorIs(t, err, dial.ErrDialFailed)
}

func TestDialer_ContextTimeout(t *testing.T) {
	nx := netcore.NewNetwork()
	nx.Resolver = fakeResolver{}
	nx.DialContextFunc = func(ctx context.Context, network, address string) (net.Conn, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	d := dial.NewDialer(nx, nil)
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	desc := bridge.Descriptor{
		Endpoint: "127.0.0.1:1234",
		Protocol: bridge.ProtocolObfsUDP,
		KeyBlob: bridge.EncodeUDPKeyBlob(bridge.UDPKeys{
			TransportPublicKey: [bridge.KeySize]byte{1},
			MultiplexPublicKey: [bridge.KeySize]byte{2},
		}),
	}
	_, err := d.Dial(ctx, desc, [16]byte{})
	assert.Error(t, err)
}

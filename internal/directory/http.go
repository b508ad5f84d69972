// SPDX-License-Identifier: GPL-3.0-or-later

package directory

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rbmk-project/conduit/internal/bridge"
	"github.com/rbmk-project/conduit/internal/netcore"
	"github.com/rbmk-project/conduit/pkg/common/dialonce"
)

// HTTPClient is a [Client] backed by a JSON-over-HTTPS directory API.
//
// Use [NewHTTPClient] to construct. The zero value has a nil Network
// and BaseURL and is not usable.
type HTTPClient struct {
	// BaseURL is the directory's base URL, e.g. "https://directory.example.org".
	BaseURL string

	// Network dials the HTTP connections this client makes.
	Network *netcore.Network

	// Logger logs each round trip. Defaults to Network.Logger.
	Logger *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient constructs an [*HTTPClient] for baseURL over nx.
func NewHTTPClient(baseURL string, nx *netcore.Network) *HTTPClient {
	return &HTTPClient{BaseURL: baseURL, Network: nx, Logger: nx.Logger}
}

// ClosestExit implements [Client].
func (c *HTTPClient) ClosestExit(ctx context.Context, hostnameHint string) (bridge.Exit, error) {
	var out struct {
		Hostname string `json:"hostname"`
	}
	url := fmt.Sprintf("%s/exits/closest?hint=%s", c.BaseURL, hostnameHint)
	if err := c.getJSON(ctx, url, &out); err != nil {
		return bridge.Exit{}, err
	}
	return bridge.Exit{Hostname: out.Hostname}, nil
}

// BridgesFor implements [Client].
func (c *HTTPClient) BridgesFor(ctx context.Context, hostname string) ([]bridge.Descriptor, error) {
	var out []httpBridgeDescriptor
	url := fmt.Sprintf("%s/bridges?hostname=%s", c.BaseURL, hostname)
	if err := c.getJSON(ctx, url, &out); err != nil {
		return nil, err
	}
	descs := make([]bridge.Descriptor, 0, len(out))
	for _, d := range out {
		descs = append(descs, d.toDescriptor())
	}
	return descs, nil
}

// httpBridgeDescriptor is the wire shape of a bridge descriptor, with
// the key blob hex-encoded since JSON has no native binary type.
type httpBridgeDescriptor struct {
	Endpoint   string `json:"endpoint"`
	Protocol   string `json:"protocol"`
	KeyBlobHex string `json:"key_blob_hex"`
	AllocGroup string `json:"alloc_group"`
}

func (d httpBridgeDescriptor) toDescriptor() bridge.Descriptor {
	blob, _ := hex.DecodeString(d.KeyBlobHex)
	return bridge.Descriptor{
		Endpoint:   d.Endpoint,
		Protocol:   d.Protocol,
		KeyBlob:    blob,
		AllocGroup: d.AllocGroup,
	}
}

// getJSON fetches url and decodes its JSON body into out.
//
// Each call dials over its own [dialonce]-guarded copy of the network:
// the directory is expected to answer on the first candidate address it
// hands back, so a second underlying dial attempt for the same request
// is treated as a bug rather than silently retried. Round-trip logging
// is [*nop.HTTPConn]'s own job (it emits httpRoundTripStart/Done
// itself), so this method does not duplicate it.
func (c *HTTPClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	nx := *c.Network
	nx.DialContextFunc = dialonce.Wrap(c.Network.DialContextFunc)
	nx.Logger = c.Logger

	conn, err := nx.DialHTTP(req)
	if err != nil {
		return err
	}
	defer conn.Close()

	resp, err := conn.RoundTrip(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("directory: unexpected status %d for %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

package httpds

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Remote is a batch source backed by one URL. The response body streams
// straight into the splitter; a ".gz" URL is decompressed transparently.
type Remote struct {
	url    string
	client *Client
}

// NewRemote returns a source for url. A nil client gets default settings.
func NewRemote(url string, client *Client) *Remote {
	if client == nil {
		client = NewClient(Config{})
	}
	return &Remote{url: url, client: client}
}

func (r *Remote) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := r.client.Get(ctx, r.url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		resp.Body.Close()
		return nil, fmt.Errorf("httpds: GET %s: status %d", r.url, resp.StatusCode)
	}
	if !strings.HasSuffix(r.url, ".gz") {
		return resp.Body, nil
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("httpds: GET %s: %w", r.url, err)
	}
	return &gzipBody{zr: zr, body: resp.Body}, nil
}

type gzipBody struct {
	zr   *gzip.Reader
	body io.ReadCloser
}

func (g *gzipBody) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipBody) Close() error {
	zerr := g.zr.Close()
	berr := g.body.Close()
	if zerr != nil {
		return zerr
	}
	return berr
}

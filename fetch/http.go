package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTP fetches bundles from a static origin or CDN.
type HTTP struct {
	BaseURL  string
	Client   *http.Client // nil => http.DefaultClient
	Ext      string       // "" => DefaultExt
	MaxBytes int64        // <=0 => unlimited
}

var _ Source = HTTP{}

// URL returns the location of bundle name.
func (h HTTP) URL(name string) string {
	esc := url.PathEscape(name)
	return strings.TrimRight(h.BaseURL, "/") + "/" + esc + "/" + esc + coalesceExt(h.Ext)
}

func (h HTTP) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	u := h.URL(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{URL: u, Code: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if h.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, h.MaxBytes+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if h.MaxBytes > 0 && int64(len(b)) > h.MaxBytes {
		return nil, fmt.Errorf("fetch %s: body exceeds %d bytes", u, h.MaxBytes)
	}
	return b, nil
}

package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Remote stores files in an external object store. Files live under the
// site's namespace and every request carries the site API token.
type Remote struct {
	endpoint string
	siteID   string
	token    string
	client   *http.Client
}

// NewRemote builds a client for the object store at endpoint.
func NewRemote(endpoint, siteID, token string) *Remote {
	return &Remote{
		endpoint: endpoint,
		siteID:   siteID,
		token:    token,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Remote) fileURL(filename string) string {
	return fmt.Sprintf("%s/sites/%s/files/%s", r.endpoint, r.siteID, filename)
}

func (r *Remote) do(ctx context.Context, method, filename string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.fileURL(filename), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, filename, err)
	}
	return resp, nil
}

func (r *Remote) Put(ctx context.Context, filename string, data []byte) error {
	resp, err := r.do(ctx, http.MethodPut, filename, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("put %s: object store returned %s", filename, resp.Status)
	}
	return nil
}

func (r *Remote) Get(ctx context.Context, filename string) ([]byte, error) {
	resp, err := r.do(ctx, http.MethodGet, filename, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("get %s: not found", filename)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get %s: object store returned %s", filename, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (r *Remote) Delete(ctx context.Context, filename string) error {
	resp, err := r.do(ctx, http.MethodDelete, filename, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete %s: object store returned %s", filename, resp.Status)
	}
	return nil
}

func (r *Remote) URL(filename string) string {
	return r.fileURL(filename)
}

func (r *Remote) Name() string { return "remote" }

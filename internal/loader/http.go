package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// contractAccept prefers YAML contracts but takes JSON and JSON Schema.
const contractAccept = "application/yaml, application/x-yaml;q=0.9, application/json;q=0.8, application/schema+json;q=0.8, */*;q=0.1"

// StatusError reports a remote contract that answered with a non-2xx status.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status %s", e.URL, e.Status)
}

// fetchContract downloads a remote contract document. Bodies larger than
// MaxContractSize are rejected rather than truncated.
func fetchContract(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	if client == nil {
		return nil, ErrHTTPDisabled
	}
	if url == "" {
		return nil, ErrNoLocation
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", contractAccept)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{URL: url, Code: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxContractSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxContractSize {
		return nil, fmt.Errorf("%w: %s", ErrContractTooLarge, url)
	}
	return data, nil
}

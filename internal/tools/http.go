package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPOptions bounds outbound fetches made on the model's behalf.
type HTTPOptions struct {
	Timeout  duration `toml:"timeout"`
	MaxBytes int64    `toml:"max_bytes"`
}

// duration decodes TOML strings like "10s" into a time.Duration.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

const (
	defaultFetchTimeout = 15 * time.Second
	defaultFetchLimit   = 128 * 1024
)

type httpGetInput struct {
	URL string `json:"url" jsonschema_description:"Absolute http or https URL to fetch."`
}

// HTTPGet fetches a URL and returns its body, truncated to the configured
// byte limit.
func HTTPGet(opts HTTPOptions) Tool {
	timeout := time.Duration(opts.Timeout)
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	limit := opts.MaxBytes
	if limit <= 0 {
		limit = defaultFetchLimit
	}
	client := &http.Client{Timeout: timeout}
	return Tool{
		Name:        "http_get",
		Description: "Fetch the body of an http or https URL as text.",
		Parameters:  schemaFor[httpGetInput](),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in httpGetInput
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("decode arguments: %w", err)
			}
			if !strings.HasPrefix(in.URL, "http://") && !strings.HasPrefix(in.URL, "https://") {
				return "", fmt.Errorf("unsupported url %q", in.URL)
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, in.URL, nil)
			if err != nil {
				return "", err
			}
			resp, err := client.Do(req)
			if err != nil {
				return "", err
			}
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return "", fmt.Errorf("http %d from %s", resp.StatusCode, in.URL)
			}
			body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
			if err != nil {
				return "", err
			}
			if int64(len(body)) > limit {
				return string(body[:limit]) + "\n-- truncated --\n", nil
			}
			return string(body), nil
		},
	}
}

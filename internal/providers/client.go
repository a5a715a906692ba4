package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/byStayo/game-percentiles-sub001/internal/retry"
)

// HTTPError is a non-2xx provider response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider error: status=%d, body=%s", e.StatusCode, e.Body)
}

// GetJSON fetches a URL and decodes the JSON body into out, retrying under
// the given policy. Rate limits (429) and server errors (5xx) are retried;
// any other non-2xx status is permanent and fails the call immediately.
func GetJSON(ctx context.Context, client *http.Client, policy *retry.Policy, url string, headers map[string]string, out interface{}) error {
	return policy.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("creating request: %w", err))
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("making request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			herr := &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return herr
			}
			return retry.Permanent(herr)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			// A malformed body will not get better on retry.
			return retry.Permanent(fmt.Errorf("decoding response: %w", err))
		}

		return nil
	})
}

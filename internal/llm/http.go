package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jorge-barreto/augmentor/internal/failure"
)

// postJSON sends payload to url and decodes a 200 response into out.
// Transport errors and non-200 statuses come back as ExternalCallError.
func postJSON(ctx context.Context, client *http.Client, service, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return failure.External(service, err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return failure.External(service, err)
	}
	if res.StatusCode != http.StatusOK {
		return failure.External(service, fmt.Errorf("status %d: %s", res.StatusCode, truncate(string(resBody), 300)))
	}
	if err := json.Unmarshal(resBody, out); err != nil {
		return failure.External(service, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

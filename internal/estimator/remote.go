package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type remoteSpec struct {
	URL     string `json:"url"`
	Timeout string `json:"timeout,omitempty"`
}

type remoteRequest struct {
	Features []float64 `json:"features"`
}

// Prediction entries are pointers so a JSON null (NaN from pandas or orjson)
// is told apart from 0.
type remoteResponse struct {
	Prediction []*float64 `json:"prediction"`
	Error      string    `json:"error,omitempty"`
}

// remote delegates prediction to an HTTP model server.
type remote struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

func (s *remoteSpec) build(client *http.Client) (Estimator, error) {
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("remote.url: invalid %q", s.URL)
	}
	timeout, err := parseTimeout(s.Timeout)
	if err != nil {
		return nil, fmt.Errorf("remote.timeout: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &remote{url: s.URL, timeout: timeout, http: client}, nil
}

func (r *remote) Predict(ctx context.Context, x []float64) ([]float64, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	body, err := json.Marshal(remoteRequest{Features: x})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model server request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("model server status=%d: %s", res.StatusCode, bytes.TrimSpace(msg))
	}

	var out remoteResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("model server: %s", out.Error)
	}

	y := make([]float64, len(out.Prediction))
	for i, v := range out.Prediction {
		if v == nil {
			return nil, fmt.Errorf("model server: null at output %d", i)
		}
		y[i] = *v
	}
	return y, nil
}

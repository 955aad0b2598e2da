package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bus-route-viewer/internal/platform/obs"
	"bus-route-viewer/internal/ports"
)

// HTTPOptimizer implements RouteOptimizer and LivenessProber against the
// remote optimizer's HTTP API (POST /optimize, GET /).
//
// It returns the optimizer's status and body untouched; interpreting them is
// left to the normalizer. Transient failures are retried with backoff.
//
// The optimizer is safe for concurrent use.
type HTTPOptimizer struct {
	session     *http.Client
	baseURL     string
	maxAttempts int
	backoff     time.Duration
}

type optimizeRequest struct {
	RouteNo string `json:"route_no"`
}

func NewHTTPOptimizer(baseURL string, timeout time.Duration) (*HTTPOptimizer, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("optimizer base url is empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse optimizer base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("optimizer base url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPOptimizer{
		session:     &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}, nil
}

// BaseURL returns the optimizer root this client talks to.
func (o *HTTPOptimizer) BaseURL() string { return o.baseURL }

// Optimize posts {route_no} to /optimize and returns the final response.
func (o *HTTPOptimizer) Optimize(ctx context.Context, routeNo string) (_ ports.RawResponse, err error) {
	defer obs.Time(ctx, "optimizer.Optimize")(&err)

	payload, err := json.Marshal(optimizeRequest{RouteNo: routeNo})
	if err != nil {
		return ports.RawResponse{}, fmt.Errorf("marshal optimize request: %w", err)
	}

	endpoint := o.baseURL + "/optimize"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.RawResponse{}, fmt.Errorf("optimize route %q: %w", routeNo, err)
	}

	return resp, nil
}

// Probe calls the liveness endpoint once; any 2xx counts as reachable.
func (o *HTTPOptimizer) Probe(ctx context.Context) (err error) {
	defer obs.Time(ctx, "optimizer.Probe")(&err)

	req, err := o.newRequest(ctx, http.MethodGet, o.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("probe request: %w", err)
	}

	resp, err := o.do(req)
	if err != nil {
		return fmt.Errorf("probe optimizer: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("probe optimizer: %w", &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(resp.Body)),
		})
	}

	return nil
}

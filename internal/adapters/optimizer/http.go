package optimizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bus-route-viewer/internal/ports"

	"github.com/rs/zerolog/log"
)

// Upper bound on a response body kept in memory.
const maxBodyBytes = 4 << 20

type httpStatusError struct {
	Code int
	Body string
}

func (o *HTTPOptimizer) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do executes req and reads the whole body. Only failures to obtain a
// response are returned as errors; every status comes back as a RawResponse.
func (o *HTTPOptimizer) do(req *http.Request) (ports.RawResponse, error) {
	resp, err := o.session.Do(req)
	if err != nil {
		return ports.RawResponse{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ports.RawResponse{}, fmt.Errorf("read response body: %w", err)
	}

	return ports.RawResponse{StatusCode: resp.StatusCode, Body: b}, nil
}

func retryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) using exponential backoff while respecting context cancellation.
// When retries run out on a status failure the last response is returned so
// its body can still be inspected.
func (o *HTTPOptimizer) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (ports.RawResponse, error) {
	backoff := o.backoff

	var (
		lastResp ports.RawResponse
		lastErr  error
	)

	maxAttempts := max(o.maxAttempts, 1)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return ports.RawResponse{}, err
		}

		req, err := makeReq()
		if err != nil {
			return ports.RawResponse{}, fmt.Errorf("make request: %w", err)
		}

		resp, err := o.do(req)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if err == nil {
			lastResp = resp
			lastErr = &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(resp.Body))}
		} else {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ports.RawResponse{}, ctxErr
			}
			lastResp = ports.RawResponse{}
			lastErr = err
		}

		if attempt == maxAttempts {
			break
		}

		log.Debug().
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Err(lastErr).
			Msg("retrying optimizer request")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ports.RawResponse{}, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	var he *httpStatusError
	if errors.As(lastErr, &he) {
		return lastResp, nil
	}
	return ports.RawResponse{}, lastErr
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

package updater

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"
)

const (
	// Maximum number of attempts for retryable network requests.
	maxRetryAttempts = 3

	// Base delay used for exponential backoff between retries.
	retryBaseDelay = 250 * time.Millisecond

	// Maximum delay cap for exponential backoff between retries.
	retryMaxDelay = 2 * time.Second

	// Max random jitter added to each retry backoff.
	retryJitterMax = 200 * time.Millisecond
)

// retrier issues GET requests with exponential backoff on transient failures.
type retrier struct {
	client    *http.Client
	randInt63 func(n int64) int64
	sleep     func(ctx context.Context, d time.Duration) error
}

func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests || status == http.StatusRequestTimeout {
		return true
	}
	return status >= http.StatusInternalServerError
}

func isRetryableRequestError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && isTransientSyscallError(opErr.Err) {
		return true
	}

	var urlErr *url.Error
	//nolint:staticcheck // url.Error.Temporary is deprecated but still useful for transient detection
	return errors.As(err, &urlErr) && urlErr.Temporary()
}

func isTransientSyscallError(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case syscall.ECONNRESET, syscall.ECONNREFUSED,
		syscall.EADDRNOTAVAIL, syscall.ENETUNREACH,
		syscall.EHOSTUNREACH:
		return true
	}
	return false
}

func waitForBackoff(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryDelayForAttempt doubles retryBaseDelay per attempt, adds jitter and caps at retryMaxDelay.
func retryDelayForAttempt(attempt int, randInt63 func(n int64) int64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := retryBaseDelay
	for i := 1; i < attempt && delay < retryMaxDelay; i++ {
		delay *= 2
	}
	if randInt63 != nil && retryJitterMax > 0 {
		delay += time.Duration(randInt63(int64(retryJitterMax)))
	}
	return min(delay, retryMaxDelay)
}

// get builds a fresh request per attempt so no body is ever reused.
// The final response is returned as-is even when its status is retryable.
func (r *retrier) get(ctx context.Context, rawURL, userAgent string) (*http.Response, error) {
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := r.client.Do(req)
		if err != nil {
			if !isRetryableRequestError(err) || attempt >= maxRetryAttempts {
				return nil, err
			}
		} else {
			if !isRetryableStatus(resp.StatusCode) || attempt >= maxRetryAttempts {
				return resp, nil
			}
			_ = resp.Body.Close()
		}

		if waitErr := r.sleep(ctx, retryDelayForAttempt(attempt, r.randInt63)); waitErr != nil {
			return nil, waitErr
		}
	}
}

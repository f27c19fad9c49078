package adapter

import (
	"context"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// backoffBase is the first retry delay; later ones double.
var backoffBase = 500 * time.Millisecond

// withRetry runs fn, retrying up to retries extra times while it returns
// errors marked with retry.RetryableError.
func withRetry(ctx context.Context, retries int, fn func(ctx context.Context) error) error {
	if retries < 0 {
		retries = 0
	}
	b := retry.WithMaxRetries(uint64(retries), retry.NewExponential(backoffBase))
	return retry.Do(ctx, b, fn)
}

// retryableStatus reports whether an HTTP status is worth another attempt.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

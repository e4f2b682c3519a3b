package api

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// RetryPolicy describes bounded retry behavior for a single API call.
// It is injectable per call site; most calls use NoRetryPolicy and only
// status updates carry a real budget, so the batch layer above never has
// to retry on its own.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// WaitMin is the base delay for exponential backoff.
	WaitMin time.Duration
	// WaitMax caps the backoff delay.
	WaitMax time.Duration
	// RetryableStatus decides whether a response status warrants a retry.
	// A 401 never does, regardless of this predicate.
	RetryableStatus func(status int) bool
}

// StatusUpdateRetryPolicy matches the original client's setStatus behavior:
// exponential backoff from one second, retried on rate limiting and server
// errors, bounded by maxRetries.
func StatusUpdateRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries: maxRetries,
		WaitMin:    1 * time.Second,
		WaitMax:    30 * time.Second,
		RetryableStatus: func(status int) bool {
			switch status {
			case nethttp.StatusTooManyRequests,
				nethttp.StatusInternalServerError,
				nethttp.StatusBadGateway,
				nethttp.StatusServiceUnavailable,
				nethttp.StatusGatewayTimeout:
				return true
			}
			return false
		},
	}
}

// NoRetryPolicy performs a single attempt.
func NoRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 0}
}

// newHTTPClient builds an HTTP client enforcing the policy. Network errors
// are retried alongside retryable statuses; everything else fails fast.
func (p RetryPolicy) newHTTPClient(base *nethttp.Client, logger zerolog.Logger) *nethttp.Client {
	if p.MaxRetries <= 0 {
		return base
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = base
	rc.RetryMax = p.MaxRetries
	rc.RetryWaitMin = p.WaitMin
	rc.RetryWaitMax = p.WaitMax
	rc.Logger = &retryLogger{logger: logger}
	rc.CheckRetry = func(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		if resp.StatusCode == nethttp.StatusUnauthorized {
			return false, nil
		}
		if p.RetryableStatus != nil && p.RetryableStatus(resp.StatusCode) {
			return true, nil
		}
		return false, nil
	}
	return rc.StandardClient()
}

// retryLogger adapts zerolog to the retryablehttp.LeveledLogger interface.
// Info and Debug are dropped to keep retry chatter out of normal output.
type retryLogger struct {
	logger zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {}

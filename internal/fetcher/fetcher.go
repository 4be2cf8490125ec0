package fetcher

import (
	"context"
	"fmt"
	"net/http"
)

// EarningsFetcher retrieves the raw earnings CSV for a pool account.
type EarningsFetcher interface {
	FetchEarnings(ctx context.Context, account string) (string, error)
}

// NetworkError wraps a transport failure while talking to the pool.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx response from the pool.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("ocean api error (%d %s): %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

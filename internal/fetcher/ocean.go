package fetcher

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"oceanwatch/internal/version"
)

const (
	defaultBaseURL = "https://ocean.xyz"
	formMediaType  = "application/x-www-form-urlencoded"
)

// OceanOptions parameterise the OCEAN earnings fetcher.
type OceanOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Ocean downloads earnings exports from ocean.xyz.
type Ocean struct {
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
	agent   string
}

// NewOcean constructs an OCEAN fetcher.
func NewOcean(opts OceanOptions, logger zerolog.Logger) *Ocean {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	agent := strings.TrimSpace(opts.UserAgent)
	if agent == "" {
		agent = version.UserAgent()
	}

	return &Ocean{
		logger:  logger.With().Str("component", "ocean_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		agent:   agent,
	}
}

// EarningsURL returns the export endpoint for account.
func (o *Ocean) EarningsURL(account string) string {
	return o.baseURL + "/data/csv/" + url.PathEscape(account) + "/earnings"
}

// FetchEarnings posts to the account's earnings endpoint and returns the body as text.
func (o *Ocean) FetchEarnings(ctx context.Context, account string) (string, error) {
	endpoint := o.EarningsURL(account)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, http.NoBody)
	if err != nil {
		return "", &NetworkError{URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", formMediaType)
	req.Header.Set("User-Agent", o.agent)

	started := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return "", &NetworkError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &HTTPStatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{URL: endpoint, Err: err}
	}

	o.logger.Debug().
		Str("account", account).
		Int("status", resp.StatusCode).
		Int("bytes", len(payload)).
		Dur("elapsed", time.Since(started)).
		Msg("earnings export downloaded")

	return decodeText(resp.Header.Get("Content-Type"), payload), nil
}

// decodeText converts body to UTF-8 using the declared charset, defaulting to UTF-8.
// Undecodable bytes become U+FFFD.
func decodeText(contentType string, body []byte) string {
	enc := encoding.Encoding(unicode.UTF8)
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if label := params["charset"]; label != "" {
			if found, err := htmlindex.Get(label); err == nil {
				enc = found
			}
		}
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "\uFFFD")
	}
	return string(decoded)
}

var _ EarningsFetcher = (*Ocean)(nil)

package places

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL   = "https://maps.googleapis.com"
	nearbySearchPath = "/maps/api/place/nearbysearch/json"
	redactedKey      = "HIDDEN_KEY"
	maxResponseBytes = 10 << 20
)

// Upstream status values.
const (
	StatusOK             = "OK"
	StatusZeroResults    = "ZERO_RESULTS"
	StatusOverQueryLimit = "OVER_QUERY_LIMIT"
	StatusRequestDenied  = "REQUEST_DENIED"
	StatusInvalidRequest = "INVALID_REQUEST"
)

// SearchResult is a successful nearby search, already normalized.
type SearchResult struct {
	Status        string
	Results       []PlaceResult
	NextPageToken string
}

// Client calls the Google Places nearby-search endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Places API client. An empty baseURL selects the
// public Google endpoint; a nil httpClient selects http.DefaultClient.
func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// HasCredential reports whether an API key was configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// SearchNearby issues a single upstream request for q. Failures are
// returned as *Error with an upstream or internal Kind; nothing is retried.
func (c *Client) SearchNearby(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if !c.HasCredential() {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("location", q.Location())
	params.Set("radius", strconv.Itoa(q.RadiusMeters))
	params.Set("type", q.PlaceType)
	params.Set("key", c.apiKey)
	fullURL := c.baseURL + nearbySearchPath + "?" + params.Encode()

	log.Info().Str("url", c.redact(fullURL)).Msg("Making request to Google Places API")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: MsgInternal, Err: errors.New(c.redact(err.Error()))}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the request URL, key included.
		reason := c.redact(err.Error())
		log.Error().Str("reason", reason).Msg("Google Places API request failed")
		return nil, &Error{
			Kind:    KindUpstreamTransport,
			Message: fmt.Sprintf("%s API error: request failed", upstreamName),
			Err:     errors.New(reason),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().
			Int("status", resp.StatusCode).
			Str("reason", http.StatusText(resp.StatusCode)).
			Msg("Google Places API error")
		return nil, &Error{
			Kind:    KindUpstreamTransport,
			Message: fmt.Sprintf("%s API error: %d", upstreamName, resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: MsgInternal, Err: fmt.Errorf("failed to read Google Places response: %w", err)}
	}
	if !gjson.ValidBytes(body) {
		return nil, &Error{Kind: KindInternal, Message: MsgInternal, Err: errors.New("failed to parse Google Places response: invalid JSON")}
	}

	data := gjson.ParseBytes(body)
	status := data.Get("status").String()
	if status != StatusOK && status != StatusZeroResults {
		upstreamMessage := data.Get("error_message").String()
		log.Error().
			Str("upstream_status", status).
			Str("error_message", c.redact(upstreamMessage)).
			Msg("Google Places API returned non-OK status")

		perr := &Error{Kind: KindUpstreamSemantic, Message: semanticMessage(status)}
		switch {
		case upstreamMessage != "":
			perr.Details = c.redact(upstreamMessage)
		case status != "":
			perr.Details = status
		}
		return nil, perr
	}

	results := normalizePlaces(data.Get("results"))
	log.Info().
		Int("result_count", len(results)).
		Float64("lat", q.Latitude).
		Float64("lng", q.Longitude).
		Int("radius", q.RadiusMeters).
		Msg("Successfully fetched places")

	return &SearchResult{
		Status:        status,
		Results:       results,
		NextPageToken: data.Get("next_page_token").String(),
	}, nil
}

func semanticMessage(status string) string {
	switch status {
	case StatusOverQueryLimit:
		return MsgQuotaExceeded
	case StatusRequestDenied:
		return MsgRequestDenied
	case StatusInvalidRequest:
		return MsgInvalidRequest
	case "":
		return fmt.Sprintf("%s API error: missing status", upstreamName)
	default:
		return fmt.Sprintf("%s API error: %s", upstreamName, status)
	}
}

func (c *Client) redact(s string) string {
	if c.apiKey == "" {
		return s
	}
	s = strings.ReplaceAll(s, c.apiKey, redactedKey)
	// Query encoding may have escaped characters of the key.
	if escaped := url.QueryEscape(c.apiKey); escaped != c.apiKey {
		s = strings.ReplaceAll(s, escaped, redactedKey)
	}
	return s
}

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"realty-places/internal/places"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "handler-test-key"

type upstreamStub struct {
	server *httptest.Server
	calls  atomic.Int32
}

func newUpstreamStub(t *testing.T, status int, body string) *upstreamStub {
	t.Helper()
	u := &upstreamStub{}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(u.server.Close)
	return u
}

func newTestRouter(t *testing.T, upstream *upstreamStub, cfg PlacesConfig) (*Router, *PlacesHandler) {
	t.Helper()
	cfg.BaseURL = upstream.server.URL
	h := NewPlacesHandler(cfg, upstream.server.Client())
	h.now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) }

	router := NewRouter(5*time.Second, cfg.Development)
	router.RegisterPlacesRoutes(h)
	router.RegisterHealthRoutes(cfg.APIKey != "")
	return router, h
}

func do(router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details"`
	Message string `json:"message"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

type successBody struct {
	Status        string          `json:"status"`
	Results       json.RawMessage `json:"results"`
	NextPageToken string          `json:"nextPageToken"`
	Metadata      struct {
		Query struct {
			Location string `json:"location"`
			Radius   int    `json:"radius"`
			Type     string `json:"type"`
		} `json:"query"`
		Timestamp   string `json:"timestamp"`
		ResultCount int    `json:"resultCount"`
	} `json:"metadata"`
}

const acmeBody = `{"status":"OK","results":[{"place_id":"p1","name":"Acme Realty","geometry":{"location":{"lat":5.61,"lng":-0.19}}}]}`

func TestProxyAccraExample(t *testing.T) {
	upstream := newUpstreamStub(t, http.StatusOK, acmeBody)
	router, _ := newTestRouter(t, upstream, PlacesConfig{APIKey: testKey})

	rec := do(router, http.MethodGet, "/placesProxy?lat=5.6037&lng=-0.1870&radius=3000&type=real_estate_agency")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assertCORS(t, rec)

	var body successBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	assert.JSONEq(t, `[{"placeId":"p1","name":"Acme Realty","geometry":{"location":{"lat":5.61,"lng":-0.19}}}]`, string(body.Results))
	assert.Equal(t, "5.6037,-0.187", body.Metadata.Query.Location)
	assert.Equal(t, 3000, body.Metadata.Query.Radius)
	assert.Equal(t, "real_estate_agency", body.Metadata.Query.Type)
	assert.Equal(t, "2026-10-14T09:30:00.000Z", body.Metadata.Timestamp)
	assert.Equal(t, 1, body.Metadata.ResultCount)
	assert.Empty(t, body.NextPageToken)
	assert.NotContains(t, rec.Body.String(), "nextPageToken")
	assert.NotContains(t, rec.Body.String(), testKey)
	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestProxyNetlifyPath(t *testing.T) {
	upstream := newUpstreamStub(t, http.StatusOK, acmeBody)
	router, _ := newTestRouter(t, upstream, PlacesConfig{APIKey: testKey})

	rec := do(router, http.MethodGet, "/.netlify/functions/placesProxy?lat=5.6037&lng=-0.1870&radius=3000")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProxyPassesPageToken(t *testing.T) {
	upstream := newUpstreamStub(t, http.StatusOK, `{"status":"OK","results":[],"next_page_token":"tok"}`)
	router, _ := newTestRouter(t, upstream, PlacesConfig{APIKey: testKey})

	rec := do(router, http.MethodGet, "/placesProxy?lat=1&lng=2&radius=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var body successBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tok", body.NextPageToken)
}

func TestProxyValidationNeverCallsUpstream(t *testing.T) {
	tests := []struct {
		target  string
		mention string
	}{
		{"/placesProxy?lat=999&lng=0&radius=100", "latitude"},
		{"/placesProxy?lat=-90.5&lng=0&radius=100", "latitude"},
		{"/placesProxy?lat=0&lng=181&radius=100", "longitude"},
		{"/placesProxy?lat=0&lng=-999&radius=100", "longitude"},
		{"/placesProxy?lat=0&lng=0&radius=0", "radius"},
		{"/placesProxy?lat=0&lng=0&radius=50001", "radius"},
		{"/placesProxy?lat=0&lng=0&radius=100&type=bakery", "real_estate_agency, establishment, point_of_interest"},
		{"/placesProxy?lat=0&lng=0", "Required: lat, lng, radius"},
		{"/placesProxy", "Missing query parameters"},
		{"/placesProxy?lat=north&lng=0&radius=1", "Invalid parameter format"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			upstream := newUpstreamStub(t, http.StatusOK, acmeBody)
			router, _ := newTestRouter(t, upstream, PlacesConfig{APIKey: testKey})

			rec := do(router, http.MethodGet, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assertCORS(t, rec)
			assert.Contains(t, decodeError(t, rec).Error, tt.mention)
			assert.Equal(t, int32(0), upstream.calls.Load())
		})
	}
}

func TestProxyMissingCredential(t *testing.T) {
	upstream := newUpstreamStub(t, http.StatusOK, acmeBody)
	router, _ := newTestRouter(t, upstream, PlacesConfig{})

	rec := do(router, http.MethodGet, "/placesProxy?lat=5.6037&lng=-0.1870&radius=3000")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assertCORS(t, rec)
	assert.Equal(t, places.MsgMissingAPIKey, decodeError(t, rec).Error)
	assert.Equal(t, int32(0), upstream.calls.Load())
}

func TestProxyZeroResults(t *testing.T) {
	upstream := newUpstreamStub(t, http.StatusOK, `{"status":"ZERO_RESULTS","results":[]}`)
	router, _ := newTestRouter(t, upstream, PlacesConfig{APIKey: testKey})

	rec := do(router, http.MethodGet, "/placesProxy?lat=5.6037&lng=-0.1870&radius=3000")

	require.Equal(t, http.StatusOK, rec.Code)
	var body successBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ZERO_RESULTS", body.Status)
	assert.JSONEq(t, `[]`, string(body.Results))
	assert.Equal(t, 0, body.Metadata.ResultCount)
}

func TestProxyUpstreamSemanticErrors(t *testing.T) {
	tests := []struct {
		status  string
		mention string
	}{
		{"OVER_QUERY_LIMIT", "quota"},
		{"REQUEST_DENIED", "API key configuration"},
		{"INVALID_REQUEST", "Invalid request parameters"},
		{"UNKNOWN_ERROR", "UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			upstream := newUpstreamStub(t, http.StatusOK, `{"status":"`+tt.status+`","error_message":"upstream said no"}`)
			router, _ := newTestRouter(t, upstream, PlacesConfig{APIKey: testKey})

			rec := do(router, http.MethodGet, "/placesProxy?lat=5.6037&lng=-0.1870&radius=3000")

			assert.Equal(t, http.StatusBadGateway, rec.Code)
			assertCORS(t, rec)
			body := decodeError(t, rec)
			assert.Contains(t, body.Error, tt.mention)
			assert.Equal(t, "upstream said no", body.Details)
		})
	}
}

func TestProxyUpstreamHTTPError(t *testing.T) {
	upstream := newUpstreamStub(t, http.StatusInternalServerError, `{"trace":"secret internals"}`)
	router, _ := newTestRouter(t, upstream, PlacesConfig{APIKey: testKey})

	rec := do(router, http.MethodGet, "/placesProxy?lat=5.6037&lng=-0.1870&radius=3000")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assertCORS(t, rec)
	assert.Equal(t, "Google Places API error: 500", decodeError(t, rec).Error)
	assert.NotContains(t, rec.Body.String(), "secret internals")
	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestProxyUpstreamUnreachable(t *testing.T) {
	upstream := newUpstreamStub(t, http.StatusOK, acmeBody)
	router, _ := newTestRouter(t, upstream, PlacesConfig{APIKey: testKey})
	upstream.server.Close()

	rec := do(router, http.MethodGet, "/placesProxy?lat=5.6037&lng=-0.1870&radius=3000")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assertCORS(t, rec)
	assert.NotContains(t, rec.Body.String(), testKey)
}

func TestProxyInternalErrorDetail(t *testing.T) {
	for _, development := range []bool{false, true} {
		upstream := newUpstreamStub(t, http.StatusOK, `not json`)
		router, _ := newTestRouter(t, upstream, PlacesConfig{APIKey: testKey, Development: development})

		rec := do(router, http.MethodGet, "/placesProxy?lat=5.6037&lng=-0.1870&radius=3000")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assertCORS(t, rec)
		body := decodeError(t, rec)
		assert.Equal(t, "Internal server error", body.Error)
		if development {
			assert.Contains(t, body.Message, "invalid JSON")
		} else {
			assert.Equal(t, "An unexpected error occurred", body.Message)
		}
	}
}

func TestProxyIdempotentResults(t *testing.T) {
	upstream := newUpstreamStub(t, http.StatusOK, `{"status":"OK","results":[
		{"place_id":"a","name":"One","rating":4.1,"types":["real_estate_agency"]},
		{"place_id":"b","name":"Two","vicinity":"Labone","opening_hours":{"open_now":false}}
	]}`)
	router, h := newTestRouter(t, upstream, PlacesConfig{APIKey: testKey})

	target := "/placesProxy?lat=5.6037&lng=-0.1870&radius=3000"
	first := do(router, http.MethodGet, target)
	h.now = func() time.Time { return time.Date(2026, 10, 14, 9, 31, 0, 0, time.UTC) }
	second := do(router, http.MethodGet, target)

	var a, b successBody
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, []byte(a.Results), []byte(b.Results))
	assert.NotEqual(t, a.Metadata.Timestamp, b.Metadata.Timestamp)
}

func TestProxyMethodNotAllowed(t *testing.T) {
	upstream := newUpstreamStub(t, http.StatusOK, acmeBody)
	router, _ := newTestRouter(t, upstream, PlacesConfig{APIKey: testKey})

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rec := do(router, method, "/placesProxy?lat=5.6037&lng=-0.1870&radius=3000")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assertCORS(t, rec)
		assert.Equal(t, "Method not allowed. Use GET.", decodeError(t, rec).Error)
	}
	assert.Equal(t, int32(0), upstream.calls.Load())
}

func TestProxyPreflight(t *testing.T) {
	upstream := newUpstreamStub(t, http.StatusOK, acmeBody)
	router, _ := newTestRouter(t, upstream, PlacesConfig{})

	rec := do(router, http.MethodOptions, "/placesProxy")
	assert.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)
	assert.Empty(t, rec.Body.String())

	// A browser preflight goes through the CORS middleware first.
	req := httptest.NewRequest(http.MethodOptions, "/placesProxy?lat=999", nil)
	req.Header.Set("Origin", "https://listings.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	browser := httptest.NewRecorder()
	router.ServeHTTP(browser, req)

	assert.Equal(t, http.StatusOK, browser.Code)
	assertCORS(t, browser)
	assert.Empty(t, browser.Body.String())
	assert.Equal(t, int32(0), upstream.calls.Load())
}

func TestSamples(t *testing.T) {
	upstream := newUpstreamStub(t, http.StatusOK, acmeBody)
	router, _ := newTestRouter(t, upstream, PlacesConfig{})

	rec := do(router, http.MethodGet, "/api/v1/samples")
	require.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)

	var body struct {
		Status  string                 `json:"status"`
		Results []places.SampleListing `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	require.Len(t, body.Results, 3)
	assert.Equal(t, "Premium Heights Residences", body.Results[0].Name)
	assert.Equal(t, int32(0), upstream.calls.Load())
}

func TestHealthRoutes(t *testing.T) {
	upstream := newUpstreamStub(t, http.StatusOK, acmeBody)

	router, _ := newTestRouter(t, upstream, PlacesConfig{APIKey: testKey})
	assert.Contains(t, do(router, http.MethodGet, "/health").Body.String(), `"status":"ok"`)
	assert.Contains(t, do(router, http.MethodGet, "/ready").Body.String(), `"status":"ready"`)

	degraded, _ := newTestRouter(t, upstream, PlacesConfig{})
	rec := do(degraded, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"status":"degraded"`))
}

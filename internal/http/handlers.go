package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"realty-places/internal/api"
	"realty-places/internal/places"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PlacesConfig is everything the places handler needs from process
// configuration. It is fixed at construction.
type PlacesConfig struct {
	APIKey      string
	BaseURL     string
	Development bool
}

// PlacesHandler serves the places proxy and the static sample listings.
type PlacesHandler struct {
	cfg    PlacesConfig
	client *places.Client
	now    func() time.Time
}

// NewPlacesHandler creates a new PlacesHandler. A nil httpClient uses
// http.DefaultClient for upstream calls.
func NewPlacesHandler(cfg PlacesConfig, httpClient *http.Client) *PlacesHandler {
	return &PlacesHandler{
		cfg:    cfg,
		client: places.NewClient(cfg.APIKey, cfg.BaseURL, httpClient),
		now:    time.Now,
	}
}

// RegisterRoutes registers the proxy on every method so that method
// rejection produces the JSON envelope instead of the router's default.
func (h *PlacesHandler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/placesProxy", h.Proxy)
	r.HandleFunc("/.netlify/functions/placesProxy", h.Proxy)
	r.Get("/api/v1/samples", h.Samples)
}

// Proxy validates the query, calls the upstream nearby search once and
// returns the normalized result. Every path writes exactly one JSON
// response with the CORS header set.
func (h *PlacesHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error().Interface("panic", rec).Msg("Places proxy panic")
			api.WriteInternalError(w, fmt.Sprint(rec), h.cfg.Development)
		}
	}()

	// Preflight
	if r.Method == http.MethodOptions {
		api.SetCORSHeaders(w)
		w.WriteHeader(http.StatusOK)
		return
	}

	result, query, err := h.search(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.SearchResponse{
		Status:        result.Status,
		Results:       result.Results,
		NextPageToken: result.NextPageToken,
		Metadata: api.Metadata{
			Query: &api.QueryInfo{
				Location: query.Location(),
				Radius:   query.RadiusMeters,
				Type:     query.PlaceType,
			},
			Timestamp:   api.Timestamp(h.now()),
			ResultCount: len(result.Results),
		},
	})
}

func (h *PlacesHandler) search(r *http.Request) (*places.SearchResult, places.SearchQuery, error) {
	if r.Method != http.MethodGet {
		return nil, places.SearchQuery{}, places.ErrMethodNotAllowed
	}

	if h.cfg.APIKey == "" {
		log.Error().Msg("GOOGLE_MAPS_API_KEY is not set")
		return nil, places.SearchQuery{}, places.ErrMissingAPIKey
	}

	query, err := places.ParseQuery(r.URL.Query())
	if err != nil {
		return nil, places.SearchQuery{}, err
	}

	result, err := h.client.SearchNearby(r.Context(), query)
	if err != nil {
		return nil, query, err
	}
	return result, query, nil
}

func (h *PlacesHandler) writeError(w http.ResponseWriter, err error) {
	var perr *places.Error
	if !errors.As(err, &perr) || perr.Kind == places.KindInternal {
		log.Error().Err(err).Msg("Places proxy internal error")
		api.WriteInternalError(w, err.Error(), h.cfg.Development)
		return
	}
	api.WriteError(w, perr.StatusCode(), perr.Message, perr.Details)
}

// Samples returns the static demo listings. It needs no credential.
func (h *PlacesHandler) Samples(w http.ResponseWriter, r *http.Request) {
	listings := places.SampleListings()
	api.WriteJSON(w, http.StatusOK, api.SearchResponse{
		Status:  places.StatusOK,
		Results: listings,
		Metadata: api.Metadata{
			Timestamp:   api.Timestamp(h.now()),
			ResultCount: len(listings),
		},
	})
}

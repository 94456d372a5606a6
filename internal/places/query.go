package places

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
	MinRadius    = 1
	MaxRadius    = 50000

	DefaultType = "real_estate_agency"
)

// AllowedTypes is the fixed set of place types the proxy forwards.
var AllowedTypes = []string{
	"real_estate_agency",
	"establishment",
	"point_of_interest",
}

// SearchQuery is the canonical, range-checked form of an inbound search.
type SearchQuery struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	PlaceType    string
}

// Location renders the query center as "lat,lng" using the shortest
// representation of each parsed value, so "-0.1870" becomes "-0.187".
func (q SearchQuery) Location() string {
	return formatCoord(q.Latitude) + "," + formatCoord(q.Longitude)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseQuery validates raw query parameters in a fixed order: presence,
// format, latitude, longitude, radius, then type. Only the first failure is
// reported.
func ParseQuery(values url.Values) (SearchQuery, error) {
	if len(values) == 0 {
		return SearchQuery{}, clientError(MsgMissingQuery)
	}

	lat, lng, radius := values.Get("lat"), values.Get("lng"), values.Get("radius")
	if lat == "" || lng == "" || radius == "" {
		return SearchQuery{}, clientError(MsgMissingParams)
	}

	latitude, latErr := parseCoord(lat)
	longitude, lngErr := parseCoord(lng)
	searchRadius, radiusErr := strconv.Atoi(strings.TrimSpace(radius))
	if latErr != nil || lngErr != nil || radiusErr != nil {
		return SearchQuery{}, clientError(MsgInvalidFormat)
	}

	if latitude < MinLatitude || latitude > MaxLatitude {
		return SearchQuery{}, clientError(MsgInvalidLatitude)
	}
	if longitude < MinLongitude || longitude > MaxLongitude {
		return SearchQuery{}, clientError(MsgInvalidLongitude)
	}
	if searchRadius < MinRadius || searchRadius > MaxRadius {
		return SearchQuery{}, clientError(MsgInvalidRadius)
	}

	// An absent type falls back to the default; a present but empty one is
	// rejected like any other unknown value.
	placeType := DefaultType
	if v, ok := values["type"]; ok && len(v) > 0 {
		placeType = v[0]
	}
	if !isAllowedType(placeType) {
		return SearchQuery{}, clientError("Invalid type. Allowed types: " + strings.Join(AllowedTypes, ", "))
	}

	return SearchQuery{
		Latitude:     latitude,
		Longitude:    longitude,
		RadiusMeters: searchRadius,
		PlaceType:    placeType,
	}, nil
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

func isAllowedType(t string) bool {
	for _, allowed := range AllowedTypes {
		if t == allowed {
			return true
		}
	}
	return false
}

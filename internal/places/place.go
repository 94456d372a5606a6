package places

import (
	"github.com/tidwall/gjson"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Viewport is the recommended bounding box for displaying a place.
type Viewport struct {
	Northeast LatLng `json:"northeast"`
	Southwest LatLng `json:"southwest"`
}

// Geometry holds the position of a place.
type Geometry struct {
	Location *LatLng   `json:"location,omitempty"`
	Viewport *Viewport `json:"viewport,omitempty"`
}

// OpeningHours carries only the open-now flag of the upstream schedule.
type OpeningHours struct {
	OpenNow *bool `json:"openNow,omitempty"`
}

// PlaceResult is the normalized place returned to clients. Every field is
// optional; fields missing upstream are omitted rather than defaulted.
type PlaceResult struct {
	PlaceID          *string       `json:"placeId,omitempty"`
	Name             *string       `json:"name,omitempty"`
	Vicinity         *string       `json:"vicinity,omitempty"`
	FormattedAddress *string       `json:"formattedAddress,omitempty"`
	Geometry         *Geometry     `json:"geometry,omitempty"`
	Rating           *float64      `json:"rating,omitempty"`
	PriceLevel       *int          `json:"priceLevel,omitempty"`
	Types            []string      `json:"types,omitempty"`
	OpeningHours     *OpeningHours `json:"openingHours,omitempty"`
}

// normalizePlace projects the allow-listed fields of one upstream record.
// Values of an unexpected JSON type are dropped.
func normalizePlace(record gjson.Result) PlaceResult {
	return PlaceResult{
		PlaceID:          stringField(record.Get("place_id")),
		Name:             stringField(record.Get("name")),
		Vicinity:         stringField(record.Get("vicinity")),
		FormattedAddress: stringField(record.Get("formatted_address")),
		Geometry:         geometryField(record.Get("geometry")),
		Rating:           numberField(record.Get("rating")),
		PriceLevel:       intField(record.Get("price_level")),
		Types:            stringsField(record.Get("types")),
		OpeningHours:     openingHoursField(record.Get("opening_hours")),
	}
}

func normalizePlaces(results gjson.Result) []PlaceResult {
	out := make([]PlaceResult, 0)
	if !results.IsArray() {
		return out
	}
	for _, record := range results.Array() {
		if !record.IsObject() {
			continue
		}
		out = append(out, normalizePlace(record))
	}
	return out
}

func stringField(v gjson.Result) *string {
	if v.Type != gjson.String {
		return nil
	}
	s := v.String()
	return &s
}

func numberField(v gjson.Result) *float64 {
	if v.Type != gjson.Number {
		return nil
	}
	f := v.Float()
	return &f
}

func intField(v gjson.Result) *int {
	if v.Type != gjson.Number {
		return nil
	}
	i := int(v.Int())
	return &i
}

func boolField(v gjson.Result) *bool {
	if v.Type != gjson.True && v.Type != gjson.False {
		return nil
	}
	b := v.Bool()
	return &b
}

func stringsField(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	items := v.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type == gjson.String {
			out = append(out, item.String())
		}
	}
	return out
}

func latLngField(v gjson.Result) *LatLng {
	lat, lng := v.Get("lat"), v.Get("lng")
	if lat.Type != gjson.Number || lng.Type != gjson.Number {
		return nil
	}
	return &LatLng{Lat: lat.Float(), Lng: lng.Float()}
}

func geometryField(v gjson.Result) *Geometry {
	if !v.IsObject() {
		return nil
	}
	g := &Geometry{Location: latLngField(v.Get("location"))}
	ne, sw := latLngField(v.Get("viewport.northeast")), latLngField(v.Get("viewport.southwest"))
	if ne != nil && sw != nil {
		g.Viewport = &Viewport{Northeast: *ne, Southwest: *sw}
	}
	if g.Location == nil && g.Viewport == nil {
		return nil
	}
	return g
}

func openingHoursField(v gjson.Result) *OpeningHours {
	if !v.IsObject() {
		return nil
	}
	return &OpeningHours{OpenNow: boolField(v.Get("open_now"))}
}

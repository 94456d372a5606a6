package places

// SampleListing is a static demo property shown before a live search.
type SampleListing struct {
	Name     string   `json:"name"`
	Vicinity string   `json:"vicinity"`
	Geometry Geometry `json:"geometry"`
	Price    string   `json:"price"`
	Type     string   `json:"type"`
	Rating   float64  `json:"rating"`
}

// DefaultCenter is the map center used until the user searches (Accra, Ghana).
var DefaultCenter = LatLng{Lat: 5.6037, Lng: -0.1870}

// DefaultRadius is the initial search radius in meters.
const DefaultRadius = 3000

var sampleListings = []SampleListing{
	{
		Name:     "Premium Heights Residences",
		Vicinity: "East Legon, Accra",
		Geometry: Geometry{Location: &LatLng{Lat: 5.6501, Lng: -0.1615}},
		Price:    "GH₵ 450,000",
		Type:     "3 Bedroom Townhouse",
		Rating:   4.5,
	},
	{
		Name:     "Cantonments Garden Estate",
		Vicinity: "Cantonments, Accra",
		Geometry: Geometry{Location: &LatLng{Lat: 5.5695, Lng: -0.1936}},
		Price:    "GH₵ 850,000",
		Type:     "4 Bedroom Villa",
		Rating:   4.8,
	},
	{
		Name:     "Airport Residential Complex",
		Vicinity: "Airport Hills, Accra",
		Geometry: Geometry{Location: &LatLng{Lat: 5.6057, Lng: -0.1719}},
		Price:    "GH₵ 320,000",
		Type:     "2 Bedroom Apartment",
		Rating:   4.2,
	},
}

// SampleListings returns a copy of the static sample data.
func SampleListings() []SampleListing {
	out := make([]SampleListing, len(sampleListings))
	for i, l := range sampleListings {
		loc := *l.Geometry.Location
		l.Geometry.Location = &loc
		out[i] = l
	}
	return out
}

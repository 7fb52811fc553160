package refdata

// Place type tags as delivered by the provider's geo hierarchy.
const (
	PlaceTypeCountry = "PLACE_TYPE_COUNTRY"
	PlaceTypeCity    = "PLACE_TYPE_CITY"
	PlaceTypeIsland  = "PLACE_TYPE_ISLAND"
	PlaceTypeAirport = "PLACE_TYPE_AIRPORT"
)

// Place is a raw node of the provider's place hierarchy. Places form a tree
// via ParentID in principle; the provider does not guarantee the links are
// acyclic or that every parent exists.
type Place struct {
	Name     string `json:"name"`
	IATA     string `json:"iata"`
	Type     string `json:"type"`
	ParentID string `json:"parentId"`
}

// Currency is a single entry of the provider's currency list.
type Currency struct {
	Code string `json:"code"`
}

// Airport is a resolved directory entry: the place ID and a display label of
// the form "Name (IATA), Country". Column names in the airports table match.
type Airport struct {
	ID   string
	Name string
}

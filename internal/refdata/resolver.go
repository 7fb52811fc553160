package refdata

import (
	"sort"
	"strings"
)

// ResolveAirports flattens the place hierarchy into displayable airport
// records. A place qualifies when its type is island, city or airport and it
// carries a non-empty IATA code; everything else is skipped — most hierarchy
// nodes are not leaf airports.
//
// The label is "Name (IATA)", with ", Country" appended when walking the
// parent chain reaches a country node. The walk is bounded by a visited set:
// a missing or unknown parent, or a cycle in the upstream graph, ends the
// walk and the label simply omits the country suffix. The function is pure;
// output is sorted by place ID so repeated runs are identical.
func ResolveAirports(places map[string]Place) []Airport {
	airports := make([]Airport, 0, len(places))

	for id, place := range places {
		if !airportType(place.Type) {
			continue
		}
		iata := strings.TrimSpace(place.IATA)
		if iata == "" {
			continue
		}

		label := strings.TrimSpace(place.Name) + " (" + iata + ")"
		if country, ok := findCountry(places, place); ok {
			label += ", " + strings.TrimSpace(country.Name)
		}

		airports = append(airports, Airport{ID: id, Name: label})
	}

	sort.Slice(airports, func(i, j int) bool { return airports[i].ID < airports[j].ID })
	return airports
}

func airportType(t string) bool {
	switch t {
	case PlaceTypeIsland, PlaceTypeCity, PlaceTypeAirport:
		return true
	}
	return false
}

// findCountry walks parent links upward until it hits a country node or the
// chain is exhausted. The visited set guards against parent cycles, which the
// provider does not rule out.
func findCountry(places map[string]Place, place Place) (Place, bool) {
	visited := make(map[string]struct{})

	for {
		if place.Type == PlaceTypeCountry {
			return place, true
		}
		if place.ParentID == "" {
			return Place{}, false
		}
		if _, seen := visited[place.ParentID]; seen {
			return Place{}, false
		}
		visited[place.ParentID] = struct{}{}

		parent, ok := places[place.ParentID]
		if !ok {
			return Place{}, false
		}
		place = parent
	}
}

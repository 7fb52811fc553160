package refdata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekendtraveller/server/internal/refdata"
)

func TestResolveAirports_CountrySuffix(t *testing.T) {
	places := map[string]refdata.Place{
		"country1": {Name: "Germany", Type: refdata.PlaceTypeCountry},
		"city1":    {Name: "Berlin", IATA: "BER", Type: refdata.PlaceTypeCity, ParentID: "country1"},
	}

	airports := refdata.ResolveAirports(places)
	require.Len(t, airports, 1)
	assert.Equal(t, "city1", airports[0].ID)
	assert.Equal(t, "Berlin (BER), Germany", airports[0].Name)
}

func TestResolveAirports_DeepChain(t *testing.T) {
	places := map[string]refdata.Place{
		"country1": {Name: "United States", Type: refdata.PlaceTypeCountry},
		"region1":  {Name: "Texas", Type: "PLACE_TYPE_REGION", ParentID: "country1"},
		"city1":    {Name: "Dallas", Type: refdata.PlaceTypeCity, ParentID: "region1"},
		"airport1": {Name: "Dallas Fort Worth", IATA: "DFW", Type: refdata.PlaceTypeAirport, ParentID: "city1"},
	}

	airports := refdata.ResolveAirports(places)
	require.Len(t, airports, 2)
	assert.Equal(t, "Dallas Fort Worth (DFW), United States", airports[0].Name)
}

func TestResolveAirports_MissingCountry(t *testing.T) {
	places := map[string]refdata.Place{
		"city1": {Name: "Atlantis", IATA: "ATL", Type: refdata.PlaceTypeCity},
	}

	airports := refdata.ResolveAirports(places)
	require.Len(t, airports, 1)
	assert.Equal(t, "Atlantis (ATL)", airports[0].Name, "no country found means no suffix")
}

func TestResolveAirports_UnknownParent(t *testing.T) {
	places := map[string]refdata.Place{
		"city1": {Name: "Berlin", IATA: "BER", Type: refdata.PlaceTypeCity, ParentID: "gone"},
	}

	airports := refdata.ResolveAirports(places)
	require.Len(t, airports, 1)
	assert.Equal(t, "Berlin (BER)", airports[0].Name)
}

func TestResolveAirports_ParentCycle(t *testing.T) {
	places := map[string]refdata.Place{
		"a": {Name: "A City", IATA: "AAA", Type: refdata.PlaceTypeCity, ParentID: "b"},
		"b": {Name: "B City", Type: refdata.PlaceTypeCity, ParentID: "a"},
	}

	// Must terminate despite a -> b -> a and yield a label without a suffix.
	airports := refdata.ResolveAirports(places)
	require.Len(t, airports, 1)
	assert.Equal(t, "A City (AAA)", airports[0].Name)
}

func TestResolveAirports_SelfParent(t *testing.T) {
	places := map[string]refdata.Place{
		"a": {Name: "Loop", IATA: "LOP", Type: refdata.PlaceTypeCity, ParentID: "a"},
	}

	airports := refdata.ResolveAirports(places)
	require.Len(t, airports, 1)
	assert.Equal(t, "Loop (LOP)", airports[0].Name)
}

func TestResolveAirports_FiltersNonAirportTypes(t *testing.T) {
	places := map[string]refdata.Place{
		"country1": {Name: "Germany", IATA: "DE", Type: refdata.PlaceTypeCountry},
		"region1":  {Name: "Bavaria", IATA: "BAV", Type: "PLACE_TYPE_REGION"},
		"city1":    {Name: "Munich", Type: refdata.PlaceTypeCity}, // no IATA
		"city2":    {Name: " Berlin ", IATA: " BER ", Type: refdata.PlaceTypeCity, ParentID: "country1"},
		"island1":  {Name: "Ibiza", IATA: "IBZ", Type: refdata.PlaceTypeIsland, ParentID: "country1"},
	}

	airports := refdata.ResolveAirports(places)
	require.Len(t, airports, 2)
	assert.Equal(t, "Berlin (BER), Germany", airports[0].Name, "name and IATA are trimmed")
	assert.Equal(t, "Ibiza (IBZ), Germany", airports[1].Name)
}

func TestResolveAirports_Empty(t *testing.T) {
	assert.Empty(t, refdata.ResolveAirports(nil))
	assert.Empty(t, refdata.ResolveAirports(map[string]refdata.Place{}))
	assert.Empty(t, refdata.ResolveAirports(map[string]refdata.Place{
		"country1": {Name: "Germany", Type: refdata.PlaceTypeCountry},
	}), "no admissible nodes is not an error")
}

func TestResolveAirports_Deterministic(t *testing.T) {
	places := map[string]refdata.Place{
		"country1": {Name: "France", Type: refdata.PlaceTypeCountry},
		"c":        {Name: "Paris", IATA: "PAR", Type: refdata.PlaceTypeCity, ParentID: "country1"},
		"a":        {Name: "Nice", IATA: "NCE", Type: refdata.PlaceTypeCity, ParentID: "country1"},
		"b":        {Name: "Lyon", IATA: "LYS", Type: refdata.PlaceTypeCity, ParentID: "country1"},
	}

	first := refdata.ResolveAirports(places)
	second := refdata.ResolveAirports(places)
	require.Equal(t, first, second, "resolution carries no hidden state")

	ids := []string{first[0].ID, first[1].ID, first[2].ID}
	assert.Equal(t, []string{"a", "b", "c"}, ids, "output is ordered by place ID")
}

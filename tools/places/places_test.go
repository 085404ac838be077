package places_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/globalguide/travelagent/chatmodel"
	"github.com/globalguide/travelagent/llmutils"
	"github.com/globalguide/travelagent/tools/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchFixture = `{
	"status": "OK",
	"results": [
		{"name": "Louvre Museum", "formatted_address": "Rue de Rivoli, 75001 Paris", "rating": 4.7},
		{"name": "Musée d'Orsay", "formatted_address": "1 Rue de la Légion d'Honneur, 75007 Paris", "rating": 4.7},
		{"name": "Centre Pompidou", "formatted_address": "Place Georges-Pompidou, 75004 Paris", "rating": 4.4},
		{"name": "Musée Rodin", "formatted_address": "77 Rue de Varenne, 75007 Paris", "rating": 4.6},
		{"name": "Musée de l'Orangerie", "formatted_address": "Jardin des Tuileries, 75001 Paris", "rating": 4.6},
		{"name": "Petit Palais", "formatted_address": "Av. Winston Churchill, 75008 Paris", "rating": 4.6},
		{"name": "Musée Picasso", "formatted_address": "5 Rue de Thorigny, 75003 Paris", "rating": 4.4}
	]
}`

func Test_InterestTool(t *testing.T) {
	t.Setenv("GPLACES_API_KEY", "testkey")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "museums in Paris, France", r.URL.Query().Get("query"))
		assert.Equal(t, "testkey", r.URL.Query().Get("key"))
		assert.Equal(t, "5000", r.URL.Query().Get("radius"))
		assert.Equal(t, "point_of_interest", r.URL.Query().Get("type"))
		fmt.Fprint(w, searchFixture)
	}))
	defer server.Close()

	ctx := context.Background()

	tool, err := places.NewPlacesOfInterest()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	assert.Equal(t, places.InterestToolName, tool.Name())
	assert.Contains(t, tool.Description(), "attractions")

	params := llmutils.ToJSONIndent(tool.Parameters())
	assert.Contains(t, params, `"location"`)
	assert.Contains(t, params, `"interest_keywords"`)

	_, err = tool.Call(ctx, "plain string")
	assert.True(t, errors.Is(err, chatmodel.ErrFailedUnmarshalInput))

	resp, err := tool.Run(ctx, &places.InterestRequest{Location: "Paris, France", Interest: "museums"})
	require.NoError(t, err)

	// the fixture carries 7 hits, the tool keeps the first 5
	require.Len(t, resp.Places, places.MaxResults)
	assert.Equal(t, "Louvre Museum", resp.Places[0].Name)
	assert.Equal(t, "Rue de Rivoli, 75001 Paris", resp.Places[0].Address)
	assert.Equal(t, 4.7, resp.Places[0].Rating)

	assert.Contains(t, resp.String(), `Top 5 results for "museums in Paris, France":`)
	assert.Contains(t, resp.String(), "1. Louvre Museum")
	assert.NotContains(t, resp.String(), "Musée Picasso")
}

func Test_InterestTool_ZeroResults(t *testing.T) {
	t.Setenv("GPLACES_API_KEY", "testkey")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	}))
	defer server.Close()

	tool, err := places.NewPlacesOfInterest()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	resp, err := tool.Run(context.Background(), &places.InterestRequest{Location: "Nowhereville"})
	require.NoError(t, err)
	assert.Empty(t, resp.Places)
	assert.Contains(t, resp.String(), "No results found")
}

func Test_InterestTool_Denied(t *testing.T) {
	t.Setenv("GPLACES_API_KEY", "testkey")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`)
	}))
	defer server.Close()

	tool, err := places.NewPlacesOfInterest()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	_, err = tool.Run(context.Background(), &places.InterestRequest{Location: "Paris"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is invalid")
}

func Test_InterestTool_RadiusCap(t *testing.T) {
	t.Setenv("GPLACES_API_KEY", "testkey")

	tool, err := places.NewPlacesOfInterest()
	require.NoError(t, err)

	_, err = tool.Run(context.Background(), &places.InterestRequest{Location: "Paris", Radius: 60000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum search radius")
}

func Test_RestaurantsTool(t *testing.T) {
	t.Setenv("GPLACES_API_KEY", "testkey")

	fixture := `{
		"status": "OK",
		"results": [
			{"name": "Trattoria da Enzo", "formatted_address": "Via dei Vascellari 29, Roma", "rating": 4.5, "price_level": 2},
			{"name": "Pizzeria ai Marmi", "formatted_address": "Viale di Trastevere 53, Roma", "rating": 4.3, "price_level": 1}
		]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "restaurants in Rome, Italy", r.URL.Query().Get("query"))
		assert.Equal(t, "restaurant", r.URL.Query().Get("type"))
		assert.Equal(t, "0", r.URL.Query().Get("minprice"))
		assert.Equal(t, "1", r.URL.Query().Get("maxprice"))
		fmt.Fprint(w, fixture)
	}))
	defer server.Close()

	tool, err := places.NewRestaurants()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	assert.Equal(t, places.RestaurantsToolName, tool.Name())

	resp, err := tool.Run(context.Background(), &places.RestaurantsRequest{
		Location:        "Rome, Italy",
		PricePreference: "budget",
	})
	require.NoError(t, err)
	require.Len(t, resp.Places, 2)
	assert.Equal(t, "$$", resp.Places[0].PriceLevel)
	assert.Equal(t, "$", resp.Places[1].PriceLevel)
	assert.Contains(t, resp.String(), "Price Level: $$")
}

func Test_RestaurantsTool_NoPriceFilter(t *testing.T) {
	t.Setenv("GPLACES_API_KEY", "testkey")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("minprice"))
		assert.False(t, r.URL.Query().Has("maxprice"))
		fmt.Fprint(w, `{"status":"OK","results":[]}`)
	}))
	defer server.Close()

	tool, err := places.NewRestaurants()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	resp, err := tool.Run(context.Background(), &places.RestaurantsRequest{Location: "Rome"})
	require.NoError(t, err)
	assert.Empty(t, resp.Places)
}

func Test_AccommodationTool(t *testing.T) {
	t.Setenv("GPLACES_API_KEY", "testkey")

	fixture := `{
		"status": "OK",
		"results": [
			{"name": "Hotel Gracery Shinjuku", "formatted_address": "1-19-1 Kabukicho, Shinjuku", "rating": 4.2, "price_level": 3}
		]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "boutique hotel in Tokyo, Japan", r.URL.Query().Get("query"))
		assert.Equal(t, "lodging", r.URL.Query().Get("type"))
		fmt.Fprint(w, fixture)
	}))
	defer server.Close()

	ctx := context.Background()

	tool, err := places.NewAccommodations()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	assert.Equal(t, places.AccommodationToolName, tool.Name())

	out, err := tool.Call(ctx, `{"location":"Tokyo, Japan","preferences":"boutique hotel"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Hotel Gracery Shinjuku")
	assert.Contains(t, out, `"price_level":"$$$"`)

	_, err = tool.Run(ctx, &places.AccommodationRequest{Location: " "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty location")
}

func Test_Places_NoAPIKey(t *testing.T) {
	t.Setenv("GPLACES_API_KEY", "")

	_, err := places.NewPlacesOfInterest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GPLACES_API_KEY")

	_, err = places.NewRestaurants()
	require.Error(t, err)

	_, err = places.NewAccommodations()
	require.Error(t, err)
}

func Test_Places_Real(t *testing.T) {
	t.Skip("skipping real test")

	if os.Getenv("GPLACES_API_KEY") == "" {
		t.Skip("GPLACES_API_KEY is not set")
	}

	tool, err := places.NewPlacesOfInterest()
	require.NoError(t, err)

	resp, err := tool.Call(context.Background(), `{"location":"Paris, France","interest_keywords":"museums"}`)
	require.NoError(t, err)
	assert.Contains(t, resp, "places")
}

package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/globalguide/travelagent/llmutils"
)

const (
	InterestToolName      = "search_places_of_interest"
	RestaurantsToolName   = "search_restaurants"
	AccommodationToolName = "search_accommodations"

	// DefaultBaseURL is the Google Places Text Search endpoint.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"

	// MaxResults caps every search response.
	MaxResults = 5

	DefaultRadiusMeters = 5000
	MaxRadiusMeters     = 50000
)

// Place is one search hit: the record shape shared by attraction,
// restaurant and lodging searches.
type Place struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Rating     float64 `json:"rating,omitempty"`
	PriceLevel string  `json:"price_level,omitempty"`
}

// SearchResult is an ordered list of places. An empty list means nothing
// matched, it is not an error.
type SearchResult struct {
	Query  string  `json:"query"`
	Places []Place `json:"places"`
}

func (r *SearchResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *SearchResult) String() string {
	if len(r.Places) == 0 {
		return fmt.Sprintf("No results found for %q.", r.Query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Top %d results for %q:\n", len(r.Places), r.Query)
	for i, p := range r.Places {
		fmt.Fprintf(&b, "%d. %s\n   Address: %s\n", i+1, p.Name, p.Address)
		if p.Rating > 0 {
			fmt.Fprintf(&b, "   Rating: %.1f/5\n", p.Rating)
		}
		if p.PriceLevel != "" {
			fmt.Fprintf(&b, "   Price Level: %s\n", p.PriceLevel)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func requireAPIKey() error {
	if os.Getenv("GPLACES_API_KEY") == "" {
		return errors.New("GPLACES_API_KEY is not set")
	}
	return nil
}

// searcher performs one Places Text Search call. It is shared by the three
// tool flavors and holds no per-call state.
type searcher struct {
	baseURL    string
	httpClient *http.Client
}

type searchParams struct {
	query     string
	placeType string
	radius    int
	minPrice  int
	maxPrice  int
	hasPrice  bool
}

type placesResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Name             string  `json:"name"`
		FormattedAddress string  `json:"formatted_address"`
		Rating           float64 `json:"rating"`
		PriceLevel       *int    `json:"price_level"`
	} `json:"results"`
}

func (s *searcher) search(ctx context.Context, p searchParams) ([]Place, error) {
	if p.radius == 0 {
		p.radius = DefaultRadiusMeters
	}
	if p.radius > MaxRadiusMeters {
		return nil, errors.Newf("maximum search radius allowed is %d meters", MaxRadiusMeters)
	}

	q := url.Values{}
	q.Set("query", p.query)
	q.Set("key", os.Getenv("GPLACES_API_KEY"))
	q.Set("radius", strconv.Itoa(p.radius))
	if p.placeType != "" {
		q.Set("type", p.placeType)
	}
	if p.hasPrice {
		q.Set("minprice", strconv.Itoa(p.minPrice))
		q.Set("maxprice", strconv.Itoa(p.maxPrice))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "places service unreachable for %q", p.query)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read places response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("places service error for %q: status %d", p.query, resp.StatusCode)
	}

	var data placesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.Wrapf(err, "malformed places response for %q", p.query)
	}

	switch data.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		msg := data.ErrorMessage
		if msg == "" {
			msg = data.Status
		}
		return nil, errors.Newf("places service error for %q: %s", p.query, msg)
	}

	places := make([]Place, 0, MaxResults)
	for _, r := range data.Results {
		if len(places) >= MaxResults {
			break
		}
		place := Place{
			Name:    r.Name,
			Address: r.FormattedAddress,
			Rating:  r.Rating,
		}
		if r.PriceLevel != nil && *r.PriceLevel > 0 {
			place.PriceLevel = strings.Repeat("$", *r.PriceLevel)
		}
		places = append(places, place)
	}
	return places, nil
}

// priceRange maps a free-text price preference to Google's 0..4 price levels.
// Unrecognized preferences apply no filter.
func priceRange(pref string) (minLevel, maxLevel int, ok bool) {
	switch strings.ToLower(strings.TrimSpace(pref)) {
	case "budget", "cheap", "inexpensive":
		return 0, 1, true
	case "moderate", "mid-range", "midrange":
		return 2, 2, true
	case "upscale", "expensive", "luxury", "fine dining":
		return 3, 4, true
	default:
		return 0, 0, false
	}
}

package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/globalguide/travelagent/chatmodel"
	"github.com/globalguide/travelagent/llmutils"
	"github.com/globalguide/travelagent/schema"
	"github.com/globalguide/travelagent/tools"
	mcp "github.com/metoro-io/mcp-golang"
)

// RestaurantsRequest represents the search_restaurants tool input.
type RestaurantsRequest struct {
	Location        string `json:"location" jsonschema:"title=Location,description=The city or area to search in (e.g. 'Rome, Italy')."`
	PricePreference string `json:"price_preference,omitempty" jsonschema:"title=Price Preference,description=Optional price tier: 'budget', 'moderate' or 'upscale'."`
	Cuisine         string `json:"cuisine,omitempty" jsonschema:"title=Cuisine,description=Optional cuisine or dish keywords (e.g. 'ramen', 'vegetarian')."`
	Radius          int    `json:"radius,omitempty" jsonschema:"title=Radius,description=Search radius in meters, defaults to 5000, maximum 50000."`
}

// RestaurantsTool finds places to eat around a location, optionally filtered
// by a price tier. Results carry a $-tier annotation when the service reports
// a price level.
type RestaurantsTool struct {
	name        string
	description string
	funcParams  any

	searcher
}

var _ tools.Tool[RestaurantsRequest, SearchResult] = (*RestaurantsTool)(nil)

func NewRestaurants() (*RestaurantsTool, error) {
	if err := requireAPIKey(); err != nil {
		return nil, err
	}

	sc, err := schema.New(reflect.TypeOf(RestaurantsRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &RestaurantsTool{
		name: RestaurantsToolName,
		description: "Searches for restaurants in a city or area, optionally filtered by a price tier " +
			"('budget', 'moderate' or 'upscale') and cuisine keywords. " +
			"Returns up to 5 restaurants with name, address, rating and a $-tier price annotation.",
		funcParams: sc.Parameters,
		searcher: searcher{
			baseURL:    DefaultBaseURL,
			httpClient: tools.NewHTTPClient(),
		},
	}
	return tool, nil
}

func (t *RestaurantsTool) WithBaseURL(baseURL string) *RestaurantsTool {
	t.baseURL = baseURL
	return t
}

func (t *RestaurantsTool) WithHTTPClient(client *http.Client) *RestaurantsTool {
	t.httpClient = client
	return t
}

func (t *RestaurantsTool) Name() string        { return t.name }
func (t *RestaurantsTool) Description() string { return t.description }
func (t *RestaurantsTool) Parameters() any     { return t.funcParams }

func (t *RestaurantsTool) Run(ctx context.Context, req *RestaurantsRequest) (*SearchResult, error) {
	if strings.TrimSpace(req.Location) == "" {
		return nil, errors.New("invalid request: empty location")
	}

	query := fmt.Sprintf("restaurants in %s", req.Location)
	if c := strings.TrimSpace(req.Cuisine); c != "" {
		query = fmt.Sprintf("%s restaurants in %s", c, req.Location)
	}

	params := searchParams{
		query:     query,
		placeType: "restaurant",
		radius:    req.Radius,
	}
	if minLevel, maxLevel, ok := priceRange(req.PricePreference); ok {
		params.minPrice = minLevel
		params.maxPrice = maxLevel
		params.hasPrice = true
	}

	found, err := t.search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Query: query, Places: found}, nil
}

func (t *RestaurantsTool) Call(ctx context.Context, input string) (string, error) {
	var req RestaurantsRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}

var _ tools.MCPTool[RestaurantsRequest] = (*RestaurantsTool)(nil)

func (t *RestaurantsTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

func (t *RestaurantsTool) RunMCP(ctx context.Context, req *RestaurantsRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(res.GetContent())), nil
}

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

// InterestRequest represents the search_places_of_interest tool input.
type InterestRequest struct {
	Location string `json:"location" jsonschema:"title=Location,description=The city or area to search in (e.g. 'Paris, France')."`
	Interest string `json:"interest_keywords,omitempty" jsonschema:"title=Interest Keywords,description=Optional keywords describing the traveler's interests (e.g. 'museums', 'street food', 'hiking')."`
	Radius   int    `json:"radius,omitempty" jsonschema:"title=Radius,description=Search radius in meters, defaults to 5000, maximum 50000."`
}

// InterestTool finds attractions and activities around a location.
type InterestTool struct {
	name        string
	description string
	funcParams  any

	searcher
}

var _ tools.Tool[InterestRequest, SearchResult] = (*InterestTool)(nil)

func NewPlacesOfInterest() (*InterestTool, error) {
	if err := requireAPIKey(); err != nil {
		return nil, err
	}

	sc, err := schema.New(reflect.TypeOf(InterestRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &InterestTool{
		name: InterestToolName,
		description: "Searches for tourist attractions, activities and points of interest in a city or area. " +
			"Optionally biased by interest keywords such as 'museums' or 'hiking'. " +
			"Returns up to 5 places with name, address and rating.",
		funcParams: sc.Parameters,
		searcher: searcher{
			baseURL:    DefaultBaseURL,
			httpClient: tools.NewHTTPClient(),
		},
	}
	return tool, nil
}

func (t *InterestTool) WithBaseURL(baseURL string) *InterestTool {
	t.baseURL = baseURL
	return t
}

func (t *InterestTool) WithHTTPClient(client *http.Client) *InterestTool {
	t.httpClient = client
	return t
}

func (t *InterestTool) Name() string        { return t.name }
func (t *InterestTool) Description() string { return t.description }
func (t *InterestTool) Parameters() any     { return t.funcParams }

func (t *InterestTool) Run(ctx context.Context, req *InterestRequest) (*SearchResult, error) {
	if strings.TrimSpace(req.Location) == "" {
		return nil, errors.New("invalid request: empty location")
	}

	query := fmt.Sprintf("things to do in %s", req.Location)
	if kw := strings.TrimSpace(req.Interest); kw != "" {
		query = fmt.Sprintf("%s in %s", kw, req.Location)
	}

	found, err := t.search(ctx, searchParams{
		query:     query,
		placeType: "point_of_interest",
		radius:    req.Radius,
	})
	if err != nil {
		return nil, err
	}
	return &SearchResult{Query: query, Places: found}, nil
}

func (t *InterestTool) Call(ctx context.Context, input string) (string, error) {
	var req InterestRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}

var _ tools.MCPTool[InterestRequest] = (*InterestTool)(nil)

func (t *InterestTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

func (t *InterestTool) RunMCP(ctx context.Context, req *InterestRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(res.GetContent())), nil
}

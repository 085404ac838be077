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

// AccommodationRequest represents the search_accommodations tool input.
type AccommodationRequest struct {
	Location    string `json:"location" jsonschema:"title=Location,description=The city or area to search in (e.g. 'Tokyo, Japan')."`
	Preferences string `json:"preferences,omitempty" jsonschema:"title=Preferences,description=Optional lodging preferences (e.g. 'boutique hotel', 'hostel near the old town')."`
	Radius      int    `json:"radius,omitempty" jsonschema:"title=Radius,description=Search radius in meters, defaults to 5000, maximum 50000."`
}

// AccommodationTool finds hotels and other lodging around a location.
type AccommodationTool struct {
	name        string
	description string
	funcParams  any

	searcher
}

var _ tools.Tool[AccommodationRequest, SearchResult] = (*AccommodationTool)(nil)

func NewAccommodations() (*AccommodationTool, error) {
	if err := requireAPIKey(); err != nil {
		return nil, err
	}

	sc, err := schema.New(reflect.TypeOf(AccommodationRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &AccommodationTool{
		name: AccommodationToolName,
		description: "Searches for hotels, hostels and other accommodations in a city or area, " +
			"optionally guided by lodging preferences. " +
			"Returns up to 5 options with name, address, rating and price annotation.",
		funcParams: sc.Parameters,
		searcher: searcher{
			baseURL:    DefaultBaseURL,
			httpClient: tools.NewHTTPClient(),
		},
	}
	return tool, nil
}

func (t *AccommodationTool) WithBaseURL(baseURL string) *AccommodationTool {
	t.baseURL = baseURL
	return t
}

func (t *AccommodationTool) WithHTTPClient(client *http.Client) *AccommodationTool {
	t.httpClient = client
	return t
}

func (t *AccommodationTool) Name() string        { return t.name }
func (t *AccommodationTool) Description() string { return t.description }
func (t *AccommodationTool) Parameters() any     { return t.funcParams }

func (t *AccommodationTool) Run(ctx context.Context, req *AccommodationRequest) (*SearchResult, error) {
	if strings.TrimSpace(req.Location) == "" {
		return nil, errors.New("invalid request: empty location")
	}

	query := fmt.Sprintf("hotels in %s", req.Location)
	if p := strings.TrimSpace(req.Preferences); p != "" {
		query = fmt.Sprintf("%s in %s", p, req.Location)
	}

	found, err := t.search(ctx, searchParams{
		query:     query,
		placeType: "lodging",
		radius:    req.Radius,
	})
	if err != nil {
		return nil, err
	}
	return &SearchResult{Query: query, Places: found}, nil
}

func (t *AccommodationTool) Call(ctx context.Context, input string) (string, error) {
	var req AccommodationRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}

var _ tools.MCPTool[AccommodationRequest] = (*AccommodationTool)(nil)

func (t *AccommodationTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

func (t *AccommodationTool) RunMCP(ctx context.Context, req *AccommodationRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(res.GetContent())), nil
}

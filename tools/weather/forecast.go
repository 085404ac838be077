package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/globalguide/travelagent/chatmodel"
	"github.com/globalguide/travelagent/llmutils"
	"github.com/globalguide/travelagent/schema"
	"github.com/globalguide/travelagent/tools"
	mcp "github.com/metoro-io/mcp-golang"
)

// ForecastDays is fixed: the forecast tool always reports exactly this many
// daily summaries, regardless of how many days the model asks for.
const ForecastDays = 5

// ForecastRequest represents the get_weather_forecast tool input.
type ForecastRequest struct {
	Location string `json:"location" jsonschema:"title=Location,description=The city or location to get the 5-day weather forecast for (e.g. 'Paris')."`
}

// DaySummary is one day of the forecast.
type DaySummary struct {
	Date       string  `json:"date"`
	MinTemp    float64 `json:"min_temp_c"`
	MaxTemp    float64 `json:"max_temp_c"`
	Conditions string  `json:"conditions"`
}

// ForecastResult is the fixed 5-day outlook for a location.
type ForecastResult struct {
	Location string       `json:"location"`
	Days     []DaySummary `json:"days"`
}

func (r *ForecastResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *ForecastResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weather forecast for %s for %d days:\n", r.Location, len(r.Days))
	for _, d := range r.Days {
		fmt.Fprintf(&b, "- %s: %.1f°C to %.1f°C, %s\n", d.Date, d.MinTemp, d.MaxTemp, d.Conditions)
	}
	return b.String()
}

// ForecastTool reports the 5-day outlook for a location, aggregated from
// OpenWeatherMap's 3-hourly feed.
type ForecastTool struct {
	name        string
	description string
	funcParams  any

	baseURL    string
	httpClient *http.Client
}

var _ tools.Tool[ForecastRequest, ForecastResult] = (*ForecastTool)(nil)

func NewForecast() (*ForecastTool, error) {
	if err := requireAPIKey(); err != nil {
		return nil, err
	}

	sc, err := schema.New(reflect.TypeOf(ForecastRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &ForecastTool{
		name: ForecastToolName,
		description: "Fetches the 5-day weather forecast for a specified city or location. " +
			"Returns a daily summary with temperature range and conditions. " +
			"This tool always provides exactly a 5-day forecast.",
		baseURL:    DefaultBaseURL,
		httpClient: tools.NewHTTPClient(),
		funcParams: sc.Parameters,
	}
	return tool, nil
}

func (t *ForecastTool) WithBaseURL(baseURL string) *ForecastTool {
	t.baseURL = baseURL
	return t
}

func (t *ForecastTool) WithHTTPClient(client *http.Client) *ForecastTool {
	t.httpClient = client
	return t
}

func (t *ForecastTool) Name() string        { return t.name }
func (t *ForecastTool) Description() string { return t.description }
func (t *ForecastTool) Parameters() any     { return t.funcParams }

func (t *ForecastTool) Run(ctx context.Context, req *ForecastRequest) (*ForecastResult, error) {
	if strings.TrimSpace(req.Location) == "" {
		return nil, errors.New("invalid request: empty location")
	}

	var data forecastResponse
	if err := fetchJSON(ctx, t.httpClient, t.baseURL+"/forecast", req.Location, &data); err != nil {
		return nil, err
	}

	days, err := aggregateDaily(data.List, req.Location)
	if err != nil {
		return nil, err
	}

	return &ForecastResult{
		Location: req.Location,
		Days:     days,
	}, nil
}

func (t *ForecastTool) Call(ctx context.Context, input string) (string, error) {
	var req ForecastRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}

// forecastResponse is the subset of the OpenWeatherMap 5-day forecast payload
// the tool consumes: 3-hourly entries with a "YYYY-MM-DD HH:MM:SS" timestamp.
type forecastResponse struct {
	List []forecastEntry `json:"list"`
}

type forecastEntry struct {
	DtTxt string `json:"dt_txt"`
	Main  struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// aggregateDaily folds the 3-hourly entries into per-day summaries and keeps
// the first ForecastDays dates. Fewer upstream days is an error, not a short
// list: callers rely on the fixed length.
func aggregateDaily(entries []forecastEntry, location string) ([]DaySummary, error) {
	type dayAgg struct {
		min, max   float64
		conditions map[string]struct{}
	}

	byDate := make(map[string]*dayAgg)
	var dates []string
	for _, e := range entries {
		date, _, ok := strings.Cut(e.DtTxt, " ")
		if !ok || date == "" {
			continue
		}
		agg := byDate[date]
		if agg == nil {
			agg = &dayAgg{min: e.Main.Temp, max: e.Main.Temp, conditions: make(map[string]struct{})}
			byDate[date] = agg
			dates = append(dates, date)
		}
		agg.min = min(agg.min, e.Main.Temp)
		agg.max = max(agg.max, e.Main.Temp)
		for _, w := range e.Weather {
			if w.Description != "" {
				agg.conditions[w.Description] = struct{}{}
			}
		}
	}

	sort.Strings(dates)
	if len(dates) < ForecastDays {
		return nil, errors.Newf("forecast for %q covers only %d days, expected %d", location, len(dates), ForecastDays)
	}

	days := make([]DaySummary, 0, ForecastDays)
	for _, date := range dates[:ForecastDays] {
		agg := byDate[date]
		conditions := make([]string, 0, len(agg.conditions))
		for c := range agg.conditions {
			conditions = append(conditions, c)
		}
		sort.Strings(conditions)
		days = append(days, DaySummary{
			Date:       date,
			MinTemp:    agg.min,
			MaxTemp:    agg.max,
			Conditions: capitalize(strings.Join(conditions, ", ")),
		})
	}
	return days, nil
}

var _ tools.MCPTool[ForecastRequest] = (*ForecastTool)(nil)

func (t *ForecastTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

func (t *ForecastTool) RunMCP(ctx context.Context, req *ForecastRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(res.GetContent())), nil
}

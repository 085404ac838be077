package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/globalguide/travelagent/chatmodel"
	"github.com/globalguide/travelagent/llmutils"
	"github.com/globalguide/travelagent/schema"
	"github.com/globalguide/travelagent/tools"
	mcp "github.com/metoro-io/mcp-golang"
)

const (
	CurrentToolName  = "get_current_weather"
	ForecastToolName = "get_weather_forecast"

	// DefaultBaseURL is the OpenWeatherMap API endpoint.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
)

// CurrentRequest represents the get_current_weather tool input.
type CurrentRequest struct {
	Location string `json:"location" jsonschema:"title=Location,description=The city or location to get current weather for (e.g. 'London, UK')."`
}

// CurrentResult is the current weather report for a location.
type CurrentResult struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature_c"`
	FeelsLike   float64 `json:"feels_like_c"`
	Conditions  string  `json:"conditions"`
	Humidity    int     `json:"humidity_pct"`
	WindSpeed   float64 `json:"wind_speed_ms"`
}

func (r *CurrentResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *CurrentResult) String() string {
	return fmt.Sprintf(
		"Current weather in %s:\nTemperature: %.1f°C (Feels like: %.1f°C)\nConditions: %s\nHumidity: %d%%\nWind Speed: %.1f m/s",
		r.Location, r.Temperature, r.FeelsLike, r.Conditions, r.Humidity, r.WindSpeed)
}

// CurrentTool reports current conditions for a location.
type CurrentTool struct {
	name        string
	description string
	funcParams  any

	baseURL    string
	httpClient *http.Client
}

var _ tools.Tool[CurrentRequest, CurrentResult] = (*CurrentTool)(nil)

func requireAPIKey() error {
	if os.Getenv("OPENWEATHERMAP_API_KEY") == "" {
		return errors.New("OPENWEATHERMAP_API_KEY is not set")
	}
	return nil
}

func NewCurrent() (*CurrentTool, error) {
	if err := requireAPIKey(); err != nil {
		return nil, err
	}

	sc, err := schema.New(reflect.TypeOf(CurrentRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &CurrentTool{
		name: CurrentToolName,
		description: "Fetches the current weather conditions for a specified city or location. " +
			"Returns temperature, conditions, humidity and wind speed. " +
			"The location should be a city name, optionally followed by a country code (e.g. 'London, UK').",
		baseURL:    DefaultBaseURL,
		httpClient: tools.NewHTTPClient(),
		funcParams: sc.Parameters,
	}
	return tool, nil
}

func (t *CurrentTool) WithBaseURL(baseURL string) *CurrentTool {
	t.baseURL = baseURL
	return t
}

func (t *CurrentTool) WithHTTPClient(client *http.Client) *CurrentTool {
	t.httpClient = client
	return t
}

func (t *CurrentTool) Name() string        { return t.name }
func (t *CurrentTool) Description() string { return t.description }
func (t *CurrentTool) Parameters() any     { return t.funcParams }

func (t *CurrentTool) Run(ctx context.Context, req *CurrentRequest) (*CurrentResult, error) {
	if strings.TrimSpace(req.Location) == "" {
		return nil, errors.New("invalid request: empty location")
	}

	var data currentResponse
	if err := fetchJSON(ctx, t.httpClient, t.baseURL+"/weather", req.Location, &data); err != nil {
		return nil, err
	}

	if len(data.Weather) == 0 {
		return nil, errors.Newf("no weather data returned for %q", req.Location)
	}

	res := &CurrentResult{
		Location:    req.Location,
		Temperature: data.Main.Temp,
		FeelsLike:   data.Main.FeelsLike,
		Conditions:  capitalize(data.Weather[0].Description),
		Humidity:    data.Main.Humidity,
		WindSpeed:   data.Wind.Speed,
	}
	return res, nil
}

func (t *CurrentTool) Call(ctx context.Context, input string) (string, error) {
	var req CurrentRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}

// currentResponse is the subset of the OpenWeatherMap current weather payload
// the tool consumes.
type currentResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type errorResponse struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}

// fetchJSON performs one OpenWeatherMap GET with the location query and
// decodes the payload. Unresolvable locations and non-success statuses come
// back as descriptive errors, never as partial results.
func fetchJSON(ctx context.Context, client *http.Client, endpoint, location string, out any) error {
	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", os.Getenv("OPENWEATHERMAP_API_KEY"))
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "weather service unreachable for %q", location)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read weather response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return errors.Newf("location %q not found, provide a valid city name", location)
	}
	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		_ = json.Unmarshal(body, &er)
		if er.Message != "" {
			return errors.Newf("weather service error for %q: %s", location, er.Message)
		}
		return errors.Newf("weather service error for %q: status %d", location, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "malformed weather response for %q", location)
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var _ tools.MCPTool[CurrentRequest] = (*CurrentTool)(nil)

func (t *CurrentTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

func (t *CurrentTool) RunMCP(ctx context.Context, req *CurrentRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(res.GetContent())), nil
}

// Package currency converts amounts between currencies using the
// ExchangeRate-API pair endpoint.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
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
	ConvertToolName = "convert_currency"

	// DefaultBaseURL is the ExchangeRate-API v6 endpoint. The API key is
	// a path segment, appended by the tool.
	DefaultBaseURL = "https://v6.exchangerate-api.com/v6"
)

// ConvertRequest represents the convert_currency tool input.
type ConvertRequest struct {
	Amount       float64 `json:"amount" jsonschema:"title=Amount,description=The amount of money to convert."`
	FromCurrency string  `json:"from_currency" jsonschema:"title=From Currency,description=The ISO 4217 code of the source currency (e.g. 'USD')."`
	ToCurrency   string  `json:"to_currency" jsonschema:"title=To Currency,description=The ISO 4217 code of the target currency (e.g. 'EUR')."`
}

// ConvertResult is a completed conversion including the rate applied.
type ConvertResult struct {
	Amount       float64 `json:"amount"`
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
	Rate         float64 `json:"rate"`
	Converted    float64 `json:"converted"`
}

func (r *ConvertResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *ConvertResult) String() string {
	return fmt.Sprintf("%.2f %s = %.2f %s (rate %.6f)",
		r.Amount, r.FromCurrency, r.Converted, r.ToCurrency, r.Rate)
}

// ConvertTool converts an amount between two currencies at the current
// exchange rate. Converting a currency to itself short-circuits with rate 1
// and no upstream call.
type ConvertTool struct {
	name        string
	description string
	funcParams  any

	baseURL    string
	httpClient *http.Client
}

var _ tools.Tool[ConvertRequest, ConvertResult] = (*ConvertTool)(nil)

func requireAPIKey() error {
	if os.Getenv("EXCHANGE_RATE_API_KEY") == "" {
		return errors.New("EXCHANGE_RATE_API_KEY is not set")
	}
	return nil
}

func NewConvert() (*ConvertTool, error) {
	if err := requireAPIKey(); err != nil {
		return nil, err
	}

	sc, err := schema.New(reflect.TypeOf(ConvertRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &ConvertTool{
		name: ConvertToolName,
		description: "Converts an amount of money from one currency to another at the current " +
			"exchange rate. Currencies are ISO 4217 codes such as 'USD', 'EUR' or 'JPY'.",
		baseURL:    DefaultBaseURL,
		httpClient: tools.NewHTTPClient(),
		funcParams: sc.Parameters,
	}
	return tool, nil
}

func (t *ConvertTool) WithBaseURL(baseURL string) *ConvertTool {
	t.baseURL = baseURL
	return t
}

func (t *ConvertTool) WithHTTPClient(client *http.Client) *ConvertTool {
	t.httpClient = client
	return t
}

func (t *ConvertTool) Name() string        { return t.name }
func (t *ConvertTool) Description() string { return t.description }
func (t *ConvertTool) Parameters() any     { return t.funcParams }

func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", errors.Newf("invalid currency code %q, expected a 3-letter ISO 4217 code", code)
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return "", errors.Newf("invalid currency code %q, expected a 3-letter ISO 4217 code", code)
		}
	}
	return code, nil
}

func (t *ConvertTool) Run(ctx context.Context, req *ConvertRequest) (*ConvertResult, error) {
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount < 0 {
		return nil, errors.New("amount must be a non-negative number")
	}
	from, err := normalizeCode(req.FromCurrency)
	if err != nil {
		return nil, err
	}
	to, err := normalizeCode(req.ToCurrency)
	if err != nil {
		return nil, err
	}

	res := &ConvertResult{
		Amount:       req.Amount,
		FromCurrency: from,
		ToCurrency:   to,
	}

	// same-currency conversions never hit the rate service
	if from == to {
		res.Rate = 1
		res.Converted = req.Amount
		return res, nil
	}

	rate, err := t.fetchRate(ctx, from, to)
	if err != nil {
		return nil, err
	}
	res.Rate = rate
	res.Converted = req.Amount * rate
	return res, nil
}

type rateResponse struct {
	Result         string  `json:"result"`
	ErrorType      string  `json:"error-type"`
	ConversionRate float64 `json:"conversion_rate"`
}

func (t *ConvertTool) fetchRate(ctx context.Context, from, to string) (float64, error) {
	endpoint := fmt.Sprintf("%s/%s/pair/%s/%s",
		t.baseURL, os.Getenv("EXCHANGE_RATE_API_KEY"), from, to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create request")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "exchange rate service unreachable for %s/%s", from, to)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read exchange rate response")
	}

	var data rateResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, errors.Wrapf(err, "malformed exchange rate response for %s/%s", from, to)
	}

	if data.Result != "success" {
		reason := data.ErrorType
		if reason == "" {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return 0, errors.Newf("exchange rate service error for %s/%s: %s", from, to, reason)
	}
	if data.ConversionRate <= 0 {
		return 0, errors.Newf("exchange rate service returned invalid rate for %s/%s", from, to)
	}
	return data.ConversionRate, nil
}

func (t *ConvertTool) Call(ctx context.Context, input string) (string, error) {
	var req ConvertRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}

var _ tools.MCPTool[ConvertRequest] = (*ConvertTool)(nil)

func (t *ConvertTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

func (t *ConvertTool) RunMCP(ctx context.Context, req *ConvertRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(res.GetContent())), nil
}

// Package expense provides the arithmetic tools of the trip budget: total
// cost, hotel cost and daily budget. The tools call no upstream service and
// never round, presentation formatting is left to the model.
package expense

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/globalguide/travelagent/chatmodel"
	"github.com/globalguide/travelagent/llmutils"
	"github.com/globalguide/travelagent/schema"
	"github.com/globalguide/travelagent/tools"
	mcp "github.com/metoro-io/mcp-golang"
)

const (
	TotalCostToolName   = "calculate_total_cost"
	HotelCostToolName   = "calculate_hotel_cost"
	DailyBudgetToolName = "calculate_daily_budget"
)

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// TotalCostRequest represents the calculate_total_cost tool input.
type TotalCostRequest struct {
	Costs []float64 `json:"costs" jsonschema:"title=Costs,description=The individual cost amounts to sum, all in the same currency."`
}

// TotalCostResult is the sum of the submitted costs.
type TotalCostResult struct {
	Total float64 `json:"total"`
}

func (r *TotalCostResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *TotalCostResult) String() string {
	return fmt.Sprintf("Total cost: %.2f", r.Total)
}

// TotalCostTool sums a list of cost amounts. An empty list totals zero.
type TotalCostTool struct {
	name        string
	description string
	funcParams  any
}

var _ tools.Tool[TotalCostRequest, TotalCostResult] = (*TotalCostTool)(nil)

func NewTotalCost() (*TotalCostTool, error) {
	sc, err := schema.New(reflect.TypeOf(TotalCostRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &TotalCostTool{
		name: TotalCostToolName,
		description: "Sums a list of individual cost amounts into a single total. " +
			"All amounts must be in the same currency. An empty list totals 0.",
		funcParams: sc.Parameters,
	}, nil
}

func (t *TotalCostTool) Name() string        { return t.name }
func (t *TotalCostTool) Description() string { return t.description }
func (t *TotalCostTool) Parameters() any     { return t.funcParams }

func (t *TotalCostTool) Run(_ context.Context, req *TotalCostRequest) (*TotalCostResult, error) {
	var total float64
	for i, c := range req.Costs {
		if !validAmount(c) {
			return nil, errors.Newf("invalid cost at index %d", i)
		}
		total += c
	}
	return &TotalCostResult{Total: total}, nil
}

func (t *TotalCostTool) Call(ctx context.Context, input string) (string, error) {
	var req TotalCostRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}

// HotelCostRequest represents the calculate_hotel_cost tool input.
type HotelCostRequest struct {
	PricePerNight float64 `json:"price_per_night" jsonschema:"title=Price Per Night,description=The nightly room rate."`
	Nights        float64 `json:"nights" jsonschema:"title=Nights,description=The number of nights to stay."`
}

// HotelCostResult is the total lodging cost for a stay.
type HotelCostResult struct {
	PricePerNight float64 `json:"price_per_night"`
	Nights        float64 `json:"nights"`
	Total         float64 `json:"total"`
}

func (r *HotelCostResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *HotelCostResult) String() string {
	return fmt.Sprintf("Hotel cost: %.2f per night x %g nights = %.2f", r.PricePerNight, r.Nights, r.Total)
}

// HotelCostTool multiplies the nightly rate by the number of nights.
type HotelCostTool struct {
	name        string
	description string
	funcParams  any
}

var _ tools.Tool[HotelCostRequest, HotelCostResult] = (*HotelCostTool)(nil)

func NewHotelCost() (*HotelCostTool, error) {
	sc, err := schema.New(reflect.TypeOf(HotelCostRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &HotelCostTool{
		name: HotelCostToolName,
		description: "Calculates the total lodging cost of a stay from the nightly room rate " +
			"and the number of nights.",
		funcParams: sc.Parameters,
	}, nil
}

func (t *HotelCostTool) Name() string        { return t.name }
func (t *HotelCostTool) Description() string { return t.description }
func (t *HotelCostTool) Parameters() any     { return t.funcParams }

func (t *HotelCostTool) Run(_ context.Context, req *HotelCostRequest) (*HotelCostResult, error) {
	if !validAmount(req.PricePerNight) || req.PricePerNight < 0 {
		return nil, errors.New("price per night must be a non-negative number")
	}
	if !validAmount(req.Nights) || req.Nights < 0 {
		return nil, errors.New("nights must be a non-negative number")
	}
	return &HotelCostResult{
		PricePerNight: req.PricePerNight,
		Nights:        req.Nights,
		Total:         req.PricePerNight * req.Nights,
	}, nil
}

func (t *HotelCostTool) Call(ctx context.Context, input string) (string, error) {
	var req HotelCostRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}

// DailyBudgetRequest represents the calculate_daily_budget tool input.
type DailyBudgetRequest struct {
	TotalBudget float64 `json:"total_budget" jsonschema:"title=Total Budget,description=The total budget for the trip."`
	Days        float64 `json:"days" jsonschema:"title=Days,description=The number of days the budget has to cover, must be greater than zero."`
}

// DailyBudgetResult is the per-day spending allowance.
type DailyBudgetResult struct {
	TotalBudget float64 `json:"total_budget"`
	Days        float64 `json:"days"`
	PerDay      float64 `json:"per_day"`
}

func (r *DailyBudgetResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *DailyBudgetResult) String() string {
	return fmt.Sprintf("Daily budget: %.2f over %g days = %.2f per day", r.TotalBudget, r.Days, r.PerDay)
}

// DailyBudgetTool divides a total budget across the days of a trip.
type DailyBudgetTool struct {
	name        string
	description string
	funcParams  any
}

var _ tools.Tool[DailyBudgetRequest, DailyBudgetResult] = (*DailyBudgetTool)(nil)

func NewDailyBudget() (*DailyBudgetTool, error) {
	sc, err := schema.New(reflect.TypeOf(DailyBudgetRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &DailyBudgetTool{
		name: DailyBudgetToolName,
		description: "Divides a total trip budget by the number of days to produce a per-day " +
			"spending allowance. The number of days must be greater than zero.",
		funcParams: sc.Parameters,
	}, nil
}

func (t *DailyBudgetTool) Name() string        { return t.name }
func (t *DailyBudgetTool) Description() string { return t.description }
func (t *DailyBudgetTool) Parameters() any     { return t.funcParams }

func (t *DailyBudgetTool) Run(_ context.Context, req *DailyBudgetRequest) (*DailyBudgetResult, error) {
	if !validAmount(req.TotalBudget) || req.TotalBudget < 0 {
		return nil, errors.New("total budget must be a non-negative number")
	}
	if !validAmount(req.Days) || req.Days <= 0 {
		return nil, errors.New("days must be greater than zero")
	}
	return &DailyBudgetResult{
		TotalBudget: req.TotalBudget,
		Days:        req.Days,
		PerDay:      req.TotalBudget / req.Days,
	}, nil
}

func (t *DailyBudgetTool) Call(ctx context.Context, input string) (string, error) {
	var req DailyBudgetRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}

var _ tools.MCPTool[TotalCostRequest] = (*TotalCostTool)(nil)

func (t *TotalCostTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

func (t *TotalCostTool) RunMCP(ctx context.Context, req *TotalCostRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(res.GetContent())), nil
}

var _ tools.MCPTool[HotelCostRequest] = (*HotelCostTool)(nil)

func (t *HotelCostTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

func (t *HotelCostTool) RunMCP(ctx context.Context, req *HotelCostRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(res.GetContent())), nil
}

var _ tools.MCPTool[DailyBudgetRequest] = (*DailyBudgetTool)(nil)

func (t *DailyBudgetTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

func (t *DailyBudgetTool) RunMCP(ctx context.Context, req *DailyBudgetRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(res.GetContent())), nil
}

// Package planner assembles the travel planning assistant: the system
// prompt, the tool registry, and the orchestration loop over an LLM.
package planner

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"

	"github.com/globalguide/travelagent/assistants"
	"github.com/globalguide/travelagent/chatmodel"
	"github.com/globalguide/travelagent/encoding"
	"github.com/globalguide/travelagent/tools"
	"github.com/globalguide/travelagent/tools/currency"
	"github.com/globalguide/travelagent/tools/expense"
	"github.com/globalguide/travelagent/tools/places"
	"github.com/globalguide/travelagent/tools/weather"
	"github.com/globalguide/travelagent/tools/websearch"
)

const systemPrompt = `You are GlobalGuide, an expert AI travel agent. You help travelers plan
complete trips: destinations, day-by-day itineraries, accommodation, dining,
activities, budgets and practical advice.

## How to work

1. Understand the request first. If the destination, dates, trip length or
   budget are ambiguous, ask a short clarifying question instead of guessing.
2. Use your tools for facts. Never invent weather, prices or place names.
   - Always check the current weather AND the 5-day forecast for each
     destination before recommending activities.
   - Search for attractions, restaurants and accommodations that match the
     traveler's stated interests and price preferences.
   - Use the expense calculators for hotel totals, daily budgets and overall
     trip cost, and convert currencies when the traveler's home currency
     differs from the destination's.
3. Keep your reasoning to yourself. The final answer must be clean Markdown
   only; never show raw tool names, call syntax or JSON to the traveler.

## Answer format

For a full trip plan, respond with:
- A one-paragraph trip summary.
- A day-by-day itinerary. For each day list recommended attractions or
  activities, a dining suggestion, and how the forecast affects the plan.
- An accommodation section with 2-3 options and nightly rates when known.
- A transportation note (getting there and getting around).
- A weather summary covering the trip window.
- A budget breakdown: accommodation, food, activities, transport, and a daily
  figure, in the traveler's currency when it was requested.

For narrower questions, answer just the question, still grounded in tool
results and formatted as Markdown.`

// Planner answers travel questions by running the assistant loop with the
// full tool set until the model produces a final markdown itinerary.
type Planner struct {
	assistant *assistants.Assistant[chatmodel.String]
	tools     []tools.ITool
}

// NewTools constructs the full tool registry. The weather, places and
// currency tools require their API keys in the environment; the web search
// tool is added only when TAVILY_API_KEY is present.
func NewTools() ([]tools.ITool, error) {
	currentWeather, err := weather.NewCurrent()
	if err != nil {
		return nil, err
	}
	forecast, err := weather.NewForecast()
	if err != nil {
		return nil, err
	}
	interest, err := places.NewPlacesOfInterest()
	if err != nil {
		return nil, err
	}
	restaurants, err := places.NewRestaurants()
	if err != nil {
		return nil, err
	}
	accommodations, err := places.NewAccommodations()
	if err != nil {
		return nil, err
	}
	totalCost, err := expense.NewTotalCost()
	if err != nil {
		return nil, err
	}
	hotelCost, err := expense.NewHotelCost()
	if err != nil {
		return nil, err
	}
	dailyBudget, err := expense.NewDailyBudget()
	if err != nil {
		return nil, err
	}
	convert, err := currency.NewConvert()
	if err != nil {
		return nil, err
	}

	list := []tools.ITool{
		currentWeather,
		forecast,
		interest,
		restaurants,
		accommodations,
		totalCost,
		hotelCost,
		dailyBudget,
		convert,
	}

	if os.Getenv("TAVILY_API_KEY") != "" {
		search, err := websearch.New()
		if err != nil {
			return nil, err
		}
		list = append(list, search)
	}
	return list, nil
}

// New builds the travel planner over the given model with the full tool
// registry. Extra tools may be supplied for tests or MCP composition.
func New(llmModel llms.Model, options ...assistants.Option) (*Planner, error) {
	toolSet, err := NewTools()
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create tools")
	}
	return NewWithTools(llmModel, toolSet, options...)
}

// NewWithTools builds the planner over an explicit tool set.
func NewWithTools(llmModel llms.Model, toolSet []tools.ITool, options ...assistants.Option) (*Planner, error) {
	if llmModel == nil {
		return nil, errors.New("llm model is required")
	}
	assistant := assistants.NewAssistant[chatmodel.String](
		llmModel,
		prompts.NewPromptTemplate(systemPrompt, []string{}),
		options...,
	).
		WithName("Travel Planner").
		WithDescription("Plans trips: itineraries, accommodation, dining, weather, budgets and currency conversion.").
		WithOutputParser(encoding.NewSimpleOutputParser()).
		WithTools(toolSet...)

	return &Planner{
		assistant: assistant,
		tools:     toolSet,
	}, nil
}

// Assistant exposes the underlying assistant, for MCP registration.
func (p *Planner) Assistant() *assistants.Assistant[chatmodel.String] {
	return p.assistant
}

// Tools returns the registered tool set.
func (p *Planner) Tools() []tools.ITool {
	return p.tools
}

// Plan answers a travel question and returns the markdown answer. The
// context must carry a chat context; use chatmodel.WithChatContext.
func (p *Planner) Plan(ctx context.Context, question string) (string, error) {
	var answer chatmodel.String
	_, err := p.assistant.Run(ctx, question, nil, &answer)
	if err != nil {
		return "", err
	}
	return answer.GetContent(), nil
}

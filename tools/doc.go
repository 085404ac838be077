// Package tools defines the capability contract between the travel planning
// agent and its external data sources.
//
// Each subpackage implements one tool family:
//
//   - weather: current conditions and the fixed 5-day forecast (OpenWeatherMap)
//   - places: attractions, restaurants and accommodations (Google Places)
//   - expense: trip cost arithmetic, no upstream calls
//   - currency: live exchange-rate conversion (ExchangeRate-API)
//   - websearch: general web lookups (Tavily)
//
// Every tool catches its own upstream failures and returns a descriptive
// error value instead of terminating the request, so the orchestrator can
// reason about the failure.
package tools

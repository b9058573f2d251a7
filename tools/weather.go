package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/dagflowio/dagflow/llm"
)

// WeatherSpec is the llm.ToolSpec for WeatherTool, reproducing the
// original's spec_get_current_weather.
var WeatherSpec = llm.ToolSpec{
	Name:        "get_current_weather",
	Description: "Get the current weather for a named location.",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location": map[string]any{"type": "string", "description": "City name, e.g. San Francisco"},
			"unit":     map[string]any{"type": "string", "enum": []string{"celsius", "fahrenheit"}},
		},
		"required": []string{"location"},
	},
}

// WeatherTool is a deterministic stand-in for a real weather API,
// reproducing the original example's get_current_weather: a fixed,
// location-keyed lookup table rather than a live HTTP call, so the
// dagflow-demo CLI runs without network access or an API key.
type WeatherTool struct {
	Lookup map[string]string // location -> conditions summary
}

// NewWeatherTool builds a WeatherTool with a small built-in lookup table.
func NewWeatherTool() *WeatherTool {
	return &WeatherTool{Lookup: map[string]string{
		"san francisco": "62F, foggy",
		"new york":      "71F, clear",
		"tokyo":         "79F, humid",
	}}
}

// Name returns "get_current_weather".
func (w *WeatherTool) Name() string { return WeatherSpec.Name }

// Call looks up input["location"] (case-insensitively) in w.Lookup.
func (w *WeatherTool) Call(_ context.Context, input map[string]any) (map[string]any, error) {
	loc, _ := input["location"].(string)
	if loc == "" {
		return nil, errors.New("tools: get_current_weather requires a location")
	}
	conditions, ok := w.Lookup[strings.ToLower(loc)]
	if !ok {
		conditions = "unknown"
	}
	return map[string]any{"location": loc, "conditions": conditions}, nil
}

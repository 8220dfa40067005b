package advisor

import (
	"encoding/json"
	"fmt"
	"strings"
)

type splitResponse struct {
	Splits []splitMarker `json:"splits"`
}

type splitMarker struct {
	Marker string `json:"marker"`
	Kind   string `json:"kind"`
}

// parseSplits extracts the marker list from a model response, tolerating
// fenced code blocks and surrounding prose.
func parseSplits(response string) ([]string, error) {
	jsonText, err := extractJSON(response)
	if err != nil {
		return nil, err
	}

	var parsed splitResponse
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, fmt.Errorf("parse suggestion JSON: %w", err)
	}
	if len(parsed.Splits) == 0 {
		return nil, fmt.Errorf("suggestion contains no splits")
	}

	markers := make([]string, 0, len(parsed.Splits))
	for _, s := range parsed.Splits {
		markers = append(markers, s.Marker)
	}
	return markers, nil
}

// extractJSON pulls the JSON object out of a response that may wrap it in a
// ```json fence or lead with prose.
func extractJSON(response string) (string, error) {
	if i := strings.Index(response, "```json"); i >= 0 {
		rest := response[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j]), nil
		}
		return strings.TrimSpace(rest), nil
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return response[start : end+1], nil
}

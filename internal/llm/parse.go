package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RawElement is one detected element as returned by the model, before the
// framework layer validates and clamps it.
type RawElement struct {
	Type                 string            `json:"type"`
	Subtype              string            `json:"subtype,omitempty"`
	Evidence             string            `json:"evidence"`
	Confidence           float64           `json:"confidence"`
	Intensity            float64           `json:"intensity"`
	FirstDetectedMessage *int              `json:"first_detected_message,omitempty"`
	Attributes           map[string]string `json:"attributes,omitempty"`
}

// elementsEnvelope is the expected top-level response shape.
type elementsEnvelope struct {
	Elements []RawElement `json:"elements"`
}

// ParseElementsJSON parses model output into raw elements. Models sometimes
// wrap JSON in markdown code fences; those are stripped before parsing. Both
// an {"elements": [...]} envelope and a bare array are accepted.
func ParseElementsJSON(content string) ([]RawElement, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if content == "" {
		return nil, fmt.Errorf("empty model output")
	}

	if strings.HasPrefix(content, "[") {
		var elements []RawElement
		if err := json.Unmarshal([]byte(content), &elements); err != nil {
			return nil, fmt.Errorf("failed to parse elements array: %w", err)
		}
		return elements, nil
	}

	var envelope elementsEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse elements envelope: %w", err)
	}
	if envelope.Elements == nil {
		return nil, fmt.Errorf("model output missing elements field")
	}
	return envelope.Elements, nil
}

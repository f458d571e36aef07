// Package normalizer turns raw model replies into plan payloads.
package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"training-planner/internal/domain"
)

// wirePayload mirrors domain.PlanPayload with a pointer response so a missing
// key can be told apart from an empty string.
type wirePayload struct {
	Response     *string              `json:"response"`
	TrainingPlan *domain.TrainingPlan `json:"trainingPlan"`
}

// Normalize never fails. A reply that decodes as a plan payload is returned as
// decoded; anything else comes back as the raw text with no training plan.
func Normalize(raw string) domain.PlanPayload {
	payload, err := Decode(raw)
	if err != nil {
		return Fallback(raw)
	}
	return payload
}

// Fallback is the unstructured payload for raw.
func Fallback(raw string) domain.PlanPayload {
	return domain.PlanPayload{Response: raw, TrainingPlan: nil}
}

// Decode reads raw as exactly one JSON object carrying a string response and
// an optional training plan.
func Decode(raw string) (domain.PlanPayload, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return domain.PlanPayload{}, errors.New("normalizer: reply is not a JSON object")
	}

	var out wirePayload
	dec := json.NewDecoder(bytes.NewBufferString(trimmed))
	if err := dec.Decode(&out); err != nil {
		return domain.PlanPayload{}, fmt.Errorf("normalizer: decode payload: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return domain.PlanPayload{}, errors.New("normalizer: decode payload: multiple JSON values")
		}
		return domain.PlanPayload{}, fmt.Errorf("normalizer: decode payload trailing data: %w", err)
	}
	if out.Response == nil {
		return domain.PlanPayload{}, errors.New("normalizer: payload missing response")
	}
	return domain.PlanPayload{
		Response:     *out.Response,
		TrainingPlan: out.TrainingPlan,
	}, nil
}

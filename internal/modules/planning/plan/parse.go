package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyResponse = errors.New("plan: empty generator response")
	ErrNoJSONArray   = errors.New("plan: no JSON array in generator response")
	ErrNoValidPlan   = errors.New("plan: no valid plan in generator response")
)

// ExtractJSONArray strips a surrounding code fence and returns the text from
// the first '[' to the last ']'.
func ExtractJSONArray(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyResponse
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{") {
			s = s[nl+1:]
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end <= start {
		return "", ErrNoJSONArray
	}
	return s[start : end+1], nil
}

// Parse decodes and validates generator output. Invalid candidates are
// dropped; an error is returned when none survive.
func Parse(raw string) ([]Plan, error) {
	payload, err := ExtractJSONArray(raw)
	if err != nil {
		return nil, err
	}
	var candidates []Plan
	if err := json.Unmarshal([]byte(payload), &candidates); err != nil {
		return nil, fmt.Errorf("plan: decode: %w", err)
	}
	var (
		out     []Plan
		lastErr error
	)
	for i := range candidates {
		if err := candidates[i].Validate(); err != nil {
			lastErr = fmt.Errorf("candidate %d: %w", i, err)
			continue
		}
		candidates[i].Source = SourceAI
		out = append(out, candidates[i])
	}
	if len(out) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoValidPlan, lastErr)
		}
		return nil, ErrNoValidPlan
	}
	return out, nil
}

func (p Plan) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("missing title")
	}
	if p.Training == nil {
		return errors.New("missing training_plan")
	}
	if p.Training.Duration < 0 {
		return errors.New("negative training duration")
	}
	if p.Diet == nil {
		return errors.New("missing diet_plan")
	}
	if p.Diet.TotalCalories < 0 {
		return errors.New("negative total_calories")
	}
	if !p.Diet.Macros.nonNegative() {
		return errors.New("negative macro grams")
	}
	return nil
}

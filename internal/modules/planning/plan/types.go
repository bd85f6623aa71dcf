// Package plan holds the recommendation plan model and the pure steps around
// generation: prompt assembly, response parsing, meal split and fallbacks.
package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type Plan struct {
	Title    string        `json:"title"`
	Reason   string        `json:"reason"`
	Training *TrainingPlan `json:"training_plan"`
	Diet     *DietPlan     `json:"diet_plan"`
	// Strategy is the workload decision the plan was built for.
	Strategy string `json:"strategy,omitempty"`
	// Source is "ai", "fallback" or "rest".
	Source string `json:"source,omitempty"`
}

const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
	SourceRest     = "rest"
)

type TrainingPlan struct {
	Type        string   `json:"type"`
	Duration    Amount   `json:"duration"`
	Intensity   string   `json:"intensity"`
	FocusPart   string   `json:"focus_part"`
	Movements   []string `json:"movements"`
	Precautions Text     `json:"precautions"`
}

type Macros struct {
	ProteinG Amount `json:"protein_g"`
	CarbsG   Amount `json:"carbs_g"`
	FatG     Amount `json:"fat_g"`
}

func (m Macros) nonNegative() bool {
	return m.ProteinG >= 0 && m.CarbsG >= 0 && m.FatG >= 0
}

type Meal struct {
	Calories Amount `json:"calories"`
	Macros
	Menu Text `json:"menu,omitempty"`
}

type Meals struct {
	Breakfast *Meal `json:"breakfast"`
	Lunch     *Meal `json:"lunch"`
	Dinner    *Meal `json:"dinner"`
	Snack     *Meal `json:"snack,omitempty"`
}

type DietPlan struct {
	TotalCalories       Amount   `json:"total_calories"`
	Macros              Macros   `json:"macros"`
	Meals               *Meals   `json:"meals,omitempty"`
	ForbiddenCategories []string `json:"forbidden_categories"`
	Advice              Text     `json:"advice"`
}

// Amount is a whole number that also decodes from numeric strings such as
// "1850 kcal" or "60 min". It always encodes as a JSON number.
type Amount int

var amountRe = regexp.MustCompile(`-?[0-9]+(?:\.[0-9]+)?`)

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		m := amountRe.FindString(s)
		if m == "" {
			if strings.TrimSpace(s) == "" {
				*a = 0
				return nil
			}
			return fmt.Errorf("amount: no number in %q", s)
		}
		b = []byte(m)
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(math.Round(f))
	return nil
}

// Text is free text that also decodes from a JSON array of strings (joined by newlines).
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case b[0] == '[':
		var items []any
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if s, ok := it.(string); ok {
				parts = append(parts, s)
				continue
			}
			raw, _ := json.Marshal(it)
			parts = append(parts, string(raw))
		}
		*t = Text(strings.Join(parts, "\n"))
	default:
		*t = Text(b)
	}
	return nil
}

// UnmarshalJSON accepts the object form or a list of {"type": "lunch", ...} entries.
func (m *Meals) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '[' {
		var list []struct {
			Type string `json:"type"`
			Meal
		}
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		for i := range list {
			meal := list[i].Meal
			switch strings.ToLower(strings.TrimSpace(list[i].Type)) {
			case "breakfast":
				m.Breakfast = &meal
			case "lunch":
				m.Lunch = &meal
			case "dinner":
				m.Dinner = &meal
			case "snack":
				m.Snack = &meal
			}
		}
		return nil
	}
	type plain Meals
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*m = Meals(p)
	return nil
}

package plan

import (
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/fitpilot/fitpilot-backend/internal/domain"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/medical"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/nutrition"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/workload"
)

func TestFallbackDietMatchesNutrition(t *testing.T) {
	p := sampleProfile()
	target := nutrition.Calculate(p)
	labs := medical.LabValues{"glucose": "7.2"}
	got := Fallback(FallbackInput{
		Profile:     p,
		Target:      target,
		Status:      workload.Analyze(nil, p),
		Constraints: medical.InferConstraints(labs, p.Sex),
		Ratios:      SnackRatios,
	})

	if got.Source != SourceFallback {
		t.Fatalf("source=%q", got.Source)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("fallback plan invalid: %v", err)
	}
	d := got.Diet
	if int(d.TotalCalories) != target.DailyCalories || int(d.Macros.ProteinG) != target.ProteinG ||
		int(d.Macros.CarbsG) != target.CarbG || int(d.Macros.FatG) != target.FatG {
		t.Fatalf("diet %+v does not match target %+v", d, target)
	}
	sum := d.Meals.Breakfast.Calories + d.Meals.Lunch.Calories + d.Meals.Dinner.Calories + d.Meals.Snack.Calories
	if sum != d.TotalCalories {
		t.Fatalf("meal calories sum %d want %d", sum, d.TotalCalories)
	}
	if len(d.ForbiddenCategories) == 0 {
		t.Fatalf("expected forbidden categories from glucose rule")
	}
	if !strings.Contains(got.Reason, "BMI") || !strings.Contains(got.Reason, "gout") {
		t.Fatalf("reason lacks profile context: %q", got.Reason)
	}
}

func TestFallbackAvoidancePrecautions(t *testing.T) {
	p := sampleProfile()
	st := workload.Analyze([]*domain.UserFeedback{{
		FeedbackDate: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
		PainAreas:    datatypes.JSON(`["KNEE"]`),
	}}, p)
	got := Fallback(FallbackInput{Profile: p, Target: nutrition.Calculate(p), Status: st, Ratios: ThreeMealRatios})
	if got.Strategy != workload.NameAvoidance {
		t.Fatalf("strategy=%q", got.Strategy)
	}
	if !strings.Contains(string(got.Training.Precautions), "knee") {
		t.Fatalf("precautions should name the knee: %q", got.Training.Precautions)
	}
}

func TestFallbackTrainingTemplates(t *testing.T) {
	cases := map[string]string{
		domain.ActivitySedentary: "30 min brisk walk",
		domain.ActivityAthlete:   "40 min interval strength circuit",
		"":                       "30 min cardio (run or bike)",
	}
	for level, want := range cases {
		tp := FallbackTraining(level)
		if tp.Duration != 60 || tp.Intensity != "moderate" {
			t.Fatalf("level %q: unexpected block %+v", level, tp)
		}
		if !strings.Contains(strings.Join(tp.Movements, "|"), want) {
			t.Fatalf("level %q: movements %v missing %q", level, tp.Movements, want)
		}
	}
}

func TestRestPlan(t *testing.T) {
	got := RestPlan()
	if got.Source != SourceRest || got.Strategy != workload.NameRest {
		t.Fatalf("unexpected rest plan metadata %+v", got)
	}
	if got.Training.Intensity != "none" || got.Training.Duration != 0 {
		t.Fatalf("rest plan must carry no training load: %+v", got.Training)
	}
	d := got.Diet
	if d.TotalCalories != 0 || d.Macros.ProteinG != 0 || d.Macros.CarbsG != 0 || d.Macros.FatG != 0 {
		t.Fatalf("rest plan must carry zero diet: %+v", d)
	}
	if d.Meals == nil || d.Meals.Snack != nil || d.Meals.Lunch.Calories != 0 {
		t.Fatalf("rest plan meals should be a zero three-meal split: %+v", d.Meals)
	}
}

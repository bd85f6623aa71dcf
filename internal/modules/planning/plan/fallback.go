package plan

import (
	"fmt"
	"strings"

	"github.com/fitpilot/fitpilot-backend/internal/domain"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/medical"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/nutrition"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/tags"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/workload"
)

type template struct {
	segments []string
}

var (
	sedentaryTemplate = template{segments: []string{
		"30 min brisk walk", "15 min core activation", "10 min stretching",
	}}
	athleticTemplate = template{segments: []string{
		"15 min dynamic warm-up", "40 min interval strength circuit", "15 min cool-down stretching",
	}}
	defaultTemplate = template{segments: []string{
		"10 min warm-up", "30 min cardio (run or bike)", "20 min full-body strength circuit", "10 min stretching",
	}}
)

func templateFor(activity string) template {
	switch strings.ToLower(strings.TrimSpace(activity)) {
	case domain.ActivitySedentary:
		return sedentaryTemplate
	case domain.ActivityHeavy, domain.ActivityAthlete:
		return athleticTemplate
	default:
		return defaultTemplate
	}
}

// FallbackTraining is the canned session for an activity level.
func FallbackTraining(activity string) *TrainingPlan {
	tpl := templateFor(activity)
	return &TrainingPlan{
		Type:        "cardio + strength mix",
		Duration:    60,
		Intensity:   "moderate",
		FocusPart:   "full body",
		Movements:   append([]string(nil), tpl.segments...),
		Precautions: Text(strings.Join(tpl.segments, " + ")),
	}
}

type FallbackInput struct {
	Profile     *domain.UserProfile
	Target      nutrition.Target
	Status      workload.Status
	Constraints medical.Constraints
	Ratios      Ratios
}

// Fallback builds the deterministic plan. Its diet totals are the nutrition
// target exactly.
func Fallback(in FallbackInput) Plan {
	training := FallbackTraining(activityOf(in.Profile))
	if av, ok := in.Status.Strategy.(workload.Avoidance); ok && len(av.Areas) > 0 {
		names := make([]string, 0, len(av.Areas))
		for _, a := range av.Areas {
			names = append(names, tags.DisplayName(a))
		}
		training.Precautions += Text(fmt.Sprintf("\nSkip any movement that loads the %s; swap in upper/lower-body alternatives.", strings.Join(names, ", ")))
	}
	if len(in.Constraints.TrainingRisks) > 0 {
		training.Precautions += Text("\n" + strings.Join(in.Constraints.TrainingRisks, "; "))
	}

	diet := &DietPlan{
		TotalCalories:       Amount(in.Target.DailyCalories),
		Macros:              Macros{ProteinG: Amount(in.Target.ProteinG), CarbsG: Amount(in.Target.CarbG), FatG: Amount(in.Target.FatG)},
		ForbiddenCategories: append([]string{}, in.Constraints.ForbiddenCategories...),
		Advice:              Text(fallbackAdvice(in.Constraints)),
	}
	ApplyMealSplit(diet, in.Ratios)

	return Plan{
		Title:    "Balanced rule-based plan",
		Reason:   fallbackReason(in),
		Training: training,
		Diet:     diet,
		Strategy: in.Status.StrategyName(),
		Source:   SourceFallback,
	}
}

func fallbackAdvice(c medical.Constraints) string {
	if len(c.StrategyTags) == 0 {
		return "Spread protein across meals, favor whole foods and keep hydrated."
	}
	return fmt.Sprintf("Follow a %s. Spread protein across meals and keep hydrated.", strings.Join(c.StrategyTags, " and "))
}

func fallbackReason(in FallbackInput) string {
	var b strings.Builder
	b.WriteString("Rule-based plan built from your profile")
	if bmi, ok := nutrition.BMI(in.Profile); ok {
		fmt.Fprintf(&b, ": BMI %.1f", bmi)
		fmt.Fprintf(&b, ", BMR %.0f kcal", in.Target.BMR)
	} else {
		fmt.Fprintf(&b, ": BMR %.0f kcal", in.Target.BMR)
	}
	level := activityOf(in.Profile)
	if level == "" {
		level = domain.ActivityModerate
	}
	fmt.Fprintf(&b, ", activity level %s, maintenance about %d kcal, target %d kcal.",
		level, nutrition.MaintenanceCalories(in.Profile), in.Target.DailyCalories)
	if in.Profile != nil && strings.TrimSpace(in.Profile.MedicalHistory) != "" {
		fmt.Fprintf(&b, " Medical history considered: %s.", strings.TrimSpace(in.Profile.MedicalHistory))
	}
	if in.Status.UserMessage != "" {
		b.WriteString(" ")
		b.WriteString(in.Status.UserMessage)
	}
	return b.String()
}

// RestPlan is returned for a first-ever request late at night. It carries no
// training load and no calories.
func RestPlan() Plan {
	st := workload.RestStatus()
	return Plan{
		Title:  "Rest tonight, start fresh tomorrow",
		Reason: st.UserMessage + " Intense exercise this late can disrupt sleep.",
		Training: &TrainingPlan{
			Type:        "relaxation / sleep prep",
			Duration:    0,
			Intensity:   "none",
			FocusPart:   "whole-body relaxation",
			Movements:   []string{"diaphragmatic breathing (3 min)", "bedtime meditation (5 min)", "gentle neck and shoulder stretch (2 min)"},
			Precautions: "Optional. Keep the lights low and focus on slow breathing.",
		},
		Diet: &DietPlan{
			Meals:               SplitMeals(0, Macros{}, ThreeMealRatios),
			ForbiddenCategories: []string{"late-night snacks", "sugary drinks"},
			Advice:              "Avoid eating in the two hours before bed. If hungry, a glass of warm water or skim milk is fine.",
		},
		Strategy: st.StrategyName(),
		Source:   SourceRest,
	}
}

func activityOf(p *domain.UserProfile) string {
	if p == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(p.ActivityLevel))
}

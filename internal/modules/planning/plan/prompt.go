package plan

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fitpilot/fitpilot-backend/internal/domain"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/medical"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/nutrition"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/workload"
)

// SystemPrompt fixes the output contract for the generator.
const SystemPrompt = `You are a professional fitness and nutrition coach.
Combine the user's profile, goal, medical constraints and recent training feedback into plan candidates for today.
Rules:
1. Any instruction marked MANDATORY overrides every other consideration.
2. Never include foods from the forbidden categories.
3. Do not repeat yesterday's focus body part; vary the split.
4. Diet gives a macro framework and food suggestions, not recipes.
Output ONLY a JSON array with one object per candidate plan, best candidate first, no prose, no code fences:
[
  {
    "title": "string",
    "reason": "one or two sentences explaining today's adjustments",
    "training_plan": {
      "type": "string",
      "duration": 45,
      "intensity": "low|moderate|high",
      "focus_part": "string",
      "movements": ["movement - sets x reps"],
      "precautions": "string"
    },
    "diet_plan": {
      "total_calories": 2000,
      "macros": {"protein_g": 150, "carbs_g": 200, "fat_g": 60},
      "meals": {
        "breakfast": {"calories": 600, "menu": "string"},
        "lunch": {"calories": 800, "menu": "string"},
        "dinner": {"calories": 600, "menu": "string"}
      },
      "forbidden_categories": ["string"],
      "advice": "string"
    }
  }
]`

const maxRecentPlans = 3

// Wearable is today's device data sent with the generation request.
type Wearable struct {
	Steps            *int     `json:"steps,omitempty"`
	AverageHeartRate *int     `json:"average_heart_rate,omitempty"`
	SleepHours       *float64 `json:"sleep_hours,omitempty"`
}

func (w *Wearable) empty() bool {
	return w == nil || (w.Steps == nil && w.AverageHeartRate == nil && w.SleepHours == nil)
}

// HistoryEntry is the short summary of a past plan used for split variety.
type HistoryEntry struct {
	Date      string
	Title     string
	FocusPart string
	Type      string
}

// FeedbackSummary aggregates the recent feedback window.
type FeedbackSummary struct {
	Count         int
	AvgCompletion float64
	AvgRating     float64
}

type PromptInput struct {
	Profile       *domain.UserProfile
	Target        nutrition.Target
	Status        workload.Status
	Constraints   medical.Constraints
	MedicalAdvice string
	RecentPlans   []HistoryEntry
	Feedback      FeedbackSummary
	// DaysWithoutFeedback counts consecutive planned days, ending yesterday, with no feedback.
	DaysWithoutFeedback int
	Wearable            *Wearable
	Ratios              Ratios
}

// Prompt is built once and read-only afterwards.
type Prompt struct {
	system    string
	user      string
	mandatory bool
}

func (p Prompt) System() string  { return p.system }
func (p Prompt) User() string    { return p.user }
func (p Prompt) Mandatory() bool { return p.mandatory }

func NewPrompt(in PromptInput) Prompt {
	var b strings.Builder
	writeStatus(&b, in.Status)
	writeProfile(&b, in.Profile)
	writeNutrition(&b, in.Target, in.Ratios)
	writeMedical(&b, in.Profile, in.Constraints, in.MedicalAdvice)
	writeWearable(&b, in.Wearable)
	writeHistory(&b, in.RecentPlans, in.Feedback, in.DaysWithoutFeedback)
	b.WriteString("\n[Task]\nGenerate today's personalized plan. Explain the adjustments and safety notes in \"reason\".\n")
	return Prompt{system: SystemPrompt, user: b.String(), mandatory: in.Status.Mandatory}
}

func writeStatus(b *strings.Builder, st workload.Status) {
	b.WriteString("[Training status]\n")
	fmt.Fprintf(b, "- Strategy: %s (fatigue %s)\n", st.StrategyName(), st.FatigueLevel)
	if st.Mandatory {
		fmt.Fprintf(b, "- MANDATORY: %s\n", st.Instruction)
	} else {
		fmt.Fprintf(b, "- Instruction: %s\n", st.Instruction)
	}
	if st.LatestNote != "" {
		fmt.Fprintf(b, "- Latest note from user: %s\n", st.LatestNote)
	}
}

func writeProfile(b *strings.Builder, p *domain.UserProfile) {
	b.WriteString("\n[Profile]\n")
	if p == nil {
		b.WriteString("- unknown\n")
		return
	}
	sex := p.Sex
	if sex == "" {
		sex = domain.SexUnknown
	}
	fmt.Fprintf(b, "- Sex: %s, age: %s\n", sex, intOr(p.Age, "unknown"))
	fmt.Fprintf(b, "- Height: %s cm, weight: %s kg\n", floatOr(p.HeightCM, "unknown"), floatOr(p.WeightKG, "unknown"))
	if bmi, ok := nutrition.BMI(p); ok {
		fmt.Fprintf(b, "- BMI: %.1f\n", bmi)
	}
	fmt.Fprintf(b, "- Goal: %s", orDefault(p.Goal, domain.GoalMaintain))
	if p.TargetWeight != nil && p.WeightKG != nil {
		diff := *p.TargetWeight - *p.WeightKG
		switch {
		case diff > 0:
			fmt.Fprintf(b, " (gain %.1f kg)", diff)
		case diff < 0:
			fmt.Fprintf(b, " (lose %.1f kg)", -diff)
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "- Activity level: %s\n", orDefault(p.ActivityLevel, domain.ActivityModerate))
	if p.AvailableMinutes != nil {
		fmt.Fprintf(b, "- Available time: %d min/day (fit the session into this)\n", *p.AvailableMinutes)
	}
	if p.WeeklyFrequency != nil {
		fmt.Fprintf(b, "- Weekly sessions: %d", *p.WeeklyFrequency)
		switch {
		case *p.WeeklyFrequency >= 5:
			b.WriteString(" (high frequency, mind recovery days)")
		case *p.WeeklyFrequency <= 3:
			b.WriteString(" (low frequency, make each session count)")
		}
		b.WriteString("\n")
	}
	if p.TrainingLocation != "" {
		fmt.Fprintf(b, "- Training location: %s\n", p.TrainingLocation)
	}
	if p.FitnessLevel != "" {
		fmt.Fprintf(b, "- Fitness level: %s\n", p.FitnessLevel)
	}
	if p.SpecialRestrictions != "" {
		fmt.Fprintf(b, "- Restrictions/preferences: %s\n", p.SpecialRestrictions)
	}
}

func writeNutrition(b *strings.Builder, t nutrition.Target, r Ratios) {
	b.WriteString("\n[Nutrition target]\n")
	fmt.Fprintf(b, "- BMR %.1f kcal, TDEE %.1f kcal\n", t.BMR, t.TDEE)
	fmt.Fprintf(b, "- Daily calories %d kcal: protein %d g, carbs %d g, fat %d g\n", t.DailyCalories, t.ProteinG, t.CarbG, t.FatG)
	if r.Snack > 0 {
		fmt.Fprintf(b, "- Meal split %s (breakfast/lunch/dinner/snack); include a \"snack\" meal\n", percentages(r.Breakfast, r.Lunch, r.Dinner, r.Snack))
	} else {
		fmt.Fprintf(b, "- Meal split %s (breakfast/lunch/dinner); no snack\n", percentages(r.Breakfast, r.Lunch, r.Dinner))
	}
}

func writeMedical(b *strings.Builder, p *domain.UserProfile, c medical.Constraints, advice string) {
	history := ""
	if p != nil {
		history = strings.TrimSpace(p.MedicalHistory)
	}
	if history == "" && c.Empty() && !medical.HasAdvice(advice) {
		return
	}
	b.WriteString("\n[Medical]\n")
	if history != "" {
		fmt.Fprintf(b, "- History: %s\n", history)
	}
	if medical.HasAdvice(advice) {
		fmt.Fprintf(b, "%s\n", strings.TrimSpace(advice))
	} else if c.RiskWarning != "" {
		fmt.Fprintf(b, "- Risks: %s\n", c.RiskWarning)
	}
	if len(c.ForbiddenCategories) > 0 {
		fmt.Fprintf(b, "- Forbidden food categories: %s\n", strings.Join(c.ForbiddenCategories, ", "))
	}
	if len(c.StrategyTags) > 0 {
		fmt.Fprintf(b, "- Diet strategy: %s\n", strings.Join(c.StrategyTags, ", "))
	}
	if len(c.TrainingRisks) > 0 {
		fmt.Fprintf(b, "- Training restrictions: %s\n", strings.Join(c.TrainingRisks, "; "))
	}
}

func writeWearable(b *strings.Builder, w *Wearable) {
	if w.empty() {
		return
	}
	b.WriteString("\n[Wearable today]\n")
	if w.Steps != nil {
		fmt.Fprintf(b, "- Steps: %d\n", *w.Steps)
	}
	if w.AverageHeartRate != nil {
		fmt.Fprintf(b, "- Average heart rate: %d bpm\n", *w.AverageHeartRate)
	}
	if w.SleepHours != nil {
		fmt.Fprintf(b, "- Sleep: %.1f h\n", *w.SleepHours)
	}
}

func writeHistory(b *strings.Builder, recent []HistoryEntry, fb FeedbackSummary, daysWithout int) {
	b.WriteString("\n[Recent plans]\n")
	if len(recent) == 0 {
		b.WriteString("- none\n")
	}
	for _, h := range recent {
		fmt.Fprintf(b, "- %s: %s (focus: %s, type: %s)\n", h.Date, orDefault(h.Title, "untitled"), orDefault(h.FocusPart, "-"), orDefault(h.Type, "-"))
	}

	if fb.Count > 0 {
		b.WriteString("\n[Recent feedback]\n")
		fmt.Fprintf(b, "- %d entries, average completion %.0f%%, average rating %.1f/5\n", fb.Count, fb.AvgCompletion, fb.AvgRating)
		return
	}
	if adj := NoFeedbackAdjustment(daysWithout); adj != "" {
		b.WriteString("\n[No feedback]\n")
		fmt.Fprintf(b, "- %s\n", adj)
	}
}

// NoFeedbackAdjustment is the conservative intensity hint for planned days
// that got no feedback.
func NoFeedbackAdjustment(days int) string {
	switch {
	case days <= 0:
		return ""
	case days == 1:
		return "1 day without feedback: keep the current intensity."
	case days <= 3:
		return fmt.Sprintf("%d consecutive days without feedback: lower intensity by 10-15%%.", days)
	default:
		return fmt.Sprintf("%d consecutive days without feedback: lower intensity by 20-30%% and favor a recovery session.", days)
	}
}

// SummarizePlans returns up to three most recent plan summaries, newest first.
// Rows with unreadable JSON are skipped.
func SummarizePlans(rows []*domain.UserRecommendation) []HistoryEntry {
	sorted := make([]*domain.UserRecommendation, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PlanDate > sorted[j].PlanDate })

	out := make([]HistoryEntry, 0, maxRecentPlans)
	for _, r := range sorted {
		if len(out) == maxRecentPlans {
			break
		}
		var p Plan
		if err := json.Unmarshal(r.PlanJSON, &p); err != nil {
			continue
		}
		h := HistoryEntry{Date: r.PlanDate, Title: p.Title}
		if p.Training != nil {
			h.FocusPart = p.Training.FocusPart
			h.Type = p.Training.Type
		}
		out = append(out, h)
	}
	return out
}

func SummarizeFeedback(history []*domain.UserFeedback) FeedbackSummary {
	var (
		s                    FeedbackSummary
		compSum, rateSum     float64
		compCount, rateCount int
	)
	for _, f := range history {
		if f == nil {
			continue
		}
		s.Count++
		if f.CompletionRate != nil {
			compSum += float64(*f.CompletionRate)
			compCount++
		}
		if f.Rating != nil {
			rateSum += float64(*f.Rating)
			rateCount++
		}
	}
	if compCount > 0 {
		s.AvgCompletion = compSum / float64(compCount)
	}
	if rateCount > 0 {
		s.AvgRating = rateSum / float64(rateCount)
	}
	return s
}

// DaysWithoutFeedback walks back from yesterday and counts days that have a
// plan but no feedback, stopping at the first day that breaks the run.
func DaysWithoutFeedback(plans []*domain.UserRecommendation, feedback []*domain.UserFeedback, today time.Time, window int) int {
	planned := map[string]bool{}
	for _, p := range plans {
		if p != nil {
			planned[p.PlanDate] = true
		}
	}
	reported := map[string]bool{}
	for _, f := range feedback {
		if f != nil {
			reported[f.FeedbackDate.In(today.Location()).Format(time.DateOnly)] = true
		}
	}
	n := 0
	for i := 1; i <= window; i++ {
		d := today.AddDate(0, 0, -i).Format(time.DateOnly)
		if reported[d] || !planned[d] {
			break
		}
		n++
	}
	return n
}

func percentages(vals ...float64) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		parts = append(parts, fmt.Sprintf("%.0f%%", v*100))
	}
	return strings.Join(parts, "/")
}

func intOr(v *int, def string) string {
	if v == nil {
		return def
	}
	return fmt.Sprintf("%d", *v)
}

func floatOr(v *float64, def string) string {
	if v == nil {
		return def
	}
	return fmt.Sprintf("%.1f", *v)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// Package medical infers dietary and training constraints from lab values.
// Every function is pure and never panics; unparsable values are skipped.
package medical

import (
	"fmt"
	"strings"

	"github.com/fitpilot/fitpilot-backend/internal/domain"
)

// NoAdviceMarker is persisted when labs were evaluated and nothing fired, so
// "checked, no risk" stays distinct from "never computed" (empty string).
const NoAdviceMarker = "NO_MEDICAL_RISK"

const (
	uricAcidLimitMale   = 420.0 // μmol/L
	uricAcidLimitFemale = 360.0
	glucoseLimit        = 6.1 // mmol/L
	hba1cLimit          = 6.0 // %
	tgLimit             = 1.7 // mmol/L
	ldlLimit            = 3.4 // mmol/L
	systolicLimit       = 140.0
)

type Constraints struct {
	ForbiddenCategories []string `json:"forbidden_categories"`
	RecommendedElements []string `json:"recommended_elements"`
	StrategyTags        []string `json:"strategy_tags"`
	TrainingRisks       []string `json:"training_risks"`
	RiskWarning         string   `json:"risk_warning"`
}

func (c Constraints) Empty() bool {
	return len(c.ForbiddenCategories) == 0 && len(c.StrategyTags) == 0 &&
		len(c.TrainingRisks) == 0 && c.RiskWarning == ""
}

type rule struct {
	risk        string
	forbidden   []string
	recommended []string
	tag         string
	training    []string
	fires       func(r readings, female bool) bool
	evidence    func(r readings) string
}

// rules run in this order; output order follows it.
var rules = []rule{
	{
		risk:        "High uric acid",
		forbidden:   []string{"seafood", "offal", "broths"},
		recommended: []string{"plenty of water"},
		tag:         "low-purine diet",
		training:    []string{"no jumping or joint-impact work during gout flares"},
		fires: func(r readings, female bool) bool {
			if !r.has[indUricAcid] {
				return false
			}
			limit := uricAcidLimitMale
			if female {
				limit = uricAcidLimitFemale
			}
			return r.uricAcid > limit
		},
		evidence: func(r readings) string { return fmt.Sprintf("uric acid %.0f μmol/L", r.uricAcid) },
	},
	{
		risk:        "Elevated blood glucose",
		forbidden:   []string{"refined sugar", "sweet drinks", "white rice"},
		recommended: []string{"whole grains"},
		tag:         "low-GI diet",
		training:    []string{"no fasted high-intensity work", "carry a fast-acting sugar during training"},
		fires: func(r readings, _ bool) bool {
			return (r.has[indGlucose] && r.glucose > glucoseLimit) || (r.has[indHbA1c] && r.hba1c > hba1cLimit)
		},
		evidence: func(r readings) string {
			var parts []string
			if r.has[indGlucose] {
				parts = append(parts, fmt.Sprintf("glucose %.1f mmol/L", r.glucose))
			}
			if r.has[indHbA1c] {
				parts = append(parts, fmt.Sprintf("HbA1c %.1f%%", r.hba1c))
			}
			return strings.Join(parts, ", ")
		},
	},
	{
		risk:        "High blood lipids",
		forbidden:   []string{"fried food", "fatty meat", "cream"},
		recommended: []string{"dietary fiber"},
		tag:         "low-fat diet",
		fires: func(r readings, _ bool) bool {
			return (r.has[indTriglyceride] && r.tg > tgLimit) || (r.has[indLDL] && r.ldl > ldlLimit)
		},
		evidence: func(r readings) string {
			var parts []string
			if r.has[indTriglyceride] {
				parts = append(parts, fmt.Sprintf("TG %.2f mmol/L", r.tg))
			}
			if r.has[indLDL] {
				parts = append(parts, fmt.Sprintf("LDL %.2f mmol/L", r.ldl))
			}
			return strings.Join(parts, ", ")
		},
	},
	{
		risk:        "High blood pressure",
		forbidden:   []string{"high-sodium foods"},
		recommended: []string{"potassium-rich vegetables"},
		tag:         "DASH/low-sodium diet",
		training:    []string{"no breath-held heavy lifts", "no head-below-heart positions"},
		fires: func(r readings, _ bool) bool {
			return r.has[indSystolic] && r.systolic >= systolicLimit
		},
		evidence: func(r readings) string { return fmt.Sprintf("systolic %.0f mmHg", r.systolic) },
	},
}

// orderedSet keeps first-seen order and ignores repeats.
type orderedSet struct {
	seen  map[string]bool
	items []string
}

func (s *orderedSet) add(vals ...string) {
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	for _, v := range vals {
		if v == "" || s.seen[v] {
			continue
		}
		s.seen[v] = true
		s.items = append(s.items, v)
	}
}

// InferConstraints evaluates every rule independently and unions the effects.
// Unknown sex is evaluated with the male thresholds.
func InferConstraints(labs LabValues, sex string) Constraints {
	triggered := evaluate(labs, sex)
	var forbidden, recommended, tagSet, risks, warning orderedSet
	for _, t := range triggered {
		forbidden.add(t.forbidden...)
		recommended.add(t.recommended...)
		tagSet.add(t.tag)
		risks.add(t.training...)
		w := t.risk
		if len(t.training) > 0 {
			w += ": " + strings.Join(t.training, ", ")
		}
		warning.add(w)
	}
	return Constraints{
		ForbiddenCategories: forbidden.items,
		RecommendedElements: recommended.items,
		StrategyTags:        tagSet.items,
		TrainingRisks:       risks.items,
		RiskWarning:         strings.Join(warning.items, "; "),
	}
}

// GenerateAdviceText renders the profile-level advice cache. It returns ""
// only when there are no lab values at all.
func GenerateAdviceText(labs LabValues, sex string) string {
	if len(labs) == 0 {
		return ""
	}
	r := read(labs)
	triggered := evaluate(labs, sex)
	if len(triggered) == 0 {
		return NoAdviceMarker
	}
	c := InferConstraints(labs, sex)

	var b strings.Builder
	b.WriteString("Medical risk & advice:")
	for _, t := range triggered {
		fmt.Fprintf(&b, "\n- %s (%s)", t.risk, t.evidence(r))
	}
	fmt.Fprintf(&b, "\n- Diet strategy: %s", strings.Join(c.StrategyTags, ", "))
	fmt.Fprintf(&b, "\n- Avoid: %s", strings.Join(c.ForbiddenCategories, ", "))
	if len(c.RecommendedElements) > 0 {
		fmt.Fprintf(&b, "\n- Prefer: %s", strings.Join(c.RecommendedElements, ", "))
	}
	if len(c.TrainingRisks) > 0 {
		fmt.Fprintf(&b, "\n- Training cautions: %s", strings.Join(c.TrainingRisks, "; "))
	}
	return b.String()
}

// HasAdvice reports whether a cached advice text carries real risk content.
func HasAdvice(text string) bool {
	text = strings.TrimSpace(text)
	return text != "" && text != NoAdviceMarker
}

func evaluate(labs LabValues, sex string) []rule {
	if len(labs) == 0 {
		return nil
	}
	r := read(labs)
	female := strings.EqualFold(strings.TrimSpace(sex), domain.SexFemale)
	var out []rule
	for _, rl := range rules {
		if rl.fires(r, female) {
			out = append(out, rl)
		}
	}
	return out
}

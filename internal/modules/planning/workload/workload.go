// Package workload turns recent feedback into a training strategy:
// injury breaker first, then the acute:chronic load trend, then the latest day's signals.
package workload

import (
	"encoding/json"
	"sort"

	"github.com/fitpilot/fitpilot-backend/internal/domain"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/tags"
)

const (
	FatigueNone   = "NONE"
	FatigueMild   = "MILD"
	FatigueSevere = "SEVERE"

	BaseDurationMinutes = 45
	EfficiencyMinutes   = 25

	acuteWindow   = 3
	chronicWindow = 7
	acwrHigh      = 1.3
	acwrLow       = 0.8
	defaultRating = 3
)

// Status is recomputed for every plan and never persisted.
type Status struct {
	Strategy      Strategy
	FatigueLevel  string
	Instruction   string
	UserMessage   string
	RiskBodyParts []string
	LatestNote    string
	// Mandatory marks instructions that override generic guidance.
	Mandatory bool
	ACWR      float64
}

// StrategyName is a convenience for logs and prompts.
func (s Status) StrategyName() string {
	if s.Strategy == nil {
		return ""
	}
	return s.Strategy.Name()
}

func newStatus(s Strategy, fatigue string) Status {
	st := Status{
		Strategy:     s,
		FatigueLevel: fatigue,
		Instruction:  s.instruction(),
		UserMessage:  s.userMessage(),
	}
	switch v := s.(type) {
	case Avoidance:
		st.Mandatory = true
		st.RiskBodyParts = append([]string(nil), v.Areas...)
	case Recovery:
		st.Mandatory = v.Cause == RecoveryOverload
		st.ACWR = v.ACWR
	}
	return st
}

// RestStatus is the status attached to a late-night rest plan.
func RestStatus() Status {
	return newStatus(Rest{}, FatigueNone)
}

// day is one parsed feedback record. Malformed tag JSON yields empty sets.
type day struct {
	rating     int
	completion float64
	duration   int
	note       string
	positive   []string
	negative   []string
	pain       []string
}

// Analyze is pure and safe for concurrent use. history may be in any order.
func Analyze(history []*domain.UserFeedback, profile *domain.UserProfile) Status {
	days := prepare(history, baseDuration(profile))
	if len(days) == 0 {
		return newStatus(Sustain{Cause: SustainNewUser}, FatigueNone)
	}
	latest := days[0]

	st := decide(days, latest)
	st.LatestNote = latest.note
	return st
}

func decide(days []day, latest day) Status {
	if len(latest.pain) > 0 {
		return newStatus(Avoidance{Areas: latest.pain}, FatigueSevere)
	}

	if len(days) >= acuteWindow {
		acute := averageLoad(days, acuteWindow)
		chronic := averageLoad(days, chronicWindow)
		if chronic != 0 {
			acwr := acute / chronic
			if acwr > acwrHigh {
				return newStatus(Recovery{Cause: RecoveryOverload, ACWR: acwr}, FatigueMild)
			}
			if acwr < acwrLow && latest.rating < 3 {
				st := newStatus(Progress{Signal: ProgressDetraining}, FatigueNone)
				st.ACWR = acwr
				return st
			}
		}
	}

	return attribute(latest)
}

func attribute(d day) Status {
	if tags.Any(d.negative, tags.IsTimeRelated) || (d.rating <= 3 && d.completion < 0.6) {
		return newStatus(Efficiency{MaxMinutes: EfficiencyMinutes}, FatigueNone)
	}

	strained := tags.Contains(d.negative, tags.TooHard) || tags.Contains(d.negative, tags.Tired) || d.rating >= 4
	if strained && d.completion < 0.8 {
		return newStatus(Recovery{Cause: RecoveryStrain}, FatigueMild)
	}

	strength := tags.Any(d.positive, tags.IsStrengthProgress)
	energy := tags.Any(d.positive, tags.IsHighEnergy)
	easy := tags.Contains(d.negative, tags.TooEasy)
	if (strength || energy || easy || d.rating <= 2) && d.completion > 0.9 {
		signal := ProgressEasy
		switch {
		case strength:
			signal = ProgressStrength
		case energy:
			signal = ProgressEnergy
		}
		return newStatus(Progress{Signal: signal}, FatigueNone)
	}

	if tags.Contains(d.negative, tags.Boring) && d.completion >= 0.7 {
		return newStatus(Sustain{Cause: SustainVariety}, FatigueNone)
	}
	return newStatus(Sustain{Cause: SustainSteady}, FatigueNone)
}

// averageLoad is the mean of rating * duration * completion over the first n days.
func averageLoad(days []day, n int) float64 {
	if n > len(days) {
		n = len(days)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for _, d := range days[:n] {
		sum += float64(d.rating) * float64(d.duration) * d.completion
	}
	return sum / float64(n)
}

func prepare(history []*domain.UserFeedback, defaultDuration int) []day {
	sorted := make([]*domain.UserFeedback, 0, len(history))
	for _, f := range history {
		if f != nil {
			sorted = append(sorted, f)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].FeedbackDate.Equal(sorted[j].FeedbackDate) {
			return sorted[i].FeedbackDate.After(sorted[j].FeedbackDate)
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	out := make([]day, 0, len(sorted))
	for _, f := range sorted {
		d := day{
			rating:   defaultRating,
			duration: defaultDuration,
			note:     f.Notes,
			positive: decodeTags(f.PositiveTags, tags.KindPositive),
			negative: decodeTags(f.NegativeTags, tags.KindNegative),
			pain:     decodeTags(f.PainAreas, tags.KindPain),
		}
		if f.Rating != nil {
			d.rating = *f.Rating
		}
		if f.CompletionRate != nil {
			d.completion = float64(*f.CompletionRate) / 100
		}
		if f.ActualDurationMinutes != nil {
			d.duration = *f.ActualDurationMinutes
		}
		out = append(out, d)
	}
	return out
}

// decodeTags keeps only stored codes of the given kind; retired or unknown
// codes never reach the analysis.
func decodeTags(raw []byte, kind tags.Kind) []string {
	if len(raw) == 0 {
		return nil
	}
	var codes []string
	if err := json.Unmarshal(raw, &codes); err != nil {
		return nil
	}
	kept, _ := tags.Filter(codes, kind)
	return kept
}

func baseDuration(p *domain.UserProfile) int {
	if p != nil && p.AvailableMinutes != nil && *p.AvailableMinutes > 0 {
		return *p.AvailableMinutes
	}
	return BaseDurationMinutes
}

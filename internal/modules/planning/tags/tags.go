// Package tags is the closed feedback vocabulary: positive sensations,
// negative sensations and pain areas. Codes are stable; display names are not.
package tags

import (
	"sort"
	"strings"
)

// VocabularyVersion bumps whenever a code is added or retired.
const VocabularyVersion = 2

type Kind int

const (
	KindUnknown Kind = iota
	KindPositive
	KindNegative
	KindPain
)

func (k Kind) String() string {
	switch k {
	case KindPositive:
		return "positive"
	case KindNegative:
		return "negative"
	case KindPain:
		return "pain"
	default:
		return "unknown"
	}
}

const (
	Sweaty       = "SWEATY"
	StrengthUp   = "STRENGTH_UP"
	CardioSmooth = "CARDIO_SMOOTH"
	Energized    = "ENERGIZED"
	Confident    = "CONFIDENT"
	Relaxed      = "RELAXED"

	TooHard = "TOO_HARD"
	TooEasy = "TOO_EASY"
	TooLong = "TOO_LONG"
	Boring  = "BORING"
	NoTime  = "NO_TIME"
	Tired   = "TIRED"

	Knee      = "KNEE"
	LowerBack = "LOWER_BACK"
	Shoulder  = "SHOULDER"
	Wrist     = "WRIST"
	Ankle     = "ANKLE"
	Neck      = "NECK"
	Elbow     = "ELBOW"
	Hip       = "HIP"
	OtherPain = "OTHER"
)

type entry struct {
	kind    Kind
	display string
}

var vocabulary = map[string]entry{
	Sweaty:       {KindPositive, "Sweaty fat burn"},
	StrengthUp:   {KindPositive, "Stronger"},
	CardioSmooth: {KindPositive, "Smooth cardio"},
	Energized:    {KindPositive, "Energized"},
	Confident:    {KindPositive, "Confident"},
	Relaxed:      {KindPositive, "Relaxed"},

	TooHard: {KindNegative, "Too hard"},
	TooEasy: {KindNegative, "Too easy"},
	TooLong: {KindNegative, "Too long"},
	Boring:  {KindNegative, "A bit boring"},
	NoTime:  {KindNegative, "No time"},
	Tired:   {KindNegative, "Tired"},

	Knee:      {KindPain, "knee"},
	LowerBack: {KindPain, "lower back"},
	Shoulder:  {KindPain, "shoulder"},
	Wrist:     {KindPain, "wrist"},
	Ankle:     {KindPain, "ankle"},
	Neck:      {KindPain, "neck"},
	Elbow:     {KindPain, "elbow"},
	Hip:       {KindPain, "hip"},
	OtherPain: {KindPain, "other area"},
}

var (
	timeTags     = map[string]bool{NoTime: true, TooLong: true}
	strengthTags = map[string]bool{StrengthUp: true, Confident: true}
	energyTags   = map[string]bool{Energized: true, Sweaty: true, CardioSmooth: true}
)

// Normalize upper-cases and trims a code; it does not validate it.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Classify returns the kind of a code, or KindUnknown when it is outside the vocabulary.
func Classify(code string) Kind {
	if e, ok := vocabulary[Normalize(code)]; ok {
		return e.kind
	}
	return KindUnknown
}

func IsValid(code string, kind Kind) bool {
	return kind != KindUnknown && Classify(code) == kind
}

func IsTimeRelated(code string) bool      { return timeTags[Normalize(code)] }
func IsStrengthProgress(code string) bool { return strengthTags[Normalize(code)] }
func IsHighEnergy(code string) bool       { return energyTags[Normalize(code)] }

// DisplayName returns the human label, or the raw code when unknown.
func DisplayName(code string) string {
	if e, ok := vocabulary[Normalize(code)]; ok {
		return e.display
	}
	return code
}

// Codes lists the vocabulary of one kind in sorted order.
func Codes(kind Kind) []string {
	out := []string{}
	for code, e := range vocabulary {
		if e.kind == kind {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

// Filter keeps the codes of the given kind, normalized and de-duplicated in
// input order, and returns the rejected raw values separately.
func Filter(codes []string, kind Kind) (kept []string, rejected []string) {
	seen := map[string]bool{}
	for _, raw := range codes {
		code := Normalize(raw)
		if code == "" {
			continue
		}
		if Classify(code) != kind {
			rejected = append(rejected, raw)
			continue
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		kept = append(kept, code)
	}
	return kept, rejected
}

func Any(codes []string, pred func(string) bool) bool {
	for _, c := range codes {
		if pred(c) {
			return true
		}
	}
	return false
}

func Contains(codes []string, code string) bool {
	code = Normalize(code)
	for _, c := range codes {
		if Normalize(c) == code {
			return true
		}
	}
	return false
}

package tags

import (
	"strings"
	"unicode"
)

// Sets is a feedback record's tags split by kind.
type Sets struct {
	Positive []string
	Negative []string
	Pain     []string
}

func (s Sets) Empty() bool {
	return len(s.Positive) == 0 && len(s.Negative) == 0 && len(s.Pain) == 0
}

// legacyPhrases maps free-text fragments from the old emotion-tag field to codes.
// Longer phrases are listed before their substrings.
var legacyPhrases = []struct {
	phrase string
	code   string
}{
	{"lower back", LowerBack},
	{"back pain", LowerBack},
	{"no time", NoTime},
	{"too long", TooLong},
	{"too hard", TooHard},
	{"too easy", TooEasy},
	{"exhausted", Tired},
	{"tired", Tired},
	{"boring", Boring},
	{"bored", Boring},
	{"sweaty", Sweaty},
	{"sweat", Sweaty},
	{"stronger", StrengthUp},
	{"strength", StrengthUp},
	{"cardio", CardioSmooth},
	{"energized", Energized},
	{"energetic", Energized},
	{"confident", Confident},
	{"relaxed", Relaxed},
	{"knee", Knee},
	{"waist", LowerBack},
	{"shoulder", Shoulder},
	{"wrist", Wrist},
	{"ankle", Ankle},
	{"neck", Neck},
	{"elbow", Elbow},
	{"hip", Hip},
	{"sore", OtherPain},
	{"pain", OtherPain},
}

// MigrateLegacy converts a free-text emotion-tag string ("tired, knee sore")
// into vocabulary codes. Segments that are already codes pass through.
// A segment yields at most one code; unmatched segments are dropped.
func MigrateLegacy(text string) Sets {
	var out Sets
	seen := map[string]bool{}
	add := func(code string) {
		if seen[code] {
			return
		}
		seen[code] = true
		switch Classify(code) {
		case KindPositive:
			out.Positive = append(out.Positive, code)
		case KindNegative:
			out.Negative = append(out.Negative, code)
		case KindPain:
			out.Pain = append(out.Pain, code)
		}
	}
	for _, seg := range splitLegacy(text) {
		if code := Normalize(strings.ReplaceAll(seg, " ", "_")); Classify(code) != KindUnknown {
			add(code)
			continue
		}
		lower := strings.ToLower(seg)
		for _, lp := range legacyPhrases {
			if strings.Contains(lower, lp.phrase) {
				add(lp.code)
				break
			}
		}
	}
	return out
}

func splitLegacy(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '/' || r == '|' || r == '\n' || r == '、' || r == '，'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsPunct(r) && r != '_' })
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

package medical

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LabValues is the loose indicator -> value-with-unit map extracted from reports.
type LabValues map[string]string

type indicator int

const (
	indUricAcid indicator = iota
	indGlucose
	indHbA1c
	indTriglyceride
	indLDL
	indBloodPressure
	indSystolic
)

var aliases = map[string]indicator{
	"ua":              indUricAcid,
	"uric_acid":       indUricAcid,
	"glucose":         indGlucose,
	"fasting_glucose": indGlucose,
	"blood_glucose":   indGlucose,
	"glu":             indGlucose,
	"hba1c":           indHbA1c,
	"a1c":             indHbA1c,
	"hemoglobin_a1c":  indHbA1c,
	"tg":              indTriglyceride,
	"triglyceride":    indTriglyceride,
	"triglycerides":   indTriglyceride,
	"ldl":             indLDL,
	"ldl_c":           indLDL,
	"ldlc":            indLDL,
	"bp":              indBloodPressure,
	"blood_pressure":  indBloodPressure,
	"sbp":             indSystolic,
	"systolic":        indSystolic,
}

var (
	numberRe = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)*`)
	bpRe     = regexp.MustCompile(`([0-9]{2,3})\s*/\s*([0-9]{2,3})`)
)

// ParseLabValues decodes the stored JSON object. Non-string scalars are
// stringified; nested values and malformed input are dropped.
func ParseLabValues(raw []byte) LabValues {
	if len(raw) == 0 {
		return nil
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil
	}
	out := make(LabValues, len(generic))
	for k, v := range generic {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool, nil, map[string]any, []any:
			continue
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}

// normalizeKey lower-cases and folds '-' and spaces to '_'.
func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.ReplaceAll(k, "-", "_")
	return strings.Join(strings.Fields(k), "_")
}

// firstNumber returns the first number not glued to a preceding Latin letter,
// so the digit in a name such as "HbA1c" is skipped. Units may follow the
// number directly, and CJK labels ("尿酸480") do not hide it.
func firstNumber(v string) (float64, bool) {
	for _, loc := range numberRe.FindAllStringIndex(v, -1) {
		if loc[0] > 0 {
			prev, _ := utf8.DecodeLastRuneInString(v[:loc[0]])
			if prev < utf8.RuneSelf && unicode.IsLetter(prev) {
				continue
			}
		}
		if f, ok := parseNumber(v[loc[0]:loc[1]]); ok {
			return f, true
		}
	}
	return 0, false
}

// parseNumber accepts "5.4", "5,4", "1,234" and "1.234,5". A comma followed
// by exactly three digits after a non-zero integer part groups thousands;
// any other lone comma is a decimal separator.
func parseNumber(tok string) (float64, bool) {
	dot, comma := strings.LastIndexByte(tok, '.'), strings.LastIndexByte(tok, ',')
	switch {
	case dot >= 0 && comma >= 0:
		if dot > comma {
			tok = strings.ReplaceAll(tok, ",", "")
		} else {
			tok = strings.ReplaceAll(strings.ReplaceAll(tok, ".", ""), ",", ".")
		}
	case comma >= 0:
		parts := strings.Split(tok, ",")
		if thousandsGroups(parts) {
			tok = strings.Join(parts, "")
		} else {
			tok = parts[0] + "." + parts[1]
		}
	case strings.Count(tok, ".") > 1:
		parts := strings.Split(tok, ".")
		if !thousandsGroups(parts) {
			return 0, false
		}
		tok = strings.Join(parts, "")
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func thousandsGroups(parts []string) bool {
	if len(parts) < 2 || len(parts[0]) > 3 || strings.TrimLeft(parts[0], "0") == "" {
		return false
	}
	for _, g := range parts[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

func mentionsMG(v string) bool {
	return strings.Contains(strings.ToLower(v), "mg")
}

// readings holds the worst (highest) parsed value per indicator, in SI units.
type readings struct {
	uricAcid, glucose, hba1c, tg, ldl, systolic float64

	has map[indicator]bool
}

func (r *readings) set(ind indicator, val float64) {
	if r.has == nil {
		r.has = map[indicator]bool{}
	}
	if ptr := r.slot(ind); !r.has[ind] || val > *ptr {
		*ptr = val
	}
	r.has[ind] = true
}

func (r *readings) slot(ind indicator) *float64 {
	switch ind {
	case indUricAcid:
		return &r.uricAcid
	case indGlucose:
		return &r.glucose
	case indHbA1c:
		return &r.hba1c
	case indTriglyceride:
		return &r.tg
	case indLDL:
		return &r.ldl
	default:
		return &r.systolic
	}
}

// read normalizes every recognised key. Keys are visited in sorted order so
// duplicate aliases resolve the same way every time.
func read(labs LabValues) readings {
	var r readings
	keys := make([]string, 0, len(labs))
	for k := range labs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		ind, ok := aliases[normalizeKey(k)]
		if !ok {
			continue
		}
		raw := strings.TrimSpace(labs[k])
		if raw == "" {
			continue
		}
		if ind == indBloodPressure {
			if sys, ok := parseSystolic(raw); ok {
				r.set(indSystolic, sys)
			}
			continue
		}
		v, ok := firstNumber(raw)
		if !ok {
			continue
		}
		switch ind {
		case indUricAcid:
			if mentionsMG(raw) || v < 50 {
				v *= 59.48
			}
		case indGlucose:
			if mentionsMG(raw) || v > 20 {
				v /= 18
			}
		case indTriglyceride:
			if mentionsMG(raw) || v > 20 {
				v /= 88.57
			}
		case indLDL:
			if mentionsMG(raw) || v > 20 {
				v /= 38.67
			}
		}
		r.set(ind, v)
	}
	return r
}

// parseSystolic reads "sys/dia"; a bare number is taken as systolic.
func parseSystolic(v string) (float64, bool) {
	if m := bpRe.FindStringSubmatch(v); m != nil {
		sys, err := strconv.ParseFloat(m[1], 64)
		return sys, err == nil
	}
	return firstNumber(v)
}

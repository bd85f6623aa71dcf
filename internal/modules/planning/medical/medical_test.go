package medical

import (
	"reflect"
	"strings"
	"testing"
)

func TestInferConstraintsNoLabs(t *testing.T) {
	if c := InferConstraints(nil, "male"); !c.Empty() {
		t.Fatalf("expected empty constraints, got %+v", c)
	}
	if got := GenerateAdviceText(nil, "male"); got != "" {
		t.Fatalf("advice for no labs=%q", got)
	}
}

func TestUricAcidThresholdBySex(t *testing.T) {
	labs := LabValues{"UA": "400 μmol/L"}
	if c := InferConstraints(labs, "male"); !c.Empty() {
		t.Fatalf("400 should pass for male: %+v", c)
	}
	c := InferConstraints(labs, "female")
	if !reflect.DeepEqual(c.ForbiddenCategories, []string{"seafood", "offal", "broths"}) {
		t.Fatalf("forbidden=%v", c.ForbiddenCategories)
	}
	if !reflect.DeepEqual(c.StrategyTags, []string{"low-purine diet"}) {
		t.Fatalf("tags=%v", c.StrategyTags)
	}
	if c := InferConstraints(labs, "unknown"); !c.Empty() {
		t.Fatalf("unknown sex uses male threshold: %+v", c)
	}
}

func TestUnitConversion(t *testing.T) {
	cases := []struct {
		name string
		labs LabValues
		tag  string
	}{
		{"uric acid mg/dL", LabValues{"uric-acid": "8.1 mg/dL"}, "low-purine diet"},
		{"glucose mg/dL", LabValues{"Fasting Glucose": "126 mg/dL"}, "low-GI diet"},
		{"glucose magnitude", LabValues{"glucose": "120"}, "low-GI diet"},
		{"hba1c", LabValues{"HbA1c": "6.4%"}, "low-GI diet"},
		{"tg mg/dL", LabValues{"triglycerides": "200 mg/dL"}, "low-fat diet"},
		{"ldl mg/dL", LabValues{"LDL-C": "160mg/dl"}, "low-fat diet"},
		{"bp", LabValues{"blood pressure": "150 / 95 mmHg"}, "DASH/low-sodium diet"},
		{"systolic", LabValues{"SBP": "142"}, "DASH/low-sodium diet"},
	}
	for _, tc := range cases {
		c := InferConstraints(tc.labs, "male")
		if !reflect.DeepEqual(c.StrategyTags, []string{tc.tag}) {
			t.Fatalf("%s: tags=%v", tc.name, c.StrategyTags)
		}
	}
}

func TestBelowThresholdsAndGarbage(t *testing.T) {
	labs := LabValues{
		"glucose":   "5.4 mmol/L",
		"tg":        "1.2",
		"ldl":       "2.9",
		"bp":        "128/82",
		"ua":        "not measured",
		"vitamin_d": "30 ng/mL",
		"":          "7",
	}
	c := InferConstraints(labs, "male")
	if !c.Empty() {
		t.Fatalf("expected nothing to fire: %+v", c)
	}
	if got := GenerateAdviceText(labs, "male"); got != NoAdviceMarker {
		t.Fatalf("advice=%q", got)
	}
}

func TestAllRulesUnionInFixedOrder(t *testing.T) {
	labs := LabValues{
		"bp":        "160/100",
		"ldl":       "4.2",
		"hba1c":     "7.1",
		"uric_acid": "500",
	}
	c := InferConstraints(labs, "male")
	wantTags := []string{"low-purine diet", "low-GI diet", "low-fat diet", "DASH/low-sodium diet"}
	if !reflect.DeepEqual(c.StrategyTags, wantTags) {
		t.Fatalf("tags=%v", c.StrategyTags)
	}
	if c.RecommendedElements[1] != "whole grains" {
		t.Fatalf("recommended=%v", c.RecommendedElements)
	}
	if len(c.TrainingRisks) != 5 {
		t.Fatalf("risks=%v", c.TrainingRisks)
	}
	if !strings.HasPrefix(c.RiskWarning, "High uric acid") {
		t.Fatalf("warning=%q", c.RiskWarning)
	}
}

func TestIdempotentRiskWarning(t *testing.T) {
	// Two aliases for the same indicator must not duplicate the named risk.
	labs := LabValues{"glucose": "7.5", "blood_glucose": "8.0", "a1c": "6.8"}
	first := InferConstraints(labs, "female")
	second := InferConstraints(labs, "female")
	if first.RiskWarning != second.RiskWarning {
		t.Fatalf("warning changed between calls: %q vs %q", first.RiskWarning, second.RiskWarning)
	}
	if strings.Count(first.RiskWarning, "Elevated blood glucose") != 1 {
		t.Fatalf("duplicated risk: %q", first.RiskWarning)
	}
	if GenerateAdviceText(labs, "female") != GenerateAdviceText(labs, "female") {
		t.Fatalf("advice text not deterministic")
	}
}

func TestFirstNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"HbA1c 6.5%", 6.5, true},
		{"A1C: 7,1 %", 7.1, true},
		{"160mg/dl", 160, true},
		{"5,4 mmol/L", 5.4, true},
		{"0,123", 0.123, true},
		{"1,234 U/L", 1234, true},
		{"1.234,5", 1234.5, true},
		{"1,234.5", 1234.5, true},
		{"尿酸480μmol/L", 480, true},
		{"HbA1c", 0, false},
		{"not measured", 0, false},
	}
	for _, tc := range cases {
		got, ok := firstNumber(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("firstNumber(%q)=%v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestHbA1cLabelDoesNotMaskValue(t *testing.T) {
	c := InferConstraints(LabValues{"hba1c": "HbA1c 6.5%"}, "male")
	if !reflect.DeepEqual(c.StrategyTags, []string{"low-GI diet"}) {
		t.Fatalf("tags=%v", c.StrategyTags)
	}
	c = InferConstraints(LabValues{"hba1c": "HbA1c 5.4%"}, "male")
	if !c.Empty() {
		t.Fatalf("normal HbA1c fired: %+v", c)
	}
}

func TestParseLabValues(t *testing.T) {
	got := ParseLabValues([]byte(`{"ua":"480","ldl":3.9,"notes":{"x":1},"flag":true}`))
	want := LabValues{"ua": "480", "ldl": "3.9"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseLabValues=%v", got)
	}
	if ParseLabValues([]byte(`not json`)) != nil {
		t.Fatalf("malformed input should yield nil")
	}
}

func TestHasAdvice(t *testing.T) {
	if HasAdvice("") || HasAdvice(NoAdviceMarker) || !HasAdvice("Medical risk & advice: x") {
		t.Fatalf("HasAdvice mismatch")
	}
}

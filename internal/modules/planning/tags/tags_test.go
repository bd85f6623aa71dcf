package tags

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := map[string]Kind{
		"STRENGTH_UP": KindPositive,
		" tired ":     KindNegative,
		"knee":        KindPain,
		"HAPPY":       KindUnknown,
		"":            KindUnknown,
	}
	for code, want := range cases {
		if got := Classify(code); got != want {
			t.Fatalf("Classify(%q)=%v want %v", code, got, want)
		}
	}
}

func TestFilterDropsUnknownAndDuplicates(t *testing.T) {
	kept, rejected := Filter([]string{"knee", "KNEE", "ELBOW", "TIRED", "spleen"}, KindPain)
	if !reflect.DeepEqual(kept, []string{Knee, Elbow}) {
		t.Fatalf("kept=%v", kept)
	}
	if !reflect.DeepEqual(rejected, []string{"TIRED", "spleen"}) {
		t.Fatalf("rejected=%v", rejected)
	}
}

func TestGroups(t *testing.T) {
	if !IsTimeRelated(NoTime) || !IsTimeRelated(TooLong) || IsTimeRelated(TooHard) {
		t.Fatalf("time group mismatch")
	}
	if !IsStrengthProgress(Confident) || IsStrengthProgress(Energized) {
		t.Fatalf("strength group mismatch")
	}
	if !IsHighEnergy(CardioSmooth) || IsHighEnergy(Relaxed) {
		t.Fatalf("energy group mismatch")
	}
}

func TestMigrateLegacy(t *testing.T) {
	got := MigrateLegacy("Tired, knee sore; felt STRENGTH_UP / lower back tight, whatever")
	want := Sets{
		Positive: []string{StrengthUp},
		Negative: []string{Tired},
		Pain:     []string{Knee, LowerBack},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MigrateLegacy=%+v want %+v", got, want)
	}
	if !MigrateLegacy("").Empty() {
		t.Fatalf("empty text should migrate to nothing")
	}
}

func TestDisplayNameFallsBackToCode(t *testing.T) {
	if DisplayName(Knee) != "knee" {
		t.Fatalf("DisplayName(KNEE)=%q", DisplayName(Knee))
	}
	if DisplayName("MYSTERY") != "MYSTERY" {
		t.Fatalf("unknown code should echo back")
	}
}

func TestCodesByKind(t *testing.T) {
	pain := Codes(KindPain)
	if len(pain) != 9 || pain[0] != Ankle {
		t.Fatalf("unexpected pain codes %v", pain)
	}
	for _, c := range Codes(KindPositive) {
		if Classify(c) != KindPositive {
			t.Fatalf("%s listed as positive but classifies as %s", c, Classify(c))
		}
	}
	if len(Codes(KindUnknown)) != 0 {
		t.Fatalf("unknown kind should list nothing")
	}
}

package nutrition

import (
	"math"
	"testing"

	"github.com/fitpilot/fitpilot-backend/internal/domain"
	"github.com/fitpilot/fitpilot-backend/internal/pkg/pointers"
)

func profile(sex, goal, activity string, weight, height float64, age int) *domain.UserProfile {
	return &domain.UserProfile{
		Sex:           sex,
		Goal:          goal,
		ActivityLevel: activity,
		WeightKG:      pointers.Float64(weight),
		HeightCM:      pointers.Float64(height),
		Age:           pointers.Int(age),
	}
}

func TestCalculateKnownProfile(t *testing.T) {
	// 70kg/175cm/30y male, moderate, cut:
	// BMR 1648.75, TDEE 2555.5625, target 2172.228...
	got := Calculate(profile("male", "cut", "moderate", 70, 175, 30))
	if got.BMR != 1648.8 || got.TDEE != 2555.6 {
		t.Fatalf("bmr/tdee=%v/%v", got.BMR, got.TDEE)
	}
	if got.ProteinG != 140 || got.FatG != 60 || got.CarbG != 268 {
		t.Fatalf("macros=%+v", got)
	}
	if got.DailyCalories != 140*4+60*9+268*4 {
		t.Fatalf("calories=%d", got.DailyCalories)
	}
}

func TestCalculateDefaults(t *testing.T) {
	got := Calculate(&domain.UserProfile{})
	want := BMR(DefaultWeightKG, DefaultHeightCM, DefaultAge, false)
	if got.BMR != math.Round(want*10)/10 {
		t.Fatalf("default BMR=%v want %v", got.BMR, want)
	}
	if Calculate(nil) != got {
		t.Fatalf("nil profile should match empty profile")
	}
}

func TestMacroInvariants(t *testing.T) {
	sexes := []string{"male", "female", "unknown"}
	goals := []string{"cut", "bulk", "recomp", "maintain", ""}
	levels := []string{"sedentary", "light", "moderate", "heavy", "athlete", "couch"}
	weights := []float64{38, 55.5, 72, 96.3, 140}
	for _, sex := range sexes {
		for _, goal := range goals {
			for _, lvl := range levels {
				for _, w := range weights {
					p := profile(sex, goal, lvl, w, 120+w, 18+int(w)%50)
					got := Calculate(p)
					if got.ProteinG < 0 || got.FatG < 0 || got.CarbG < 0 {
						t.Fatalf("negative macro for %s/%s/%s/%v: %+v", sex, goal, lvl, w, got)
					}
					if got.ProteinG*4+got.FatG*9+got.CarbG*4 != got.DailyCalories {
						t.Fatalf("calorie identity broken for %s/%s/%s/%v: %+v", sex, goal, lvl, w, got)
					}
					if float64(got.FatG) < 0.8*w {
						t.Fatalf("fat floor broken for %v: %+v", w, got)
					}
					if got.CarbG < 50 {
						t.Fatalf("carb floor broken: %+v", got)
					}
				}
			}
		}
	}
}

func TestFatFloorRaisesLowFat(t *testing.T) {
	// Heavy, short, sedentary cut: 25% of calories is below 0.8 g/kg.
	got := Calculate(profile("female", "cut", "sedentary", 130, 150, 60))
	if got.FatG != int(math.Ceil(130*0.8)) {
		t.Fatalf("fat=%d", got.FatG)
	}
}

func TestBMI(t *testing.T) {
	if _, ok := BMI(&domain.UserProfile{}); ok {
		t.Fatalf("BMI without data should be absent")
	}
	bmi, ok := BMI(profile("male", "", "", 81, 180, 30))
	if !ok || bmi != 25 {
		t.Fatalf("BMI=%v ok=%v", bmi, ok)
	}
}

func TestActivityMultiplierUnknown(t *testing.T) {
	if ActivityMultiplier("") != 1.55 || ActivityMultiplier("ATHLETE") != 1.90 {
		t.Fatalf("multiplier lookup mismatch")
	}
}

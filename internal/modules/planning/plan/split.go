package plan

import (
	"fmt"
	"math"
)

// Ratios is the share of the day's calories per meal. Snack is 0 for three meals.
type Ratios struct {
	Breakfast float64 `yaml:"breakfast" json:"breakfast"`
	Lunch     float64 `yaml:"lunch" json:"lunch"`
	Dinner    float64 `yaml:"dinner" json:"dinner"`
	Snack     float64 `yaml:"snack" json:"snack"`
}

var (
	ThreeMealRatios = Ratios{Breakfast: 0.30, Lunch: 0.40, Dinner: 0.30}
	SnackRatios     = Ratios{Breakfast: 0.25, Lunch: 0.40, Dinner: 0.25, Snack: 0.10}
)

func (r Ratios) Validate() error {
	for _, v := range []float64{r.Breakfast, r.Lunch, r.Dinner, r.Snack} {
		if v < 0 || v > 1 {
			return fmt.Errorf("meal ratio %v out of range", v)
		}
	}
	if r.Breakfast <= 0 || r.Lunch <= 0 || r.Dinner <= 0 {
		return fmt.Errorf("breakfast, lunch and dinner ratios must be positive")
	}
	if sum := r.Breakfast + r.Lunch + r.Dinner + r.Snack; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("meal ratios sum to %.3f, want 1", sum)
	}
	return nil
}

func (r Ratios) shares() []float64 {
	if r.Snack > 0 {
		return []float64{r.Breakfast, r.Lunch, r.Dinner, r.Snack}
	}
	return []float64{r.Breakfast, r.Lunch, r.Dinner}
}

// SplitMeals distributes total calories and each macro across meals by ratio.
// Every meal gets round(total*ratio) except the last, which takes the
// remainder, so each column sums back to its total exactly.
func SplitMeals(total Amount, macros Macros, r Ratios) *Meals {
	shares := r.shares()
	cal := distribute(int(total), shares)
	protein := distribute(int(macros.ProteinG), shares)
	carbs := distribute(int(macros.CarbsG), shares)
	fat := distribute(int(macros.FatG), shares)

	meal := func(i int) *Meal {
		return &Meal{
			Calories: Amount(cal[i]),
			Macros: Macros{
				ProteinG: Amount(protein[i]),
				CarbsG:   Amount(carbs[i]),
				FatG:     Amount(fat[i]),
			},
		}
	}
	out := &Meals{Breakfast: meal(0), Lunch: meal(1), Dinner: meal(2)}
	if len(shares) == 4 {
		out.Snack = meal(3)
	}
	return out
}

func distribute(total int, shares []float64) []int {
	out := make([]int, len(shares))
	if total <= 0 {
		return out
	}
	last := len(shares) - 1
	for _, round := range []func(float64) float64{math.Round, math.Floor} {
		used := 0
		for i := 0; i < last; i++ {
			out[i] = int(round(float64(total) * shares[i]))
			used += out[i]
		}
		out[last] = total - used
		// Rounding up every leading meal can overshoot tiny totals; floor never does.
		if out[last] >= 0 {
			break
		}
	}
	return out
}

// ApplyMealSplit recomputes the diet's per-meal breakdown, keeping any menu
// text the generator supplied. A nil diet is left alone.
func ApplyMealSplit(d *DietPlan, r Ratios) {
	if d == nil {
		return
	}
	prev := d.Meals
	d.Meals = SplitMeals(d.TotalCalories, d.Macros, r)
	if prev == nil {
		return
	}
	keepMenu(d.Meals.Breakfast, prev.Breakfast)
	keepMenu(d.Meals.Lunch, prev.Lunch)
	keepMenu(d.Meals.Dinner, prev.Dinner)
	keepMenu(d.Meals.Snack, prev.Snack)
}

func keepMenu(dst, src *Meal) {
	if dst != nil && src != nil {
		dst.Menu = src.Menu
	}
}

// RatiosFor picks the four-meal split when the user schedules a snack.
func RatiosFor(hasSnack bool, three, withSnack Ratios) Ratios {
	if hasSnack {
		return withSnack
	}
	return three
}

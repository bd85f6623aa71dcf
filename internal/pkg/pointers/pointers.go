package pointers

// Optional profile and feedback fields are pointers so "not reported" stays
// distinct from zero.

func Float64(v float64) *float64 { return &v }
func Int(v int) *int             { return &v }

package logger

import "testing"

func TestSanitizeValue(t *testing.T) {
	redactionOn()
	if got := sanitizeValue("lab_values", map[string]string{"ua": "500"}); got != "[REDACTED]" {
		t.Fatalf("lab values not redacted: %v", got)
	}
	if got := sanitizeValue("api_key", "sk-123"); got != "[REDACTED]" {
		t.Fatalf("api key not redacted: %v", got)
	}
	got, ok := sanitizeValue("user_id", "7d0c7c1e-9f3e-4f55-a1c2-6a1b7f0b2e11").(string)
	if !ok || len(got) != len("hash:")+12 {
		t.Fatalf("user id not hashed: %v", got)
	}
	if got := sanitizeValue("date", "2026-10-15"); got != "2026-10-15" {
		t.Fatalf("plain value changed: %v", got)
	}
}

package httpx

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTimeout(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"net timeout", timeoutErr{}, true},
		{"wrapped net timeout", fmt.Errorf("post: %w", timeoutErr{}), true},
		{"plain", errors.New("status 503"), false},
	}
	for _, tc := range cases {
		if got := IsTimeout(tc.err); got != tc.want {
			t.Fatalf("%s: IsTimeout=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestJitterBounds(t *testing.T) {
	base := time.Second
	for i := 0; i < 100; i++ {
		got := Jitter(base)
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("Jitter(%v)=%v out of bounds", base, got)
		}
	}
	if Jitter(0) != 0 {
		t.Fatalf("Jitter(0) should be 0")
	}
}

func TestSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep err=%v", err)
	}
}

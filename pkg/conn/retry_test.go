package conn

import (
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if p.Step != 50*time.Millisecond {
		t.Errorf("Step = %v, want 50ms", p.Step)
	}
	if p.Max != 2*time.Second {
		t.Errorf("Max = %v, want 2s", p.Max)
	}
	if p.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", p.MaxAttempts)
	}
}

func TestPolicy_Delay(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		attempt   int
		wantDelay time.Duration
		wantOk    bool
	}{
		{1, 50 * time.Millisecond, true},
		{2, 100 * time.Millisecond, true},
		{3, 150 * time.Millisecond, true},
		{4, 200 * time.Millisecond, true},
		{5, 250 * time.Millisecond, true},
		{6, 0, false},
		{0, 0, false},
		{-1, 0, false},
	}

	for _, tt := range tests {
		delay, ok := p.Delay(tt.attempt)
		if ok != tt.wantOk {
			t.Errorf("Delay(%d) ok = %v, want %v", tt.attempt, ok, tt.wantOk)
		}
		if delay != tt.wantDelay {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, delay, tt.wantDelay)
		}
	}
}

func TestPolicy_DelayCapped(t *testing.T) {
	p := Policy{Step: 900 * time.Millisecond, Max: 2 * time.Second, MaxAttempts: 5}

	delay, ok := p.Delay(5)
	if !ok {
		t.Fatal("Delay(5) should be within budget")
	}
	if delay != 2*time.Second {
		t.Errorf("Delay(5) = %v, want capped 2s", delay)
	}
}

package speed

import (
	"errors"
	"testing"
)

func TestCycle_Next(t *testing.T) {
	c := Cycle{1, 2, 4}
	tests := []struct {
		current float64
		want    float64
	}{
		{1, 2},
		{2, 4},
		{4, 1},
		{3, 1}, // unknown speed falls back to first
		{0, 1},
	}
	for _, tt := range tests {
		if got := c.Next(tt.current); got != tt.want {
			t.Errorf("Next(%v) = %v, want %v", tt.current, got, tt.want)
		}
	}
}

func TestCycle_Next_IsCyclic(t *testing.T) {
	c := Cycle{1, 2, 4}
	s := c.First()
	for i := range 3 * len(c) {
		want := c[(i+1)%len(c)]
		s = c.Next(s)
		if s != want {
			t.Fatalf("step %d: got %v, want %v", i, s, want)
		}
	}
}

func TestCycle_SingleElement(t *testing.T) {
	c := Cycle{1.5}
	if got := c.Next(1.5); got != 1.5 {
		t.Errorf("Next(1.5) = %v, want 1.5", got)
	}
}

func TestCycle_Empty(t *testing.T) {
	var c Cycle
	if got := c.First(); got != 1 {
		t.Errorf("First() = %v, want 1", got)
	}
	if got := c.Next(2); got != 1 {
		t.Errorf("Next(2) = %v, want 1", got)
	}
}

func TestCycle_Validate(t *testing.T) {
	tests := []struct {
		name  string
		cycle Cycle
		want  error
	}{
		{"default", Default, nil},
		{"empty", Cycle{}, ErrEmptyCycle},
		{"zero", Cycle{1, 0}, ErrNonPositive},
		{"negative", Cycle{-1}, ErrNonPositive},
		{"duplicate", Cycle{1, 2, 1, 4}, ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cycle.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1x"},
		{2, "2x"},
		{0.5, "0.5x"},
		{1.25, "1.25x"},
	}
	for _, tt := range tests {
		if got := Label(tt.in); got != tt.want {
			t.Errorf("Label(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

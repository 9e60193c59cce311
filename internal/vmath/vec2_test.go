package vmath

import (
	"math"
	"testing"
)

func TestVec2_Arithmetic(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{4, 6}

	if got := a.Add(b); got != (Vec2{5, 8}) {
		t.Errorf("Add failed: got %v", got)
	}
	if got := b.Sub(a); got != (Vec2{3, 4}) {
		t.Errorf("Sub failed: got %v", got)
	}
	if got := a.Scale(2); got != (Vec2{2, 4}) {
		t.Errorf("Scale failed: got %v", got)
	}
	if got := a.Cross(b); got != -2 {
		t.Errorf("Cross failed: got %v", got)
	}
}

func TestVec2_Len(t *testing.T) {
	tests := []struct {
		v     Vec2
		len   float64
		lenSq float64
	}{
		{Vec2{3, 4}, 5, 25},
		{Vec2{0, 0}, 0, 0},
		{Vec2{-1, 0}, 1, 1},
	}

	for _, tt := range tests {
		if got := tt.v.Len(); math.Abs(got-tt.len) > 1e-12 {
			t.Errorf("Len(%v) = %v, want %v", tt.v, got, tt.len)
		}
		if got := tt.v.LenSq(); got != tt.lenSq {
			t.Errorf("LenSq(%v) = %v, want %v", tt.v, got, tt.lenSq)
		}
	}
}

func TestVec2_Normalize(t *testing.T) {
	n := Vec2{3, 4}.Normalize()
	if math.Abs(n.X-0.6) > 1e-12 || math.Abs(n.Y-0.8) > 1e-12 {
		t.Errorf("Normalize failed: got %v", n)
	}
	if math.Abs(n.Len()-1) > 1e-12 {
		t.Errorf("normalized length = %v", n.Len())
	}

	if z := (Vec2{}).Normalize(); z != (Vec2{}) {
		t.Errorf("zero vector normalized to %v", z)
	}
}

func TestVec2_IsFinite(t *testing.T) {
	tests := []struct {
		name   string
		v      Vec2
		finite bool
	}{
		{"normal", Vec2{1, -2}, true},
		{"NaN x", Vec2{math.NaN(), 0}, false},
		{"+Inf y", Vec2{0, math.Inf(1)}, false},
		{"-Inf x", Vec2{math.Inf(-1), 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.finite {
				t.Errorf("IsFinite() = %v, want %v", got, tt.finite)
			}
		})
	}
}

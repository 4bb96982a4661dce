package clockface

import (
	"math"
	"testing"
)

func TestAngleOf(t *testing.T) {
	tests := []struct {
		value, count int
		want         float64
	}{
		{0, 60, 0},
		{30, 60, 180},
		{6, 12, 180},
		{15, 60, 90},
		{59, 60, 354},
		{11, 12, 330},
		{12, 12, 0},
		{13, 12, 30},
		{23, 12, 330},
		{1, 7, 51},
		{-1, 60, 354},
	}
	for _, tt := range tests {
		if got := AngleOf(tt.value, tt.count); got != tt.want {
			t.Errorf("AngleOf(%d, %d) = %v, want %v", tt.value, tt.count, got, tt.want)
		}
	}
}

func TestAngleOfFullTurn(t *testing.T) {
	for _, count := range []int{7, 12, 24, 60} {
		if got := math.Mod(AngleOf(count, count), 360); got != 0 {
			t.Errorf("AngleOf(%d, %d) mod 360 = %v, want 0", count, count, got)
		}
	}
}

func TestAngleOfMonotonic(t *testing.T) {
	for _, count := range []int{7, 12, 24, 60, 100} {
		prev := AngleOf(0, count)
		if prev != 0 {
			t.Errorf("AngleOf(0, %d) = %v", count, prev)
		}
		for v := 1; v < count; v++ {
			got := AngleOf(v, count)
			if got < prev {
				t.Errorf("AngleOf(%d, %d) = %v < AngleOf(%d) = %v", v, count, got, v-1, prev)
			}
			prev = got
		}
	}
}

func TestDisplayAngle(t *testing.T) {
	for _, count := range []int{12, 60} {
		for v := 0; v < count; v++ {
			if got, want := DisplayAngle(v, count), AngleOf(v, count)-90; got != want {
				t.Errorf("DisplayAngle(%d, %d) = %v, want %v", v, count, got, want)
			}
		}
	}
}

func TestUnitAngle(t *testing.T) {
	if got := UnitAngle(60); got != 6 {
		t.Errorf("UnitAngle(60) = %v", got)
	}
	if got := UnitAngle(12); got != 30 {
		t.Errorf("UnitAngle(12) = %v", got)
	}
}

func TestAnglesAt(t *testing.T) {
	got := AnglesAt(12, 36, 10, DefaultStyle())
	want := Angles{Hour: -90, Minute: 126, Second: -30}
	if got != want {
		t.Errorf("AnglesAt(12:36:10) = %+v, want %+v", got, want)
	}
}

package levels

import (
	"math"
	"testing"
)

func TestXPRequiredFor(t *testing.T) {
	want := []int{0, 100, 200, 400, 800, 1600, 3200, 6400, 12800}
	for i, w := range want {
		level := i + 1
		if got := XPRequiredFor(level); got != w {
			t.Errorf("XPRequiredFor(%d) = %d, want %d", level, got, w)
		}
	}

	for _, level := range []int{-3, 0, 1} {
		if got := XPRequiredFor(level); got != 0 {
			t.Errorf("XPRequiredFor(%d) = %d, want 0", level, got)
		}
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{-50, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{199, 2},
		{200, 3},
		{799, 4},
		{12799, 8},
		{12800, 9},
		{math.MaxInt32, 9},
	}

	for _, tt := range tests {
		if got := LevelFor(tt.xp); got != tt.want {
			t.Errorf("LevelFor(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelForMonotonic(t *testing.T) {
	prev := LevelFor(0)
	for xp := 0; xp <= 20000; xp++ {
		got := LevelFor(xp)
		if got < MinLevel || got > MaxLevel {
			t.Fatalf("LevelFor(%d) = %d, outside [%d,%d]", xp, got, MinLevel, MaxLevel)
		}
		if got < prev {
			t.Fatalf("LevelFor(%d) = %d dropped below LevelFor(%d) = %d", xp, got, xp-1, prev)
		}
		prev = got
	}
}

func TestProgressToNext(t *testing.T) {
	tests := []struct {
		name  string
		level int
		xp    int
		want  float64
	}{
		{"start of level 1", 1, 0, 0},
		{"halfway to level 2", 1, 50, 0.5},
		{"quarter into level 3", 3, 250, 0.25},
		{"below threshold clamps", 4, 100, 0},
		{"above next clamps", 2, 5000, 1},
		{"max level", MaxLevel, 12800, 1},
		{"max level ignores xp", MaxLevel, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressToNext(tt.level, tt.xp); got != tt.want {
				t.Errorf("ProgressToNext(%d, %d) = %v, want %v", tt.level, tt.xp, got, tt.want)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	for _, l := range All() {
		if l.Title == "" {
			t.Errorf("level %d has no title", l.Number)
		}
		if l.Gradient[0] == "" || l.Gradient[1] == "" {
			t.Errorf("level %d has an incomplete gradient", l.Number)
		}
		if l.Threshold != XPRequiredFor(l.Number) {
			t.Errorf("level %d threshold = %d, want %d", l.Number, l.Threshold, XPRequiredFor(l.Number))
		}
	}

	if got := Info(42).Number; got != MaxLevel {
		t.Errorf("Info(42).Number = %d, want %d", got, MaxLevel)
	}
	if got := Info(0).Number; got != MinLevel {
		t.Errorf("Info(0).Number = %d, want %d", got, MinLevel)
	}
}

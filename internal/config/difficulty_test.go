package config

import "testing"

func testDifficulty() *Difficulty {
	return NewDifficulty(DefaultSettings().Fixed(1, 30, 1.0, DefaultTheme()))
}

func TestDifficultySpeedRamp(t *testing.T) {
	d := testDifficulty()

	if got := d.Speed(1, 0); got != 7.5 {
		t.Errorf("Speed(1, 0) = %f, expected 7.5", got)
	}

	// Monotonic in both level and elapsed frames
	prev := d.Speed(1, 0)
	for frames := 100; frames <= 2000; frames += 100 {
		s := d.Speed(1, frames)
		if s <= prev {
			t.Fatalf("Speed not increasing with frames at %d: %f <= %f", frames, s, prev)
		}
		prev = s
	}
	if d.Speed(2, 300) <= d.Speed(1, 300) {
		t.Error("Speed should increase with level")
	}
}

func TestDifficultySpawnInterval(t *testing.T) {
	d := testDifficulty()

	if got := d.SpawnInterval(7.5); got != 45 {
		t.Errorf("SpawnInterval(7.5) = %d, expected 45", got)
	}
	if got := d.SpawnInterval(100); got != d.SpawnFloor {
		t.Errorf("SpawnInterval(100) = %d, expected floor %d", got, d.SpawnFloor)
	}
}

func TestDifficultyGapShrinksToFloor(t *testing.T) {
	d := testDifficulty()

	prev := d.GapSize(1)
	for level := 2; level < 40; level++ {
		gap := d.GapSize(level)
		if gap <= 0 {
			t.Fatalf("GapSize(%d) = %d, must stay positive", level, gap)
		}
		if gap > prev {
			t.Fatalf("GapSize(%d) = %d grew from %d", level, gap, prev)
		}
		if gap < d.GapFloor {
			t.Fatalf("GapSize(%d) = %d below floor %d", level, gap, d.GapFloor)
		}
		if prev > d.GapFloor && gap >= prev {
			t.Fatalf("GapSize(%d) = %d should strictly decrease above the floor", level, gap)
		}
		prev = gap
	}
}

func TestDifficultyMixRatioSaturates(t *testing.T) {
	d := testDifficulty()

	tests := []struct {
		speed, expected float64
	}{
		{0, 0},
		{8, 0},
		{10.5, 0.5},
		{13, 1},
		{40, 1},
	}
	for _, tc := range tests {
		if got := d.MixRatio(tc.speed); got != tc.expected {
			t.Errorf("MixRatio(%f) = %f, expected %f", tc.speed, got, tc.expected)
		}
	}
}

package daily

import (
	"math"
	"testing"
	"time"
)

func TestDayIndex_EpochAndIgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	if got := DayIndex(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)); got != 0 {
		t.Fatalf("epoch day index = %d, want 0", got)
	}
	if got := DayIndex(time.Date(1970, 1, 2, 23, 59, 59, 0, time.UTC)); got != 1 {
		t.Fatalf("1970-01-02 day index = %d, want 1", got)
	}
	if got := DayIndex(time.Date(1969, 12, 31, 12, 0, 0, 0, time.UTC)); got != -1 {
		t.Fatalf("1969-12-31 day index = %d, want -1", got)
	}

	morning := time.Date(2026, 10, 15, 0, 0, 1, 0, time.UTC)
	night := time.Date(2026, 10, 15, 23, 59, 59, 0, time.UTC)
	if DayIndex(morning) != DayIndex(night) {
		t.Fatalf("same calendar day produced different indices")
	}
}

func TestIdxForDate_TimezoneInsensitive(t *testing.T) {
	t.Parallel()

	zones := []string{"UTC", "America/Los_Angeles", "Asia/Tokyo", "Pacific/Kiritimati", "Pacific/Pago_Pago"}
	want := -1
	for _, name := range zones {
		loc, err := time.LoadLocation(name)
		if err != nil {
			t.Skipf("tzdata unavailable: %v", err)
		}
		d := time.Date(2026, 3, 8, 1, 30, 0, 0, loc)
		got, err := IdxForDate(d, 27)
		if err != nil {
			t.Fatalf("IdxForDate(%s): %v", name, err)
		}
		if want == -1 {
			want = got
			continue
		}
		if got != want {
			t.Fatalf("IdxForDate in %s = %d, want %d", name, got, want)
		}
	}
}

func TestIdxForDate_RangeAndDeterminism(t *testing.T) {
	t.Parallel()

	start := time.Date(1960, 1, 1, 12, 0, 0, 0, time.UTC)
	for _, length := range []int{1, 2, 5, 27, 365} {
		for i := 0; i < 2000; i += 7 {
			d := start.AddDate(0, 0, i*13)
			a, err := IdxForDate(d, length)
			if err != nil {
				t.Fatalf("IdxForDate: %v", err)
			}
			b, _ := IdxForDate(d, length)
			if a != b {
				t.Fatalf("non-deterministic index for %s: %d vs %d", d, a, b)
			}
			if a < 0 || a >= length {
				t.Fatalf("index %d out of range [0,%d) for %s", a, length, d)
			}
		}
	}
}

func TestIdxForDate_ConsecutiveDays(t *testing.T) {
	t.Parallel()

	const length = 27
	d := time.Date(2024, 2, 27, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		today, _ := IdxForDate(d, length)
		next := Tomorrow(d)
		tomorrow, _ := IdxForDate(next, length)
		if tomorrow != (today+1)%length {
			t.Fatalf("%s -> %s: got %d then %d", DateKey(d), DateKey(next), today, tomorrow)
		}
		d = next
	}
}

func TestIdxForDate_ZeroLength(t *testing.T) {
	t.Parallel()

	if _, err := IdxForDate(time.Now(), 0); err != ErrEmptyCatalog {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestEffective(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base, offset, length, want int
	}{
		{3, 4, 5, 2},
		{0, 0, 5, 0},
		{4, 1, 5, 0},
		{2, -3, 5, 4},
		{1, 27 * 3, 27, 1},
		{3, math.MaxInt64, 27, 1},
		{3, math.MinInt64, 27, 4},
	}
	for _, tt := range tests {
		if got := Effective(tt.base, tt.offset, tt.length); got != tt.want {
			t.Errorf("Effective(%d,%d,%d) = %d, want %d", tt.base, tt.offset, tt.length, got, tt.want)
		}
	}
}

func TestOffsetFor_SelectsTarget(t *testing.T) {
	t.Parallel()

	const length = 27
	for base := 0; base < length; base++ {
		for target := 0; target < length; target++ {
			off := OffsetFor(target, base, length)
			if got := Effective(base, off, length); got != target {
				t.Fatalf("base=%d target=%d offset=%d -> %d", base, target, off, got)
			}
		}
	}
}

func TestNextRollover(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 15, 22, 10, 0, 0, time.UTC)
	got := NextRollover(now)
	want := time.Date(2026, 10, 16, 0, 0, 0, int(50*time.Millisecond), time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NextRollover = %s, want %s", got, want)
	}

	eoy := time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)
	if got := NextRollover(eoy); got.Year() != 2027 || got.Month() != time.January || got.Day() != 1 {
		t.Fatalf("NextRollover across year = %s", got)
	}
}

func TestFormatLong(t *testing.T) {
	t.Parallel()

	got := FormatLong(time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC))
	if got != "Thursday, October 15, 2026" {
		t.Fatalf("FormatLong = %q", got)
	}
}

package schedule

import (
	"errors"
	"testing"

	"medminder/internal/models"
)

func TestComputeDoseTimesSpacing(t *testing.T) {
	cases := []struct {
		name  string
		first TimeOfDay
		doses int
		want  []string
	}{
		{"twice daily", TimeOfDay{Hour: 8}, 2, []string{"08:00", "20:00"}},
		{"three times", TimeOfDay{Hour: 7}, 3, []string{"07:00", "15:00", "23:00"}},
		{"five doses truncates to 4h gaps", TimeOfDay{Hour: 6}, 5, []string{"06:00", "10:00", "14:00", "18:00", "22:00"}},
		{"wraps past midnight", TimeOfDay{Hour: 22}, 3, []string{"22:00", "06:00", "14:00"}},
		{"single dose", TimeOfDay{Hour: 9, Minute: 30}, 1, []string{"09:30"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeDoseTimes(tc.first, tc.doses)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d doses, got %d", len(tc.want), len(got))
			}
			for i, w := range tc.want {
				if got[i].String() != w {
					t.Errorf("dose %d: got %s, want %s", i, got[i], w)
				}
			}
		})
	}
}

func TestComputeDoseTimesNonPositive(t *testing.T) {
	for _, d := range []int{0, -1, -24} {
		if got := ComputeDoseTimes(TimeOfDay{Hour: 8}, d); len(got) != 0 {
			t.Errorf("doses/day %d: expected empty schedule, got %v", d, got)
		}
	}
}

func TestComputeEveryNHours(t *testing.T) {
	// Every 8 hours from 08:00: three doses, the last rolling into
	// next-day wall-clock at midnight.
	got := ComputeEveryNHours(TimeOfDay{Hour: 8}, 8)
	want := []string{"08:00", "16:00", "00:00"}
	if len(got) != len(want) {
		t.Fatalf("expected %d doses, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].String() != w {
			t.Errorf("dose %d: got %s, want %s", i, got[i], w)
		}
	}
}

func TestComputeEveryNHoursCountFixed(t *testing.T) {
	// 24/5 = 4 doses regardless of where accumulation lands.
	got := ComputeEveryNHours(TimeOfDay{Hour: 23}, 5)
	if len(got) != 4 {
		t.Fatalf("expected 4 doses, got %d", len(got))
	}
	if got[0].String() != "23:00" || got[1].String() != "04:00" {
		t.Errorf("unexpected schedule: %v", got)
	}
}

func TestComputeEveryNHoursNonPositive(t *testing.T) {
	for _, n := range []int{0, -3, 25} {
		got := ComputeEveryNHours(TimeOfDay{Hour: 8}, n)
		if n == 25 {
			// 24/25 truncates to zero doses.
			if len(got) != 0 {
				t.Errorf("every %dh: expected empty schedule, got %v", n, got)
			}
			continue
		}
		if len(got) != 0 {
			t.Errorf("every %dh: expected empty schedule, got %v", n, got)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"08:00", "08:00"},
		{"23:45", "23:45"},
		{"12:00 AM", "00:00"},
		{"12:00 PM", "12:00"},
		{"8:00 AM", "08:00"},
		{"8:00 a.m.", "08:00"},
		{" 11:00 pm ", "23:00"},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseTimeOfDayRejectsOutsideFixedSet(t *testing.T) {
	for _, in := range []string{"", "8:30 AM", "25:00", "noon", "08:00:00 AM"} {
		_, err := ParseTimeOfDay(in)
		if err == nil {
			t.Errorf("ParseTimeOfDay(%q): expected error", in)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseTimeOfDay(%q): expected *ParseError, got %T", in, err)
		}
	}
}

func TestForReminderDegradesToEmpty(t *testing.T) {
	bad := &models.Reminder{FirstDoseTime: "sometime", Frequency: 3}
	if got := ForReminder(bad); len(got) != 0 {
		t.Errorf("unparseable time: expected empty schedule, got %v", got)
	}
	zero := &models.Reminder{FirstDoseTime: "08:00", Frequency: 0}
	if got := ForReminder(zero); len(got) != 0 {
		t.Errorf("zero frequency: expected empty schedule, got %v", got)
	}
}

func TestForReminderEveryHoursMode(t *testing.T) {
	r := &models.Reminder{
		FirstDoseTime: "8:00 AM",
		FrequencyMode: models.FrequencyEveryHours,
		Frequency:     8,
	}
	got := ForReminder(r)
	if len(got) != 3 {
		t.Fatalf("expected 3 doses, got %d", len(got))
	}
	if got[2].String() != "00:00" {
		t.Errorf("expected wraparound dose at 00:00, got %s", got[2])
	}
}

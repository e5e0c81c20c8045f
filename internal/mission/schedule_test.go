package mission

import (
	"testing"
	"time"
)

var baseline = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		wantErr  bool
	}{
		{
			name:     "Valid interval",
			schedule: Schedule{Kind: ScheduleInterval, IntervalMinutes: 60},
		},
		{
			name:     "Zero interval",
			schedule: Schedule{Kind: ScheduleInterval},
			wantErr:  true,
		},
		{
			name:     "Negative interval",
			schedule: Schedule{Kind: ScheduleInterval, IntervalMinutes: -5},
			wantErr:  true,
		},
		{
			name:     "Valid five field cron",
			schedule: Schedule{Kind: ScheduleCron, Expression: "0 9 * * *"},
		},
		{
			name:     "Valid six field cron with seconds",
			schedule: Schedule{Kind: ScheduleCron, Expression: "30 0 9 * * *"},
		},
		{
			name:     "Valid seven field cron with year",
			schedule: Schedule{Kind: ScheduleCron, Expression: "0 0 9 * * * 2025"},
		},
		{
			name:     "Wildcard year",
			schedule: Schedule{Kind: ScheduleCron, Expression: "0 0 9 * * * *"},
		},
		{
			name:     "Four field cron rejected",
			schedule: Schedule{Kind: ScheduleCron, Expression: "0 9 * *"},
			wantErr:  true,
		},
		{
			name:     "Eight field cron rejected",
			schedule: Schedule{Kind: ScheduleCron, Expression: "0 0 9 * * * 2025 extra"},
			wantErr:  true,
		},
		{
			name:     "Empty cron rejected",
			schedule: Schedule{Kind: ScheduleCron, Expression: "   "},
			wantErr:  true,
		},
		{
			name:     "Garbage cron rejected",
			schedule: Schedule{Kind: ScheduleCron, Expression: "a b c d e"},
			wantErr:  true,
		},
		{
			name:     "Unknown kind rejected",
			schedule: Schedule{Kind: "hourly"},
			wantErr:  true,
		},
		{
			name:     "Unknown timezone rejected",
			schedule: Schedule{Kind: ScheduleInterval, IntervalMinutes: 1, Timezone: "Mars/Olympus"},
			wantErr:  true,
		},
		{
			name:     "Known timezone accepted",
			schedule: Schedule{Kind: ScheduleCron, Expression: "0 9 * * *", Timezone: "America/New_York"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSchedule() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsValidation(err) {
				t.Errorf("expected a validation error, got %T", err)
			}
		})
	}
}

func TestNormalizeScheduleInfersKind(t *testing.T) {
	s, err := NormalizeSchedule(Schedule{IntervalMinutes: 60})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Kind != ScheduleInterval {
		t.Errorf("expected interval kind, got %q", s.Kind)
	}

	s, err = NormalizeSchedule(Schedule{Expression: "0 9 * * *"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Kind != ScheduleCron {
		t.Errorf("expected cron kind, got %q", s.Kind)
	}

	if _, err := NormalizeSchedule(Schedule{}); err == nil {
		t.Error("expected error for empty schedule")
	}
}

func TestNextAfterInterval(t *testing.T) {
	tests := []struct {
		minutes int
		want    time.Time
	}{
		{minutes: 60, want: baseline.Add(60 * time.Minute)},
		{minutes: 15, want: baseline.Add(15 * time.Minute)},
		{minutes: 1, want: baseline.Add(time.Minute)},
		{minutes: 24 * 60, want: baseline.Add(24 * time.Hour)},
	}
	for _, tt := range tests {
		next, err := NextAfter(Schedule{Kind: ScheduleInterval, IntervalMinutes: tt.minutes}, baseline)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !next.Equal(tt.want) {
			t.Errorf("interval %dm: got %v, want %v", tt.minutes, next, tt.want)
		}
	}
}

func TestNextAfterCron(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		baseline time.Time
		want     time.Time
	}{
		{
			name:     "Daily nine UTC",
			schedule: Schedule{Kind: ScheduleCron, Expression: "0 9 * * *"},
			baseline: baseline,
			want:     time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "Daily nine in New York",
			schedule: Schedule{Kind: ScheduleCron, Expression: "0 9 * * *", Timezone: "America/New_York"},
			baseline: baseline,
			want:     time.Date(2025, 1, 1, 14, 0, 0, 0, time.UTC),
		},
		{
			name:     "Strictly after exact match",
			schedule: Schedule{Kind: ScheduleCron, Expression: "0 9 * * *"},
			baseline: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
			want:     time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "Every fifteen minutes",
			schedule: Schedule{Kind: ScheduleCron, Expression: "*/15 * * * *"},
			baseline: time.Date(2025, 1, 1, 0, 7, 0, 0, time.UTC),
			want:     time.Date(2025, 1, 1, 0, 15, 0, 0, time.UTC),
		},
		{
			name:     "Seconds form",
			schedule: Schedule{Kind: ScheduleCron, Expression: "30 * * * * *"},
			baseline: baseline,
			want:     time.Date(2025, 1, 1, 0, 0, 30, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := NextAfter(tt.schedule, tt.baseline)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if next == nil {
				t.Fatal("expected a next run time")
			}
			if !next.Equal(tt.want) {
				t.Errorf("got %v, want %v", next, tt.want)
			}
			if !next.After(tt.baseline) {
				t.Errorf("next %v is not strictly after baseline %v", next, tt.baseline)
			}

			// Re-evaluation from the same baseline is idempotent.
			again, err := NextAfter(tt.schedule, tt.baseline)
			if err != nil {
				t.Fatalf("unexpected error on re-evaluation: %v", err)
			}
			if !next.Equal(*again) {
				t.Errorf("re-evaluation differs: %v vs %v", next, again)
			}
		})
	}
}

func TestNextAfterUnparseable(t *testing.T) {
	if _, err := NextAfter(Schedule{Kind: ScheduleCron, Expression: "not a cron"}, baseline); err == nil {
		t.Error("expected error for unparseable expression")
	}
	if _, err := NextAfter(Schedule{Kind: "weird"}, baseline); err == nil {
		t.Error("expected error for unknown kind")
	}
}

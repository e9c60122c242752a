package task

import (
	"testing"
	"time"
)

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *time.Time
	}{
		{
			name: "rfc3339",
			raw:  "2025-02-15T10:30:00Z",
			want: timePtr(time.Date(2025, 2, 15, 10, 30, 0, 0, time.UTC)),
		},
		{
			name: "date_only",
			raw:  "2025-02-15",
			want: timePtr(time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)),
		},
		{
			name: "no_zone",
			raw:  "2025-02-15T10:30:00",
			want: timePtr(time.Date(2025, 2, 15, 10, 30, 0, 0, time.UTC)),
		},
		{
			name: "empty_yields_nil",
			raw:  "",
			want: nil,
		},
		{
			name: "garbage_yields_nil",
			raw:  "next tuesday",
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := ParseDueDate(tt.raw)

			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}

			if got == nil {
				t.Fatalf("expected %v, got nil", tt.want)
			}

			if !got.Equal(*tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPriorityOrDefault(t *testing.T) {
	req := CreateTaskRequest{}

	if got := req.PriorityOrDefault(); got != "medium" {
		t.Fatalf("expected medium, got %q", got)
	}

	req.Priority = "high"

	if got := req.PriorityOrDefault(); got != "high" {
		t.Fatalf("expected high, got %q", got)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

package pdf

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"
)

func TestGenerateBookingSchedule(t *testing.T) {
	start := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	reader, err := New().GenerateBookingSchedule(context.Background(), ScheduleData{
		OrgName:      "BRF Ängen",
		ResourceName: "Tvättstuga 1",
		From:         start,
		To:           start.Add(24 * time.Hour),
		GeneratedAt:  start,
		Rows: []ScheduleRow{
			{Start: start, End: start.Add(2 * time.Hour), UserName: "Anna (070-123)"},
		},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatalf("expected a PDF document")
	}
}

func TestGenerateBookingScheduleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().GenerateBookingSchedule(ctx, ScheduleData{}); err == nil {
		t.Fatalf("expected cancelled context to abort")
	}
}

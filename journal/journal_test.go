package journal

import (
	"context"
	"testing"
	"time"

	"github.com/xx7Ahmed7xx/videobooth/common"
)

func newTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()

	db, err := common.NewInMemoryDB()
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	j, err := NewSQLiteJournal(db)
	if err != nil {
		t.Fatalf("Failed to create journal: %v", err)
	}
	return j
}

func TestSQLiteJournal_AddAndGetByID(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	entry := &Entry{
		StartedAt:       time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
		EndedAt:         time.Date(2025, 6, 1, 14, 0, 42, 0, time.UTC),
		OutputPath:      "/recordings/session-1.mp4",
		Encoder:         "h264_vaapi",
		Width:           1280,
		Height:          720,
		DurationSeconds: 41.8,
		SizeBytes:       12_345_678,
		Kept:            true,
		EndReason:       EndReasonOperator,
	}

	if err := j.Add(ctx, entry); err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("Expected an ID to be assigned on add")
	}

	got, err := j.GetByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if got == nil {
		t.Fatal("Expected the entry to be found")
	}

	if got.OutputPath != entry.OutputPath {
		t.Errorf("Expected output path %s, got %s", entry.OutputPath, got.OutputPath)
	}
	if got.Encoder != entry.Encoder {
		t.Errorf("Expected encoder %s, got %s", entry.Encoder, got.Encoder)
	}
	if got.DurationSeconds != entry.DurationSeconds {
		t.Errorf("Expected duration %v, got %v", entry.DurationSeconds, got.DurationSeconds)
	}
	if !got.Kept {
		t.Error("Expected the entry to be marked kept")
	}
	if !got.StartedAt.Equal(entry.StartedAt) {
		t.Errorf("Expected started_at %v, got %v", entry.StartedAt, got.StartedAt)
	}
	if got.EndReason != EndReasonOperator {
		t.Errorf("Expected end reason %s, got %s", EndReasonOperator, got.EndReason)
	}
}

func TestSQLiteJournal_GetByID_NotFound(t *testing.T) {
	j := newTestJournal(t)

	got, err := j.GetByID(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for a missing entry, got %+v", got)
	}
}

func TestSQLiteJournal_ListNewestFirst(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := &Entry{
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			EndedAt:    base.Add(time.Duration(i)*time.Hour + time.Minute),
			OutputPath: "/recordings/session.mp4",
			Encoder:    "libx264",
			EndReason:  EndReasonAutoStop,
		}
		if err := j.Add(ctx, entry); err != nil {
			t.Fatalf("Failed to add entry %d: %v", i, err)
		}
	}

	entries, err := j.List(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if !entries[0].StartedAt.After(entries[1].StartedAt) {
		t.Error("Expected entries ordered newest first")
	}
}

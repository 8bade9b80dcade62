package runjournal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	journal, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { journal.Close() })
	return journal
}

func sampleSummary(runID string, startedAt time.Time) Summary {
	return Summary{
		RunID:       runID,
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(3 * time.Minute),
		TotalShows:  120,
		CacheHits:   100,
		RemoteCalls: 20,
		AiringFound: 34,
		Failures:    1,
	}
}

func TestRecordAndRecent(t *testing.T) {
	journal := openJournal(t)
	ctx := context.Background()

	started := time.Date(2026, 1, 8, 6, 0, 0, 0, time.UTC)
	if err := journal.Record(ctx, sampleSummary("run-1", started)); err != nil {
		t.Fatalf("record: %v", err)
	}

	summaries, err := journal.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summary count = %d, want 1", len(summaries))
	}
	got := summaries[0]
	if got.RunID != "run-1" {
		t.Errorf("run_id = %q, want run-1", got.RunID)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, started)
	}
	if got.CacheHits != 100 || got.RemoteCalls != 20 || got.Failures != 1 {
		t.Errorf("counters = %+v", got)
	}
	if got.Duration() != 3*time.Minute {
		t.Errorf("duration = %v, want 3m", got.Duration())
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	journal := openJournal(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	for i, runID := range []string{"run-a", "run-b", "run-c"} {
		if err := journal.Record(ctx, sampleSummary(runID, base.Add(time.Duration(i)*6*time.Hour))); err != nil {
			t.Fatalf("record %s: %v", runID, err)
		}
	}

	summaries, err := journal.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("summary count = %d, want 2", len(summaries))
	}
	if summaries[0].RunID != "run-c" || summaries[1].RunID != "run-b" {
		t.Errorf("order = %s, %s; want run-c, run-b", summaries[0].RunID, summaries[1].RunID)
	}
}

func TestRecordDuplicateRunIDFails(t *testing.T) {
	journal := openJournal(t)
	ctx := context.Background()

	started := time.Date(2026, 1, 8, 6, 0, 0, 0, time.UTC)
	if err := journal.Record(ctx, sampleSummary("run-1", started)); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := journal.Record(ctx, sampleSummary("run-1", started.Add(time.Hour))); err == nil {
		t.Fatal("duplicate run id should fail")
	}
}

func TestRecentEmptyJournal(t *testing.T) {
	journal := openJournal(t)
	summaries, err := journal.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("summary count = %d, want 0", len(summaries))
	}
}

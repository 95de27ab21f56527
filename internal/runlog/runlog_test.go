package runlog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal", "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournalLifecycle(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	id, err := j.StartRun(ctx, "demo", "merge", "EN")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	rec := j.Bind(id)
	for i := 0; i < 3; i++ {
		if err := rec.Record(ctx, Event{ClipIndex: i, Phase: "merge", Status: StatusOK}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := rec.Record(ctx, Event{ClipIndex: 3, Phase: "merge", Status: StatusFailed, Message: "missing"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	events, err := j.Events(ctx, id)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 4 || events[3].Status != StatusFailed || events[3].Message != "missing" {
		t.Fatalf("events = %+v", events)
	}

	run, err := j.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != StatusRunning || !run.FinishedAt.IsZero() {
		t.Fatalf("run before finish = %+v", run)
	}

	if err := j.FinishRun(ctx, id, errors.New("boom")); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	run, _ = j.GetRun(ctx, id)
	if run.Status != StatusFailed || run.Message != "boom" || run.FinishedAt.IsZero() {
		t.Fatalf("run after finish = %+v", run)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	j := openTestJournal(t)
	if err := j.FinishRun(context.Background(), "nope", nil); err == nil {
		t.Fatalf("FinishRun on unknown run succeeded")
	}
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = Nop{}
	if err := r.Record(context.Background(), Event{}); err != nil {
		t.Fatalf("Nop.Record = %v", err)
	}
}

package sessionio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndDrainSession(t *testing.T) {
	dir := t.TempDir()

	if err := WriteSessionStart(dir, "sess-1", "/work/project", 1000, []int64{1, 2, 3}); err != nil {
		t.Fatalf("WriteSessionStart: %v", err)
	}
	if err := AppendFailure(dir, "sess-1", FailureRecord{Timestamp: 1001, ToolName: "bash", ErrorSummary: "exit 1"}); err != nil {
		t.Fatalf("AppendFailure: %v", err)
	}
	if err := AppendFailure(dir, "sess-1", FailureRecord{Timestamp: 1002, ToolName: "edit", ErrorSummary: "not found"}); err != nil {
		t.Fatalf("AppendFailure: %v", err)
	}

	rec, failures, err := DrainSession(dir, "sess-1")
	if err != nil {
		t.Fatalf("DrainSession: %v", err)
	}
	if rec == nil || rec.SessionID != "sess-1" || rec.Cwd != "/work/project" {
		t.Fatalf("unexpected session record: %+v", rec)
	}
	if len(rec.InjectedMemoryIDs) != 3 {
		t.Fatalf("expected 3 injected memory ids, got %v", rec.InjectedMemoryIDs)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failure records, got %d", len(failures))
	}
	if failures[0].ToolName != "bash" || failures[1].ToolName != "edit" {
		t.Fatalf("unexpected failure order: %+v", failures)
	}

	if _, err := os.Stat(filepath.Join(dir, "sessions", "sess-1.json")); !os.IsNotExist(err) {
		t.Errorf("expected session file to be deleted after drain")
	}
	if _, err := os.Stat(filepath.Join(dir, "sessions", "sess-1.failures.jsonl")); !os.IsNotExist(err) {
		t.Errorf("expected failures file to be deleted after drain")
	}
}

func TestDrainSessionMissingReturnsNilWithoutError(t *testing.T) {
	dir := t.TempDir()
	rec, failures, err := DrainSession(dir, "never-existed")
	if err != nil {
		t.Fatalf("DrainSession: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record for a session that never started, got %+v", rec)
	}
	if len(failures) != 0 {
		t.Errorf("expected no failures, got %v", failures)
	}
}

type fakePenalizeStore struct {
	penalized []int64
}

func (f *fakePenalizeStore) PenalizeMemory(ctx context.Context, memoryID int64, factor float64) error {
	f.penalized = append(f.penalized, memoryID)
	return nil
}

func TestApplySessionEndPenaltyBelowThresholdNoOp(t *testing.T) {
	store := &fakePenalizeStore{}
	rec := &SessionRecord{SessionID: "s", InjectedMemoryIDs: []int64{1, 2}}
	if err := ApplySessionEndPenalty(context.Background(), store, rec, 5000, DefaultPenaltyTokenThreshold); err != nil {
		t.Fatalf("ApplySessionEndPenalty: %v", err)
	}
	if len(store.penalized) != 0 {
		t.Errorf("expected no penalties below threshold, got %v", store.penalized)
	}
}

func TestApplySessionEndPenaltyAboveThresholdPenalizesAll(t *testing.T) {
	store := &fakePenalizeStore{}
	rec := &SessionRecord{SessionID: "s", InjectedMemoryIDs: []int64{1, 2, 3}}
	if err := ApplySessionEndPenalty(context.Background(), store, rec, 25000, DefaultPenaltyTokenThreshold); err != nil {
		t.Fatalf("ApplySessionEndPenalty: %v", err)
	}
	if len(store.penalized) != 3 {
		t.Errorf("expected all 3 memories penalized, got %v", store.penalized)
	}
}

func TestApplySessionEndPenaltyNilRecordNoOp(t *testing.T) {
	store := &fakePenalizeStore{}
	if err := ApplySessionEndPenalty(context.Background(), store, nil, 999999, DefaultPenaltyTokenThreshold); err != nil {
		t.Fatalf("ApplySessionEndPenalty: %v", err)
	}
	if len(store.penalized) != 0 {
		t.Errorf("expected no penalties for nil record, got %v", store.penalized)
	}
}

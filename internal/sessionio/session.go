// Package sessionio implements the host-facing session file glue described
// in memelord's external interfaces: per-session JSON state and a
// newline-delimited failure log under the project's data directory.
package sessionio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"memelord/internal/logging"
)

// SessionRecord is the contents of sessions/<session_id>.json.
type SessionRecord struct {
	SessionID        string  `json:"session_id"`
	Cwd              string  `json:"cwd"`
	StartedAt        int64   `json:"started_at"`
	InjectedMemoryIDs []int64 `json:"injected_memory_ids"`
}

// FailureRecord is one line of sessions/<session_id>.failures.jsonl.
type FailureRecord struct {
	Timestamp    int64  `json:"timestamp"`
	ToolName     string `json:"tool_name"`
	ToolInput    string `json:"tool_input"`
	ErrorSummary string `json:"error_summary"`
}

func sessionsDir(dataDir string) string {
	return filepath.Join(dataDir, "sessions")
}

func sessionPath(dataDir, sessionID string) string {
	return filepath.Join(sessionsDir(dataDir), sessionID+".json")
}

func failuresPath(dataDir, sessionID string) string {
	return filepath.Join(sessionsDir(dataDir), sessionID+".failures.jsonl")
}

// WriteSessionStart creates sessions/<session_id>.json, the collaborator
// analog of memelord's SessionStart hook.
func WriteSessionStart(dataDir, sessionID, cwd string, now int64, injectedMemoryIDs []int64) error {
	if err := os.MkdirAll(sessionsDir(dataDir), 0755); err != nil {
		return fmt.Errorf("sessionio: create sessions dir: %w", err)
	}
	rec := SessionRecord{
		SessionID:         sessionID,
		Cwd:               cwd,
		StartedAt:         now,
		InjectedMemoryIDs: injectedMemoryIDs,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("sessionio: marshal session record: %w", err)
	}
	if err := os.WriteFile(sessionPath(dataDir, sessionID), data, 0644); err != nil {
		return fmt.Errorf("sessionio: write session record: %w", err)
	}
	logging.Session("session started: %s cwd=%s memories=%d", sessionID, cwd, len(injectedMemoryIDs))
	return nil
}

// AppendFailure appends one failure record to the session's failures log,
// the collaborator analog of memelord's PostToolUse hook.
func AppendFailure(dataDir, sessionID string, rec FailureRecord) error {
	if err := os.MkdirAll(sessionsDir(dataDir), 0755); err != nil {
		return fmt.Errorf("sessionio: create sessions dir: %w", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("sessionio: marshal failure record: %w", err)
	}
	f, err := os.OpenFile(failuresPath(dataDir, sessionID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("sessionio: open failures log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("sessionio: append failure record: %w", err)
	}
	logging.SessionDebug("failure recorded: session=%s tool=%s", sessionID, rec.ToolName)
	return nil
}

// readSessionRecord reads sessions/<session_id>.json, if present.
func readSessionRecord(dataDir, sessionID string) (*SessionRecord, error) {
	data, err := os.ReadFile(sessionPath(dataDir, sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sessionio: read session record: %w", err)
	}
	var rec SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("sessionio: parse session record: %w", err)
	}
	return &rec, nil
}

// readFailures reads every line of sessions/<session_id>.failures.jsonl, if present.
func readFailures(dataDir, sessionID string) ([]FailureRecord, error) {
	data, err := os.ReadFile(failuresPath(dataDir, sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sessionio: read failures log: %w", err)
	}
	var out []FailureRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var rec FailureRecord
		if err := dec.Decode(&rec); err != nil {
			break
		}
		out = append(out, rec)
	}
	return out, nil
}

// DrainSession reads back both session files and deletes them, the
// collaborator analog of memelord's SessionEnd hook.
func DrainSession(dataDir, sessionID string) (*SessionRecord, []FailureRecord, error) {
	rec, err := readSessionRecord(dataDir, sessionID)
	if err != nil {
		return nil, nil, err
	}
	failures, err := readFailures(dataDir, sessionID)
	if err != nil {
		return nil, nil, err
	}

	_ = os.Remove(sessionPath(dataDir, sessionID))
	_ = os.Remove(failuresPath(dataDir, sessionID))

	logging.Session("session drained: %s failures=%d", sessionID, len(failures))
	return rec, failures, nil
}

// PenalizeStore is the subset of the store operations ApplySessionEndPenalty
// needs, kept narrow so sessionio doesn't import the store package's full
// construction surface.
type PenalizeStore interface {
	PenalizeMemory(ctx context.Context, memoryID int64, factor float64) error
}

// DefaultPenaltyTokenThreshold is the token spend at or above which a drained
// session's injected memories get penalized, per memelord's SessionEnd
// heuristic.
const DefaultPenaltyTokenThreshold = 20000

// SessionEndPenaltyFactor is the per-memory weight multiplier the
// heuristic applies.
const SessionEndPenaltyFactor = 0.999

// ApplySessionEndPenalty implements the SessionEnd hook's penalty
// heuristic: when a session spent at least threshold tokens, every memory
// it was injected with gets a small weight penalty, on the theory that a
// session with heavy spend and no explicit correction may still have been
// led astray by stale memories. This is host policy, not part of the
// store's own contract (see penalizeMemory).
func ApplySessionEndPenalty(ctx context.Context, s PenalizeStore, rec *SessionRecord, tokensSpent, threshold int64) error {
	if rec == nil || tokensSpent < threshold {
		return nil
	}
	for _, id := range rec.InjectedMemoryIDs {
		if err := s.PenalizeMemory(ctx, id, SessionEndPenaltyFactor); err != nil {
			return fmt.Errorf("sessionio: penalize memory %d: %w", id, err)
		}
	}
	logging.Session("session end penalty applied: %s memories=%d tokens=%d", rec.SessionID, len(rec.InjectedMemoryIDs), tokensSpent)
	return nil
}

package store

import (
	"context"
	"database/sql"

	"memelord/internal/clock"
	"memelord/internal/logging"
	"memelord/internal/scoring"
	"memelord/internal/vectorcodec"
)

// StartTask computes the description embedding outside any connection,
// opportunistically embeds pending memories so hook-stored ones become
// searchable, then in one short-lived transaction inserts a task row and
// retrieves the top-topK memories ranked by similarity * recency decay.
// Weight is intentionally excluded from this ranking: it governs
// GetTopByWeight instead.
func (s *Store) StartTask(ctx context.Context, description string) (int64, []Memory, error) {
	descVec, err := s.cfg.embedOne(ctx, description)
	if err != nil {
		return 0, nil, err
	}
	descBlob := vectorcodec.Encode(descVec)

	if _, err := s.EmbedPending(ctx); err != nil {
		logging.Get(logging.CategoryRetrieval).Warn("startTask: embedPending pass failed, continuing with existing embeddings: %v", err)
	}

	now := clock.NowUnix(s.cfg.Clock)
	var taskID int64
	var results []Memory

	err = withTx(ctx, s.cfg.DBPath, func(tx *sql.Tx) error {
		row, err := tx.Exec(
			`INSERT INTO tasks (session_id, description, description_embedding, started_at) VALUES (?, ?, ?, ?)`,
			s.cfg.SessionID, description, descBlob, now,
		)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to insert task", err)
		}
		taskID, err = row.LastInsertId()
		if err != nil {
			return err
		}

		ranked, err := rankByDescVec(tx, descBlob, s.cfg.DecayRate, now, s.cfg.TopK)
		if err != nil {
			return err
		}

		for _, r := range ranked {
			if _, err := tx.Exec(
				`INSERT INTO memory_retrievals (memory_id, task_id, similarity) VALUES (?, ?, ?)
				 ON CONFLICT(memory_id, task_id) DO NOTHING`,
				r.id, taskID, r.similarity,
			); err != nil {
				return newErr(ErrStorageLocked, "failed to record retrieval", err)
			}
			if _, err := tx.Exec(
				`UPDATE memories SET last_retrieved = ?, retrieval_count = retrieval_count + 1 WHERE id = ?`,
				now, r.id,
			); err != nil {
				return newErr(ErrStorageLocked, "failed to bump retrieval bookkeeping", err)
			}
			results = append(results, Memory{
				ID:       r.id,
				Content:  r.content,
				Category: r.category,
				Weight:   r.weight,
				Score:    r.similarity, // per-task score is similarity, not stored weight
			})
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	s.mu.Lock()
	s.currentTaskID = &taskID
	s.mu.Unlock()

	logging.Retrieval("startTask %d returned %d memories", taskID, len(results))
	return taskID, results, nil
}

// EndTask computes the task score against the current baseline, mutates
// the baseline, and in one transaction: updates the task row, upserts the
// new baseline, and — for each self-reported memory — computes credit,
// updates its weight via EMA, and records the retrieval's self_report and
// credit.
func (s *Store) EndTask(ctx context.Context, taskID int64, in EndTaskInput) error {
	s.mu.Lock()
	baseline := s.baseline
	s.mu.Unlock()

	outcome := scoring.Outcome{
		Tokens:          float64(in.TokensUsed),
		Errors:          float64(in.Errors),
		UserCorrections: float64(in.UserCorrections),
		Completed:       in.Completed,
	}
	taskScore := scoring.TaskScore(baseline, outcome)
	nextBaseline := baseline.Update(outcome.Tokens, outcome.Errors, outcome.UserCorrections)

	now := clock.NowUnix(s.cfg.Clock)
	k := len(in.SelfReport)

	err := withTx(ctx, s.cfg.DBPath, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`UPDATE tasks SET tokens_used = ?, tool_calls = ?, errors = ?, user_corrections = ?,
			                  completed = ?, task_score = ?, finished_at = ?
			 WHERE id = ?`,
			in.TokensUsed, in.ToolCalls, in.Errors, in.UserCorrections, boolToInt(in.Completed), taskScore, now, taskID,
		)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to update task", err)
		}

		if err := saveBaselineTx(tx, nextBaseline); err != nil {
			return err
		}

		for _, sr := range in.SelfReport {
			credit := scoring.Credit(taskScore, sr.Score, k)

			var weight float64
			if err := tx.QueryRow(`SELECT weight FROM memories WHERE id = ?`, sr.MemoryID).Scan(&weight); err != nil {
				if err == sql.ErrNoRows {
					continue
				}
				return newErr(ErrStorageLocked, "failed to load memory weight for credit update", err)
			}
			newWeight := scoring.UpdateWeight(weight, credit, s.cfg.LearningRate)

			if _, err := tx.Exec(`UPDATE memories SET weight = ? WHERE id = ?`, newWeight, sr.MemoryID); err != nil {
				return newErr(ErrStorageLocked, "failed to persist updated weight", err)
			}
			if _, err := tx.Exec(
				`UPDATE memory_retrievals SET self_report = ?, credit = ? WHERE memory_id = ? AND task_id = ?`,
				sr.Score, credit, sr.MemoryID, taskID,
			); err != nil {
				return newErr(ErrStorageLocked, "failed to record self-report and credit", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.baseline = nextBaseline
	if s.currentTaskID != nil && *s.currentTaskID == taskID {
		s.currentTaskID = nil
	}
	s.mu.Unlock()

	logging.Task("endTask %d: score=%.4f, baseline.count=%d", taskID, taskScore, nextBaseline.Count)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

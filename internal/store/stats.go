package store

import (
	"context"
	"database/sql"
)

// GetTopByWeight returns the top n memories purely by weight, no embedding
// needed. Score in each result is the memory's weight.
func (s *Store) GetTopByWeight(ctx context.Context, n int) ([]Memory, error) {
	if n < 1 {
		n = 1
	}
	var out []Memory
	err := withConn(ctx, s.cfg.DBPath, func(db *sql.DB) error {
		m, err := getTopByWeightTx(db, n)
		out = m
		return err
	})
	return out, err
}

// GetStats reports totalMemories, taskCount, avgTaskScore, and up to 10
// top memories by weight.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := withConn(ctx, s.cfg.DBPath, func(db *sql.DB) error {
		if err := db.QueryRow(`SELECT COUNT(*) FROM memories`).Scan(&stats.TotalMemories); err != nil {
			return newErr(ErrStorageLocked, "failed to count memories", err)
		}
		if err := db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&stats.TaskCount); err != nil {
			return newErr(ErrStorageLocked, "failed to count tasks", err)
		}

		var avg sql.NullFloat64
		if err := db.QueryRow(`SELECT AVG(task_score) FROM tasks WHERE finished_at IS NOT NULL`).Scan(&avg); err != nil {
			return newErr(ErrStorageLocked, "failed to average task score", err)
		}
		if avg.Valid {
			stats.AvgTaskScore = avg.Float64
		}

		top, err := getTopByWeightTx(db, 10)
		if err != nil {
			return err
		}
		stats.TopMemories = top
		return nil
	})
	return stats, err
}

package store

import (
	"context"
	"database/sql"
	"math"

	"memelord/internal/scoring"
)

// decayWeightFloor is the weight below which a memory becomes eligible for
// deletion by Decay, subject to the retrieval-count guard.
const decayWeightFloor = 0.15

// decayRetrievalGuard is the minimum retrieval_count a memory must exceed
// before Decay will consider deleting it. It prevents killing brand-new
// low-weight memories that have never been tried.
const decayRetrievalGuard = 5

// Decay multiplies every memory's weight by decayRate in a single UPDATE,
// then deletes memories with weight below decayWeightFloor that have also
// been retrieved more than decayRetrievalGuard times.
func (s *Store) Decay(ctx context.Context) (DecayResult, error) {
	var result DecayResult
	err := withTx(ctx, s.cfg.DBPath, func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE memories SET weight = MAX(weight * ?, ?)`, s.cfg.DecayRate, scoring.MinWeight)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to apply decay", err)
		}
		decayed, _ := res.RowsAffected()
		result.Decayed = decayed

		toDelete, err := tx.Query(
			`SELECT id FROM memories WHERE weight < ? AND retrieval_count > ?`,
			decayWeightFloor, decayRetrievalGuard,
		)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to select decay-eligible memories", err)
		}
		var ids []int64
		for toDelete.Next() {
			var id int64
			if err := toDelete.Scan(&id); err != nil {
				toDelete.Close()
				return newErr(ErrSchemaMismatch, "failed to scan decay-eligible memory", err)
			}
			ids = append(ids, id)
		}
		toDelete.Close()

		for _, id := range ids {
			if _, err := tx.Exec(`DELETE FROM memory_retrievals WHERE memory_id = ?`, id); err != nil {
				return newErr(ErrStorageLocked, "failed to delete retrievals for decayed memory", err)
			}
			if _, err := tx.Exec(`DELETE FROM memories WHERE id = ?`, id); err != nil {
				return newErr(ErrStorageLocked, "failed to delete decayed memory", err)
			}
		}
		result.Deleted = int64(len(ids))
		return nil
	})
	return result, err
}

// Purge deletes all memories with weight below threshold, with no
// retrieval-count guard. A NaN or negative threshold is rejected with
// InvalidArgument.
func (s *Store) Purge(ctx context.Context, threshold float64) (int64, error) {
	if math.IsNaN(threshold) || threshold < 0 {
		return 0, newErr(ErrInvalidArgument, "purge threshold must be a non-negative number", nil)
	}

	var deleted int64
	err := withTx(ctx, s.cfg.DBPath, func(tx *sql.Tx) error {
		rows, err := tx.Query(`SELECT id FROM memories WHERE weight < ?`, threshold)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to select purge-eligible memories", err)
		}
		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return newErr(ErrSchemaMismatch, "failed to scan purge-eligible memory", err)
			}
			ids = append(ids, id)
		}
		rows.Close()

		for _, id := range ids {
			if _, err := tx.Exec(`DELETE FROM memory_retrievals WHERE memory_id = ?`, id); err != nil {
				return newErr(ErrStorageLocked, "failed to delete retrievals for purged memory", err)
			}
			if _, err := tx.Exec(`DELETE FROM memories WHERE id = ?`, id); err != nil {
				return newErr(ErrStorageLocked, "failed to delete purged memory", err)
			}
		}
		deleted = int64(len(ids))
		return nil
	})
	return deleted, err
}

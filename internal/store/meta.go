package store

import (
	"database/sql"

	"memelord/internal/scoring"
)

const metaKeyBaseline = "baseline"

// loadBaseline reads the serialized baseline from meta, defaulting to the
// zero-value baseline when the row has never been written.
func loadBaseline(db *sql.DB) (scoring.Baseline, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaKeyBaseline).Scan(&value)
	if err == sql.ErrNoRows {
		return scoring.Baseline{}, nil
	}
	if err != nil {
		return scoring.Baseline{}, newErr(ErrStorageLocked, "failed to load baseline", err)
	}
	b, err := scoring.UnmarshalBaseline(value)
	if err != nil {
		return scoring.Baseline{}, newErr(ErrSchemaMismatch, "failed to parse stored baseline", err)
	}
	return b, nil
}

// saveBaselineTx upserts the serialized baseline within an existing
// transaction, so it commits atomically with the task update it
// accompanies in endTask.
func saveBaselineTx(tx *sql.Tx, b scoring.Baseline) error {
	value, err := b.Marshal()
	if err != nil {
		return newErr(ErrSchemaMismatch, "failed to serialize baseline", err)
	}
	_, err = tx.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaKeyBaseline, value,
	)
	if err != nil {
		return newErr(ErrStorageLocked, "failed to persist baseline", err)
	}
	return nil
}

func avgTokensPerTaskTx(q interface{ QueryRow(string, ...interface{}) *sql.Row }) (float64, error) {
	var avg sql.NullFloat64
	err := q.QueryRow(`SELECT AVG(tokens_used) FROM tasks WHERE finished_at IS NOT NULL`).Scan(&avg)
	if err != nil {
		return 0, newErr(ErrStorageLocked, "failed to compute average tokens per task", err)
	}
	if !avg.Valid {
		return scoring.DefaultAvgTokensPerTask, nil
	}
	return avg.Float64, nil
}

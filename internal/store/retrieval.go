package store

import (
	"database/sql"

	"memelord/internal/scoring"
)

// rankedMemory is one row of the startTask ranking query: id plus the
// similarity score the ranking expression computed for it.
type rankedMemory struct {
	id         int64
	content    string
	category   scoring.Category
	weight     float64
	similarity float64
}

// rankByDescVec runs the ranking SQL for startTask: wraps both sides of the
// cosine distance in the configured vector function, multiplies by the
// retrieval-recency decay factor, and returns the top topK rows among
// memories with a non-NULL embedding, ties broken by storage row order.
func rankByDescVec(tx *sql.Tx, descVecBlob []byte, decayRate float64, now int64, topK int) ([]rankedMemory, error) {
	rows, err := tx.Query(`
		SELECT id, content, category, weight,
		       1 - vector_distance_cos(vector32(embedding), vector32(?)) AS sim,
		       (1 - vector_distance_cos(vector32(embedding), vector32(?)))
		         * decay_pow(?, (? - COALESCE(last_retrieved, created_at)) / 86400.0) AS score
		FROM memories
		WHERE embedding IS NOT NULL AND LENGTH(embedding) > 0
		ORDER BY score DESC, id ASC
		LIMIT ?
	`, descVecBlob, descVecBlob, decayRate, now, topK)
	if err != nil {
		return nil, newErr(ErrStorageLocked, "failed to run retrieval ranking query", err)
	}
	defer rows.Close()

	var out []rankedMemory
	for rows.Next() {
		var r rankedMemory
		var catStr string
		var score float64
		if err := rows.Scan(&r.id, &r.content, &catStr, &r.weight, &r.similarity, &score); err != nil {
			return nil, newErr(ErrSchemaMismatch, "failed to scan ranked memory", err)
		}
		r.category = scoring.Category(catStr)
		out = append(out, r)
	}
	return out, rows.Err()
}

// getTopByWeightTx is pure weight ranking, no embedding involved.
func getTopByWeightTx(q interface {
	Query(string, ...interface{}) (*sql.Rows, error)
}, n int) ([]Memory, error) {
	rows, err := q.Query(`
		SELECT id, content, category, weight, initial_cost, created_at, last_retrieved, retrieval_count, source_task
		FROM memories
		ORDER BY weight DESC, id ASC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, newErr(ErrStorageLocked, "failed to query top-by-weight memories", err)
	}
	defer rows.Close()

	var out []Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		m.Score = m.Weight
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(r rowScanner) (Memory, error) {
	var m Memory
	var catStr string
	var lastRetrieved, sourceTask sql.NullInt64
	err := r.Scan(&m.ID, &m.Content, &catStr, &m.Weight, &m.InitialCost, &m.CreatedAt, &lastRetrieved, &m.RetrievalCount, &sourceTask)
	if err != nil {
		return Memory{}, newErr(ErrSchemaMismatch, "failed to scan memory row", err)
	}
	m.Category = scoring.Category(catStr)
	if lastRetrieved.Valid {
		v := lastRetrieved.Int64
		m.LastRetrieved = &v
	}
	if sourceTask.Valid {
		v := sourceTask.Int64
		m.SourceTask = &v
	}
	return m, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"memelord/internal/clock"
	"memelord/internal/logging"
	"memelord/internal/scoring"
	"memelord/internal/vectorcodec"
)

// reportCorrection embeds the fixed correction template synchronously and
// inserts a category=correction memory, weighted per the correction
// formula.
func (s *Store) ReportCorrection(ctx context.Context, in CorrectionInput) (int64, error) {
	content := fmt.Sprintf("%s\n\nFailed approach: %s\nWorking approach: %s", in.Lesson, in.WhatFailed, in.WhatWorked)

	vec, err := s.cfg.embedOne(ctx, content)
	if err != nil {
		return 0, err
	}
	blob := vectorcodec.Encode(vec)

	var id int64
	err = withTx(ctx, s.cfg.DBPath, func(tx *sql.Tx) error {
		avg, err := avgTokensPerTaskTx(tx)
		if err != nil {
			return err
		}
		weight, err := scoring.InitialWeight(scoring.CategoryCorrection, int(in.TokensWasted), avg, "")
		if err != nil {
			return newErr(ErrInvalidArgument, "invalid category", err)
		}

		sourceTask := s.CurrentTaskID()
		row, err := tx.Exec(
			`INSERT INTO memories (content, embedding, category, weight, initial_cost, created_at, source_task)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			content, blob, string(scoring.CategoryCorrection), weight, in.TokensWasted, clock.NowUnix(s.cfg.Clock), nullableInt64(sourceTask),
		)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to insert correction memory", err)
		}
		id, err = row.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	logging.Store("reportCorrection inserted memory id=%d", id)
	return id, nil
}

// ReportUserInput embeds the lesson and inserts a category=user memory,
// weighted per the source table.
func (s *Store) ReportUserInput(ctx context.Context, in UserInputReport) (int64, error) {
	vec, err := s.cfg.embedOne(ctx, in.Lesson)
	if err != nil {
		return 0, err
	}
	blob := vectorcodec.Encode(vec)
	weight := scoring.InitialWeightUser(in.Source)

	var id int64
	err = withTx(ctx, s.cfg.DBPath, func(tx *sql.Tx) error {
		sourceTask := s.CurrentTaskID()
		row, err := tx.Exec(
			`INSERT INTO memories (content, embedding, category, weight, initial_cost, created_at, source_task)
			 VALUES (?, ?, ?, ?, 0, ?, ?)`,
			in.Lesson, blob, string(scoring.CategoryUser), weight, clock.NowUnix(s.cfg.Clock), nullableInt64(sourceTask),
		)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to insert user memory", err)
		}
		id, err = row.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	logging.Store("reportUserInput inserted memory id=%d (source=%s)", id, in.Source)
	return id, nil
}

// InsertRawMemory inserts a memory with embedding=NULL ("pending"), for
// hook collaborators on the hot path that cannot wait for inference.
func (s *Store) InsertRawMemory(ctx context.Context, content string, category scoring.Category, weight float64) (int64, error) {
	if !category.Valid() {
		return 0, newErr(ErrInvalidArgument, fmt.Sprintf("unknown category %q", category), nil)
	}
	weight = scoring.Clamp(weight, scoring.MinWeight, scoring.MaxWeight)

	var id int64
	err := withTx(ctx, s.cfg.DBPath, func(tx *sql.Tx) error {
		sourceTask := s.CurrentTaskID()
		row, err := tx.Exec(
			`INSERT INTO memories (content, embedding, category, weight, initial_cost, created_at, source_task)
			 VALUES (?, NULL, ?, ?, 0, ?, ?)`,
			content, string(category), weight, clock.NowUnix(s.cfg.Clock), nullableInt64(sourceTask),
		)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to insert raw memory", err)
		}
		id, err = row.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	logging.StoreDebug("insertRawMemory inserted pending memory id=%d", id)
	return id, nil
}

// EmbedPending selects every memory with embedding=NULL, embeds each one
// at a time with no connection held, then writes them all back in a
// single short transaction. Safe to call concurrently: a second writer
// racing on the same row simply overwrites it with an equivalent value.
func (s *Store) EmbedPending(ctx context.Context) (int, error) {
	type pending struct {
		id      int64
		content string
	}

	var rowsToEmbed []pending
	err := withConn(ctx, s.cfg.DBPath, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT id, content FROM memories WHERE embedding IS NULL`)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to query pending memories", err)
		}
		defer rows.Close()
		for rows.Next() {
			var p pending
			if err := rows.Scan(&p.id, &p.content); err != nil {
				return newErr(ErrSchemaMismatch, "failed to scan pending memory", err)
			}
			rowsToEmbed = append(rowsToEmbed, p)
		}
		return rows.Err()
	})
	if err != nil {
		return 0, err
	}
	if len(rowsToEmbed) == 0 {
		return 0, nil
	}

	type embedded struct {
		id   int64
		blob []byte
	}
	results := make([]embedded, 0, len(rowsToEmbed))
	for _, p := range rowsToEmbed {
		vec, err := s.cfg.embedOne(ctx, p.content)
		if err != nil {
			logging.Get(logging.CategoryEmbedding).Warn("embedPending: skipping memory id=%d: %v", p.id, err)
			continue
		}
		results = append(results, embedded{id: p.id, blob: vectorcodec.Encode(vec)})
	}
	if len(results) == 0 {
		return 0, nil
	}

	err = withTx(ctx, s.cfg.DBPath, func(tx *sql.Tx) error {
		for _, r := range results {
			if _, err := tx.Exec(`UPDATE memories SET embedding = ? WHERE id = ?`, r.blob, r.id); err != nil {
				return newErr(ErrStorageLocked, "failed to write embedded memory", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logging.Store("embedPending embedded %d memories", len(results))
	return len(results), nil
}

// ContradictMemory deletes the memory and all its retrieval rows. If
// correction is non-empty and the delete succeeded, it embeds correction
// and inserts a new category=correction memory with weight 2.0.
func (s *Store) ContradictMemory(ctx context.Context, memoryID int64, correction string) (ContradictResult, error) {
	var deleted bool
	err := withTx(ctx, s.cfg.DBPath, func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM memories WHERE id = ?`, memoryID)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to delete contradicted memory", err)
		}
		n, _ := res.RowsAffected()
		deleted = n > 0
		if deleted {
			if _, err := tx.Exec(`DELETE FROM memory_retrievals WHERE memory_id = ?`, memoryID); err != nil {
				return newErr(ErrStorageLocked, "failed to delete contradicted memory's retrievals", err)
			}
		}
		return nil
	})
	if err != nil {
		return ContradictResult{}, err
	}
	if !deleted || correction == "" {
		return ContradictResult{Deleted: deleted}, nil
	}

	vec, err := s.cfg.embedOne(ctx, correction)
	if err != nil {
		return ContradictResult{Deleted: deleted}, err
	}
	blob := vectorcodec.Encode(vec)

	var correctionID int64
	err = withTx(ctx, s.cfg.DBPath, func(tx *sql.Tx) error {
		row, err := tx.Exec(
			`INSERT INTO memories (content, embedding, category, weight, initial_cost, created_at, source_task)
			 VALUES (?, ?, ?, 2.0, 0, ?, ?)`,
			correction, blob, string(scoring.CategoryCorrection), clock.NowUnix(s.cfg.Clock), nullableInt64(s.CurrentTaskID()),
		)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to insert contradiction correction", err)
		}
		correctionID, err = row.LastInsertId()
		return err
	})
	if err != nil {
		return ContradictResult{Deleted: deleted}, err
	}
	return ContradictResult{Deleted: true, CorrectionID: correctionID}, nil
}

// PenalizeMemory applies weight = max(weight*factor, 0.1).
func (s *Store) PenalizeMemory(ctx context.Context, memoryID int64, factor float64) error {
	return withTx(ctx, s.cfg.DBPath, func(tx *sql.Tx) error {
		var weight float64
		if err := tx.QueryRow(`SELECT weight FROM memories WHERE id = ?`, memoryID).Scan(&weight); err != nil {
			if err == sql.ErrNoRows {
				return nil
			}
			return newErr(ErrStorageLocked, "failed to load memory weight", err)
		}
		next := scoring.Penalize(weight, factor)
		_, err := tx.Exec(`UPDATE memories SET weight = ? WHERE id = ?`, next, memoryID)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to persist penalized weight", err)
		}
		return nil
	})
}

func nullableInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

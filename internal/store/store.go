package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"memelord/internal/clock"
	"memelord/internal/logging"
	"memelord/internal/scoring"
)

// Store is the stateful memory-store component: it wraps storage and
// scoring, and owns the session id, the current task id, and an in-memory
// baseline cache reloaded from storage on open. It holds no database
// connection between calls — see conn.go for the connect/execute/close
// discipline every method follows.
type Store struct {
	cfg Config

	mu            sync.Mutex
	currentTaskID *int64
	baseline      scoring.Baseline
}

// New constructs a Store and runs init(): creates schema, repairs
// truncated embeddings, and loads the baseline from meta.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, newErr(ErrInvalidArgument, "dbPath is required", nil)
	}
	if cfg.SessionID == "" {
		return nil, newErr(ErrInvalidArgument, "sessionId is required", nil)
	}
	if cfg.Embed == nil {
		return nil, newErr(ErrInvalidArgument, "embed is required", nil)
	}
	if cfg.VectorType == "" {
		cfg.VectorType = "vector32"
	}
	if cfg.VectorType != "vector32" {
		return nil, newErr(ErrInvalidArgument, fmt.Sprintf("vector type %q is not implemented, only vector32 is supported", cfg.VectorType), nil)
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = 384
	}
	if cfg.TopK < 0 {
		return nil, newErr(ErrInvalidArgument, fmt.Sprintf("topK must not be negative, got %d", cfg.TopK), nil)
	}
	if cfg.TopK == 0 {
		cfg.TopK = 5
	}
	if cfg.LearningRate == 0 {
		cfg.LearningRate = scoring.DefaultLearningRate
	}
	if cfg.DecayRate == 0 {
		cfg.DecayRate = scoring.DefaultDecayRate
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}

	s := &Store{cfg: cfg}
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// init is idempotent: creates schema, runs the embedding-length repair,
// and loads the baseline from meta. Safe to call again after Close.
func (s *Store) init(ctx context.Context) error {
	logging.Store("initializing store at %s (dimensions=%d, vectorType=%s)", s.cfg.DBPath, s.cfg.Dimensions, s.cfg.VectorType)

	var loaded scoring.Baseline
	err := withConn(ctx, s.cfg.DBPath, func(db *sql.DB) error {
		if err := initSchema(db, s.cfg.Dimensions); err != nil {
			return err
		}
		b, err := loadBaseline(db)
		if err != nil {
			return err
		}
		loaded = b
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.baseline = loaded
	s.mu.Unlock()
	logging.StoreDebug("store initialized, baseline count=%d", loaded.Count)
	return nil
}

// Close drops cached in-process state. There is no persistent connection
// to close; the next call to New re-initializes from the file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTaskID = nil
	s.baseline = scoring.Baseline{}
	return nil
}

// CurrentTaskID returns the task id set by the most recent startTask in
// this process, or nil if none is active.
func (s *Store) CurrentTaskID() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTaskID
}

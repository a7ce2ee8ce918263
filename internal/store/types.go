// Package store implements memelord's persistent memory core: schema,
// connection discipline, and the public operation contract over a
// single-file embedded database opened from multiple OS processes.
package store

import (
	"context"
	"fmt"

	"memelord/internal/clock"
	"memelord/internal/embedding"
	"memelord/internal/scoring"
)

// Memory is one stored lesson/correction/preference/discovery.
type Memory struct {
	ID              int64
	Content         string
	Embedding       []float32 // not loaded by the store's read operations; nil in returned memories
	Category        scoring.Category
	Weight          float64
	InitialCost     int64
	CreatedAt       int64
	LastRetrieved   *int64
	RetrievalCount  int64
	SourceTask      *int64
	Score           float64 // set by retrieval operations: similarity or weight, per call
}

// Task is one bounded piece of work between startTask and endTask.
type Task struct {
	ID               int64
	Description      string
	TokensUsed       int64
	ToolCalls        int64
	Errors           int64
	UserCorrections  int64
	Completed        bool
	TaskScore        float64
	StartedAt        int64
	FinishedAt       *int64
}

// SelfReport is one (memoryId, rating) pair supplied to endTask.
type SelfReport struct {
	MemoryID int64
	Score    int // 0..3
}

// EndTaskInput carries endTask's outcome counters and optional self-ratings.
type EndTaskInput struct {
	TokensUsed      int64
	ToolCalls       int64
	Errors          int64
	UserCorrections int64
	Completed       bool
	SelfReport      []SelfReport
}

// CorrectionInput is reportCorrection's argument.
type CorrectionInput struct {
	Lesson       string
	WhatFailed   string
	WhatWorked   string
	TokensWasted int64
	ToolsWasted  int64
}

// UserInputReport is reportUserInput's argument.
type UserInputReport struct {
	Lesson string
	Source scoring.UserSource
}

// ContradictResult is contradictMemory's return value.
type ContradictResult struct {
	Deleted      bool
	CorrectionID int64
}

// DecayResult is decay's return value.
type DecayResult struct {
	Decayed int64
	Deleted int64
}

// Stats is getStats's return value.
type Stats struct {
	TotalMemories int64
	TaskCount     int64
	AvgTaskScore  float64
	TopMemories   []Memory
}

// Config is the store's construction-time configuration. dbPath, sessionID,
// and Embed are required; everything else has a default.
type Config struct {
	DBPath    string
	SessionID string
	Embed     embedding.EmbeddingEngine

	// VectorType names the SQL vector primitive. Only "vector32" is
	// implemented; anything else is an InvalidArgument at New.
	VectorType string
	Dimensions int
	TopK       int

	LearningRate float64
	DecayRate    float64

	Clock clock.Clock
}

// DefaultConfig seeds the optional fields of Config.
func DefaultConfig() Config {
	return Config{
		VectorType:   "vector32",
		Dimensions:   384,
		TopK:         5,
		LearningRate: scoring.DefaultLearningRate,
		DecayRate:    scoring.DefaultDecayRate,
		Clock:        clock.System{},
	}
}

// embedOne calls cfg.Embed.Embed outside of any open connection and
// validates the returned dimensionality against cfg.Dimensions.
func (c Config) embedOne(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.Embed.Embed(ctx, text)
	if err != nil {
		return nil, newErr(ErrEmbedFailure, "embedding provider failed", err)
	}
	if len(vec) != c.Dimensions {
		return nil, newErr(ErrEmbedDimensionMismatch,
			fmt.Sprintf("embedder returned %d dimensions, store configured for %d", len(vec), c.Dimensions), nil)
	}
	return vec, nil
}

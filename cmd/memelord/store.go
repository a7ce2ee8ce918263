package main

import (
	"context"
	"fmt"

	"memelord/internal/clock"
	"memelord/internal/embedding"
	"memelord/internal/store"
)

// openStore builds the embedding engine and store.Config the currently
// loaded config.Config describes, and opens the store. Every subcommand
// uses this path, the same one a tool-protocol server or hook script would
// follow when constructing its own store.Store.
func openStore(ctx context.Context) (*store.Store, error) {
	engineCfg := embedding.Config{
		Provider:                cfg.Embedding.Provider,
		OllamaEndpoint:          cfg.Embedding.OllamaEndpoint,
		OllamaModel:             cfg.Embedding.OllamaModel,
		GenAIAPIKey:             cfg.Embedding.GenAIAPIKey,
		GenAIModel:              cfg.Embedding.GenAIModel,
		TaskType:                cfg.Embedding.TaskType,
		DeterministicDimensions: cfg.Store.Dimensions,
	}
	engine, err := embedding.NewEngine(engineCfg)
	if err != nil {
		return nil, fmt.Errorf("building embedding engine: %w", err)
	}

	storeCfg := store.DefaultConfig()
	storeCfg.DBPath = cfg.DBPath()
	storeCfg.SessionID = sessionID
	storeCfg.Embed = engine
	storeCfg.VectorType = cfg.Store.VectorType
	storeCfg.Dimensions = cfg.Store.Dimensions
	storeCfg.TopK = cfg.Store.TopK
	storeCfg.LearningRate = cfg.Scoring.LearningRate
	storeCfg.DecayRate = cfg.Scoring.DecayRate
	storeCfg.Clock = clock.System{}

	s, err := store.New(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return s, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show memory store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.GetStats(ctx)
		if err != nil {
			logger.Error("status failed", zap.Error(err))
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge <threshold>",
	Short: "Delete all memories below a weight threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var threshold float64
		if _, err := fmt.Sscanf(args[0], "%f", &threshold); err != nil {
			return fmt.Errorf("invalid threshold %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		deleted, err := s.Purge(ctx, threshold)
		if err != nil {
			logger.Error("purge failed", zap.Error(err))
			return err
		}
		fmt.Printf("deleted=%d\n", deleted)
		return nil
	},
}

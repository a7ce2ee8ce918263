package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var contradictCorrection string

var contradictCmd = &cobra.Command{
	Use:   "contradict <memory-id>",
	Short: "Delete a memory, optionally replacing it with a correction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		memoryID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid memory id %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := s.ContradictMemory(ctx, memoryID, contradictCorrection)
		if err != nil {
			logger.Error("contradict failed", zap.Error(err))
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	contradictCmd.Flags().StringVar(&contradictCorrection, "correction", "", "replacement correction lesson")
}

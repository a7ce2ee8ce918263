package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"memelord/internal/scoring"
	"memelord/internal/store"
)

var (
	reportWhatFailed   string
	reportWhatWorked   string
	reportTokensWasted int64
	reportToolsWasted  int64
	reportSource       string
	reportWeight       float64
)

var reportCorrectionCmd = &cobra.Command{
	Use:   "correction <lesson>",
	Short: "Record a correction memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.ReportCorrection(ctx, store.CorrectionInput{
			Lesson:       args[0],
			WhatFailed:   reportWhatFailed,
			WhatWorked:   reportWhatWorked,
			TokensWasted: reportTokensWasted,
			ToolsWasted:  reportToolsWasted,
		})
		if err != nil {
			logger.Error("report correction failed", zap.Error(err))
			return err
		}
		fmt.Printf("memory_id=%d\n", id)
		return nil
	},
}

var reportUserInputCmd = &cobra.Command{
	Use:   "user-input <lesson>",
	Short: "Record a user-provided memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.ReportUserInput(ctx, store.UserInputReport{
			Lesson: args[0],
			Source: scoring.UserSource(reportSource),
		})
		if err != nil {
			logger.Error("report user-input failed", zap.Error(err))
			return err
		}
		fmt.Printf("memory_id=%d\n", id)
		return nil
	},
}

var reportInsightCmd = &cobra.Command{
	Use:   "insight <content>",
	Short: "Record an insight memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		weight := reportWeight
		if weight == 0 {
			weight = 1.0
		}
		id, err := s.InsertRawMemory(ctx, args[0], scoring.CategoryInsight, weight)
		if err != nil {
			logger.Error("report insight failed", zap.Error(err))
			return err
		}
		fmt.Printf("memory_id=%d\n", id)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Record a memory (correction, user-input, or insight)",
}

func init() {
	reportCorrectionCmd.Flags().StringVar(&reportWhatFailed, "what-failed", "", "the approach that failed")
	reportCorrectionCmd.Flags().StringVar(&reportWhatWorked, "what-worked", "", "the approach that worked")
	reportCorrectionCmd.Flags().Int64Var(&reportTokensWasted, "tokens-wasted", 0, "tokens spent before finding the working approach")
	reportCorrectionCmd.Flags().Int64Var(&reportToolsWasted, "tools-wasted", 0, "tool calls spent before finding the working approach")

	reportUserInputCmd.Flags().StringVar(&reportSource, "source", string(scoring.UserSourceInput), "user_denial|user_correction|user_input")

	reportInsightCmd.Flags().Float64Var(&reportWeight, "weight", 1.0, "initial weight")

	reportCmd.AddCommand(reportCorrectionCmd, reportUserInputCmd, reportInsightCmd)
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"memelord/internal/store"
)

var (
	endTaskTokens      int64
	endTaskToolCalls   int64
	endTaskErrors      int64
	endTaskCorrections int64
	endTaskCompleted   bool
	endTaskSelfReport  string
)

var endTaskCmd = &cobra.Command{
	Use:   "end-task <task-id>",
	Short: "End a task, update weights, and opportunistically decay",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task id %q: %w", args[0], err)
		}

		selfReport, err := parseSelfReport(endTaskSelfReport)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		err = s.EndTask(ctx, taskID, store.EndTaskInput{
			TokensUsed:      endTaskTokens,
			ToolCalls:       endTaskToolCalls,
			Errors:          endTaskErrors,
			UserCorrections: endTaskCorrections,
			Completed:       endTaskCompleted,
			SelfReport:      selfReport,
		})
		if err != nil {
			logger.Error("end-task failed", zap.Error(err))
			return err
		}

		// Opportunistic maintenance: decay runs after every end-task so
		// weight drift from this task's ratings is reflected before the
		// next retrieval, without a separate scheduled job.
		if _, err := s.Decay(ctx); err != nil {
			logger.Warn("opportunistic decay after end-task failed", zap.Error(err))
		}

		fmt.Println("ok")
		return nil
	},
}

// parseSelfReport parses "id:score,id:score,..." into []store.SelfReport.
func parseSelfReport(raw string) ([]store.SelfReport, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]store.SelfReport, 0, len(parts))
	for _, p := range parts {
		kv := strings.SplitN(p, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid self-report entry %q, expected id:score", p)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(kv[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid memory id in self-report entry %q: %w", p, err)
		}
		score, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid score in self-report entry %q: %w", p, err)
		}
		out = append(out, store.SelfReport{MemoryID: id, Score: score})
	}
	return out, nil
}

func init() {
	endTaskCmd.Flags().Int64Var(&endTaskTokens, "tokens", 0, "tokens used")
	endTaskCmd.Flags().Int64Var(&endTaskToolCalls, "tool-calls", 0, "tool calls made")
	endTaskCmd.Flags().Int64Var(&endTaskErrors, "errors", 0, "errors encountered")
	endTaskCmd.Flags().Int64Var(&endTaskCorrections, "corrections", 0, "user corrections received")
	endTaskCmd.Flags().BoolVar(&endTaskCompleted, "completed", false, "whether the task completed successfully")
	endTaskCmd.Flags().StringVar(&endTaskSelfReport, "self-report", "", "comma-separated memory_id:score (0-3) pairs")
}

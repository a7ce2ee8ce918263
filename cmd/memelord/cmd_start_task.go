package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var startTaskCmd = &cobra.Command{
	Use:   "start-task <description>",
	Short: "Start a task and retrieve relevant memories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		taskID, memories, err := s.StartTask(ctx, args[0])
		if err != nil {
			logger.Error("start-task failed", zap.Error(err))
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			TaskID   int64       `json:"task_id"`
			Memories interface{} `json:"memories"`
		}{taskID, memories})
	},
}

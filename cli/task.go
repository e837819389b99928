package cli

import (
	"fmt"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/engine/node"
	"github.com/spf13/cobra"
)

const (
	kindImage = "image"
	kindVideo = "video"
)

// TaskCmd groups commands that act on existing tasks.
func TaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect submitted tasks",
	}
	cmd.AddCommand(taskGetCmd())
	return cmd
}

func taskGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <task-id>...",
		Short: "Fetch the status of one or more tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := cmd.Flags().GetString("kind")
			if err != nil {
				return fmt.Errorf("failed to get kind flag: %w", err)
			}
			poll, err := cmd.Flags().GetBool("poll")
			if err != nil {
				return fmt.Errorf("failed to get poll flag: %w", err)
			}
			shared, err := changedParams(cmd, pollingParamFlags)
			if err != nil {
				return err
			}
			name, err := taskNode(kind, poll, shared)
			if err != nil {
				return err
			}
			items := make([]core.Input, 0, len(args))
			for _, id := range args {
				item := core.CloneInput(shared)
				item["taskId"] = id
				items = append(items, item)
			}
			return runNode(cmd, name, items)
		},
	}
	cmd.Flags().String("kind", kindImage, "Task kind: image or video")
	cmd.Flags().Bool("poll", false, "Poll until the task settles instead of querying once")
	addPollingFlags(cmd.Flags())
	return cmd
}

// taskNode picks the node for kind and records the polling choice in shared.
func taskNode(kind string, poll bool, shared core.Input) (node.Name, error) {
	switch kind {
	case kindImage:
		shared["waitForResult"] = poll
		return node.GetTaskResult, nil
	case kindVideo:
		shared["pollingMode"] = node.PollingModeSingle
		if poll {
			shared["pollingMode"] = node.PollingModePolling
		}
		return node.GetVideoTaskResult, nil
	default:
		return "", fmt.Errorf("unknown task kind %q: expected %s or %s", kind, kindImage, kindVideo)
	}
}

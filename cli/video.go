package cli

import (
	"fmt"
	"strings"

	"github.com/compozy/dashscope/engine/node"
	"github.com/spf13/cobra"
)

var videoParamFlags = append([]paramFlag{
	{flag: "model", param: "model"},
	{flag: "negative-prompt", param: "negativePrompt"},
	{flag: "size", param: "size"},
	{flag: "prompt-extend", param: "promptExtend"},
	{flag: "seed", param: "seed"},
	{flag: "duration", param: "duration"},
	{flag: "wait", param: "waitForResult"},
}, pollingParamFlags...)

// VideoCmd submits one text-to-video task per prompt.
func VideoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video [prompt...]",
		Short: "Generate videos from text prompts",
		Long: "Submits one asynchronous text-to-video task per prompt and, unless " +
			"--wait=false, polls each task until it settles.",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompts, err := promptsFromArgs(cmd, args)
			if err != nil {
				return err
			}
			shared, err := changedParams(cmd, videoParamFlags)
			if err != nil {
				return err
			}
			return runNode(cmd, node.TextToVideo, promptItems(shared, prompts))
		},
	}
	flags := cmd.Flags()
	flags.String("prompt", "", "Prompt text; positional arguments add more prompts")
	flags.String("model", node.DefaultVideoModel,
		fmt.Sprintf("Video model (%s)", strings.Join(node.VideoModels, ", ")))
	flags.String("negative-prompt", "", "What the video should avoid")
	flags.String("size", "1280*720", "Output size as width*height")
	flags.Bool("prompt-extend", true, "Let the service rewrite the prompt")
	flags.Int64("seed", 0, "Random seed")
	flags.Int("duration", 0, "Video length in seconds (model default when unset)")
	flags.Bool("wait", true, "Poll until the task settles")
	addPollingFlags(flags)
	return cmd
}

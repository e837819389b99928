package cli

import (
	"fmt"
	"strings"

	"github.com/compozy/dashscope/engine/node"
	"github.com/spf13/cobra"
)

var imageParamFlags = append([]paramFlag{
	{flag: "model", param: "model"},
	{flag: "negative-prompt", param: "negativePrompt"},
	{flag: "size", param: "size"},
	{flag: "n", param: "n"},
	{flag: "seed", param: "seed"},
	{flag: "async", param: "async"},
	{flag: "wait", param: "waitForResult"},
}, pollingParamFlags...)

// ImageCmd submits one text-to-image task per prompt.
func ImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image [prompt...]",
		Short: "Generate images from text prompts",
		Long: "Submits one text-to-image task per prompt and, unless --wait=false, " +
			"polls each task until it settles.",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompts, err := promptsFromArgs(cmd, args)
			if err != nil {
				return err
			}
			shared, err := changedParams(cmd, imageParamFlags)
			if err != nil {
				return err
			}
			return runNode(cmd, node.TextToImage, promptItems(shared, prompts))
		},
	}
	flags := cmd.Flags()
	flags.String("prompt", "", "Prompt text; positional arguments add more prompts")
	flags.String("model", node.DefaultImageModel,
		fmt.Sprintf("Image model (%s)", strings.Join(node.ImageModels, ", ")))
	flags.String("negative-prompt", "", "What the image should avoid")
	flags.String("size", "1024*1024", "Output size as width*height")
	flags.Int("n", 1, "Number of images per prompt (1-4)")
	flags.Int64("seed", 0, "Random seed")
	flags.Bool("async", true, "Submit in asynchronous mode")
	flags.Bool("wait", true, "Poll until the task settles")
	addPollingFlags(flags)
	return cmd
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/engine/node"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// RunCmd executes any node over a file of items.
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a node over a list of items",
		Long: "Reads a JSON or YAML list of parameter objects and executes the node " +
			"once per item. Use --items - to read from stdin.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := cmd.Flags().GetString("node")
			if err != nil {
				return fmt.Errorf("failed to get node flag: %w", err)
			}
			path, err := cmd.Flags().GetString("items")
			if err != nil {
				return fmt.Errorf("failed to get items flag: %w", err)
			}
			items, err := readItems(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			return runNode(cmd, node.Name(name), items)
		},
	}
	cmd.Flags().String("node", "", "Node to run: "+strings.Join(nodeNames(), ", "))
	cmd.Flags().String("items", "", "Path to a JSON or YAML list of items, or - for stdin")
	_ = cmd.MarkFlagRequired("node")
	_ = cmd.MarkFlagRequired("items")
	return cmd
}

func nodeNames() []string {
	return []string{
		string(node.TextToImage),
		string(node.TextToVideo),
		string(node.GetTaskResult),
		string(node.GetVideoTaskResult),
	}
}

// readItems decodes a list of items. JSON is accepted since it is valid YAML.
func readItems(stdin io.Reader, path string) ([]core.Input, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse items: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("items file %s contains no items", path)
	}
	items := make([]core.Input, len(raw))
	for i, m := range raw {
		if m == nil {
			return nil, fmt.Errorf("item %d is empty", i)
		}
		items[i] = core.Input(m)
	}
	return items, nil
}

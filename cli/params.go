package cli

import (
	"fmt"
	"time"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/engine/node"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// paramFlag binds a command flag to a node parameter. Only flags the user set
// become parameters, so node defaults apply otherwise.
type paramFlag struct {
	flag  string
	param string
}

var pollingParamFlags = []paramFlag{
	{flag: "polling-interval", param: "pollingInterval"},
	{flag: "max-polling-attempts", param: "maxPollingAttempts"},
	{flag: "max-wait-time", param: "maxWaitTime"},
}

func addPollingFlags(flags *pflag.FlagSet) {
	flags.Duration("polling-interval", 0, "Delay between status queries (node default when unset)")
	flags.Int("max-polling-attempts", 0, "Maximum status queries (node default when unset)")
	flags.Duration("max-wait-time", 0, "Wall-clock ceiling that replaces the attempt ceiling")
}

// changedParams converts the set flags of bindings into node parameters.
// Durations become the units the nodes expect: milliseconds for the polling
// interval and seconds for the wait ceiling.
func changedParams(cmd *cobra.Command, bindings []paramFlag) (core.Input, error) {
	params := core.Input{}
	for _, b := range bindings {
		f := cmd.Flags().Lookup(b.flag)
		if f == nil || !f.Changed {
			continue
		}
		switch f.Value.Type() {
		case "duration":
			d, err := cmd.Flags().GetDuration(b.flag)
			if err != nil {
				return nil, fmt.Errorf("failed to get %s flag: %w", b.flag, err)
			}
			if b.param == "maxWaitTime" {
				params[b.param] = node.WaitSeconds(d)
			} else {
				params[b.param] = int(d / time.Millisecond)
			}
		case "int":
			v, err := cmd.Flags().GetInt(b.flag)
			if err != nil {
				return nil, fmt.Errorf("failed to get %s flag: %w", b.flag, err)
			}
			params[b.param] = v
		case "int64":
			v, err := cmd.Flags().GetInt64(b.flag)
			if err != nil {
				return nil, fmt.Errorf("failed to get %s flag: %w", b.flag, err)
			}
			params[b.param] = v
		case "bool":
			v, err := cmd.Flags().GetBool(b.flag)
			if err != nil {
				return nil, fmt.Errorf("failed to get %s flag: %w", b.flag, err)
			}
			params[b.param] = v
		default:
			params[b.param] = f.Value.String()
		}
	}
	return params, nil
}

// promptItems builds one item per prompt on top of the shared parameters.
func promptItems(shared core.Input, prompts []string) []core.Input {
	items := make([]core.Input, 0, len(prompts))
	for _, prompt := range prompts {
		item := core.CloneInput(shared)
		item["prompt"] = prompt
		items = append(items, item)
	}
	return items
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/compozy/dashscope/engine/core"
	"github.com/mattn/go-isatty"
	"github.com/tidwall/pretty"
)

// isRunningInCI checks if we're running in a CI/CD environment
func isRunningInCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE", "JENKINS_URL"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// useColor reports whether out is an interactive terminal that accepts
// ANSI colour.
func useColor(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || isRunningInCI() {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeRecords prints records as one JSON array.
func writeRecords(out io.Writer, records []core.Output) error {
	if records == nil {
		records = []core.Output{}
	}
	return writeJSON(out, records)
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = pretty.Pretty(data)
	if useColor(out) {
		data = pretty.Color(data, pretty.TerminalStyle)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

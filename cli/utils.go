package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// loadEnvFile loads the env file named by --env-file. A missing file is not
// an error; variables already set in the process are never overridden.
func loadEnvFile(cmd *cobra.Command) (string, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return "", fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if envFile == "" {
		return "", nil
	}
	absPath, err := filepath.Abs(envFile)
	if err != nil {
		return "", fmt.Errorf("failed to resolve env file path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat env file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("env file path '%s' is not a regular file", envFile)
	}
	if err := godotenv.Load(absPath); err != nil {
		return "", fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return absPath, nil
}

// promptsFromArgs joins the --prompt flag and positional arguments into the
// list of prompts to submit, one item each.
func promptsFromArgs(cmd *cobra.Command, args []string) ([]string, error) {
	var prompts []string
	if flag, err := cmd.Flags().GetString("prompt"); err == nil && strings.TrimSpace(flag) != "" {
		prompts = append(prompts, flag)
	}
	for _, arg := range args {
		if strings.TrimSpace(arg) != "" {
			prompts = append(prompts, arg)
		}
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("at least one prompt is required (argument or --prompt)")
	}
	return prompts, nil
}

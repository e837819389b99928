package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/compozy/dashscope/pkg/config/definition"
	"gopkg.in/yaml.v3"
)

// envProvider marks where environment variables apply in the source order.
// The loader reads the variables through koanf's env provider when it reaches
// this marker, so Load returns nothing.
type envProvider struct{}

func NewEnvProvider() Source {
	return envProvider{}
}

func (envProvider) Load() (map[string]any, error) {
	return map[string]any{}, nil
}

func (envProvider) Type() SourceType {
	return SourceEnv
}

// cliProvider maps explicitly set CLI flags onto config paths.
type cliProvider struct {
	flags map[string]any
}

// NewCLIProvider takes flag names as keys; flags unknown to the registry are
// ignored.
func NewCLIProvider(flags map[string]any) Source {
	return &cliProvider{flags: flags}
}

func (c *cliProvider) Load() (map[string]any, error) {
	config := make(map[string]any)
	if c.flags == nil {
		return config, nil
	}
	flagToPath := definition.CreateRegistry().GetCLIFlagMapping()
	for key, value := range c.flags {
		if path, ok := flagToPath[key]; ok {
			if err := setNested(config, path, value); err != nil {
				return nil, fmt.Errorf("failed to set CLI flag %s: %w", key, err)
			}
		}
	}
	return config, nil
}

func (c *cliProvider) Type() SourceType {
	return SourceCLI
}

// setNested sets a value in a nested map structure using dot notation.
func setNested(m map[string]any, path string, value any) error {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	current := m
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if _, exists := current[part]; !exists {
			current[part] = make(map[string]any)
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return fmt.Errorf("configuration conflict: key %q is not a map", strings.Join(parts[:i+1], "."))
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
	return nil
}

type yamlProvider struct {
	path string
}

// NewYAMLProvider reads a YAML file; a missing file yields no values.
func NewYAMLProvider(path string) Source {
	return &yamlProvider{path: path}
}

func (y *yamlProvider) Load() (map[string]any, error) {
	data, err := os.ReadFile(y.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file: %w", err)
	}
	return filterNilValues(config), nil
}

// filterNilValues drops nil leaves so they cannot erase lower layers.
func filterNilValues(m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		if v == nil {
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			if filtered := filterNilValues(nested); len(filtered) > 0 {
				result[k] = filtered
			}
			continue
		}
		result[k] = v
	}
	return result
}

func (y *yamlProvider) Type() SourceType {
	return SourceYAML
}

// defaultProvider marks the defaults layer in a source list. The loader
// always applies registry defaults first and skips this marker, so its Load
// is never called and returns nothing.
type defaultProvider struct{}

func NewDefaultProvider() Source {
	return defaultProvider{}
}

func (defaultProvider) Load() (map[string]any, error) {
	return map[string]any{}, nil
}

func (defaultProvider) Type() SourceType {
	return SourceDefault
}

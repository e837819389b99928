package definition

import (
	"maps"
	"reflect"
	"slices"
)

// FieldDef describes one configuration key and every way it can be set.
type FieldDef struct {
	Path    string       // Config path like "polling.video_interval"
	Default any          // Default value
	CLIFlag string       // CLI flag name like "max-wait"
	EnvVar  string       // Environment variable name like "DASHSCOPE_MAX_WAIT"
	Type    reflect.Type // Field type for validation
	Help    string       // Help text for CLI
}

// Registry holds all configuration field definitions
type Registry struct {
	fields map[string]FieldDef
}

func NewRegistry() *Registry {
	return &Registry{
		fields: make(map[string]FieldDef),
	}
}

func (r *Registry) Register(field *FieldDef) {
	r.fields[field.Path] = *field
}

// GetField returns a field definition by path
func (r *Registry) GetField(path string) (FieldDef, bool) {
	field, exists := r.fields[path]
	return field, exists
}

// GetDefault returns the default value for a field path
func (r *Registry) GetDefault(path string) any {
	if field, exists := r.fields[path]; exists {
		return field.Default
	}
	return nil
}

// Paths returns every registered path in sorted order.
func (r *Registry) Paths() []string {
	return slices.Sorted(maps.Keys(r.fields))
}

// GetCLIFlagMapping returns a map of CLI flag names to config paths
func (r *Registry) GetCLIFlagMapping() map[string]string {
	mapping := make(map[string]string)
	for path, field := range r.fields {
		if field.CLIFlag != "" {
			mapping[field.CLIFlag] = path
		}
	}
	return mapping
}

// GetEnvMapping returns a map of environment variable names to config paths
func (r *Registry) GetEnvMapping() map[string]string {
	mapping := make(map[string]string)
	for path, field := range r.fields {
		if field.EnvVar != "" {
			mapping[field.EnvVar] = path
		}
	}
	return mapping
}

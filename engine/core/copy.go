package core

import (
	"maps"

	"github.com/mohae/deepcopy"
)

// CopyMaps merges the given maps left to right into a fresh map.
// Later maps win on key collisions.
func CopyMaps(ms ...map[string]any) map[string]any {
	size := 0
	for _, m := range ms {
		size += len(m)
	}
	out := make(map[string]any, size)
	for _, m := range ms {
		maps.Copy(out, m)
	}
	return out
}

// CloneInput deep-copies an item so defaults can be applied without touching
// the caller's value.
func CloneInput(in Input) Input {
	if in == nil {
		return Input{}
	}
	copied, ok := deepcopy.Copy(map[string]any(in)).(map[string]any)
	if !ok {
		return Input{}
	}
	return Input(copied)
}

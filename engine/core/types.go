package core

// Input is one item handed to a node: parameter names mapped to values.
type Input map[string]any

// Output is the record a node produces for one item.
type Output map[string]any

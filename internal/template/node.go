package template

import "gopkg.in/yaml.v3"

// MapGet returns the value node stored under key, or nil when n is not a
// mapping or the key is absent.
func MapGet(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// Lookup descends through nested mappings, returning nil at the first missing
// step.
func Lookup(n *yaml.Node, path ...string) *yaml.Node {
	cur := n
	for _, key := range path {
		cur = MapGet(cur, key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// MapSet replaces the value stored under key, appending the pair when absent.
func MapSet(n *yaml.Node, key string, value *yaml.Node) {
	if n == nil || n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content[i+1] = value
			return
		}
	}
	n.Content = append(n.Content, StringNode(key), value)
}

// MapDelete removes key and its value, reporting whether the key was present.
func MapDelete(n *yaml.Node, key string) bool {
	if n == nil || n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content = append(n.Content[:i], n.Content[i+2:]...)
			return true
		}
	}
	return false
}

// ScalarValue returns the text of a scalar node, or "" for nil or non-scalar
// nodes.
func ScalarValue(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

// SetString rewrites a node in place to a plain string scalar.
func SetString(n *yaml.Node, value string) {
	if n == nil {
		return
	}
	n.Kind = yaml.ScalarNode
	n.Tag = "!!str"
	n.Value = value
	n.Style = 0
	n.Content = nil
}

// StringNode builds a plain string scalar.
func StringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// NewMapping builds an empty block-style mapping.
func NewMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// CloneNode deep-copies a node so the copy shares nothing with the original.
func CloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Anchor = ""
	out.Alias = nil
	if len(n.Content) > 0 {
		out.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = CloneNode(c)
		}
	}
	return &out
}

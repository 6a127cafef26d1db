// Package rewrite substitutes template parameter references inside a document
// tree with Helm value references.
//
// A reference is $NAME, ${NAME} or ${{NAME}}, where NAME is one or more
// uppercase letters or underscores. Every string scalar is scanned and each
// reference becomes {{ .Values.<camelCaseName> }}, with the camelCase name
// taken from the variable registry. Mapping keys and non-string scalars are
// never touched.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ascheman/oc-templates2helm/internal/vars"
)

// refPattern captures a reference as a triple: leading braces, name, trailing
// braces. The trailing group is greedy, so braces that belong to surrounding
// text (a reference at the end of inline JSON, say) show up as surplus and are
// put back during substitution.
var refPattern = regexp.MustCompile(`\$(\{*)([A-Z_]+)(\}*)`)

// MatchError reports a malformed variable reference: more opening braces than
// closing ones, as in "${DB_HOST". It aborts the conversion of the file it
// was found in.
type MatchError struct {
	Text     string
	Ref      string
	Leading  int
	Trailing int
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("unbalanced variable reference %q (%d opening braces, %d closing) in %q", e.Ref, e.Leading, e.Trailing, e.Text)
}

// Engine rewrites references against a single registry.
type Engine struct {
	Vars *vars.Registry
}

// Objects rewrites every object subtree in order, stopping at the first
// malformed reference.
func (e *Engine) Objects(objects []*yaml.Node) error {
	for _, obj := range objects {
		if err := e.Node(obj); err != nil {
			return err
		}
	}
	return nil
}

// Node rewrites one subtree in place.
func (e *Engine) Node(n *yaml.Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag != "!!str" {
			return nil
		}
		out, err := e.String(n.Value)
		if err != nil {
			return err
		}
		n.Value = out
		return nil
	case yaml.MappingNode:
		// values only, keys stay as written
		for i := 1; i < len(n.Content); i += 2 {
			if err := e.Node(n.Content[i]); err != nil {
				return err
			}
		}
		return nil
	case yaml.SequenceNode, yaml.DocumentNode:
		for _, c := range n.Content {
			if err := e.Node(c); err != nil {
				return err
			}
		}
		return nil
	default:
		// alias nodes are rewritten where their anchor is defined
		return nil
	}
}

// String rewrites every reference in s, resolving names left to right. A
// string without references is returned unchanged.
func (e *Engine) String(s string) (string, error) {
	matches := refPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return s, nil
	}
	for _, m := range matches {
		if len(m[1]) > len(m[3]) {
			return "", &MatchError{Text: s, Ref: m[0], Leading: len(m[1]), Trailing: len(m[3])}
		}
	}
	out := refPattern.ReplaceAllStringFunc(s, func(ref string) string {
		m := refPattern.FindStringSubmatch(ref)
		leading, name, trailing := m[1], m[2], m[3]
		repl := e.Vars.EnsureReplacementName(name)
		// closing braces beyond the opening count belong to the text
		return "{{ .Values." + repl + " }}" + strings.Repeat("}", len(trailing)-len(leading))
	})
	return out, nil
}

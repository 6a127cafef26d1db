// Package template loads OpenShift Template documents into an order-preserving
// YAML node tree and validates their shape. The tree (gopkg.in/yaml.v3 nodes)
// is what the rest of the pipeline mutates, so key order, comments, and scalar
// types survive from input to emitted chart.
package template

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// RootKind is the only document kind the converter accepts.
const RootKind = "Template"

// Document is a parsed template file.
type Document struct {
	File       string
	Name       string // metadata.name, may be empty
	Root       *yaml.Node
	Parameters []Parameter
	Objects    []*yaml.Node // mapping nodes, input order
	Labels     *yaml.Node   // root labels mapping, nil when absent
}

// Parameter mirrors one entry of the template's parameters list. Value is nil
// when the key is absent, which is distinct from an explicit empty string.
type Parameter struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Value       *string `yaml:"value"`
	Generate    string  `yaml:"generate"`
	From        string  `yaml:"from"`
}

// ParseError reports input that is not a parseable YAML/JSON document.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: cannot parse template: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidDocumentError reports a parseable document that is not a convertible
// template. Kind holds whatever kind the document declared.
type InvalidDocumentError struct {
	File   string
	Kind   string
	Reason string
}

func (e *InvalidDocumentError) Error() string {
	if e.Kind != RootKind {
		return fmt.Sprintf("%s: kind %q: %s", e.File, e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}

// Load reads and parses the template at path.
func Load(path string, logger *slog.Logger) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b, path, logger)
}

// Parse decodes data and validates that it is a Template with at least one
// object. Parameters without a name are skipped with a warning; the document
// itself stays valid.
func Parse(data []byte, file string, logger *slog.Logger) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{File: file, Err: err}
	}
	body := documentBody(&root)
	if body == nil || body.Kind != yaml.MappingNode {
		return nil, &ParseError{File: file, Err: fmt.Errorf("document root is not a mapping")}
	}

	kind := ScalarValue(MapGet(body, "kind"))
	if kind != RootKind {
		return nil, &InvalidDocumentError{File: file, Kind: kind, Reason: fmt.Sprintf("only %q documents can be converted", RootKind)}
	}
	objects := MapGet(body, "objects")
	if objects == nil || objects.Kind != yaml.SequenceNode || len(objects.Content) == 0 {
		return nil, &InvalidDocumentError{File: file, Kind: kind, Reason: "template declares no objects"}
	}

	doc := &Document{
		File:    file,
		Name:    ScalarValue(Lookup(body, "metadata", "name")),
		Root:    &root,
		Objects: objects.Content,
		Labels:  MapGet(body, "labels"),
	}
	if params := MapGet(body, "parameters"); params != nil {
		var list []Parameter
		if err := params.Decode(&list); err != nil {
			return nil, &ParseError{File: file, Err: fmt.Errorf("parameters: %w", err)}
		}
		for i, p := range list {
			if p.Name == "" {
				logger.Warn("parameter without a name skipped", "input", file, "index", i)
				continue
			}
			doc.Parameters = append(doc.Parameters, p)
		}
	}
	return doc, nil
}

// Encode renders a node as block-style YAML indented by two spaces. Flow
// styles picked up from the input are cleared in place so output is uniform.
func Encode(n *yaml.Node) ([]byte, error) {
	clearFlow(n)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func documentBody(root *yaml.Node) *yaml.Node {
	if root == nil {
		return nil
	}
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil
		}
		return root.Content[0]
	}
	if root.Kind == 0 {
		return nil
	}
	return root
}

func clearFlow(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style = 0
	}
	for _, c := range n.Content {
		clearFlow(c)
	}
}

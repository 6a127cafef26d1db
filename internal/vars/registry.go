// Package vars tracks the variables of a single template conversion: the
// declared parameters, values merged in from override files, and the
// camelCase names they get in the emitted values.yaml.
package vars

import (
	"log/slog"
	"sort"
	"strings"
)

// Variable is one tracked template parameter.
type Variable struct {
	Name        string // declared name, uppercase-with-underscores convention
	Description string
	Value       string
	HasValue    bool   // distinguishes an unset value from an explicit empty one
	Replacement string // camelCase values key, empty until first referenced
}

// Registry holds the variables of one conversion, keyed by declared name.
// Lookups return copies; every mutation goes through a registry method so no
// caller can change an entry behind the registry's back.
type Registry struct {
	vars map[string]*Variable
	log  *slog.Logger
}

// New returns an empty registry logging through logger.
func New(logger *slog.Logger) *Registry {
	return &Registry{vars: map[string]*Variable{}, log: logger}
}

// Declare inserts a variable, overwriting any earlier declaration of the same
// name. A nil value means the parameter carries no default.
func (r *Registry) Declare(name, description string, value *string) {
	v := &Variable{Name: name, Description: description}
	if value != nil {
		v.Value = *value
		v.HasValue = true
	}
	r.vars[name] = v
}

// Resolve returns the variable for name. An undeclared name is created on the
// spot without a value and logged, so a reference in the objects never fails
// outright.
func (r *Registry) Resolve(name string) Variable {
	return *r.resolve(name)
}

// EnsureReplacementName returns the camelCase values key for name, deriving
// and storing it on first use. Repeated calls are stable.
func (r *Registry) EnsureReplacementName(name string) string {
	v := r.resolve(name)
	if v.Replacement == "" {
		v.Replacement = camelCase(v.Name)
	}
	return v.Replacement
}

// ApplyOverrides merges override values into declared variables. A variable
// that already carries a value keeps it and the override is dropped with a
// warning; keys matching no declared variable are ignored.
func (r *Registry) ApplyOverrides(values map[string]string) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, ok := r.vars[name]
		if !ok {
			continue
		}
		if v.HasValue {
			r.log.Warn("override ignored, variable already has a value", "name", name)
			continue
		}
		v.Value = values[name]
		v.HasValue = true
	}
}

// Names returns the declared names sorted lexicographically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.vars))
	for name := range r.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns copies of every variable, sorted by declared name.
func (r *Registry) All() []Variable {
	names := r.Names()
	out := make([]Variable, 0, len(names))
	for _, name := range names {
		out = append(out, *r.vars[name])
	}
	return out
}

// Len reports how many variables the registry tracks.
func (r *Registry) Len() int { return len(r.vars) }

func (r *Registry) resolve(name string) *Variable {
	if v, ok := r.vars[name]; ok {
		return v
	}
	r.log.Warn("variable not declared as a parameter, created without a value", "name", name)
	v := &Variable{Name: name}
	r.vars[name] = v
	return v
}

// camelCase turns DB_HOST into dbHost: lowercase everything, then drop each
// underscore that precedes an alphanumeric and uppercase that character.
func camelCase(name string) string {
	lower := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c == '_' && i+1 < len(lower) && isAlnum(lower[i+1]) {
			i++
			next := lower[i]
			if next >= 'a' && next <= 'z' {
				next -= 'a' - 'A'
			}
			b.WriteByte(next)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

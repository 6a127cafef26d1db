// Package chart writes the converted Helm chart: Chart.yaml built on the Helm
// metadata type, a values.yaml fed from the variable registry, an override
// template for variables without defaults, and one templates/ file per object
// kind. Every emitted file starts with a provenance header carrying the
// generation timestamp, so the clock is injectable for byte-stable output.
package chart

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
	helmchart "helm.sh/helm/v3/pkg/chart"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/ascheman/oc-templates2helm/internal/template"
	"github.com/ascheman/oc-templates2helm/internal/vars"
)

const (
	// DefaultVersion is the placeholder chart version.
	DefaultVersion = "0.1.0"
	// DefaultAppVersion is the placeholder application version.
	DefaultAppVersion = "1.0"

	defaultIcon = "https://helm.sh/img/helm.svg"
	sourceURL   = "https://github.com/ascheman/oc-templates2helm"
)

// Emitted file names.
const (
	ManifestFile  = "Chart.yaml"
	ValuesFile    = "values.yaml"
	OverridesFile = "values-overrides.yaml"
	TemplatesDir  = "templates"
)

// Emitter writes one chart from one converted template.
type Emitter struct {
	Vars *vars.Registry
	Log  *slog.Logger
	Now  func() time.Time // nil means time.Now

	Version    string // chart version, DefaultVersion when empty
	AppVersion string // appVersion, DefaultAppVersion when empty
}

// WriteChart writes the complete chart under outputDir/chartName and returns
// the chart directory plus every file written. Directory creation is
// idempotent and existing files are overwritten.
func (e *Emitter) WriteChart(outputDir, chartName string, objects []*yaml.Node) (string, []string, error) {
	dir := filepath.Join(outputDir, chartName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, err
	}
	var files []string
	manifest, err := e.WriteManifest(dir, chartName)
	if err != nil {
		return "", nil, err
	}
	files = append(files, manifest)
	values, err := e.WriteValues(dir)
	if err != nil {
		return "", nil, err
	}
	files = append(files, values...)
	templates, err := e.WriteTemplates(dir, objects)
	if err != nil {
		return "", nil, err
	}
	files = append(files, templates...)
	return dir, files, nil
}

// WriteManifest writes Chart.yaml. The manifest is assembled on the Helm
// metadata type and validated before anything is written.
func (e *Emitter) WriteManifest(dir, chartName string) (string, error) {
	version := e.version()
	if _, err := semver.NewVersion(version); err != nil {
		return "", fmt.Errorf("chart version %q: %w", version, err)
	}
	md := &helmchart.Metadata{
		APIVersion:  helmchart.APIVersionV2,
		Name:        chartName,
		Description: fmt.Sprintf("Helm chart generated from the %s OpenShift template", chartName),
		Type:        "application",
		Version:     version,
		AppVersion:  e.appVersion(),
		Icon:        defaultIcon,
	}
	if err := md.Validate(); err != nil {
		return "", fmt.Errorf("chart metadata: %w", err)
	}
	body, err := sigsyaml.Marshal(md)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ManifestFile)
	if err := e.writeFile(dir, path, e.header(false)+string(body)); err != nil {
		return "", err
	}
	return path, nil
}

// WriteValues writes values.yaml, and values-overrides.yaml when at least one
// referenced variable has no usable default. Entries are sorted by declared
// variable name; a variable that was declared but never referenced becomes a
// comment instead of a value line.
func (e *Emitter) WriteValues(dir string) ([]string, error) {
	var values, overrides strings.Builder
	values.WriteString(e.header(false))
	unset := 0
	for _, v := range e.Vars.All() {
		if v.Replacement == "" {
			fmt.Fprintf(&values, "# %s is declared in the template but never referenced\n", v.Name)
			continue
		}
		desc := strings.ReplaceAll(v.Description, "\n", " ")
		if desc != "" {
			fmt.Fprintf(&values, "# %s\n", desc)
		}
		if !v.HasValue {
			fmt.Fprintf(&values, "%s: # no default, provide a value\n", v.Replacement)
			if desc != "" {
				fmt.Fprintf(&overrides, "# %s\n", desc)
			}
			fmt.Fprintf(&overrides, "%s: # fill in for the target environment\n", v.Replacement)
			unset++
			continue
		}
		entry, err := marshalEntry(v.Replacement, v.Value)
		if err != nil {
			return nil, fmt.Errorf("value %s: %w", v.Name, err)
		}
		values.WriteString(entry)
	}

	valuesPath := filepath.Join(dir, ValuesFile)
	if err := e.writeFile(dir, valuesPath, values.String()); err != nil {
		return nil, err
	}
	paths := []string{valuesPath}
	if unset > 0 {
		overridesPath := filepath.Join(dir, OverridesFile)
		if err := e.writeFile(dir, overridesPath, e.header(true)+overrides.String()); err != nil {
			return nil, err
		}
		paths = append(paths, overridesPath)
	}
	return paths, nil
}

// WriteTemplates groups objects by kind in first-seen order and writes one
// templates/ file per kind, documents separated by "---". Objects without a
// kind are skipped with a warning.
func (e *Emitter) WriteTemplates(dir string, objects []*yaml.Node) ([]string, error) {
	tplDir := filepath.Join(dir, TemplatesDir)
	if err := os.MkdirAll(tplDir, 0o755); err != nil {
		return nil, err
	}
	var kinds []string
	grouped := map[string][]*yaml.Node{}
	for _, obj := range objects {
		kind := strings.TrimSpace(template.ScalarValue(template.MapGet(obj, "kind")))
		if kind == "" {
			e.Log.Warn("object without a kind skipped",
				"name", template.ScalarValue(template.Lookup(obj, "metadata", "name")))
			continue
		}
		if _, ok := grouped[kind]; !ok {
			kinds = append(kinds, kind)
		}
		grouped[kind] = append(grouped[kind], obj)
	}

	var paths []string
	for _, kind := range kinds {
		var body strings.Builder
		body.WriteString(e.header(false))
		for i, obj := range grouped[kind] {
			if i > 0 {
				body.WriteString("---\n")
			}
			b, err := template.Encode(obj)
			if err != nil {
				return nil, fmt.Errorf("encode %s object: %w", kind, err)
			}
			body.Write(b)
		}
		path := filepath.Join(tplDir, fileForKind(kind))
		if err := e.writeFile(dir, path, body.String()); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// NameForFile derives the chart name from an input path: the base name
// without extension, folded to the [a-z0-9-] Helm chart-name alphabet.
func NameForFile(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return sanitize(base, "chart")
}

func (e *Emitter) version() string {
	if e.Version == "" {
		return DefaultVersion
	}
	return e.Version
}

func (e *Emitter) appVersion() string {
	if e.AppVersion == "" {
		return DefaultAppVersion
	}
	return e.AppVersion
}

func (e *Emitter) header(overrideTemplate bool) string {
	notice := "edit with care."
	if overrideTemplate {
		notice = "DO NOT EDIT in place. Copy per environment and fill in the values."
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return fmt.Sprintf("# Generated by oc-templates2helm, %s\n# Generated: %s\n# Source: %s\n\n",
		notice, now().UTC().Format(time.RFC3339), sourceURL)
}

// writeFile refuses to write outside the chart directory.
func (e *Emitter) writeFile(root, path, content string) error {
	absRoot, _ := filepath.Abs(root)
	absPath, _ := filepath.Abs(path)
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return errors.New("refusing to write outside the chart directory")
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func marshalEntry(key, value string) (string, error) {
	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]string{key: value}); err != nil {
		enc.Close()
		return "", err
	}
	_ = enc.Close()
	return buf.String(), nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9-]`)

func fileForKind(kind string) string {
	return sanitize(kind, "object") + ".yaml"
}

func sanitize(s, fallback string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = nonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = fallback
	}
	return s
}

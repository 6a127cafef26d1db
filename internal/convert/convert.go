// Package convert runs the per-file conversion pipeline: load and validate
// the template, collect its parameters, merge override files, normalize
// legacy kinds, substitute variable references, and emit the chart. Each call
// is fully synchronous and independent of every other input file.
package convert

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ascheman/oc-templates2helm/internal/chart"
	"github.com/ascheman/oc-templates2helm/internal/normalize"
	"github.com/ascheman/oc-templates2helm/internal/props"
	"github.com/ascheman/oc-templates2helm/internal/rewrite"
	"github.com/ascheman/oc-templates2helm/internal/template"
	"github.com/ascheman/oc-templates2helm/internal/vars"
)

// Options configure a conversion.
type Options struct {
	OutputDir    string
	ChartVersion string
	AppVersion   string
	Logger       *slog.Logger     // nil means slog.Default
	Now          func() time.Time // nil means time.Now, injectable for stable output
}

// Result describes one written chart.
type Result struct {
	Chart string   // chart name
	Dir   string   // chart directory
	Files []string // every file written, manifest first
}

// File converts one template into a chart directory. Failures abort this file
// only; the caller decides what happens to any remaining inputs.
func File(path string, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run.id", shortID(), "input", path)

	doc, err := template.Load(path, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("template loaded",
		"template", doc.Name, "parameters", len(doc.Parameters), "objects", len(doc.Objects))

	registry := vars.New(logger)
	for _, p := range doc.Parameters {
		value := p.Value
		if value == nil && p.Generate != "" {
			logger.Warn("generator expression not evaluated, parameter treated as unset",
				"name", p.Name, "generate", p.Generate)
		}
		registry.Declare(p.Name, p.Description, value)
	}
	for _, overridePath := range props.ForTemplate(path) {
		values, err := props.Load(overridePath)
		if err != nil {
			return nil, err
		}
		if values == nil {
			continue
		}
		logger.Debug("override file applied", "file", overridePath, "keys", len(values))
		registry.ApplyOverrides(values)
	}

	normalize.PropagateLabels(doc.Labels, doc.Objects)
	normalize.Objects(doc.Objects)

	engine := rewrite.Engine{Vars: registry}
	if err := engine.Objects(doc.Objects); err != nil {
		return nil, err
	}

	name := chart.NameForFile(path)
	emitter := chart.Emitter{
		Vars:       registry,
		Log:        logger,
		Now:        opts.Now,
		Version:    opts.ChartVersion,
		AppVersion: opts.AppVersion,
	}
	dir, files, err := emitter.WriteChart(opts.OutputDir, name, doc.Objects)
	if err != nil {
		return nil, err
	}
	logger.Info("chart written", "chart", name, "dir", dir, "files", len(files))
	return &Result{Chart: name, Dir: dir, Files: files}, nil
}

// shortID tags one conversion's log records.
func shortID() string {
	id := uuid.NewString()
	return id[:8]
}

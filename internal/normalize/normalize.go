// Package normalize rewrites OpenShift-specific object shapes into their
// upstream Kubernetes equivalents before variable substitution runs.
package normalize

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ascheman/oc-templates2helm/internal/template"
)

// Objects applies the kind rewrites to every object in order. Kinds without a
// documented rewrite pass through untouched.
func Objects(objects []*yaml.Node) {
	for _, obj := range objects {
		Object(obj)
	}
}

// Object rewrites a single object in place.
func Object(obj *yaml.Node) {
	kind := template.ScalarValue(template.MapGet(obj, "kind"))
	switch strings.TrimSpace(kind) {
	case "DeploymentConfig":
		deploymentConfig(obj)
	case "Route":
		route(obj)
	}
}

// PropagateLabels merges the template's root labels into each object's
// metadata.labels. Keys already present on an object win, and propagated
// values are copies so the object subtrees stay independent of each other.
func PropagateLabels(labels *yaml.Node, objects []*yaml.Node) {
	if labels == nil || labels.Kind != yaml.MappingNode || len(labels.Content) == 0 {
		return
	}
	for _, obj := range objects {
		if obj == nil || obj.Kind != yaml.MappingNode {
			continue
		}
		meta := template.MapGet(obj, "metadata")
		if meta == nil {
			meta = template.NewMapping()
			template.MapSet(obj, "metadata", meta)
		}
		target := template.MapGet(meta, "labels")
		if target == nil {
			target = template.NewMapping()
			template.MapSet(meta, "labels", target)
		}
		for i := 0; i+1 < len(labels.Content); i += 2 {
			key := labels.Content[i].Value
			if template.MapGet(target, key) != nil {
				continue
			}
			template.MapSet(target, key, template.CloneNode(labels.Content[i+1]))
		}
	}
}

// deploymentConfig turns a DeploymentConfig into an apps/v1 Deployment: kind
// and apiVersion are rewritten, a Rolling strategy becomes RollingUpdate with
// maxSurge/maxUnavailable moved out of rollingParams, and deployment triggers
// are dropped because Deployments have no equivalent.
func deploymentConfig(obj *yaml.Node) {
	setField(obj, "kind", "Deployment")
	setField(obj, "apiVersion", "apps/v1")
	template.MapDelete(obj, "triggers")

	spec := template.MapGet(obj, "spec")
	if spec == nil {
		return
	}
	template.MapDelete(spec, "triggers")

	strategy := template.MapGet(spec, "strategy")
	typ := template.MapGet(strategy, "type")
	if template.ScalarValue(typ) != "Rolling" {
		return
	}
	template.SetString(typ, "RollingUpdate")
	params := template.MapGet(strategy, "rollingParams")
	if params != nil {
		rolling := template.NewMapping()
		for i := 0; i+1 < len(params.Content); i += 2 {
			key := params.Content[i].Value
			if key == "maxSurge" || key == "maxUnavailable" {
				rolling.Content = append(rolling.Content, params.Content[i], params.Content[i+1])
			}
		}
		if len(rolling.Content) > 0 {
			template.MapSet(strategy, "rollingUpdate", rolling)
		}
		template.MapDelete(strategy, "rollingParams")
	}
}

func route(obj *yaml.Node) {
	setField(obj, "apiVersion", "route.openshift.io/v1")
}

func setField(obj *yaml.Node, key, value string) {
	if n := template.MapGet(obj, key); n != nil {
		template.SetString(n, value)
		return
	}
	template.MapSet(obj, key, template.StringNode(value))
}

// Package plugins exposes the compiled-in critique rules and reproducibility
// checks through a typed registry with stable ids.
package plugins

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/oluwafemidiakhoa/paperfig/internal/audits"
	"github.com/oluwafemidiakhoa/paperfig/internal/critique"
	"github.com/oluwafemidiakhoa/paperfig/internal/schemas"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
	embedded "github.com/oluwafemidiakhoa/paperfig/schemas"
)

// Version stamped onto every builtin descriptor
const builtinVersion = "1.0.0"

// UnknownPluginError reports an enabled-plugin id that matches no registered
// rule. Known short ids are enumerated to make the fix obvious.
type UnknownPluginError struct {
	PluginID string
	Kind     string
	KnownIDs []string
}

func (e *UnknownPluginError) Error() string {
	return fmt.Sprintf("unknown %s plugin %q (known: %s)", e.Kind, e.PluginID, strings.Join(e.KnownIDs, ", "))
}

// Registry is the immutable set of registered plugins, built once per process
type Registry struct {
	descriptors   []types.PluginDescriptor
	critiqueRules map[string]critique.Rule
	reproChecks   map[string]audits.Check
}

var (
	registryOnce sync.Once
	registry     *Registry
)

// Default returns the process-wide registry of compiled-in plugins
func Default() *Registry {
	registryOnce.Do(func() {
		registry = build()
	})
	return registry
}

func build() *Registry {
	r := &Registry{
		critiqueRules: make(map[string]critique.Rule),
		reproChecks:   make(map[string]audits.Check),
	}
	for _, rule := range critique.Table() {
		r.critiqueRules[rule.ID] = rule
		r.descriptors = append(r.descriptors, types.PluginDescriptor{
			PluginID:         qualifiedID(types.PluginKindCritiqueRule, rule.ID),
			Kind:             types.PluginKindCritiqueRule,
			Name:             rule.ID,
			Description:      rule.Description,
			Version:          builtinVersion,
			Entrypoint:       "builtin",
			EnabledByDefault: true,
			Tags:             []string{"builtin"},
		})
	}
	for _, check := range audits.Checks() {
		r.reproChecks[check.ID] = check
		tags := []string{"builtin"}
		if !check.Required {
			tags = append(tags, "optional")
		}
		r.descriptors = append(r.descriptors, types.PluginDescriptor{
			PluginID:         qualifiedID(types.PluginKindReproCheck, check.ID),
			Kind:             types.PluginKindReproCheck,
			Name:             check.ID,
			Description:      check.Description,
			Version:          builtinVersion,
			Entrypoint:       "builtin",
			EnabledByDefault: true,
			Tags:             tags,
		})
	}
	return r
}

func qualifiedID(kind, shortID string) string {
	return fmt.Sprintf("%s.%s", kind, shortID)
}

// List returns every registered plugin descriptor sorted by kind then id
func (r *Registry) List() []types.PluginDescriptor {
	out := make([]types.PluginDescriptor, len(r.descriptors))
	copy(out, r.descriptors)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].PluginID < out[j].PluginID
	})
	return out
}

// Validate checks every descriptor against the plugin schema and rejects
// duplicate plugin ids. It returns one message per violation.
func (r *Registry) Validate() []string {
	var problems []string
	seen := make(map[string]bool, len(r.descriptors))
	for _, desc := range r.descriptors {
		if seen[desc.PluginID] {
			problems = append(problems, fmt.Sprintf("duplicate plugin id %q", desc.PluginID))
		}
		seen[desc.PluginID] = true
		for _, msg := range schemas.ValidateValue(embedded.PluginDescriptor, desc) {
			problems = append(problems, fmt.Sprintf("%s: %s", desc.PluginID, msg))
		}
	}
	return problems
}

// ResolveCritiqueRules maps enabled plugin ids to critique rules. Ids may be
// fully qualified ("critique_rule.<id>") or short ("<id>"). A nil or empty
// list selects every registered rule. Resolved rules come back sorted by id.
func (r *Registry) ResolveCritiqueRules(enabled []string) ([]critique.Rule, error) {
	if len(enabled) == 0 {
		rules := make([]critique.Rule, 0, len(r.critiqueRules))
		for _, rule := range r.critiqueRules {
			rules = append(rules, rule)
		}
		sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
		return rules, nil
	}

	rules := make([]critique.Rule, 0, len(enabled))
	for _, id := range enabled {
		shortID := strings.TrimPrefix(id, types.PluginKindCritiqueRule+".")
		rule, ok := r.critiqueRules[shortID]
		if !ok {
			return nil, &UnknownPluginError{
				PluginID: id,
				Kind:     types.PluginKindCritiqueRule,
				KnownIDs: r.knownCritiqueRuleIDs(),
			}
		}
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules, nil
}

// ResolveReproChecks maps enabled plugin ids to reproducibility checks, with
// the same id forms and defaulting as ResolveCritiqueRules.
func (r *Registry) ResolveReproChecks(enabled []string) ([]audits.Check, error) {
	if len(enabled) == 0 {
		checks := make([]audits.Check, 0, len(r.reproChecks))
		for _, check := range r.reproChecks {
			checks = append(checks, check)
		}
		sort.Slice(checks, func(i, j int) bool { return checks[i].ID < checks[j].ID })
		return checks, nil
	}

	checks := make([]audits.Check, 0, len(enabled))
	for _, id := range enabled {
		shortID := strings.TrimPrefix(id, types.PluginKindReproCheck+".")
		check, ok := r.reproChecks[shortID]
		if !ok {
			return nil, &UnknownPluginError{
				PluginID: id,
				Kind:     types.PluginKindReproCheck,
				KnownIDs: r.knownReproCheckIDs(),
			}
		}
		checks = append(checks, check)
	}
	sort.Slice(checks, func(i, j int) bool { return checks[i].ID < checks[j].ID })
	return checks, nil
}

func (r *Registry) knownCritiqueRuleIDs() []string {
	ids := make([]string, 0, len(r.critiqueRules))
	for id := range r.critiqueRules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) knownReproCheckIDs() []string {
	ids := make([]string, 0, len(r.reproChecks))
	for id := range r.reproChecks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

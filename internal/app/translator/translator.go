// Package translator implements one strategy per management framework for
// turning a universal objective into the framework's vocabulary, progress
// semantics, validation rules, and fit scores, and back.
package translator

import (
	"reflect"
	"time"

	"goalbridge/internal/domain/framework"
)

// Translator is the capability set every framework strategy implements.
// All methods are pure with respect to their inputs.
type Translator interface {
	Kind() framework.Kind

	// TranslateCore maps universal fields onto framework field names. rule may be nil.
	TranslateCore(obj framework.UniversalObjective, rule *framework.MappingRule) framework.Fields
	// Terminology looks up role in the framework vocabulary, falling back to role.
	Terminology(role string) string
	TerminologyTable() map[string]string

	CalculateProgress(obj framework.UniversalObjective) framework.Progress
	VisualizationConfig(obj framework.UniversalObjective) framework.VisualizationConfig
	UIComponents(obj framework.UniversalObjective) []framework.UIComponent
	ValidationRules(obj framework.UniversalObjective) []framework.ValidationRule
	AvailableActions(obj framework.UniversalObjective) []framework.Action

	// ToUniversal is the inverse of TranslateCore on the fields the framework uses.
	ToUniversal(fields framework.Fields) (framework.UniversalObjective, error)

	CalculateCompatibility(obj framework.UniversalObjective) framework.Compatibility
	ScoreOrganizationFit(metrics framework.OrganizationMetrics) framework.FitScore
	Validate(obj framework.UniversalObjective) framework.ValidationResult
}

// Options configures every translator built by NewDefaultRegistry.
type Options struct {
	// Now supplies the clock used for elapsed-time trends. Defaults to time.Now.
	Now func() time.Time
	// Heuristics holds the organization fit thresholds. Defaults to DefaultHeuristics.
	Heuristics Heuristics
}

func (o Options) normalized() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if reflect.DeepEqual(o.Heuristics, Heuristics{}) {
		o.Heuristics = DefaultHeuristics()
	}
	return o
}

// Registry maps framework kinds to their translator.
type Registry struct {
	byKind map[framework.Kind]Translator
}

// NewRegistry builds a registry from explicit translators.
func NewRegistry(translators ...Translator) *Registry {
	r := &Registry{byKind: make(map[framework.Kind]Translator, len(translators))}
	for _, t := range translators {
		r.Register(t)
	}
	return r
}

// NewDefaultRegistry registers the EOS, OKR, 4DX and Scaling Up translators.
func NewDefaultRegistry(opts Options) *Registry {
	opts = opts.normalized()
	return NewRegistry(NewEOS(opts), NewOKR(opts), NewFourDX(opts), NewScalingUp(opts))
}

// Register adds or replaces the translator for t.Kind().
func (r *Registry) Register(t Translator) {
	if t == nil {
		return
	}
	r.byKind[t.Kind()] = t
}

// Get returns the translator for kind.
func (r *Registry) Get(kind framework.Kind) (Translator, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.byKind[kind]
	return t, ok
}

// Resolve parses a caller supplied key and returns its translator.
func (r *Registry) Resolve(raw string) (Translator, error) {
	kind, err := framework.ParseKind(raw)
	if err != nil {
		return nil, err
	}
	t, ok := r.Get(kind)
	if !ok {
		return nil, &framework.UnsupportedFrameworkError{Framework: raw}
	}
	return t, nil
}

// Kinds lists the registered frameworks in sorted order.
func (r *Registry) Kinds() []framework.Kind {
	if r == nil {
		return nil
	}
	kinds := make([]framework.Kind, 0, len(r.byKind))
	for kind := range r.byKind {
		kinds = append(kinds, kind)
	}
	return framework.SortKinds(kinds)
}

// All returns the registered translators in Kinds order.
func (r *Registry) All() []Translator {
	kinds := r.Kinds()
	out := make([]Translator, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, r.byKind[kind])
	}
	return out
}

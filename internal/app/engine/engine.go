// Package engine orchestrates translators for one organization: it loads the
// organization's framework configuration and mapping rules, translates single
// objectives and batches, ranks frameworks, and records best-effort audit rows.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"goalbridge/internal/app/translator"
	"goalbridge/internal/domain/framework"
	"goalbridge/internal/observability"
	"goalbridge/internal/shared/async"
	"goalbridge/internal/shared/logging"
)

const defaultAuditTimeout = 5 * time.Second

// Instruments receives engine metrics. *observability.MetricsCollector
// satisfies it.
type Instruments interface {
	RecordTranslation(ctx context.Context, target string, ok bool, duration time.Duration)
	RecordBulk(ctx context.Context, target string, succeeded, failed int)
	RecordAuditFailure(ctx context.Context, op string)
	RecordRecommendation(ctx context.Context, framework string)
}

type nopInstruments struct{}

func (nopInstruments) RecordTranslation(context.Context, string, bool, time.Duration) {}
func (nopInstruments) RecordBulk(context.Context, string, int, int)                  {}
func (nopInstruments) RecordAuditFailure(context.Context, string)                    {}
func (nopInstruments) RecordRecommendation(context.Context, string)                  {}

// Deps wires an Engine. Every store may be nil; the engine then skips the
// corresponding load or write.
type Deps struct {
	Registry       *translator.Registry
	Configurations framework.ConfigurationStore
	Rules          framework.MappingRuleStore
	Metrics        framework.MetricsReader
	Audit          framework.AuditWriter
	Heuristics     translator.Heuristics
	Instruments    Instruments
	Tracer         *observability.TracerProvider
	Logger         logging.Logger
	// Tracker counts in-flight audit writes. Engines built by one Pool share it.
	Tracker      *async.Tracker
	Now          func() time.Time
	AuditTimeout time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Heuristics.LargeOrganization == 0 {
		d.Heuristics = translator.DefaultHeuristics()
	}
	if d.Registry == nil {
		d.Registry = translator.NewDefaultRegistry(translator.Options{Now: d.Now, Heuristics: d.Heuristics})
	}
	if d.Instruments == nil {
		d.Instruments = nopInstruments{}
	}
	d.Logger = logging.OrNop(d.Logger)
	if d.Tracker == nil {
		d.Tracker = &async.Tracker{Logger: d.Logger}
	}
	if d.AuditTimeout <= 0 {
		d.AuditTimeout = defaultAuditTimeout
	}
	return d
}

// TranslateOptions tunes one translation.
type TranslateOptions struct {
	// SkipTracking suppresses the audit write.
	SkipTracking bool
	// BusinessArea selects which mapping rules apply. Defaults to goals.
	BusinessArea framework.BusinessArea
	// UserID is recorded on the audit row.
	UserID string
	// Overrides are applied after any mapping rule overrides and win over them.
	Overrides map[string]any
}

// Engine translates objectives for one organization. It is safe for
// concurrent use; Initialize replaces the cached configuration atomically.
type Engine struct {
	deps Deps

	mu             sync.RWMutex
	organizationID string
	departmentID   string
	config         *framework.Configuration
	rules          []framework.MappingRule
	initialized    bool
}

// New builds an engine that is not yet bound to an organization.
func New(deps Deps) *Engine {
	return &Engine{deps: deps.withDefaults()}
}

// Initialize loads the configuration and active mapping rules of the
// organization. Until it succeeds, translations skip rule overrides and
// nothing is audited.
func (e *Engine) Initialize(ctx context.Context, organizationID, departmentID string) error {
	ctx, span := e.deps.Tracer.StartSpan(observability.ContextWithOrganizationID(ctx, organizationID), observability.SpanInitialize)
	defer span.End()

	var (
		cfg   *framework.Configuration
		rules []framework.MappingRule
	)
	g, gctx := errgroup.WithContext(ctx)
	if e.deps.Configurations != nil {
		g.Go(func() error {
			loaded, err := e.deps.Configurations.ActiveConfiguration(gctx, organizationID, departmentID)
			if err != nil {
				return fmt.Errorf("load framework configuration: %w", err)
			}
			cfg = loaded
			return nil
		})
	}
	if e.deps.Rules != nil {
		g.Go(func() error {
			loaded, err := e.deps.Rules.ActiveMappingRules(gctx, organizationID)
			if err != nil {
				return fmt.Errorf("load mapping rules: %w", err)
			}
			rules = loaded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	active := make([]framework.MappingRule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsActive {
			active = append(active, rule)
		}
	}
	framework.SortRules(active)

	e.mu.Lock()
	e.organizationID = organizationID
	e.departmentID = departmentID
	e.config = cfg
	e.rules = active
	e.initialized = true
	e.mu.Unlock()

	e.deps.Logger.Debug("initialized engine for organization %s (department %q): %d active rules, configured=%t",
		organizationID, departmentID, len(active), cfg != nil)
	return nil
}

// OrganizationID returns the organization bound by Initialize.
func (e *Engine) OrganizationID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.organizationID
}

// Configuration returns a copy of the loaded configuration, or nil.
func (e *Engine) Configuration() *framework.Configuration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.config == nil {
		return nil
	}
	cfg := *e.config
	return &cfg
}

func (e *Engine) snapshot() (org string, cfg *framework.Configuration, rules []framework.MappingRule, initialized bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.organizationID, e.config, e.rules, e.initialized
}

// TranslateObjective renders obj in the target framework.
func (e *Engine) TranslateObjective(ctx context.Context, obj framework.UniversalObjective, target string, opts TranslateOptions) (*framework.TranslatedObjective, error) {
	started := e.deps.Now()
	tr, err := e.deps.Registry.Resolve(target)
	if err != nil {
		return nil, err
	}
	ctx, span := e.deps.Tracer.StartSpan(ctx, observability.SpanTranslate,
		observability.FrameworkAttrs(obj.SourceFramework(), string(tr.Kind()))...)
	defer span.End()

	if err := obj.Check(); err != nil {
		span.RecordError(err)
		e.deps.Instruments.RecordTranslation(ctx, string(tr.Kind()), false, e.deps.Now().Sub(started))
		return nil, err
	}

	view := e.build(obj, tr, opts.BusinessArea, opts.Overrides)
	e.deps.Instruments.RecordTranslation(ctx, string(tr.Kind()), true, e.deps.Now().Sub(started))

	if !opts.SkipTracking {
		e.trackTranslation(ctx, obj, view, opts.UserID)
	}
	return view, nil
}

// build computes the aggregate view and applies overrides. obj must already
// be checked.
func (e *Engine) build(obj framework.UniversalObjective, tr translator.Translator, area framework.BusinessArea, overrides map[string]any) *framework.TranslatedObjective {
	_, _, rules, _ := e.snapshot()
	rule := framework.SelectRule(rules, obj.SourceFramework(), string(tr.Kind()), area.OrDefault())

	input := obj.Clone()
	view := &framework.TranslatedObjective{
		Framework:       tr.Kind(),
		OriginalID:      obj.ID,
		Fields:          tr.TranslateCore(input, rule),
		Terminology:     tr.TerminologyTable(),
		Progress:        tr.CalculateProgress(input),
		Visualization:   tr.VisualizationConfig(input),
		UIComponents:    tr.UIComponents(input),
		ValidationRules: tr.ValidationRules(input),
		Actions:         tr.AvailableActions(input),
	}

	overridden := map[string]struct{}{}
	if rule != nil {
		view.AppliedRuleID = rule.ID
		for role, term := range rule.Rules.Terminology {
			view.Terminology[role] = term
		}
		for _, key := range framework.ApplyOverrides(view.Fields, rule.Rules.Overrides) {
			overridden[key] = struct{}{}
		}
	}
	for _, key := range framework.ApplyOverrides(view.Fields, overrides) {
		overridden[key] = struct{}{}
	}
	if len(overridden) > 0 {
		view.Overridden = make([]string, 0, len(overridden))
		for key := range overridden {
			view.Overridden = append(view.Overridden, key)
		}
		sort.Strings(view.Overridden)
	}
	return view
}

func (e *Engine) trackTranslation(ctx context.Context, obj framework.UniversalObjective, view *framework.TranslatedObjective, userID string) {
	org, _, _, _ := e.snapshot()
	if org == "" || e.deps.Audit == nil {
		return
	}
	snapshot, err := json.Marshal(view)
	if err != nil {
		e.deps.Logger.Warn("skipping audit for objective %s: %v", obj.ID, err)
		return
	}
	record := framework.TranslationRecord{
		ID:                 uuid.NewString(),
		OrganizationID:     org,
		ObjectiveID:        obj.ID,
		SourceFramework:    obj.SourceFramework(),
		TargetFramework:    view.Framework,
		Snapshot:           snapshot,
		ProgressPercentage: view.Progress.Percentage,
		StatusLabel:        view.Progress.Status,
		UserID:             userID,
		CreatedAt:          e.deps.Now().UTC(),
	}
	e.dispatchAudit(ctx, "record_translation", func(ctx context.Context) error {
		return e.deps.Audit.RecordTranslation(ctx, record)
	})
}

// dispatchAudit runs write in the background. Its failure is logged and
// counted, never returned.
func (e *Engine) dispatchAudit(ctx context.Context, op string, write func(ctx context.Context) error) {
	base := context.WithoutCancel(ctx)
	e.deps.Tracker.Go("audit."+op, func() {
		actx, cancel := context.WithTimeout(base, e.deps.AuditTimeout)
		defer cancel()
		actx, span := e.deps.Tracer.StartSpan(actx, observability.SpanAuditWrite, attribute.String("op", op))
		defer span.End()

		if err := write(actx); err != nil {
			auditErr := &framework.AuditWriteError{Op: op, Err: err}
			span.RecordError(auditErr)
			span.SetStatus(codes.Error, auditErr.Error())
			e.deps.Logger.Warn("%v", auditErr)
			e.deps.Instruments.RecordAuditFailure(actx, op)
		}
	})
}

// Drain waits for in-flight audit writes.
func (e *Engine) Drain(ctx context.Context) error {
	return e.deps.Tracker.Wait(ctx)
}

// ValidateTranslation runs the target framework's validation on obj.
func (e *Engine) ValidateTranslation(obj framework.UniversalObjective, target string) (framework.ValidationResult, error) {
	tr, err := e.deps.Registry.Resolve(target)
	if err != nil {
		return framework.ValidationResult{}, err
	}
	return tr.Validate(obj), nil
}

// Preview is an untracked translation with its validation and compatibility.
type Preview struct {
	Translation   *framework.TranslatedObjective `json:"translation"`
	Validation    framework.ValidationResult     `json:"validation"`
	Compatibility framework.Compatibility        `json:"compatibility"`
}

// PreviewTranslation translates obj without writing an audit row.
func (e *Engine) PreviewTranslation(ctx context.Context, obj framework.UniversalObjective, target string, opts TranslateOptions) (*Preview, error) {
	opts.SkipTracking = true
	view, err := e.TranslateObjective(ctx, obj, target, opts)
	if err != nil {
		return nil, err
	}
	tr, _ := e.deps.Registry.Get(view.Framework)
	return &Preview{
		Translation:   view,
		Validation:    tr.Validate(obj),
		Compatibility: tr.CalculateCompatibility(obj),
	}, nil
}

// CompatibilitySummary averages per-objective compatibility for one framework.
type CompatibilitySummary struct {
	Framework  framework.Kind            `json:"framework"`
	Score      float64                   `json:"score"`
	Compatible bool                      `json:"compatible"`
	Count      int                       `json:"count"`
	Objectives []framework.Compatibility `json:"objectives"`
}

// CalculateCompatibilityScore averages the compatibility of objs with the
// target framework. An empty set scores 0.
func (e *Engine) CalculateCompatibilityScore(objs []framework.UniversalObjective, target string) (CompatibilitySummary, error) {
	tr, err := e.deps.Registry.Resolve(target)
	if err != nil {
		return CompatibilitySummary{}, err
	}
	summary := CompatibilitySummary{
		Framework:  tr.Kind(),
		Count:      len(objs),
		Objectives: make([]framework.Compatibility, 0, len(objs)),
	}
	if len(objs) == 0 {
		return summary, nil
	}
	var total float64
	for _, obj := range objs {
		c := tr.CalculateCompatibility(obj)
		total += c.Score
		summary.Objectives = append(summary.Objectives, c)
	}
	summary.Score = total / float64(len(objs))
	summary.Compatible = summary.Score*100 >= 60
	return summary, nil
}

// FrameworkInfo describes one registered framework.
type FrameworkInfo struct {
	Kind        framework.Kind    `json:"kind"`
	Name        string            `json:"name"`
	Terminology map[string]string `json:"terminology"`
}

// AvailableFrameworks lists the registered translators.
func (e *Engine) AvailableFrameworks() []FrameworkInfo {
	translators := e.deps.Registry.All()
	out := make([]FrameworkInfo, 0, len(translators))
	for _, tr := range translators {
		out = append(out, FrameworkInfo{Kind: tr.Kind(), Name: tr.Kind().DisplayName(), Terminology: tr.TerminologyTable()})
	}
	return out
}

// TranslateForHybrid routes obj to the framework configured for area. The
// organization must allow hybrid use.
func (e *Engine) TranslateForHybrid(ctx context.Context, obj framework.UniversalObjective, area framework.BusinessArea, opts TranslateOptions) (*framework.TranslatedObjective, error) {
	org, cfg, _, initialized := e.snapshot()
	if !initialized {
		return nil, framework.ErrNotInitialized
	}
	if cfg == nil || !cfg.AllowHybrid {
		return nil, &framework.HybridNotEnabledError{OrganizationID: org}
	}
	area = area.OrDefault()
	if !area.Valid() {
		return nil, &framework.MalformedObjectiveError{Field: "business_area", Reason: fmt.Sprintf("unknown value %q", area)}
	}
	opts.BusinessArea = area
	return e.TranslateObjective(ctx, obj, string(cfg.FrameworkFor(area)), opts)
}

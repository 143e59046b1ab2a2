package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"goalbridge/internal/domain/framework"
	"goalbridge/internal/observability"
)

// BulkResult is the outcome of one item of a batch. Index matches the input
// position.
type BulkResult struct {
	Index      int                            `json:"index"`
	Success    bool                           `json:"success"`
	Original   framework.Fields               `json:"original"`
	Translated *framework.TranslatedObjective `json:"translated,omitempty"`
	Error      string                         `json:"error,omitempty"`
}

// BulkTranslate converts every item from source into target. A failing item
// is reported in its result and never aborts the batch. Unsupported source or
// target frameworks fail the whole call before any item is processed.
func (e *Engine) BulkTranslate(ctx context.Context, items []framework.Fields, source, target string) ([]BulkResult, error) {
	tr, err := e.deps.Registry.Resolve(target)
	if err != nil {
		return nil, err
	}
	decode := framework.DecodeUniversal
	sourceKey := framework.Universal
	if !framework.IsUniversal(source) {
		from, err := e.deps.Registry.Resolve(source)
		if err != nil {
			return nil, err
		}
		decode = from.ToUniversal
		sourceKey = string(from.Kind())
	}

	ctx, span := e.deps.Tracer.StartSpan(ctx, observability.SpanBulk,
		append(observability.FrameworkAttrs(sourceKey, string(tr.Kind())), attribute.Int(observability.AttrItemCount, len(items)))...)
	defer span.End()

	results := make([]BulkResult, len(items))
	var succeeded, completed int
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results[i] = e.translateItem(ctx, i, item, decode, string(tr.Kind()))
		if results[i].Success {
			succeeded++
			if results[i].Translated.Progress.IsComplete {
				completed++
			}
		}
	}
	failed := len(items) - succeeded

	e.deps.Instruments.RecordBulk(ctx, string(tr.Kind()), succeeded, failed)
	span.SetAttributes(attribute.Int("goalbridge.bulk.failed", failed))
	e.trackBulk(ctx, tr.Kind(), len(items), completed, failed)
	return results, nil
}

func (e *Engine) translateItem(ctx context.Context, index int, item framework.Fields, decode func(framework.Fields) (framework.UniversalObjective, error), target string) (result BulkResult) {
	result = BulkResult{Index: index, Original: item}
	defer func() {
		if r := recover(); r != nil {
			e.deps.Logger.Error("bulk item %d panicked: %v", index, r)
			result.Success = false
			result.Translated = nil
			result.Error = fmt.Sprintf("internal error: %v", r)
		}
	}()

	obj, err := decode(item)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	view, err := e.TranslateObjective(ctx, obj, target, TranslateOptions{SkipTracking: true})
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.Translated = view
	return result
}

func (e *Engine) trackBulk(ctx context.Context, target framework.Kind, total, completed, failed int) {
	org, _, _, _ := e.snapshot()
	if org == "" || e.deps.Audit == nil || total == 0 {
		return
	}
	now := e.deps.Now().UTC()
	delta := framework.PerformanceDelta{
		OrganizationID:      org,
		Framework:           target,
		Day:                 time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		ObjectivesTotal:     total,
		ObjectivesCompleted: completed,
		TranslationFailures: failed,
	}
	e.dispatchAudit(ctx, "record_performance", func(ctx context.Context) error {
		return e.deps.Audit.RecordPerformance(ctx, delta)
	})
}

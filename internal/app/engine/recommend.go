package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"goalbridge/internal/app/translator"
	"goalbridge/internal/domain/framework"
	"goalbridge/internal/observability"
)

const maxAlternatives = 2

// Recommendation ranks every framework for an organization.
type Recommendation struct {
	Recommended  framework.Kind                `json:"recommended"`
	Score        float64                       `json:"score"`
	Alternatives []framework.FitScore          `json:"alternatives"`
	Rankings     []framework.FitScore          `json:"rankings"`
	Reasoning    []string                      `json:"reasoning"`
	Metrics      framework.OrganizationMetrics `json:"metrics"`
}

// RecommendFramework scores every registered framework against the bound
// organization and returns the best fit first.
func (e *Engine) RecommendFramework(ctx context.Context) (*Recommendation, error) {
	org, _, _, initialized := e.snapshot()
	if !initialized || org == "" {
		return nil, framework.ErrNotInitialized
	}
	ctx, span := e.deps.Tracer.StartSpan(ctx, observability.SpanRecommend)
	defer span.End()

	var snapshot framework.OrganizationSnapshot
	if e.deps.Metrics != nil {
		var err error
		snapshot, err = e.deps.Metrics.OrganizationSnapshot(ctx, org)
		if err != nil {
			err = fmt.Errorf("load organization metrics: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}
	metrics := DeriveMetrics(snapshot, e.deps.Heuristics, e.deps.Now())

	rankings := make([]framework.FitScore, 0, len(e.deps.Registry.All()))
	for _, tr := range e.deps.Registry.All() {
		rankings = append(rankings, tr.ScoreOrganizationFit(metrics))
	}
	sort.SliceStable(rankings, func(i, j int) bool { return rankings[i].Score > rankings[j].Score })
	if len(rankings) == 0 {
		return nil, fmt.Errorf("no frameworks registered")
	}

	best := rankings[0]
	alternatives := rankings[1:]
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}
	rec := &Recommendation{
		Recommended:  best.Framework,
		Score:        best.Score,
		Alternatives: append([]framework.FitScore(nil), alternatives...),
		Rankings:     rankings,
		Reasoning:    append(reasoning(metrics, e.deps.Heuristics), best.Pros...),
		Metrics:      metrics,
	}
	span.SetAttributes(attribute.String("goalbridge.recommended", string(best.Framework)))
	e.deps.Instruments.RecordRecommendation(ctx, string(best.Framework))
	return rec, nil
}

// DeriveMetrics turns raw aggregates into fit inputs. Missing counts are zero.
func DeriveMetrics(s framework.OrganizationSnapshot, h translator.Heuristics, now time.Time) framework.OrganizationMetrics {
	m := framework.OrganizationMetrics{
		EmployeeCount:   count(s.EmployeeCount),
		TeamCount:       count(s.TeamCount),
		DepartmentCount: count(s.DepartmentCount),
		LocationCount:   count(s.LocationCount),
		Industry:        strings.TrimSpace(s.Industry),
	}
	objectives := count(s.ObjectiveCount)
	if objectives > 0 {
		m.CompletionRate = float64(count(s.CompletedObjectives)) / float64(objectives)
	}
	if m.EmployeeCount > 0 {
		m.ObjectivesPerPerson = float64(objectives) / float64(m.EmployeeCount)
	}
	if s.FoundedAt != nil {
		m.OrgAgeMonths = monthsBetween(*s.FoundedAt, now)
	}
	m.IsDistributed = m.LocationCount > 1
	m.IsLarge = m.EmployeeCount > h.LargeOrganization
	m.IsStartup = m.OrgAgeMonths < h.StartupAgeMonths && m.EmployeeCount < h.StartupMaxEmployees
	return m
}

func count(v *int64) int {
	if v == nil || *v < 0 {
		return 0
	}
	return int(*v)
}

func monthsBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// reasoning summarizes which organization traits drove the ranking.
func reasoning(m framework.OrganizationMetrics, h translator.Heuristics) []string {
	var lines []string
	switch {
	case m.IsStartup:
		lines = append(lines, fmt.Sprintf("Startup stage (%d months, %d employees) favors lightweight, adaptable goal systems", m.OrgAgeMonths, m.EmployeeCount))
	case m.IsLarge:
		lines = append(lines, fmt.Sprintf("Large organization (%d employees) needs cascading alignment across teams", m.EmployeeCount))
	case h.EOS.IdealEmployees.Contains(m.EmployeeCount):
		lines = append(lines, fmt.Sprintf("Headcount of %d fits the entrepreneurial operating range", m.EmployeeCount))
	}
	if m.IsDistributed {
		lines = append(lines, fmt.Sprintf("%d locations benefit from transparent, shared goals", m.LocationCount))
	}
	if m.Industry != "" {
		lines = append(lines, fmt.Sprintf("Industry: %s", m.Industry))
	}
	if m.CompletionRate > 0 {
		lines = append(lines, fmt.Sprintf("Historical completion rate of %.0f%%", m.CompletionRate*100))
	}
	return lines
}

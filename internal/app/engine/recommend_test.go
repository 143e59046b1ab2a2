package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goalbridge/internal/app/translator"
	"goalbridge/internal/domain/framework"
)

func int64p(v int64) *int64 { return &v }

func TestRecommendFrameworkRanksByFit(t *testing.T) {
	founded := fixedNow.AddDate(-5, 0, 0)
	store := &fakeStore{snapshot: framework.OrganizationSnapshot{
		EmployeeCount:       int64p(100),
		TeamCount:           int64p(5),
		DepartmentCount:     int64p(2),
		LocationCount:       int64p(1),
		ObjectiveCount:      int64p(100),
		CompletedObjectives: int64p(70),
		Industry:            "Manufacturing",
		FoundedAt:           &founded,
	}}
	e, _ := newTestEngine(t, store)
	require.NoError(t, e.Initialize(context.Background(), "org-1", ""))

	rec, err := e.RecommendFramework(context.Background())
	require.NoError(t, err)

	assert.Equal(t, framework.KindEOS, rec.Recommended)
	assert.Equal(t, 100.0, rec.Score)
	require.Len(t, rec.Rankings, 4)
	for i := 1; i < len(rec.Rankings); i++ {
		assert.GreaterOrEqual(t, rec.Rankings[i-1].Score, rec.Rankings[i].Score)
	}
	assert.Equal(t, rec.Rankings[1:3], rec.Alternatives)
	assert.NotContains(t, alternativeKinds(rec), rec.Recommended)

	assert.Equal(t, 60, rec.Metrics.OrgAgeMonths)
	assert.InDelta(t, 0.7, rec.Metrics.CompletionRate, 1e-9)
	assert.False(t, rec.Metrics.IsStartup)
	for _, pro := range rec.Rankings[0].Pros {
		assert.Contains(t, rec.Reasoning, pro)
	}
}

func alternativeKinds(rec *Recommendation) []framework.Kind {
	out := make([]framework.Kind, 0, len(rec.Alternatives))
	for _, alt := range rec.Alternatives {
		out = append(out, alt.Framework)
	}
	return out
}

func TestRecommendFrameworkRequiresOrganization(t *testing.T) {
	e, _ := newTestEngine(t, &fakeStore{})
	_, err := e.RecommendFramework(context.Background())
	assert.ErrorIs(t, err, framework.ErrNotInitialized)
}

func TestRecommendFrameworkWithEmptySnapshot(t *testing.T) {
	e, _ := newTestEngine(t, &fakeStore{})
	require.NoError(t, e.Initialize(context.Background(), "org-1", ""))

	rec, err := e.RecommendFramework(context.Background())
	require.NoError(t, err)
	assert.Len(t, rec.Alternatives, 2)
	assert.Zero(t, rec.Metrics.EmployeeCount)
	assert.True(t, rec.Metrics.IsStartup)
}

func TestDeriveMetrics(t *testing.T) {
	h := translator.DefaultHeuristics()

	t.Run("missing values default to zero", func(t *testing.T) {
		m := DeriveMetrics(framework.OrganizationSnapshot{}, h, fixedNow)
		assert.Equal(t, framework.OrganizationMetrics{IsStartup: true}, m)
	})

	t.Run("flags", func(t *testing.T) {
		founded := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
		m := DeriveMetrics(framework.OrganizationSnapshot{
			EmployeeCount:       int64p(400),
			LocationCount:       int64p(3),
			ObjectiveCount:      int64p(800),
			CompletedObjectives: int64p(200),
			FoundedAt:           &founded,
		}, h, fixedNow)
		assert.Equal(t, 4, m.OrgAgeMonths)
		assert.True(t, m.IsDistributed)
		assert.True(t, m.IsLarge)
		assert.False(t, m.IsStartup)
		assert.InDelta(t, 0.25, m.CompletionRate, 1e-9)
		assert.InDelta(t, 2.0, m.ObjectivesPerPerson, 1e-9)
	})

	t.Run("future founding date", func(t *testing.T) {
		founded := fixedNow.AddDate(1, 0, 0)
		m := DeriveMetrics(framework.OrganizationSnapshot{FoundedAt: &founded}, h, fixedNow)
		assert.Zero(t, m.OrgAgeMonths)
	})
}

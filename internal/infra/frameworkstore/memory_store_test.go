package frameworkstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goalbridge/internal/domain/framework"
)

func TestMemoryStoreConfigurationPrecedence(t *testing.T) {
	s := NewMemoryStore()
	dept := "dept-1"
	s.PutConfiguration(framework.Configuration{ID: "org-wide", OrganizationID: "org-1", GoalFramework: framework.KindOKR})
	s.PutConfiguration(framework.Configuration{ID: "dept", OrganizationID: "org-1", DepartmentID: &dept, GoalFramework: framework.KindEOS})

	cfg, err := s.ActiveConfiguration(context.Background(), "org-1", "dept-1")
	require.NoError(t, err)
	assert.Equal(t, "dept", cfg.ID)

	cfg, err = s.ActiveConfiguration(context.Background(), "org-1", "dept-2")
	require.NoError(t, err)
	assert.Equal(t, "org-wide", cfg.ID)

	cfg, err = s.ActiveConfiguration(context.Background(), "org-1", "")
	require.NoError(t, err)
	assert.Equal(t, "org-wide", cfg.ID)

	cfg, err = s.ActiveConfiguration(context.Background(), "org-2", "")
	require.NoError(t, err)
	assert.Nil(t, cfg)

	s.PutConfiguration(framework.Configuration{ID: "org-wide-2", OrganizationID: "org-1", GoalFramework: framework.KindFourDX})
	cfg, _ = s.ActiveConfiguration(context.Background(), "org-1", "")
	assert.Equal(t, "org-wide-2", cfg.ID)
}

func TestMemoryStoreRulesAreActiveAndOrdered(t *testing.T) {
	s := NewMemoryStore()
	s.PutMappingRule(framework.MappingRule{ID: "a", OrganizationID: "org-1", Priority: 1, IsActive: true})
	s.PutMappingRule(framework.MappingRule{ID: "b", OrganizationID: "org-1", Priority: 5, IsActive: true})
	s.PutMappingRule(framework.MappingRule{ID: "c", OrganizationID: "org-1", Priority: 9, IsActive: false})
	s.PutMappingRule(framework.MappingRule{ID: "d", OrganizationID: "org-2", Priority: 3, IsActive: true})

	rules, err := s.ActiveMappingRules(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "b", rules[0].ID)
	assert.Equal(t, "a", rules[1].ID)
}

func TestMemoryStorePerformanceAccumulates(t *testing.T) {
	s := NewMemoryStore()
	day := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)
	delta := framework.PerformanceDelta{OrganizationID: "org-1", Framework: framework.KindOKR, Day: day, ObjectivesTotal: 2, ObjectivesCompleted: 1, TranslationFailures: 1}

	require.NoError(t, s.RecordPerformance(context.Background(), delta))
	require.NoError(t, s.RecordPerformance(context.Background(), delta))

	acc, ok := s.Performance("org-1", framework.KindOKR, day.Add(6*time.Hour))
	require.True(t, ok)
	assert.Equal(t, 4, acc.ObjectivesTotal)
	assert.Equal(t, 2, acc.ObjectivesCompleted)
	assert.Equal(t, 2, acc.TranslationFailures)
}

func TestMemoryStoreHistoryAndSnapshot(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.RecordTranslation(context.Background(), framework.TranslationRecord{ID: "r-1"}))
	assert.Len(t, s.History(), 1)

	snap, err := s.OrganizationSnapshot(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, framework.OrganizationSnapshot{}, snap)
}

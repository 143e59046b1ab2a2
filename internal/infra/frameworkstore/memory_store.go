package frameworkstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"goalbridge/internal/domain/framework"
)

type performanceKey struct {
	organizationID string
	framework      framework.Kind
	day            string
}

// MemoryStore keeps framework data in process memory. It follows the same
// selection rules as PostgresStore.
type MemoryStore struct {
	mu          sync.RWMutex
	configs     []framework.Configuration
	rules       []framework.MappingRule
	snapshots   map[string]framework.OrganizationSnapshot
	history     []framework.TranslationRecord
	performance map[performanceKey]framework.PerformanceDelta
}

var _ framework.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots:   make(map[string]framework.OrganizationSnapshot),
		performance: make(map[performanceKey]framework.PerformanceDelta),
	}
}

// PutConfiguration stores cfg, replacing the row with the same organization
// and department.
func (s *MemoryStore) PutConfiguration(cfg framework.Configuration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.configs {
		if existing.OrganizationID == cfg.OrganizationID && deptKey(existing.DepartmentID) == deptKey(cfg.DepartmentID) {
			s.configs[i] = cfg
			return
		}
	}
	s.configs = append(s.configs, cfg)
}

// PutMappingRule stores rule, replacing the rule with the same ID.
func (s *MemoryStore) PutMappingRule(rule framework.MappingRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.rules {
		if existing.ID == rule.ID {
			s.rules[i] = rule
			return
		}
	}
	s.rules = append(s.rules, rule)
}

// PutSnapshot sets the aggregates returned for organizationID.
func (s *MemoryStore) PutSnapshot(organizationID string, snapshot framework.OrganizationSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[organizationID] = snapshot
}

func deptKey(dept *string) string {
	if dept == nil {
		return ""
	}
	return *dept
}

func (s *MemoryStore) ActiveConfiguration(_ context.Context, organizationID, departmentID string) (*framework.Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var orgWide *framework.Configuration
	for i := range s.configs {
		cfg := s.configs[i]
		if cfg.OrganizationID != organizationID {
			continue
		}
		if cfg.DepartmentID == nil {
			orgWide = &cfg
			continue
		}
		if departmentID != "" && *cfg.DepartmentID == departmentID {
			return &cfg, nil
		}
	}
	return orgWide, nil
}

func (s *MemoryStore) ActiveMappingRules(_ context.Context, organizationID string) ([]framework.MappingRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []framework.MappingRule
	for _, rule := range s.rules {
		if rule.OrganizationID == organizationID && rule.IsActive {
			out = append(out, rule)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

func (s *MemoryStore) OrganizationSnapshot(_ context.Context, organizationID string) (framework.OrganizationSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[organizationID], nil
}

func (s *MemoryStore) RecordTranslation(_ context.Context, record framework.TranslationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, record)
	return nil
}

func (s *MemoryStore) RecordPerformance(_ context.Context, delta framework.PerformanceDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := performanceKey{organizationID: delta.OrganizationID, framework: delta.Framework, day: delta.Day.UTC().Format(time.DateOnly)}
	acc, ok := s.performance[key]
	if !ok {
		acc = framework.PerformanceDelta{OrganizationID: delta.OrganizationID, Framework: delta.Framework, Day: delta.Day}
	}
	acc.ObjectivesTotal += delta.ObjectivesTotal
	acc.ObjectivesCompleted += delta.ObjectivesCompleted
	acc.TranslationFailures += delta.TranslationFailures
	s.performance[key] = acc
	return nil
}

// History returns a copy of the recorded translations.
func (s *MemoryStore) History() []framework.TranslationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]framework.TranslationRecord(nil), s.history...)
}

// Performance returns the accumulated metrics row for the key.
func (s *MemoryStore) Performance(organizationID string, kind framework.Kind, day time.Time) (framework.PerformanceDelta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.performance[performanceKey{organizationID: organizationID, framework: kind, day: day.UTC().Format(time.DateOnly)}]
	return acc, ok
}

package framework

import (
	"context"
	"encoding/json"
	"time"
)

// TranslationRecord is one objective_history row appended after a translation.
type TranslationRecord struct {
	ID                 string          `json:"id"`
	OrganizationID     string          `json:"organization_id"`
	ObjectiveID        string          `json:"objective_id"`
	SourceFramework    string          `json:"source_framework"`
	TargetFramework    Kind            `json:"target_framework"`
	Snapshot           json.RawMessage `json:"snapshot"`
	ProgressPercentage float64         `json:"progress_percentage"`
	StatusLabel        string          `json:"status_label"`
	UserID             string          `json:"user_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// PerformanceDelta is accumulated into framework_performance_metrics for the
// (organization, framework, day) key.
type PerformanceDelta struct {
	OrganizationID      string    `json:"organization_id"`
	Framework           Kind      `json:"framework"`
	Day                 time.Time `json:"day"`
	ObjectivesTotal     int       `json:"objectives_total"`
	ObjectivesCompleted int       `json:"objectives_completed"`
	TranslationFailures int       `json:"translation_failures"`
}

// OrganizationSnapshot holds raw organization aggregates. Nil means the store
// had no value.
type OrganizationSnapshot struct {
	EmployeeCount       *int64     `json:"employee_count,omitempty"`
	TeamCount           *int64     `json:"team_count,omitempty"`
	DepartmentCount     *int64     `json:"department_count,omitempty"`
	LocationCount       *int64     `json:"location_count,omitempty"`
	ObjectiveCount      *int64     `json:"objective_count,omitempty"`
	CompletedObjectives *int64     `json:"completed_objectives,omitempty"`
	Industry            string     `json:"industry,omitempty"`
	FoundedAt           *time.Time `json:"founded_at,omitempty"`
}

// OrganizationMetrics are the derived inputs to organization fit scoring.
type OrganizationMetrics struct {
	EmployeeCount       int     `json:"employee_count"`
	TeamCount           int     `json:"team_count"`
	DepartmentCount     int     `json:"department_count"`
	LocationCount       int     `json:"location_count"`
	Industry            string  `json:"industry"`
	CompletionRate      float64 `json:"completion_rate"`
	ObjectivesPerPerson float64 `json:"objectives_per_person"`
	OrgAgeMonths        int     `json:"org_age_months"`
	IsDistributed       bool    `json:"is_distributed"`
	IsLarge             bool    `json:"is_large"`
	IsStartup           bool    `json:"is_startup"`
}

// ConfigurationStore resolves the framework configuration of an organization.
type ConfigurationStore interface {
	// ActiveConfiguration returns nil without error when nothing is configured.
	ActiveConfiguration(ctx context.Context, organizationID, departmentID string) (*Configuration, error)
}

// MappingRuleStore lists organization override rules.
type MappingRuleStore interface {
	// ActiveMappingRules returns only active rules.
	ActiveMappingRules(ctx context.Context, organizationID string) ([]MappingRule, error)
}

// MetricsReader reads organization aggregates for recommendation.
type MetricsReader interface {
	OrganizationSnapshot(ctx context.Context, organizationID string) (OrganizationSnapshot, error)
}

// AuditWriter appends translation telemetry. Failures never reach callers of
// the engine.
type AuditWriter interface {
	RecordTranslation(ctx context.Context, record TranslationRecord) error
	RecordPerformance(ctx context.Context, delta PerformanceDelta) error
}

// Store is the full set of ports backed by one relational store.
type Store interface {
	ConfigurationStore
	MappingRuleStore
	MetricsReader
	AuditWriter
}

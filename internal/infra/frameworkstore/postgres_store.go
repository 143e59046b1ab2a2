// Package frameworkstore provides the Postgres and in-memory adapters behind
// the framework persistence ports.
package frameworkstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"goalbridge/internal/domain/framework"
	sharederrors "goalbridge/internal/shared/errors"
	"goalbridge/internal/shared/logging"
)

const (
	configurationsTable = "framework_configurations"
	mappingsTable       = "framework_mappings"
	historyTable        = "objective_history"
	performanceTable    = "framework_performance_metrics"
)

// pool abstracts the subset of pgxpool.Pool used by the store for easier testing.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements framework.Store backed by Postgres.
type PostgresStore struct {
	pool   pool
	retry  sharederrors.RetryPolicy
	logger logging.Logger
}

var _ framework.Store = (*PostgresStore)(nil)

// PostgresOption tunes a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithRetryPolicy sets the retry policy of audit writes.
func WithRetryPolicy(policy sharederrors.RetryPolicy) PostgresOption {
	return func(s *PostgresStore) { s.retry = policy }
}

// WithLogger sets the store logger.
func WithLogger(logger logging.Logger) PostgresOption {
	return func(s *PostgresStore) { s.logger = logging.OrNop(logger) }
}

// NewPostgresStore builds a store over pool.
func NewPostgresStore(pool pool, opts ...PostgresOption) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("postgres store requires pool")
	}
	s := &PostgresStore{
		pool:   pool,
		retry:  sharederrors.DefaultRetryPolicy(),
		logger: logging.NewComponentLogger("FrameworkStore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EnsureSchema creates the framework tables and indices if they do not exist.
// The organization tables read by OrganizationSnapshot are owned elsewhere.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + configurationsTable + ` (
    id                TEXT PRIMARY KEY,
    organization_id   TEXT NOT NULL,
    department_id     TEXT,
    goal_framework    TEXT NOT NULL,
    meeting_framework TEXT NOT NULL DEFAULT '',
    metrics_framework TEXT NOT NULL DEFAULT '',
    allow_hybrid      BOOLEAN NOT NULL DEFAULT FALSE,
    is_active         BOOLEAN NOT NULL DEFAULT TRUE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE INDEX IF NOT EXISTS idx_framework_configurations_org
    ON ` + configurationsTable + ` (organization_id, department_id) WHERE is_active`,
		`CREATE TABLE IF NOT EXISTS ` + mappingsTable + ` (
    id               TEXT PRIMARY KEY,
    organization_id  TEXT NOT NULL,
    source_framework TEXT NOT NULL,
    target_framework TEXT NOT NULL,
    business_area    TEXT NOT NULL DEFAULT 'goals',
    priority         INTEGER NOT NULL DEFAULT 0,
    is_active        BOOLEAN NOT NULL DEFAULT TRUE,
    mapping_rules    JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE INDEX IF NOT EXISTS idx_framework_mappings_org
    ON ` + mappingsTable + ` (organization_id, priority DESC) WHERE is_active`,
		`CREATE TABLE IF NOT EXISTS ` + historyTable + ` (
    id                  TEXT PRIMARY KEY,
    organization_id     TEXT NOT NULL,
    objective_id        TEXT NOT NULL,
    source_framework    TEXT NOT NULL,
    target_framework    TEXT NOT NULL,
    snapshot            JSONB NOT NULL,
    progress_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
    status_label        TEXT NOT NULL DEFAULT '',
    user_id             TEXT,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE INDEX IF NOT EXISTS idx_objective_history_objective
    ON ` + historyTable + ` (organization_id, objective_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS ` + performanceTable + ` (
    organization_id      TEXT NOT NULL,
    framework            TEXT NOT NULL,
    day                  DATE NOT NULL,
    objectives_total     INTEGER NOT NULL DEFAULT 0,
    objectives_completed INTEGER NOT NULL DEFAULT 0,
    translation_failures INTEGER NOT NULL DEFAULT 0,
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (organization_id, framework, day)
)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure framework schema: %w", err)
		}
	}
	return nil
}

// ActiveConfiguration prefers the department row over the organization-wide
// row. It returns nil when neither exists.
func (s *PostgresStore) ActiveConfiguration(ctx context.Context, organizationID, departmentID string) (*framework.Configuration, error) {
	var (
		cfg                        framework.Configuration
		goal, meeting, metricsKind string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, organization_id, department_id, goal_framework, meeting_framework, metrics_framework,
        allow_hybrid, created_at, updated_at
   FROM `+configurationsTable+`
  WHERE organization_id = $1
    AND is_active
    AND (department_id = $2 OR department_id IS NULL)
  ORDER BY department_id NULLS LAST
  LIMIT 1`,
		organizationID, departmentID,
	).Scan(&cfg.ID, &cfg.OrganizationID, &cfg.DepartmentID, &goal, &meeting, &metricsKind,
		&cfg.AllowHybrid, &cfg.CreatedAt, &cfg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query framework configuration for %s: %w", organizationID, err)
	}
	cfg.GoalFramework = parseKindColumn(goal)
	cfg.MeetingFramework = parseKindColumn(meeting)
	cfg.MetricsFramework = parseKindColumn(metricsKind)
	return &cfg, nil
}

// parseKindColumn keeps unknown values so translation reports them as unsupported.
func parseKindColumn(raw string) framework.Kind {
	if raw == "" {
		return ""
	}
	if kind, err := framework.ParseKind(raw); err == nil {
		return kind
	}
	return framework.Kind(strings.ToLower(strings.TrimSpace(raw)))
}

// ActiveMappingRules returns active rules ordered by descending priority.
func (s *PostgresStore) ActiveMappingRules(ctx context.Context, organizationID string) ([]framework.MappingRule, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, organization_id, source_framework, target_framework, business_area, priority, mapping_rules
   FROM `+mappingsTable+`
  WHERE organization_id = $1 AND is_active
  ORDER BY priority DESC, created_at ASC`,
		organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query mapping rules for %s: %w", organizationID, err)
	}
	defer rows.Close()

	var rules []framework.MappingRule
	for rows.Next() {
		var (
			rule    framework.MappingRule
			area    string
			payload []byte
		)
		if err := rows.Scan(&rule.ID, &rule.OrganizationID, &rule.SourceFramework, &rule.TargetFramework,
			&area, &rule.Priority, &payload); err != nil {
			return nil, fmt.Errorf("scan mapping rule: %w", err)
		}
		rule.BusinessArea = framework.BusinessArea(area)
		rule.IsActive = true
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &rule.Rules); err != nil {
				s.logger.Warn("skipping mapping rule %s with unreadable payload: %v", rule.ID, err)
				continue
			}
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mapping rules: %w", err)
	}
	return rules, nil
}

// OrganizationSnapshot reads the organization aggregates in one round trip.
// An unknown organization yields an empty snapshot.
func (s *PostgresStore) OrganizationSnapshot(ctx context.Context, organizationID string) (framework.OrganizationSnapshot, error) {
	var snap framework.OrganizationSnapshot
	var industry *string
	err := s.pool.QueryRow(ctx,
		`SELECT
    (SELECT COUNT(*) FROM users WHERE organization_id = o.id),
    (SELECT COUNT(*) FROM teams WHERE organization_id = o.id),
    (SELECT COUNT(*) FROM departments WHERE organization_id = o.id),
    o.location_count,
    (SELECT COUNT(*) FROM objectives WHERE organization_id = o.id),
    (SELECT COUNT(*) FROM objectives WHERE organization_id = o.id AND status = 'completed'),
    o.industry,
    o.founded_at
   FROM organizations o
  WHERE o.id = $1`,
		organizationID,
	).Scan(&snap.EmployeeCount, &snap.TeamCount, &snap.DepartmentCount, &snap.LocationCount,
		&snap.ObjectiveCount, &snap.CompletedObjectives, &industry, &snap.FoundedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return framework.OrganizationSnapshot{}, nil
	}
	if err != nil {
		return framework.OrganizationSnapshot{}, fmt.Errorf("query organization snapshot for %s: %w", organizationID, err)
	}
	if industry != nil {
		snap.Industry = *industry
	}
	return snap, nil
}

// RecordTranslation appends one objective_history row, retrying transient failures.
func (s *PostgresStore) RecordTranslation(ctx context.Context, record framework.TranslationRecord) error {
	return s.execWithRetry(ctx, "insert objective history",
		`INSERT INTO `+historyTable+` (
    id, organization_id, objective_id, source_framework, target_framework,
    snapshot, progress_percentage, status_label, user_id, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		record.ID, record.OrganizationID, record.ObjectiveID, record.SourceFramework, string(record.TargetFramework),
		[]byte(record.Snapshot), record.ProgressPercentage, record.StatusLabel, nullableString(record.UserID), record.CreatedAt,
	)
}

// RecordPerformance accumulates delta into the daily metrics row.
func (s *PostgresStore) RecordPerformance(ctx context.Context, delta framework.PerformanceDelta) error {
	return s.execWithRetry(ctx, "upsert performance metrics",
		`INSERT INTO `+performanceTable+` (
    organization_id, framework, day, objectives_total, objectives_completed, translation_failures, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,now())
ON CONFLICT (organization_id, framework, day) DO UPDATE SET
    objectives_total = `+performanceTable+`.objectives_total + EXCLUDED.objectives_total,
    objectives_completed = `+performanceTable+`.objectives_completed + EXCLUDED.objectives_completed,
    translation_failures = `+performanceTable+`.translation_failures + EXCLUDED.translation_failures,
    updated_at = now()`,
		delta.OrganizationID, string(delta.Framework), delta.Day, delta.ObjectivesTotal, delta.ObjectivesCompleted, delta.TranslationFailures,
	)
}

func (s *PostgresStore) execWithRetry(ctx context.Context, op, sql string, args ...any) error {
	attempt := 0
	err := sharederrors.Retry(ctx, s.retry, func(ctx context.Context) error {
		attempt++
		if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
			classified := classifyError(err)
			if sharederrors.IsTransient(classified) {
				s.logger.Debug("%s attempt %d failed: %v", op, attempt, err)
			}
			return classified
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// classifyError marks connection, serialization and shutdown failures as
// transient and every other server error as permanent.
func classifyError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case strings.HasPrefix(pgErr.Code, "08"),
		pgErr.Code == "40001",
		pgErr.Code == "40P01",
		pgErr.Code == "57P01",
		pgErr.Code == "53300":
		return sharederrors.NewTransientError(err, pgErr.Message)
	default:
		return sharederrors.NewPermanentError(err, pgErr.Message)
	}
}

func nullableString(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

package framework

import (
	"sort"
	"strings"
	"time"
)

// BusinessArea scopes mapping rules and hybrid routing.
type BusinessArea string

const (
	AreaGoals    BusinessArea = "goals"
	AreaMeetings BusinessArea = "meetings"
	AreaMetrics  BusinessArea = "metrics"
)

// Valid reports whether a is a known business area.
func (a BusinessArea) Valid() bool {
	switch a {
	case AreaGoals, AreaMeetings, AreaMetrics:
		return true
	default:
		return false
	}
}

// OrDefault returns AreaGoals when a is unset.
func (a BusinessArea) OrDefault() BusinessArea {
	if strings.TrimSpace(string(a)) == "" {
		return AreaGoals
	}
	return a
}

// Configuration selects an organization's frameworks. A row with a department
// takes precedence over the organization-wide row.
type Configuration struct {
	ID               string    `json:"id"`
	OrganizationID   string    `json:"organization_id"`
	DepartmentID     *string   `json:"department_id,omitempty"`
	GoalFramework    Kind      `json:"goal_framework"`
	MeetingFramework Kind      `json:"meeting_framework"`
	MetricsFramework Kind      `json:"metrics_framework"`
	AllowHybrid      bool      `json:"allow_hybrid"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FrameworkFor returns the framework configured for area.
func (c Configuration) FrameworkFor(area BusinessArea) Kind {
	switch area.OrDefault() {
	case AreaMeetings:
		if c.MeetingFramework != "" {
			return c.MeetingFramework
		}
	case AreaMetrics:
		if c.MetricsFramework != "" {
			return c.MetricsFramework
		}
	}
	return c.GoalFramework
}

// RulePayload is the mapping_rules document of a MappingRule.
type RulePayload struct {
	Overrides   map[string]any    `json:"overrides,omitempty"`
	Terminology map[string]string `json:"terminology,omitempty"`
}

// MappingRule is an organization specific override for one
// (source, target, business area) triple.
type MappingRule struct {
	ID              string       `json:"id"`
	OrganizationID  string       `json:"organization_id"`
	SourceFramework string       `json:"source_framework"`
	TargetFramework string       `json:"target_framework"`
	BusinessArea    BusinessArea `json:"business_area"`
	Priority        int          `json:"priority"`
	IsActive        bool         `json:"is_active"`
	Rules           RulePayload  `json:"mapping_rules"`
}

// Matches reports an exact, case-insensitive match on the rule triple.
func (r MappingRule) Matches(source, target string, area BusinessArea) bool {
	return strings.EqualFold(normalizeFrameworkKey(r.SourceFramework), normalizeFrameworkKey(source)) &&
		strings.EqualFold(normalizeFrameworkKey(r.TargetFramework), normalizeFrameworkKey(target)) &&
		r.BusinessArea.OrDefault() == area.OrDefault()
}

// SortRules orders rules by descending priority, keeping input order for ties.
func SortRules(rules []MappingRule) {
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority > rules[j].Priority })
}

// SelectRule returns the first active rule matching the triple. rules must
// already be sorted with SortRules.
func SelectRule(rules []MappingRule, source, target string, area BusinessArea) *MappingRule {
	for i := range rules {
		if !rules[i].IsActive {
			continue
		}
		if rules[i].Matches(source, target, area) {
			return &rules[i]
		}
	}
	return nil
}

func normalizeFrameworkKey(raw string) string {
	if IsUniversal(raw) {
		return Universal
	}
	if kind, err := ParseKind(raw); err == nil {
		return string(kind)
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

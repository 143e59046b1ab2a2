package framework

import "sort"

// Fields is a framework shaped record keyed by the framework's own field names.
type Fields map[string]any

// Clone returns a shallow copy of the top-level keys.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for key, value := range f {
		out[key] = value
	}
	return out
}

// ApplyOverrides merges overrides over the top-level keys of f. Nested values
// are replaced, never merged. It returns the overridden keys in sorted order.
func ApplyOverrides(f Fields, overrides map[string]any) []string {
	if f == nil || len(overrides) == 0 {
		return nil
	}
	keys := make([]string, 0, len(overrides))
	for key, value := range overrides {
		f[key] = value
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Trend compares achieved progress with elapsed time.
type Trend string

const (
	TrendAhead  Trend = "ahead"
	TrendOnPace Trend = "on_pace"
	TrendBehind Trend = "behind"
)

// MilestoneProgress summarizes completed EOS milestones.
type MilestoneProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Progress is the framework agnostic progress shape. Percentage and Status are
// always set; the remaining fields are framework specific.
type Progress struct {
	Percentage float64            `json:"percentage"`
	Status     string             `json:"status"`
	IsComplete bool               `json:"is_complete"`
	Score      float64            `json:"score"`
	Grade      string             `json:"grade,omitempty"`
	Trend      Trend              `json:"trend,omitempty"`
	Expected   *float64           `json:"expected,omitempty"`
	Milestones *MilestoneProgress `json:"milestones,omitempty"`
	LeadScore  *float64           `json:"lead_score,omitempty"`
	Color      string             `json:"color,omitempty"`
}

// VisualizationConfig hints how presentation layers should chart an objective.
type VisualizationConfig struct {
	ChartType   string            `json:"chart_type"`
	Layout      string            `json:"layout"`
	ColorScheme map[string]string `json:"color_scheme"`
	ShowTrend   bool              `json:"show_trend"`
	Display     string            `json:"display"`
}

// UIComponent names a presentation widget and its static props.
type UIComponent struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props,omitempty"`
}

// ValidationRule declares a field requirement for form builders.
type ValidationRule struct {
	Field    string `json:"field"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Blocking bool   `json:"blocking"`
}

// Action is a verb permitted on an objective in its current status.
type Action struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Primary bool   `json:"primary,omitempty"`
}

// ValidationIssue is one error or warning raised by Validate.
type ValidationIssue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult is a normal return value, never an error.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// CompatibilityFactor is one weighted check of a compatibility score.
type CompatibilityFactor struct {
	Name   string  `json:"name"`
	Weight int     `json:"weight"`
	Earned float64 `json:"earned"`
	Met    bool    `json:"met"`
	Detail string  `json:"detail,omitempty"`
}

// Compatibility measures how well one objective fits a framework.
type Compatibility struct {
	Framework  Kind                  `json:"framework"`
	Score      float64               `json:"score"`
	Factors    []CompatibilityFactor `json:"factors"`
	Compatible bool                  `json:"compatible"`
}

// FitScore measures how well an organization fits a framework, on a 0-100 scale.
type FitScore struct {
	Framework Kind     `json:"framework"`
	Score     float64  `json:"score"`
	Pros      []string `json:"pros"`
	Cons      []string `json:"cons"`
}

// TranslatedObjective is the transient view produced for one target framework.
type TranslatedObjective struct {
	Framework       Kind                `json:"framework"`
	OriginalID      string              `json:"original_id"`
	Fields          Fields              `json:"fields"`
	Terminology     map[string]string   `json:"terminology"`
	Progress        Progress            `json:"progress"`
	Visualization   VisualizationConfig `json:"visualization"`
	UIComponents    []UIComponent       `json:"ui_components"`
	ValidationRules []ValidationRule    `json:"validation_rules"`
	Actions         []Action            `json:"actions"`
	AppliedRuleID   string              `json:"applied_rule_id,omitempty"`
	Overridden      []string            `json:"overridden,omitempty"`
}

package translator

import (
	"fmt"
	"math"
	"strings"

	"goalbridge/internal/domain/framework"
)

// OKR grades.
const (
	okrOnTrack    = "On Track"
	okrBehind     = "Behind"
	okrAtRisk     = "At Risk"
	okrNotStarted = "Not Started"
)

var okrFields = fieldNames{
	ID:          "okr_id",
	Title:       "title",
	Description: "description",
	Owner:       "owner_id",
	Team:        "team_id",
	Parent:      "objective_id",
	Start:       "period_start",
	End:         "period_end",
	Timeframe:   "cadence",
	Current:     "current_value",
	Target:      "target_value",
	Method:      "measurement_type",
	Type:        "okr_type",
	Lifecycle:   "lifecycle_status",
}

// OKR translates objectives into Objectives and Key Results scored 0.0 to 1.0.
type OKR struct {
	opts Options
}

var _ Translator = (*OKR)(nil)

func NewOKR(opts Options) *OKR {
	return &OKR{opts: opts.normalized()}
}

func (t *OKR) Kind() framework.Kind { return framework.KindOKR }

func (t *OKR) Terminology(role string) string { return framework.Term(framework.KindOKR, role) }

func (t *OKR) TerminologyTable() map[string]string { return framework.TerminologyTable(framework.KindOKR) }

func (t *OKR) TranslateCore(obj framework.UniversalObjective, rule *framework.MappingRule) framework.Fields {
	f := encodeCore(framework.KindOKR, obj, okrFields)
	p := t.CalculateProgress(obj)
	start, _ := obj.Attributes.StartValue()
	f["start_value"] = start
	f["score"] = p.Score
	f["grade"] = p.Grade
	f[keyStatus] = p.Status
	f["trend"] = string(p.Trend)
	f[keyTypeLabel] = typeLabel(framework.KindOKR, obj, rule)
	f["level"] = "objective"
	if obj.ObjectiveType.IsSubGoal() {
		f["level"] = "key_result"
	}
	if okr := obj.Attributes.OKR; okr != nil {
		if okr.Confidence != nil {
			f["confidence"] = *okr.Confidence
		}
		if okr.Unit != "" {
			f["unit"] = okr.Unit
		}
		f["aspirational"] = okr.Aspirational
	}
	return f
}

func (t *OKR) ToUniversal(fields framework.Fields) (framework.UniversalObjective, error) {
	return decodeCore(framework.KindOKR, fields, okrFields)
}

// score is (current - start) / (target - start) clamped to [0, 1]; an empty
// range scores zero.
func okrScore(obj framework.UniversalObjective) float64 {
	start, _ := obj.Attributes.StartValue()
	span := obj.TargetValue - start
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 0
	}
	return clamp01((obj.CurrentValue - start) / span)
}

func okrGrade(score float64) string {
	switch {
	case score >= 0.7:
		return okrOnTrack
	case score >= 0.4:
		return okrBehind
	case score > 0:
		return okrAtRisk
	default:
		return okrNotStarted
	}
}

func (t *OKR) CalculateProgress(obj framework.UniversalObjective) framework.Progress {
	score := okrScore(obj)
	grade := okrGrade(score)
	p := framework.Progress{
		Percentage: round2(score * 100),
		Status:     grade,
		Grade:      grade,
		Score:      score,
		IsComplete: score >= 1,
		Trend:      framework.TrendOnPace,
	}
	if elapsed, ok := elapsedFraction(obj, t.opts.Now()); ok {
		p.Trend = trendFor(score, elapsed)
		p.Expected = framework.Float(elapsed)
	}
	return p
}

func (t *OKR) VisualizationConfig(obj framework.UniversalObjective) framework.VisualizationConfig {
	chart := "progress_bar"
	layout := "key_result_row"
	if !obj.ObjectiveType.IsSubGoal() {
		chart = "score_gauge"
		layout = "objective_card"
	}
	return framework.VisualizationConfig{
		ChartType: chart,
		Layout:    layout,
		ColorScheme: map[string]string{
			okrOnTrack:    "#16a34a",
			okrBehind:     "#eab308",
			okrAtRisk:     "#f97316",
			okrNotStarted: "#9ca3af",
		},
		ShowTrend: true,
		Display:   "score_0_to_1",
	}
}

func (t *OKR) UIComponents(obj framework.UniversalObjective) []framework.UIComponent {
	if !obj.ObjectiveType.IsSubGoal() {
		return []framework.UIComponent{
			{Component: "ObjectiveCard", Props: map[string]any{"show_key_results": true}},
			{Component: "ScoreRollup", Props: map[string]any{"aggregation": "average"}},
			{Component: "CheckInTimeline"},
		}
	}
	components := []framework.UIComponent{
		{Component: "KeyResultRow", Props: map[string]any{"show_start_value": true}},
		{Component: "ScoreSlider", Props: map[string]any{"min": 0.0, "max": 1.0, "step": 0.1}},
	}
	if okr := obj.Attributes.OKR; okr != nil && okr.Confidence != nil {
		components = append(components, framework.UIComponent{Component: "ConfidenceMeter", Props: map[string]any{"value": *okr.Confidence}})
	}
	return append(components, framework.UIComponent{Component: "CheckInTimeline"})
}

func (t *OKR) ValidationRules(obj framework.UniversalObjective) []framework.ValidationRule {
	rules := []framework.ValidationRule{
		{Field: okrFields.Title, Rule: "required", Message: "Objectives need a qualitative title", Blocking: true},
		{Field: okrFields.Target, Rule: "numeric", Message: "Key results need a numeric target", Blocking: true},
		{Field: "confidence", Rule: "range:0,1", Message: "Confidence is between 0 and 1", Blocking: false},
	}
	if obj.ObjectiveType.IsSubGoal() {
		rules = append(rules,
			framework.ValidationRule{Field: "start_value", Rule: "required", Message: "Key results need a start value", Blocking: true},
			framework.ValidationRule{Field: okrFields.Parent, Rule: "required", Message: "Key results belong to an objective", Blocking: true},
		)
	}
	return rules
}

func (t *OKR) AvailableActions(obj framework.UniversalObjective) []framework.Action {
	return lifecycleActions(framework.KindOKR, obj, map[framework.Status][]framework.Action{
		framework.StatusPlanned: {
			{ID: "align_to_parent", Label: "Align to parent Objective"},
		},
		framework.StatusActive: {
			{ID: "check_in", Label: "Weekly Check-in"},
			{ID: "update_confidence", Label: "Update confidence"},
		},
		framework.StatusAtRisk: {
			{ID: "check_in", Label: "Weekly Check-in"},
			{ID: "update_confidence", Label: "Update confidence"},
		},
		framework.StatusCompleted: {
			{ID: "grade", Label: "Grade final score"},
		},
	})
}

func (t *OKR) Validate(obj framework.UniversalObjective) framework.ValidationResult {
	v := &validation{}
	checkCommon(v, framework.KindOKR, obj)
	if math.IsNaN(obj.TargetValue) || math.IsInf(obj.TargetValue, 0) {
		v.fail("target_value", "not_numeric", "OKR targets must be numeric")
	}
	start, hasStart := obj.Attributes.StartValue()
	if obj.ObjectiveType.IsSubGoal() {
		if !hasStart {
			v.fail("framework_attributes.start_value", "missing_start_value", "key results need a start value")
		} else if start == obj.TargetValue {
			v.fail("target_value", "empty_range", "key result target equals its start value")
		}
		if obj.TargetValue == 0 && start == 0 {
			v.fail("target_value", "missing_target", "key results need a measurable target")
		}
	} else if obj.TargetValue == 0 {
		v.warn("target_value", "qualitative_objective", "objective has no numeric target; measure it through key results")
	}
	if okr := obj.Attributes.OKR; okr != nil && okr.Confidence != nil {
		if c := *okr.Confidence; c < 0 || c > 1 {
			v.warn("framework_attributes.confidence", "confidence_range", "confidence should be between 0 and 1")
		}
	}
	if obj.TimeframeType != "" && obj.TimeframeType != framework.TimeframeQuarter && obj.TimeframeType != framework.TimeframeYear {
		v.warn("timeframe_type", "unusual_cadence", "OKRs are normally set quarterly or annually")
	}
	if len(obj.Title) > 120 {
		v.warn("title", "long_title", "objectives read best as a short, inspiring sentence")
	}
	if strings.TrimSpace(obj.OwnerID) == "" {
		v.warn("owner_id", "missing_owner", "assign an owner so check-ins have someone accountable")
	}
	return v.result()
}

func (t *OKR) CalculateCompatibility(obj framework.UniversalObjective) framework.Compatibility {
	cadence := credit(obj.TimeframeType == framework.TimeframeQuarter)
	if obj.TimeframeType == framework.TimeframeYear {
		cadence = 0.5
	}
	start, _ := obj.Attributes.StartValue()
	graded := obj.ProgressMethod == framework.ProgressDecimal || obj.ProgressMethod == framework.ProgressPercentage
	return scoreCompatibility(framework.KindOKR, []compatCheck{
		{name: "quarterly_cadence", weight: 25, credit: cadence, detail: "OKRs are set quarterly"},
		{name: "graded_progress", weight: 25, credit: credit(graded), detail: "scored on a 0.0 to 1.0 scale"},
		{name: "owner_assigned", weight: 15, credit: credit(strings.TrimSpace(obj.OwnerID) != ""), detail: "owner runs check-ins"},
		{name: "team_assigned", weight: 10, credit: credit(strings.TrimSpace(obj.TeamID) != ""), detail: "team alignment"},
		{name: "measurable_range", weight: 25, credit: credit(obj.TargetValue != start), detail: "target differs from start value"},
	})
}

func (t *OKR) ScoreOrganizationFit(m framework.OrganizationMetrics) framework.FitScore {
	h := t.opts.Heuristics.OKR
	return scoreFit(framework.KindOKR, []fitCheck{
		{weight: 20, ok: m.EmployeeCount >= h.MinEmployees,
			pro: "enough people to cascade objectives across teams",
			con: fmt.Sprintf("fewer than %d employees; OKR overhead may outweigh alignment gains", h.MinEmployees)},
		{weight: 25, ok: industryMatches(m.Industry, h.Industries),
			pro: "industry has a strong OKR tradition",
			con: ""},
		{weight: 15, ok: m.CompletionRate <= h.MaxCompletionRate,
			pro: "completion history leaves room for stretch goals",
			con: "near-perfect completion suggests goals are set too safely for OKR stretch"},
		{weight: 15, ok: m.ObjectivesPerPerson >= h.MinObjectivesPerPerson,
			pro: "goal-setting is already part of everyday work",
			con: "few objectives per person; OKRs need a habit of measurable goals"},
		{weight: 15, ok: m.IsDistributed,
			pro: "transparent OKRs help align distributed teams",
			con: ""},
		{weight: 10, ok: m.IsStartup || m.IsLarge,
			pro: "OKRs scale from fast-moving startups to large enterprises",
			con: ""},
	})
}

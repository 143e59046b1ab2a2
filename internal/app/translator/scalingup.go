package translator

import (
	"fmt"
	"strings"

	"goalbridge/internal/domain/framework"
)

// Scaling Up colours.
const (
	suRed        = "Red"
	suYellow     = "Yellow"
	suGreen      = "Green"
	suSuperGreen = "Super Green"
)

var scalingUpFields = fieldNames{
	ID:          "priority_id",
	Title:       "priority",
	Description: "description",
	Owner:       "accountable_id",
	Team:        "team_id",
	Parent:      "parent_priority_id",
	Start:       "period_start",
	End:         "due_date",
	Timeframe:   "horizon",
	Current:     "current_value",
	Target:      "target_value",
	Method:      "measurement_type",
	Type:        "priority_type",
	Lifecycle:   "lifecycle_status",
}

// ScalingUp translates objectives into priorities tracked against a critical
// number with red, yellow, green and super green thresholds.
type ScalingUp struct {
	opts Options
}

var _ Translator = (*ScalingUp)(nil)

func NewScalingUp(opts Options) *ScalingUp {
	return &ScalingUp{opts: opts.normalized()}
}

func (t *ScalingUp) Kind() framework.Kind { return framework.KindScalingUp }

func (t *ScalingUp) Terminology(role string) string {
	return framework.Term(framework.KindScalingUp, role)
}

func (t *ScalingUp) TerminologyTable() map[string]string {
	return framework.TerminologyTable(framework.KindScalingUp)
}

// thresholds returns the explicit critical number or one derived from the
// target at 75%, 100% and 125%. A target of zero or below collapses every
// threshold onto the target.
func thresholds(obj framework.UniversalObjective) (framework.CriticalNumber, bool) {
	if cn := obj.Attributes.CriticalNumber(); cn != nil {
		return *cn, true
	}
	if obj.TargetValue <= 0 {
		t := obj.TargetValue
		return framework.CriticalNumber{Red: t, Yellow: t, Green: t, SuperGreen: t}, false
	}
	return framework.CriticalNumber{
		Red:        0,
		Yellow:     obj.TargetValue * 0.75,
		Green:      obj.TargetValue,
		SuperGreen: obj.TargetValue * 1.25,
	}, false
}

func colourFor(current float64, cn framework.CriticalNumber) string {
	if cn.Green < cn.Red {
		switch {
		case current <= cn.SuperGreen:
			return suSuperGreen
		case current <= cn.Green:
			return suGreen
		case current <= cn.Yellow:
			return suYellow
		default:
			return suRed
		}
	}
	switch {
	case current >= cn.SuperGreen:
		return suSuperGreen
	case current >= cn.Green:
		return suGreen
	case current >= cn.Yellow:
		return suYellow
	default:
		return suRed
	}
}

func colourKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

func (t *ScalingUp) TranslateCore(obj framework.UniversalObjective, rule *framework.MappingRule) framework.Fields {
	f := encodeCore(framework.KindScalingUp, obj, scalingUpFields)
	p := t.CalculateProgress(obj)
	cn, _ := thresholds(obj)
	f[keyStatus] = p.Status
	f["color"] = p.Color
	f["percentage"] = p.Percentage
	f["critical_number"] = map[string]any{
		"name":        cn.Name,
		"red":         cn.Red,
		"yellow":      cn.Yellow,
		"green":       cn.Green,
		"super_green": cn.SuperGreen,
	}
	if su := obj.Attributes.ScalingUp; su != nil && su.Theme != "" {
		f["theme"] = su.Theme
	}
	f[keyTypeLabel] = typeLabel(framework.KindScalingUp, obj, rule)
	return f
}

func (t *ScalingUp) ToUniversal(fields framework.Fields) (framework.UniversalObjective, error) {
	return decodeCore(framework.KindScalingUp, fields, scalingUpFields)
}

func (t *ScalingUp) CalculateProgress(obj framework.UniversalObjective) framework.Progress {
	cn, explicit := thresholds(obj)
	if !explicit && obj.TargetValue <= 0 {
		return metTarget(obj)
	}
	var pct float64
	switch {
	case cn.Green < cn.Red:
		if span := cn.Red - cn.Green; span != 0 {
			pct = clamp01((cn.Red - obj.CurrentValue) / span)
		}
	case obj.TargetValue > 0:
		pct = clamp01(obj.CurrentValue / obj.TargetValue)
	case obj.CurrentValue >= obj.TargetValue:
		pct = 1
	}
	colour := colourFor(obj.CurrentValue, cn)
	return framework.Progress{
		Percentage: round2(pct * 100),
		Status:     colour,
		Score:      pct,
		IsComplete: colour == suGreen || colour == suSuperGreen,
		Color:      colourKey(colour),
	}
}

// metTarget colours a priority with no usable scale: Green once current
// reaches the target, Red before.
func metTarget(obj framework.UniversalObjective) framework.Progress {
	if obj.CurrentValue >= obj.TargetValue {
		return framework.Progress{Percentage: 100, Status: suGreen, Score: 1, IsComplete: true, Color: colourKey(suGreen)}
	}
	return framework.Progress{Percentage: 0, Status: suRed, Score: 0, Color: colourKey(suRed)}
}

func (t *ScalingUp) VisualizationConfig(framework.UniversalObjective) framework.VisualizationConfig {
	return framework.VisualizationConfig{
		ChartType: "traffic_light",
		Layout:    "one_page_plan_row",
		ColorScheme: map[string]string{
			suRed:        "#dc2626",
			suYellow:     "#facc15",
			suGreen:      "#16a34a",
			suSuperGreen: "#15803d",
		},
		Display: "red_yellow_green",
	}
}

func (t *ScalingUp) UIComponents(obj framework.UniversalObjective) []framework.UIComponent {
	cn, explicit := thresholds(obj)
	components := []framework.UIComponent{
		{Component: "PriorityRow", Props: map[string]any{"show_who": true}},
		{Component: "CriticalNumberGauge", Props: map[string]any{
			"red": cn.Red, "yellow": cn.Yellow, "green": cn.Green, "super_green": cn.SuperGreen, "derived": !explicit,
		}},
	}
	if su := obj.Attributes.ScalingUp; su != nil && su.Theme != "" {
		components = append(components, framework.UIComponent{Component: "ThemeBanner", Props: map[string]any{"theme": su.Theme}})
	}
	if obj.Status == framework.StatusAtRisk {
		components = append(components, framework.UIComponent{Component: "HuddleStuckFlag"})
	}
	return components
}

func (t *ScalingUp) ValidationRules(framework.UniversalObjective) []framework.ValidationRule {
	return []framework.ValidationRule{
		{Field: scalingUpFields.Title, Rule: "required", Message: "Priorities need a name", Blocking: true},
		{Field: scalingUpFields.Owner, Rule: "required", Message: "Every priority has one accountable Who", Blocking: true},
		{Field: scalingUpFields.Timeframe, Rule: "in:quarter,year", Message: "Priorities are quarterly or annual", Blocking: true},
		{Field: "critical_number", Rule: "ordered_thresholds", Message: "Thresholds run red, yellow, green, super green", Blocking: true},
		{Field: "theme", Rule: "recommended", Message: "Tie company priorities to the quarterly theme", Blocking: false},
	}
}

func (t *ScalingUp) AvailableActions(obj framework.UniversalObjective) []framework.Action {
	return lifecycleActions(framework.KindScalingUp, obj, map[framework.Status][]framework.Action{
		framework.StatusPlanned: {
			{ID: "set_critical_number", Label: "Set critical number"},
		},
		framework.StatusActive: {
			{ID: "update_critical_number", Label: "Update critical number"},
			{ID: "review_in_huddle", Label: "Review in Daily Huddle"},
		},
		framework.StatusAtRisk: {
			{ID: "update_critical_number", Label: "Update critical number"},
			{ID: "raise_stuck", Label: "Raise as Stuck"},
		},
	})
}

func orderedThresholds(cn framework.CriticalNumber) bool {
	up := cn.Red <= cn.Yellow && cn.Yellow <= cn.Green && cn.Green <= cn.SuperGreen
	down := cn.Red >= cn.Yellow && cn.Yellow >= cn.Green && cn.Green >= cn.SuperGreen
	return up || down
}

func (t *ScalingUp) Validate(obj framework.UniversalObjective) framework.ValidationResult {
	v := &validation{}
	checkCommon(v, framework.KindScalingUp, obj)
	if strings.TrimSpace(obj.OwnerID) == "" {
		v.fail("owner_id", "missing_owner", "every priority needs one accountable Who")
	}
	if obj.TimeframeType != framework.TimeframeQuarter && obj.TimeframeType != framework.TimeframeYear {
		v.fail("timeframe_type", "invalid_horizon", "Scaling Up priorities are quarterly or annual")
	}
	cn := obj.Attributes.CriticalNumber()
	switch {
	case cn == nil && obj.TargetValue <= 0:
		v.warn("target_value", "unmeasurable", "set a target or a critical number so the priority can be coloured")
	case cn == nil:
		v.warn("framework_attributes.critical_number", "derived_thresholds", "no critical number; thresholds derived from the target")
	case !orderedThresholds(*cn):
		v.fail("framework_attributes.critical_number", "invalid_critical_number", "critical number thresholds must be ordered")
	}
	if !obj.ObjectiveType.IsSubGoal() && (obj.Attributes.ScalingUp == nil || obj.Attributes.ScalingUp.Theme == "") {
		v.warn("framework_attributes.theme", "missing_theme", "link the priority to a quarterly theme")
	}
	return v.result()
}

func (t *ScalingUp) CalculateCompatibility(obj framework.UniversalObjective) framework.Compatibility {
	horizon := obj.TimeframeType == framework.TimeframeQuarter || obj.TimeframeType == framework.TimeframeYear
	method := credit(obj.ProgressMethod == framework.ProgressDecimal || obj.ProgressMethod == framework.ProgressPercentage)
	if obj.ProgressMethod == framework.ProgressBinary {
		method = 0.5
	}
	return scoreCompatibility(framework.KindScalingUp, []compatCheck{
		{name: "planning_horizon", weight: 20, credit: credit(horizon), detail: "quarterly or annual"},
		{name: "measurable_target", weight: 25, credit: credit(obj.TargetValue > 0 || obj.Attributes.CriticalNumber() != nil), detail: "critical number can be derived"},
		{name: "accountable_who", weight: 25, credit: credit(strings.TrimSpace(obj.OwnerID) != ""), detail: "one accountable person"},
		{name: "team_assigned", weight: 10, credit: credit(strings.TrimSpace(obj.TeamID) != ""), detail: "executive or departmental team"},
		{name: "graded_progress", weight: 20, credit: method, detail: "numeric progress maps to colours"},
	})
}

func (t *ScalingUp) ScoreOrganizationFit(m framework.OrganizationMetrics) framework.FitScore {
	h := t.opts.Heuristics.ScalingUp
	return scoreFit(framework.KindScalingUp, []fitCheck{
		{weight: 30, ok: h.IdealEmployees.Contains(m.EmployeeCount),
			pro: fmt.Sprintf("headcount of %d is in the scale-up range", m.EmployeeCount),
			con: fmt.Sprintf("Scaling Up targets %d-%d employees", h.IdealEmployees.Min, h.IdealEmployees.Max)},
		{weight: 20, ok: m.OrgAgeMonths >= h.MinAgeMonths,
			pro: "established enough to commit to a one-page strategic plan",
			con: "too young for a multi-year BHAG process"},
		{weight: 20, ok: m.DepartmentCount >= h.MinDepartments,
			pro: "multiple departments benefit from aligned priorities",
			con: "few departments; the full Scaling Up toolkit is heavy"},
		{weight: 10, ok: m.CompletionRate >= h.MinCompletionRate,
			pro: "execution track record supports aggressive growth goals",
			con: "low completion rate; fix execution before scaling"},
		{weight: 10, ok: industryMatches(m.Industry, h.Industries),
			pro: "growth-oriented industry",
			con: ""},
		{weight: 10, ok: !m.IsStartup,
			pro: "past the startup phase where Scaling Up applies",
			con: "startup stage; simpler goal systems fit better"},
	})
}

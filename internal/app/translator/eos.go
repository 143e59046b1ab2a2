package translator

import (
	"fmt"
	"strings"

	"goalbridge/internal/domain/framework"
)

// EOS statuses.
const (
	eosOnTrack  = "On-Track"
	eosOffTrack = "Off-Track"
	eosDone     = "Done"
)

var eosFields = fieldNames{
	ID:          "rock_id",
	Title:       "rock",
	Description: "description",
	Owner:       "owner_id",
	Team:        "team_id",
	Parent:      "parent_rock_id",
	Start:       "quarter_start",
	End:         "due_date",
	Timeframe:   "timeframe",
	Current:     "current_value",
	Target:      "goal_value",
	Method:      "completion_type",
	Type:        "rock_type",
	Lifecycle:   "lifecycle_status",
}

// EOS translates objectives into Rocks: one owner, one quarter, done or not done.
type EOS struct {
	opts Options
}

var _ Translator = (*EOS)(nil)

func NewEOS(opts Options) *EOS {
	return &EOS{opts: opts.normalized()}
}

func (t *EOS) Kind() framework.Kind { return framework.KindEOS }

func (t *EOS) Terminology(role string) string { return framework.Term(framework.KindEOS, role) }

func (t *EOS) TerminologyTable() map[string]string { return framework.TerminologyTable(framework.KindEOS) }

func (t *EOS) TranslateCore(obj framework.UniversalObjective, rule *framework.MappingRule) framework.Fields {
	f := encodeCore(framework.KindEOS, obj, eosFields)
	p := t.CalculateProgress(obj)
	f[keyStatus] = p.Status
	f["is_complete"] = p.IsComplete
	f["quarter"] = quarterLabel(obj)
	f[keyTypeLabel] = typeLabel(framework.KindEOS, obj, rule)
	if p.Milestones != nil {
		f["milestone_progress"] = fmt.Sprintf("%d/%d", p.Milestones.Completed, p.Milestones.Total)
	}
	return f
}

func (t *EOS) ToUniversal(fields framework.Fields) (framework.UniversalObjective, error) {
	return decodeCore(framework.KindEOS, fields, eosFields)
}

// CalculateProgress is binary unless milestones exist, in which case the
// completed share of milestones drives the percentage.
func (t *EOS) CalculateProgress(obj framework.UniversalObjective) framework.Progress {
	if milestones := obj.Attributes.Milestones(); len(milestones) > 0 {
		done := 0
		for _, m := range milestones {
			if m.Completed {
				done++
			}
		}
		pct := round2(float64(done) / float64(len(milestones)) * 100)
		status := eosOnTrack
		switch {
		case done == len(milestones):
			status = eosDone
		case pct < 25:
			status = eosOffTrack
		}
		return framework.Progress{
			Percentage: pct,
			Status:     status,
			IsComplete: done == len(milestones),
			Score:      pct / 100,
			Milestones: &framework.MilestoneProgress{Completed: done, Total: len(milestones)},
		}
	}

	if obj.CurrentValue >= obj.TargetValue {
		return framework.Progress{Percentage: 100, Status: eosDone, IsComplete: true, Score: 1}
	}
	status := eosOnTrack
	if obj.Status == framework.StatusAtRisk {
		status = eosOffTrack
	}
	return framework.Progress{Percentage: 0, Status: status}
}

func (t *EOS) VisualizationConfig(obj framework.UniversalObjective) framework.VisualizationConfig {
	chart := "binary_indicator"
	if len(obj.Attributes.Milestones()) > 0 {
		chart = "milestone_checklist"
	}
	return framework.VisualizationConfig{
		ChartType: chart,
		Layout:    "rock_sheet",
		ColorScheme: map[string]string{
			eosOnTrack:  "#16a34a",
			eosOffTrack: "#dc2626",
			eosDone:     "#2563eb",
		},
		Display: "on_off_track",
	}
}

func (t *EOS) UIComponents(obj framework.UniversalObjective) []framework.UIComponent {
	components := []framework.UIComponent{
		{Component: "RockCard", Props: map[string]any{"quarter": quarterLabel(obj), "show_owner": true}},
		{Component: "OnOffTrackToggle", Props: map[string]any{"binary": true}},
	}
	if ms := obj.Attributes.Milestones(); len(ms) > 0 {
		components = append(components, framework.UIComponent{Component: "MilestoneChecklist", Props: map[string]any{"count": len(ms)}})
	}
	if obj.Status == framework.StatusAtRisk {
		components = append(components, framework.UIComponent{Component: "IssueDropButton", Props: map[string]any{"list": "Issues List"}})
	}
	return components
}

func (t *EOS) ValidationRules(framework.UniversalObjective) []framework.ValidationRule {
	return []framework.ValidationRule{
		{Field: eosFields.Title, Rule: "required", Message: "Every Rock needs a name", Blocking: true},
		{Field: eosFields.Owner, Rule: "required", Message: "Every Rock has exactly one owner", Blocking: true},
		{Field: eosFields.Timeframe, Rule: "equals:quarter", Message: "Rocks are set for one quarter", Blocking: true},
		{Field: eosFields.End, Rule: "required", Message: "Rocks need a due date", Blocking: true},
		{Field: eosFields.Method, Rule: "equals:binary", Message: "Rocks are either done or not done", Blocking: false},
	}
}

func (t *EOS) AvailableActions(obj framework.UniversalObjective) []framework.Action {
	return lifecycleActions(framework.KindEOS, obj, map[framework.Status][]framework.Action{
		framework.StatusActive: {
			{ID: "mark_off_track", Label: "Mark Off-Track"},
			{ID: "drop_to_issues", Label: "Drop to Issues List"},
		},
		framework.StatusAtRisk: {
			{ID: "drop_to_issues", Label: "Drop to Issues List"},
		},
		framework.StatusCompleted: {
			{ID: "roll_forward", Label: "Carry into next quarter"},
		},
	})
}

func (t *EOS) Validate(obj framework.UniversalObjective) framework.ValidationResult {
	v := &validation{}
	checkCommon(v, framework.KindEOS, obj)
	if strings.TrimSpace(obj.OwnerID) == "" {
		v.fail("owner_id", "missing_owner", "a Rock must have exactly one owner")
	}
	if obj.TimeframeType != framework.TimeframeQuarter {
		v.fail("timeframe_type", "not_quarterly", "Rocks are 90-day priorities; use a quarter timeframe")
	}
	if obj.ProgressMethod != "" && obj.ProgressMethod != framework.ProgressBinary {
		v.warn("progress_method", "not_binary", "Rocks are tracked as done or not done")
	}
	if obj.HasWindow() && obj.TimeframeEnd.Sub(obj.TimeframeStart).Hours() > 24*100 {
		v.warn("timeframe_end", "long_window", "Rock spans more than one quarter")
	}
	if strings.TrimSpace(obj.TeamID) == "" {
		v.warn("team_id", "missing_team", "Rocks are normally set by a leadership or departmental team")
	}
	if obj.Status == framework.StatusCompleted {
		for _, m := range obj.Attributes.Milestones() {
			if !m.Completed {
				v.warn("framework_attributes.milestones", "open_milestones", "completed Rock still has open milestones")
				break
			}
		}
	}
	return v.result()
}

func (t *EOS) CalculateCompatibility(obj framework.UniversalObjective) framework.Compatibility {
	binary := credit(obj.ProgressMethod == framework.ProgressBinary)
	if binary == 0 && len(obj.Attributes.Milestones()) > 0 {
		binary = 0.5
	}
	return scoreCompatibility(framework.KindEOS, []compatCheck{
		{name: "quarterly_timeframe", weight: 30, credit: credit(obj.TimeframeType == framework.TimeframeQuarter), detail: "Rocks run for one quarter"},
		{name: "binary_completion", weight: 20, credit: binary, detail: "Rocks are done or not done"},
		{name: "single_owner", weight: 25, credit: credit(strings.TrimSpace(obj.OwnerID) != ""), detail: "one accountable owner"},
		{name: "team_assigned", weight: 10, credit: credit(strings.TrimSpace(obj.TeamID) != ""), detail: "set by a team"},
		{name: "measurable_target", weight: 15, credit: credit(obj.TargetValue > 0), detail: "target value defined"},
	})
}

func (t *EOS) ScoreOrganizationFit(m framework.OrganizationMetrics) framework.FitScore {
	h := t.opts.Heuristics.EOS
	return scoreFit(framework.KindEOS, []fitCheck{
		{weight: 30, ok: h.IdealEmployees.Contains(m.EmployeeCount),
			pro: fmt.Sprintf("headcount of %d suits EOS (%d-%d employees)", m.EmployeeCount, h.IdealEmployees.Min, h.IdealEmployees.Max),
			con: fmt.Sprintf("EOS is built for %d-%d employees", h.IdealEmployees.Min, h.IdealEmployees.Max)},
		{weight: 20, ok: h.IdealTeams.Contains(m.TeamCount),
			pro: "team structure fits a single leadership team cadence",
			con: "team count is outside the range EOS handles well"},
		{weight: 15, ok: m.OrgAgeMonths >= h.MinAgeMonths,
			pro: "established organization ready for a full operating system",
			con: "young organizations often outgrow EOS structure quickly"},
		{weight: 15, ok: m.CompletionRate >= h.MinCompletionRate,
			pro: "strong completion history suits binary Rocks",
			con: "low completion rate; binary Rocks may feel punishing"},
		{weight: 10, ok: industryMatches(m.Industry, h.Industries),
			pro: "industry commonly runs on EOS",
			con: ""},
		{weight: 10, ok: !m.IsDistributed,
			pro: "single location supports weekly Level 10 Meetings",
			con: "multiple locations make in-person L10 meetings harder"},
	})
}

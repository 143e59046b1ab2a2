package translator

import (
	"fmt"
	"strings"

	"goalbridge/internal/domain/framework"
)

// 4DX scoreboard states.
const (
	fdxWinning  = "Winning"
	fdxLosing   = "Losing"
	fdxAchieved = "Achieved"
)

const leadMeasureWinningScore = 0.8

var fourDXFields = fieldNames{
	ID:          "wig_id",
	Title:       "wig",
	Description: "description",
	Owner:       "wig_owner_id",
	Team:        "team_id",
	Parent:      "parent_wig_id",
	Start:       "start_date",
	End:         "by_when",
	Timeframe:   "cadence",
	Current:     "lag_current",
	Target:      "to_value",
	Method:      "measurement_type",
	Type:        "wig_type",
	Lifecycle:   "lifecycle_status",
}

// FourDX translates objectives into Wildly Important Goals with a lag measure
// and the lead measures that drive it.
type FourDX struct {
	opts Options
}

var _ Translator = (*FourDX)(nil)

func NewFourDX(opts Options) *FourDX {
	return &FourDX{opts: opts.normalized()}
}

func (t *FourDX) Kind() framework.Kind { return framework.KindFourDX }

func (t *FourDX) Terminology(role string) string { return framework.Term(framework.KindFourDX, role) }

func (t *FourDX) TerminologyTable() map[string]string {
	return framework.TerminologyTable(framework.KindFourDX)
}

func fromValue(obj framework.UniversalObjective) (float64, string) {
	if obj.Attributes.FourDX != nil && obj.Attributes.FourDX.LagMeasure != nil {
		return obj.Attributes.FourDX.LagMeasure.FromValue, obj.Attributes.FourDX.LagMeasure.Unit
	}
	return 0, ""
}

// wigStatement renders the "From X to Y by When" form of a goal.
func wigStatement(obj framework.UniversalObjective) string {
	from, unit := fromValue(obj)
	when := "TBD"
	if !obj.TimeframeEnd.IsZero() {
		when = obj.TimeframeEnd.Format("Jan 2, 2006")
	}
	if unit != "" {
		unit = " " + unit
	}
	return fmt.Sprintf("From %s%s to %s%s by %s", formatNumber(from), unit, formatNumber(obj.TargetValue), unit, when)
}

func (t *FourDX) TranslateCore(obj framework.UniversalObjective, rule *framework.MappingRule) framework.Fields {
	f := encodeCore(framework.KindFourDX, obj, fourDXFields)
	p := t.CalculateProgress(obj)
	from, _ := fromValue(obj)
	f["from_value"] = from
	f["statement"] = wigStatement(obj)
	f[keyStatus] = p.Status
	f["lag_progress"] = p.Score
	f["lead_measure_count"] = len(obj.Attributes.LeadMeasures())
	if p.LeadScore != nil {
		f["lead_score"] = *p.LeadScore
	}
	f[keyTypeLabel] = typeLabel(framework.KindFourDX, obj, rule)
	return f
}

func (t *FourDX) ToUniversal(fields framework.Fields) (framework.UniversalObjective, error) {
	return decodeCore(framework.KindFourDX, fields, fourDXFields)
}

// CalculateProgress scores the lag measure from its baseline and reports the
// team as Winning when the lag is on pace with elapsed time and the lead
// measures are being hit.
func (t *FourDX) CalculateProgress(obj framework.UniversalObjective) framework.Progress {
	from, _ := fromValue(obj)
	lag := 0.0
	if span := obj.TargetValue - from; span != 0 {
		lag = clamp01((obj.CurrentValue - from) / span)
	}

	p := framework.Progress{
		Percentage: round2(lag * 100),
		Score:      lag,
		IsComplete: lag >= 1,
		Trend:      framework.TrendOnPace,
	}

	leads := obj.Attributes.LeadMeasures()
	leadsOK := true
	if len(leads) > 0 {
		var sum float64
		for _, l := range leads {
			if l.Target > 0 {
				sum += clamp01(l.Current / l.Target)
			}
		}
		score := sum / float64(len(leads))
		p.LeadScore = framework.Float(score)
		leadsOK = score >= leadMeasureWinningScore
	}

	onPace := true
	if elapsed, ok := elapsedFraction(obj, t.opts.Now()); ok {
		p.Expected = framework.Float(elapsed)
		p.Trend = trendFor(lag, elapsed)
		onPace = lag >= elapsed
	}

	switch {
	case lag >= 1:
		p.Status = fdxAchieved
	case onPace && leadsOK:
		p.Status = fdxWinning
	default:
		p.Status = fdxLosing
	}
	return p
}

func (t *FourDX) VisualizationConfig(framework.UniversalObjective) framework.VisualizationConfig {
	return framework.VisualizationConfig{
		ChartType: "scoreboard",
		Layout:    "lag_lead_split",
		ColorScheme: map[string]string{
			fdxWinning:  "#16a34a",
			fdxLosing:   "#dc2626",
			fdxAchieved: "#2563eb",
		},
		ShowTrend: true,
		Display:   "winning_losing",
	}
}

func (t *FourDX) UIComponents(obj framework.UniversalObjective) []framework.UIComponent {
	from, unit := fromValue(obj)
	components := []framework.UIComponent{
		{Component: "CompellingScoreboard", Props: map[string]any{"from": from, "to": obj.TargetValue, "unit": unit}},
	}
	if leads := obj.Attributes.LeadMeasures(); len(leads) > 0 {
		frequency := "weekly"
		if obj.Attributes.FourDX.UpdateFrequency != "" {
			frequency = obj.Attributes.FourDX.UpdateFrequency
		}
		components = append(components, framework.UIComponent{Component: "LeadMeasureTracker", Props: map[string]any{"count": len(leads), "frequency": frequency}})
	}
	return append(components,
		framework.UIComponent{Component: "CadenceOfAccountability", Props: map[string]any{"meeting": "WIG Session", "cadence": "weekly"}},
		framework.UIComponent{Component: "CommitmentLog"},
	)
}

func (t *FourDX) ValidationRules(obj framework.UniversalObjective) []framework.ValidationRule {
	rules := []framework.ValidationRule{
		{Field: fourDXFields.Title, Rule: "required", Message: "State the WIG as From X to Y by When", Blocking: true},
		{Field: fourDXFields.Target, Rule: "not_equal:from_value", Message: "The lag measure needs a finish line different from its start", Blocking: true},
		{Field: fourDXFields.End, Rule: "required", Message: "Every WIG has a by-when date", Blocking: true},
		{Field: fourDXFields.Team, Rule: "required", Message: "WIGs belong to a frontline team", Blocking: false},
	}
	if !obj.ObjectiveType.IsSubGoal() {
		rules = append(rules, framework.ValidationRule{Field: "lead_measures", Rule: "min:1", Message: "Define lead measures the team can influence", Blocking: false})
	}
	return rules
}

func (t *FourDX) AvailableActions(obj framework.UniversalObjective) []framework.Action {
	inFlight := []framework.Action{
		{ID: "log_lead_measure", Label: "Log lead measure"},
		{ID: "make_commitment", Label: "Make a WIG Session commitment"},
		{ID: "update_scoreboard", Label: "Update scoreboard"},
	}
	return lifecycleActions(framework.KindFourDX, obj, map[framework.Status][]framework.Action{
		framework.StatusPlanned: {
			{ID: "define_lead_measures", Label: "Define lead measures"},
		},
		framework.StatusActive: inFlight,
		framework.StatusAtRisk: inFlight,
	})
}

func (t *FourDX) Validate(obj framework.UniversalObjective) framework.ValidationResult {
	v := &validation{}
	checkCommon(v, framework.KindFourDX, obj)
	from, _ := fromValue(obj)
	if obj.TargetValue == from {
		v.fail("target_value", "no_lag_range", "a WIG needs a lag measure that moves from X to Y")
	}
	if obj.TimeframeEnd.IsZero() {
		v.fail("timeframe_end", "missing_deadline", "a WIG needs a by-when date")
	}
	leads := obj.Attributes.LeadMeasures()
	if !obj.ObjectiveType.IsSubGoal() {
		switch {
		case len(leads) == 0:
			v.warn("framework_attributes.lead_measures", "missing_lead_measures", "add lead measures that predict the lag measure")
		case len(leads) > 3:
			v.warn("framework_attributes.lead_measures", "too_many_lead_measures", "teams rarely sustain more than three lead measures")
		}
	}
	for i, l := range leads {
		if l.Target <= 0 {
			v.warn(fmt.Sprintf("framework_attributes.lead_measures[%d].target", i), "lead_target", "lead measure needs a positive target")
		}
	}
	if strings.TrimSpace(obj.TeamID) == "" {
		v.warn("team_id", "missing_team", "WIGs are owned by a frontline team")
	}
	if strings.TrimSpace(obj.OwnerID) == "" {
		v.warn("owner_id", "missing_owner", "name a WIG owner to run the weekly session")
	}
	return v.result()
}

func (t *FourDX) CalculateCompatibility(obj framework.UniversalObjective) framework.Compatibility {
	from, _ := fromValue(obj)
	leads := credit(len(obj.Attributes.LeadMeasures()) > 0 || obj.ObjectiveType == framework.TypeLeadMeasure)
	return scoreCompatibility(framework.KindFourDX, []compatCheck{
		{name: "measurable_lag", weight: 30, credit: credit(obj.TargetValue != from), detail: "from X to Y"},
		{name: "lead_measures", weight: 25, credit: leads, detail: "predictive, influenceable activity"},
		{name: "owner_assigned", weight: 15, credit: credit(strings.TrimSpace(obj.OwnerID) != ""), detail: "WIG owner"},
		{name: "team_assigned", weight: 20, credit: credit(strings.TrimSpace(obj.TeamID) != ""), detail: "frontline team"},
		{name: "deadline", weight: 10, credit: credit(!obj.TimeframeEnd.IsZero()), detail: "by when"},
	})
}

func (t *FourDX) ScoreOrganizationFit(m framework.OrganizationMetrics) framework.FitScore {
	h := t.opts.Heuristics.FourDX
	return scoreFit(framework.KindFourDX, []fitCheck{
		{weight: 25, ok: m.EmployeeCount >= h.MinEmployees,
			pro: "large frontline workforce benefits from a shared scoreboard",
			con: fmt.Sprintf("4DX pays off most above %d employees", h.MinEmployees)},
		{weight: 25, ok: m.TeamCount >= h.MinTeams,
			pro: "many teams can each own a WIG",
			con: "few teams to run WIG sessions with"},
		{weight: 20, ok: industryMatches(m.Industry, h.Industries),
			pro: "frontline-heavy industry suits lead measure discipline",
			con: ""},
		{weight: 20, ok: m.CompletionRate < h.MaxCompletionRate,
			pro: "execution gap that 4DX is designed to close",
			con: "goals are already being completed; execution is not the bottleneck"},
		{weight: 10, ok: !m.IsStartup,
			pro: "stable operations allow a steady cadence of accountability",
			con: "startups change priorities faster than WIGs run"},
	})
}

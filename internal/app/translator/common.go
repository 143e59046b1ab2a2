package translator

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"goalbridge/internal/domain/framework"
)

// Field keys shared by every framework view.
const (
	keyFramework  = "framework"
	keySource     = "source_framework"
	keyAttributes = "attributes"
	keyCreatedAt  = "created_at"
	keyUpdatedAt  = "updated_at"
	keyStatus     = "status"
	keyTypeLabel  = "type_label"
)

// fieldNames binds universal concepts to the key a framework stores them under.
type fieldNames struct {
	ID          string
	Title       string
	Description string
	Owner       string
	Team        string
	Parent      string
	Start       string
	End         string
	Timeframe   string
	Current     string
	Target      string
	Method      string
	Type        string
	Lifecycle   string
}

func encodeCore(kind framework.Kind, obj framework.UniversalObjective, names fieldNames) framework.Fields {
	f := framework.Fields{
		keyFramework:      string(kind),
		keySource:         obj.FrameworkType,
		keyAttributes:     obj.Attributes.Clone(),
		keyCreatedAt:      obj.CreatedAt,
		keyUpdatedAt:      obj.UpdatedAt,
		names.ID:          obj.ID,
		names.Title:       obj.Title,
		names.Description: obj.Description,
		names.Owner:       obj.OwnerID,
		names.Team:        obj.TeamID,
		names.Parent:      nil,
		names.Start:       obj.TimeframeStart,
		names.End:         obj.TimeframeEnd,
		names.Timeframe:   string(obj.TimeframeType),
		names.Current:     obj.CurrentValue,
		names.Target:      obj.TargetValue,
		names.Method:      string(obj.ProgressMethod),
		names.Type:        string(obj.ObjectiveType),
		names.Lifecycle:   string(obj.Status),
	}
	if obj.ParentID != nil {
		f[names.Parent] = *obj.ParentID
	}
	return f
}

func decodeCore(kind framework.Kind, fields framework.Fields, names fieldNames) (framework.UniversalObjective, error) {
	var obj framework.UniversalObjective
	if len(fields) == 0 {
		return obj, &framework.MalformedObjectiveError{Reason: "empty payload"}
	}
	r := &fieldReader{fields: fields}
	obj.ID = r.str(names.ID)
	obj.Title = r.str(names.Title)
	obj.Description = r.str(names.Description)
	obj.OwnerID = r.str(names.Owner)
	obj.TeamID = r.str(names.Team)
	obj.ParentID = r.optionalStr(names.Parent)
	obj.TimeframeStart = r.time(names.Start)
	obj.TimeframeEnd = r.time(names.End)
	obj.TimeframeType = framework.TimeframeType(r.str(names.Timeframe))
	obj.CurrentValue = r.float(names.Current)
	obj.TargetValue = r.float(names.Target)
	obj.ProgressMethod = framework.ProgressMethod(r.str(names.Method))
	obj.ObjectiveType = framework.ObjectiveType(r.str(names.Type))
	obj.Status = framework.Status(r.str(names.Lifecycle))
	obj.Attributes = r.attributes(keyAttributes)
	obj.CreatedAt = r.time(keyCreatedAt)
	obj.UpdatedAt = r.time(keyUpdatedAt)
	if _, ok := fields[keySource]; ok {
		obj.FrameworkType = r.str(keySource)
	} else {
		obj.FrameworkType = string(kind)
	}
	if r.err != nil {
		return framework.UniversalObjective{}, r.err
	}
	if strings.TrimSpace(obj.Title) == "" {
		return framework.UniversalObjective{}, &framework.MalformedObjectiveError{Field: names.Title, Reason: "required"}
	}
	if err := obj.Check(); err != nil {
		return framework.UniversalObjective{}, err
	}
	return obj, nil
}

// fieldReader converts loosely typed values and keeps the first failure.
type fieldReader struct {
	fields framework.Fields
	err    error
}

func (r *fieldReader) fail(key string, err error) {
	if r.err == nil {
		r.err = &framework.MalformedObjectiveError{Field: key, Reason: err.Error()}
	}
}

func (r *fieldReader) value(key string) (any, bool) {
	v, ok := r.fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r *fieldReader) str(key string) string {
	v, ok := r.value(key)
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		r.fail(key, err)
	}
	return s
}

func (r *fieldReader) optionalStr(key string) *string {
	s := r.str(key)
	if s == "" {
		return nil
	}
	return &s
}

func (r *fieldReader) float(key string) float64 {
	v, ok := r.value(key)
	if !ok {
		return 0
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		r.fail(key, err)
	}
	return f
}

func (r *fieldReader) time(key string) time.Time {
	v, ok := r.value(key)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return *t
	case string:
		if strings.TrimSpace(t) == "" {
			return time.Time{}
		}
	}
	parsed, err := cast.ToTimeE(v)
	if err != nil {
		r.fail(key, err)
	}
	return parsed
}

func (r *fieldReader) attributes(key string) framework.Attributes {
	v, ok := r.value(key)
	if !ok {
		return framework.Attributes{}
	}
	switch a := v.(type) {
	case framework.Attributes:
		return a.Clone()
	case *framework.Attributes:
		return a.Clone()
	case json.RawMessage:
		return r.decodeAttributes(key, a)
	case []byte:
		return r.decodeAttributes(key, a)
	case string:
		return r.decodeAttributes(key, []byte(a))
	}
	raw, err := json.Marshal(v)
	if err != nil {
		r.fail(key, err)
		return framework.Attributes{}
	}
	return r.decodeAttributes(key, raw)
}

func (r *fieldReader) decodeAttributes(key string, raw []byte) framework.Attributes {
	var attrs framework.Attributes
	if len(strings.TrimSpace(string(raw))) == 0 {
		return attrs
	}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		r.fail(key, err)
	}
	return attrs
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// elapsedFraction is the share of the objective window already behind now.
func elapsedFraction(obj framework.UniversalObjective, now time.Time) (float64, bool) {
	if !obj.HasWindow() {
		return 0, false
	}
	total := obj.TimeframeEnd.Sub(obj.TimeframeStart)
	return clamp01(float64(now.Sub(obj.TimeframeStart)) / float64(total)), true
}

func trendFor(actual, expected float64) framework.Trend {
	const tolerance = 0.1
	switch {
	case actual > expected+tolerance:
		return framework.TrendAhead
	case actual < expected-tolerance:
		return framework.TrendBehind
	default:
		return framework.TrendOnPace
	}
}

func quarterLabel(obj framework.UniversalObjective) string {
	anchor := obj.TimeframeEnd
	if anchor.IsZero() {
		anchor = obj.TimeframeStart
	}
	if anchor.IsZero() {
		return ""
	}
	return fmt.Sprintf("Q%d %d", (int(anchor.Month())-1)/3+1, anchor.Year())
}

// typeLabel names the objective's role in the framework, honouring any
// terminology override of rule.
func typeLabel(kind framework.Kind, obj framework.UniversalObjective, rule *framework.MappingRule) string {
	role := framework.RoleFor(obj.ObjectiveType)
	if rule != nil {
		if term, ok := rule.Rules.Terminology[role]; ok && term != "" {
			return term
		}
	}
	return framework.Term(kind, role)
}

func formatNumber(v float64) string {
	return cast.ToString(math.Round(v*100) / 100)
}

// compatCheck is one weighted compatibility factor; credit is in [0, 1].
type compatCheck struct {
	name   string
	weight int
	credit float64
	detail string
}

func scoreCompatibility(kind framework.Kind, checks []compatCheck) framework.Compatibility {
	out := framework.Compatibility{Framework: kind, Factors: make([]framework.CompatibilityFactor, 0, len(checks))}
	var points float64
	for _, c := range checks {
		credit := clamp01(c.credit)
		earned := float64(c.weight) * credit
		points += earned
		out.Factors = append(out.Factors, framework.CompatibilityFactor{
			Name:   c.name,
			Weight: c.weight,
			Earned: round2(earned),
			Met:    credit >= 1,
			Detail: c.detail,
		})
	}
	points = round2(points)
	out.Score = clamp01(points / 100)
	out.Compatible = points >= 60
	return out
}

// fitCheck is one weighted organization fit heuristic.
type fitCheck struct {
	weight float64
	ok     bool
	pro    string
	con    string
}

func scoreFit(kind framework.Kind, checks []fitCheck) framework.FitScore {
	out := framework.FitScore{Framework: kind, Pros: []string{}, Cons: []string{}}
	for _, c := range checks {
		if c.ok {
			out.Score += c.weight
			if c.pro != "" {
				out.Pros = append(out.Pros, c.pro)
			}
			continue
		}
		if c.con != "" {
			out.Cons = append(out.Cons, c.con)
		}
	}
	out.Score = math.Max(0, math.Min(100, round2(out.Score)))
	return out
}

func credit(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

// validation accumulates issues for a ValidationResult.
type validation struct {
	errs  []framework.ValidationIssue
	warns []framework.ValidationIssue
}

func (v *validation) fail(field, code, msg string) {
	v.errs = append(v.errs, framework.ValidationIssue{Field: field, Code: code, Message: msg})
}

func (v *validation) warn(field, code, msg string) {
	v.warns = append(v.warns, framework.ValidationIssue{Field: field, Code: code, Message: msg})
}

func (v *validation) result() framework.ValidationResult {
	res := framework.ValidationResult{
		Errors:   v.errs,
		Warnings: v.warns,
	}
	if res.Errors == nil {
		res.Errors = []framework.ValidationIssue{}
	}
	if res.Warnings == nil {
		res.Warnings = []framework.ValidationIssue{}
	}
	res.Valid = len(res.Errors) == 0
	return res
}

// checkCommon runs the checks every framework shares: a title, an ordered
// window and the parent/sub-goal pairing.
func checkCommon(v *validation, kind framework.Kind, obj framework.UniversalObjective) {
	if strings.TrimSpace(obj.Title) == "" {
		v.fail("title", "required", fmt.Sprintf("%s needs a title", framework.Term(kind, framework.RoleObjective)))
	}
	if !obj.TimeframeStart.IsZero() && !obj.TimeframeEnd.IsZero() && obj.TimeframeEnd.Before(obj.TimeframeStart) {
		v.fail("timeframe_end", "invalid_timeframe", "timeframe ends before it starts")
	}
	switch {
	case obj.ObjectiveType.IsSubGoal() && !obj.HasParent():
		v.warn("parent_id", "missing_parent", fmt.Sprintf("%s should belong to a parent %s",
			framework.Term(kind, framework.RoleFor(obj.ObjectiveType)), framework.Term(kind, framework.RoleObjective)))
	case obj.ObjectiveType != "" && !obj.ObjectiveType.IsSubGoal() && obj.HasParent():
		v.warn("parent_id", "unexpected_parent", fmt.Sprintf("top level %s has a parent", framework.Term(kind, framework.RoleObjective)))
	}
}

// lifecycleActions returns the verbs every framework offers for a status,
// followed by the framework specific extras.
func lifecycleActions(kind framework.Kind, obj framework.UniversalObjective, extra map[framework.Status][]framework.Action) []framework.Action {
	term := framework.Term(kind, framework.RoleFor(obj.ObjectiveType))
	status := obj.Status
	if status == "" {
		status = framework.StatusActive
	}
	var actions []framework.Action
	switch status {
	case framework.StatusPlanned:
		actions = []framework.Action{
			{ID: "activate", Label: "Start " + term, Primary: true},
			{ID: "edit", Label: "Edit " + term},
			{ID: "delete", Label: "Delete " + term},
		}
	case framework.StatusActive:
		actions = []framework.Action{
			{ID: "update_progress", Label: "Update " + framework.Term(kind, framework.RoleProgress), Primary: true},
			{ID: "mark_at_risk", Label: "Flag as at risk"},
			{ID: "complete", Label: "Complete " + term},
			{ID: "edit", Label: "Edit " + term},
		}
	case framework.StatusAtRisk:
		actions = []framework.Action{
			{ID: "update_progress", Label: "Update " + framework.Term(kind, framework.RoleProgress), Primary: true},
			{ID: "mark_on_track", Label: "Clear at risk flag"},
			{ID: "complete", Label: "Complete " + term},
			{ID: "edit", Label: "Edit " + term},
		}
	case framework.StatusCompleted:
		actions = []framework.Action{
			{ID: "archive", Label: "Archive " + term, Primary: true},
			{ID: "reopen", Label: "Reopen " + term},
		}
	}
	return append(actions, extra[status]...)
}

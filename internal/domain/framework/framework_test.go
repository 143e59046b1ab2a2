package framework

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKindAcceptsAliases(t *testing.T) {
	for raw, want := range map[string]Kind{
		"EOS":        KindEOS,
		" okr ":      KindOKR,
		"fourdx":     KindFourDX,
		"4dx":        KindFourDX,
		"scaling-up": KindScalingUp,
	} {
		got, err := ParseKind(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseKind("made_up_framework")
	require.Error(t, err)
	assert.True(t, IsUnsupported(err))
}

func TestAttributesDecodeRoutesKnownKeysAndKeepsExtras(t *testing.T) {
	payload := `{
		"milestones": [{"title": "draft", "completed": true}, {"title": "ship", "completed": false}],
		"start_value": 10,
		"confidence": 0.8,
		"lead_measures": [{"name": "calls", "current": 4, "target": 10}],
		"theme": "Operation Delight",
		"critical_number": {"red": 10, "yellow": 20, "green": 30, "super_green": 40},
		"custom_flag": "kept"
	}`

	var attrs Attributes
	require.NoError(t, json.Unmarshal([]byte(payload), &attrs))

	require.NotNil(t, attrs.EOS)
	assert.Len(t, attrs.Milestones(), 2)
	start, ok := attrs.StartValue()
	assert.True(t, ok)
	assert.Equal(t, 10.0, start)
	require.Len(t, attrs.LeadMeasures(), 1)
	assert.Equal(t, "calls", attrs.LeadMeasures()[0].Name)
	require.NotNil(t, attrs.CriticalNumber())
	assert.Equal(t, 40.0, attrs.CriticalNumber().SuperGreen)
	assert.Equal(t, "kept", attrs.Extra["custom_flag"])

	encoded, err := json.Marshal(attrs)
	require.NoError(t, err)
	var flat map[string]any
	require.NoError(t, json.Unmarshal(encoded, &flat))
	assert.Equal(t, "kept", flat["custom_flag"])
	assert.Equal(t, "Operation Delight", flat["theme"])
	assert.Contains(t, flat, "milestones")
	assert.NotContains(t, flat, "EOS")
}

func TestAttributesCloneIsDeep(t *testing.T) {
	attrs := Attributes{
		EOS: &EOSAttributes{Milestones: []Milestone{{Title: "a"}}},
		OKR: &OKRAttributes{StartValue: Float(5)},
	}
	clone := attrs.Clone()
	clone.EOS.Milestones[0].Completed = true
	*clone.OKR.StartValue = 9

	assert.False(t, attrs.EOS.Milestones[0].Completed)
	assert.Equal(t, 5.0, *attrs.OKR.StartValue)
}

func TestDecodeUniversalRejectsUnknownEnums(t *testing.T) {
	_, err := DecodeUniversal(Fields{"id": "o-1", "title": "Grow", "status": "exploded"})
	require.Error(t, err)
	assert.True(t, IsMalformed(err))

	_, err = DecodeUniversal(Fields{"id": "o-1", "current_value": "lots"})
	require.Error(t, err)

	obj, err := DecodeUniversal(Fields{"id": "o-1", "title": "Grow", "target_value": 10, "framework_attributes": map[string]any{"unit": "%"}})
	require.NoError(t, err)
	assert.Equal(t, 10.0, obj.TargetValue)
	require.NotNil(t, obj.Attributes.OKR)
	assert.Equal(t, "%", obj.Attributes.OKR.Unit)
}

func TestSelectRulePrefersHigherPriority(t *testing.T) {
	rules := []MappingRule{
		{ID: "low", SourceFramework: "universal", TargetFramework: "okr", BusinessArea: AreaGoals, Priority: 1, IsActive: true},
		{ID: "inactive", SourceFramework: "universal", TargetFramework: "okr", BusinessArea: AreaGoals, Priority: 9, IsActive: false},
		{ID: "high", SourceFramework: "universal", TargetFramework: "OKR", BusinessArea: AreaGoals, Priority: 5, IsActive: true},
		{ID: "other-area", SourceFramework: "universal", TargetFramework: "okr", BusinessArea: AreaMetrics, Priority: 7, IsActive: true},
	}
	SortRules(rules)

	rule := SelectRule(rules, "", "okr", "")
	require.NotNil(t, rule)
	assert.Equal(t, "high", rule.ID)

	assert.Nil(t, SelectRule(rules, "eos", "okr", AreaGoals))
}

func TestApplyOverridesReplacesTopLevelKeysOnly(t *testing.T) {
	fields := Fields{"status": "On Track", "nested": map[string]any{"a": 1, "b": 2}}
	keys := ApplyOverrides(fields, map[string]any{"status": "Green", "nested": map[string]any{"a": 3}})

	assert.Equal(t, []string{"nested", "status"}, keys)
	assert.Equal(t, "Green", fields["status"])
	assert.Equal(t, map[string]any{"a": 3}, fields["nested"])
}

func TestTermFallsBackToRole(t *testing.T) {
	assert.Equal(t, "Rock", Term(KindEOS, RoleObjective))
	assert.Equal(t, "Wildly Important Goal", Term(KindFourDX, RoleObjective))
	assert.Equal(t, "unknown_role", Term(KindOKR, "unknown_role"))
	assert.Equal(t, "objective", Term(Kind("nope"), "objective"))
}

func TestConfigurationFrameworkForFallsBackToGoals(t *testing.T) {
	cfg := Configuration{GoalFramework: KindEOS, MetricsFramework: KindScalingUp}
	assert.Equal(t, KindEOS, cfg.FrameworkFor(AreaGoals))
	assert.Equal(t, KindEOS, cfg.FrameworkFor(AreaMeetings))
	assert.Equal(t, KindScalingUp, cfg.FrameworkFor(AreaMetrics))
}

package framework

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeframeType is the cadence an objective is planned against.
type TimeframeType string

const (
	TimeframeWeek    TimeframeType = "week"
	TimeframeQuarter TimeframeType = "quarter"
	TimeframeYear    TimeframeType = "year"
)

// Valid reports whether t is a known cadence.
func (t TimeframeType) Valid() bool {
	switch t {
	case TimeframeWeek, TimeframeQuarter, TimeframeYear:
		return true
	default:
		return false
	}
}

// ProgressMethod describes how current_value is compared with target_value.
type ProgressMethod string

const (
	ProgressBinary     ProgressMethod = "binary"
	ProgressDecimal    ProgressMethod = "decimal"
	ProgressPercentage ProgressMethod = "percentage"
)

// Valid reports whether m is a known progress method.
func (m ProgressMethod) Valid() bool {
	switch m {
	case ProgressBinary, ProgressDecimal, ProgressPercentage:
		return true
	default:
		return false
	}
}

// Status is the lifecycle state of an objective.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusActive    Status = "active"
	StatusAtRisk    Status = "at_risk"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusActive, StatusAtRisk, StatusCompleted:
		return true
	default:
		return false
	}
}

// ObjectiveType is the role tag of an objective inside its hierarchy.
type ObjectiveType string

const (
	TypeRock        ObjectiveType = "rock"
	TypeObjective   ObjectiveType = "objective"
	TypeKeyResult   ObjectiveType = "key_result"
	TypeWIG         ObjectiveType = "wig"
	TypeLeadMeasure ObjectiveType = "lead_measure"
	TypePriority    ObjectiveType = "priority"
	TypeMilestone   ObjectiveType = "milestone"
	TypeKPI         ObjectiveType = "kpi"
)

// IsSubGoal reports whether the type only makes sense beneath a parent objective.
func (t ObjectiveType) IsSubGoal() bool {
	switch t {
	case TypeKeyResult, TypeLeadMeasure, TypeMilestone, TypeKPI:
		return true
	default:
		return false
	}
}

// UniversalObjective is the framework agnostic record every translator reads.
type UniversalObjective struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	OwnerID        string         `json:"owner_id,omitempty"`
	TeamID         string         `json:"team_id,omitempty"`
	ParentID       *string        `json:"parent_id,omitempty"`
	TimeframeStart time.Time      `json:"timeframe_start"`
	TimeframeEnd   time.Time      `json:"timeframe_end"`
	TimeframeType  TimeframeType  `json:"timeframe_type"`
	CurrentValue   float64        `json:"current_value"`
	TargetValue    float64        `json:"target_value"`
	ProgressMethod ProgressMethod `json:"progress_method"`
	FrameworkType  string         `json:"framework_type"`
	ObjectiveType  ObjectiveType  `json:"objective_type"`
	Status         Status         `json:"status"`
	Attributes     Attributes     `json:"framework_attributes"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Clone returns a deep copy so callers can derive views without aliasing.
func (o UniversalObjective) Clone() UniversalObjective {
	out := o
	if o.ParentID != nil {
		parent := *o.ParentID
		out.ParentID = &parent
	}
	out.Attributes = o.Attributes.Clone()
	return out
}

// HasParent reports whether a non-empty parent reference is set.
func (o UniversalObjective) HasParent() bool {
	return o.ParentID != nil && strings.TrimSpace(*o.ParentID) != ""
}

// HasWindow reports whether both ends of the timeframe are set and ordered.
func (o UniversalObjective) HasWindow() bool {
	return !o.TimeframeStart.IsZero() && !o.TimeframeEnd.IsZero() && o.TimeframeEnd.After(o.TimeframeStart)
}

// SourceFramework returns the framework the record is stored as, or "universal".
func (o UniversalObjective) SourceFramework() string {
	if IsUniversal(o.FrameworkType) {
		return Universal
	}
	return strings.ToLower(strings.TrimSpace(o.FrameworkType))
}

// Check rejects records whose enums or identity cannot be interpreted.
// Empty enums are accepted and treated as unset.
func (o UniversalObjective) Check() error {
	if strings.TrimSpace(o.ID) == "" && strings.TrimSpace(o.Title) == "" {
		return &MalformedObjectiveError{Field: "title", Reason: "objective needs an id or a title"}
	}
	if o.TimeframeType != "" && !o.TimeframeType.Valid() {
		return &MalformedObjectiveError{Field: "timeframe_type", Reason: fmt.Sprintf("unknown value %q", o.TimeframeType)}
	}
	if o.ProgressMethod != "" && !o.ProgressMethod.Valid() {
		return &MalformedObjectiveError{Field: "progress_method", Reason: fmt.Sprintf("unknown value %q", o.ProgressMethod)}
	}
	if o.Status != "" && !o.Status.Valid() {
		return &MalformedObjectiveError{Field: "status", Reason: fmt.Sprintf("unknown value %q", o.Status)}
	}
	return nil
}

// DecodeUniversal converts a loosely typed payload into a checked objective.
func DecodeUniversal(fields Fields) (UniversalObjective, error) {
	var obj UniversalObjective
	if len(fields) == 0 {
		return obj, &MalformedObjectiveError{Reason: "empty payload"}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return obj, &MalformedObjectiveError{Reason: err.Error()}
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return obj, &MalformedObjectiveError{Reason: err.Error()}
	}
	if err := obj.Check(); err != nil {
		return obj, err
	}
	return obj, nil
}

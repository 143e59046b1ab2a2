package framework

// Abstract role names used by terminology lookups.
const (
	RoleObjective         = "objective"
	RoleKeyResult         = "key_result"
	RoleVision            = "vision"
	RoleLongTermGoal      = "long_term_goal"
	RoleAnnualGoal        = "annual_goal"
	RoleQuarterlyPriority = "quarterly_priority"
	RoleMetric            = "metric"
	RoleMetricsView       = "metrics_view"
	RoleMeeting           = "meeting"
	RoleIssue             = "issue"
	RoleOwner             = "owner"
	RoleTeam              = "team"
	RoleProgress          = "progress"
	RoleCheckIn           = "check_in"
	RoleInitiative        = "initiative"
	RoleTheme             = "theme"
	RolePlan              = "plan"
)

var terminology = map[Kind]map[string]string{
	KindEOS: {
		RoleObjective:         "Rock",
		RoleKeyResult:         "Milestone",
		RoleVision:            "Vision/Traction Organizer",
		RoleLongTermGoal:      "10-Year Target",
		RoleAnnualGoal:        "1-Year Plan",
		RoleQuarterlyPriority: "Rock",
		RoleMetric:            "Measurable",
		RoleMetricsView:       "Scorecard",
		RoleMeeting:           "Level 10 Meeting",
		RoleIssue:             "Issue",
		RoleOwner:             "Owner",
		RoleTeam:              "Leadership Team",
		RoleProgress:          "On/Off Track",
		RoleCheckIn:           "Rock Review",
		RoleInitiative:        "To-Do",
		RoleTheme:             "Core Focus",
		RolePlan:              "V/TO",
	},
	KindOKR: {
		RoleObjective:         "Objective",
		RoleKeyResult:         "Key Result",
		RoleVision:            "Mission",
		RoleLongTermGoal:      "Aspirational OKR",
		RoleAnnualGoal:        "Annual OKR",
		RoleQuarterlyPriority: "Quarterly OKR",
		RoleMetric:            "Key Result",
		RoleMetricsView:       "OKR Dashboard",
		RoleMeeting:           "OKR Check-in",
		RoleIssue:             "Blocker",
		RoleOwner:             "Owner",
		RoleTeam:              "Team",
		RoleProgress:          "Score",
		RoleCheckIn:           "Check-in",
		RoleInitiative:        "Initiative",
		RoleTheme:             "Focus Area",
		RolePlan:              "OKR Set",
	},
	KindFourDX: {
		RoleObjective:         "Wildly Important Goal",
		RoleKeyResult:         "Lead Measure",
		RoleVision:            "Overall WIG",
		RoleLongTermGoal:      "Overall WIG",
		RoleAnnualGoal:        "Team WIG",
		RoleQuarterlyPriority: "Battle",
		RoleMetric:            "Lag Measure",
		RoleMetricsView:       "Compelling Scoreboard",
		RoleMeeting:           "WIG Session",
		RoleIssue:             "Obstacle",
		RoleOwner:             "WIG Owner",
		RoleTeam:              "Frontline Team",
		RoleProgress:          "Winning/Losing",
		RoleCheckIn:           "WIG Session Report",
		RoleInitiative:        "Commitment",
		RoleTheme:             "Focus",
		RolePlan:              "WIG Plan",
	},
	KindScalingUp: {
		RoleObjective:         "Priority",
		RoleKeyResult:         "KPI",
		RoleVision:            "BHAG",
		RoleLongTermGoal:      "BHAG",
		RoleAnnualGoal:        "Annual Initiative",
		RoleQuarterlyPriority: "Quarterly Rock",
		RoleMetric:            "KPI",
		RoleMetricsView:       "Critical Number Dashboard",
		RoleMeeting:           "Daily Huddle",
		RoleIssue:             "Stuck",
		RoleOwner:             "Who",
		RoleTeam:              "Executive Team",
		RoleProgress:          "Red/Yellow/Green",
		RoleCheckIn:           "Weekly Meeting",
		RoleInitiative:        "Priority",
		RoleTheme:             "Quarterly Theme",
		RolePlan:              "One-Page Strategic Plan",
	},
}

// Term returns the framework vocabulary for role, or role itself when unknown.
func Term(kind Kind, role string) string {
	if table, ok := terminology[kind]; ok {
		if term, ok := table[role]; ok {
			return term
		}
	}
	return role
}

// TerminologyTable returns a copy of the full vocabulary of kind.
func TerminologyTable(kind Kind) map[string]string {
	table := terminology[kind]
	out := make(map[string]string, len(table))
	for role, term := range table {
		out[role] = term
	}
	return out
}

// RoleFor maps an objective type onto the abstract role used for labels.
func RoleFor(t ObjectiveType) string {
	switch t {
	case TypeKeyResult, TypeLeadMeasure, TypeMilestone:
		return RoleKeyResult
	case TypeKPI:
		return RoleMetric
	case TypeRock, TypePriority:
		return RoleQuarterlyPriority
	default:
		return RoleObjective
	}
}

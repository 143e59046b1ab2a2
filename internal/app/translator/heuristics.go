package translator

import "strings"

// Band is an inclusive integer range. A zero Max leaves the range open ended.
type Band struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Contains reports whether v falls inside the band.
func (b Band) Contains(v int) bool {
	if v < b.Min {
		return false
	}
	return b.Max == 0 || v <= b.Max
}

// Heuristics are the tunable business thresholds behind organization fit
// scoring. They carry no correctness guarantees and may be overridden from
// configuration.
type Heuristics struct {
	EOS       EOSHeuristics       `yaml:"eos" json:"eos"`
	OKR       OKRHeuristics       `yaml:"okr" json:"okr"`
	FourDX    FourDXHeuristics    `yaml:"four_dx" json:"four_dx"`
	ScalingUp ScalingUpHeuristics `yaml:"scaling_up" json:"scaling_up"`

	LargeOrganization   int `yaml:"large_organization" json:"large_organization"`
	StartupAgeMonths    int `yaml:"startup_age_months" json:"startup_age_months"`
	StartupMaxEmployees int `yaml:"startup_max_employees" json:"startup_max_employees"`
}

type EOSHeuristics struct {
	IdealEmployees    Band     `yaml:"ideal_employees" json:"ideal_employees"`
	IdealTeams        Band     `yaml:"ideal_teams" json:"ideal_teams"`
	MinAgeMonths      int      `yaml:"min_age_months" json:"min_age_months"`
	MinCompletionRate float64  `yaml:"min_completion_rate" json:"min_completion_rate"`
	Industries        []string `yaml:"industries" json:"industries"`
}

type OKRHeuristics struct {
	MinEmployees           int      `yaml:"min_employees" json:"min_employees"`
	MaxCompletionRate      float64  `yaml:"max_completion_rate" json:"max_completion_rate"`
	MinObjectivesPerPerson float64  `yaml:"min_objectives_per_person" json:"min_objectives_per_person"`
	Industries             []string `yaml:"industries" json:"industries"`
}

type FourDXHeuristics struct {
	MinEmployees      int      `yaml:"min_employees" json:"min_employees"`
	MinTeams          int      `yaml:"min_teams" json:"min_teams"`
	MaxCompletionRate float64  `yaml:"max_completion_rate" json:"max_completion_rate"`
	Industries        []string `yaml:"industries" json:"industries"`
}

type ScalingUpHeuristics struct {
	IdealEmployees    Band     `yaml:"ideal_employees" json:"ideal_employees"`
	MinAgeMonths      int      `yaml:"min_age_months" json:"min_age_months"`
	MinDepartments    int      `yaml:"min_departments" json:"min_departments"`
	MinCompletionRate float64  `yaml:"min_completion_rate" json:"min_completion_rate"`
	Industries        []string `yaml:"industries" json:"industries"`
}

// DefaultHeuristics returns the built-in fit thresholds.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		EOS: EOSHeuristics{
			IdealEmployees:    Band{Min: 10, Max: 250},
			IdealTeams:        Band{Min: 2, Max: 15},
			MinAgeMonths:      24,
			MinCompletionRate: 0.6,
			Industries:        []string{"professional services", "manufacturing", "construction", "distribution", "financial services", "healthcare"},
		},
		OKR: OKRHeuristics{
			MinEmployees:           20,
			MaxCompletionRate:      0.85,
			MinObjectivesPerPerson: 0.5,
			Industries:             []string{"technology", "software", "saas", "internet", "media", "fintech"},
		},
		FourDX: FourDXHeuristics{
			MinEmployees:      100,
			MinTeams:          5,
			MaxCompletionRate: 0.5,
			Industries:        []string{"retail", "hospitality", "healthcare", "manufacturing", "logistics", "government"},
		},
		ScalingUp: ScalingUpHeuristics{
			IdealEmployees:    Band{Min: 50, Max: 500},
			MinAgeMonths:      36,
			MinDepartments:    3,
			MinCompletionRate: 0.5,
			Industries:        []string{"technology", "professional services", "manufacturing", "distribution", "financial services"},
		},
		LargeOrganization:   250,
		StartupAgeMonths:    24,
		StartupMaxEmployees: 50,
	}
}

func industryMatches(industry string, candidates []string) bool {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if industry == "" {
		return false
	}
	for _, candidate := range candidates {
		if strings.Contains(industry, strings.ToLower(candidate)) {
			return true
		}
	}
	return false
}

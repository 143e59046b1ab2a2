package framework

import (
	"encoding/json"
	"time"
)

// Milestone is an EOS rock checkpoint.
type Milestone struct {
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"due_date,omitempty"`
}

// EOSAttributes carries rock specific extras.
type EOSAttributes struct {
	Milestones []Milestone `json:"milestones,omitempty"`
	IssueIDs   []string    `json:"issue_ids,omitempty"`
}

// OKRAttributes carries key result specific extras.
type OKRAttributes struct {
	StartValue   *float64 `json:"start_value,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Unit         string   `json:"unit,omitempty"`
	Aspirational bool     `json:"aspirational,omitempty"`
}

// LagMeasure is the "from X" half of a 4DX goal statement.
type LagMeasure struct {
	FromValue float64 `json:"from_value"`
	Unit      string  `json:"unit,omitempty"`
}

// LeadMeasure is a predictive, influenceable 4DX activity metric.
type LeadMeasure struct {
	Name      string  `json:"name"`
	Current   float64 `json:"current"`
	Target    float64 `json:"target"`
	Unit      string  `json:"unit,omitempty"`
	Frequency string  `json:"frequency,omitempty"`
}

// FourDXAttributes carries wildly important goal extras.
type FourDXAttributes struct {
	LagMeasure      *LagMeasure   `json:"lag_measure,omitempty"`
	LeadMeasures    []LeadMeasure `json:"lead_measures,omitempty"`
	UpdateFrequency string        `json:"update_frequency,omitempty"`
}

// CriticalNumber holds the four colour thresholds of a Scaling Up critical number.
type CriticalNumber struct {
	Name       string  `json:"name,omitempty"`
	Red        float64 `json:"red"`
	Yellow     float64 `json:"yellow"`
	Green      float64 `json:"green"`
	SuperGreen float64 `json:"super_green"`
}

// ScalingUpAttributes carries priority extras.
type ScalingUpAttributes struct {
	Theme          string          `json:"theme,omitempty"`
	CriticalNumber *CriticalNumber `json:"critical_number,omitempty"`
}

// Attributes is the typed form of framework_attributes. On the wire it is a
// flat object; known keys are routed into their framework section and unknown
// keys are kept in Extra.
type Attributes struct {
	EOS       *EOSAttributes
	OKR       *OKRAttributes
	FourDX    *FourDXAttributes
	ScalingUp *ScalingUpAttributes
	Extra     map[string]any
}

type attributeSection int

const (
	sectionEOS attributeSection = iota
	sectionOKR
	sectionFourDX
	sectionScalingUp
)

var attributeKeys = map[string]attributeSection{
	"milestones":       sectionEOS,
	"issue_ids":        sectionEOS,
	"start_value":      sectionOKR,
	"confidence":       sectionOKR,
	"unit":             sectionOKR,
	"aspirational":     sectionOKR,
	"lag_measure":      sectionFourDX,
	"lead_measures":    sectionFourDX,
	"update_frequency": sectionFourDX,
	"theme":            sectionScalingUp,
	"critical_number":  sectionScalingUp,
}

// UnmarshalJSON routes flat keys into typed sections.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	*a = Attributes{}
	if string(data) == "null" {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sections := map[attributeSection]map[string]json.RawMessage{}
	for key, value := range raw {
		section, known := attributeKeys[key]
		if !known {
			var decoded any
			if err := json.Unmarshal(value, &decoded); err != nil {
				return err
			}
			if a.Extra == nil {
				a.Extra = map[string]any{}
			}
			a.Extra[key] = decoded
			continue
		}
		if sections[section] == nil {
			sections[section] = map[string]json.RawMessage{}
		}
		sections[section][key] = value
	}
	for section, values := range sections {
		payload, err := json.Marshal(values)
		if err != nil {
			return err
		}
		switch section {
		case sectionEOS:
			a.EOS = &EOSAttributes{}
			err = json.Unmarshal(payload, a.EOS)
		case sectionOKR:
			a.OKR = &OKRAttributes{}
			err = json.Unmarshal(payload, a.OKR)
		case sectionFourDX:
			a.FourDX = &FourDXAttributes{}
			err = json.Unmarshal(payload, a.FourDX)
		case sectionScalingUp:
			a.ScalingUp = &ScalingUpAttributes{}
			err = json.Unmarshal(payload, a.ScalingUp)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON flattens the typed sections back into one object. Typed keys win
// over Extra entries with the same name.
func (a Attributes) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Extra))
	for key, value := range a.Extra {
		out[key] = value
	}
	for _, section := range []any{a.EOS, a.OKR, a.FourDX, a.ScalingUp} {
		if err := mergeSection(out, section); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

func mergeSection(out map[string]any, section any) error {
	switch s := section.(type) {
	case *EOSAttributes:
		if s == nil {
			return nil
		}
	case *OKRAttributes:
		if s == nil {
			return nil
		}
	case *FourDXAttributes:
		if s == nil {
			return nil
		}
	case *ScalingUpAttributes:
		if s == nil {
			return nil
		}
	}
	payload, err := json.Marshal(section)
	if err != nil {
		return err
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal(payload, &values); err != nil {
		return err
	}
	for key, value := range values {
		out[key] = value
	}
	return nil
}

// IsZero reports whether no section or extra key is set.
func (a Attributes) IsZero() bool {
	return a.EOS == nil && a.OKR == nil && a.FourDX == nil && a.ScalingUp == nil && len(a.Extra) == 0
}

// Clone returns a deep copy of every section.
func (a Attributes) Clone() Attributes {
	var out Attributes
	if a.EOS != nil {
		eos := EOSAttributes{}
		if a.EOS.Milestones != nil {
			eos.Milestones = make([]Milestone, len(a.EOS.Milestones))
			for i, m := range a.EOS.Milestones {
				if m.DueDate != nil {
					due := *m.DueDate
					m.DueDate = &due
				}
				eos.Milestones[i] = m
			}
		}
		if a.EOS.IssueIDs != nil {
			eos.IssueIDs = append([]string(nil), a.EOS.IssueIDs...)
		}
		out.EOS = &eos
	}
	if a.OKR != nil {
		okr := *a.OKR
		okr.StartValue = cloneFloat(a.OKR.StartValue)
		okr.Confidence = cloneFloat(a.OKR.Confidence)
		out.OKR = &okr
	}
	if a.FourDX != nil {
		fdx := FourDXAttributes{UpdateFrequency: a.FourDX.UpdateFrequency}
		if a.FourDX.LagMeasure != nil {
			lag := *a.FourDX.LagMeasure
			fdx.LagMeasure = &lag
		}
		if a.FourDX.LeadMeasures != nil {
			fdx.LeadMeasures = append([]LeadMeasure(nil), a.FourDX.LeadMeasures...)
		}
		out.FourDX = &fdx
	}
	if a.ScalingUp != nil {
		su := ScalingUpAttributes{Theme: a.ScalingUp.Theme}
		if a.ScalingUp.CriticalNumber != nil {
			cn := *a.ScalingUp.CriticalNumber
			su.CriticalNumber = &cn
		}
		out.ScalingUp = &su
	}
	if a.Extra != nil {
		out.Extra = make(map[string]any, len(a.Extra))
		for key, value := range a.Extra {
			out.Extra[key] = value
		}
	}
	return out
}

// Milestones returns the EOS milestones, if any.
func (a Attributes) Milestones() []Milestone {
	if a.EOS == nil {
		return nil
	}
	return a.EOS.Milestones
}

// StartValue returns the OKR baseline and whether one was recorded.
func (a Attributes) StartValue() (float64, bool) {
	if a.OKR == nil || a.OKR.StartValue == nil {
		return 0, false
	}
	return *a.OKR.StartValue, true
}

// LeadMeasures returns the 4DX lead measures, if any.
func (a Attributes) LeadMeasures() []LeadMeasure {
	if a.FourDX == nil {
		return nil
	}
	return a.FourDX.LeadMeasures
}

// CriticalNumber returns the Scaling Up thresholds, if any.
func (a Attributes) CriticalNumber() *CriticalNumber {
	if a.ScalingUp == nil {
		return nil
	}
	return a.ScalingUp.CriticalNumber
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// Float returns a pointer to v, for building optional attribute values.
func Float(v float64) *float64 { return &v }

// Package framework defines the universal objective model, the framework
// vocabulary tables, and the persistence ports the translation engine reads
// from and appends to.
package framework

import (
	"sort"
	"strings"
)

// Kind identifies a management methodology an objective can be translated into.
type Kind string

const (
	KindEOS       Kind = "eos"
	KindOKR       Kind = "okr"
	KindFourDX    Kind = "4dx"
	KindScalingUp Kind = "scaling_up"
)

// Universal is the framework_type of records stored in the canonical model.
const Universal = "universal"

var kindAliases = map[string]Kind{
	"eos":         KindEOS,
	"okr":         KindOKR,
	"okrs":        KindOKR,
	"4dx":         KindFourDX,
	"fourdx":      KindFourDX,
	"four_dx":     KindFourDX,
	"scaling_up":  KindScalingUp,
	"scalingup":   KindScalingUp,
	"scaling-up":  KindScalingUp,
	"rockefeller": KindScalingUp,
}

var displayNames = map[Kind]string{
	KindEOS:       "EOS",
	KindOKR:       "OKR",
	KindFourDX:    "4DX",
	KindScalingUp: "Scaling Up",
}

// Kinds returns every known framework in a stable order.
func Kinds() []Kind {
	return []Kind{KindEOS, KindOKR, KindFourDX, KindScalingUp}
}

// ParseKind normalizes a caller supplied framework key.
func ParseKind(raw string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if kind, ok := kindAliases[key]; ok {
		return kind, nil
	}
	return "", &UnsupportedFrameworkError{Framework: raw}
}

// IsUniversal reports whether raw names the canonical model rather than a framework.
func IsUniversal(raw string) bool {
	key := strings.ToLower(strings.TrimSpace(raw))
	return key == "" || key == Universal
}

// Valid reports whether k is one of the known frameworks.
func (k Kind) Valid() bool {
	_, ok := displayNames[k]
	return ok
}

// DisplayName returns the human readable framework name.
func (k Kind) DisplayName() string {
	if name, ok := displayNames[k]; ok {
		return name
	}
	return string(k)
}

func (k Kind) String() string { return string(k) }

// SortKinds orders kinds alphabetically in place and returns the slice.
func SortKinds(kinds []Kind) []Kind {
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

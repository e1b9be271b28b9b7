// Package exercise classifies cervical exercise posture from a landmark set.
//
// Every exercise shares one shape: a scalar measurement is taken from the
// landmark geometry, compared against an inclusive band, and the outcome is
// mapped to a status and a fixed feedback line. The per-exercise differences
// live in the profile table below.
package exercise

import (
	"math"
	"strings"
)

// Kind identifies a supported exercise.
type Kind string

const (
	Flexion     Kind = "cervical_flexion"
	Extension   Kind = "cervical_extension"
	LateralTilt Kind = "lateral_tilt"
	Rotation    Kind = "rotation"
	ChinTuck    Kind = "chin_tuck"
)

// Status is the classification outcome for one frame.
type Status string

const (
	StatusGood        Status = "Good"
	StatusTooLittle   Status = "Too little"
	StatusTooMuch     Status = "Too much"
	StatusForwardHead Status = "Forward head"
	StatusOverTucked  Status = "Over-tucked"
	StatusNoPose      Status = "No pose detected"
)

// ParseStatus resolves a status label, ignoring case.
func ParseStatus(value string) (Status, bool) {
	for _, s := range []Status{StatusGood, StatusTooLittle, StatusTooMuch, StatusForwardHead, StatusOverTucked, StatusNoPose} {
		if strings.EqualFold(strings.TrimSpace(value), string(s)) {
			return s, true
		}
	}
	return "", false
}

// Unit names what a measurement is expressed in.
type Unit string

const (
	UnitAngle    Unit = "angle"
	UnitDistance Unit = "distance"
)

// Band is an inclusive [Min, Max] interval.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the band, bounds included.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Result is the outcome of classifying one landmark set.
type Result struct {
	Kind        Kind    `json:"exercise"`
	Name        string  `json:"name"`
	Measurement float64 `json:"measurement"`
	Unit        Unit    `json:"unit"`
	Status      Status  `json:"status"`
	Feedback    string  `json:"feedback"`
}

// InBand reports whether the result was classified Good.
func (r Result) InBand() bool {
	return r.Status == StatusGood
}

// Kinds returns every supported exercise in display order.
func Kinds() []Kind {
	return []Kind{Flexion, Extension, LateralTilt, Rotation, ChinTuck}
}

// Valid reports whether k is a supported exercise.
func (k Kind) Valid() bool {
	_, ok := profiles[k]
	return ok
}

// Name returns the human readable exercise name used in session logs.
func (k Kind) Name() string {
	if p, ok := profiles[k]; ok {
		return p.name
	}
	return string(k)
}

// ParseKind resolves a slug ("chin_tuck") or display name ("Chin Tuck").
func ParseKind(value string) (Kind, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if k := Kind(key); k.Valid() {
		return k, true
	}
	for _, k := range Kinds() {
		if strings.EqualFold(strings.TrimSpace(value), profiles[k].name) {
			return k, true
		}
	}
	return "", false
}

// Spec describes a supported exercise for catalogue listings.
type Spec struct {
	Kind        Kind   `json:"exercise"`
	Name        string `json:"name"`
	Unit        Unit   `json:"unit"`
	Band        Band   `json:"band"`
	Target      Band   `json:"target"`
	Instruction string `json:"instruction"`
}

// Catalogue lists every exercise with its thresholds.
func Catalogue() []Spec {
	out := make([]Spec, 0, len(profiles))
	for _, k := range Kinds() {
		p := profiles[k]
		out = append(out, Spec{
			Kind:        k,
			Name:        p.name,
			Unit:        p.unit,
			Band:        p.band,
			Target:      p.target,
			Instruction: p.instruction,
		})
	}
	return out
}

// TargetBand returns the band in reported measurement units. For angle based
// exercises this is the classification band itself; chin tuck distances are
// reported scaled by 100.
func TargetBand(k Kind) (Band, bool) {
	p, ok := profiles[k]
	if !ok {
		return Band{}, false
	}
	return p.target, true
}

// TargetsByName maps display names to their target bands.
func TargetsByName() map[string]Band {
	out := make(map[string]Band, len(profiles))
	for k, p := range profiles {
		out[k.Name()] = p.target
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

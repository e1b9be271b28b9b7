package exercise

import (
	"math"

	"github.com/hmzi67/cervical-posture-detection/internal/geometry"
	"github.com/hmzi67/cervical-posture-detection/internal/pose"
)

// flexionReferenceOffset lifts the shoulder midpoint to build the vertical reference ray.
const flexionReferenceOffset = 0.1

type profile struct {
	name        string
	unit        Unit
	band        Band
	target      Band
	scale       float64
	measure     func(*pose.LandmarkSet) float64
	below       Status
	above       Status
	feedback    map[Status]string
	instruction string
}

var profiles = map[Kind]profile{
	Flexion: {
		name:    "Cervical Flexion",
		unit:    UnitAngle,
		band:    Band{Min: 30, Max: 60},
		target:  Band{Min: 30, Max: 60},
		scale:   1,
		measure: measureFlexion,
		below:   StatusTooLittle,
		above:   StatusTooMuch,
		feedback: map[Status]string{
			StatusGood:      "Perfect flexion angle!",
			StatusTooLittle: "Tuck your chin closer to chest",
			StatusTooMuch:   "Don't strain - less flexion needed",
		},
		instruction: "Slowly lower your chin toward your chest. Keep your shoulders relaxed.",
	},
	Extension: {
		name:    "Cervical Extension",
		unit:    UnitAngle,
		band:    Band{Min: 15, Max: 45},
		target:  Band{Min: 15, Max: 45},
		scale:   1,
		measure: measureExtension,
		below:   StatusTooLittle,
		above:   StatusTooMuch,
		feedback: map[Status]string{
			StatusGood:      "Good extension - hold position!",
			StatusTooLittle: "Tilt head back more gently",
			StatusTooMuch:   "Don't hyperextend - ease back",
		},
		instruction: "Gently tilt your head back and look upward. Don't overextend.",
	},
	LateralTilt: {
		name:    "Lateral Neck Tilt",
		unit:    UnitAngle,
		band:    Band{Min: 20, Max: 45},
		target:  Band{Min: 20, Max: 45},
		scale:   1,
		measure: measureLateralTilt,
		below:   StatusTooLittle,
		above:   StatusTooMuch,
		feedback: map[Status]string{
			StatusGood:      "Perfect lateral tilt!",
			StatusTooLittle: "Tilt head more to the side",
			StatusTooMuch:   "Don't force - gentle tilt only",
		},
		instruction: "Tilt your head to one side, bringing your ear toward your shoulder.",
	},
	Rotation: {
		name:    "Neck Rotation",
		unit:    UnitAngle,
		band:    Band{Min: 30, Max: 80},
		target:  Band{Min: 30, Max: 80},
		scale:   1,
		measure: measureRotation,
		below:   StatusTooLittle,
		above:   StatusTooMuch,
		feedback: map[Status]string{
			StatusGood:      "Good rotation range!",
			StatusTooLittle: "Turn head more to the side",
			StatusTooMuch:   "Don't strain - turn back slightly",
		},
		instruction: "Slowly turn your head to the left and right, looking over your shoulder.",
	},
	ChinTuck: {
		name:    "Chin Tuck",
		unit:    UnitDistance,
		band:    Band{Min: 0.02, Max: 0.08},
		target:  Band{Min: 2, Max: 8},
		scale:   100,
		measure: measureChinTuck,
		below:   StatusOverTucked,
		above:   StatusForwardHead,
		feedback: map[Status]string{
			StatusGood:        "Perfect chin tuck position!",
			StatusOverTucked:  "Relax - don't over-tuck",
			StatusForwardHead: "Pull chin back more",
		},
		instruction: "Pull your chin back, creating a double chin. Hold the position.",
	},
}

// Classify measures the landmark set for the given exercise and grades it
// against the exercise band. A nil set, or an unknown kind, yields a
// "No pose detected" result with a zero measurement.
func Classify(kind Kind, set *pose.LandmarkSet) Result {
	p, ok := profiles[kind]
	if !ok || set == nil {
		return noPose(kind)
	}
	raw := p.measure(set)
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return noPose(kind)
	}
	status, feedback := p.grade(raw)
	return Result{
		Kind:        kind,
		Name:        p.name,
		Measurement: round1(math.Abs(raw) * p.scale),
		Unit:        p.unit,
		Status:      status,
		Feedback:    feedback,
	}
}

// Grade classifies a raw measurement in the exercise's own units. For chin
// tuck that is the signed, unscaled horizontal offset.
func Grade(kind Kind, raw float64) (Status, bool) {
	p, ok := profiles[kind]
	if !ok {
		return StatusNoPose, false
	}
	status, _ := p.grade(raw)
	return status, true
}

func (p profile) grade(raw float64) (Status, string) {
	status := StatusGood
	switch {
	case p.band.Contains(raw):
	case raw < p.band.Min:
		status = p.below
	default:
		status = p.above
	}
	return status, p.feedback[status]
}

func noPose(kind Kind) Result {
	r := Result{Kind: kind, Status: StatusNoPose}
	if p, ok := profiles[kind]; ok {
		r.Name = p.name
		r.Unit = p.unit
	}
	return r
}

// measureFlexion is the angle at the shoulder midpoint between a vertical
// reference ray and the ray to the nose.
func measureFlexion(s *pose.LandmarkSet) float64 {
	mid := s.ShoulderMidpoint()
	reference := geometry.Point{X: mid.X, Y: mid.Y - flexionReferenceOffset}
	return geometry.Angle(reference, mid, s.Nose.Point())
}

// measureExtension scales the vertical rise of the nose above the shoulder
// midpoint into an approximate angle.
func measureExtension(s *pose.LandmarkSet) float64 {
	mid := s.ShoulderMidpoint()
	return math.Abs((mid.Y - s.Nose.Y) * 100)
}

// measureLateralTilt is the angle between the ear line and the shoulder line.
func measureLateralTilt(s *pose.LandmarkSet) float64 {
	shoulders := geometry.Sub(s.RightShoulder.Point(), s.LeftShoulder.Point())
	ears := geometry.Sub(s.RightEar.Point(), s.LeftEar.Point())
	return geometry.VectorAngle(shoulders, ears)
}

// measureRotation scales the asymmetry of nose-to-ear distances.
func measureRotation(s *pose.LandmarkSet) float64 {
	nose := s.Nose.Point()
	left := geometry.Distance(nose, s.LeftEar.Point())
	right := geometry.Distance(nose, s.RightEar.Point())
	return math.Abs(left-right) * 1000
}

// measureChinTuck is the signed horizontal offset of the nose from the
// shoulder midpoint; positive values mean the head sits forward.
func measureChinTuck(s *pose.LandmarkSet) float64 {
	return s.Nose.X - s.ShoulderMidpoint().X
}

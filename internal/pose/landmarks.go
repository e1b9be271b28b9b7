// Package pose models the landmark set delivered by the external pose detector.
package pose

import (
	"math"

	"github.com/hmzi67/cervical-posture-detection/internal/geometry"
)

// Landmark names used by the detector vocabulary.
const (
	NameNose          = "nose"
	NameLeftEar       = "left_ear"
	NameRightEar      = "right_ear"
	NameLeftShoulder  = "left_shoulder"
	NameRightShoulder = "right_shoulder"
	NameLeftMouth     = "left_mouth"
	NameRightMouth    = "right_mouth"
)

// RequiredNames lists every keypoint a complete set must carry.
var RequiredNames = []string{
	NameNose,
	NameLeftEar,
	NameRightEar,
	NameLeftShoulder,
	NameRightShoulder,
	NameLeftMouth,
	NameRightMouth,
}

// Landmark is a single keypoint in normalized frame space.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility"`
}

// Point drops the visibility score.
func (l Landmark) Point() geometry.Point {
	return geometry.Point{X: l.X, Y: l.Y}
}

// LandmarkSet is the cervical subset of one detected pose. A nil *LandmarkSet
// means no pose was detected in the frame.
type LandmarkSet struct {
	Nose          Landmark
	LeftEar       Landmark
	RightEar      Landmark
	LeftShoulder  Landmark
	RightShoulder Landmark
	LeftMouth     Landmark
	RightMouth    Landmark
}

// ShoulderMidpoint returns the midpoint between both shoulders.
func (s *LandmarkSet) ShoulderMidpoint() geometry.Point {
	return geometry.Midpoint(s.LeftShoulder.Point(), s.RightShoulder.Point())
}

// Keypoint is the wire form of a landmark as produced by the detector.
type Keypoint struct {
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Visibility *float64 `json:"visibility,omitempty"`
}

// FromKeypoints builds a LandmarkSet from a named keypoint map. It returns nil
// when the map is empty, when any required name is missing or carries a
// non-finite coordinate, or when a keypoint's visibility is below minVisibility.
// A keypoint without a visibility score is treated as fully visible.
func FromKeypoints(points map[string]Keypoint, minVisibility float64) *LandmarkSet {
	if len(points) == 0 {
		return nil
	}
	resolved := make(map[string]Landmark, len(RequiredNames))
	for _, name := range RequiredNames {
		kp, ok := points[name]
		if !ok || kp.X == nil || kp.Y == nil {
			return nil
		}
		lm := Landmark{X: *kp.X, Y: *kp.Y, Visibility: 1}
		if kp.Visibility != nil {
			lm.Visibility = *kp.Visibility
		}
		if !finite(lm.X) || !finite(lm.Y) || !finite(lm.Visibility) {
			return nil
		}
		if lm.Visibility < minVisibility {
			return nil
		}
		resolved[name] = lm
	}
	return &LandmarkSet{
		Nose:          resolved[NameNose],
		LeftEar:       resolved[NameLeftEar],
		RightEar:      resolved[NameRightEar],
		LeftShoulder:  resolved[NameLeftShoulder],
		RightShoulder: resolved[NameRightShoulder],
		LeftMouth:     resolved[NameLeftMouth],
		RightMouth:    resolved[NameRightMouth],
	}
}

// Keypoints converts the set back to its wire form.
func (s *LandmarkSet) Keypoints() map[string]Keypoint {
	if s == nil {
		return nil
	}
	out := make(map[string]Keypoint, len(RequiredNames))
	add := func(name string, lm Landmark) {
		x, y, v := lm.X, lm.Y, lm.Visibility
		out[name] = Keypoint{X: &x, Y: &y, Visibility: &v}
	}
	add(NameNose, s.Nose)
	add(NameLeftEar, s.LeftEar)
	add(NameRightEar, s.RightEar)
	add(NameLeftShoulder, s.LeftShoulder)
	add(NameRightShoulder, s.RightShoulder)
	add(NameLeftMouth, s.LeftMouth)
	add(NameRightMouth, s.RightMouth)
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

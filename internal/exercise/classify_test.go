package exercise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmzi67/cervical-posture-detection/internal/pose"
)

// neutral places the shoulders level at y=0.6 around x=0.5 with the head centred above.
func neutral() *pose.LandmarkSet {
	return &pose.LandmarkSet{
		Nose:          pose.Landmark{X: 0.5, Y: 0.3, Visibility: 1},
		LeftEar:       pose.Landmark{X: 0.45, Y: 0.3, Visibility: 1},
		RightEar:      pose.Landmark{X: 0.55, Y: 0.3, Visibility: 1},
		LeftShoulder:  pose.Landmark{X: 0.4, Y: 0.6, Visibility: 1},
		RightShoulder: pose.Landmark{X: 0.6, Y: 0.6, Visibility: 1},
		LeftMouth:     pose.Landmark{X: 0.48, Y: 0.35, Visibility: 1},
		RightMouth:    pose.Landmark{X: 0.52, Y: 0.35, Visibility: 1},
	}
}

func with(mutate func(*pose.LandmarkSet)) *pose.LandmarkSet {
	s := neutral()
	mutate(s)
	return s
}

func tiltEars(deg float64) func(*pose.LandmarkSet) {
	return func(s *pose.LandmarkSet) {
		rad := deg * math.Pi / 180
		s.LeftEar = pose.Landmark{X: 0.45, Y: 0.3, Visibility: 1}
		s.RightEar = pose.Landmark{X: 0.45 + 0.1*math.Cos(rad), Y: 0.3 + 0.1*math.Sin(rad), Visibility: 1}
	}
}

func TestClassifyFlexionAtFortyFiveDegrees(t *testing.T) {
	set := with(func(s *pose.LandmarkSet) { s.Nose = pose.Landmark{X: 0.6, Y: 0.5, Visibility: 1} })

	res := Classify(Flexion, set)
	require.Equal(t, StatusGood, res.Status)
	require.Equal(t, "Perfect flexion angle!", res.Feedback)
	require.Equal(t, 45.0, res.Measurement)
	require.Equal(t, UnitAngle, res.Unit)
	require.Equal(t, "Cervical Flexion", res.Name)
}

func TestClassifyChinTuckForwardHead(t *testing.T) {
	set := with(func(s *pose.LandmarkSet) { s.Nose.X = 0.6 })

	res := Classify(ChinTuck, set)
	require.Equal(t, StatusForwardHead, res.Status)
	require.Equal(t, 10.0, res.Measurement)
	require.Equal(t, UnitDistance, res.Unit)
	require.Equal(t, "Pull chin back more", res.Feedback)
}

func TestClassifyBands(t *testing.T) {
	cases := []struct {
		name   string
		kind   Kind
		set    *pose.LandmarkSet
		status Status
		value  float64
	}{
		{"flexion upright", Flexion, neutral(), StatusTooLittle, 0},
		{"flexion ninety", Flexion, with(func(s *pose.LandmarkSet) { s.Nose = pose.Landmark{X: 0.7, Y: 0.6} }), StatusTooMuch, 90},
		{"extension mid", Extension, neutral(), StatusGood, 30},
		{"extension low", Extension, with(func(s *pose.LandmarkSet) { s.Nose.Y = 0.5 }), StatusTooLittle, 10},
		{"extension high", Extension, with(func(s *pose.LandmarkSet) { s.Nose.Y = 0.1 }), StatusTooMuch, 50},
		{"tilt level", LateralTilt, neutral(), StatusTooLittle, 0},
		{"tilt mid", LateralTilt, with(tiltEars(30)), StatusGood, 30},
		{"tilt high", LateralTilt, with(tiltEars(60)), StatusTooMuch, 60},
		{"rotation facing", Rotation, neutral(), StatusTooLittle, 0},
		{"rotation mid", Rotation, with(func(s *pose.LandmarkSet) {
			s.LeftEar.X = 0.4
			s.RightEar.X = 0.545
		}), StatusGood, 55},
		{"rotation high", Rotation, with(func(s *pose.LandmarkSet) {
			s.LeftEar.X = 0.35
			s.RightEar.X = 0.51
		}), StatusTooMuch, 140},
		{"chin tuck mid", ChinTuck, with(func(s *pose.LandmarkSet) { s.Nose.X = 0.55 }), StatusGood, 5},
		{"chin tuck centred", ChinTuck, neutral(), StatusOverTucked, 0},
		{"chin tuck behind", ChinTuck, with(func(s *pose.LandmarkSet) { s.Nose.X = 0.45 }), StatusOverTucked, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Classify(tc.kind, tc.set)
			assert.Equal(t, tc.status, res.Status)
			assert.InDelta(t, tc.value, res.Measurement, 0.05)
			assert.NotEmpty(t, res.Feedback)
		})
	}
}

func TestClassifyNilLandmarksIsNoPose(t *testing.T) {
	for _, kind := range Kinds() {
		res := Classify(kind, nil)
		assert.Equal(t, StatusNoPose, res.Status, kind)
		assert.Zero(t, res.Measurement, kind)
		assert.Empty(t, res.Feedback, kind)
		assert.Equal(t, kind, res.Kind)
	}
}

func TestClassifyUnknownKindIsNoPose(t *testing.T) {
	res := Classify(Kind("shrug"), neutral())
	assert.Equal(t, StatusNoPose, res.Status)
}

func TestClassifyDegenerateTiltIsTooLittle(t *testing.T) {
	set := with(func(s *pose.LandmarkSet) {
		s.RightShoulder = s.LeftShoulder
	})
	res := Classify(LateralTilt, set)
	assert.Equal(t, StatusTooLittle, res.Status)
	assert.Zero(t, res.Measurement)

	set = with(func(s *pose.LandmarkSet) { s.RightEar = s.LeftEar })
	assert.Equal(t, StatusTooLittle, Classify(LateralTilt, set).Status)
}

func TestGradeBoundariesAreInclusive(t *testing.T) {
	for _, kind := range []Kind{Flexion, Extension, LateralTilt, Rotation} {
		band := profiles[kind].band
		for _, v := range []float64{band.Min, band.Max, (band.Min + band.Max) / 2} {
			status, ok := Grade(kind, v)
			require.True(t, ok)
			assert.Equal(t, StatusGood, status, "%s at %v", kind, v)
		}
		status, _ := Grade(kind, band.Min-1)
		assert.Equal(t, StatusTooLittle, status, kind)
		status, _ = Grade(kind, band.Max+1)
		assert.Equal(t, StatusTooMuch, status, kind)
	}

	for _, v := range []float64{0.02, 0.05, 0.08} {
		status, _ := Grade(ChinTuck, v)
		assert.Equal(t, StatusGood, status, v)
	}
	status, _ := Grade(ChinTuck, 0.01)
	assert.Equal(t, StatusOverTucked, status)
	status, _ = Grade(ChinTuck, 0.09)
	assert.Equal(t, StatusForwardHead, status)

	_, ok := Grade(Kind("unknown"), 1)
	assert.False(t, ok)
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"cervical_flexion":  Flexion,
		"Cervical Flexion":  Flexion,
		"lateral-tilt":      LateralTilt,
		"Lateral Neck Tilt": LateralTilt,
		" CHIN_TUCK ":       ChinTuck,
		"Neck Rotation":     Rotation,
	}
	for in, want := range cases {
		got, ok := ParseKind(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseKind("shoulder shrug")
	assert.False(t, ok)
}

func TestCatalogueAndTargets(t *testing.T) {
	specs := Catalogue()
	require.Len(t, specs, 5)
	assert.Equal(t, Flexion, specs[0].Kind)

	band, ok := TargetBand(ChinTuck)
	require.True(t, ok)
	assert.Equal(t, Band{Min: 2, Max: 8}, band)

	targets := TargetsByName()
	assert.Equal(t, Band{Min: 30, Max: 60}, targets["Cervical Flexion"])
	assert.Len(t, targets, 5)
}

func TestParseStatus(t *testing.T) {
	got, ok := ParseStatus("forward head")
	require.True(t, ok)
	assert.Equal(t, StatusForwardHead, got)

	_, ok = ParseStatus("Slouching")
	assert.False(t, ok)
}

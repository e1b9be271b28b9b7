package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAngleRightAngle(t *testing.T) {
	got := Angle(Point{X: 1, Y: 0}, Point{}, Point{X: 0, Y: 1})
	assert.InDelta(t, 90.0, got, 1e-9)
}

func TestAngleIsSymmetric(t *testing.T) {
	cases := [][3]Point{
		{{X: 0.1, Y: 0.9}, {X: 0.5, Y: 0.5}, {X: 0.9, Y: 0.2}},
		{{X: 0.3, Y: 0.3}, {X: 0.4, Y: 0.6}, {X: 0.2, Y: 0.7}},
		{{X: 0.9, Y: 0.1}, {X: 0.1, Y: 0.1}, {X: 0.1, Y: 0.9}},
	}
	for _, tc := range cases {
		assert.InDelta(t, Angle(tc[0], tc[1], tc[2]), Angle(tc[2], tc[1], tc[0]), 1e-9)
	}
}

func TestAngleStaysWithinHalfTurn(t *testing.T) {
	vertex := Point{X: 0.5, Y: 0.5}
	for i := 0; i < 36; i++ {
		for j := 0; j < 36; j++ {
			a := Point{X: 0.5 + 0.3*math.Cos(float64(i)*math.Pi/18), Y: 0.5 + 0.3*math.Sin(float64(i)*math.Pi/18)}
			c := Point{X: 0.5 + 0.2*math.Cos(float64(j)*math.Pi/18), Y: 0.5 + 0.2*math.Sin(float64(j)*math.Pi/18)}
			got := Angle(a, vertex, c)
			require.GreaterOrEqual(t, got, 0.0)
			require.LessOrEqual(t, got, 180.0)
		}
	}
}

func TestAngleReflectsLargeDifference(t *testing.T) {
	// bearings of +170 and -170 degrees differ by 340 before reflection
	a := Point{X: math.Cos(170 * math.Pi / 180), Y: math.Sin(170 * math.Pi / 180)}
	c := Point{X: math.Cos(-170 * math.Pi / 180), Y: math.Sin(-170 * math.Pi / 180)}
	assert.InDelta(t, 20.0, Angle(a, Point{}, c), 1e-9)
}

func TestDistance(t *testing.T) {
	p := Point{X: 0.2, Y: 0.3}
	q := Point{X: 0.5, Y: 0.7}
	assert.Zero(t, Distance(p, p))
	assert.InDelta(t, 0.5, Distance(p, q), 1e-12)
	assert.Equal(t, Distance(p, q), Distance(q, p))
}

func TestVectorAngleDegenerate(t *testing.T) {
	assert.Zero(t, VectorAngle(Point{}, Point{X: 1}))
	assert.Zero(t, VectorAngle(Point{X: 1}, Point{}))
	assert.InDelta(t, 180.0, VectorAngle(Point{X: 1}, Point{X: -2}), 1e-9)
}

func TestMidpoint(t *testing.T) {
	assert.Equal(t, Point{X: 0.5, Y: 0.25}, Midpoint(Point{X: 0.25, Y: 0}, Point{X: 0.75, Y: 0.5}))
}
